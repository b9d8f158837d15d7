package observer

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// logPayloadLimit caps the logged payload length. Frames carry
// base64 color buffers that run to kilobytes; the capture keeps
// them whole, the log does not need to.
const logPayloadLimit = 160

// CapturedMessage represents a single MQTT message captured during observation
type CapturedMessage struct {
	Timestamp time.Time   `json:"timestamp"`
	Topic     string      `json:"topic"`
	Payload   interface{} `json:"payload"`
	QoS       byte        `json:"qos"`
}

// Observer captures canopy MQTT traffic for later analysis
type Observer struct {
	client    mqtt.Client
	messages  []CapturedMessage
	startTime time.Time
	mutex     sync.RWMutex
	broker    string
	filter    string
	logger    *log.Logger
}

// NewObserver creates an observer that captures every message
// matching the topic filter, usually canopy/#.
func NewObserver(broker, filter string, logger *log.Logger) *Observer {
	if logger == nil {
		logger = log.Default()
	}

	return &Observer{
		broker:   broker,
		filter:   filter,
		messages: make([]CapturedMessage, 0),
		logger:   logger,
	}
}

// Start connects and begins capturing traffic
func (o *Observer) Start() error {
	o.startTime = time.Now()

	opts := mqtt.NewClientOptions()
	opts.AddBroker(o.broker)
	opts.SetClientID("foliage-e2e-observer")
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		o.logger.Printf("Connection lost: %v", err)
	})
	opts.SetOnConnectHandler(func(client mqtt.Client) {
		o.logger.Printf("Connected to MQTT broker at %s", o.broker)
		token := client.Subscribe(o.filter, 0, o.messageHandler)
		token.Wait()
		if token.Error() != nil {
			o.logger.Printf("Failed to subscribe to %s: %v", o.filter, token.Error())
		} else {
			o.logger.Printf("Subscribed to %s", o.filter)
		}
	})

	o.client = mqtt.NewClient(opts)
	token := o.client.Connect()
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return nil
}

// messageHandler records one incoming message
func (o *Observer) messageHandler(client mqtt.Client, msg mqtt.Message) {
	elapsed := time.Since(o.startTime).Seconds()

	// Non-JSON payloads are kept as raw strings.
	var payload interface{}
	if err := json.Unmarshal(msg.Payload(), &payload); err != nil {
		payload = string(msg.Payload())
	}

	captured := CapturedMessage{
		Timestamp: time.Now(),
		Topic:     msg.Topic(),
		Payload:   payload,
		QoS:       msg.Qos(),
	}

	o.mutex.Lock()
	o.messages = append(o.messages, captured)
	o.mutex.Unlock()

	payloadStr, _ := json.Marshal(payload)
	logged := string(payloadStr)
	if len(logged) > logPayloadLimit {
		logged = logged[:logPayloadLimit] + "..."
	}
	o.logger.Printf("[%7.2fs] %s: %s", elapsed, msg.Topic(), logged)
}

// GetMessagesByTopic returns all captured messages for one topic,
// oldest first.
func (o *Observer) GetMessagesByTopic(topic string) []CapturedMessage {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	var matches []CapturedMessage
	for _, msg := range o.messages {
		if msg.Topic == topic {
			matches = append(matches, msg)
		}
	}

	return matches
}

// GetAllMessages returns a copy of every captured message
func (o *Observer) GetAllMessages() []CapturedMessage {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	messages := make([]CapturedMessage, len(o.messages))
	copy(messages, o.messages)
	return messages
}

// SaveCapture writes all captured messages to a JSON file
func (o *Observer) SaveCapture(filename string) error {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	data, err := json.MarshalIndent(o.messages, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal messages: %w", err)
	}

	if err := saveToFile(filename, data); err != nil {
		return fmt.Errorf("failed to save capture: %w", err)
	}

	o.logger.Printf("Saved %d messages to %s", len(o.messages), filename)
	return nil
}

// Stop disconnects from the MQTT broker
func (o *Observer) Stop() {
	if o.client != nil && o.client.IsConnected() {
		o.client.Disconnect(250)
		o.logger.Printf("Disconnected from MQTT broker")
	}
}

// GetMessageCount returns the number of captured messages
func (o *Observer) GetMessageCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.messages)
}

// TopicCounts returns how many messages arrived per topic. Frame
// topics dwarf everything else, so the breakdown is the quickest
// way to see whether state and control traffic flowed at all.
func (o *Observer) TopicCounts() map[string]int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	counts := make(map[string]int, 8)
	for _, msg := range o.messages {
		counts[msg.Topic]++
	}
	return counts
}

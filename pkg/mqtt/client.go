package mqtt

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/foliolab/foliage-platform/pkg/config"
)

// publishTimeout bounds how long a publish may block the caller.
// The frame loop runs on a fixed cadence; a dead broker link must
// surface as an error instead of stalling the clock.
const publishTimeout = 5 * time.Second

type subscription struct {
	qos     byte
	handler MessageHandler
}

// mqttClient implements Client on top of the Paho MQTT client. It
// keeps its own subscription table: sessions are clean, so after a
// reconnect the broker has forgotten every filter and OnConnect
// replays them. Without that the agent would silently stop hearing
// control messages after a broker restart.
type mqttClient struct {
	client pahomqtt.Client
	cfg    *config.Config
	logger *slog.Logger

	mu   sync.Mutex
	subs map[string]subscription
}

// NewClient creates the broker client for one agent instance
func NewClient(cfg *config.Config, logger *slog.Logger) Client {
	c := &mqttClient{
		cfg:    cfg,
		logger: logger,
		subs:   make(map[string]subscription),
	}

	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(cfg.MQTTAddress())
	opts.SetClientID(clientID(cfg))

	// Set credentials if provided
	if cfg.MQTTUser != "" {
		opts.SetUsername(cfg.MQTTUser)
	}
	if cfg.MQTTPassword != "" {
		opts.SetPassword(cfg.MQTTPassword)
	}

	// Connection settings
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)

	// Connection handlers
	opts.OnConnect = func(pc pahomqtt.Client) {
		logger.Info("Connected to MQTT broker", "broker", cfg.MQTTAddress())
		c.restoreSubscriptions()
	}

	opts.OnConnectionLost = func(pc pahomqtt.Client, err error) {
		logger.Warn("MQTT connection lost", "error", err)
	}

	opts.OnReconnecting = func(pc pahomqtt.Client, opts *pahomqtt.ClientOptions) {
		logger.Info("MQTT reconnecting...")
	}

	c.client = pahomqtt.NewClient(opts)
	return c
}

// clientID derives a broker-unique ID. Agents run one per dataset,
// so the dataset name keeps two agents on the same broker apart.
func clientID(cfg *config.Config) string {
	if cfg.MQTTClientID != "" {
		return cfg.MQTTClientID
	}
	return fmt.Sprintf("%s-%s-%d", cfg.ServiceName, cfg.DatasetName, time.Now().Unix())
}

// Connect establishes a connection to the MQTT broker
func (m *mqttClient) Connect(ctx context.Context) error {
	m.logger.Info("Connecting to MQTT broker", "broker", m.cfg.MQTTAddress())

	token := m.client.Connect()

	// Wait for connection with context timeout
	select {
	case <-token.Done():
		if token.Error() != nil {
			return fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("connection timeout: %w", ctx.Err())
	}
}

// Disconnect closes the connection to the MQTT broker
func (m *mqttClient) Disconnect() {
	m.logger.Info("Disconnecting from MQTT broker")
	m.client.Disconnect(250) // 250ms grace period
}

// Subscribe registers a handler for a topic filter and applies it.
// The filter is remembered and replayed after every reconnect.
func (m *mqttClient) Subscribe(topic string, qos byte, handler MessageHandler) error {
	m.mu.Lock()
	m.subs[topic] = subscription{qos: qos, handler: handler}
	m.mu.Unlock()

	if err := m.subscribe(topic, qos, handler); err != nil {
		return err
	}

	m.logger.Info("Subscribed to topic", "topic", topic, "qos", qos)
	return nil
}

func (m *mqttClient) subscribe(topic string, qos byte, handler MessageHandler) error {
	// Wrap the handler to convert paho messages to our interface
	pahoHandler := func(client pahomqtt.Client, msg pahomqtt.Message) {
		handler(&mqttMessage{msg: msg})
	}

	token := m.client.Subscribe(topic, qos, pahoHandler)
	token.Wait()

	if token.Error() != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", topic, token.Error())
	}
	return nil
}

// restoreSubscriptions replays every registered filter. Called from
// OnConnect, which fires on the first connect too; the table is
// empty then and the loop does nothing.
func (m *mqttClient) restoreSubscriptions() {
	m.mu.Lock()
	subs := make(map[string]subscription, len(m.subs))
	for topic, s := range m.subs {
		subs[topic] = s
	}
	m.mu.Unlock()

	for topic, s := range subs {
		if err := m.subscribe(topic, s.qos, s.handler); err != nil {
			m.logger.Error("Failed to restore subscription", "topic", topic, "error", err)
		}
	}
}

// Publish publishes a message to a topic, bounded by publishTimeout
func (m *mqttClient) Publish(topic string, qos byte, retained bool, payload []byte) error {
	token := m.client.Publish(topic, qos, retained, payload)

	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish to topic %s timed out after %s", topic, publishTimeout)
	}
	if token.Error() != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", topic, token.Error())
	}

	m.logger.Debug("Published message", "topic", topic, "retained", retained, "size", len(payload))
	return nil
}

// IsConnected returns whether the client is currently connected
func (m *mqttClient) IsConnected() bool {
	return m.client.IsConnected()
}

// mqttMessage wraps a Paho MQTT message to implement our Message interface
type mqttMessage struct {
	msg pahomqtt.Message
}

func (m *mqttMessage) Topic() string {
	return m.msg.Topic()
}

func (m *mqttMessage) Payload() []byte {
	return m.msg.Payload()
}

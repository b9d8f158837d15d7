package executor

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/foliolab/foliage-platform/e2e/internal/scenario"
	"github.com/foliolab/foliage-platform/pkg/mqtt"
	"github.com/foliolab/foliage-platform/pkg/schema"
)

// ControlPlayer publishes transport commands to the animator under
// test, using the same wire shape renderers send.
type ControlPlayer struct {
	client pahomqtt.Client
	logger *log.Logger
}

// NewControlPlayer connects a publishing client to the broker
func NewControlPlayer(broker string, logger *log.Logger) (*ControlPlayer, error) {
	if logger == nil {
		logger = log.Default()
	}

	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID("foliage-e2e-player")
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)

	client := pahomqtt.NewClient(opts)
	token := client.Connect()
	token.Wait()
	if token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	logger.Printf("Connected to MQTT broker at %s", broker)

	return &ControlPlayer{
		client: client,
		logger: logger,
	}, nil
}

// PublishControl sends one transport command for a dataset
func (p *ControlPlayer) PublishControl(dataset, origin string, event scenario.ControlEvent) error {
	topic := mqtt.ControlTopic(dataset)

	cmd := schema.ControlCommand{
		Action: event.Action,
		Value:  event.Value,
		Origin: origin,
		SentAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("failed to marshal command: %w", err)
	}

	// QoS 1 so commands survive a flaky broker link.
	token := p.client.Publish(topic, 1, false, payload)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, token.Error())
	}

	p.logger.Printf("Published command to %s: %s", topic, string(payload))

	return nil
}

// Close disconnects from MQTT broker
func (p *ControlPlayer) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
		p.logger.Printf("Disconnected from MQTT broker")
	}
}

package mqtt

import "context"

// Client is the broker session an agent streams through. The
// concrete client reconnects on its own and re-applies every
// subscription registered through Subscribe.
type Client interface {
	// Connect dials the broker and blocks until the session is up
	// or ctx expires.
	Connect(ctx context.Context) error

	// Disconnect flushes in-flight publishes and closes the session.
	Disconnect()

	// Subscribe registers a handler for a topic filter. The filter
	// is re-applied automatically after a reconnect.
	Subscribe(topic string, qos byte, handler MessageHandler) error

	// Publish sends one message. A retained publish replaces the
	// broker's stored copy for the topic.
	Publish(topic string, qos byte, retained bool, payload []byte) error

	// IsConnected reports whether the session is currently up.
	IsConnected() bool
}

// MessageHandler receives inbound messages for one subscription.
type MessageHandler func(Message)

// Message is one inbound message.
type Message interface {
	Topic() string
	Payload() []byte
}

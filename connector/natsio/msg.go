package natsio

import (
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360/streamkit/errors"
)

// Msg is one JetStream message drawn from a Source. Acknowledgement is
// the pipeline's responsibility: stages decide when the message is
// safely handled and call Ack, or Nak to request redelivery.
type Msg struct {
	raw jetstream.Msg
	src *Source
}

// Subject returns the subject the message was published on.
func (m Msg) Subject() string { return m.raw.Subject() }

// Data returns the message payload.
func (m Msg) Data() []byte { return m.raw.Data() }

// Headers returns the message headers.
func (m Msg) Headers() nats.Header { return m.raw.Headers() }

// Metadata returns JetStream delivery metadata such as sequence
// numbers and delivery count.
func (m Msg) Metadata() (*jetstream.MsgMetadata, error) {
	md, err := m.raw.Metadata()
	if err != nil {
		return nil, errors.WrapInvalid(err, "natsio", "Metadata", "read delivery metadata")
	}
	return md, nil
}

// Ack acknowledges the message.
func (m Msg) Ack() error {
	if err := m.raw.Ack(); err != nil {
		return errors.WrapTransient(err, "natsio", "Ack", "acknowledge message")
	}
	if m.src != nil {
		m.src.metrics.recordAck()
	}
	return nil
}

// Nak negatively acknowledges the message, asking the server to
// redeliver it.
func (m Msg) Nak() error {
	if err := m.raw.Nak(); err != nil {
		return errors.WrapTransient(err, "natsio", "Nak", "negatively acknowledge message")
	}
	if m.src != nil {
		m.src.metrics.recordNak()
	}
	return nil
}

// Term tells the server to stop redelivering the message.
func (m Msg) Term() error {
	if err := m.raw.Term(); err != nil {
		return errors.WrapTransient(err, "natsio", "Term", "terminate message")
	}
	return nil
}

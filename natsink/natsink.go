// Package natsink forwards device change events to NATS subjects.
package natsink

import (
	"encoding/json"
	"time"

	"github.com/MeneDev/devchange/device"
	"github.com/fxamacker/cbor/v2"
	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	EncodingJson = "json"
	EncodingCbor = "cbor"
)

// Message is the payload published for each change.
type Message struct {
	Id     string    `json:"id" cbor:"1,keyasint"`
	Status string    `json:"status" cbor:"2,keyasint"`
	Kind   string    `json:"kind" cbor:"3,keyasint"`
	Time   time.Time `json:"time" cbor:"4,keyasint"`
}

type publisher interface {
	Publish(subject string, data []byte) error
}

var _ publisher = (*nats.Conn)(nil)

type Forwarder struct {
	conn    publisher
	subject string
	encode  func(v any) ([]byte, error)
	now     func() time.Time
}

func ForwarderNew(conn publisher, subject string, encoding string) (*Forwarder, error) {
	var encode func(v any) ([]byte, error)
	switch encoding {
	case EncodingJson, "":
		encode = json.Marshal
	case EncodingCbor:
		encode = cbor.Marshal
	default:
		return nil, errors.Errorf("unknown encoding %q", encoding)
	}

	return &Forwarder{
		conn:    conn,
		subject: subject,
		encode:  encode,
		now:     time.Now,
	}, nil
}

// Connect dials the NATS server at url.
func Connect(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name("devchange"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Str("url", url).Msg("Disconnected from NATS")
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info().Str("url", c.ConnectedUrl()).Msg("Reconnected to NATS")
		}),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot connect to %s", url)
	}
	return conn, nil
}

// Subject returns the subject an event of the given kind is published on.
func (f *Forwarder) Subject(kind device.ChangeKind) string {
	return f.subject + "." + kind.String()
}

func (f *Forwarder) Forward(event device.ChangeEvent) error {
	data, err := f.encode(Message{
		Id:     event.Device.Id,
		Status: event.Device.Status,
		Kind:   event.Kind.String(),
		Time:   f.now().UTC(),
	})
	if err != nil {
		return errors.Wrap(err, "cannot encode change event")
	}

	subject := f.Subject(event.Kind)
	if err := f.conn.Publish(subject, data); err != nil {
		return errors.Wrapf(err, "cannot publish to %s", subject)
	}
	return nil
}

// Handle forwards the event and logs failures. It has the signature of a
// change stream callback.
func (f *Forwarder) Handle(event device.ChangeEvent) {
	if err := f.Forward(event); err != nil {
		log.Warn().Err(err).Str("device", event.Device.Id).Msg("Could not forward change")
	}
}

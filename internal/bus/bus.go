// Package bus connects mudra to an MQTT broker. Speech recognizers publish
// transcripts to <prefix>/transcripts and every command record is published to
// <prefix>/events.
package bus

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/intent"
)

const (
	topicTranscripts = "transcripts"
	topicEvents      = "events"

	connectTimeout = 5 * time.Second
	disconnectWait = 250 // milliseconds
)

// TranscriptHandler consumes transcripts received from the broker.
type TranscriptHandler interface {
	HandleTranscript(text string, final bool, at time.Time) (intent.Intent, control.Outcome)
}

// transcriptMessage is the JSON form of a transcript. A payload that is not a JSON
// object is taken as the text of a final transcript.
type transcriptMessage struct {
	Text  string `json:"text"`
	Final *bool  `json:"final"`
	Ts    int64  `json:"ts"`
}

// Event is the payload published for each command record.
type Event struct {
	ID         string    `json:"id"`
	Channel    string    `json:"channel"`
	Action     string    `json:"action"`
	Confidence float64   `json:"confidence"`
	Outcome    string    `json:"outcome"`
	Message    string    `json:"message,omitempty"`
	Source     string    `json:"source,omitempty"`
	At         time.Time `json:"at"`
}

// Bus is a connected MQTT client.
type Bus struct {
	client  mqtt.Client
	prefix  string
	qos     byte
	handler TranscriptHandler
	logger  *slog.Logger
}

// Connect dials the broker in cfg and subscribes to transcripts. The subscription
// is renewed on every reconnect.
func Connect(cfg config.MQTT, handler TranscriptHandler, logger *slog.Logger) (*Bus, error) {
	b := newBus(nil, cfg, handler, logger)

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout).
		SetOnConnectHandler(func(c mqtt.Client) {
			if err := b.subscribe(c); err != nil {
				b.logger.Warn("transcript subscription failed", "error", err)
			}
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			b.logger.Warn("broker connection lost", "error", err)
		})
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	b.client = mqtt.NewClient(opts)
	if token := b.client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.Broker, token.Error())
	}
	b.logger.Info("connected to broker", "broker", cfg.Broker, "prefix", b.prefix)
	return b, nil
}

func newBus(client mqtt.Client, cfg config.MQTT, handler TranscriptHandler, logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	qos := cfg.QoS
	if qos < 0 || qos > 2 {
		qos = 1
	}
	return &Bus{
		client:  client,
		prefix:  strings.TrimSuffix(cfg.TopicPrefix, "/"),
		qos:     byte(qos),
		handler: handler,
		logger:  logger.With("component", "bus"),
	}
}

func (b *Bus) topic(name string) string {
	if b.prefix == "" {
		return name
	}
	return b.prefix + "/" + name
}

func (b *Bus) subscribe(c mqtt.Client) error {
	if b.handler == nil {
		return nil
	}
	token := c.Subscribe(b.topic(topicTranscripts), b.qos, b.onTranscript)
	token.Wait()
	if err := token.Error(); err != nil {
		return err
	}
	b.logger.Info("subscribed", "topic", b.topic(topicTranscripts))
	return nil
}

func (b *Bus) onTranscript(_ mqtt.Client, msg mqtt.Message) {
	text, final, at, err := decodeTranscript(msg.Payload())
	if err != nil {
		b.logger.Warn("transcript decode failed", "topic", msg.Topic(), "error", err)
		return
	}
	in, outcome := b.handler.HandleTranscript(text, final, at)
	b.logger.Debug("transcript received", "text", text, "final", final, "action", string(in.Action), "outcome", string(outcome))
}

func decodeTranscript(payload []byte) (string, bool, time.Time, error) {
	trimmed := strings.TrimSpace(string(payload))
	if trimmed == "" {
		return "", false, time.Time{}, errors.New("empty payload")
	}
	if !strings.HasPrefix(trimmed, "{") {
		return trimmed, true, time.Time{}, nil
	}

	var m transcriptMessage
	if err := json.Unmarshal([]byte(trimmed), &m); err != nil {
		return "", false, time.Time{}, err
	}
	var at time.Time
	if m.Ts > 0 {
		at = time.UnixMilli(m.Ts)
	}
	return m.Text, m.Final == nil || *m.Final, at, nil
}

// Record publishes r to the events topic. It does not wait for the broker.
func (b *Bus) Record(r control.Record) {
	payload, err := json.Marshal(Event{
		ID:         r.ID,
		Channel:    string(r.Channel),
		Action:     string(r.Action),
		Confidence: r.Confidence,
		Outcome:    string(r.Outcome),
		Message:    r.Message,
		Source:     r.Source,
		At:         r.At,
	})
	if err != nil {
		b.logger.Warn("event encode failed", "error", err)
		return
	}
	token := b.client.Publish(b.topic(topicEvents), b.qos, false, payload)
	go func() {
		if token.WaitTimeout(connectTimeout) && token.Error() != nil {
			b.logger.Debug("event publish failed", "id", r.ID, "error", token.Error())
		}
	}()
}

// Close disconnects from the broker.
func (b *Bus) Close() {
	b.client.Disconnect(disconnectWait)
	b.logger.Info("disconnected from broker")
}

package bus

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/intent"
	"github.com/ayusman/mudra/internal/logging"
)

type doneToken struct{ err error }

func (t doneToken) Wait() bool                     { return true }
func (t doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Error() error                   { return t.err }
func (t doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type published struct {
	topic   string
	qos     byte
	payload []byte
}

// fakeClient records subscriptions and publications.
type fakeClient struct {
	mqtt.Client

	mu           sync.Mutex
	subs         map[string]mqtt.MessageHandler
	published    []published
	subErr       error
	disconnected bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{subs: map[string]mqtt.MessageHandler{}}
}

func (c *fakeClient) Subscribe(topic string, _ byte, cb mqtt.MessageHandler) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.subErr == nil {
		c.subs[topic] = cb
	}
	return doneToken{err: c.subErr}
}

func (c *fakeClient) Publish(topic string, qos byte, _ bool, payload interface{}) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published = append(c.published, published{topic: topic, qos: qos, payload: payload.([]byte)})
	return doneToken{}
}

func (c *fakeClient) Disconnect(uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnected = true
}

// deliver hands payload to the subscriber of topic.
func (c *fakeClient) deliver(t *testing.T, topic string, payload string) {
	t.Helper()
	c.mu.Lock()
	cb, ok := c.subs[topic]
	c.mu.Unlock()
	require.True(t, ok, "no subscription for %s", topic)
	cb(c, &fakeMessage{topic: topic, payload: []byte(payload)})
}

type fakeMessage struct {
	mqtt.Message
	topic   string
	payload []byte
}

func (m *fakeMessage) Topic() string   { return m.topic }
func (m *fakeMessage) Payload() []byte { return m.payload }

type transcript struct {
	text  string
	final bool
	at    time.Time
}

type fakeHandler struct {
	got []transcript
}

func (h *fakeHandler) HandleTranscript(text string, final bool, at time.Time) (intent.Intent, control.Outcome) {
	h.got = append(h.got, transcript{text: text, final: final, at: at})
	return intent.Intent{}, control.OutcomeAccepted
}

func testConfig() config.MQTT {
	return config.MQTT{TopicPrefix: "home/mudra/", QoS: 1}
}

func TestBus_TranscriptSubscription(t *testing.T) {
	client := newFakeClient()
	h := &fakeHandler{}
	b := newBus(client, testConfig(), h, logging.Discard())

	require.NoError(t, b.subscribe(client))

	client.deliver(t, "home/mudra/transcripts", `{"text": "next song", "ts": 1700000000000}`)
	client.deliver(t, "home/mudra/transcripts", `{"text": "nex", "final": false}`)
	client.deliver(t, "home/mudra/transcripts", "  pause  ")
	client.deliver(t, "home/mudra/transcripts", `{"text": `)
	client.deliver(t, "home/mudra/transcripts", "   ")

	require.Len(t, h.got, 3)
	require.Equal(t, "next song", h.got[0].text)
	require.True(t, h.got[0].final)
	require.True(t, h.got[0].at.Equal(time.UnixMilli(1700000000000)))
	require.False(t, h.got[1].final)
	require.Equal(t, transcript{text: "pause", final: true}, h.got[2])
}

func TestBus_SubscribeError(t *testing.T) {
	client := newFakeClient()
	client.subErr = errors.New("not authorized")
	b := newBus(client, testConfig(), &fakeHandler{}, logging.Discard())

	require.EqualError(t, b.subscribe(client), "not authorized")
}

func TestBus_NoHandlerSkipsSubscription(t *testing.T) {
	client := newFakeClient()
	b := newBus(client, testConfig(), nil, logging.Discard())

	require.NoError(t, b.subscribe(client))
	require.Empty(t, client.subs)
}

func TestBus_PublishesRecords(t *testing.T) {
	client := newFakeClient()
	b := newBus(client, testConfig(), nil, logging.Discard())
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	b.Record(control.Record{
		ID:         "c1",
		Channel:    control.ChannelGesture,
		Action:     control.ActionID(intent.Next),
		Confidence: 0.85,
		Outcome:    control.OutcomeSucceeded,
		Source:     "rock",
		At:         at,
	})

	require.Len(t, client.published, 1)
	pub := client.published[0]
	require.Equal(t, "home/mudra/events", pub.topic)
	require.Equal(t, byte(1), pub.qos)

	var ev Event
	require.NoError(t, json.Unmarshal(pub.payload, &ev))
	require.Equal(t, Event{
		ID:         "c1",
		Channel:    "gesture",
		Action:     "next",
		Confidence: 0.85,
		Outcome:    "succeeded",
		Source:     "rock",
		At:         at,
	}, ev)
}

func TestBus_TopicAndQoS(t *testing.T) {
	b := newBus(newFakeClient(), config.MQTT{QoS: 7}, nil, logging.Discard())
	require.Equal(t, "events", b.topic(topicEvents))
	require.Equal(t, byte(1), b.qos)
}

func TestBus_Close(t *testing.T) {
	client := newFakeClient()
	b := newBus(client, testConfig(), nil, logging.Discard())
	b.Close()
	require.True(t, client.disconnected)
}

// Package mqttfeed subscribes to an MQTT topic carrying clause-file-format
// text and feeds it into the core engine as it arrives. Grounded on the
// teacher's own go-mqtt/main.go (github.com/eclipse/paho.mqtt.golang
// client/publish/subscribe pattern). Spec §5 allows "an outer system... to
// materialize [asynchronous] results before handing them to the core";
// here the outer system is the MQTT callback goroutine, serialized behind
// a caller-supplied lock so a query never observes a half-applied message.
package mqttfeed

import (
	"fmt"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"logicdb/pkg/engine"
)

// Feed subscribes to broker/topic and loads every message it receives into
// store as clause-file text, guarded by mu so in-flight queries never race
// a concurrent load.
type Feed struct {
	client mqtt.Client
	topic  string
	store  *engine.Store
	mu     *sync.RWMutex
	logger *zap.Logger
}

// Connect dials broker and subscribes to topic. mu is the same lock a
// query-serving layer (e.g. internal/httpapi.Server) takes for reads, so
// the two stay mutually exclusive.
func Connect(broker, topic string, store *engine.Store, mu *sync.RWMutex, logger *zap.Logger) (*Feed, error) {
	f := &Feed{topic: topic, store: store, mu: mu, logger: logger}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetDefaultPublishHandler(f.onMessage)
	f.client = mqtt.NewClient(opts)

	token := f.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqttfeed: connect to %s timed out", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqttfeed: connect to %s: %w", broker, err)
	}

	subTok := f.client.Subscribe(topic, 0, f.onMessage)
	if !subTok.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqttfeed: subscribe to %s timed out", topic)
	}
	if err := subTok.Error(); err != nil {
		return nil, fmt.Errorf("mqttfeed: subscribe to %s: %w", topic, err)
	}

	logger.Info("subscribed to fact feed", zap.String("broker", broker), zap.String("topic", topic))
	return f, nil
}

func (f *Feed) onMessage(client mqtt.Client, msg mqtt.Message) {
	text := string(msg.Payload())
	// Validate the whole message against a scratch store first, so a
	// malformed message adds nothing to the live store.
	if err := engine.NewStore().Load(strings.NewReader(text)); err != nil {
		f.logger.Warn("dropped malformed fact-feed message", zap.Error(err), zap.String("topic", f.topic))
		return
	}
	f.mu.Lock()
	err := f.store.Load(strings.NewReader(text))
	f.mu.Unlock()
	if err != nil {
		f.logger.Warn("dropped malformed fact-feed message", zap.Error(err), zap.String("topic", f.topic))
		return
	}
	f.logger.Debug("loaded fact-feed message", zap.String("topic", f.topic), zap.Int("bytes", len(text)))
}

// Close disconnects from the broker.
func (f *Feed) Close() {
	f.client.Disconnect(250)
}

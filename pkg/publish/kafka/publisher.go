// Package kafka publishes dataset processing events so downstream
// planners (report generators, GIS dashboards) can react to new
// classifications without polling the service.
package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/puneet-chandna/water-brakes/internal/model"
)

// Event is the wire record for one processed dataset.
type Event struct {
	DatasetID string        `json:"dataset_id"`
	Summary   model.Summary `json:"summary"`
	Zone      string        `json:"utm_zone,omitempty"`
	TS        time.Time     `json:"ts"`
}

type Publisher struct {
	topic   string
	events  chan Event
	prod    sarama.AsyncProducer
	log     zerolog.Logger
	stopped chan struct{}

	published prometheus.Counter
	dropped   prometheus.Counter
}

type Options struct {
	QueueSize int
	Logger    zerolog.Logger
	Register  prometheus.Registerer
}

// New connects an async producer. The publish path never blocks the
// request path: a full queue drops the event and bumps a counter.
func New(brokers []string, topic string, opts Options) (*Publisher, error) {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 1024
	}

	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_5_0_0
	cfg.Producer.Return.Errors = true
	cfg.Producer.Return.Successes = false

	prod, err := sarama.NewAsyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("create async producer: %w", err)
	}
	return newWithProducer(prod, topic, opts), nil
}

// newWithProducer is split out so tests can inject a fake producer.
func newWithProducer(prod sarama.AsyncProducer, topic string, opts Options) *Publisher {
	p := &Publisher{
		topic:     topic,
		events:    make(chan Event, opts.QueueSize),
		prod:      prod,
		log:       opts.Logger,
		stopped:   make(chan struct{}),
		published: prometheus.NewCounter(prometheus.CounterOpts{Name: "dataset_events_published_total", Help: "Dataset events handed to the Kafka producer."}),
		dropped:   prometheus.NewCounter(prometheus.CounterOpts{Name: "dataset_events_dropped_total", Help: "Dataset events dropped because the publish queue was full."}),
	}
	if opts.Register != nil {
		opts.Register.MustRegister(p.published, p.dropped)
	}

	go func() {
		defer close(p.stopped)
		for ev := range p.events {
			b, err := json.Marshal(ev)
			if err != nil {
				p.log.Error().Err(err).Msg("marshal dataset event")
				continue
			}
			p.prod.Input() <- &sarama.ProducerMessage{
				Topic: p.topic,
				Key:   sarama.StringEncoder(ev.DatasetID),
				Value: sarama.ByteEncoder(b),
			}
			p.published.Inc()
		}
	}()

	go func() {
		for err := range p.prod.Errors() {
			if err != nil {
				p.log.Error().Err(err).Msg("kafka producer error")
			}
		}
	}()

	return p
}

// Publish enqueues an event, dropping it when the queue is full.
func (p *Publisher) Publish(ev Event) {
	if ev.TS.IsZero() {
		ev.TS = time.Now().UTC()
	}
	select {
	case p.events <- ev:
	default:
		p.dropped.Inc()
	}
}

// Close drains the queue and shuts the producer down.
func (p *Publisher) Close() error {
	close(p.events)
	<-p.stopped
	if err := p.prod.Close(); err != nil {
		return fmt.Errorf("close producer: %w", err)
	}
	return nil
}

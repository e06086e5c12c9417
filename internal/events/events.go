// Package events publie les événements de commande et de paiement sur Kafka.
package events

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	OrderCreated       = "order.created"
	OrderStatusUpdated = "order.status_updated"
	PaymentSucceeded   = "payment.succeeded"
	PaymentFailed      = "payment.failed"
)

type Event struct {
	Type       string    `json:"type"`
	OrderID    string    `json:"orderId"`
	UserID     string    `json:"userId"`
	Data       any       `json:"data,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event)
	Close() error
}

// NopPublisher ignore les événements quand aucun broker n'est configuré.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) {}
func (NopPublisher) Close() error                   { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher écrit en tâche de fond; la requête HTTP n'attend jamais le broker.
type KafkaPublisher struct {
	writer  messageWriter
	queue   chan Event
	timeout time.Duration
	wg      sync.WaitGroup
	once    sync.Once
}

func NewKafkaPublisher(topic string, brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	log.Printf("✅ Producteur Kafka prêt (topic %s)", topic)
	return newKafkaPublisher(w)
}

func newKafkaPublisher(w messageWriter) *KafkaPublisher {
	p := &KafkaPublisher{writer: w, queue: make(chan Event, 128), timeout: 5 * time.Second}
	p.wg.Add(1)
	go p.run()
	return p
}

func (p *KafkaPublisher) Publish(_ context.Context, ev Event) {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now()
	}
	select {
	case p.queue <- ev:
	default:
		log.Printf("⚠️ File Kafka pleine, événement %s perdu pour la commande %s", ev.Type, ev.OrderID)
	}
}

func (p *KafkaPublisher) run() {
	defer p.wg.Done()
	for ev := range p.queue {
		payload, err := json.Marshal(ev)
		if err != nil {
			log.Printf("❌ Sérialisation événement %s: %v", ev.Type, err)
			continue
		}
		msg := kafka.Message{
			Key:   []byte(ev.OrderID), // ordre garanti par commande
			Value: payload,
			Headers: []kafka.Header{
				{Key: "event_type", Value: []byte(ev.Type)},
			},
		}

		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		if err := p.writer.WriteMessages(ctx, msg); err != nil {
			log.Printf("❌ Publication Kafka %s (commande %s): %v", ev.Type, ev.OrderID, err)
		}
		cancel()
	}
}

// Close vide la file avant de fermer le writer.
func (p *KafkaPublisher) Close() error {
	var err error
	p.once.Do(func() {
		close(p.queue)
		p.wg.Wait()
		err = p.writer.Close()
	})
	return err
}

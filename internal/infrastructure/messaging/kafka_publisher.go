package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/inventario-tracking/internal/application/tracking"
)

var _ tracking.Publisher = (*KafkaPublisher)(nil)

// messageWriter es la parte de *kafka.Writer que usa el publicador.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publica los movimientos del log en un tópico de Kafka.
// La clave del mensaje es "kind:id", así los eventos de un mismo ítem conservan su orden en la partición.
type KafkaPublisher struct {
	writer       messageWriter
	writeTimeout time.Duration
}

// NewKafkaPublisher construye el publicador sobre un kafka.Writer.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireAll,
		Compression:  kafka.Snappy,
	}
	return &KafkaPublisher{writer: writer, writeTimeout: 5 * time.Second}
}

// Publish escribe el lote completo; si falla, el seguidor reintenta desde el mismo cursor.
func (p *KafkaPublisher) Publish(ctx context.Context, events []tracking.MovementEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(events))
	for _, ev := range events {
		msg, err := toMessage(ev)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}

	ctx, cancel := context.WithTimeout(ctx, p.writeTimeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("kafka: escribir %d eventos de movimiento: %w", len(msgs), err)
	}
	return nil
}

// Close cierra el writer y vacía lo pendiente.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func toMessage(ev tracking.MovementEvent) (kafka.Message, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("kafka: serializar evento %s: %w", ev.MovementID, err)
	}
	return kafka.Message{
		Key:   []byte(ev.ItemKind + ":" + ev.ItemID),
		Value: body,
		Time:  ev.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(ev.Type)},
			{Key: "movement-id", Value: []byte(ev.MovementID)},
		},
	}, nil
}

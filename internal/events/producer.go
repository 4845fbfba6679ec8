package events

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// Appointment lifecycle event types.
const (
	AppointmentCreated     = "appointment_created"
	AppointmentAccepted    = "appointment_accepted"
	AppointmentRescheduled = "appointment_rescheduled"
	AppointmentCancelled   = "appointment_cancelled"
	AppointmentCompleted   = "appointment_completed"
)

// AppointmentEvent is the payload published on lifecycle transitions.
type AppointmentEvent struct {
	Type          string    `json:"type"`
	AppointmentID uint      `json:"appointment_id"`
	DoctorID      uint      `json:"doctor_id"`
	PatientID     uint      `json:"patient_id"`
	ScheduledAt   time.Time `json:"scheduled_at"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type Producer interface {
	SendMessage(ctx context.Context, key, value []byte) error
	Close() error
}

type kafkaProducer struct {
	writer *kafka.Writer
}

func NewKafkaProducer(broker, topic string) (Producer, error) {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
	}

	conn, err := kafka.Dial("tcp", broker)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Kafka: %w", err)
	}
	defer conn.Close()

	return &kafkaProducer{writer: writer}, nil
}

func (k *kafkaProducer) SendMessage(ctx context.Context, key, value []byte) error {
	return k.writer.WriteMessages(ctx, kafka.Message{
		Key:   key,
		Value: value,
	})
}

func (k *kafkaProducer) Close() error {
	return k.writer.Close()
}

package queue

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

// Message wraps a TaskEvent with its RabbitMQ delivery information
type Message struct {
	Event       *TaskEvent
	DeliveryTag uint64
	Channel     *amqp.Channel
}

var _ MessageInterface = (*Message)(nil)

// Ack acknowledges the message
func (m *Message) Ack() error {
	return m.Channel.Ack(m.DeliveryTag, false)
}

// Nack negatively acknowledges the message
func (m *Message) Nack(requeue bool) error {
	return m.Channel.Nack(m.DeliveryTag, false, requeue)
}

// GetEvent returns the decoded event
func (m *Message) GetEvent() *TaskEvent {
	return m.Event
}

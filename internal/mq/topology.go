package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// Exchanges — имена обменников.
const (
	ExchangeReviews Exchange = "argus.reviews"
	ExchangeDLQ     Exchange = "argus.dlq"
)

// Queues — имена очередей.
const (
	QueueReviewsPending   Queue = "reviews.pending"
	QueueReviewsCompleted Queue = "reviews.completed"
	QueueDLQReviews       Queue = "dlq.reviews"
)

// Routing keys.
const (
	RoutingKeyPending    RoutingKey = "pending"
	RoutingKeyCompleted  RoutingKey = "completed"
	RoutingKeyDLQReviews RoutingKey = "reviews"
)

func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		if err := declareExchanges(ch); err != nil {
			return err
		}
		if err := declareQueues(ch); err != nil {
			return err
		}
		return bindQueues(ch)
	})
}

// declareExchanges создаёт обменники.
func declareExchanges(ch *amqp.Channel) error {
	exchanges := []struct {
		name Exchange
		kind string
	}{
		{ExchangeReviews, "direct"},
		{ExchangeDLQ, "direct"},
	}

	for _, ex := range exchanges {
		err := ch.ExchangeDeclare(
			string(ex.name), // name
			ex.kind,         // type
			true,            // durable
			false,           // auto-deleted
			false,           // internal
			false,           // no-wait
			nil,             // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ex.name, err)
		}
	}

	return nil
}

// declareQueues создаёт очереди.
func declareQueues(ch *amqp.Channel) error {
	// Аргументы для очередей с DLQ
	dlqArgs := amqp.Table{
		"x-dead-letter-exchange":    string(ExchangeDLQ),
		"x-dead-letter-routing-key": string(RoutingKeyDLQReviews),
	}

	queues := []struct {
		name Queue
		args amqp.Table
	}{
		// reviews.pending — с DLQ (неразборчивые сообщения уходят туда)
		{QueueReviewsPending, dlqArgs},

		// reviews.completed — без DLQ (события завершения)
		{QueueReviewsCompleted, nil},

		// dlq.reviews — сама DLQ очередь
		{QueueDLQReviews, nil},
	}

	for _, q := range queues {
		_, err := ch.QueueDeclare(
			string(q.name), // name
			true,           // durable
			false,          // delete when unused
			false,          // exclusive
			false,          // no-wait
			q.args,         // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", q.name, err)
		}
	}

	return nil
}

// bindQueues привязывает очереди к обменникам.
func bindQueues(ch *amqp.Channel) error {
	bindings := []struct {
		queue      Queue
		routingKey RoutingKey
		exchange   Exchange
	}{
		{QueueReviewsPending, RoutingKeyPending, ExchangeReviews},
		{QueueReviewsCompleted, RoutingKeyCompleted, ExchangeReviews},
		{QueueDLQReviews, RoutingKeyDLQReviews, ExchangeDLQ},
	}

	for _, b := range bindings {
		err := ch.QueueBind(
			string(b.queue),      // queue name
			string(b.routingKey), // routing key
			string(b.exchange),   // exchange
			false,                // no-wait
			nil,                  // arguments
		)
		if err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", b.queue, b.exchange, err)
		}
	}

	return nil
}

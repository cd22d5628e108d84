// Package service publishes domain events to RabbitMQ.  Errors are
// logged and swallowed: the engine's state transition has already
// committed by the time an event is published, and delivery is best
// effort by contract.
package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/dineflow/table-reservation/internal/model"
	q "github.com/dineflow/table-reservation/internal/queue"
)

// EventPublisher implements engine.EventSink over RabbitMQ.  Each
// publish dials a short-lived connection; the volume is low (one event
// per booking or latch) and a fresh dial keeps the publisher robust
// against broker restarts without connection management.
type EventPublisher struct {
	url string
	log *logrus.Logger
}

// NewEventPublisher returns a publisher for the given broker URL.
func NewEventPublisher(url string, log *logrus.Logger) *EventPublisher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &EventPublisher{url: url, log: log}
}

// ReservationConfirmed publishes to the reservation.confirmed queue.
func (p *EventPublisher) ReservationConfirmed(res model.Reservation) {
	p.publish(q.ReservationConfirmedQueue, q.ReservationConfirmedEvent{
		ReservationID:   res.ID,
		UserID:          res.UserID,
		TableID:         res.TableID,
		Date:            res.Date,
		TimeSlot:        res.TimeSlot,
		GuestCount:      res.GuestCount,
		CustomerName:    res.CustomerName,
		CustomerContact: res.CustomerContact,
		ConfirmedAt:     res.CreatedAt.UTC().Format(time.RFC3339),
	})
}

// AlmostReady publishes a walk-in almost-ready notification.
func (p *EventPublisher) AlmostReady(entry model.WalkInQueueEntry) {
	p.publish(q.AlmostReadyQueue, q.AlmostReadyEvent{
		Source:             "walkin",
		EntryID:            entry.ID,
		CustomerName:       entry.CustomerName,
		GuestCount:         entry.GuestCount,
		NotificationMethod: entry.NotificationMethod,
		Contact:            entry.Contact,
		Position:           entry.Position,
		WaitMinutes:        entry.EstimatedWaitMinutes,
		QueueDate:          entry.QueueDate,
		TriggeredAt:        time.Now().UTC().Format(time.RFC3339),
	})
}

// SlotAlmostReady publishes a slot waiting-queue notification.
func (p *EventPublisher) SlotAlmostReady(entry model.SlotQueueEntry) {
	p.publish(q.AlmostReadyQueue, q.AlmostReadyEvent{
		Source:      "slot",
		EntryID:     entry.ID,
		UserID:      entry.UserID,
		GuestCount:  entry.GuestCount,
		Position:    entry.Position,
		WaitRange:   entry.EstimatedWaitRange,
		QueueDate:   entry.Date,
		TimeSlot:    entry.TimeSlot,
		TriggeredAt: time.Now().UTC().Format(time.RFC3339),
	})
}

// publish marshals the event and sends it persistently to the named
// durable queue via the default exchange.
func (p *EventPublisher) publish(queueName string, event interface{}) {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.WithError(err).Warn("rabbitmq: dial failed")
		return
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.WithError(err).Warn("rabbitmq: channel open failed")
		return
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive
	// broker restarts.
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		p.log.WithError(err).Warn("rabbitmq: queue declare failed")
		return
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.log.WithError(err).Error("rabbitmq: marshal event failed")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
		p.log.WithError(err).Warn("rabbitmq: publish failed")
	}
}

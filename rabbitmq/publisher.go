package rabbitmq

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/apex/log"
	"github.com/streadway/amqp"

	"civic-reports-service/models"
)

const (
	RoutingKeySubmitted     = "report.submitted"
	RoutingKeyStatusChanged = "report.status_changed"
)

// ReportEvent is the message fanned out to analysis and notification
// consumers on every catalog mutation.
type ReportEvent struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Category  string        `json:"category"`
	Status    models.Status `json:"status"`
	Latitude  float64       `json:"latitude"`
	Longitude float64       `json:"longitude"`
	Timestamp time.Time     `json:"timestamp"`
}

// Publisher fans report lifecycle events out through a durable direct
// exchange. It implements catalog.Publisher; publishing is best-effort and
// never fails the originating operation.
type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

func NewPublisher(amqpURL, exchangeName string) (*Publisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := channel.ExchangeDeclare(
		exchangeName,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &Publisher{conn: conn, channel: channel, exchange: exchangeName}, nil
}

func (p *Publisher) ReportSubmitted(r *models.Report) {
	p.publish(RoutingKeySubmitted, r)
}

func (p *Publisher) StatusChanged(r *models.Report) {
	p.publish(RoutingKeyStatusChanged, r)
}

func (p *Publisher) publish(routingKey string, r *models.Report) {
	event := ReportEvent{
		ID:        r.ID,
		Title:     r.Title,
		Category:  r.Category,
		Status:    r.Status,
		Latitude:  r.Location.Latitude,
		Longitude: r.Location.Longitude,
		Timestamp: time.Now().UTC(),
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Errorf("Failed to marshal %s event for report %s: %v", routingKey, r.ID, err)
		return
	}

	err = p.channel.Publish(
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		log.Errorf("Failed to publish %s for report %s: %v", routingKey, r.ID, err)
		return
	}
	log.Infof("Published %s for report %s", routingKey, r.ID)
}

// Close closes the channel and connection.
func (p *Publisher) Close() error {
	var err error
	if p.channel != nil {
		if cerr := p.channel.Close(); cerr != nil {
			log.Errorf("Failed to close channel: %v", cerr)
			err = cerr
		}
	}
	if p.conn != nil {
		if cerr := p.conn.Close(); cerr != nil {
			log.Errorf("Failed to close connection: %v", cerr)
			if err == nil {
				err = cerr
			}
		}
	}
	return err
}

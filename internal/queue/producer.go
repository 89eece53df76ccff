package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"auth-service/pkg/utils"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	exchangeName = "auth.events"
	queueName    = "auth_events"
	routingKey   = "auth"
)

// AuthEvent is the wire format for auth/security events. Security reviewers
// consume these downstream; the auth path itself never blocks on them.
type AuthEvent struct {
	Type     string    `json:"type"` // "user.login", "token.reuse_detected", "family.revoked", ...
	UserID   string    `json:"user_id"`
	FamilyID string    `json:"family_id,omitempty"`
	JTI      string    `json:"jti,omitempty"`
	Reason   string    `json:"reason,omitempty"`
	Occurred time.Time `json:"occurred"`
}

type Producer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	url     string
}

func NewProducer() (*Producer, error) {
	host := utils.GetEnvOrDefault("RABBITMQ_HOST", "localhost")
	port := utils.GetEnvOrDefault("RABBITMQ_PORT", "5672")
	username := utils.GetEnvOrDefault("RABBITMQ_USERNAME", "guest")
	password := utils.GetEnvOrDefault("RABBITMQ_PASSWORD", "guest")
	vhost := utils.GetEnvOrDefault("RABBITMQ_VHOST", "/")

	url := fmt.Sprintf("amqp://%s:%s@%s:%s/%s", username, password, host, port, vhost)

	conn, ch, err := dial(url)
	if err != nil {
		return nil, err
	}

	producer := &Producer{
		conn:    conn,
		channel: ch,
		url:     url,
	}
	producer.setupConnectionRecovery()
	return producer, nil
}

func dial(url string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchangeName, "direct", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := ch.QueueBind(queueName, routingKey, exchangeName, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	return conn, ch, nil
}

func (p *Producer) PublishAuthEvent(event *AuthEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal auth event: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(ctx,
		exchangeName,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		})
	if err != nil {
		return fmt.Errorf("failed to publish auth event: %w", err)
	}
	return nil
}

func (p *Producer) Close() error {
	if err := p.channel.Close(); err != nil {
		return err
	}
	return p.conn.Close()
}

// setupConnectionRecovery reconnects when the broker drops the connection or
// the channel.
func (p *Producer) setupConnectionRecovery() {
	go func() {
		for err := range p.conn.NotifyClose(make(chan *amqp.Error)) {
			if err != nil {
				utils.LogWarn("queue", fmt.Sprintf("RabbitMQ connection lost: %v, reconnecting", err))
				p.reconnect()
			}
		}
	}()

	go func() {
		for err := range p.channel.NotifyClose(make(chan *amqp.Error)) {
			if err != nil {
				utils.LogWarn("queue", fmt.Sprintf("RabbitMQ channel lost: %v, reconnecting", err))
				p.reconnect()
			}
		}
	}()
}

func (p *Producer) reconnect() {
	for {
		if p.channel != nil {
			p.channel.Close()
		}
		if p.conn != nil {
			p.conn.Close()
		}

		time.Sleep(5 * time.Second)

		conn, ch, err := dial(p.url)
		if err != nil {
			utils.LogWarn("queue", fmt.Sprintf("reconnect failed: %v, retrying in 5 seconds", err))
			continue
		}

		p.conn = conn
		p.channel = ch
		utils.LogInfo("queue", "reconnected to RabbitMQ")
		break
	}
}

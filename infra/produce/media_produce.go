package produce

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	MediaExchange = "media.exchange"

	UploadCompletedQueue      = "media.upload.completed"
	UploadCompletedRoutingKey = "media.upload.completed"

	AssetsDeletedQueue      = "media.assets.deleted"
	AssetsDeletedRoutingKey = "media.assets.deleted"
)

// UploadCompletedMessage mirrors the advisory completion callback.
type UploadCompletedMessage struct {
	FileID    string `json:"file_id"`
	FileURL   string `json:"file_url"`
	Route     string `json:"route"`
	UserID    string `json:"user_id"`
	Timestamp int64  `json:"timestamp"`
}

type DeletedAsset struct {
	URL     string `json:"url"`
	Key     string `json:"key,omitempty"`
	Outcome string `json:"outcome"`
	Reason  string `json:"reason,omitempty"`
}

// AssetsDeletedMessage is the audit record of one deletion batch.
type AssetsDeletedMessage struct {
	UserID    string         `json:"user_id"`
	Success   bool           `json:"success"`
	Assets    []DeletedAsset `json:"assets"`
	Timestamp int64          `json:"timestamp"`
}

type MediaProduceService struct {
	channel *amqp.Channel
}

func InitMediaProduceService(channel *amqp.Channel) (*MediaProduceService, error) {
	if err := DeclareMediaTopology(channel); err != nil {
		return nil, err
	}
	return &MediaProduceService{channel: channel}, nil
}

// DeclareMediaTopology declares the exchange and both durable queues. It is idempotent.
func DeclareMediaTopology(channel *amqp.Channel) error {
	err := channel.ExchangeDeclare(
		MediaExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare media exchange: %w", err)
	}

	bindings := []struct{ queue, routingKey string }{
		{UploadCompletedQueue, UploadCompletedRoutingKey},
		{AssetsDeletedQueue, AssetsDeletedRoutingKey},
	}
	for _, b := range bindings {
		_, err := channel.QueueDeclare(
			b.queue,
			true,  // durable
			false, // auto-delete
			false, // exclusive
			false, // no-wait
			nil,
		)
		if err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", b.queue, err)
		}

		if err := channel.QueueBind(b.queue, b.routingKey, MediaExchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue %s: %w", b.queue, err)
		}
	}
	return nil
}

func (s *MediaProduceService) PublishUploadCompleted(ctx context.Context, msg UploadCompletedMessage) error {
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().Unix()
	}
	return s.publish(ctx, UploadCompletedRoutingKey, msg)
}

func (s *MediaProduceService) PublishAssetsDeleted(ctx context.Context, msg AssetsDeletedMessage) error {
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().Unix()
	}
	return s.publish(ctx, AssetsDeletedRoutingKey, msg)
}

func (s *MediaProduceService) publish(ctx context.Context, routingKey string, msg any) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return s.channel.PublishWithContext(
		ctx,
		MediaExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
}

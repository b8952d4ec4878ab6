package worker

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/tnqbao/gau-media-gateway/entity"
	"github.com/tnqbao/gau-media-gateway/infra"
	"github.com/tnqbao/gau-media-gateway/infra/produce"
)

// MediaConsumer turns media events into audit log lines. It holds no state and never retries deletions.
type MediaConsumer struct {
	channel *amqp.Channel
	logger  *infra.LoggerClient
}

func NewMediaConsumer(channel *amqp.Channel, logger *infra.LoggerClient) *MediaConsumer {
	return &MediaConsumer{
		channel: channel,
		logger:  logger,
	}
}

func (c *MediaConsumer) Start(ctx context.Context) error {
	if err := produce.DeclareMediaTopology(c.channel); err != nil {
		return err
	}
	if err := c.startQueueConsumer(ctx, produce.UploadCompletedQueue, c.handleUploadCompleted); err != nil {
		return fmt.Errorf("failed to start upload completed consumer: %w", err)
	}
	if err := c.startQueueConsumer(ctx, produce.AssetsDeletedQueue, c.handleAssetsDeleted); err != nil {
		return fmt.Errorf("failed to start assets deleted consumer: %w", err)
	}
	return nil
}

func (c *MediaConsumer) startQueueConsumer(ctx context.Context, queue string, handle func(context.Context, []byte) error) error {
	msgs, err := c.channel.Consume(
		queue,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer on %s: %w", queue, err)
	}

	c.logger.InfoWithContextf(ctx, "[Media Consumer] Started listening on queue: %s", queue)

	go func() {
		for {
			select {
			case <-ctx.Done():
				c.logger.InfoWithContextf(ctx, "[Media Consumer - %s] Shutting down...", queue)
				return
			case msg, ok := <-msgs:
				if !ok {
					c.logger.WarningWithContextf(ctx, "[Media Consumer - %s] Channel closed", queue)
					return
				}
				if err := handle(ctx, msg.Body); err != nil {
					c.logger.ErrorWithContextf(ctx, err, "[Media Consumer - %s] Dropping undecodable message", queue)
					_ = msg.Nack(false, false)
					continue
				}
				_ = msg.Ack(false)
			}
		}
	}()

	return nil
}

func (c *MediaConsumer) handleUploadCompleted(ctx context.Context, body []byte) error {
	var payload produce.UploadCompletedMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal upload completed message: %w", err)
	}
	if payload.FileID == "" {
		return fmt.Errorf("upload completed message without file id")
	}

	c.logger.InfoWithContextf(ctx, "[Media Consumer - Upload] route=%s file=%s url=%s user=%s at=%d",
		payload.Route, payload.FileID, payload.FileURL, payload.UserID, payload.Timestamp)
	return nil
}

func (c *MediaConsumer) handleAssetsDeleted(ctx context.Context, body []byte) error {
	var payload produce.AssetsDeletedMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal assets deleted message: %w", err)
	}

	failed := 0
	for _, asset := range payload.Assets {
		if asset.Outcome == string(entity.DeletionFailed) {
			failed++
			c.logger.WarningWithContextf(ctx, "[Media Consumer - Delete] Asset not deleted: url=%s reason=%s user=%s",
				asset.URL, asset.Reason, payload.UserID)
		}
	}

	c.logger.InfoWithContextf(ctx, "[Media Consumer - Delete] Batch by user=%s: %d asset(s), %d failed, success=%t",
		payload.UserID, len(payload.Assets), failed, payload.Success)
	return nil
}

package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	rediscommon "summitly-data/common/redis"
)

// EventConsumer 互动事件消费者
type EventConsumer struct {
	redisClient  *redis.Client
	aggregator   *Aggregator
	logger       *zap.Logger
	stream       string
	groupName    string
	consumerName string
	batchSize    int64
}

// NewEventConsumer 创建事件消费者
func NewEventConsumer(
	redisClient *redis.Client,
	aggregator *Aggregator,
	logger *zap.Logger,
	stream string,
	groupName string,
	consumerName string,
	batchSize int64,
) *EventConsumer {
	return &EventConsumer{
		redisClient:  redisClient,
		aggregator:   aggregator,
		logger:       logger,
		stream:       stream,
		groupName:    groupName,
		consumerName: consumerName,
		batchSize:    batchSize,
	}
}

// Start 启动事件消费者
func (c *EventConsumer) Start(ctx context.Context) error {
	// 创建消费者组
	if err := rediscommon.CreateConsumerGroup(ctx, c.redisClient, c.stream, c.groupName); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	c.logger.Info("Engagement consumer started",
		zap.String("stream", c.stream),
		zap.String("consumer_group", c.groupName),
		zap.String("consumer_name", c.consumerName),
	)

	// 消费事件（带指数退避）
	backoffDuration := time.Second
	maxBackoff := 30 * time.Second

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			if err := c.consumeEvents(ctx); err != nil {
				c.logger.Error("Failed to consume events",
					zap.Error(err),
					zap.Duration("backoff", backoffDuration),
				)

				// 指数退避
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(backoffDuration):
					backoffDuration *= 2
					if backoffDuration > maxBackoff {
						backoffDuration = maxBackoff
					}
				}
			} else {
				// 成功时重置退避时间
				backoffDuration = time.Second
			}
		}
	}
}

// consumeEvents 消费事件
func (c *EventConsumer) consumeEvents(ctx context.Context) error {
	messages, err := rediscommon.ReadFromStream(
		ctx,
		c.redisClient,
		c.stream,
		c.groupName,
		c.consumerName,
		c.batchSize,
	)
	if err != nil {
		return fmt.Errorf("failed to read from stream: %w", err)
	}

	for _, msg := range messages {
		if err := c.processEvent(ctx, msg); err != nil {
			c.logger.Error("Failed to process event",
				zap.String("message_id", msg.ID),
				zap.Error(err),
			)
			// 继续处理下一条消息，不中断
		} else {
			// 处理成功后确认消息
			if err := c.ackMessage(ctx, msg.ID); err != nil {
				c.logger.Warn("Failed to ack message",
					zap.String("message_id", msg.ID),
					zap.Error(err),
				)
			}
		}
	}

	return nil
}

// processEvent 处理单个事件
func (c *EventConsumer) processEvent(ctx context.Context, msg rediscommon.StreamMessage) error {
	event, err := c.parseEvent(msg)
	if err != nil {
		return fmt.Errorf("failed to parse event: %w", err)
	}

	switch event.Event {
	case EventPageView, EventLead:
		return c.aggregator.ApplyEvent(ctx, event)

	default:
		c.logger.Warn("Unknown event type",
			zap.String("event", event.Event),
		)
		return nil
	}
}

// parseEvent 解析事件消息
func (c *EventConsumer) parseEvent(msg rediscommon.StreamMessage) (*EngagementEvent, error) {
	// 尝试从 data 字段解析 JSON
	if dataStr, ok := msg.Values["data"].(string); ok {
		var event EngagementEvent
		if err := json.Unmarshal([]byte(dataStr), &event); err == nil {
			return &event, nil
		}
	}

	// 如果 data 字段不存在，直接从 Values 解析
	event := &EngagementEvent{}

	if eventType, ok := msg.Values["event"].(string); ok {
		event.Event = eventType
	}
	if projectID, ok := msg.Values["project_id"].(string); ok {
		event.ProjectID = projectID
	}
	if slug, ok := msg.Values["slug"].(string); ok {
		event.Slug = slug
	}
	if city, ok := msg.Values["city"].(string); ok {
		event.City = city
	}

	if event.Event == "" || event.ProjectID == "" {
		return nil, fmt.Errorf("invalid event: missing event or project_id")
	}

	return event, nil
}

// ackMessage 确认消息
func (c *EventConsumer) ackMessage(ctx context.Context, messageID string) error {
	return c.redisClient.XAck(ctx, c.stream, c.groupName, messageID).Err()
}

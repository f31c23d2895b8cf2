package analytics

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	rediscommon "summitly-data/common/redis"
)

// Publisher 互动事件发布者
// 发布失败只记录Warn，不影响请求主流程
type Publisher struct {
	redisClient *redis.Client
	stream      string
	logger      *zap.Logger
}

// NewPublisher 创建事件发布者
func NewPublisher(redisClient *redis.Client, stream string, logger *zap.Logger) *Publisher {
	return &Publisher{
		redisClient: redisClient,
		stream:      stream,
		logger:      logger,
	}
}

// PublishEngagement 发布互动事件（fire-and-forget）
func (p *Publisher) PublishEngagement(ctx context.Context, event *EngagementEvent) {
	if p == nil || p.redisClient == nil || event == nil {
		return
	}

	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}

	if _, err := rediscommon.PublishJSONToStream(ctx, p.redisClient, p.stream, event); err != nil {
		p.logger.Warn("Failed to publish engagement event",
			zap.String("event", event.Event),
			zap.String("project_id", event.ProjectID),
			zap.Error(err),
		)
	}
}

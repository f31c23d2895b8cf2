package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	rediscommon "summitly-data/common/redis"
	"summitly-data/internal/store"
)

const testStream = "summitly:events:engagement"

func setupTestConsumer(t *testing.T) (*redis.Client, *EventConsumer, *Aggregator) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	agg := NewAggregator(store.NewRedisKV(client), 10*time.Minute, zap.NewNop())
	consumer := NewEventConsumer(client, agg, zap.NewNop(), testStream, "engagement-aggregator", "test-consumer-1", 10)

	return client, consumer, agg
}

func TestParseEvent_DataField(t *testing.T) {
	_, consumer, _ := setupTestConsumer(t)

	event, err := consumer.parseEvent(rediscommon.StreamMessage{
		ID: "1-0",
		Values: map[string]interface{}{
			"data": `{"event":"page_view","project_id":"proj-1","slug":"summit-towers","city":"Toronto","timestamp":1756000000}`,
		},
	})

	require.NoError(t, err)
	assert.Equal(t, EventPageView, event.Event)
	assert.Equal(t, "proj-1", event.ProjectID)
	assert.Equal(t, "summit-towers", event.Slug)
	assert.Equal(t, "Toronto", event.City)
	assert.Equal(t, int64(1756000000), event.Timestamp)
}

func TestParseEvent_FlatValues(t *testing.T) {
	_, consumer, _ := setupTestConsumer(t)

	// data 字段不是合法 JSON 时退回平铺字段
	event, err := consumer.parseEvent(rediscommon.StreamMessage{
		ID: "1-0",
		Values: map[string]interface{}{
			"data":       "not json",
			"event":      "lead",
			"project_id": "proj-2",
		},
	})

	require.NoError(t, err)
	assert.Equal(t, EventLead, event.Event)
	assert.Equal(t, "proj-2", event.ProjectID)
}

func TestParseEvent_Invalid(t *testing.T) {
	_, consumer, _ := setupTestConsumer(t)

	_, err := consumer.parseEvent(rediscommon.StreamMessage{
		ID:     "1-0",
		Values: map[string]interface{}{"init": "true"},
	})
	assert.Error(t, err)

	_, err = consumer.parseEvent(rediscommon.StreamMessage{
		ID:     "1-0",
		Values: map[string]interface{}{"event": "page_view"}, // 缺 project_id
	})
	assert.Error(t, err)
}

func TestProcessEvent_UnknownTypeIgnored(t *testing.T) {
	_, consumer, agg := setupTestConsumer(t)
	ctx := context.Background()

	// 未知事件类型只告警不报错，避免卡住消费
	err := consumer.processEvent(ctx, rediscommon.StreamMessage{
		ID: "1-0",
		Values: map[string]interface{}{
			"data": `{"event":"signup","project_id":"proj-1"}`,
		},
	})
	require.NoError(t, err)

	stats, err := agg.ProjectStats(ctx, "proj-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Views)
}

func TestConsumeEvents_EndToEnd(t *testing.T) {
	client, consumer, agg := setupTestConsumer(t)
	ctx := context.Background()

	// 先发布事件（发布会创建 stream），再建消费者组
	publisher := NewPublisher(client, testStream, zap.NewNop())
	publisher.PublishEngagement(ctx, &EngagementEvent{
		Event:     EventPageView,
		ProjectID: "proj-1",
		Slug:      "summit-towers",
		City:      "Toronto",
	})
	publisher.PublishEngagement(ctx, &EngagementEvent{
		Event:     EventLead,
		ProjectID: "proj-1",
	})

	require.NoError(t, rediscommon.CreateConsumerGroup(ctx, client, testStream, "engagement-aggregator"))

	require.NoError(t, consumer.consumeEvents(ctx))

	stats, err := agg.ProjectStats(ctx, "proj-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Views)
	assert.Equal(t, int64(1), stats.Leads)

	// 处理成功的消息都已确认
	pending, err := client.XPending(ctx, testStream, "engagement-aggregator").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), pending.Count)
}

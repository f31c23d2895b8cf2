// Package analytics 项目热度统计：
// 页面浏览和Lead提交以事件形式写入 Redis Streams，
// 消费者组聚合为计数器，热门项目榜单以快照缓存。
package analytics

// 事件类型
const (
	EventPageView = "page_view"
	EventLead     = "lead"
)

// EngagementEvent 互动事件
type EngagementEvent struct {
	Event     string `json:"event"`              // page_view | lead
	ProjectID string `json:"project_id"`
	Slug      string `json:"slug,omitempty"`
	City      string `json:"city,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// ProjectEngagement 单个项目的热度计数
type ProjectEngagement struct {
	ProjectID string `json:"project_id"`
	Views     int64  `json:"views"`
	Leads     int64  `json:"leads"`
}

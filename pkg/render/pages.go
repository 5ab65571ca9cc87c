package render

import (
	"github.com/goliatone/go-formflow/pkg/chat"
	"github.com/goliatone/go-formflow/pkg/portal"
)

// RewardsView adds the derived progress figures to the rewards data.
type RewardsView struct {
	portal.Rewards
	LevelProgress float64          `json:"levelProgress"`
	Upcoming      []UpcomingReward `json:"upcoming"`
}

// UpcomingReward is an upcoming reward with its rounded progress.
type UpcomingReward struct {
	portal.UpcomingReward
	Percent int `json:"percent"`
}

// NewRewardsView derives the rewards page view.
func NewRewardsView(data portal.Rewards) RewardsView {
	view := RewardsView{Rewards: data, LevelProgress: data.Stats.LevelProgress()}
	for _, reward := range data.Upcoming {
		view.Upcoming = append(view.Upcoming, UpcomingReward{UpcomingReward: reward, Percent: reward.Percent()})
	}
	return view
}

// DashboardView carries the dashboard with change labels resolved.
type DashboardView struct {
	portal.Dashboard
	Metrics []DashboardMetric `json:"metrics"`
}

// DashboardMetric is a counter with its signed change label.
type DashboardMetric struct {
	portal.ReportMetric
	ChangeLabel string `json:"changeLabel"`
}

// NewDashboardView derives the dashboard page view.
func NewDashboardView(data portal.Dashboard) DashboardView {
	view := DashboardView{Dashboard: data}
	for _, metric := range data.Metrics {
		view.Metrics = append(view.Metrics, DashboardMetric{ReportMetric: metric, ChangeLabel: metric.ChangeLabel()})
	}
	return view
}

// ImpactView carries the sustainability report with percentages resolved.
type ImpactView struct {
	portal.Impact
	Metrics []ImpactMetric `json:"metrics"`
}

// ImpactMetric is a saving with its capped percentage.
type ImpactMetric struct {
	portal.ImpactMetric
	Percent      float64 `json:"percent"`
	AboveAverage bool    `json:"aboveAverage"`
}

// NewImpactView derives the impact page view.
func NewImpactView(data portal.Impact) ImpactView {
	view := ImpactView{Impact: data}
	for _, metric := range data.Metrics {
		view.Metrics = append(view.Metrics, ImpactMetric{
			ImpactMetric: metric,
			Percent:      metric.Percent(),
			AboveAverage: metric.AboveAverage(),
		})
	}
	return view
}

// ChatView is the conversation as drawn on the chat page.
type ChatView struct {
	Messages []ChatMessage `json:"messages"`
	Pending  bool          `json:"pending"`
	CSRF     string        `json:"csrf"`
}

// ChatMessage is one rendered chat bubble.
type ChatMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
	Time string `json:"time"`
}

// NewChatView projects a conversation.
func NewChatView(messages []chat.Message, pending bool, csrf string) ChatView {
	view := ChatView{Pending: pending, CSRF: csrf}
	for _, msg := range messages {
		view.Messages = append(view.Messages, ChatMessage{
			Role: string(msg.Role),
			Text: msg.Text,
			Time: msg.At.Format("3:04 PM"),
		})
	}
	return view
}

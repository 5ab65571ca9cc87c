package portal

import (
	"math"
	"math/rand/v2"
)

// Rarity ranks a badge.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// UserStats summarises the signed-in user's progress.
type UserStats struct {
	TotalPoints     int `json:"totalPoints"`
	CurrentStreak   int `json:"currentStreak"`
	Level           int `json:"level"`
	NextLevelPoints int `json:"nextLevelPoints"`
	Badges          int `json:"badges"`
}

// LevelProgress is the percentage of the way to the next level.
func (s UserStats) LevelProgress() float64 {
	if s.NextLevelPoints <= 0 {
		return 0
	}
	return float64(s.TotalPoints) / float64(s.NextLevelPoints) * 100
}

// Badge is an earned achievement.
type Badge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	EarnedDate  string `json:"earnedDate"`
	Rarity      Rarity `json:"rarity"`
}

// UpcomingReward tracks progress toward an unearned achievement.
type UpcomingReward struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Desc     string `json:"description"`
	Current  int    `json:"currentProgress"`
	Target   int    `json:"targetProgress"`
	Category string `json:"category"`
}

// Percent is the rounded completion percentage.
func (r UpcomingReward) Percent() int {
	if r.Target <= 0 {
		return 0
	}
	return int(math.Round(float64(r.Current) / float64(r.Target) * 100))
}

// Rewards is the data behind the rewards page.
type Rewards struct {
	Stats    UserStats        `json:"stats"`
	Badges   []Badge          `json:"badges"`
	Upcoming []UpcomingReward `json:"upcoming"`
	Message  string           `json:"message"`
}

// MotivationalMessages rotate on the rewards page.
var MotivationalMessages = []string{
	"🔥 You're on fire! Keep that streak going!",
	"⭐ Amazing progress! You're almost at the next level!",
	"🚀 Your dedication is paying off!",
	"💪 Champions are made through consistency!",
	"🎯 Focus on your goals - you've got this!",
}

// RewardsData returns the rewards page content with a motivational message
// chosen by pick (rand.IntN when nil).
func RewardsData(pick func(n int) int) Rewards {
	if pick == nil {
		pick = rand.IntN
	}
	return Rewards{
		Stats: UserStats{
			TotalPoints:     12750,
			CurrentStreak:   15,
			Level:           8,
			NextLevelPoints: 15000,
			Badges:          24,
		},
		Badges: []Badge{
			{ID: "1", Name: "First Steps", Description: "Complete your first challenge", EarnedDate: "2024-05-15", Rarity: RarityCommon},
			{ID: "2", Name: "Streak Master", Description: "10 day consecutive streak", EarnedDate: "2024-05-20", Rarity: RarityRare},
			{ID: "3", Name: "Point Collector", Description: "Earned 10,000 points", EarnedDate: "2024-05-25", Rarity: RarityEpic},
			{ID: "4", Name: "Rising Star", Description: "Reached level 5", EarnedDate: "2024-05-28", Rarity: RarityRare},
			{ID: "5", Name: "Champion", Description: "Complete 50 challenges", EarnedDate: "2024-05-30", Rarity: RarityLegendary},
			{ID: "6", Name: "Consistency King", Description: "Complete daily goals for a week", EarnedDate: "2024-05-22", Rarity: RarityCommon},
		},
		Upcoming: []UpcomingReward{
			{ID: "1", Name: "Speed Demon", Desc: "Complete 5 challenges in under 1 hour", Current: 3, Target: 5, Category: "Speed"},
			{ID: "2", Name: "Power User", Desc: "Reach 15,000 total points", Current: 12750, Target: 15000, Category: "Points"},
			{ID: "3", Name: "Dedication", Desc: "Maintain a 30-day streak", Current: 15, Target: 30, Category: "Streak"},
			{ID: "4", Name: "Explorer", Desc: "Try 10 different challenge types", Current: 7, Target: 10, Category: "Variety"},
		},
		Message: MotivationalMessages[pick(len(MotivationalMessages))],
	}
}

package models

import (
	"time"
)

// BadgeIcon is the enum-keyed icon name for a badge; the client maps it to a
// visual via a lookup table.
type BadgeIcon string

const (
	IconAward        BadgeIcon = "Award"
	IconStar         BadgeIcon = "Star"
	IconFlame        BadgeIcon = "Flame"
	IconBrainCircuit BadgeIcon = "BrainCircuit"
	IconTrophy       BadgeIcon = "Trophy"
)

// Badge is an achievement definition
type Badge struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IconName    BadgeIcon `json:"iconName"`
}

// UserBadge records that a user earned a badge
type UserBadge struct {
	UserID   string    `json:"userId"`
	BadgeID  string    `json:"badgeId"`
	EarnedAt time.Time `json:"earnedAt"`
}

// LeaderboardUser is one row of the global leaderboard
type LeaderboardUser struct {
	ID                string `json:"id"`
	Rank              int    `json:"rank"`
	Name              string `json:"name"`
	ProfilePictureURL string `json:"profilePictureUrl"`
	Points            int    `json:"points"`
	DailyStreak       int    `json:"dailyStreak"`
}

// DailyQuest is a short-lived goal shown on the overview page
type DailyQuest struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	XP          int    `json:"xp"`
	Progress    int    `json:"progress"`
	Target      int    `json:"target"`
}

// UserLeague is one row of the weekly league widget
type UserLeague struct {
	ID                string `json:"id"`
	Rank              int    `json:"rank"`
	Name              string `json:"name"`
	ProfilePictureURL string `json:"profilePictureUrl"`
	Points            int    `json:"points"`
	League            string `json:"league"`
}

// SkillNode is one node of the mastery skill tree. Level 0 means locked.
type SkillNode struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Level         int      `json:"level"`
	XP            int      `json:"xp"`
	XPToNextLevel int      `json:"xpToNextLevel"`
	X             float64  `json:"x"`
	Y             float64  `json:"y"`
	Dependencies  []string `json:"dependencies"`
}

// WeeklyProgressPoint is one bar of the weekly progress chart
type WeeklyProgressPoint struct {
	Day      string `json:"day"`
	Sessions int    `json:"sessions"`
	Score    int    `json:"score"`
}

// StreakInfo summarizes the user's current activity streak
type StreakInfo struct {
	CurrentStreak int      `json:"currentStreak"`
	LongestStreak int      `json:"longestStreak"`
	ActiveDays    []string `json:"activeDays"`
}

package gamification

import (
	"time"

	"github.com/deepthink-labs/deepthink-engine/internal/models"
)

// Service serves the read-mostly gamification displays. The collections are
// fixed seed data; live per-field mastery comes from the history repository
// instead.
type Service struct {
	badges      []models.Badge
	userBadges  []models.UserBadge
	leaderboard []models.LeaderboardUser
	quests      []models.DailyQuest
	league      []models.UserLeague
	skillTree   []models.SkillNode
	weekly      []models.WeeklyProgressPoint
	streak      models.StreakInfo
}

// NewService creates the gamification service with its seed collections
func NewService() *Service {
	now := time.Now()
	return &Service{
		badges: []models.Badge{
			{ID: "badge-1", Name: "First Session", Description: "Complete your first training scenario.", IconName: models.IconAward},
			{ID: "badge-2", Name: "Five Day Streak", Description: "Maintain a training streak for 5 consecutive days.", IconName: models.IconFlame},
			{ID: "badge-3", Name: "High Scorer", Description: "Achieve a score of 90 or higher in any scenario.", IconName: models.IconTrophy},
			{ID: "badge-4", Name: "Specialist", Description: "Complete a \"Specialist\" level scenario.", IconName: models.IconBrainCircuit},
			{ID: "badge-5", Name: "Marathon Runner", Description: "Complete 10 scenarios in total.", IconName: models.IconStar},
			{ID: "badge-6", Name: "Perfectionist", Description: "Achieve a perfect score of 100 in any scenario.", IconName: models.IconTrophy},
			{ID: "badge-7", Name: "Weekend Warrior", Description: "Complete a session on a Saturday or Sunday.", IconName: models.IconStar},
			{ID: "badge-8", Name: "Night Owl", Description: "Complete a session between 10 PM and 4 AM.", IconName: models.IconAward},
			{ID: "badge-9", Name: "AI Collaborator", Description: "Create your first custom scenario using AI.", IconName: models.IconBrainCircuit},
			{ID: "badge-10", Name: "Strategic Thinker", Description: "Complete 5 \"Expert\" level scenarios.", IconName: models.IconFlame},
		},
		userBadges: []models.UserBadge{
			{UserID: "user-123", BadgeID: "badge-1", EarnedAt: now},
			{UserID: "user-123", BadgeID: "badge-2", EarnedAt: now},
			{UserID: "user-123", BadgeID: "badge-3", EarnedAt: now},
		},
		leaderboard: []models.LeaderboardUser{
			{ID: "user-1", Rank: 1, Name: "Intuition Master", ProfilePictureURL: "https://picsum.photos/id/1005/100/100", Points: 15200, DailyStreak: 120},
			{ID: "user-2", Rank: 2, Name: "Strategist Supreme", ProfilePictureURL: "https://picsum.photos/id/1011/100/100", Points: 14800, DailyStreak: 95},
			{ID: "user-3", Rank: 3, Name: "Pro Decision-Maker", ProfilePictureURL: "https://picsum.photos/id/1025/100/100", Points: 13500, DailyStreak: 78},
			{ID: "user-4", Rank: 4, Name: "Quick Thinker", ProfilePictureURL: "https://picsum.photos/id/1027/100/100", Points: 12100, DailyStreak: 50},
			{ID: "user-5", Rank: 5, Name: "Rising Star", ProfilePictureURL: "https://picsum.photos/id/1028/100/100", Points: 11500, DailyStreak: 30},
		},
		quests: []models.DailyQuest{
			{ID: "quest-1", Title: "Complete a Session", Description: "Finish any training scenario.", XP: 20, Progress: 1, Target: 1},
			{ID: "quest-2", Title: "Score 85+ Points", Description: "Achieve a score of 85 or higher.", XP: 30, Progress: 0, Target: 1},
			{ID: "quest-3", Title: "Use AI Note Suggestion", Description: "Get a suggestion for one of your notes.", XP: 10, Progress: 0, Target: 1},
		},
		league: []models.UserLeague{
			{ID: "user-12", Rank: 1, Name: "Data Dynamo", ProfilePictureURL: "https://picsum.photos/id/201/100/100", Points: 1250, League: "Silver"},
			{ID: "user-15", Rank: 2, Name: "Logic Lord", ProfilePictureURL: "https://picsum.photos/id/202/100/100", Points: 1180, League: "Silver"},
			{ID: "user-4", Rank: 3, Name: "Quick Thinker", ProfilePictureURL: "https://picsum.photos/id/1027/100/100", Points: 1150, League: "Silver"},
			{ID: "user-18", Rank: 4, Name: "Analyst Ace", ProfilePictureURL: "https://picsum.photos/id/203/100/100", Points: 1120, League: "Silver"},
			{ID: "user-22", Rank: 5, Name: "Mind Mapper", ProfilePictureURL: "https://picsum.photos/id/204/100/100", Points: 980, League: "Silver"},
		},
		skillTree: []models.SkillNode{
			{ID: "core-1", Name: "Problem Identification", Description: "Ability to quickly and accurately identify the core issue in a complex situation.", Level: 2, XP: 50, XPToNextLevel: 150, X: 50, Y: 10, Dependencies: []string{}},
			{ID: "comm-1", Name: "Crisis Communication", Description: "Effectively communicating under pressure to stakeholders, teams, and the public.", Level: 1, XP: 80, XPToNextLevel: 100, X: 20, Y: 30, Dependencies: []string{"core-1"}},
			{ID: "comm-2", Name: "Stakeholder Mgt.", Description: "Managing expectations and aligning diverse groups of stakeholders.", Level: 1, XP: 20, XPToNextLevel: 100, X: 20, Y: 50, Dependencies: []string{"comm-1"}},
			{ID: "comm-3", Name: "Negotiation", Description: "Finding compromises and achieving favorable outcomes in difficult conversations.", Level: 0, XP: 0, XPToNextLevel: 100, X: 20, Y: 70, Dependencies: []string{"comm-2"}},
			{ID: "strat-1", Name: "Risk Assessment", Description: "Evaluating potential risks and their impact to make informed decisions.", Level: 2, XP: 110, XPToNextLevel: 150, X: 80, Y: 30, Dependencies: []string{"core-1"}},
			{ID: "strat-2", Name: "Data-Driven Prioritization", Description: "Using data to effectively prioritize tasks and resources.", Level: 1, XP: 45, XPToNextLevel: 100, X: 80, Y: 50, Dependencies: []string{"strat-1"}},
			{ID: "strat-3", Name: "Creative Problem Solving", Description: "Developing innovative solutions to non-standard problems.", Level: 0, XP: 0, XPToNextLevel: 100, X: 80, Y: 70, Dependencies: []string{"strat-2"}},
		},
		weekly: []models.WeeklyProgressPoint{
			{Day: "Mon", Sessions: 2, Score: 78},
			{Day: "Tue", Sessions: 3, Score: 85},
			{Day: "Wed", Sessions: 2, Score: 82},
			{Day: "Thu", Sessions: 4, Score: 91},
			{Day: "Fri", Sessions: 3, Score: 88},
			{Day: "Sat", Sessions: 0, Score: 0},
			{Day: "Sun", Sessions: 0, Score: 0},
		},
		streak: models.StreakInfo{
			CurrentStreak: 5,
			LongestStreak: 12,
			ActiveDays:    []string{"Mon", "Tue", "Wed", "Thu", "Fri"},
		},
	}
}

func (s *Service) Badges() []models.Badge                       { return s.badges }
func (s *Service) UserBadges() []models.UserBadge               { return s.userBadges }
func (s *Service) Leaderboard() []models.LeaderboardUser        { return s.leaderboard }
func (s *Service) DailyQuests() []models.DailyQuest             { return s.quests }
func (s *Service) WeeklyLeague() []models.UserLeague            { return s.league }
func (s *Service) SkillTree() []models.SkillNode                { return s.skillTree }
func (s *Service) WeeklyProgress() []models.WeeklyProgressPoint { return s.weekly }
func (s *Service) Streak() models.StreakInfo                    { return s.streak }

package badge

import "docdot_backend/internal/model"

// DefaultCatalog is seeded into an empty badges table.
func DefaultCatalog() []model.Badge {
	return []model.Badge{
		// performance
		{Code: "first_steps", Name: "First Steps", Description: "Answer your first question", Icon: "footprints", Category: "performance", Tier: model.TierBronze, Requirement: 1, RequirementType: model.RequirementQuestions, XPReward: 10, Color: "#CD7F32"},
		{Code: "question_explorer", Name: "Question Explorer", Description: "Answer 100 questions", Icon: "compass", Category: "performance", Tier: model.TierSilver, Requirement: 100, RequirementType: model.RequirementQuestions, XPReward: 50, Color: "#C0C0C0"},
		{Code: "question_master", Name: "Question Master", Description: "Answer 1000 questions", Icon: "book-open", Category: "performance", Tier: model.TierGold, Requirement: 1000, RequirementType: model.RequirementQuestions, XPReward: 250, Color: "#FFD700"},
		{Code: "sharpshooter", Name: "Sharpshooter", Description: "Get 50 answers right", Icon: "target", Category: "performance", Tier: model.TierBronze, Requirement: 50, RequirementType: model.RequirementCorrect, XPReward: 25, Color: "#CD7F32"},
		{Code: "diagnostician", Name: "Diagnostician", Description: "Get 500 answers right", Icon: "stethoscope", Category: "performance", Tier: model.TierGold, Requirement: 500, RequirementType: model.RequirementCorrect, XPReward: 200, Color: "#FFD700"},

		// mastery
		{Code: "accurate", Name: "Accurate", Description: "Reach 80% average accuracy", Icon: "check-circle", Category: "mastery", Tier: model.TierSilver, Requirement: 80, RequirementType: model.RequirementAccuracy, XPReward: 75, Color: "#C0C0C0"},
		{Code: "perfectionist", Name: "Perfectionist", Description: "Reach 95% average accuracy", Icon: "award", Category: "mastery", Tier: model.TierPlatinum, Requirement: 95, RequirementType: model.RequirementAccuracy, XPReward: 300, Color: "#E5E4E2"},
		{Code: "level_5", Name: "Rising Star", Description: "Reach level 5", Icon: "star", Category: "mastery", Tier: model.TierSilver, Requirement: 5, RequirementType: model.RequirementLevel, XPReward: 100, Color: "#C0C0C0"},
		{Code: "level_10", Name: "Consultant", Description: "Reach level 10", Icon: "crown", Category: "mastery", Tier: model.TierGold, Requirement: 10, RequirementType: model.RequirementLevel, XPReward: 250, Color: "#FFD700"},
		{Code: "xp_10000", Name: "Scholar", Description: "Earn 10,000 XP", Icon: "gem", Category: "mastery", Tier: model.TierDiamond, Requirement: 10000, RequirementType: model.RequirementXP, XPReward: 500, Color: "#B9F2FF"},

		// streak
		{Code: "streak_3", Name: "On a Roll", Description: "Study 3 days in a row", Icon: "flame", Category: "streak", Tier: model.TierBronze, Requirement: 3, RequirementType: model.RequirementStreak, XPReward: 20, Color: "#CD7F32"},
		{Code: "streak_7", Name: "Week Warrior", Description: "Study 7 days in a row", Icon: "flame", Category: "streak", Tier: model.TierSilver, Requirement: 7, RequirementType: model.RequirementStreak, XPReward: 70, Color: "#C0C0C0"},
		{Code: "streak_30", Name: "Unstoppable", Description: "Study 30 days in a row", Icon: "zap", Category: "streak", Tier: model.TierPlatinum, Requirement: 30, RequirementType: model.RequirementStreak, XPReward: 400, Color: "#E5E4E2"},

		// time
		{Code: "study_60", Name: "Focused Hour", Description: "Study for 60 minutes", Icon: "clock", Category: "time", Tier: model.TierBronze, Requirement: 60, RequirementType: model.RequirementStudyTime, XPReward: 15, Color: "#CD7F32"},
		{Code: "study_600", Name: "Marathon", Description: "Study for 10 hours", Icon: "hourglass", Category: "time", Tier: model.TierGold, Requirement: 600, RequirementType: model.RequirementStudyTime, XPReward: 150, Color: "#FFD700"},

		// special
		{Code: "devoted", Name: "Devoted", Description: "Study for 100 hours", Icon: "moon", Category: "special", Tier: model.TierDiamond, Requirement: 6000, RequirementType: model.RequirementStudyTime, XPReward: 1000, Color: "#B9F2FF", IsSecret: true},
		{Code: "centurion", Name: "Centurion", Description: "Keep a 100 day streak", Icon: "shield", Category: "special", Tier: model.TierDiamond, Requirement: 100, RequirementType: model.RequirementStreak, XPReward: 1500, Color: "#B9F2FF", IsSecret: true},
	}
}

// Package badge decides which catalog badges a user's stats have unlocked.
package badge

import (
	"docdot_backend/internal/model"
)

// Progress reads the stat field a requirement type refers to. Streak badges use the
// longest streak so that progress never drops when a streak breaks.
func Progress(s *model.UserStat, rt model.RequirementType) int {
	if s == nil {
		return 0
	}
	switch rt {
	case model.RequirementQuestions:
		return s.TotalQuestions
	case model.RequirementCorrect:
		return s.CorrectAnswers
	case model.RequirementAccuracy:
		return s.AverageScore
	case model.RequirementStreak:
		return s.LongestStreak
	case model.RequirementXP:
		return s.TotalXP
	case model.RequirementLevel:
		return s.CurrentLevel
	case model.RequirementStudyTime:
		return s.TotalStudyTime
	default:
		return 0
	}
}

// Status is one badge as seen by one user.
type Status struct {
	Badge    model.Badge
	Progress int
	Earned   bool
}

// Percent is progress toward the requirement, capped at 100.
func (s Status) Percent() int {
	if s.Earned || s.Badge.Requirement <= 0 {
		return 100
	}
	p := s.Progress * 100 / s.Badge.Requirement
	if p > 100 {
		p = 100
	}
	return p
}

// View is the client representation of a Status.
// swagger:model BadgeView
type View struct {
	ID              uint                  `json:"id"`
	Code            string                `json:"code"`
	Name            string                `json:"name"`
	Description     string                `json:"description"`
	Icon            string                `json:"icon"`
	Category        string                `json:"category"`
	Tier            model.BadgeTier       `json:"tier"`
	Color           string                `json:"color"`
	Requirement     int                   `json:"requirement"`
	RequirementType model.RequirementType `json:"requirementType"`
	XPReward        int                   `json:"xpReward"`
	IsSecret        bool                  `json:"isSecret"`
	Progress        int                   `json:"progress"`
	Percent         int                   `json:"percent"`
	Earned          bool                  `json:"earned"`
}

const (
	secretName        = "???"
	secretDescription = "Keep studying to reveal this badge."
	secretIcon        = "lock"
)

// View builds the client representation. Unearned secret badges keep their tier and
// category but hide what they are for.
func (s Status) View() View {
	v := View{
		ID:              s.Badge.ID,
		Code:            s.Badge.Code,
		Name:            s.Badge.Name,
		Description:     s.Badge.Description,
		Icon:            s.Badge.Icon,
		Category:        s.Badge.Category,
		Tier:            s.Badge.Tier,
		Color:           s.Badge.Color,
		Requirement:     s.Badge.Requirement,
		RequirementType: s.Badge.RequirementType,
		XPReward:        s.Badge.XPReward,
		IsSecret:        s.Badge.IsSecret,
		Progress:        s.Progress,
		Percent:         s.Percent(),
		Earned:          s.Earned,
	}
	if s.Badge.IsSecret && !s.Earned {
		v.Code = ""
		v.Name = secretName
		v.Description = secretDescription
		v.Icon = secretIcon
		v.Requirement = 0
		v.RequirementType = ""
		v.Progress = 0
		v.Percent = 0
	}
	return v
}

// Result of evaluating a catalog against one user's stats.
type Result struct {
	Statuses []Status
	// Unlocked holds badges that became earned in this evaluation.
	Unlocked []model.Badge
}

// XPReward is the total XP granted by the newly unlocked badges.
func (r Result) XPReward() int {
	total := 0
	for _, b := range r.Unlocked {
		total += b.XPReward
	}
	return total
}

// Evaluate compares stats to every catalog badge. earned holds the ids of badges the
// user already owns; those stay earned whatever the current progress is.
func Evaluate(s *model.UserStat, catalog []model.Badge, earned map[uint]bool) Result {
	res := Result{Statuses: make([]Status, 0, len(catalog))}
	for _, b := range catalog {
		p := Progress(s, b.RequirementType)
		st := Status{Badge: b, Progress: p, Earned: earned[b.ID]}
		if !st.Earned && p >= b.Requirement {
			st.Earned = true
			res.Unlocked = append(res.Unlocked, b)
		}
		res.Statuses = append(res.Statuses, st)
	}
	return res
}

// Split partitions statuses into earned and still available views.
func Split(statuses []Status) (earned, available []View) {
	earned = make([]View, 0)
	available = make([]View, 0)
	for _, st := range statuses {
		if st.Earned {
			earned = append(earned, st.View())
		} else {
			available = append(available, st.View())
		}
	}
	return earned, available
}

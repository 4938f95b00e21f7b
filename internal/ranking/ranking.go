// Package ranking orders users for leaderboard display.
//
// Order is recomputed from UserStat rows on every call. The key is the XP of the
// requested window (descending), then accuracy (descending), then answered questions
// (descending), and finally user id (ascending) so that equal rows still produce the
// same order on every page and every request.
package ranking

import (
	"cmp"
	"docdot_backend/internal/model"
	"docdot_backend/internal/util"
	"slices"
	"strings"
)

// Window selects which XP counter a leaderboard is sorted by.
type Window string

const (
	Weekly  Window = "weekly"
	Monthly Window = "monthly"
	AllTime Window = "all-time"
)

// ParseWindow accepts the client's timeFrame values. Empty means all-time.
func ParseWindow(s string) (Window, error) {
	switch Window(strings.ToLower(strings.TrimSpace(s))) {
	case "", AllTime, "all", "alltime":
		return AllTime, nil
	case Weekly, "week":
		return Weekly, nil
	case Monthly, "month":
		return Monthly, nil
	default:
		return "", util.ErrInvalidWindow
	}
}

// XP returns the counter of s that this window ranks by.
func (w Window) XP(s *model.UserStat) int {
	switch w {
	case Weekly:
		return s.WeeklyXP
	case Monthly:
		return s.MonthlyXP
	default:
		return s.TotalXP
	}
}

// Entry is one leaderboard row. It is derived and never stored.
type Entry struct {
	Rank            int    `json:"rank"`
	UserID          string `json:"userId"`
	DisplayName     string `json:"displayName,omitempty"`
	XP              int    `json:"xp"`
	TotalXP         int    `json:"totalXP"`
	WeeklyXP        int    `json:"weeklyXP"`
	MonthlyXP       int    `json:"monthlyXP"`
	AverageAccuracy int    `json:"averageAccuracy"`
	TotalQuestions  int    `json:"totalQuestions"`
	CurrentLevel    int    `json:"currentLevel"`
	CurrentStreak   int    `json:"currentStreak"`
	TotalBadges     int    `json:"totalBadges"`
	Category        string `json:"category,omitempty"`
}

type Options struct {
	Window Window
	// Category is copied onto entries; filtering happens where stats are loaded.
	Category string
	// Limit caps the result. Zero or negative means no cap.
	Limit int
}

func compare(w Window) func(a, b model.UserStat) int {
	return func(a, b model.UserStat) int {
		if c := cmp.Compare(w.XP(&b), w.XP(&a)); c != 0 {
			return c
		}
		if c := cmp.Compare(b.AverageScore, a.AverageScore); c != 0 {
			return c
		}
		if c := cmp.Compare(b.TotalQuestions, a.TotalQuestions); c != 0 {
			return c
		}
		return strings.Compare(a.UserID, b.UserID)
	}
}

// Order returns a sorted copy of stats; the input is left untouched.
func Order(stats []model.UserStat, w Window) []model.UserStat {
	sorted := slices.Clone(stats)
	slices.SortStableFunc(sorted, compare(w))
	return sorted
}

// Rank orders stats and assigns 1-based, gap-free ranks. Empty input yields an
// empty, non-nil slice.
func Rank(stats []model.UserStat, opts Options) []Entry {
	w := opts.Window
	if w == "" {
		w = AllTime
	}

	sorted := Order(stats, w)
	if opts.Limit > 0 && len(sorted) > opts.Limit {
		sorted = sorted[:opts.Limit]
	}

	entries := make([]Entry, len(sorted))
	for i := range sorted {
		entries[i] = newEntry(&sorted[i], i+1, w, opts.Category)
	}
	return entries
}

// Position finds userID's entry in the full, unlimited ordering.
func Position(stats []model.UserStat, userID string, opts Options) (Entry, bool) {
	w := opts.Window
	if w == "" {
		w = AllTime
	}

	sorted := Order(stats, w)
	for i := range sorted {
		if sorted[i].UserID == userID {
			return newEntry(&sorted[i], i+1, w, opts.Category), true
		}
	}
	return Entry{}, false
}

func newEntry(s *model.UserStat, rank int, w Window, category string) Entry {
	return Entry{
		Rank:            rank,
		UserID:          s.UserID,
		XP:              w.XP(s),
		TotalXP:         s.TotalXP,
		WeeklyXP:        s.WeeklyXP,
		MonthlyXP:       s.MonthlyXP,
		AverageAccuracy: s.AverageScore,
		TotalQuestions:  s.TotalQuestions,
		CurrentLevel:    s.CurrentLevel,
		CurrentStreak:   s.CurrentStreak,
		TotalBadges:     s.TotalBadges,
		Category:        category,
	}
}

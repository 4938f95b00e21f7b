package ranking

import (
	"docdot_backend/internal/model"
	"docdot_backend/internal/util"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWindow(t *testing.T) {
	tests := []struct {
		in      string
		want    Window
		wantErr bool
	}{
		{"", AllTime, false},
		{"all-time", AllTime, false},
		{"weekly", Weekly, false},
		{"Monthly", Monthly, false},
		{" week ", Weekly, false},
		{"yearly", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseWindow(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, util.ErrInvalidWindow)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRank_TieBrokenByAccuracy(t *testing.T) {
	stats := []model.UserStat{
		{UserID: "a", TotalXP: 500},
		{UserID: "b", TotalXP: 500, AverageScore: 90},
	}

	entries := Rank(stats, Options{Window: AllTime})

	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].UserID)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "a", entries[1].UserID)
	assert.Equal(t, 2, entries[1].Rank)
}

func TestRank_FullKeyOrder(t *testing.T) {
	stats := []model.UserStat{
		{UserID: "d", TotalXP: 100, AverageScore: 50, TotalQuestions: 10},
		{UserID: "c", TotalXP: 100, AverageScore: 50, TotalQuestions: 10},
		{UserID: "b", TotalXP: 100, AverageScore: 50, TotalQuestions: 20},
		{UserID: "a", TotalXP: 100, AverageScore: 80, TotalQuestions: 1},
		{UserID: "e", TotalXP: 900},
	}

	entries := Rank(stats, Options{})

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.UserID
	}
	assert.Equal(t, []string{"e", "a", "b", "c", "d"}, ids)
}

func TestRank_RanksAreContiguous(t *testing.T) {
	var stats []model.UserStat
	for i := 0; i < 50; i++ {
		// Plenty of duplicates so ties are exercised.
		stats = append(stats, model.UserStat{
			UserID:         fmt.Sprintf("user-%02d", i),
			TotalXP:        (i % 7) * 100,
			WeeklyXP:       (i % 3) * 10,
			MonthlyXP:      (i % 5) * 20,
			AverageScore:   i % 4,
			TotalQuestions: i % 2,
		})
	}

	for _, w := range []Window{Weekly, Monthly, AllTime} {
		t.Run(string(w), func(t *testing.T) {
			entries := Rank(stats, Options{Window: w})
			require.Len(t, entries, len(stats))
			for i, e := range entries {
				assert.Equal(t, i+1, e.Rank)
				if i > 0 {
					assert.GreaterOrEqual(t, entries[i-1].XP, e.XP)
				}
			}
		})
	}
}

func TestRank_SameOrderAcrossCalls(t *testing.T) {
	stats := []model.UserStat{
		{UserID: "z", TotalXP: 10},
		{UserID: "m", TotalXP: 10},
		{UserID: "a", TotalXP: 10},
	}
	reversed := []model.UserStat{stats[2], stats[1], stats[0]}

	assert.Equal(t, Rank(stats, Options{}), Rank(reversed, Options{}))
}

func TestRank_WindowPicksXPField(t *testing.T) {
	stats := []model.UserStat{
		{UserID: "veteran", TotalXP: 5000, WeeklyXP: 10, MonthlyXP: 300},
		{UserID: "newcomer", TotalXP: 400, WeeklyXP: 200, MonthlyXP: 200},
	}

	weekly := Rank(stats, Options{Window: Weekly})
	assert.Equal(t, "newcomer", weekly[0].UserID)
	assert.Equal(t, 200, weekly[0].XP)

	monthly := Rank(stats, Options{Window: Monthly})
	assert.Equal(t, "veteran", monthly[0].UserID)
	assert.Equal(t, 300, monthly[0].XP)

	all := Rank(stats, Options{Window: AllTime})
	assert.Equal(t, "veteran", all[0].UserID)
	assert.Equal(t, 5000, all[0].XP)
}

func TestRank_Limit(t *testing.T) {
	stats := []model.UserStat{
		{UserID: "a", TotalXP: 1},
		{UserID: "b", TotalXP: 2},
		{UserID: "c", TotalXP: 3},
	}

	entries := Rank(stats, Options{Limit: 2})
	require.Len(t, entries, 2)
	assert.Equal(t, "c", entries[0].UserID)
	assert.Equal(t, "b", entries[1].UserID)

	assert.Len(t, Rank(stats, Options{Limit: 10}), 3)
	assert.Len(t, Rank(stats, Options{Limit: 0}), 3)
}

func TestRank_EmptyInput(t *testing.T) {
	entries := Rank(nil, Options{Window: Weekly, Limit: 10})
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	stats := []model.UserStat{
		{UserID: "a", TotalXP: 1},
		{UserID: "b", TotalXP: 2},
	}
	Rank(stats, Options{})
	assert.Equal(t, "a", stats[0].UserID)
}

func TestPosition(t *testing.T) {
	stats := []model.UserStat{
		{UserID: "a", TotalXP: 300},
		{UserID: "b", TotalXP: 200},
		{UserID: "c", TotalXP: 100},
	}

	e, ok := Position(stats, "c", Options{Limit: 1})
	require.True(t, ok)
	assert.Equal(t, 3, e.Rank)
	assert.Equal(t, 100, e.XP)

	_, ok = Position(stats, "missing", Options{})
	assert.False(t, ok)
}

func TestLevel(t *testing.T) {
	assert.Equal(t, 1, Level(0))
	assert.Equal(t, 1, Level(999))
	assert.Equal(t, 2, Level(1000))
	assert.Equal(t, 6, Level(5500))
	assert.Equal(t, 1, Level(-20))

	assert.Equal(t, 1000, NextLevelXP(1))
	assert.Equal(t, 3000, NextLevelXP(3))
}

func TestAccuracy(t *testing.T) {
	assert.Equal(t, 0, Accuracy(0, 0))
	assert.Equal(t, 100, Accuracy(3, 3))
	assert.Equal(t, 67, Accuracy(2, 3))
	assert.Equal(t, 33, Accuracy(1, 3))
	assert.Equal(t, 50, Accuracy(1, 2))
}

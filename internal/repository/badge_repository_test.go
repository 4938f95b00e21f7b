package repository

import (
	"docdot_backend/internal/model"
	"docdot_backend/internal/ranking"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/clause"
)

func TestRewardUpdates_RollsStaleWindows(t *testing.T) {
	at := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	ws, ms := ranking.WeekStart(at), ranking.MonthStart(at)

	updates := rewardUpdates(50, at)

	weekly, ok := updates["weekly_xp"].(clause.Expr)
	require.True(t, ok)
	assert.Equal(t, "CASE WHEN week_start < ? THEN ? ELSE weekly_xp + ? END", weekly.SQL)
	assert.Equal(t, []interface{}{ws, 50, 50}, weekly.Vars)

	weekStart := updates["week_start"].(clause.Expr)
	assert.Equal(t, []interface{}{ws, ws}, weekStart.Vars)

	monthly := updates["monthly_xp"].(clause.Expr)
	assert.Equal(t, []interface{}{ms, 50, 50}, monthly.Vars)
	monthStart := updates["month_start"].(clause.Expr)
	assert.Equal(t, []interface{}{ms, ms}, monthStart.Vars)

	assert.Contains(t, updates, "total_xp")
	assert.Contains(t, updates, "current_level")
	assert.Contains(t, updates, "total_badges")
}

func TestRewardUpdates_SQL(t *testing.T) {
	db := dryRunDB(t)
	at := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	stmt := db.Model(&model.UserStat{}).Where("user_id = ?", "u1").Updates(rewardUpdates(50, at)).Statement

	sql := stmt.SQL.String()
	assert.Contains(t, sql, `"weekly_xp"=CASE WHEN week_start <`)
	assert.Contains(t, sql, `"week_start"=CASE WHEN week_start <`)
	assert.Contains(t, sql, `"monthly_xp"=CASE WHEN month_start <`)
	assert.Contains(t, sql, `"month_start"=CASE WHEN month_start <`)
	assert.Contains(t, stmt.Vars, ranking.WeekStart(at))
	assert.Contains(t, stmt.Vars, ranking.MonthStart(at))
}

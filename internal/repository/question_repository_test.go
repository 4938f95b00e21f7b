package repository

import (
	"context"
	"docdot_backend/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=docdot dbname=docdot sslmode=disable"}),
		&gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

func TestListQuestions_SQL(t *testing.T) {
	db := dryRunDB(t)
	repo := NewQuestionRepository(db)

	var sql string
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:capture", func(tx *gorm.DB) {
		sql = tx.Statement.SQL.String()
	}))

	_, err := repo.ListQuestions(context.Background(), "Anatomy", model.DifficultyHard, 5)
	require.NoError(t, err)
	assert.Contains(t, sql, "category = $1")
	assert.Contains(t, sql, "difficulty = $2")
	assert.Contains(t, sql, "ORDER BY random() LIMIT $3")

	_, err = repo.ListQuestions(context.Background(), "", "", 0)
	require.NoError(t, err)
	assert.NotContains(t, sql, "WHERE")
	assert.Contains(t, sql, "ORDER BY id")
}

package service

import (
	"context"
	"docdot_backend/internal/config"
	"docdot_backend/internal/model"
	"docdot_backend/internal/util"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memQuestions struct {
	list []model.Question
	err  error

	lastCount int
}

func (m *memQuestions) CountByCategory(context.Context) ([]model.CategoryCount, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []model.CategoryCount
	idx := map[string]int{}
	for _, q := range m.list {
		i, ok := idx[q.Category]
		if !ok {
			i = len(out)
			idx[q.Category] = i
			out = append(out, model.CategoryCount{Category: q.Category})
		}
		out[i].Total++
	}
	return out, nil
}

func (m *memQuestions) ListQuestions(_ context.Context, category string, difficulty model.Difficulty, count int) ([]model.Question, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.lastCount = count
	var out []model.Question
	for _, q := range m.list {
		if (category == "" || q.Category == category) && (difficulty == "" || q.Difficulty == difficulty) {
			out = append(out, q)
		}
	}
	if count > 0 && len(out) > count {
		out = out[:count]
	}
	return out, nil
}

func questionBank() *memQuestions {
	return &memQuestions{list: []model.Question{
		{ID: 1, Category: "Anatomy", Difficulty: model.DifficultyEasy, Question: "a1", Options: []string{"True", "False"}, Answer: "True"},
		{ID: 2, Category: "Anatomy", Difficulty: model.DifficultyHard, Question: "a2", Options: []string{"True", "False"}, Answer: "False"},
		{ID: 3, Category: "Physiology", Difficulty: model.DifficultyMedium, Question: "p1", Options: []string{"x", "y"}, Answer: "y"},
		{ID: 4, Category: "Anatomy", Difficulty: model.DifficultyHard, Question: "a3", Options: []string{"True", "False"}, Answer: "True"},
	}}
}

func TestQuestionCategories(t *testing.T) {
	svc := NewQuestionService(questionBank(), config.QuestionsConfig{})

	summary, err := svc.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Anatomy", "Physiology"}, summary.Categories)
	assert.Equal(t, 4, summary.TotalQuestions)
	assert.Equal(t, map[string]int{"Anatomy": 3, "Physiology": 1}, summary.QuestionsByCategory)
}

func TestQuestions_Filters(t *testing.T) {
	svc := NewQuestionService(questionBank(), config.QuestionsConfig{})
	ctx := context.Background()

	list, err := svc.Questions(ctx, " Anatomy ", "HARD", 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, uint(2), list[0].ID)
	assert.Equal(t, uint(4), list[1].ID)

	list, err = svc.Questions(ctx, "all", "all", 0)
	require.NoError(t, err)
	assert.Len(t, list, 4)

	list, err = svc.Questions(ctx, "Pharmacology", "", 0)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestQuestions_CountIsCapped(t *testing.T) {
	store := questionBank()
	svc := NewQuestionService(store, config.QuestionsConfig{MaxCount: 2})
	ctx := context.Background()

	list, err := svc.Questions(ctx, "", "", 10)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, 2, store.lastCount)

	svc.UpdateConfig(config.QuestionsConfig{MaxCount: 3})
	_, err = svc.Questions(ctx, "", "", 10)
	require.NoError(t, err)
	assert.Equal(t, 3, store.lastCount)

	svc.UpdateConfig(config.QuestionsConfig{})
	_, err = svc.Questions(ctx, "", "", 1000)
	require.NoError(t, err)
	assert.Equal(t, defaultQuestionCount, store.lastCount)
}

func TestQuestions_Invalid(t *testing.T) {
	svc := NewQuestionService(questionBank(), config.QuestionsConfig{})
	ctx := context.Background()

	_, err := svc.Questions(ctx, "", "brutal", 0)
	assert.ErrorIs(t, err, util.ErrInvalidDifficulty)

	_, err = svc.Questions(ctx, "", "", -1)
	assert.ErrorIs(t, err, util.ErrInvalidQuestionCount)

	broken := &memQuestions{err: errors.New("connection refused")}
	_, err = NewQuestionService(broken, config.QuestionsConfig{}).Categories(ctx)
	assert.Error(t, err)
}

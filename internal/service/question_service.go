package service

import (
	"context"
	"docdot_backend/internal/config"
	"docdot_backend/internal/model"
	"docdot_backend/internal/question"
	"docdot_backend/internal/util"
	"strings"
	"sync"
)

const defaultQuestionCount = 50

type QuestionStore interface {
	CountByCategory(ctx context.Context) ([]model.CategoryCount, error)
	ListQuestions(ctx context.Context, category string, difficulty model.Difficulty, count int) ([]model.Question, error)
}

// CategorySummary lists the bank's categories with their question counts.
type CategorySummary struct {
	Categories          []string       `json:"categories"`
	TotalQuestions      int            `json:"totalQuestions"`
	QuestionsByCategory map[string]int `json:"questionsByCategory"`
}

type QuestionService struct {
	Store QuestionStore

	mu  sync.RWMutex
	cfg config.QuestionsConfig
}

func NewQuestionService(store QuestionStore, cfg config.QuestionsConfig) *QuestionService {
	return &QuestionService{Store: store, cfg: cfg}
}

func (s *QuestionService) UpdateConfig(cfg config.QuestionsConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}

func (s *QuestionService) maxCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cfg.MaxCount <= 0 {
		return defaultQuestionCount
	}
	return s.cfg.MaxCount
}

func (s *QuestionService) Categories(ctx context.Context) (*CategorySummary, error) {
	rows, err := s.Store.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}
	out := &CategorySummary{
		Categories:          make([]string, 0, len(rows)),
		QuestionsByCategory: make(map[string]int, len(rows)),
	}
	for _, r := range rows {
		if r.Category == "" {
			continue
		}
		out.Categories = append(out.Categories, r.Category)
		out.QuestionsByCategory[r.Category] = r.Total
		out.TotalQuestions += r.Total
	}
	return out, nil
}

// Questions filters the bank by category and difficulty, where empty or "all"
// means any. A positive count draws a random sample of at most the configured
// maximum; zero returns every match in bank order.
func (s *QuestionService) Questions(ctx context.Context, category, difficulty string, count int) ([]model.Question, error) {
	category = strings.TrimSpace(category)
	if strings.EqualFold(category, "all") {
		category = ""
	}
	d, ok := question.ParseDifficulty(difficulty)
	if !ok {
		return nil, util.ErrInvalidDifficulty
	}
	if count < 0 {
		return nil, util.ErrInvalidQuestionCount
	}
	if limit := s.maxCount(); count > limit {
		count = limit
	}

	list, err := s.Store.ListQuestions(ctx, category, d, count)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []model.Question{}
	}
	return list, nil
}

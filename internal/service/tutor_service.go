package service

import (
	"context"
	"docdot_backend/internal/config"
	"docdot_backend/internal/llm"
	"docdot_backend/internal/model"
	"docdot_backend/internal/util"
	"docdot_backend/pkg/logger"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// TutorApology replaces the assistant reply whenever generation fails.
const TutorApology = "I'm sorry, I'm having trouble responding right now. Please try again in a moment."

const tutorSystemPrompt = "You are DocDot, a friendly tutor for medical students. " +
	"Explain concepts clearly and step by step, check understanding with short questions, " +
	"and say so when you are unsure. Keep answers focused on the student's question."

type TutorStore interface {
	CreateSession(ctx context.Context, s *model.AISession) error
	ListSessions(ctx context.Context, userID string, limit int) ([]model.AISession, error)
	GetSession(ctx context.Context, userID, id string) (*model.AISession, error)
	ListMessages(ctx context.Context, sessionID string, limit int) ([]model.AIChat, error)
	AddMessages(ctx context.Context, sessionID string, tokens int, msgs ...*model.AIChat) error
	EndSession(ctx context.Context, userID, id string) error
}

type TutorService struct {
	Store    TutorStore
	Provider llm.Provider
	cfg      config.AIConfig
}

func NewTutorService(store TutorStore, provider llm.Provider, cfg config.AIConfig) *TutorService {
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = 20
	}
	return &TutorService{Store: store, Provider: provider, cfg: cfg}
}

type CreateSessionRequest struct {
	Title       string `json:"title"`
	Topic       string `json:"topic"`
	SessionType string `json:"sessionType"`
}

func (s *TutorService) CreateSession(ctx context.Context, userID string, req CreateSessionRequest) (*model.AISession, error) {
	sess := &model.AISession{
		UserID:      userID,
		Title:       strings.TrimSpace(req.Title),
		Topic:       strings.TrimSpace(req.Topic),
		SessionType: req.SessionType,
	}
	if sess.SessionType == "" {
		sess.SessionType = "tutor"
	}
	if sess.Title == "" {
		sess.Title = "New session"
		if sess.Topic != "" {
			sess.Title = sess.Topic
		}
	}
	if err := s.Store.CreateSession(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *TutorService) ListSessions(ctx context.Context, userID string, limit int) ([]model.AISession, error) {
	return s.Store.ListSessions(ctx, userID, limit)
}

func (s *TutorService) Messages(ctx context.Context, userID, sessionID string, limit int) ([]model.AIChat, error) {
	if _, err := s.Store.GetSession(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	return s.Store.ListMessages(ctx, sessionID, limit)
}

func (s *TutorService) EndSession(ctx context.Context, userID, sessionID string) error {
	return s.Store.EndSession(ctx, userID, sessionID)
}

type TutorReply struct {
	Question *model.AIChat `json:"question"`
	Answer   *model.AIChat `json:"answer"`
}

// Ask stores the student's message and the tutor's reply. A failed generation is
// not an error for the caller: the reply becomes TutorApology and is flagged.
func (s *TutorService) Ask(ctx context.Context, userID, sessionID, content string) (*TutorReply, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, util.ErrEmptyMessage
	}

	sess, err := s.Store.GetSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	history, err := s.Store.ListMessages(ctx, sessionID, s.cfg.HistorySize)
	if err != nil {
		return nil, err
	}

	req := llm.Request{
		System:      systemPrompt(sess),
		Messages:    make([]llm.Message, 0, len(history)+1),
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	}
	for _, m := range history {
		if m.Failed {
			continue
		}
		role := llm.RoleUser
		if m.Role == model.ChatRoleAssistant {
			role = llm.RoleAssistant
		}
		req.Messages = append(req.Messages, llm.Message{Role: role, Content: m.Content})
	}
	req.Messages = append(req.Messages, llm.Message{Role: llm.RoleUser, Content: content})

	question := &model.AIChat{SessionID: sessionID, UserID: userID, Role: model.ChatRoleUser, Content: content}
	answer := &model.AIChat{SessionID: sessionID, UserID: userID, Role: model.ChatRoleAssistant}

	tokens := 0
	resp, err := s.Provider.Generate(llm.WithPurpose(ctx, "tutor"), req)
	switch {
	case err != nil:
		logger.Log.Warn("Tutor generation failed", zap.String("session_id", sessionID), zap.Error(err))
		answer.Content = TutorApology
		answer.Failed = true
	case strings.TrimSpace(resp.Text) == "":
		answer.Content = TutorApology
		answer.Failed = true
		tokens = resp.Usage.TotalTokens
	default:
		answer.Content = strings.TrimSpace(resp.Text)
		tokens = resp.Usage.TotalTokens
	}

	if err := s.Store.AddMessages(ctx, sessionID, tokens, question, answer); err != nil {
		return nil, fmt.Errorf("save tutor messages: %w", err)
	}
	return &TutorReply{Question: question, Answer: answer}, nil
}

func systemPrompt(sess *model.AISession) string {
	if sess.Topic == "" {
		return tutorSystemPrompt
	}
	return tutorSystemPrompt + "\n\nThe current topic is: " + sess.Topic
}

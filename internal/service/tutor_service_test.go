package service

import (
	"context"
	"docdot_backend/internal/config"
	"docdot_backend/internal/llm"
	"docdot_backend/internal/model"
	"docdot_backend/internal/util"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memTutorStore struct {
	mu       sync.Mutex
	sessions map[string]*model.AISession
	messages map[string][]model.AIChat
}

func newMemTutorStore() *memTutorStore {
	return &memTutorStore{sessions: make(map[string]*model.AISession), messages: make(map[string][]model.AIChat)}
}

func (m *memTutorStore) CreateSession(_ context.Context, s *model.AISession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == "" {
		s.ID = model.GenerateUUID()
	}
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *memTutorStore) ListSessions(_ context.Context, userID string, limit int) ([]model.AISession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.AISession
	for _, s := range m.sessions {
		if s.UserID == userID && len(out) < limit {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *memTutorStore) GetSession(_ context.Context, userID, id string) (*model.AISession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.UserID != userID {
		return nil, util.ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memTutorStore) ListMessages(_ context.Context, sessionID string, limit int) ([]model.AIChat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := m.messages[sessionID]
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return append([]model.AIChat(nil), msgs...), nil
}

func (m *memTutorStore) AddMessages(_ context.Context, sessionID string, tokens int, msgs ...*model.AIChat) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range msgs {
		msg.ID = model.GenerateUUID()
		m.messages[sessionID] = append(m.messages[sessionID], *msg)
	}
	s := m.sessions[sessionID]
	s.TotalMessages += len(msgs)
	s.TokensUsed += tokens
	return nil
}

func (m *memTutorStore) EndSession(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.UserID != userID {
		return util.ErrSessionNotFound
	}
	now := time.Now()
	s.EndedAt = &now
	return nil
}

func newTestTutor(responses ...llm.MockResponse) (*TutorService, *memTutorStore, *llm.MockProvider) {
	store := newMemTutorStore()
	provider := llm.NewMockProvider(responses...)
	return NewTutorService(store, provider, config.AIConfig{MaxTokens: 512, HistorySize: 10}), store, provider
}

func TestTutor_CreateSessionDefaults(t *testing.T) {
	svc, _, _ := newTestTutor()
	ctx := context.Background()

	sess, err := svc.CreateSession(ctx, "u1", CreateSessionRequest{Topic: " Cardiac cycle "})
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, "Cardiac cycle", sess.Title)
	assert.Equal(t, "tutor", sess.SessionType)

	sess, err = svc.CreateSession(ctx, "u1", CreateSessionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "New session", sess.Title)

	list, err := svc.ListSessions(ctx, "u1", 20)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestTutor_Ask(t *testing.T) {
	svc, store, provider := newTestTutor(llm.MockResponse{Text: "  Systole is contraction.  ", Usage: llm.Usage{TotalTokens: 42}})
	ctx := context.Background()
	sess, err := svc.CreateSession(ctx, "u1", CreateSessionRequest{Topic: "Cardiology"})
	require.NoError(t, err)

	reply, err := svc.Ask(ctx, "u1", sess.ID, " What is systole? ")
	require.NoError(t, err)
	assert.Equal(t, "What is systole?", reply.Question.Content)
	assert.Equal(t, "Systole is contraction.", reply.Answer.Content)
	assert.False(t, reply.Answer.Failed)

	call := provider.LastCall()
	assert.Contains(t, call.System, "Cardiology")
	assert.Equal(t, 512, call.MaxTokens)
	require.Len(t, call.Messages, 1)
	assert.Equal(t, llm.RoleUser, call.Messages[0].Role)

	assert.Equal(t, 2, store.sessions[sess.ID].TotalMessages)
	assert.Equal(t, 42, store.sessions[sess.ID].TokensUsed)

	msgs, err := svc.Messages(ctx, "u1", sess.ID, 100)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, model.ChatRoleUser, msgs[0].Role)
	assert.Equal(t, model.ChatRoleAssistant, msgs[1].Role)
}

func TestTutor_ProviderFailureStoresApology(t *testing.T) {
	svc, store, provider := newTestTutor(llm.MockResponse{Err: errors.New("boom")})
	ctx := context.Background()
	sess, err := svc.CreateSession(ctx, "u1", CreateSessionRequest{})
	require.NoError(t, err)

	reply, err := svc.Ask(ctx, "u1", sess.ID, "Explain the Frank-Starling law")
	require.NoError(t, err)
	assert.Equal(t, TutorApology, reply.Answer.Content)
	assert.True(t, reply.Answer.Failed)
	assert.Len(t, store.messages[sess.ID], 2)

	// The failed reply is left out of the next prompt.
	provider.AddResponse(llm.MockResponse{Text: "Sure."})
	_, err = svc.Ask(ctx, "u1", sess.ID, "Try again")
	require.NoError(t, err)

	call := provider.LastCall()
	require.Len(t, call.Messages, 2)
	assert.Equal(t, "Explain the Frank-Starling law", call.Messages[0].Content)
	assert.Equal(t, "Try again", call.Messages[1].Content)
}

func TestTutor_EmptyReplyIsFailure(t *testing.T) {
	svc, _, _ := newTestTutor(llm.MockResponse{Text: "   "})
	ctx := context.Background()
	sess, err := svc.CreateSession(ctx, "u1", CreateSessionRequest{})
	require.NoError(t, err)

	reply, err := svc.Ask(ctx, "u1", sess.ID, "Hello")
	require.NoError(t, err)
	assert.True(t, reply.Answer.Failed)
	assert.Equal(t, TutorApology, reply.Answer.Content)
}

func TestTutor_AskValidation(t *testing.T) {
	svc, _, provider := newTestTutor()
	ctx := context.Background()
	sess, err := svc.CreateSession(ctx, "u1", CreateSessionRequest{})
	require.NoError(t, err)

	_, err = svc.Ask(ctx, "u1", sess.ID, "   ")
	assert.ErrorIs(t, err, util.ErrEmptyMessage)

	_, err = svc.Ask(ctx, "intruder", sess.ID, "Hi")
	assert.ErrorIs(t, err, util.ErrSessionNotFound)

	_, err = svc.Messages(ctx, "intruder", sess.ID, 10)
	assert.ErrorIs(t, err, util.ErrSessionNotFound)

	assert.Zero(t, provider.CallCount())
}

func TestTutor_EndSession(t *testing.T) {
	svc, store, _ := newTestTutor()
	ctx := context.Background()
	sess, err := svc.CreateSession(ctx, "u1", CreateSessionRequest{})
	require.NoError(t, err)

	require.NoError(t, svc.EndSession(ctx, "u1", sess.ID))
	assert.NotNil(t, store.sessions[sess.ID].EndedAt)
	assert.ErrorIs(t, svc.EndSession(ctx, "u1", "missing"), util.ErrSessionNotFound)
}

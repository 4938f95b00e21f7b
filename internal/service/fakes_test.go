package service

import (
	"context"
	"docdot_backend/internal/model"
	"docdot_backend/internal/ranking"
	"docdot_backend/internal/repository"
	"docdot_backend/internal/util"
	"sort"
	"sync"
	"time"
)

// memStore is an in-memory stand-in for the gorm repositories.
type memStore struct {
	mu            sync.Mutex
	users         map[string]*model.User
	stats         map[string]*model.UserStat
	cats          map[string]map[string]*model.CategoryStat
	daily         map[string]map[string]*model.DailyStat
	attempts      []model.QuizAttempt
	badges        []model.Badge
	earned        map[string]map[uint]model.UserBadge
	notifications []model.Notification
	ensureCalls   int
}

func newMemStore() *memStore {
	return &memStore{
		users:  make(map[string]*model.User),
		stats:  make(map[string]*model.UserStat),
		cats:   make(map[string]map[string]*model.CategoryStat),
		daily:  make(map[string]map[string]*model.DailyStat),
		earned: make(map[string]map[uint]model.UserBadge),
	}
}

func (m *memStore) withBadges(badges ...model.Badge) *memStore {
	for i := range badges {
		if badges[i].ID == 0 {
			badges[i].ID = uint(i + 1)
		}
	}
	m.badges = badges
	return m
}

func (m *memStore) putStat(st model.UserStat) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st.CurrentLevel == 0 {
		st.CurrentLevel = 1
	}
	m.stats[st.UserID] = &st
}

func (m *memStore) putCategory(cs model.CategoryStat) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cats[cs.UserID] == nil {
		m.cats[cs.UserID] = make(map[string]*model.CategoryStat)
	}
	m.cats[cs.UserID][cs.Category] = &cs
}

// UserStore / UserLookup

func (m *memStore) EnsureUser(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureCalls++
	if u, ok := m.users[user.ID]; ok {
		u.Email = user.Email
	} else {
		cp := *user
		m.users[user.ID] = &cp
	}
	if _, ok := m.stats[user.ID]; !ok {
		m.stats[user.ID] = &model.UserStat{UserID: user.ID, CurrentLevel: 1}
	}
	return nil
}

func (m *memStore) FindByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, util.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) FindByIDs(_ context.Context, ids []string) (map[string]*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]*model.User)
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			cp := *u
			out[id] = &cp
		}
	}
	return out, nil
}

func (m *memStore) UpdateProfile(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

// StatsStore / LeaderboardStore

func (m *memStore) GetUserStat(_ context.Context, userID string) (*model.UserStat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.stats[userID]
	if !ok {
		return nil, util.ErrStatsNotFound
	}
	cp := *st
	return &cp, nil
}

func (m *memStore) ListUserStats(_ context.Context) ([]model.UserStat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.UserStat, 0, len(m.stats))
	for _, st := range m.stats {
		out = append(out, *st)
	}
	return out, nil
}

func (m *memStore) ListCategoryStats(_ context.Context, category string) ([]model.CategoryStat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.CategoryStat
	for _, byCat := range m.cats {
		if cs, ok := byCat[category]; ok {
			out = append(out, *cs)
		}
	}
	return out, nil
}

func (m *memStore) GetCategoryStats(_ context.Context, userID string) ([]model.CategoryStat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.CategoryStat{}
	for _, cs := range m.cats[userID] {
		out = append(out, *cs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

func (m *memStore) GetDailyStats(_ context.Context, userID, since string) ([]model.DailyStat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.DailyStat
	for date, ds := range m.daily[userID] {
		if date >= since {
			out = append(out, *ds)
		}
	}
	return out, nil
}

func (m *memStore) ListAttempts(_ context.Context, userID string, limit int) ([]model.QuizAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.QuizAttempt
	for i := len(m.attempts) - 1; i >= 0 && len(out) < limit; i-- {
		if m.attempts[i].UserID == userID {
			out = append(out, m.attempts[i])
		}
	}
	return out, nil
}

func (m *memStore) ApplyAttempt(_ context.Context, attempt *model.QuizAttempt, apply func(*repository.AttemptRecord) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.stats[attempt.UserID]
	if !ok {
		st = &model.UserStat{UserID: attempt.UserID, CurrentLevel: 1}
	}
	stCopy := *st

	if m.cats[attempt.UserID] == nil {
		m.cats[attempt.UserID] = make(map[string]*model.CategoryStat)
	}
	cs, ok := m.cats[attempt.UserID][attempt.Category]
	if !ok {
		cs = &model.CategoryStat{UserID: attempt.UserID, Category: attempt.Category}
	}
	csCopy := *cs

	date := attempt.AttemptedAt.UTC().Format(util.DateFormat)
	if m.daily[attempt.UserID] == nil {
		m.daily[attempt.UserID] = make(map[string]*model.DailyStat)
	}
	ds, ok := m.daily[attempt.UserID][date]
	if !ok {
		ds = &model.DailyStat{UserID: attempt.UserID, Date: date, Categories: []string{}}
	}
	dsCopy := *ds
	dsCopy.Categories = append([]string(nil), ds.Categories...)

	rec := &repository.AttemptRecord{Stat: &stCopy, Category: &csCopy, Daily: &dsCopy}
	if err := apply(rec); err != nil {
		return err
	}

	attempt.ID = uint(len(m.attempts) + 1)
	m.attempts = append(m.attempts, *attempt)
	m.stats[attempt.UserID] = rec.Stat
	m.cats[attempt.UserID][attempt.Category] = rec.Category
	m.daily[attempt.UserID][date] = rec.Daily
	return nil
}

func (m *memStore) AddStudyTime(_ context.Context, userID string, minutes int, at time.Time) (*model.UserStat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.stats[userID]
	if !ok {
		st = &model.UserStat{UserID: userID, CurrentLevel: 1}
		m.stats[userID] = st
	}
	st.TotalStudyTime += minutes

	date := at.UTC().Format(util.DateFormat)
	if m.daily[userID] == nil {
		m.daily[userID] = make(map[string]*model.DailyStat)
	}
	ds, ok := m.daily[userID][date]
	if !ok {
		ds = &model.DailyStat{UserID: userID, Date: date, Categories: []string{}}
		m.daily[userID][date] = ds
	}
	ds.StudyTime += minutes

	cp := *st
	return &cp, nil
}

// BadgeStore

func (m *memStore) ListBadges(_ context.Context) ([]model.Badge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Badge(nil), m.badges...), nil
}

func (m *memStore) EarnedBadges(_ context.Context, userID string) (map[uint]model.UserBadge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[uint]model.UserBadge)
	for id, ub := range m.earned[userID] {
		out[id] = ub
	}
	return out, nil
}

func (m *memStore) Unlock(_ context.Context, userID string, b model.Badge, progress int, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.earned[userID] == nil {
		m.earned[userID] = make(map[uint]model.UserBadge)
	}
	if _, ok := m.earned[userID][b.ID]; ok {
		return false, nil
	}
	m.earned[userID][b.ID] = model.UserBadge{UserID: userID, BadgeID: b.ID, Progress: progress, EarnedAt: at}

	st := m.stats[userID]
	ranking.RollWindows(st, at)
	st.TotalXP += b.XPReward
	st.WeeklyXP += b.XPReward
	st.MonthlyXP += b.XPReward
	st.CurrentLevel = ranking.Level(st.TotalXP)
	st.TotalBadges++

	id := b.ID
	m.notifications = append(m.notifications, model.Notification{
		ID:        uint(len(m.notifications) + 1),
		UserID:    userID,
		BadgeID:   &id,
		Message:   "You unlocked the " + b.Name + " badge!",
		XPEarned:  b.XPReward,
		BadgeName: b.Name,
	})
	return true, nil
}

func (m *memStore) UnreadNotifications(_ context.Context, userID string, limit int) ([]model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Notification
	for _, n := range m.notifications {
		if n.UserID == userID && !n.Read && len(out) < limit {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *memStore) MarkRead(_ context.Context, userID string, ids []uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := make(map[uint]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var n int64
	for i := range m.notifications {
		nt := &m.notifications[i]
		if nt.UserID != userID || nt.Read || (len(ids) > 0 && !want[nt.ID]) {
			continue
		}
		nt.Read = true
		n++
	}
	return n, nil
}

// recordingPublisher captures pushed events.
type recordingPublisher struct {
	mu     sync.Mutex
	events map[string][]Event
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{events: make(map[string][]Event)}
}

func (p *recordingPublisher) PublishUser(userID string, ev Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events[userID] = append(p.events[userID], ev)
}

func (p *recordingPublisher) types(userID string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, ev := range p.events[userID] {
		out = append(out, ev.Type)
	}
	return out
}

// memCache is a LeaderboardCache backed by a map.
type memCache struct {
	mu          sync.Mutex
	pages       map[string][]ranking.Entry
	invalidated int
}

func newMemCache() *memCache {
	return &memCache{pages: make(map[string][]ranking.Entry)}
}

func (c *memCache) Get(_ context.Context, key string) ([]ranking.Entry, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.pages[key]
	return e, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, entries []ranking.Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages[key] = entries
	return nil
}

func (c *memCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages = make(map[string][]ranking.Entry)
	c.invalidated++
	return nil
}

package persistence

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/khoahotran/fusion-resume/internal/domain/blurb"
)

// memoryBlurbRepo keeps blurbs in process memory. It backs unit tests and
// local runs without a database.
type memoryBlurbRepo struct {
	mu     sync.RWMutex
	nextID int64
	store  map[int64]blurb.SkillBlurb
	now    func() time.Time
}

func NewMemoryBlurbRepo() blurb.Repository {
	return newMemoryBlurbRepo(time.Now)
}

func newMemoryBlurbRepo(now func() time.Time) *memoryBlurbRepo {
	return &memoryBlurbRepo{store: make(map[int64]blurb.SkillBlurb), now: now}
}

func (m *memoryBlurbRepo) Insert(_ context.Context, b *blurb.SkillBlurb) (*blurb.SkillBlurb, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	saved := cloneBlurb(*b)
	saved.ID = m.nextID
	saved.CreatedAt = m.now().UTC().Truncate(time.Microsecond)
	saved.UpdatedAt = saved.CreatedAt
	m.store[saved.ID] = saved

	out := cloneBlurb(saved)
	return &out, nil
}

func (m *memoryBlurbRepo) Update(_ context.Context, b *blurb.SkillBlurb) (*blurb.SkillBlurb, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.store[b.ID]
	if !ok {
		return nil, blurbNotFound(b.ID)
	}
	saved := cloneBlurb(*b)
	saved.CreatedAt = existing.CreatedAt
	saved.UpdatedAt = m.now().UTC().Truncate(time.Microsecond)
	if saved.UpdatedAt.Before(existing.UpdatedAt) {
		saved.UpdatedAt = existing.UpdatedAt
	}
	m.store[saved.ID] = saved

	out := cloneBlurb(saved)
	return &out, nil
}

func (m *memoryBlurbRepo) FindByID(_ context.Context, id int64) (*blurb.SkillBlurb, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.store[id]
	if !ok {
		return nil, false, nil
	}
	out := cloneBlurb(b)
	return &out, true, nil
}

func (m *memoryBlurbRepo) FindAll(_ context.Context) ([]*blurb.SkillBlurb, error) {
	return m.filter(func(blurb.SkillBlurb) bool { return true }), nil
}

func (m *memoryBlurbRepo) FindByUserID(_ context.Context, userID int64) ([]*blurb.SkillBlurb, error) {
	return m.filter(func(b blurb.SkillBlurb) bool { return b.UserID == userID }), nil
}

func (m *memoryBlurbRepo) FindByUserIDAndTitleContains(_ context.Context, userID int64, title string) ([]*blurb.SkillBlurb, error) {
	return m.filter(func(b blurb.SkillBlurb) bool {
		return b.UserID == userID && containsFold(b.Title, title)
	}), nil
}

func (m *memoryBlurbRepo) FindByUserIDAndKeywordsContains(_ context.Context, userID int64, keyword string) ([]*blurb.SkillBlurb, error) {
	return m.filter(func(b blurb.SkillBlurb) bool {
		return b.UserID == userID && b.Keywords != nil && containsFold(*b.Keywords, keyword)
	}), nil
}

func (m *memoryBlurbRepo) ExistsByID(_ context.Context, id int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.store[id]
	return ok, nil
}

func (m *memoryBlurbRepo) DeleteByID(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, id)
	return nil
}

func (m *memoryBlurbRepo) filter(keep func(blurb.SkillBlurb) bool) []*blurb.SkillBlurb {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*blurb.SkillBlurb, 0)
	for _, b := range m.store {
		if keep(b) {
			c := cloneBlurb(b)
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// cloneBlurb copies b so callers never share the Keywords pointer with the store.
func cloneBlurb(b blurb.SkillBlurb) blurb.SkillBlurb {
	if b.Keywords != nil {
		k := *b.Keywords
		b.Keywords = &k
	}
	return b
}

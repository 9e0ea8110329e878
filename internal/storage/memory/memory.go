// Package memory is a process-local store used for development and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"timebudget/internal/core"
	"timebudget/internal/ports"
)

// Store keeps every entity in maps guarded by one mutex.
type Store struct {
	mu           sync.Mutex
	users        map[string]core.User
	categories   map[string]core.Category
	budgets      map[string]core.TimeBudget
	activities   map[string]core.Activity
	priorities   map[string]core.Priority
	blocks       map[string]core.CalendarBlock
	eliminations map[string]core.Elimination
	reviews      map[string]core.WeeklyReview
}

func New() *Store {
	return &Store{
		users:        map[string]core.User{},
		categories:   map[string]core.Category{},
		budgets:      map[string]core.TimeBudget{},
		activities:   map[string]core.Activity{},
		priorities:   map[string]core.Priority{},
		blocks:       map[string]core.CalendarBlock{},
		eliminations: map[string]core.Elimination{},
		reviews:      map[string]core.WeeklyReview{},
	}
}

// Ports returns the repository views over this store.
func (s *Store) Ports() ports.Store {
	return ports.Store{
		Users:        users{s},
		Categories:   categories{s},
		Budgets:      budgets{s},
		Activities:   activities{s},
		Priorities:   priorities{s},
		Blocks:       blocks{s},
		Eliminations: eliminations{s},
		Reviews:      reviews{s},
	}
}

type users struct{ s *Store }

func (r users) Create(_ context.Context, u core.User) (core.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return core.User{}, ports.ErrDuplicate
		}
	}
	r.s.users[u.ID] = u
	return u, nil
}

func (r users) FindByID(_ context.Context, id string) (core.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return core.User{}, ports.ErrNotFound
	}
	return u, nil
}

func (r users) FindByEmail(_ context.Context, email string) (core.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return core.User{}, ports.ErrNotFound
}

type categories struct{ s *Store }

func (r categories) FindAll(_ context.Context) ([]core.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]core.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r categories) FindByID(_ context.Context, id string) (core.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[id]
	if !ok {
		return core.Category{}, ports.ErrNotFound
	}
	return c, nil
}

func (r categories) Seed(_ context.Context, cats []core.Category) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	names := map[string]bool{}
	for _, c := range r.s.categories {
		names[c.Name] = true
	}
	inserted := 0
	for _, c := range cats {
		if names[c.Name] {
			continue
		}
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = time.Now()
		}
		r.s.categories[c.ID] = c
		names[c.Name] = true
		inserted++
	}
	return inserted, nil
}

type budgets struct{ s *Store }

func (r budgets) Create(_ context.Context, b core.TimeBudget) (core.TimeBudget, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.budgets {
		if existing.UserID == b.UserID && existing.WeekStart.Equal(b.WeekStart) {
			return core.TimeBudget{}, ports.ErrDuplicate
		}
	}
	r.s.budgets[b.ID] = b
	return b, nil
}

func (r budgets) FindByID(_ context.Context, id string) (core.TimeBudget, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.budgets[id]
	if !ok {
		return core.TimeBudget{}, ports.ErrNotFound
	}
	return b, nil
}

func (r budgets) FindByUserAndWeek(_ context.Context, userID string, weekStart time.Time) (core.TimeBudget, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.budgets {
		if b.UserID == userID && b.WeekStart.Equal(weekStart) {
			return b, nil
		}
	}
	return core.TimeBudget{}, ports.ErrNotFound
}

func (r budgets) Update(_ context.Context, b core.TimeBudget) (core.TimeBudget, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.budgets[b.ID]; !ok {
		return core.TimeBudget{}, ports.ErrNotFound
	}
	r.s.budgets[b.ID] = b
	return b, nil
}

type activities struct{ s *Store }

func (r activities) Create(_ context.Context, a core.Activity) (core.Activity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.activities[a.ID] = a
	return a, nil
}

func (r activities) FindByID(_ context.Context, id string) (core.Activity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.activities[id]
	if !ok {
		return core.Activity{}, ports.ErrNotFound
	}
	return a, nil
}

func (r activities) Update(_ context.Context, a core.Activity) (core.Activity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.activities[a.ID]; !ok {
		return core.Activity{}, ports.ErrNotFound
	}
	r.s.activities[a.ID] = a
	return a, nil
}

func (r activities) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.activities[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.s.activities, id)
	return nil
}

func (r activities) List(_ context.Context, userID string, f ports.ActivityFilter) ([]core.Activity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []core.Activity
	for _, a := range r.s.activities {
		if a.UserID != userID {
			continue
		}
		if f.StartDate != nil && a.Date.Before(*f.StartDate) {
			continue
		}
		if f.EndDate != nil && a.Date.After(*f.EndDate) {
			continue
		}
		if f.CategoryID != "" && a.CategoryID != f.CategoryID {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Date.After(out[j].Date)
	})
	return paginate(out, f.Offset, f.Limit), nil
}

func (r activities) FindByDateRange(_ context.Context, userID string, start, end time.Time) ([]core.Activity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.inRange(userID, start, end), nil
}

func (r activities) SumDurationByCategory(_ context.Context, userID string, start, end time.Time) ([]core.CategoryTotal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sums := map[string]int{}
	for _, a := range r.inRange(userID, start, end) {
		sums[a.CategoryID] += a.DurationMinutes
	}
	out := make([]core.CategoryTotal, 0, len(sums))
	for id, total := range sums {
		name := core.UnknownCategoryName
		if c, ok := r.s.categories[id]; ok {
			name = c.Name
		}
		out = append(out, core.CategoryTotal{CategoryID: id, CategoryName: name, TotalMinutes: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalMinutes == out[j].TotalMinutes {
			return out[i].CategoryName < out[j].CategoryName
		}
		return out[i].TotalMinutes > out[j].TotalMinutes
	})
	return out, nil
}

// inRange expects the caller to hold the lock.
func (r activities) inRange(userID string, start, end time.Time) []core.Activity {
	var out []core.Activity
	for _, a := range r.s.activities {
		if a.UserID == userID && !a.Date.Before(start) && a.Date.Before(end) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

type priorities struct{ s *Store }

func (r priorities) Create(_ context.Context, p core.Priority) (core.Priority, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.priorities[p.ID] = p
	return p, nil
}

func (r priorities) FindByID(_ context.Context, id string) (core.Priority, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.priorities[id]
	if !ok {
		return core.Priority{}, ports.ErrNotFound
	}
	return p, nil
}

func (r priorities) FindByUser(_ context.Context, userID string, onlyActive bool) ([]core.Priority, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []core.Priority
	for _, p := range r.s.priorities {
		if p.UserID != userID || (onlyActive && !p.IsActive) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsActive != out[j].IsActive {
			return out[i].IsActive
		}
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r priorities) CountActive(_ context.Context, userID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, p := range r.s.priorities {
		if p.UserID == userID && p.IsActive {
			n++
		}
	}
	return n, nil
}

func (r priorities) Update(_ context.Context, p core.Priority) (core.Priority, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.priorities[p.ID]; !ok {
		return core.Priority{}, ports.ErrNotFound
	}
	r.s.priorities[p.ID] = p
	return p, nil
}

func (r priorities) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.priorities[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.s.priorities, id)
	return nil
}

// Reorder validates every id before writing so a failure leaves the order untouched.
func (r priorities) Reorder(_ context.Context, userID string, ids []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range ids {
		p, ok := r.s.priorities[id]
		if !ok || p.UserID != userID {
			return ports.ErrNotFound
		}
	}
	now := time.Now()
	for i, id := range ids {
		p := r.s.priorities[id]
		p.Order = i + 1
		p.UpdatedAt = now
		r.s.priorities[id] = p
	}
	return nil
}

type blocks struct{ s *Store }

func (r blocks) Create(_ context.Context, b core.CalendarBlock) (core.CalendarBlock, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.blocks[b.ID] = b
	return b, nil
}

func (r blocks) FindByID(_ context.Context, id string) (core.CalendarBlock, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.blocks[id]
	if !ok {
		return core.CalendarBlock{}, ports.ErrNotFound
	}
	return b, nil
}

func (r blocks) FindByUser(_ context.Context, userID string, start, end *time.Time) ([]core.CalendarBlock, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []core.CalendarBlock
	for _, b := range r.s.blocks {
		if b.UserID != userID {
			continue
		}
		if start != nil && b.StartTime.Before(*start) {
			continue
		}
		if end != nil && !b.StartTime.Before(*end) {
			continue
		}
		out = append(out, b)
	}
	sortBlocks(out)
	return out, nil
}

func (r blocks) FindOverlapping(_ context.Context, userID string, start, end time.Time, excludeID string) ([]core.CalendarBlock, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []core.CalendarBlock
	for _, b := range r.s.blocks {
		if b.UserID != userID || b.ID == excludeID {
			continue
		}
		if core.BlocksOverlap(b.StartTime, b.EndTime, start, end) {
			out = append(out, b)
		}
	}
	sortBlocks(out)
	return out, nil
}

func (r blocks) Update(_ context.Context, b core.CalendarBlock) (core.CalendarBlock, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.blocks[b.ID]; !ok {
		return core.CalendarBlock{}, ports.ErrNotFound
	}
	r.s.blocks[b.ID] = b
	return b, nil
}

func (r blocks) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.blocks[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.s.blocks, id)
	return nil
}

func sortBlocks(bs []core.CalendarBlock) {
	sort.Slice(bs, func(i, j int) bool { return bs[i].StartTime.Before(bs[j].StartTime) })
}

type eliminations struct{ s *Store }

func (r eliminations) Create(_ context.Context, e core.Elimination) (core.Elimination, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.eliminations[e.ID] = e
	return e, nil
}

func (r eliminations) FindByUser(_ context.Context, userID string) ([]core.Elimination, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []core.Elimination
	for _, e := range r.s.eliminations {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EliminatedAt.After(out[j].EliminatedAt) })
	return out, nil
}

func (r eliminations) SumRecoveredMinutes(_ context.Context, userID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	total := 0
	for _, e := range r.s.eliminations {
		if e.UserID == userID {
			total += e.RecoveredMinutes
		}
	}
	return total, nil
}

type reviews struct{ s *Store }

func (r reviews) Create(_ context.Context, rv core.WeeklyReview) (core.WeeklyReview, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.reviews {
		if existing.UserID == rv.UserID && existing.WeekStart.Equal(rv.WeekStart) {
			return core.WeeklyReview{}, ports.ErrDuplicate
		}
	}
	rv.Wins = nonNil(rv.Wins)
	rv.Challenges = nonNil(rv.Challenges)
	rv.Improvements = nonNil(rv.Improvements)
	r.s.reviews[rv.ID] = rv
	return rv, nil
}

func (r reviews) FindByID(_ context.Context, id string) (core.WeeklyReview, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rv, ok := r.s.reviews[id]
	if !ok {
		return core.WeeklyReview{}, ports.ErrNotFound
	}
	return rv, nil
}

func (r reviews) FindByUserAndWeek(_ context.Context, userID string, weekStart time.Time) (core.WeeklyReview, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rv := range r.s.reviews {
		if rv.UserID == userID && rv.WeekStart.Equal(weekStart) {
			return rv, nil
		}
	}
	return core.WeeklyReview{}, ports.ErrNotFound
}

func (r reviews) FindByUser(_ context.Context, userID string, limit int) ([]core.WeeklyReview, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []core.WeeklyReview
	for _, rv := range r.s.reviews {
		if rv.UserID == userID {
			out = append(out, rv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WeekStart.After(out[j].WeekStart) })
	return paginate(out, 0, limit), nil
}

func (r reviews) UpdateMetrics(_ context.Context, id string, totals core.WeekTotals) (core.WeeklyReview, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rv, ok := r.s.reviews[id]
	if !ok {
		return core.WeeklyReview{}, ports.ErrNotFound
	}
	if !rv.IsCompleted {
		rv.TotalTrackedMinutes = totals.TrackedMinutes
		rv.PriorityAlignedMinutes = totals.PriorityAlignedMinutes
		rv.WastedMinutes = totals.WastedMinutes
		rv.UpdatedAt = time.Now()
		r.s.reviews[id] = rv
	}
	return rv, nil
}

func (r reviews) Complete(_ context.Context, id string, c ports.ReviewCompletion) (core.WeeklyReview, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rv, ok := r.s.reviews[id]
	if !ok || rv.IsCompleted {
		return core.WeeklyReview{}, ports.ErrNotFound
	}
	score := c.OverallScore
	completedAt := c.CompletedAt
	rv.Wins = nonNil(c.Wins)
	rv.Challenges = nonNil(c.Challenges)
	rv.Improvements = nonNil(c.Improvements)
	rv.OverallScore = &score
	rv.IsCompleted = true
	rv.CompletedAt = &completedAt
	rv.UpdatedAt = completedAt
	r.s.reviews[id] = rv
	return rv, nil
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return append([]string(nil), items...)
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

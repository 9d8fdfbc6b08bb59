// Package memory is the in-process persistence collaborator. Every value is
// cloned on the way in and on the way out, so callers never share state.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

// table keeps rows in insertion order; List returns newest first.
// version, when set, points at the row's optimistic-lock counter.
type table[T any] struct {
	mu      sync.RWMutex
	rows    map[string]T
	order   []string
	clone   func(T) T
	version func(T) *int
}

func newTable[T any](clone func(T) T, version func(T) *int) *table[T] {
	return &table[T]{rows: map[string]T{}, clone: clone, version: version}
}

func (t *table[T]) list(keep func(T) bool) []T {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]T, 0, len(t.order))
	for i := len(t.order) - 1; i >= 0; i-- {
		row := t.rows[t.order[i]]
		if keep(row) {
			out = append(out, t.clone(row))
		}
	}
	return out
}

func (t *table[T]) get(id string) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	row, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, false
	}
	return t.clone(row), true
}

func (t *table[T]) find(match func(T) bool) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, id := range t.order {
		if row := t.rows[id]; match(row) {
			return t.clone(row), true
		}
	}
	var zero T
	return zero, false
}

// insert rejects a duplicate id; unique, when set, is checked against every
// stored row under the same lock.
func (t *table[T]) insert(id string, row T, unique func(existing T) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; ok {
		return entity.ErrDuplicateID
	}
	if unique != nil {
		for _, existing := range t.rows {
			if err := unique(existing); err != nil {
				return err
			}
		}
	}
	if t.version != nil && *t.version(row) == 0 {
		*t.version(row) = 1
	}
	t.rows[id] = t.clone(row)
	t.order = append(t.order, id)
	return nil
}

// replace is a compare-and-swap on the version: the stored row must still
// carry row's version. On success the version is bumped on both copies.
func (t *table[T]) replace(id string, row T, notFound error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	stored, ok := t.rows[id]
	if !ok {
		return notFound
	}
	if t.version != nil {
		if *t.version(stored) != *t.version(row) {
			return entity.ErrVersionConflict
		}
		*t.version(row)++
	}
	t.rows[id] = t.clone(row)
	return nil
}

func (t *table[T]) remove(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	for i, v := range t.order {
		if v == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

type LeadRepository struct {
	t *table[*entity.Lead]
}

func NewLeadRepository() *LeadRepository {
	return &LeadRepository{t: newTable((*entity.Lead).Clone, func(l *entity.Lead) *int { return &l.Version })}
}

func (r *LeadRepository) List(_ context.Context, crmType string) ([]*entity.Lead, error) {
	return r.t.list(func(l *entity.Lead) bool { return l.CRMType == crmType }), nil
}

func (r *LeadRepository) FindByID(_ context.Context, id string) (*entity.Lead, error) {
	l, ok := r.t.get(id)
	if !ok {
		return nil, entity.ErrLeadNotFound
	}
	return l, nil
}

func (r *LeadRepository) Create(_ context.Context, lead *entity.Lead) error {
	return r.t.insert(lead.ID, lead, nil)
}

func (r *LeadRepository) Update(_ context.Context, lead *entity.Lead) error {
	return r.t.replace(lead.ID, lead, entity.ErrLeadNotFound)
}

func (r *LeadRepository) Delete(_ context.Context, id string) (bool, error) {
	return r.t.remove(id), nil
}

func (r *LeadRepository) ListFollowUpsDue(_ context.Context, before time.Time) ([]*entity.Lead, error) {
	return r.t.list(func(l *entity.Lead) bool {
		return !l.IsConverted() && l.FollowUpDue(before)
	}), nil
}

type ClientRepository struct {
	t *table[*entity.Client]
}

func NewClientRepository() *ClientRepository {
	return &ClientRepository{t: newTable((*entity.Client).Clone, func(c *entity.Client) *int { return &c.Version })}
}

func (r *ClientRepository) List(_ context.Context, crmType string) ([]*entity.Client, error) {
	return r.t.list(func(c *entity.Client) bool { return c.CRMType == crmType }), nil
}

func (r *ClientRepository) FindByID(_ context.Context, id string) (*entity.Client, error) {
	c, ok := r.t.get(id)
	if !ok {
		return nil, entity.ErrClientNotFound
	}
	return c, nil
}

func (r *ClientRepository) FindByLeadID(_ context.Context, leadID string) (*entity.Client, error) {
	c, ok := r.t.find(func(c *entity.Client) bool { return c.LeadID == leadID })
	if !ok {
		return nil, entity.ErrClientNotFound
	}
	return c, nil
}

func (r *ClientRepository) Create(_ context.Context, client *entity.Client) error {
	return r.t.insert(client.ID, client, func(existing *entity.Client) error {
		if existing.LeadID == client.LeadID {
			return &entity.AlreadyConvertedError{LeadID: client.LeadID, ClientID: existing.ID}
		}
		return nil
	})
}

func (r *ClientRepository) Update(_ context.Context, client *entity.Client) error {
	return r.t.replace(client.ID, client, entity.ErrClientNotFound)
}

func (r *ClientRepository) Delete(_ context.Context, id string) (bool, error) {
	return r.t.remove(id), nil
}

type CallRepository struct {
	t *table[*entity.Call]
}

func cloneCall(c *entity.Call) *entity.Call {
	out := *c
	return &out
}

func NewCallRepository() *CallRepository {
	return &CallRepository{t: newTable(cloneCall, nil)}
}

func (r *CallRepository) List(_ context.Context, crmType string) ([]*entity.Call, error) {
	return r.t.list(func(c *entity.Call) bool { return c.CRMType == crmType }), nil
}

func (r *CallRepository) FindByID(_ context.Context, id string) (*entity.Call, error) {
	c, ok := r.t.get(id)
	if !ok {
		return nil, entity.ErrCallNotFound
	}
	return c, nil
}

func (r *CallRepository) Create(_ context.Context, call *entity.Call) error {
	return r.t.insert(call.ID, call, nil)
}

func (r *CallRepository) Delete(_ context.Context, id string) (bool, error) {
	return r.t.remove(id), nil
}

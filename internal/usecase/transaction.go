package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

// Transaction runs steps in order. When a step fails, the compensations of
// the steps that already succeeded run in reverse order.
type Transaction struct {
	steps []step
}

type step struct {
	name       string
	fn         func(context.Context) error
	compensate func(context.Context) error
}

func NewTransaction() *Transaction {
	return &Transaction{}
}

// AddStep registers an operation and its compensation (may be nil).
func (t *Transaction) AddStep(name string, fn, compensate func(context.Context) error) {
	t.steps = append(t.steps, step{name: name, fn: fn, compensate: compensate})
}

func (t *Transaction) Execute(ctx context.Context) error {
	for i, s := range t.steps {
		if err := s.fn(ctx); err != nil {
			rbErr := t.rollback(ctx, i)
			failed := fmt.Errorf("operation '%s' failed: %w (rolled back %d operations)", s.name, err, i)
			if rbErr != nil {
				return errors.Join(failed, rbErr)
			}
			return failed
		}
	}
	return nil
}

func (t *Transaction) rollback(ctx context.Context, failedAt int) error {
	// compensations must run even if the request context was cancelled
	ctx = context.WithoutCancel(ctx)

	var errs []error
	for i := failedAt - 1; i >= 0; i-- {
		s := t.steps[i]
		if s.compensate == nil {
			continue
		}
		if err := s.compensate(ctx); err != nil {
			errs = append(errs, fmt.Errorf("compensation '%s' failed (inconsistency risk): %w", s.name, err))
		}
	}
	return errors.Join(errs...)
}

// maxWriteAttempts bounds how often a read-modify-write is replayed after the
// store reported a concurrent change.
const maxWriteAttempts = 5

// withRetry runs fn, which must re-read everything it writes, until it stops
// failing with entity.ErrVersionConflict.
func withRetry(ctx context.Context, fn func(context.Context) error) error {
	for attempt := 1; ; attempt++ {
		err := fn(ctx)
		if !errors.Is(err, entity.ErrVersionConflict) {
			return err
		}
		if attempt == maxWriteAttempts || ctx.Err() != nil {
			return &DomainError{Code: CodeWriteConflict, Message: "registro alterado por outra operação, tente novamente", Err: err}
		}
	}
}

package usecase

import (
	"context"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type LeadRepository interface {
	List(ctx context.Context, crmType string) ([]*entity.Lead, error)
	FindByID(ctx context.Context, id string) (*entity.Lead, error)
	Create(ctx context.Context, lead *entity.Lead) error
	Update(ctx context.Context, lead *entity.Lead) error
	Delete(ctx context.Context, id string) (bool, error)
	// ListFollowUpsDue returns unconverted leads, across every crm, whose
	// followUp is at or before the given instant.
	ListFollowUpsDue(ctx context.Context, before time.Time) ([]*entity.Lead, error)
}

type ClientRepository interface {
	List(ctx context.Context, crmType string) ([]*entity.Client, error)
	FindByID(ctx context.Context, id string) (*entity.Client, error)
	FindByLeadID(ctx context.Context, leadID string) (*entity.Client, error)
	Create(ctx context.Context, client *entity.Client) error
	Update(ctx context.Context, client *entity.Client) error
	Delete(ctx context.Context, id string) (bool, error)
}

type CallRepository interface {
	List(ctx context.Context, crmType string) ([]*entity.Call, error)
	FindByID(ctx context.Context, id string) (*entity.Call, error)
	Create(ctx context.Context, call *entity.Call) error
	Delete(ctx context.Context, id string) (bool, error)
}

type EventPublisher interface {
	PublishLeadConverted(ctx context.Context, event LeadConvertedEvent) error
}

// ConversionGuard serialises conversions of the same lead across instances.
type ConversionGuard interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

type Notifier interface {
	NotifyConversion(ctx context.Context, event LeadConvertedEvent) error
	NotifyFollowUps(ctx context.Context, crmType string, leads []*entity.Lead) error
}

// Clock returns the current instant. Injected so tests can pin time.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c()
}

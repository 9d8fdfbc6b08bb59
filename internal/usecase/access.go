package usecase

import "github.com/xavierca1/ligue-crm/internal/entity"

// Authorize fails closed: a session without a crm_type can touch nothing.
func Authorize(s entity.Session, e entity.Tenanted) error {
	if s.CRMType == "" || e.TenantID() != s.CRMType {
		return &entity.CrossTenantAccessError{
			EntityID:      e.EntityID(),
			EntityCRMType: e.TenantID(),
			SessionCRM:    s.CRMType,
		}
	}
	return nil
}

// AuthorizeCRM checks a crm_type that is about to be written.
func AuthorizeCRM(s entity.Session, crmType string) error {
	if s.CRMType == "" || crmType != s.CRMType {
		return &entity.CrossTenantAccessError{EntityCRMType: crmType, SessionCRM: s.CRMType}
	}
	return nil
}

// Scope keeps only the items that belong to the session's crm, preserving order.
func Scope[T entity.Tenanted](s entity.Session, items []T) []T {
	out := make([]T, 0, len(items))
	if s.CRMType == "" {
		return out
	}
	for _, it := range items {
		if it.TenantID() == s.CRMType {
			out = append(out, it)
		}
	}
	return out
}

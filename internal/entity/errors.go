package entity

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrLeadNotFound   = errors.New("lead não encontrado")
	ErrClientNotFound = errors.New("client não encontrado")
	ErrCallNotFound   = errors.New("call não encontrada")

	// ErrEmptyComment is the EmptyCommentError of the engine: content was
	// empty or whitespace-only after trimming.
	ErrEmptyComment = errors.New("comment content is empty")

	ErrDuplicateID = errors.New("entity id already exists")

	// ErrVersionConflict means the row changed after it was read.
	ErrVersionConflict = errors.New("entity was modified concurrently")
)

// ValidationError names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ImmutableFieldError is returned when id, createdAt or crm_type would change.
type ImmutableFieldError struct {
	Field string
}

func (e *ImmutableFieldError) Error() string {
	return fmt.Sprintf("%s is immutable", e.Field)
}

type InvalidEnumValueError struct {
	Field   string
	Value   string
	Allowed []string
}

func (e *InvalidEnumValueError) Error() string {
	return fmt.Sprintf("%s: %q is not one of [%s]", e.Field, e.Value, strings.Join(e.Allowed, ", "))
}

// AlreadyConvertedError carries the client the lead became, when known.
type AlreadyConvertedError struct {
	LeadID   string
	ClientID string
}

func (e *AlreadyConvertedError) Error() string {
	if e.ClientID != "" {
		return fmt.Sprintf("lead %s already converted to client %s", e.LeadID, e.ClientID)
	}
	return fmt.Sprintf("lead %s already converted", e.LeadID)
}

type CrossTenantAccessError struct {
	EntityID      string
	EntityCRMType string
	SessionCRM    string
}

func (e *CrossTenantAccessError) Error() string {
	if e.EntityID == "" {
		return fmt.Sprintf("crm %q may not access crm %q", e.SessionCRM, e.EntityCRMType)
	}
	return fmt.Sprintf("entity %s belongs to crm %q, session is scoped to %q", e.EntityID, e.EntityCRMType, e.SessionCRM)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrLeadNotFound) || errors.Is(err, ErrClientNotFound) || errors.Is(err, ErrCallNotFound)
}

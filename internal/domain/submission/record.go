// Package submission holds the behavior shared by the five public submission types:
// numbering, intake, status review, deletion and audit history.
package submission

import (
	"regexp"
	"strings"

	"confhub/internal/core/apperror"
	"confhub/internal/core/entity"
	"confhub/internal/core/id"
	"confhub/internal/domain/notification"
)

// Record is implemented by every submission entity.
type Record interface {
	entity.Validatable
	GetID() id.ID
	Touch()
	GetReference() string
	SetReference(ref string)
	Recipient() notification.Recipient

	// Documents maps a document name (payment-proof, abstract, ...) to its stored path.
	// Empty paths are omitted.
	Documents() map[string]string
}

// Reviewable is a Record with a single status axis.
type Reviewable interface {
	Record
	GetStatus() Status
	SetStatus(s Status)
}

// Base carries the columns every submission table shares.
type Base struct {
	entity.BaseEntity
	Reference string `db:"reference" json:"reference"`
}

// NewBase creates a Base with a fresh id.
func NewBase() Base {
	return Base{BaseEntity: entity.NewBaseEntity()}
}

func (b *Base) GetReference() string { return b.Reference }

func (b *Base) SetReference(ref string) { b.Reference = ref }

// Reviewed is embedded by single-axis entities.
type Reviewed struct {
	Status Status `db:"status" json:"status"`
}

func (r *Reviewed) GetStatus() Status { return r.Status }

func (r *Reviewed) SetStatus(s Status) { r.Status = s }

// Field is a named form value checked for presence.
type Field struct {
	Name  string
	Value string
}

// RequireAll returns one validation error listing every blank field.
func RequireAll(fields ...Field) error {
	missing := make(map[string]string)
	var names []string
	for _, f := range fields {
		if strings.TrimSpace(f.Value) == "" {
			missing[f.Name] = "is required"
			names = append(names, f.Name)
		}
	}
	if len(names) == 0 {
		return nil
	}
	return apperror.NewFieldErrors("missing required fields: "+strings.Join(names, ", "), missing)
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s looks like an e-mail address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// CheckEmail returns a validation error for a malformed address.
func CheckEmail(field, value string) error {
	if ValidEmail(value) {
		return nil
	}
	return apperror.NewFieldError("invalid email address", field, "must be a valid email")
}

// CheckOption validates that value is one of allowed.
func CheckOption(field, value string, allowed []string) error {
	for _, a := range allowed {
		if a == value {
			return nil
		}
	}
	return apperror.NewFieldError(field+" must be one of: "+strings.Join(allowed, ", "), field, "must be one of "+strings.Join(allowed, ", "))
}

// FirstError returns the first non-nil error.
func FirstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

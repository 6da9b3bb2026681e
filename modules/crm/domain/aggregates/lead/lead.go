package lead

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Source string

const (
	SourceWebsite       Source = "website"
	SourceReferral      Source = "referral"
	SourceSocialMedia   Source = "social_media"
	SourceColdCall      Source = "cold_call"
	SourceAdvertisement Source = "advertisement"
	SourceOther         Source = "other"
)

type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusQualified Status = "qualified"
	StatusProposal  Status = "proposal"
	StatusWon       Status = "won"
	StatusLost      Status = "lost"
)

func ValidSources() []Source {
	return []Source{
		SourceWebsite, SourceReferral, SourceSocialMedia,
		SourceColdCall, SourceAdvertisement, SourceOther,
	}
}

func ValidStatuses() []Status {
	return []Status{
		StatusNew, StatusContacted, StatusQualified,
		StatusProposal, StatusWon, StatusLost,
	}
}

func IsValidSource(v string) bool {
	for _, s := range ValidSources() {
		if string(s) == v {
			return true
		}
	}
	return false
}

func IsValidStatus(v string) bool {
	for _, s := range ValidStatuses() {
		if string(s) == v {
			return true
		}
	}
	return false
}

type Lead struct {
	id             uuid.UUID
	fullName       string
	email          string
	phone          string
	company        string
	notes          string
	source         Source
	status         Status
	estimatedValue decimal.Decimal
	createdAt      time.Time
	updatedAt      time.Time
}

type Option func(l *Lead)

func WithPhone(phone string) Option {
	return func(l *Lead) { l.phone = strings.TrimSpace(phone) }
}

func WithCompany(company string) Option {
	return func(l *Lead) { l.company = strings.TrimSpace(company) }
}

func WithNotes(notes string) Option {
	return func(l *Lead) { l.notes = notes }
}

func WithSource(source Source) Option {
	return func(l *Lead) { l.source = source }
}

func WithStatus(status Status) Option {
	return func(l *Lead) { l.status = status }
}

func WithEstimatedValue(v decimal.Decimal) Option {
	return func(l *Lead) { l.estimatedValue = v }
}

func New(fullName, email string, opts ...Option) Lead {
	l := Lead{
		fullName: strings.TrimSpace(fullName),
		email:    normalizeEmail(email),
		source:   SourceOther,
		status:   StatusNew,
	}
	for _, opt := range opts {
		opt(&l)
	}
	return l
}

func Hydrate(
	id uuid.UUID,
	fullName string,
	email string,
	phone string,
	company string,
	notes string,
	source Source,
	status Status,
	estimatedValue decimal.Decimal,
	createdAt time.Time,
	updatedAt time.Time,
) Lead {
	return Lead{
		id:             id,
		fullName:       strings.TrimSpace(fullName),
		email:          normalizeEmail(email),
		phone:          strings.TrimSpace(phone),
		company:        strings.TrimSpace(company),
		notes:          notes,
		source:         source,
		status:         status,
		estimatedValue: estimatedValue,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

func (l Lead) ID() uuid.UUID                   { return l.id }
func (l Lead) FullName() string                { return l.fullName }
func (l Lead) Email() string                   { return l.email }
func (l Lead) Phone() string                   { return l.phone }
func (l Lead) Company() string                 { return l.company }
func (l Lead) Notes() string                   { return l.notes }
func (l Lead) Source() Source                  { return l.source }
func (l Lead) Status() Status                  { return l.status }
func (l Lead) EstimatedValue() decimal.Decimal { return l.estimatedValue }
func (l Lead) CreatedAt() time.Time            { return l.createdAt }
func (l Lead) UpdatedAt() time.Time            { return l.updatedAt }
func (l Lead) IsZero() bool                    { return l.id == uuid.Nil && l.email == "" }

// Merge returns a copy of l with non-empty imported fields applied. Used by
// the import execution engine for update decisions.
func (l Lead) Merge(other Lead) Lead {
	out := l
	if other.fullName != "" {
		out.fullName = other.fullName
	}
	if other.email != "" {
		out.email = other.email
	}
	if other.phone != "" {
		out.phone = other.phone
	}
	if other.company != "" {
		out.company = other.company
	}
	if other.notes != "" {
		out.notes = other.notes
	}
	if other.source != "" {
		out.source = other.source
	}
	if other.status != "" {
		out.status = other.status
	}
	if !other.estimatedValue.IsZero() {
		out.estimatedValue = other.estimatedValue
	}
	return out
}

func normalizeEmail(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

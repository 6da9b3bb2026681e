package mapping

// CanonicalField is a normalized CRM field identifier used across all import
// sources.
type CanonicalField string

const (
	FieldFullName CanonicalField = "full_name"
	FieldEmail    CanonicalField = "email"
	FieldPhone    CanonicalField = "phone"
	FieldCompany  CanonicalField = "company"
	FieldSource   CanonicalField = "source"
	FieldStatus   CanonicalField = "status"
	FieldNotes    CanonicalField = "notes"
)

// KnownFields returns every canonical field in catalog order.
func KnownFields() []CanonicalField {
	return []CanonicalField{
		FieldFullName, FieldEmail, FieldPhone,
		FieldCompany, FieldSource, FieldStatus, FieldNotes,
	}
}

// RequiredFields must be covered by a mapping or a merge rule before a
// submission is accepted.
func RequiredFields() []CanonicalField {
	return []CanonicalField{FieldFullName, FieldEmail}
}

func IsKnownField(v string) bool {
	for _, f := range KnownFields() {
		if string(f) == v {
			return true
		}
	}
	return false
}

func IsRequiredField(f CanonicalField) bool {
	for _, r := range RequiredFields() {
		if r == f {
			return true
		}
	}
	return false
}

// FieldLabels maps canonical fields to display labels for the wizard UI.
var FieldLabels = map[CanonicalField]string{
	FieldFullName: "Full name",
	FieldEmail:    "Email",
	FieldPhone:    "Phone",
	FieldCompany:  "Company",
	FieldSource:   "Source",
	FieldStatus:   "Status",
	FieldNotes:    "Notes",
}

// columnAliases maps lowercase header names to canonical fields. When
// multiple raw headers mean the same thing, they all map here.
var columnAliases = map[string]CanonicalField{
	// Full name
	"full_name": FieldFullName,
	"full name": FieldFullName,
	"fullname":  FieldFullName,
	"name":      FieldFullName,
	"contact":   FieldFullName,
	"lead name": FieldFullName,

	// Email
	"email":         FieldEmail,
	"email address": FieldEmail,
	"email_address": FieldEmail,
	"emailaddress":  FieldEmail,
	"e-mail":        FieldEmail,
	"mail":          FieldEmail,

	// Phone
	"phone":        FieldPhone,
	"phone number": FieldPhone,
	"phone_number": FieldPhone,
	"phonenumber":  FieldPhone,
	"mobile":       FieldPhone,
	"telephone":    FieldPhone,
	"tel":          FieldPhone,
	"cell":         FieldPhone,

	// Company
	"company":      FieldCompany,
	"company name": FieldCompany,
	"company_name": FieldCompany,
	"organization": FieldCompany,
	"organisation": FieldCompany,
	"employer":     FieldCompany,
	"firm":         FieldCompany,

	// Source
	"source":      FieldSource,
	"lead source": FieldSource,
	"lead_source": FieldSource,
	"origin":      FieldSource,
	"channel":     FieldSource,

	// Status
	"status":      FieldStatus,
	"lead status": FieldStatus,
	"lead_status": FieldStatus,
	"stage":       FieldStatus,

	// Notes
	"notes":       FieldNotes,
	"note":        FieldNotes,
	"comments":    FieldNotes,
	"comment":     FieldNotes,
	"description": FieldNotes,
	"remarks":     FieldNotes,
}

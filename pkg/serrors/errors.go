package serrors

import "fmt"

// Base is a coded error shared by API and service layers.
type Base struct {
	Code    string
	Message string
	Details string
}

func NewError(code, message, details string) *Base {
	return &Base{Code: code, Message: message, Details: details}
}

func (e *Base) Error() string {
	if e.Details == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
}

// ValidationErrors maps struct field names to human-readable messages.
type ValidationErrors map[string]string

func (v ValidationErrors) First(fields ...string) string {
	for _, f := range fields {
		if msg, ok := v[f]; ok && msg != "" {
			return msg
		}
	}
	for _, msg := range v {
		if msg != "" {
			return msg
		}
	}
	return ""
}

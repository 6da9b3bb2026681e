package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/vantagecrm/vantage/modules/crm/domain/aggregates/lead"
	"github.com/vantagecrm/vantage/modules/leadimport/domain/aggregates/importtemplate"
	"github.com/vantagecrm/vantage/modules/leadimport/domain/aggregates/session"
	"github.com/vantagecrm/vantage/modules/leadimport/mapping"
	"github.com/vantagecrm/vantage/modules/leadimport/parse"
	"github.com/vantagecrm/vantage/modules/leadimport/services"
	"github.com/vantagecrm/vantage/pkg/composables"
	"github.com/vantagecrm/vantage/pkg/httpapi"
)

// writeDomainError maps service and domain errors onto the API error
// envelope. Unrecognized errors become a 500 with a generic message; the
// cause stays in the server log only.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		phaseErr    *session.PhaseError
		decisionErr *session.InvalidDecisionError
		mappingErr  *mapping.ValidationError
	)

	switch {
	case errors.Is(err, composables.ErrNoUser):
		_ = httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
	case errors.Is(err, services.ErrForbidden):
		_ = httpapi.WriteError(w, http.StatusForbidden, "FORBIDDEN", "operation not permitted", nil)
	case errors.Is(err, session.ErrNotFound):
		_ = httpapi.WriteError(w, http.StatusNotFound, "IMPORT_SESSION_NOT_FOUND", "import session not found", nil)
	case errors.Is(err, session.ErrExecuteInProgress):
		_ = httpapi.WriteError(w, http.StatusConflict, "IMPORT_ALREADY_RUNNING", "import is already executing", nil)
	case errors.As(err, &phaseErr):
		_ = httpapi.WriteError(w, http.StatusConflict, "IMPORT_INVALID_PHASE", phaseErr.Error(), map[string]string{
			"phase": string(phaseErr.Phase),
		})
	case errors.As(err, &decisionErr):
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_DECISION", decisionErr.Error(), nil)
	case errors.As(err, &mappingErr):
		_ = httpapi.WriteError(w, http.StatusBadRequest, "MAPPING_INVALID", mappingErr.Error(), mappingMeta(mappingErr))
	case errors.Is(err, parse.ErrUnsupportedType):
		_ = httpapi.WriteError(w, http.StatusBadRequest, "FILE_UNSUPPORTED", err.Error(), nil)
	case errors.Is(err, parse.ErrFileTooLarge):
		_ = httpapi.WriteError(w, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", err.Error(), nil)
	case errors.Is(err, parse.ErrEmptyFile):
		_ = httpapi.WriteError(w, http.StatusBadRequest, "FILE_EMPTY", err.Error(), nil)
	case errors.Is(err, importtemplate.ErrNotFound):
		_ = httpapi.WriteError(w, http.StatusNotFound, "TEMPLATE_NOT_FOUND", "import template not found", nil)
	case errors.Is(err, importtemplate.ErrNameTaken):
		_ = httpapi.WriteError(w, http.StatusConflict, "TEMPLATE_NAME_TAKEN", "template name already in use", nil)
	case errors.Is(err, importtemplate.ErrEmptyName):
		_ = httpapi.WriteError(w, http.StatusBadRequest, "TEMPLATE_NAME_REQUIRED", "template name is required", nil)
	case errors.Is(err, lead.ErrNotFound):
		_ = httpapi.WriteError(w, http.StatusNotFound, "LEAD_NOT_FOUND", "lead not found", nil)
	default:
		composables.UseLogger(r.Context()).WithError(err).Error("unhandled import API error")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
	}
}

func mappingMeta(err *mapping.ValidationError) map[string]string {
	meta := make(map[string]string, 2)
	if len(err.Conflicts) > 0 {
		cols := make([]string, 0, len(err.Conflicts))
		for _, c := range err.Conflicts {
			cols = append(cols, c.Column)
		}
		meta["conflicting_columns"] = strings.Join(cols, ",")
	}
	if len(err.MissingFields) > 0 {
		fields := make([]string, 0, len(err.MissingFields))
		for _, f := range err.MissingFields {
			fields = append(fields, string(f))
		}
		meta["missing_fields"] = strings.Join(fields, ",")
	}
	return meta
}

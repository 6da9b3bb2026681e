package controllers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/vantagecrm/vantage/modules/leadimport/normalize"
	"github.com/vantagecrm/vantage/modules/leadimport/services"
	"github.com/vantagecrm/vantage/pkg/application"
	"github.com/vantagecrm/vantage/pkg/composables"
	"github.com/vantagecrm/vantage/pkg/configuration"
	"github.com/vantagecrm/vantage/pkg/httpapi"
)

// ImportController exposes the wizard under /lead-import.
type ImportController struct {
	app       application.Application
	imports   *services.ImportService
	templates *services.TemplateService
	basePath  string
}

func NewImportController(app application.Application) application.Controller {
	return &ImportController{
		app:       app,
		imports:   app.Service(services.ImportService{}).(*services.ImportService),
		templates: app.Service(services.TemplateService{}).(*services.TemplateService),
		basePath:  "/lead-import",
	}
}

func (c *ImportController) Key() string {
	return c.basePath
}

func (c *ImportController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(c.app.Middleware()...)

	router.HandleFunc("/upload", c.Upload).Methods(http.MethodPost)
	router.HandleFunc("/{session_id}/mapping", c.SubmitMapping).Methods(http.MethodPost)
	router.HandleFunc("/{session_id}/preview", c.Preview).Methods(http.MethodGet)
	router.HandleFunc("/{session_id}/duplicates", c.Duplicates).Methods(http.MethodGet)
	router.HandleFunc("/{session_id}/execute", c.Execute).Methods(http.MethodPost)
	router.HandleFunc("/{session_id}/status", c.Status).Methods(http.MethodGet)
	router.HandleFunc("/{session_id}", c.Delete).Methods(http.MethodDelete)
}

func (c *ImportController) Upload(w http.ResponseWriter, r *http.Request) {
	maxSize := configuration.Use().MaxUploadSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+1)
	if err := r.ParseMultipartForm(maxSize); err != nil {
		_ = httpapi.WriteError(w, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds the maximum allowed size", nil)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "FILE_MISSING", "multipart field \"file\" is required", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	sess, err := c.imports.Upload(r.Context(), header.Filename, data)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	// template listing is best effort; an empty list must not fail the upload
	available, err := c.templates.GetAll(r.Context())
	if err != nil {
		composables.UseLogger(r.Context()).WithError(err).Warn("failed to list import templates")
	}

	composables.UseLogger(r.Context()).WithFields(logrus.Fields{
		"sessionId": sess.ID(),
		"fileName":  sess.FileName(),
		"rows":      len(sess.RawRows()),
	}).Info("import session opened")

	_ = httpapi.WriteJSON(w, http.StatusCreated, UploadResponse{
		SessionID:          sess.ID().String(),
		FileName:           sess.FileName(),
		TotalRows:          len(sess.RawRows()),
		DetectedColumns:    sess.Columns(),
		RemovedColumns:     emptyIfNil(sess.RemovedColumns()),
		SuggestedMappings:  sess.Suggestions(),
		SampleRows:         sampleRows(sess.RawRows()),
		AvailableFields:    availableFields(),
		AvailableTemplates: toTemplateResponses(available),
	})
}

func (c *ImportController) SubmitMapping(w http.ResponseWriter, r *http.Request) {
	id, ok := c.sessionID(w, r)
	if !ok {
		return
	}

	var req MappingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}

	bundle := req.ToBundle()
	sess, err := c.imports.SubmitMapping(r.Context(), id, bundle)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if req.SaveAsTemplate {
		if _, err := c.templates.Create(r.Context(), req.TemplateName, "", bundle, false); err != nil {
			// the mapping is already accepted; surface the template problem
			// without failing the phase
			composables.UseLogger(r.Context()).WithError(err).Warn("failed to save mapping template")
		}
	}

	_ = httpapi.WriteJSON(w, http.StatusOK, MappingResponse{
		SessionID:    sess.ID().String(),
		Phase:        string(sess.Phase()),
		MappedFields: bundle.Mappings,
	})
}

func (c *ImportController) Preview(w http.ResponseWriter, r *http.Request) {
	id, ok := c.sessionID(w, r)
	if !ok {
		return
	}
	sess, err := c.imports.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	result := sess.Normalization()
	if result == nil {
		_ = httpapi.WriteError(w, http.StatusConflict, "IMPORT_INVALID_PHASE", "session has no normalization preview yet", map[string]string{
			"phase": string(sess.Phase()),
		})
		return
	}
	errs := result.Errors
	if errs == nil {
		errs = []normalize.RowError{}
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, PreviewResponse{
		TotalRows:        result.TotalRows,
		ValidRows:        result.ValidRows,
		InvalidCount:     result.InvalidCount,
		ValidationErrors: errs,
		SampleNormalized: result.Sample(),
	})
}

func (c *ImportController) Duplicates(w http.ResponseWriter, r *http.Request) {
	id, ok := c.sessionID(w, r)
	if !ok {
		return
	}
	sess, err := c.imports.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	analysis := sess.Analysis()
	if analysis == nil {
		_ = httpapi.WriteError(w, http.StatusConflict, "IMPORT_INVALID_PHASE", "session has no duplicate analysis yet", map[string]string{
			"phase": string(sess.Phase()),
		})
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toDuplicatesResponse(*analysis))
}

func (c *ImportController) Execute(w http.ResponseWriter, r *http.Request) {
	id, ok := c.sessionID(w, r)
	if !ok {
		return
	}

	var req ExecuteRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
			return
		}
	}

	sess, err := c.imports.Execute(r.Context(), id, req.ToDecisions())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toExecuteResponse(sess))
}

func (c *ImportController) Status(w http.ResponseWriter, r *http.Request) {
	id, ok := c.sessionID(w, r)
	if !ok {
		return
	}
	sess, err := c.imports.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toStatusResponse(sess))
}

func (c *ImportController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := c.sessionID(w, r)
	if !ok {
		return
	}
	if err := c.imports.Delete(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *ImportController) sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["session_id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid session id", nil)
		return uuid.Nil, false
	}
	return id, true
}

func sampleRows(rows []normalize.RawRow) []normalize.RawRow {
	const limit = 5
	if len(rows) <= limit {
		return rows
	}
	return rows[:limit]
}

func emptyIfNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/vantagecrm/vantage/modules/leadimport/services"
	"github.com/vantagecrm/vantage/pkg/application"
	"github.com/vantagecrm/vantage/pkg/httpapi"
)

// TemplateController exposes saved mapping templates under
// /lead-import/templates.
type TemplateController struct {
	app       application.Application
	templates *services.TemplateService
	basePath  string
}

func NewTemplateController(app application.Application) application.Controller {
	return &TemplateController{
		app:       app,
		templates: app.Service(services.TemplateService{}).(*services.TemplateService),
		basePath:  "/lead-import/templates",
	}
}

func (c *TemplateController) Key() string {
	return c.basePath
}

func (c *TemplateController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(c.app.Middleware()...)

	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("", c.Create).Methods(http.MethodPost)
	router.HandleFunc("/{id}", c.Get).Methods(http.MethodGet)
	router.HandleFunc("/{id}", c.Update).Methods(http.MethodPut)
	router.HandleFunc("/{id}", c.Delete).Methods(http.MethodDelete)
}

func (c *TemplateController) List(w http.ResponseWriter, r *http.Request) {
	templates, err := c.templates.GetAll(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toTemplateResponses(templates))
}

func (c *TemplateController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := c.templateID(w, r)
	if !ok {
		return
	}
	t, err := c.templates.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toTemplateResponse(t))
}

func (c *TemplateController) Create(w http.ResponseWriter, r *http.Request) {
	var req TemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	t, err := c.templates.Create(r.Context(), req.Name, req.Description, req.ToBundle(), req.IsDefault)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, toTemplateResponse(t))
}

func (c *TemplateController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := c.templateID(w, r)
	if !ok {
		return
	}
	var req TemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	t, err := c.templates.Update(r.Context(), id, req.Name, req.Description, req.ToBundle(), req.IsDefault)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toTemplateResponse(t))
}

func (c *TemplateController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := c.templateID(w, r)
	if !ok {
		return
	}
	if err := c.templates.Delete(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *TemplateController) templateID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid template id", nil)
		return uuid.Nil, false
	}
	return id, true
}

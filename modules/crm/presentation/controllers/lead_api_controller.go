package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/vantagecrm/vantage/modules/crm/domain/aggregates/lead"
	"github.com/vantagecrm/vantage/modules/crm/services"
	"github.com/vantagecrm/vantage/pkg/application"
	"github.com/vantagecrm/vantage/pkg/composables"
	"github.com/vantagecrm/vantage/pkg/httpapi"
)

// LeadAPIController exposes lead CRUD under /leads.
type LeadAPIController struct {
	app      application.Application
	leads    *services.LeadService
	basePath string
}

func NewLeadAPIController(app application.Application) application.Controller {
	return &LeadAPIController{
		app:      app,
		leads:    app.Service(services.LeadService{}).(*services.LeadService),
		basePath: "/leads",
	}
}

func (c *LeadAPIController) Key() string {
	return c.basePath
}

func (c *LeadAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(c.app.Middleware()...)

	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("", c.Create).Methods(http.MethodPost)
	router.HandleFunc("/{id}", c.Get).Methods(http.MethodGet)
	router.HandleFunc("/{id}", c.Delete).Methods(http.MethodDelete)
}

func (c *LeadAPIController) List(w http.ResponseWriter, r *http.Request) {
	params := &lead.FindParams{
		Q:      r.URL.Query().Get("q"),
		Status: lead.Status(r.URL.Query().Get("status")),
		Source: lead.Source(r.URL.Query().Get("source")),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		params.Limit, _ = strconv.Atoi(v)
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		params.Offset, _ = strconv.Atoi(v)
	}

	leads, total, err := c.leads.GetPaginated(r.Context(), params)
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	items := make([]LeadResponse, 0, len(leads))
	for _, l := range leads {
		items = append(items, toLeadResponse(l))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, ListLeadsResponse{Items: items, Total: total})
}

func (c *LeadAPIController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid lead id", nil)
		return
	}
	l, err := c.leads.GetByID(r.Context(), id)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toLeadResponse(l))
}

func (c *LeadAPIController) Create(w http.ResponseWriter, r *http.Request) {
	var dto lead.CreateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	dto.Normalize()
	if errs, ok := dto.Ok(); !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "lead validation failed", errs)
		return
	}
	l, err := c.leads.Create(r.Context(), &dto)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, toLeadResponse(l))
}

func (c *LeadAPIController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid lead id", nil)
		return
	}
	if err := c.leads.Delete(r.Context(), id); err != nil {
		c.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *LeadAPIController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, lead.ErrNotFound):
		_ = httpapi.WriteError(w, http.StatusNotFound, "LEAD_NOT_FOUND", "lead not found", nil)
	default:
		composables.UseLogger(r.Context()).WithError(err).Error("unhandled lead API error")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
	}
}

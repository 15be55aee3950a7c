package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"aurabook/internal/catalog/service"
	apperrors "aurabook/pkg/errors"
	httputil "aurabook/pkg/http"
	"aurabook/pkg/logger"
	"aurabook/pkg/model"
)

type CatalogHandler struct {
	service service.CatalogService
	log     *logger.Logger
}

func NewCatalogHandler(service service.CatalogService, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		log:     log,
	}
}

func (h *CatalogHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/staff", h.CreateStaff)
	router.GET("/api/v1/staff/:id", h.GetStaff)
	router.GET("/api/v1/tenants/:tenant_id/staff", h.ListStaff)
	router.PUT("/api/v1/staff/:id", h.UpdateStaff)
	router.DELETE("/api/v1/staff/:id", h.DeactivateStaff)

	router.POST("/api/v1/services", h.CreateService)
	router.GET("/api/v1/services/:id", h.GetService)
	router.GET("/api/v1/tenants/:tenant_id/services", h.ListServices)
	router.PUT("/api/v1/services/:id", h.UpdateService)
	router.DELETE("/api/v1/services/:id", h.DeleteService)
}

func (h *CatalogHandler) CreateStaff(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var staff model.Staff
	if err := json.NewDecoder(r.Body).Decode(&staff); err != nil {
		h.writeError(w, "CreateStaff", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.CreateStaff(r.Context(), &staff); err != nil {
		h.writeError(w, "CreateStaff", err)
		return
	}

	if err := httputil.WriteCreated(w, staff); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateStaff", "error", err)
	}
}

func (h *CatalogHandler) GetStaff(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	staff, err := h.service.GetStaff(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetStaff", err)
		return
	}

	if err := httputil.WriteSuccess(w, staff); err != nil {
		h.log.Error("failed to write success response", "handler", "GetStaff", "error", err)
	}
}

func (h *CatalogHandler) ListStaff(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	activeOnly := r.URL.Query().Get("active") == "true"

	staff, err := h.service.ListStaff(r.Context(), ps.ByName("tenant_id"), activeOnly)
	if err != nil {
		h.writeError(w, "ListStaff", err)
		return
	}

	if err := httputil.WriteSuccess(w, staff); err != nil {
		h.log.Error("failed to write success response", "handler", "ListStaff", "error", err)
	}
}

func (h *CatalogHandler) UpdateStaff(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.StaffUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		h.writeError(w, "UpdateStaff", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.UpdateStaff(r.Context(), ps.ByName("id"), &updates); err != nil {
		h.writeError(w, "UpdateStaff", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *CatalogHandler) DeactivateStaff(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.DeactivateStaff(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "DeactivateStaff", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *CatalogHandler) CreateService(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var svc model.Service
	if err := json.NewDecoder(r.Body).Decode(&svc); err != nil {
		h.writeError(w, "CreateService", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.CreateService(r.Context(), &svc); err != nil {
		h.writeError(w, "CreateService", err)
		return
	}

	if err := httputil.WriteCreated(w, svc); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateService", "error", err)
	}
}

func (h *CatalogHandler) GetService(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	svc, err := h.service.GetService(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetService", err)
		return
	}

	if err := httputil.WriteSuccess(w, svc); err != nil {
		h.log.Error("failed to write success response", "handler", "GetService", "error", err)
	}
}

func (h *CatalogHandler) ListServices(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	services, err := h.service.ListServices(r.Context(), ps.ByName("tenant_id"))
	if err != nil {
		h.writeError(w, "ListServices", err)
		return
	}

	if err := httputil.WriteSuccess(w, services); err != nil {
		h.log.Error("failed to write success response", "handler", "ListServices", "error", err)
	}
}

func (h *CatalogHandler) UpdateService(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.ServiceUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		h.writeError(w, "UpdateService", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.UpdateService(r.Context(), ps.ByName("id"), &updates); err != nil {
		h.writeError(w, "UpdateService", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *CatalogHandler) DeleteService(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.DeleteService(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "DeleteService", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *CatalogHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "error", writeErr)
	}
}

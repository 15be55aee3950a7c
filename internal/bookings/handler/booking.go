package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"

	"aurabook/internal/bookings/service"
	apperrors "aurabook/pkg/errors"
	httputil "aurabook/pkg/http"
	"aurabook/pkg/logger"
	"aurabook/pkg/model"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/tenants/:tenant_id/availability", h.ListAvailableSlots)
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings/:id", h.GetByID)
	router.GET("/api/v1/tenants/:tenant_id/bookings", h.ListByTenant)
	router.POST("/api/v1/bookings/:id/cancel", h.Cancel)
	router.POST("/api/v1/bookings/:id/complete", h.Complete)
	router.GET("/api/v1/tenants/:tenant_id/customers/count", h.CustomerCount)
}

// ListAvailableSlots expects service_id and day (RFC 3339 or YYYY-MM-DD)
// query parameters; staff_id is optional.
func (h *BookingHandler) ListAvailableSlots(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	query := r.URL.Query()

	serviceID := query.Get("service_id")
	if serviceID == "" {
		h.writeError(w, "ListAvailableSlots", apperrors.InvalidInput("service_id query parameter is required"))
		return
	}

	day, err := parseDay(query.Get("day"))
	if err != nil {
		h.writeError(w, "ListAvailableSlots", apperrors.InvalidInput("day must be RFC 3339 or YYYY-MM-DD"))
		return
	}

	slots, err := h.service.ListAvailableSlots(r.Context(), ps.ByName("tenant_id"), serviceID, query.Get("staff_id"), day)
	if err != nil {
		h.writeError(w, "ListAvailableSlots", err)
		return
	}

	if err := httputil.WriteSuccess(w, slots); err != nil {
		h.log.Error("failed to write success response", "handler", "ListAvailableSlots", "error", err)
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	booking, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *BookingHandler) ListByTenant(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "ListByTenant", err)
		return
	}

	bookings, total, err := h.service.ListByTenant(r.Context(), ps.ByName("tenant_id"), limit, offset)
	if err != nil {
		h.writeError(w, "ListByTenant", err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListByTenant", "error", err)
	}
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Cancel(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *BookingHandler) Complete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Complete(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "Complete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *BookingHandler) CustomerCount(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	count, err := h.service.DistinctCustomerCount(r.Context(), ps.ByName("tenant_id"))
	if err != nil {
		h.writeError(w, "CustomerCount", err)
		return
	}

	if err := httputil.WriteSuccess(w, map[string]int64{"customer_count": count}); err != nil {
		h.log.Error("failed to write success response", "handler", "CustomerCount", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "error", writeErr)
	}
}

func parseDay(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, strconv.ErrSyntax
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"aurabook/internal/giftcards/service"
	apperrors "aurabook/pkg/errors"
	httputil "aurabook/pkg/http"
	"aurabook/pkg/logger"
	"aurabook/pkg/model"
)

type GiftCardHandler struct {
	service service.GiftCardService
	log     *logger.Logger
}

func NewGiftCardHandler(service service.GiftCardService, log *logger.Logger) *GiftCardHandler {
	return &GiftCardHandler{
		service: service,
		log:     log,
	}
}

func (h *GiftCardHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/giftcards", h.Issue)
	router.GET("/api/v1/tenants/:tenant_id/giftcards", h.ListByTenant)
	router.GET("/api/v1/tenants/:tenant_id/giftcards/:code", h.GetByCode)
	router.POST("/api/v1/tenants/:tenant_id/giftcards/:code/redeem", h.Redeem)
	router.POST("/api/v1/giftcards/:id/cancel", h.Cancel)
	router.GET("/api/v1/giftcards/:id/ledger", h.Ledger)
	router.GET("/api/v1/giftcards/:id/ledger/verify", h.VerifyLedger)
}

func (h *GiftCardHandler) Issue(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.IssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Issue", apperrors.InvalidInput("Invalid request body"))
		return
	}

	cards, err := h.service.Issue(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Issue", err)
		return
	}

	if err := httputil.WriteCreated(w, cards); err != nil {
		h.log.Error("failed to write created response", "handler", "Issue", "error", err)
	}
}

func (h *GiftCardHandler) ListByTenant(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "ListByTenant", err)
		return
	}

	cards, total, err := h.service.ListByTenant(r.Context(), ps.ByName("tenant_id"), limit, offset)
	if err != nil {
		h.writeError(w, "ListByTenant", err)
		return
	}

	if err := httputil.WritePaginated(w, cards, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListByTenant", "error", err)
	}
}

func (h *GiftCardHandler) GetByCode(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	card, err := h.service.GetByCode(r.Context(), ps.ByName("tenant_id"), ps.ByName("code"))
	if err != nil {
		h.writeError(w, "GetByCode", err)
		return
	}

	if err := httputil.WriteSuccess(w, card); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByCode", "error", err)
	}
}

type redeemRequest struct {
	Amount model.Money `json:"amount"`
}

func (h *GiftCardHandler) Redeem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Redeem", apperrors.InvalidInput("Invalid request body"))
		return
	}

	result, err := h.service.Redeem(r.Context(), ps.ByName("tenant_id"), ps.ByName("code"), req.Amount)
	if err != nil {
		h.writeError(w, "Redeem", err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "Redeem", "error", err)
	}
}

func (h *GiftCardHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Cancel(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *GiftCardHandler) Ledger(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	txs, err := h.service.Ledger(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Ledger", err)
		return
	}

	if err := httputil.WriteSuccess(w, txs); err != nil {
		h.log.Error("failed to write success response", "handler", "Ledger", "error", err)
	}
}

func (h *GiftCardHandler) VerifyLedger(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ok, err := h.service.VerifyLedger(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "VerifyLedger", err)
		return
	}

	if err := httputil.WriteSuccess(w, map[string]bool{"consistent": ok}); err != nil {
		h.log.Error("failed to write success response", "handler", "VerifyLedger", "error", err)
	}
}

func (h *GiftCardHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "error", writeErr)
	}
}

package service

import (
	"context"
	"errors"
	"time"

	"aurabook/internal/entitlements"
	giftcarderrors "aurabook/internal/giftcards/errors"
	"aurabook/internal/giftcards/repository"
	"aurabook/internal/giftcards/validator"
	"aurabook/pkg/clock"
	"aurabook/pkg/codegen"
	"aurabook/pkg/config"
	apperrors "aurabook/pkg/errors"
	"aurabook/pkg/events"
	"aurabook/pkg/model"
	"aurabook/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

type GiftCardService interface {
	// Issue creates req.Quantity cards of equal value and writes the opening
	// PURCHASE ledger entry for each.
	Issue(ctx context.Context, req *model.IssueRequest) ([]*model.GiftCard, error)

	GetByCode(ctx context.Context, tenantID, code string) (*model.GiftCard, error)
	ListByTenant(ctx context.Context, tenantID string, limit int, offset int64) ([]*model.GiftCard, int64, error)

	Redeem(ctx context.Context, tenantID, code string, amount model.Money) (*model.RedeemResult, error)
	Cancel(ctx context.Context, id string) error

	Ledger(ctx context.Context, giftCardID string) ([]*model.GiftCardTransaction, error)

	// VerifyLedger replays a card's ledger and reports whether the running
	// sum matches the stored balance.
	VerifyLedger(ctx context.Context, giftCardID string) (bool, error)
}

type giftCardService struct {
	cards     repository.GiftCardRepository
	ledger    repository.TransactionRepository
	gate      *entitlements.Gate
	validator *validator.GiftCardValidator
	codegen   codegen.Generator
	publisher events.Publisher
	clock     clock.Clock
	cfg       *config.Config
}

func NewGiftCardService(
	cards repository.GiftCardRepository,
	ledger repository.TransactionRepository,
	gate *entitlements.Gate,
	validator *validator.GiftCardValidator,
	gen codegen.Generator,
	publisher events.Publisher,
	clk clock.Clock,
	cfg *config.Config,
) GiftCardService {
	return &giftCardService{
		cards:     cards,
		ledger:    ledger,
		gate:      gate,
		validator: validator,
		codegen:   gen,
		publisher: publisher,
		clock:     clk,
		cfg:       cfg,
	}
}

func (s *giftCardService) Issue(ctx context.Context, req *model.IssueRequest) ([]*model.GiftCard, error) {
	if err := s.gate.RequireModule(ctx, req.TenantID, entitlements.ModuleGiftCards); err != nil {
		return nil, err
	}

	req.PurchasedBy = sanitizer.NormalizeName(req.PurchasedBy)
	if req.Value.Currency == "" {
		req.Value.Currency = s.cfg.DefaultCurrency
	}
	if err := s.validator.ValidateIssueRequest(req); err != nil {
		s.cfg.Log.Warn("Issue request validation failed", "tenant_id", req.TenantID, "error", err)
		return nil, apperrors.Validation("Issue request validation failed", map[string]any{"error": err.Error()})
	}

	var expiresAt *time.Time
	if req.ExpiryMonths > 0 {
		t := s.clock.Now().UTC().AddDate(0, req.ExpiryMonths, 0)
		expiresAt = &t
	}

	cards := make([]*model.GiftCard, 0, req.Quantity)
	for i := 0; i < req.Quantity; i++ {
		card, err := s.issueOne(ctx, req, expiresAt)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}

	s.cfg.Log.Info("Gift cards issued", "tenant_id", req.TenantID, "quantity", len(cards), "value", req.Value)
	return cards, nil
}

// issueOne creates a single card and its opening ledger entry in one
// transaction, regenerating the code on a collision with the unique index.
func (s *giftCardService) issueOne(ctx context.Context, req *model.IssueRequest, expiresAt *time.Time) (*model.GiftCard, error) {
	for attempt := 0; attempt < s.cfg.GiftCardCodeRetries; attempt++ {
		code, err := s.codegen.NewCode()
		if err != nil {
			return nil, apperrors.Storage("Failed to generate gift card code", err)
		}

		card := &model.GiftCard{
			TenantID:     req.TenantID,
			Code:         code,
			InitialValue: req.Value,
			Balance:      req.Value,
			PurchasedBy:  req.PurchasedBy,
			ExpiresAt:    expiresAt,
			Status:       model.GiftCardActive,
		}

		err = s.cards.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
			if err := s.cards.Create(sessCtx, card); err != nil {
				return err
			}
			return s.ledger.Append(sessCtx, &model.GiftCardTransaction{
				GiftCardID: card.ID,
				Amount:     card.InitialValue,
				Type:       model.TxPurchase,
			})
		})
		if err != nil {
			if errors.Is(err, giftcarderrors.ErrDuplicateCode) {
				s.cfg.Log.Debug("Gift card code collision, regenerating", "attempt", attempt+1)
				continue
			}
			if apperrors.IsAppError(err) {
				return nil, err
			}
			return nil, apperrors.Storage("Failed to create gift card", err)
		}

		s.publishCard(ctx, events.GiftCardIssued, card)
		return card, nil
	}
	return nil, apperrors.Storage("Exhausted gift card code retries", giftcarderrors.ErrDuplicateCode)
}

func (s *giftCardService) GetByCode(ctx context.Context, tenantID, code string) (*model.GiftCard, error) {
	if tenantID == "" {
		return nil, apperrors.InvalidInput("Tenant ID cannot be empty")
	}
	card, err := s.cards.FindByCode(ctx, tenantID, codegen.Normalize(code))
	if err != nil {
		return nil, mapGiftCardError(err, code)
	}
	return card, nil
}

func (s *giftCardService) ListByTenant(ctx context.Context, tenantID string, limit int, offset int64) ([]*model.GiftCard, int64, error) {
	if tenantID == "" {
		return nil, 0, apperrors.InvalidInput("Tenant ID cannot be empty")
	}
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	cards, total, err := s.cards.FindByTenant(ctx, tenantID, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Storage("Failed to list gift cards", err)
	}
	return cards, total, nil
}

// Redeem subtracts amount from the card's balance. The guard (status ACTIVE,
// balance sufficient) and the decrement are one conditional write, with the
// REDEMPTION ledger entry appended in the same transaction.
func (s *giftCardService) Redeem(ctx context.Context, tenantID, code string, amount model.Money) (*model.RedeemResult, error) {
	if err := s.gate.RequireModule(ctx, tenantID, entitlements.ModuleGiftCards); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateRedemption(amount); err != nil {
		return nil, apperrors.Validation("Redemption validation failed", map[string]any{"error": err.Error()})
	}

	card, err := s.GetByCode(ctx, tenantID, code)
	if err != nil {
		return nil, err
	}

	if card.Status == model.GiftCardActive && s.expired(card) {
		// Expiry is applied lazily at touch time; there is no sweeper.
		if err := s.cards.UpdateStatus(ctx, card.ID, model.GiftCardActive, model.GiftCardExpired); err != nil &&
			!errors.Is(err, giftcarderrors.ErrConditionFailed) {
			return nil, apperrors.Storage("Failed to expire gift card", err)
		}
		card.Status = model.GiftCardExpired
	}
	if card.Status != model.GiftCardActive {
		return nil, apperrors.InvalidState("Gift card is " + string(card.Status))
	}

	if amount.Currency == "" {
		amount.Currency = card.Balance.Currency
	}
	insufficient, err := card.Balance.LessThan(amount)
	if err != nil {
		return nil, apperrors.InvalidInput("Redemption currency does not match the card")
	}
	if insufficient {
		return nil, apperrors.InsufficientBalance(card.Balance.Amount, card.Balance.Currency)
	}

	var updated *model.GiftCard
	err = s.cards.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		var decErr error
		updated, decErr = s.cards.DecrementBalance(sessCtx, card.ID, amount.Amount)
		if decErr != nil {
			if errors.Is(decErr, giftcarderrors.ErrConditionFailed) {
				// A concurrent redemption or cancellation won; re-read so
				// the caller gets the precise rejection.
				return s.concurrentRedeemError(sessCtx, card.ID, amount)
			}
			return apperrors.Storage("Failed to decrement balance", decErr)
		}
		return s.ledger.Append(sessCtx, &model.GiftCardTransaction{
			GiftCardID: card.ID,
			Amount:     amount.Neg(),
			Type:       model.TxRedemption,
		})
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.Storage("Failed to redeem gift card", err)
	}

	s.cfg.Log.Info("Gift card redeemed",
		"id", updated.ID, "tenant_id", tenantID, "amount", amount, "new_balance", updated.Balance)

	s.publishCard(ctx, events.GiftCardRedeemed, updated)
	return &model.RedeemResult{NewBalance: updated.Balance, NewStatus: updated.Status}, nil
}

func (s *giftCardService) Cancel(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Gift card ID cannot be empty")
	}

	card, err := s.cards.FindByID(ctx, id)
	if err != nil {
		return mapGiftCardError(err, id)
	}
	if card.Status != model.GiftCardActive {
		return apperrors.InvalidState("Only an ACTIVE gift card can be cancelled")
	}

	if err := s.cards.UpdateStatus(ctx, id, model.GiftCardActive, model.GiftCardCancelled); err != nil {
		if errors.Is(err, giftcarderrors.ErrConditionFailed) {
			return apperrors.InvalidState("Gift card status changed concurrently")
		}
		return apperrors.Storage("Failed to cancel gift card", err)
	}

	s.cfg.Log.Info("Gift card cancelled", "id", id, "tenant_id", card.TenantID)

	card.Status = model.GiftCardCancelled
	s.publishCard(ctx, events.GiftCardCancelled, card)
	return nil
}

func (s *giftCardService) Ledger(ctx context.Context, giftCardID string) ([]*model.GiftCardTransaction, error) {
	if giftCardID == "" {
		return nil, apperrors.InvalidInput("Gift card ID cannot be empty")
	}
	txs, err := s.ledger.FindByCard(ctx, giftCardID)
	if err != nil {
		return nil, apperrors.Storage("Failed to load ledger", err)
	}
	return txs, nil
}

func (s *giftCardService) VerifyLedger(ctx context.Context, giftCardID string) (bool, error) {
	card, err := s.cards.FindByID(ctx, giftCardID)
	if err != nil {
		return false, mapGiftCardError(err, giftCardID)
	}
	txs, err := s.Ledger(ctx, giftCardID)
	if err != nil {
		return false, err
	}

	sum := model.NewMoney(0, card.Balance.Currency)
	for _, tx := range txs {
		sum, err = sum.Add(tx.Amount)
		if err != nil {
			return false, apperrors.Storage("Ledger contains mixed currencies", err)
		}
	}

	ok := sum.Amount == card.Balance.Amount
	if !ok {
		s.cfg.Log.Error("Ledger does not reconcile",
			"gift_card_id", giftCardID, "ledger_sum", sum.Amount, "balance", card.Balance.Amount)
	}
	return ok, nil
}

// concurrentRedeemError distinguishes the two ways the conditional decrement
// can lose: the card left ACTIVE, or the balance dropped below the amount.
func (s *giftCardService) concurrentRedeemError(ctx context.Context, id string, amount model.Money) error {
	card, err := s.cards.FindByID(ctx, id)
	if err != nil {
		return mapGiftCardError(err, id)
	}
	if card.Status != model.GiftCardActive {
		return apperrors.InvalidState("Gift card is " + string(card.Status))
	}
	if card.Balance.Amount < amount.Amount {
		return apperrors.InsufficientBalance(card.Balance.Amount, card.Balance.Currency)
	}
	return apperrors.InvalidState("Gift card was modified concurrently, retry")
}

func (s *giftCardService) expired(card *model.GiftCard) bool {
	return card.ExpiresAt != nil && s.clock.Now().After(*card.ExpiresAt)
}

func (s *giftCardService) publishCard(ctx context.Context, eventType string, card *model.GiftCard) {
	event := events.New(eventType, card.TenantID, map[string]any{
		"gift_card_id": card.ID,
		"code":         card.Code,
		"status":       card.Status,
		"balance":      card.Balance.Amount,
		"currency":     card.Balance.Currency,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.cfg.Log.Warn("Failed to publish event", "type", eventType, "gift_card_id", card.ID, "error", err)
	}
}

func mapGiftCardError(err error, ref string) error {
	if errors.Is(err, giftcarderrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Gift card", ref)
	}
	if errors.Is(err, giftcarderrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid gift card ID format")
	}
	if apperrors.IsAppError(err) {
		return err
	}
	return apperrors.Storage("Failed to access gift card", err)
}

package model

import "time"

type GiftCardStatus string

const (
	GiftCardActive    GiftCardStatus = "ACTIVE"
	GiftCardRedeemed  GiftCardStatus = "REDEEMED"
	GiftCardExpired   GiftCardStatus = "EXPIRED"
	GiftCardCancelled GiftCardStatus = "CANCELLED"
)

// Terminal reports whether the status can never be left again. ACTIVE and
// REDEEMED are not strictly terminal (a REDEEMED card stays REDEEMED, but the
// transition into it is driven by balance, not by an operator).
func (s GiftCardStatus) Terminal() bool {
	return s == GiftCardCancelled || s == GiftCardExpired
}

type GiftCard struct {
	ID           string         `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	TenantID     string         `json:"tenant_id" bson:"tenant_id" validate:"required"`
	Code         string         `json:"code" bson:"code" validate:"required"`
	InitialValue Money          `json:"initial_value" bson:"initial_value"`
	Balance      Money          `json:"current_balance" bson:"current_balance"`
	PurchasedBy  string         `json:"purchased_by,omitempty" bson:"purchased_by,omitempty"`
	ExpiresAt    *time.Time     `json:"expires_at,omitempty" bson:"expires_at,omitempty"`
	Status       GiftCardStatus `json:"status" bson:"status" validate:"required,oneof=ACTIVE REDEEMED EXPIRED CANCELLED"`
	CreatedAt    time.Time      `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type GiftCardTransactionType string

const (
	TxPurchase   GiftCardTransactionType = "PURCHASE"
	TxRedemption GiftCardTransactionType = "REDEMPTION"
)

// GiftCardTransaction is one entry of the append-only ledger. Redemptions
// carry a negative amount, purchases a positive one; a card's balance always
// equals the running sum of its transactions.
type GiftCardTransaction struct {
	ID         string                  `json:"id" bson:"_id"`
	GiftCardID string                  `json:"gift_card_id" bson:"gift_card_id" validate:"required"`
	Amount     Money                   `json:"amount" bson:"amount"`
	Type       GiftCardTransactionType `json:"type" bson:"type" validate:"required,oneof=PURCHASE REDEMPTION"`
	Note       string                  `json:"note,omitempty" bson:"note,omitempty"`
	CreatedAt  time.Time               `json:"created_at" bson:"created_at"`
}

// IssueRequest describes a batch of cards to create.
type IssueRequest struct {
	TenantID     string `json:"tenant_id" validate:"required"`
	Value        Money  `json:"value"`
	Quantity     int    `json:"quantity" validate:"required,min=1,max=100"`
	ExpiryMonths int    `json:"expiry_months" validate:"omitempty,min=0,max=120"`
	PurchasedBy  string `json:"purchased_by" validate:"omitempty,max=100"`
}

// RedeemResult is returned to callers after a successful redemption.
type RedeemResult struct {
	NewBalance Money          `json:"new_balance"`
	NewStatus  GiftCardStatus `json:"new_status"`
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// DiscountCode is a store-credit balance issued by the settlement engine
// and consumed by later orders. Amount is the remaining balance; the row is
// deleted outright when a redemption exhausts it exactly, and IsUsed is not
// touched by partial redemptions.
type DiscountCode struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	Code          string     `json:"code" db:"code"`
	CustomerEmail string     `json:"customerEmail" db:"customer_email"`
	Amount        Cents      `json:"amount" db:"amount"`
	IsUsed        bool       `json:"isUsed" db:"is_used"`
	UsedAt        *time.Time `json:"usedAt,omitempty" db:"used_at"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty" db:"expires_at"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
}

// IssueCreditRequest represents the request payload for issuing store
// credit directly, outside of a return settlement.
type IssueCreditRequest struct {
	CustomerEmail string     `json:"customerEmail" validate:"required,email"`
	Amount        Cents      `json:"amount" validate:"gt=0"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
}

// RedeemCreditRequest represents the request payload for consuming credit.
type RedeemCreditRequest struct {
	AmountUsed Cents `json:"amountUsed"`
}

// RedeemCreditResponse reports the outcome of a redemption. RemainingCredit
// is nil when the code was exhausted and deleted.
type RedeemCreditResponse struct {
	Success         bool          `json:"success"`
	RemainingCredit *DiscountCode `json:"remainingCredit"`
	FullyUsed       bool          `json:"fullyUsed"`
}

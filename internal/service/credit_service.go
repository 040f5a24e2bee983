package service

import (
	"context"
	"fmt"
	"time"

	"stockroom/internal/model"
	"stockroom/internal/refcode"
	"stockroom/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// creditService implements CreditService.
type creditService struct {
	creditRepo repository.DiscountCodeRepository
	logger     zerolog.Logger
}

// NewCreditService creates a new store credit service.
func NewCreditService(creditRepo repository.DiscountCodeRepository, logger zerolog.Logger) CreditService {
	return &creditService{
		creditRepo: creditRepo,
		logger:     logger.With().Str("service", "credit").Logger(),
	}
}

// Issue creates a new store credit code for a customer.
func (s *creditService) Issue(ctx context.Context, customerEmail string, amount model.Cents, expiresAt *time.Time) (*model.DiscountCode, error) {
	if amount <= 0 {
		return nil, model.NewValidationError("credit amount must be greater than zero")
	}
	if customerEmail == "" {
		return nil, model.NewValidationError("customer email is required")
	}

	code := &model.DiscountCode{
		ID:            uuid.New(),
		Code:          refcode.CreditCode(),
		CustomerEmail: customerEmail,
		Amount:        amount,
		IsUsed:        false,
		ExpiresAt:     expiresAt,
		CreatedAt:     time.Now(),
	}

	if err := s.creditRepo.Create(ctx, code); err != nil {
		s.logger.Error().Err(err).Str("customer_email", customerEmail).Msg("failed to create discount code")
		return nil, fmt.Errorf("failed to issue store credit: %w", err)
	}

	s.logger.Info().
		Str("code", code.Code).
		Str("customer_email", customerEmail).
		Str("amount", amount.String()).
		Msg("store credit issued")

	return code, nil
}

// Redeem consumes part or all of a code's balance. The code row is read
// under a lock so concurrent redemptions serialize; a redemption that lands
// the balance on exactly zero deletes the row.
func (s *creditService) Redeem(ctx context.Context, code string, amountUsed model.Cents) (*model.RedeemCreditResponse, error) {
	if amountUsed <= 0 {
		s.logger.Warn().Str("code", code).Str("amount_used", amountUsed.String()).Msg("invalid redemption amount")
		return nil, model.ErrInvalidAmountUsed
	}

	tx, err := s.creditRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to redeem store credit: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	dc, err := s.creditRepo.GetByCodeForUpdate(ctx, tx, code)
	if err != nil {
		s.logger.Error().Err(err).Str("code", code).Msg("failed to get discount code")
		return nil, fmt.Errorf("failed to redeem store credit: %w", err)
	}
	if dc == nil {
		s.logger.Debug().Str("code", code).Msg("discount code not found")
		err = model.ErrDiscountCodeNotFound
		return nil, err
	}

	if dc.ExpiresAt != nil && dc.ExpiresAt.Before(time.Now()) {
		s.logger.Warn().Str("code", code).Time("expires_at", *dc.ExpiresAt).Msg("discount code expired")
		err = model.ErrCreditExpired
		return nil, err
	}

	if amountUsed > dc.Amount {
		s.logger.Warn().
			Str("code", code).
			Str("amount_used", amountUsed.String()).
			Str("balance", dc.Amount.String()).
			Msg("redemption exceeds available credit")
		err = model.ErrCreditExceeded
		return nil, err
	}

	remaining := dc.Amount - amountUsed
	if remaining == 0 {
		if err = s.creditRepo.DeleteTx(ctx, tx, dc.ID); err != nil {
			s.logger.Error().Err(err).Str("code", code).Msg("failed to delete exhausted discount code")
			return nil, fmt.Errorf("failed to redeem store credit: %w", err)
		}
		if err = tx.Commit(ctx); err != nil {
			s.logger.Error().Err(err).Str("code", code).Msg("failed to commit transaction")
			return nil, fmt.Errorf("failed to redeem store credit: %w", err)
		}

		s.logger.Info().
			Str("code", code).
			Str("amount_used", amountUsed.String()).
			Msg("store credit fully redeemed")

		return &model.RedeemCreditResponse{
			Success:   true,
			FullyUsed: true,
		}, nil
	}

	if err = s.creditRepo.UpdateAmount(ctx, tx, dc.ID, remaining); err != nil {
		s.logger.Error().Err(err).Str("code", code).Msg("failed to update discount code balance")
		return nil, fmt.Errorf("failed to redeem store credit: %w", err)
	}
	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("code", code).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to redeem store credit: %w", err)
	}

	updated := *dc
	updated.Amount = remaining

	s.logger.Info().
		Str("code", code).
		Str("amount_used", amountUsed.String()).
		Str("remaining", remaining.String()).
		Msg("store credit partially redeemed")

	return &model.RedeemCreditResponse{
		Success:         true,
		RemainingCredit: &updated,
	}, nil
}

// List retrieves discount codes, optionally filtered by customer email.
func (s *creditService) List(ctx context.Context, customerEmail string) ([]model.DiscountCode, error) {
	codes, err := s.creditRepo.List(ctx, customerEmail)
	if err != nil {
		s.logger.Error().Err(err).Str("customer_email", customerEmail).Msg("failed to list discount codes")
		return nil, fmt.Errorf("failed to get discount codes: %w", err)
	}

	return codes, nil
}

// Delete removes a discount code unconditionally.
func (s *creditService) Delete(ctx context.Context, id uuid.UUID) error {
	found, err := s.creditRepo.Delete(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("discount_code_id", id.String()).Msg("failed to delete discount code")
		return fmt.Errorf("failed to delete discount code: %w", err)
	}

	if !found {
		return model.ErrDiscountCodeNotFound
	}

	s.logger.Info().
		Str("discount_code_id", id.String()).
		Msg("discount code deleted")

	return nil
}

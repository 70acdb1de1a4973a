package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fairyhunter13/flash-sale-service/internal/model"
	"github.com/fairyhunter13/flash-sale-service/internal/repository"
	"github.com/fairyhunter13/flash-sale-service/internal/telemetry"
)

// InventoryRepositoryInterface defines the stock-counter operations the service needs.
type InventoryRepositoryInterface interface {
	Initialize(ctx context.Context, totalStock int) (bool, error)
	GetStock(ctx context.Context) (int64, error)
	SetStock(ctx context.Context, n int) error
}

// LedgerRepositoryInterface defines the purchase-ledger operations the service needs.
type LedgerRepositoryInterface interface {
	HasPurchased(ctx context.Context, userID string) (string, bool, error)
	ClearPurchases(ctx context.Context) error
}

// PurchaseRepositoryInterface defines the atomic purchase operation.
type PurchaseRepositoryInterface interface {
	Attempt(ctx context.Context, userID, purchasedAt string) (*repository.AttemptResult, error)
}

// SaleConfig is the immutable sale definition the service is constructed
// with. Reloads during a running sale are not supported; Reset does not
// reread configuration.
type SaleConfig struct {
	StartTime    time.Time
	EndTime      time.Time
	TotalStock   int
	ProductName  string
	ProductPrice float64
}

// SaleService derives the sale state from the clock, normalizes user ids and
// orchestrates the atomic purchase. It holds no mutable state of its own; the
// store owns both the counter and the ledger.
type SaleService struct {
	cfg           SaleConfig
	inventoryRepo InventoryRepositoryInterface
	ledgerRepo    LedgerRepositoryInterface
	purchaseRepo  PurchaseRepositoryInterface
	now           func() time.Time
}

// NewSaleService creates a SaleService using the wall clock.
func NewSaleService(
	cfg SaleConfig,
	inventoryRepo InventoryRepositoryInterface,
	ledgerRepo LedgerRepositoryInterface,
	purchaseRepo PurchaseRepositoryInterface,
) *SaleService {
	return NewSaleServiceWithClock(cfg, inventoryRepo, ledgerRepo, purchaseRepo, time.Now)
}

// NewSaleServiceWithClock creates a SaleService with a custom clock.
// Primarily used for testing the window boundaries.
func NewSaleServiceWithClock(
	cfg SaleConfig,
	inventoryRepo InventoryRepositoryInterface,
	ledgerRepo LedgerRepositoryInterface,
	purchaseRepo PurchaseRepositoryInterface,
	now func() time.Time,
) *SaleService {
	return &SaleService{
		cfg:           cfg,
		inventoryRepo: inventoryRepo,
		ledgerRepo:    ledgerRepo,
		purchaseRepo:  purchaseRepo,
		now:           now,
	}
}

// NormalizeUserID trims surrounding whitespace and lower-cases the id.
// Identifiers equal after normalization denote the same user.
func NormalizeUserID(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// State reports where the given instant stands relative to the sale window.
// Both bounds are inclusive: the sale is active at exactly StartTime and at
// exactly EndTime.
func (s *SaleService) State(at time.Time) SaleState {
	if at.Before(s.cfg.StartTime) {
		return StateUpcoming
	}
	if at.After(s.cfg.EndTime) {
		return StateEnded
	}
	return StateActive
}

// Status reads the remaining stock once and reports it together with the
// derived sale state. The stock value and the state are independent
// point-in-time observations, not a joint snapshot; a caller may see stock
// that in-flight commits are already consuming.
func (s *SaleService) Status(ctx context.Context) (*model.SaleStatusResponse, error) {
	remaining, err := s.inventoryRepo.GetStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("read stock: %w", err)
	}
	telemetry.StockRemaining.Set(float64(remaining))

	now := s.now().UTC()
	return &model.SaleStatusResponse{
		Status:         string(s.State(now)),
		StartsAt:       s.cfg.StartTime.UTC(),
		EndsAt:         s.cfg.EndTime.UTC(),
		RemainingStock: remaining,
		TotalStock:     s.cfg.TotalStock,
		ProductName:    s.cfg.ProductName,
		ProductPrice:   s.cfg.ProductPrice,
		ServerTime:     now,
	}, nil
}

// AttemptPurchase validates and normalizes the user id, gates on the sale
// window, then hands the attempt to the atomic purchase script. Rejections
// come back as tagged outcomes; an error means the store failed or the script
// replied with a status this build does not know. Nothing is retried here: a
// retry after an indeterminate commit could only convert a success into
// already_purchased.
//
// The window check sits outside the atomic script. The window is a soft gate
// measured in seconds; stock and uniqueness are the hard invariants and those
// live entirely inside the script.
func (s *SaleService) AttemptPurchase(ctx context.Context, rawUserID string) (*PurchaseResult, error) {
	userID := NormalizeUserID(rawUserID)
	if userID == "" {
		return s.reject(OutcomeInvalidUserID, "User ID is required"), nil
	}

	now := s.now().UTC()
	switch s.State(now) {
	case StateUpcoming:
		return s.reject(OutcomeSaleNotActive, "Sale has not started yet"), nil
	case StateEnded:
		return s.reject(OutcomeSaleNotActive, "Sale has ended"), nil
	}

	started := time.Now()
	res, err := s.purchaseRepo.Attempt(ctx, userID, now.Format(time.RFC3339))
	telemetry.PurchaseScriptDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		telemetry.PurchaseOutcomes.WithLabelValues("store_error").Inc()
		return nil, fmt.Errorf("attempt purchase: %w", err)
	}

	switch res.Code {
	case repository.CodeSuccess:
		telemetry.PurchaseOutcomes.WithLabelValues(OutcomeSuccess.String()).Inc()
		telemetry.StockRemaining.Set(float64(res.Remaining))
		return &PurchaseResult{
			Outcome:     OutcomeSuccess,
			Message:     "Purchase successful",
			PurchasedAt: now.Format(time.RFC3339),
			Remaining:   res.Remaining,
		}, nil
	case repository.CodeAlreadyPurchased:
		result := s.reject(OutcomeAlreadyPurchased, "You have already purchased this item")
		result.PurchasedAt = res.PriorAt
		return result, nil
	case repository.CodeOutOfStock:
		return s.reject(OutcomeOutOfStock, "Item is out of stock"), nil
	default:
		telemetry.PurchaseOutcomes.WithLabelValues("protocol_error").Inc()
		return nil, fmt.Errorf("purchase script returned code %d: %w", res.Code, ErrUnexpectedScriptResult)
	}
}

// UserStatus reports whether the user already purchased and, if so, when.
// The raw id is normalized first; a blank id is rejected with ErrInvalidUserID.
func (s *SaleService) UserStatus(ctx context.Context, rawUserID string) (*model.UserStatusResponse, error) {
	userID := NormalizeUserID(rawUserID)
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	purchasedAt, found, err := s.ledgerRepo.HasPurchased(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user status: %w", err)
	}

	return &model.UserStatusResponse{
		HasPurchased: found,
		PurchasedAt:  purchasedAt,
	}, nil
}

// Initialize idempotently seeds the stock counter with the configured total.
// Run once at startup; a counter that survived a restart is left untouched.
// Reports whether this call created the counter.
func (s *SaleService) Initialize(ctx context.Context) (bool, error) {
	created, err := s.inventoryRepo.Initialize(ctx, s.cfg.TotalStock)
	if err != nil {
		return false, fmt.Errorf("initialize sale: %w", err)
	}
	if created {
		telemetry.StockRemaining.Set(float64(s.cfg.TotalStock))
	}
	return created, nil
}

// Reset rewrites the counter to the configured total and empties the ledger,
// making every user eligible again. Test surface; the two writes are
// sequential, which is fine off the hot path.
func (s *SaleService) Reset(ctx context.Context) error {
	if err := s.inventoryRepo.SetStock(ctx, s.cfg.TotalStock); err != nil {
		return fmt.Errorf("reset stock: %w", err)
	}
	if err := s.ledgerRepo.ClearPurchases(ctx); err != nil {
		return fmt.Errorf("reset ledger: %w", err)
	}
	telemetry.StockRemaining.Set(float64(s.cfg.TotalStock))
	return nil
}

func (s *SaleService) reject(outcome PurchaseOutcome, message string) *PurchaseResult {
	telemetry.PurchaseOutcomes.WithLabelValues(outcome.String()).Inc()
	return &PurchaseResult{Outcome: outcome, Message: message}
}

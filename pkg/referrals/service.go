// Package referrals tracks stylist referral orders and the commission
// credits owed to stylists and their salons.
package referrals

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/salonlink/backend/pkg/commissionrules"
	"github.com/salonlink/backend/pkg/stylists"
)

// Referral statuses.
const (
	StatusPending  = "pending"
	StatusRedeemed = "redeemed"
	StatusCredited = "credited"
)

var (
	// ErrNotFound is returned when no referral matches.
	ErrNotFound = errors.New("referral not found")
	// ErrAlreadyCredited blocks double payouts.
	ErrAlreadyCredited = errors.New("referral already credited")
	// ErrCodeNotFound is returned when no discount code matches.
	ErrCodeNotFound = errors.New("discount code not found")
)

// Referral is one referral order row. Suggested amounts come from the
// commission rules at creation; actual amounts are fixed when credited.
type Referral struct {
	ID                       string     `db:"id" json:"id"`
	Code                     string     `db:"code" json:"code,omitempty"`
	StylistID                string     `db:"stylist_id" json:"stylistId,omitempty"`
	SalonID                  string     `db:"salon_id" json:"salonId,omitempty"`
	DiscountCodeID           string     `db:"discount_code_id" json:"discountCodeId,omitempty"`
	Status                   string     `db:"status" json:"status"`
	OrderAmount              float64    `db:"order_amount" json:"orderAmount"`
	SuggestedCommission      float64    `db:"suggested_commission" json:"suggestedCommission"`
	CommissionAmount         *float64   `db:"commission_amount" json:"commissionAmount,omitempty"`
	SuggestedSalonCommission float64    `db:"suggested_salon_commission" json:"suggestedSalonCommission"`
	ActualSalonCommission    *float64   `db:"actual_salon_commission" json:"actualSalonCommission,omitempty"`
	CreditedAt               *time.Time `db:"credited_at" json:"creditedAt,omitempty"`
	CreatedAt                time.Time  `db:"created_at" json:"createdAt"`
}

// DiscountCode is a toggleable referral discount code.
type DiscountCode struct {
	ID        string    `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	IsActive  bool      `db:"is_active" json:"isActive"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// CreateReferralRequest records a referral order.
type CreateReferralRequest struct {
	Code           string   `json:"code"`
	StylistID      string   `json:"stylistId"`
	SalonID        string   `json:"salonId"`
	DiscountCodeID string   `json:"discountCodeId"`
	OrderAmount    float64  `json:"orderAmount" validate:"required,gt=0"`
	ProductIDs     []string `json:"productIds"`
}

// CreditRequest credits one referral. Nil amounts fall back to the
// suggested commissions.
type CreditRequest struct {
	CommissionAmount      *float64 `json:"commissionAmount"`
	ActualSalonCommission *float64 `json:"actualSalonCommission"`
}

// Service handles referral operations.
type Service struct {
	db       *sqlx.DB
	rules    *commissionrules.Service
	stylists *stylists.Service
}

// NewService creates a new referral service.
func NewService(db *sqlx.DB, rules *commissionrules.Service, stylistSvc *stylists.Service) *Service {
	return &Service{db: db, rules: rules, stylists: stylistSvc}
}

// Create records a referral order and prices the suggested commissions from
// the active rules. An order no rule covers just suggests zero.
func (s *Service) Create(ctx context.Context, req CreateReferralRequest) (*Referral, error) {
	level := ""
	if req.StylistID != "" {
		stylist, err := s.stylists.GetByID(ctx, req.StylistID)
		if err != nil && !errors.Is(err, stylists.ErrNotFound) {
			return nil, err
		}
		if stylist != nil {
			level = stylist.Level
		}
	}

	ref := Referral{
		ID:             uuid.NewString(),
		Code:           req.Code,
		StylistID:      req.StylistID,
		SalonID:        req.SalonID,
		DiscountCodeID: req.DiscountCodeID,
		Status:         StatusRedeemed,
		OrderAmount:    req.OrderAmount,
		CreatedAt:      time.Now().UTC(),
	}

	ref.SuggestedCommission = s.suggest(ctx, commissionrules.Order{
		Amount:     req.OrderAmount,
		Level:      level,
		Role:       "STYLIST",
		ProductIDs: req.ProductIDs,
	})
	ref.SuggestedSalonCommission = s.suggest(ctx, commissionrules.Order{
		Amount:     req.OrderAmount,
		Level:      level,
		Role:       "SALON",
		ProductIDs: req.ProductIDs,
	})

	query := s.db.Rebind(`INSERT INTO referrals (
		id, code, stylist_id, salon_id, discount_code_id, status,
		order_amount, suggested_commission, suggested_salon_commission, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, query,
		ref.ID, ref.Code, ref.StylistID, ref.SalonID, ref.DiscountCodeID, ref.Status,
		ref.OrderAmount, ref.SuggestedCommission, ref.SuggestedSalonCommission, ref.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to create referral: %w", err)
	}
	return &ref, nil
}

func (s *Service) suggest(ctx context.Context, order commissionrules.Order) float64 {
	rule, err := s.rules.Match(ctx, order)
	if err != nil {
		return 0
	}
	return rule.Commission(order.Amount)
}

// GetByID retrieves one referral.
func (s *Service) GetByID(ctx context.Context, id string) (*Referral, error) {
	var ref Referral
	query := s.db.Rebind(`SELECT * FROM referrals WHERE id = ?`)
	if err := s.db.GetContext(ctx, &ref, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get referral: %w", err)
	}
	return &ref, nil
}

// ListFilter narrows the referral ledger; zero values match everything.
type ListFilter struct {
	Status    string
	StylistID string
	SalonID   string
	Code      string
}

// List returns referrals matching the filter, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Referral, error) {
	query := `SELECT * FROM referrals WHERE 1 = 1`
	args := []any{}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if filter.StylistID != "" {
		query += ` AND stylist_id = ?`
		args = append(args, filter.StylistID)
	}
	if filter.SalonID != "" {
		query += ` AND salon_id = ?`
		args = append(args, filter.SalonID)
	}
	if filter.Code != "" {
		query += ` AND code = ?`
		args = append(args, filter.Code)
	}
	query += ` ORDER BY created_at DESC`

	var refs []Referral
	if err := s.db.SelectContext(ctx, &refs, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list referrals: %w", err)
	}
	return refs, nil
}

// Credit pays out one referral. Amounts default to the suggested
// commissions; a credited referral cannot be credited twice.
func (s *Service) Credit(ctx context.Context, id string, req CreditRequest) (*Referral, error) {
	ref, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ref.Status == StatusCredited {
		return nil, ErrAlreadyCredited
	}

	stylistAmount := ref.SuggestedCommission
	if req.CommissionAmount != nil {
		stylistAmount = *req.CommissionAmount
	}
	salonAmount := ref.SuggestedSalonCommission
	if req.ActualSalonCommission != nil {
		salonAmount = *req.ActualSalonCommission
	}

	now := time.Now().UTC()
	query := s.db.Rebind(`UPDATE referrals SET status = ?, commission_amount = ?, actual_salon_commission = ?, credited_at = ? WHERE id = ?`)
	if _, err := s.db.ExecContext(ctx, query, StatusCredited, stylistAmount, salonAmount, now, id); err != nil {
		return nil, fmt.Errorf("failed to credit referral: %w", err)
	}

	ref.Status = StatusCredited
	ref.CommissionAmount = &stylistAmount
	ref.ActualSalonCommission = &salonAmount
	ref.CreditedAt = &now
	return ref, nil
}

// BulkCredit credits every given referral at its suggested amounts and
// returns how many were credited. Already-credited rows are skipped.
func (s *Service) BulkCredit(ctx context.Context, ids []string) (int, error) {
	credited := 0
	for _, id := range ids {
		_, err := s.Credit(ctx, id, CreditRequest{})
		if errors.Is(err, ErrAlreadyCredited) || errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return credited, err
		}
		credited++
	}
	return credited, nil
}

// CreateDiscountCode registers a new discount code, active by default.
func (s *Service) CreateDiscountCode(ctx context.Context, code string) (*DiscountCode, error) {
	dc := DiscountCode{
		ID:        uuid.NewString(),
		Code:      code,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	query := s.db.Rebind(`INSERT INTO discount_codes (id, code, is_active, created_at) VALUES (?, ?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, query, dc.ID, dc.Code, dc.IsActive, dc.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to create discount code: %w", err)
	}
	return &dc, nil
}

// ListDiscountCodes returns every discount code, newest first.
func (s *Service) ListDiscountCodes(ctx context.Context) ([]DiscountCode, error) {
	var codes []DiscountCode
	if err := s.db.SelectContext(ctx, &codes, `SELECT * FROM discount_codes ORDER BY created_at DESC`); err != nil {
		return nil, fmt.Errorf("failed to list discount codes: %w", err)
	}
	return codes, nil
}

// SetDiscountCodeStatus toggles a code on or off.
func (s *Service) SetDiscountCodeStatus(ctx context.Context, id string, active bool) error {
	query := s.db.Rebind(`UPDATE discount_codes SET is_active = ? WHERE id = ?`)
	res, err := s.db.ExecContext(ctx, query, active, id)
	if err != nil {
		return fmt.Errorf("failed to set discount code status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrCodeNotFound
	}
	return nil
}

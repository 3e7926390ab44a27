// Package commissionrules stores the rules that price referral commissions
// and picks the winning rule for an order.
package commissionrules

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Rule types.
const (
	TypePercentage = "percentage"
	TypeFixed      = "fixed"
)

var (
	// ErrNotFound is returned when no rule matches an ID.
	ErrNotFound = errors.New("commission rule not found")
	// ErrNoRuleMatches is returned when no active rule covers an order.
	ErrNoRuleMatches = errors.New("no commission rule matches this order")
	// ErrInvalidType rejects unknown rule types.
	ErrInvalidType = errors.New("rule type must be percentage or fixed")
)

// Rule prices commissions for orders it covers. Higher priority wins when
// several rules cover the same order.
type Rule struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Type           string    `json:"type"`
	Value          float64   `json:"value"`
	MinOrderAmount float64   `json:"minOrderAmount"`
	MaxCommission  *float64  `json:"maxCommission,omitempty"`
	AllowedLevels  []string  `json:"allowedLevels"`
	RoleApplicable []string  `json:"roleApplicable"`
	ProductIDs     []string  `json:"productIds"`
	IsActive       bool      `json:"isActive"`
	Priority       int       `json:"priority"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type ruleRow struct {
	ID             string    `db:"id"`
	Name           string    `db:"name"`
	RuleType       string    `db:"rule_type"`
	Value          float64   `db:"value"`
	MinOrderAmount float64   `db:"min_order_amount"`
	MaxCommission  *float64  `db:"max_commission"`
	AllowedLevels  string    `db:"allowed_levels"`
	RoleApplicable string    `db:"role_applicable"`
	ProductIDs     string    `db:"product_ids"`
	IsActive       bool      `db:"is_active"`
	Priority       int       `db:"priority"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// CreateRuleRequest defines a new rule.
type CreateRuleRequest struct {
	Name           string   `json:"name" validate:"required"`
	Type           string   `json:"type" validate:"required,oneof=percentage fixed"`
	Value          float64  `json:"value" validate:"required,gt=0"`
	MinOrderAmount float64  `json:"minOrderAmount" validate:"gte=0"`
	MaxCommission  *float64 `json:"maxCommission" validate:"omitempty,gt=0"`
	AllowedLevels  []string `json:"allowedLevels"`
	RoleApplicable []string `json:"roleApplicable"`
	ProductIDs     []string `json:"productIds"`
	Priority       int      `json:"priority"`
}

// UpdateRuleRequest is a partial update; nil keeps the stored value.
type UpdateRuleRequest struct {
	Name           *string   `json:"name"`
	Type           *string   `json:"type"`
	Value          *float64  `json:"value"`
	MinOrderAmount *float64  `json:"minOrderAmount"`
	MaxCommission  *float64  `json:"maxCommission"`
	AllowedLevels  []string  `json:"allowedLevels"`
	RoleApplicable []string  `json:"roleApplicable"`
	ProductIDs     []string  `json:"productIds"`
	IsActive       *bool     `json:"isActive"`
	Priority       *int      `json:"priority"`
}

// Order describes what a rule is matched against.
type Order struct {
	Amount     float64
	Level      string
	Role       string
	ProductIDs []string
}

// Service handles commission rule operations.
type Service struct {
	db *sqlx.DB
}

// NewService creates a new commission rule service.
func NewService(db *sqlx.DB) *Service {
	return &Service{db: db}
}

// Create stores a new rule, active by default.
func (s *Service) Create(ctx context.Context, req CreateRuleRequest) (*Rule, error) {
	if req.Type != TypePercentage && req.Type != TypeFixed {
		return nil, ErrInvalidType
	}

	now := time.Now().UTC()
	rule := Rule{
		ID:             uuid.NewString(),
		Name:           req.Name,
		Type:           req.Type,
		Value:          req.Value,
		MinOrderAmount: req.MinOrderAmount,
		MaxCommission:  req.MaxCommission,
		AllowedLevels:  emptyIfNil(req.AllowedLevels),
		RoleApplicable: emptyIfNil(req.RoleApplicable),
		ProductIDs:     emptyIfNil(req.ProductIDs),
		IsActive:       true,
		Priority:       req.Priority,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.insert(ctx, rule); err != nil {
		return nil, err
	}
	return &rule, nil
}

// GetByID retrieves one rule.
func (s *Service) GetByID(ctx context.Context, id string) (*Rule, error) {
	var row ruleRow
	query := s.db.Rebind(`SELECT * FROM commission_rules WHERE id = ?`)
	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}
	return row.toRule()
}

// List returns every rule, highest priority first.
func (s *Service) List(ctx context.Context) ([]Rule, error) {
	var rows []ruleRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT * FROM commission_rules ORDER BY priority DESC, created_at DESC`); err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}

	out := make([]Rule, 0, len(rows))
	for _, row := range rows {
		rule, err := row.toRule()
		if err != nil {
			return nil, err
		}
		out = append(out, *rule)
	}
	return out, nil
}

// Update applies the non-nil fields.
func (s *Service) Update(ctx context.Context, id string, req UpdateRuleRequest) (*Rule, error) {
	rule, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		rule.Name = *req.Name
	}
	if req.Type != nil {
		if *req.Type != TypePercentage && *req.Type != TypeFixed {
			return nil, ErrInvalidType
		}
		rule.Type = *req.Type
	}
	if req.Value != nil {
		rule.Value = *req.Value
	}
	if req.MinOrderAmount != nil {
		rule.MinOrderAmount = *req.MinOrderAmount
	}
	if req.MaxCommission != nil {
		rule.MaxCommission = req.MaxCommission
	}
	if req.AllowedLevels != nil {
		rule.AllowedLevels = req.AllowedLevels
	}
	if req.RoleApplicable != nil {
		rule.RoleApplicable = req.RoleApplicable
	}
	if req.ProductIDs != nil {
		rule.ProductIDs = req.ProductIDs
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	if req.Priority != nil {
		rule.Priority = *req.Priority
	}
	rule.UpdatedAt = time.Now().UTC()

	if err := s.save(ctx, *rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// Delete removes a rule.
func (s *Service) Delete(ctx context.Context, id string) error {
	query := s.db.Rebind(`DELETE FROM commission_rules WHERE id = ?`)
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Match picks the highest-priority active rule covering the order. Empty
// allowed-levels, role or product lists on a rule mean "applies to all".
func (s *Service) Match(ctx context.Context, order Order) (*Rule, error) {
	rules, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	for _, rule := range rules {
		if rule.covers(order) {
			return &rule, nil
		}
	}
	return nil, ErrNoRuleMatches
}

// Commission computes the payout the rule yields for the amount.
func (r Rule) Commission(amount float64) float64 {
	var commission float64
	switch r.Type {
	case TypePercentage:
		commission = amount * r.Value / 100
	case TypeFixed:
		commission = r.Value
	}
	if r.MaxCommission != nil && commission > *r.MaxCommission {
		commission = *r.MaxCommission
	}
	return commission
}

func (r Rule) covers(order Order) bool {
	if !r.IsActive {
		return false
	}
	if order.Amount < r.MinOrderAmount {
		return false
	}
	if len(r.AllowedLevels) > 0 && !slices.Contains(r.AllowedLevels, order.Level) {
		return false
	}
	if len(r.RoleApplicable) > 0 && !slices.Contains(r.RoleApplicable, order.Role) {
		return false
	}
	if len(r.ProductIDs) > 0 {
		found := false
		for _, id := range order.ProductIDs {
			if slices.Contains(r.ProductIDs, id) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (s *Service) insert(ctx context.Context, rule Rule) error {
	levels, roles, products, err := encodeLists(rule)
	if err != nil {
		return err
	}

	query := s.db.Rebind(`INSERT INTO commission_rules (
		id, name, rule_type, value, min_order_amount, max_commission,
		allowed_levels, role_applicable, product_ids, is_active, priority,
		created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, query,
		rule.ID, rule.Name, rule.Type, rule.Value, rule.MinOrderAmount, rule.MaxCommission,
		levels, roles, products, rule.IsActive, rule.Priority,
		rule.CreatedAt, rule.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to create rule: %w", err)
	}
	return nil
}

func (s *Service) save(ctx context.Context, rule Rule) error {
	levels, roles, products, err := encodeLists(rule)
	if err != nil {
		return err
	}

	query := s.db.Rebind(`UPDATE commission_rules SET
		name = ?, rule_type = ?, value = ?, min_order_amount = ?, max_commission = ?,
		allowed_levels = ?, role_applicable = ?, product_ids = ?, is_active = ?, priority = ?,
		updated_at = ?
	WHERE id = ?`)
	if _, err := s.db.ExecContext(ctx, query,
		rule.Name, rule.Type, rule.Value, rule.MinOrderAmount, rule.MaxCommission,
		levels, roles, products, rule.IsActive, rule.Priority,
		rule.UpdatedAt, rule.ID,
	); err != nil {
		return fmt.Errorf("failed to save rule: %w", err)
	}
	return nil
}

func encodeLists(rule Rule) (string, string, string, error) {
	levels, err := json.Marshal(emptyIfNil(rule.AllowedLevels))
	if err != nil {
		return "", "", "", fmt.Errorf("failed encoding allowed levels: %w", err)
	}
	roles, err := json.Marshal(emptyIfNil(rule.RoleApplicable))
	if err != nil {
		return "", "", "", fmt.Errorf("failed encoding roles: %w", err)
	}
	products, err := json.Marshal(emptyIfNil(rule.ProductIDs))
	if err != nil {
		return "", "", "", fmt.Errorf("failed encoding product ids: %w", err)
	}
	return string(levels), string(roles), string(products), nil
}

func emptyIfNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func (r ruleRow) toRule() (*Rule, error) {
	var levels, roles, products []string
	if err := json.Unmarshal([]byte(r.AllowedLevels), &levels); err != nil {
		return nil, fmt.Errorf("rule %s has bad allowed_levels: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(r.RoleApplicable), &roles); err != nil {
		return nil, fmt.Errorf("rule %s has bad role_applicable: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(r.ProductIDs), &products); err != nil {
		return nil, fmt.Errorf("rule %s has bad product_ids: %w", r.ID, err)
	}
	return &Rule{
		ID:             r.ID,
		Name:           r.Name,
		Type:           r.RuleType,
		Value:          r.Value,
		MinOrderAmount: r.MinOrderAmount,
		MaxCommission:  r.MaxCommission,
		AllowedLevels:  levels,
		RoleApplicable: roles,
		ProductIDs:     products,
		IsActive:       r.IsActive,
		Priority:       r.Priority,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}, nil
}

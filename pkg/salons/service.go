// Package salons manages partner salons and their onboarding pipeline.
package salons

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	// ErrNotFound is returned when no salon matches.
	ErrNotFound = errors.New("salon not found")
	// ErrChecklistIncomplete blocks stage advancement.
	ErrChecklistIncomplete = errors.New("complete all checklist items before advancing")
	// ErrStageTerminal is returned when the salon cannot advance further.
	ErrStageTerminal = errors.New("salon is already at a terminal stage")
	// ErrInvalidStage is returned for unknown stage names.
	ErrInvalidStage = errors.New("unknown onboarding stage")
	// ErrUnknownChecklistItem rejects checklist keys outside the current stage.
	ErrUnknownChecklistItem = errors.New("checklist item does not belong to the current stage")
)

// Salon is one partner salon.
type Salon struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	OwnerName    string          `json:"ownerName,omitempty"`
	OwnerPhone   string          `json:"ownerPhone,omitempty"`
	ManagerName  string          `json:"managerName,omitempty"`
	ManagerPhone string          `json:"managerPhone,omitempty"`
	Address      string          `json:"address,omitempty"`
	City         string          `json:"city,omitempty"`
	State        string          `json:"state,omitempty"`
	Pincode      string          `json:"pincode,omitempty"`
	Latitude     string          `json:"latitude,omitempty"`
	Longitude    string          `json:"longitude,omitempty"`
	Level        string          `json:"level,omitempty"`
	Stage        string          `json:"stage"`
	Checklist    map[string]bool `json:"checklist"`
	IsActive     bool            `json:"isActive"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

type salonRow struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	OwnerName    string    `db:"owner_name"`
	OwnerPhone   string    `db:"owner_phone"`
	ManagerName  string    `db:"manager_name"`
	ManagerPhone string    `db:"manager_phone"`
	Address      string    `db:"address"`
	City         string    `db:"city"`
	State        string    `db:"state"`
	Pincode      string    `db:"pincode"`
	Latitude     string    `db:"latitude"`
	Longitude    string    `db:"longitude"`
	Level        string    `db:"level"`
	Stage        string    `db:"stage"`
	Checklist    string    `db:"checklist"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// CreateSalonRequest registers a new salon at the APPROACH stage.
type CreateSalonRequest struct {
	Name         string `json:"name" validate:"required"`
	OwnerName    string `json:"ownerName"`
	OwnerPhone   string `json:"ownerPhone"`
	ManagerName  string `json:"managerName"`
	ManagerPhone string `json:"managerPhone"`
	Address      string `json:"address"`
	City         string `json:"city"`
	State        string `json:"state"`
	Pincode      string `json:"pincode"`
	Latitude     string `json:"latitude"`
	Longitude    string `json:"longitude"`
	Level        string `json:"level"`
}

// UpdateSalonRequest is a partial update; nil keeps the stored value.
type UpdateSalonRequest struct {
	Name         *string `json:"name"`
	OwnerName    *string `json:"ownerName"`
	OwnerPhone   *string `json:"ownerPhone"`
	ManagerName  *string `json:"managerName"`
	ManagerPhone *string `json:"managerPhone"`
	Address      *string `json:"address"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	Pincode      *string `json:"pincode"`
	Latitude     *string `json:"latitude"`
	Longitude    *string `json:"longitude"`
	Level        *string `json:"level"`
	Stage        *string `json:"stage"`
	IsActive     *bool   `json:"isActive"`
}

// Service handles salon operations.
type Service struct {
	db *sqlx.DB
}

// NewService creates a new salon service.
func NewService(db *sqlx.DB) *Service {
	return &Service{db: db}
}

// Create registers a salon. Every salon starts at APPROACH with an empty
// checklist.
func (s *Service) Create(ctx context.Context, req CreateSalonRequest) (*Salon, error) {
	now := time.Now().UTC()
	salon := Salon{
		ID:           uuid.NewString(),
		Name:         req.Name,
		OwnerName:    req.OwnerName,
		OwnerPhone:   req.OwnerPhone,
		ManagerName:  req.ManagerName,
		ManagerPhone: req.ManagerPhone,
		Address:      req.Address,
		City:         req.City,
		State:        req.State,
		Pincode:      req.Pincode,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		Level:        req.Level,
		Stage:        StageApproach,
		Checklist:    map[string]bool{},
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	query := s.db.Rebind(`INSERT INTO salons (
		id, name, owner_name, owner_phone, manager_name, manager_phone,
		address, city, state, pincode, latitude, longitude,
		level, stage, checklist, is_active, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, '{}', ?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, query,
		salon.ID, salon.Name, salon.OwnerName, salon.OwnerPhone, salon.ManagerName, salon.ManagerPhone,
		salon.Address, salon.City, salon.State, salon.Pincode, salon.Latitude, salon.Longitude,
		salon.Level, salon.Stage, salon.IsActive, salon.CreatedAt, salon.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to create salon: %w", err)
	}
	return &salon, nil
}

// GetByID retrieves one salon.
func (s *Service) GetByID(ctx context.Context, id string) (*Salon, error) {
	var row salonRow
	query := s.db.Rebind(`SELECT * FROM salons WHERE id = ?`)
	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get salon: %w", err)
	}
	return row.toSalon()
}

// List returns salons, optionally filtered by stage or city, newest first.
func (s *Service) List(ctx context.Context, stage, city string) ([]Salon, error) {
	query := `SELECT * FROM salons WHERE 1=1`
	args := []any{}
	if stage != "" {
		query += ` AND stage = ?`
		args = append(args, stage)
	}
	if city != "" {
		query += ` AND city = ?`
		args = append(args, city)
	}
	query += ` ORDER BY created_at DESC`

	var rows []salonRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list salons: %w", err)
	}

	out := make([]Salon, 0, len(rows))
	for _, row := range rows {
		salon, err := row.toSalon()
		if err != nil {
			return nil, err
		}
		out = append(out, *salon)
	}
	return out, nil
}

// Update applies the non-nil fields. Setting the stage directly is allowed
// only for CLOSED, the escape hatch for salons that back out mid-pipeline;
// forward movement goes through AdvanceStage.
func (s *Service) Update(ctx context.Context, id string, req UpdateSalonRequest) (*Salon, error) {
	salon, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&salon.Name, req.Name)
	apply(&salon.OwnerName, req.OwnerName)
	apply(&salon.OwnerPhone, req.OwnerPhone)
	apply(&salon.ManagerName, req.ManagerName)
	apply(&salon.ManagerPhone, req.ManagerPhone)
	apply(&salon.Address, req.Address)
	apply(&salon.City, req.City)
	apply(&salon.State, req.State)
	apply(&salon.Pincode, req.Pincode)
	apply(&salon.Latitude, req.Latitude)
	apply(&salon.Longitude, req.Longitude)
	apply(&salon.Level, req.Level)

	if req.Stage != nil {
		if !ValidStage(*req.Stage) {
			return nil, ErrInvalidStage
		}
		if *req.Stage != salon.Stage && *req.Stage != StageClosed {
			return nil, fmt.Errorf("%w: use advance-stage to move forward", ErrInvalidStage)
		}
		salon.Stage = *req.Stage
	}
	if req.IsActive != nil {
		salon.IsActive = *req.IsActive
	}

	salon.UpdatedAt = time.Now().UTC()
	if err := s.save(ctx, salon); err != nil {
		return nil, err
	}
	return salon, nil
}

// SetChecklist merges the given items into the salon's checklist. Only keys
// belonging to the salon's current stage are accepted.
func (s *Service) SetChecklist(ctx context.Context, id string, items map[string]bool) (*Salon, error) {
	salon, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	allowed := map[string]bool{}
	for _, key := range StageChecklist(salon.Stage) {
		allowed[key] = true
	}
	for key := range items {
		if !allowed[key] {
			return nil, fmt.Errorf("%w: %s", ErrUnknownChecklistItem, key)
		}
	}

	if salon.Checklist == nil {
		salon.Checklist = map[string]bool{}
	}
	for key, done := range items {
		salon.Checklist[key] = done
	}

	salon.UpdatedAt = time.Now().UTC()
	if err := s.save(ctx, salon); err != nil {
		return nil, err
	}
	return salon, nil
}

// AdvanceStage moves the salon one step down the pipeline once its current
// checklist is complete. The checklist resets for the new stage.
func (s *Service) AdvanceStage(ctx context.Context, id string) (*Salon, error) {
	salon, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if salon.Stage == StageActivated || salon.Stage == StageClosed {
		return nil, ErrStageTerminal
	}
	if !checklistComplete(salon.Stage, salon.Checklist) {
		return nil, ErrChecklistIncomplete
	}

	next := nextStage(salon.Stage)
	if next == "" {
		return nil, ErrStageTerminal
	}

	salon.Stage = next
	salon.Checklist = map[string]bool{}
	salon.UpdatedAt = time.Now().UTC()

	if err := s.save(ctx, salon); err != nil {
		return nil, err
	}
	return salon, nil
}

// Delete removes a salon.
func (s *Service) Delete(ctx context.Context, id string) error {
	query := s.db.Rebind(`DELETE FROM salons WHERE id = ?`)
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete salon: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) save(ctx context.Context, salon *Salon) error {
	raw, err := json.Marshal(salon.Checklist)
	if err != nil {
		return fmt.Errorf("failed encoding checklist: %w", err)
	}

	query := s.db.Rebind(`UPDATE salons SET
		name = ?, owner_name = ?, owner_phone = ?, manager_name = ?, manager_phone = ?,
		address = ?, city = ?, state = ?, pincode = ?, latitude = ?, longitude = ?,
		level = ?, stage = ?, checklist = ?, is_active = ?, updated_at = ?
	WHERE id = ?`)
	if _, err := s.db.ExecContext(ctx, query,
		salon.Name, salon.OwnerName, salon.OwnerPhone, salon.ManagerName, salon.ManagerPhone,
		salon.Address, salon.City, salon.State, salon.Pincode, salon.Latitude, salon.Longitude,
		salon.Level, salon.Stage, string(raw), salon.IsActive, salon.UpdatedAt, salon.ID,
	); err != nil {
		return fmt.Errorf("failed to save salon: %w", err)
	}
	return nil
}

func (r salonRow) toSalon() (*Salon, error) {
	checklist := map[string]bool{}
	if r.Checklist != "" {
		if err := json.Unmarshal([]byte(r.Checklist), &checklist); err != nil {
			return nil, fmt.Errorf("salon %s has bad checklist: %w", r.ID, err)
		}
	}
	return &Salon{
		ID:           r.ID,
		Name:         r.Name,
		OwnerName:    r.OwnerName,
		OwnerPhone:   r.OwnerPhone,
		ManagerName:  r.ManagerName,
		ManagerPhone: r.ManagerPhone,
		Address:      r.Address,
		City:         r.City,
		State:        r.State,
		Pincode:      r.Pincode,
		Latitude:     r.Latitude,
		Longitude:    r.Longitude,
		Level:        r.Level,
		Stage:        r.Stage,
		Checklist:    checklist,
		IsActive:     r.IsActive,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}, nil
}

// Package leads exposes the lead operations behind the admin console: list
// views, creation, guarded partial saves, assignment, history and deletion.
package leads

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/salonlink/backend/pkg/audit"
	"github.com/salonlink/backend/pkg/cache"
	"github.com/salonlink/backend/pkg/customers"
	"github.com/salonlink/backend/pkg/leadlifecycle"
	"github.com/salonlink/backend/pkg/logger"
	"github.com/salonlink/backend/pkg/models"
	"github.com/salonlink/backend/pkg/phone"
)

var (
	// ErrNotFound is returned when no lead matches.
	ErrNotFound = errors.New("lead not found")
	// ErrConfirmRequired guards the bulk clear endpoint.
	ErrConfirmRequired = errors.New("bulk delete requires confirm=true")
	// ErrInvalidCaller is returned when assignment targets a user that is
	// not an active lead caller.
	ErrInvalidCaller = errors.New("assignee must be an active lead caller")
)

const listCachePrefix = "leads:list:"

// Service handles lead operations.
type Service struct {
	db        *sqlx.DB
	cache     *cache.Client
	audit     *audit.Service
	customers *customers.Service
	log       logger.Logger

	cacheTTL    time.Duration
	phoneRegion string

	now func() time.Time
}

// NewService creates a new lead service. The cache client may be nil; list
// caching is then skipped.
func NewService(db *sqlx.DB, cacheClient *cache.Client, auditSvc *audit.Service, customerSvc *customers.Service, log logger.Logger, cacheTTL time.Duration, phoneRegion string) *Service {
	return &Service{
		db:          db,
		cache:       cacheClient,
		audit:       auditSvc,
		customers:   customerSvc,
		log:         log,
		cacheTTL:    cacheTTL,
		phoneRegion: phoneRegion,
		now:         time.Now,
	}
}

// List returns one page of leads for the requested view. The full set is
// loaded and filtered in memory because the views are derived from lead
// state plus the caller's clock, not from anything indexable.
func (s *Service) List(ctx context.Context, req models.LeadListRequest) (*models.LeadListResponse, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Limit <= 0 {
		req.Limit = 50
	}
	if req.Filter == "" {
		req.Filter = "all"
	}

	cacheKey := fmt.Sprintf("%s%s:%s:%d:%d", listCachePrefix, req.Filter, strings.ToLower(req.Search), req.Page, req.Limit)
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, cacheKey); err == nil {
			var cached models.LeadListResponse
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return &cached, nil
			}
		}
	}

	var rows []leadListRow
	if err := s.db.SelectContext(ctx, &rows, leadJoinQuery+` ORDER BY l.created_at DESC`); err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}

	type pair struct {
		domain leadlifecycle.Lead
		resp   models.LeadResponse
	}
	pairs := make([]pair, 0, len(rows))
	search := strings.ToLower(strings.TrimSpace(req.Search))
	for _, row := range rows {
		if search != "" {
			name := strings.ToLower(row.CustomerName)
			phoneNum := strings.ToLower(row.CustomerPhone)
			if !strings.Contains(name, search) && !strings.Contains(phoneNum, search) {
				continue
			}
		}
		resp, err := row.toResponse()
		if err != nil {
			return nil, err
		}
		domain, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, pair{domain: domain, resp: resp})
	}

	keep := s.viewPredicate(req.Filter)
	filtered := make([]models.LeadResponse, 0, len(pairs))
	for _, p := range pairs {
		if keep(p.domain) {
			filtered = append(filtered, p.resp)
		}
	}

	total := len(filtered)
	start := (req.Page - 1) * req.Limit
	if start > total {
		start = total
	}
	end := start + req.Limit
	if end > total {
		end = total
	}

	resp := &models.LeadListResponse{
		Leads: filtered[start:end],
		Total: total,
	}

	if s.cache != nil {
		if raw, err := json.Marshal(resp); err == nil {
			if err := s.cache.Set(ctx, cacheKey, string(raw), s.cacheTTL); err != nil {
				s.log.Warn("failed caching lead list", "error", err)
			}
		}
	}

	return resp, nil
}

func (s *Service) viewPredicate(filter string) func(leadlifecycle.Lead) bool {
	now := s.now()
	switch filter {
	case "fresh":
		return func(l leadlifecycle.Lead) bool {
			return leadlifecycle.IsActive(l) && l.Call1 == ""
		}
	case "reminder":
		eod := leadlifecycle.EndOfDay(now)
		return func(l leadlifecycle.Lead) bool {
			if !leadlifecycle.IsActive(l) || l.NextActionDate == nil {
				return false
			}
			return !l.NextActionDate.After(eod) && l.UpdatedAt.Before(*l.NextActionDate)
		}
	case "revisit":
		return func(l leadlifecycle.Lead) bool {
			return leadlifecycle.IsActive(l) && l.IsRevisit
		}
	case "converted":
		return func(l leadlifecycle.Lead) bool {
			return l.Status.Kind == leadlifecycle.KindConverted
		}
	case "dropped":
		return func(l leadlifecycle.Lead) bool {
			return l.Status.Kind == leadlifecycle.KindDropped
		}
	default:
		return func(leadlifecycle.Lead) bool { return true }
	}
}

// Get returns one lead with its customer embedded.
func (s *Service) Get(ctx context.Context, id string) (*models.LeadResponse, error) {
	var row leadListRow
	query := s.db.Rebind(leadJoinQuery + ` WHERE l.id = ?`)
	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	resp, err := row.toResponse()
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Create registers a new inbound contact. The phone is normalized, the
// customer is matched or created by it, and a repeat customer marks the new
// episode as a revisit.
func (s *Service) Create(ctx context.Context, req models.CreateLeadRequest) (*models.LeadResponse, error) {
	normalized, err := phone.Normalize(req.Phone, s.phoneRegion)
	if err != nil {
		return nil, &leadlifecycle.FieldError{Field: "phone", Reason: err.Error()}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	customer, err := s.customers.UpsertByPhone(ctx, tx, req.Name, normalized)
	if err != nil {
		return nil, err
	}

	fields := customers.UpdateFields{}
	if req.Address != "" {
		fields.Address = &req.Address
	}
	if req.City != "" {
		fields.City = &req.City
	}
	if req.Pincode != "" {
		fields.Pincode = &req.Pincode
	}
	if req.Notes != "" {
		fields.Notes = &req.Notes
	}
	if err := s.customers.Update(ctx, tx, customer.ID, fields); err != nil {
		return nil, err
	}

	var priorCount int
	countQuery := tx.Rebind(`SELECT COUNT(*) FROM leads WHERE customer_id = ?`)
	if err := tx.GetContext(ctx, &priorCount, countQuery, customer.ID); err != nil {
		return nil, fmt.Errorf("failed counting prior leads: %w", err)
	}

	now := s.now().UTC()
	lead := leadlifecycle.Lead{
		ID:         uuid.NewString(),
		CustomerID: customer.ID,
		Status:     leadlifecycle.StatusNew,

		Source:          req.Source,
		PageType:        req.PageType,
		CampaignID:      req.CampaignID,
		SpecificDetails: req.SpecificDetails,

		IsRevisit: priorCount > 0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := insertLead(ctx, tx, lead); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit lead creation: %w", err)
	}

	s.invalidateListCache(ctx)
	s.log.Info("lead created", "lead_id", lead.ID, "customer_id", customer.ID, "is_revisit", lead.IsRevisit)

	return s.Get(ctx, lead.ID)
}

// Update applies a guarded partial save. The lifecycle engine decides what
// actually changes; rejected saves leave the stored lead untouched and the
// engine's field error is returned as-is.
func (s *Service) Update(ctx context.Context, id string, req models.UpdateLeadRequest, actor string) (*models.LeadResponse, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var row leadRow
	query := tx.Rebind(`SELECT * FROM leads WHERE id = ?`)
	if err := tx.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load lead: %w", err)
	}

	current, err := row.toDomain()
	if err != nil {
		return nil, err
	}

	changes := leadlifecycle.Changes{
		Call1:  req.Call1,
		Call2:  req.Call2,
		Call3:  req.Call3,
		Status: req.Status,

		Scheduled:    req.Scheduled,
		SelectedDate: req.SelectedDate,
		TimeSlot:     req.TimeSlot,

		NextActionDate: req.NextActionDate,

		AppointmentBooked: req.AppointmentBooked,
		BookedDate:        req.BookedDate,

		PreferredExperienceCenter: req.PreferredExperienceCenter,
		PreferredProducts:         req.PreferredProducts,
		PreferredProductOptions:   req.PreferredProductOptions,
		Remarks:                   req.Remarks,
	}

	updated, entries, err := leadlifecycle.ApplyUpdate(current, changes, actor, s.now().UTC())
	if err != nil {
		return nil, err
	}

	if len(entries) > 0 {
		if err := updateLead(ctx, tx, updated); err != nil {
			return nil, err
		}
		if err := s.audit.Append(ctx, tx, updated.ID, entries); err != nil {
			return nil, err
		}
	}

	// Customer contact details ride along on the same form.
	custFields := customers.UpdateFields{
		Name:    req.Name,
		Address: req.Address,
		City:    req.City,
		Pincode: req.Pincode,
		Notes:   req.Notes,
	}
	if err := s.customers.Update(ctx, tx, current.CustomerID, custFields); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit lead update: %w", err)
	}

	if len(entries) > 0 {
		s.invalidateListCache(ctx)
		s.log.Info("lead updated", "lead_id", id, "changed_fields", len(entries), "actor", actor)
	}

	return s.Get(ctx, id)
}

// Assign hands the lead to a lead caller and records the handover in the
// change trail.
func (s *Service) Assign(ctx context.Context, id, callerID, actor string) (*models.LeadResponse, error) {
	var caller struct {
		Name     string `db:"name"`
		Role     string `db:"role"`
		IsActive bool   `db:"is_active"`
	}
	userQuery := s.db.Rebind(`SELECT name, role, is_active FROM users WHERE id = ?`)
	if err := s.db.GetContext(ctx, &caller, userQuery, callerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCaller
		}
		return nil, fmt.Errorf("failed to load caller: %w", err)
	}
	if caller.Role != models.RoleLeadCaller || !caller.IsActive {
		return nil, ErrInvalidCaller
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var row leadRow
	query := tx.Rebind(`SELECT * FROM leads WHERE id = ?`)
	if err := tx.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load lead: %w", err)
	}

	if row.AssignedTo == callerID {
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit: %w", err)
		}
		return s.Get(ctx, id)
	}

	now := s.now().UTC()
	update := tx.Rebind(`UPDATE leads SET assigned_to = ?, updated_at = ? WHERE id = ?`)
	if _, err := tx.ExecContext(ctx, update, callerID, now, id); err != nil {
		return nil, fmt.Errorf("failed to assign lead: %w", err)
	}

	entry := leadlifecycle.ChangeEntry{
		Field:     "assignedTo",
		OldValue:  row.AssignedTo,
		NewValue:  callerID,
		ChangedBy: actor,
		ChangedAt: now,
	}
	if err := s.audit.Append(ctx, tx, id, []leadlifecycle.ChangeEntry{entry}); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit assignment: %w", err)
	}

	s.invalidateListCache(ctx)
	s.log.Info("lead assigned", "lead_id", id, "caller_id", callerID, "caller_name", caller.Name)

	return s.Get(ctx, id)
}

// History returns the change trail of the lead plus every prior episode of
// the same customer, most recent episode first.
func (s *Service) History(ctx context.Context, id string) (*models.LeadHistoryResponse, error) {
	var row leadRow
	query := s.db.Rebind(`SELECT * FROM leads WHERE id = ?`)
	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load lead: %w", err)
	}

	current, err := s.audit.ListByLead(ctx, id)
	if err != nil {
		return nil, err
	}

	var priors []leadRow
	priorQuery := s.db.Rebind(`SELECT * FROM leads WHERE customer_id = ? AND id <> ? ORDER BY created_at DESC`)
	if err := s.db.SelectContext(ctx, &priors, priorQuery, row.CustomerID, id); err != nil {
		return nil, fmt.Errorf("failed to load prior leads: %w", err)
	}

	resp := &models.LeadHistoryResponse{}
	resp.CurrentLead.ID = id
	resp.CurrentLead.History = toChangeRecords(current)

	resp.PriorLeads = make([]models.LeadEpisode, 0, len(priors))
	for _, p := range priors {
		trail, err := s.audit.ListByLead(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		resp.PriorLeads = append(resp.PriorLeads, models.LeadEpisode{
			ID:        p.ID,
			Status:    p.Status,
			CreatedAt: p.CreatedAt,
			History:   toChangeRecords(trail),
		})
	}

	return resp, nil
}

// Delete removes one lead and its change trail.
func (s *Service) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.audit.DeleteByLead(ctx, tx, id); err != nil {
		return err
	}

	del := tx.Rebind(`DELETE FROM leads WHERE id = ?`)
	res, err := tx.ExecContext(ctx, del, id)
	if err != nil {
		return fmt.Errorf("failed to delete lead: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit deletion: %w", err)
	}

	s.invalidateListCache(ctx)
	return nil
}

// DeleteAll clears every lead and its history. The caller must pass
// confirm=true; the handler additionally restricts this to superadmins.
func (s *Service) DeleteAll(ctx context.Context, confirm bool) (int, error) {
	if !confirm {
		return 0, ErrConfirmRequired
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM lead_history`); err != nil {
		return 0, fmt.Errorf("failed to clear lead history: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM leads`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear leads: %w", err)
	}
	deleted, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit bulk clear: %w", err)
	}

	s.invalidateListCache(ctx)
	s.log.Warn("all leads cleared", "deleted", deleted)

	return int(deleted), nil
}

func (s *Service) invalidateListCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, listCachePrefix+"*"); err != nil {
		s.log.Warn("failed invalidating lead list cache", "error", err)
	}
}

func toChangeRecords(records []audit.Record) []models.ChangeRecord {
	out := make([]models.ChangeRecord, 0, len(records))
	for _, r := range records {
		out = append(out, models.ChangeRecord{
			FieldName: r.FieldName,
			OldValue:  r.OldValue,
			NewValue:  r.NewValue,
			ChangedBy: r.ChangedBy,
			ChangedAt: r.ChangedAt,
		})
	}
	return out
}

func insertLead(ctx context.Context, ext sqlx.ExtContext, l leadlifecycle.Lead) error {
	row, err := fromDomain(l)
	if err != nil {
		return err
	}
	query := ext.Rebind(`INSERT INTO leads (
		id, customer_id, status, call1, call2, call3,
		scheduled, selected_date, time_slot, next_action_date,
		appointment_booked, booked_date,
		preferred_experience_center, preferred_products, preferred_product_options, remarks,
		source, page_type, campaign_id, specific_details,
		is_revisit, assigned_to, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if _, err := ext.ExecContext(ctx, query,
		row.ID, row.CustomerID, row.Status, row.Call1, row.Call2, row.Call3,
		row.Scheduled, row.SelectedDate, row.TimeSlot, row.NextActionDate,
		row.AppointmentBooked, row.BookedDate,
		row.PreferredExperienceCenter, row.PreferredProducts, row.PreferredProductOptions, row.Remarks,
		row.Source, row.PageType, row.CampaignID, row.SpecificDetails,
		row.IsRevisit, row.AssignedTo, row.CreatedAt, row.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert lead: %w", err)
	}
	return nil
}

func updateLead(ctx context.Context, ext sqlx.ExtContext, l leadlifecycle.Lead) error {
	row, err := fromDomain(l)
	if err != nil {
		return err
	}
	query := ext.Rebind(`UPDATE leads SET
		status = ?, call1 = ?, call2 = ?, call3 = ?,
		scheduled = ?, selected_date = ?, time_slot = ?, next_action_date = ?,
		appointment_booked = ?, booked_date = ?,
		preferred_experience_center = ?, preferred_products = ?, preferred_product_options = ?, remarks = ?,
		updated_at = ?
	WHERE id = ?`)
	if _, err := ext.ExecContext(ctx, query,
		row.Status, row.Call1, row.Call2, row.Call3,
		row.Scheduled, row.SelectedDate, row.TimeSlot, row.NextActionDate,
		row.AppointmentBooked, row.BookedDate,
		row.PreferredExperienceCenter, row.PreferredProducts, row.PreferredProductOptions, row.Remarks,
		row.UpdatedAt, row.ID,
	); err != nil {
		return fmt.Errorf("failed to update lead: %w", err)
	}
	return nil
}

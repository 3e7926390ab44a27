// Package calltracking bridges the console's click-to-call button to the
// telephony provider and keeps a best-effort log of outbound calls.
package calltracking

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/salonlink/backend/pkg/logger"
)

var (
	// ErrInvalidPhoneNumber is returned when phone number format is invalid
	ErrInvalidPhoneNumber = errors.New("invalid phone number format")
	// ErrProviderNotConfigured is returned when no telephony provider is set up
	ErrProviderNotConfigured = errors.New("telephony provider not configured")
)

// CallProvider defines the interface for telephony providers
type CallProvider interface {
	InitiateCall(ctx context.Context, from, to string) (*CallResult, error)
}

// CallResult holds the result of initiating a call
type CallResult struct {
	CallID    string
	Status    string
	StartedAt time.Time
}

// CallLog is one stored call record.
type CallLog struct {
	ID          string    `db:"id" json:"id"`
	LeadID      string    `db:"lead_id" json:"leadId,omitempty"`
	CallerID    string    `db:"caller_id" json:"callerId,omitempty"`
	PhoneNumber string    `db:"phone_number" json:"phoneNumber"`
	Direction   string    `db:"direction" json:"direction"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// Service handles click-to-call operations
type Service struct {
	db       *sqlx.DB
	provider CallProvider
	callerID string
	log      logger.Logger
}

// NewService creates a new call tracking service. The provider may be nil
// when telephony is not configured for the environment.
func NewService(db *sqlx.DB, provider CallProvider, callerID string, log logger.Logger) *Service {
	return &Service{
		db:       db,
		provider: provider,
		callerID: callerID,
		log:      log,
	}
}

// InitiateCall places an outbound call to the lead's phone. The call log
// write is best effort: a logging failure never fails a call that already
// went out.
func (s *Service) InitiateCall(ctx context.Context, leadID, userID, to string) (*CallLog, error) {
	if to == "" {
		return nil, ErrInvalidPhoneNumber
	}
	if s.provider == nil {
		return nil, ErrProviderNotConfigured
	}

	result, err := s.provider.InitiateCall(ctx, s.callerID, to)
	status := "initiated"
	if err != nil {
		status = "failed"
	}

	entry := &CallLog{
		ID:          uuid.NewString(),
		LeadID:      leadID,
		CallerID:    userID,
		PhoneNumber: to,
		Direction:   "outbound",
		Status:      status,
		CreatedAt:   time.Now().UTC(),
	}
	if result != nil && result.Status != "" {
		entry.Status = result.Status
	}

	query := s.db.Rebind(`INSERT INTO call_logs (id, lead_id, caller_id, phone_number, direction, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if _, logErr := s.db.ExecContext(ctx, query,
		entry.ID, entry.LeadID, entry.CallerID, entry.PhoneNumber, entry.Direction, entry.Status, entry.CreatedAt,
	); logErr != nil {
		s.log.Error("failed writing call log", "lead_id", leadID, "error", logErr)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to initiate call: %w", err)
	}
	return entry, nil
}

// ListByLead returns the call log for one lead, newest first.
func (s *Service) ListByLead(ctx context.Context, leadID string) ([]CallLog, error) {
	var logs []CallLog
	query := s.db.Rebind(`SELECT * FROM call_logs WHERE lead_id = ? ORDER BY created_at DESC`)
	if err := s.db.SelectContext(ctx, &logs, query, leadID); err != nil {
		return nil, fmt.Errorf("failed listing call logs: %w", err)
	}
	return logs, nil
}

// HTTPProvider talks to the telephony vendor's REST API.
type HTTPProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPProvider creates a provider against the configured vendor API.
func NewHTTPProvider(baseURL, apiKey string) *HTTPProvider {
	return &HTTPProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// InitiateCall asks the vendor to bridge a call between the agent line and
// the customer.
func (p *HTTPProvider) InitiateCall(ctx context.Context, from, to string) (*CallResult, error) {
	payload, err := json.Marshal(map[string]string{
		"from": from,
		"to":   to,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/calls", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	var body struct {
		CallID string `json:"call_id"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed decoding provider response: %w", err)
	}

	return &CallResult{
		CallID:    body.CallID,
		Status:    body.Status,
		StartedAt: time.Now().UTC(),
	}, nil
}

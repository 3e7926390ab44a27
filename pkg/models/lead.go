package models

import "time"

// CustomerResponse is the embedded customer shape on every lead
type CustomerResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	Pincode string `json:"pincode,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

// LeadResponse is the wire shape of one lead episode
type LeadResponse struct {
	ID       string           `json:"id"`
	Customer CustomerResponse `json:"customer"`

	Status string `json:"status"`

	Call1 string `json:"call1"`
	Call2 string `json:"call2"`
	Call3 string `json:"call3"`

	Scheduled    bool   `json:"scheduled"`
	SelectedDate string `json:"selectedDate,omitempty"`
	TimeSlot     string `json:"timeSlot,omitempty"`

	NextActionDate *time.Time `json:"nextActionDate,omitempty"`

	AppointmentBooked bool   `json:"appointmentBooked"`
	BookedDate        string `json:"bookedDate,omitempty"`

	PreferredExperienceCenter string                       `json:"preferredExperienceCenter,omitempty"`
	PreferredProducts         []string                     `json:"preferredProducts,omitempty"`
	PreferredProductOptions   map[string]map[string]string `json:"preferredProductOptions,omitempty"`
	Remarks                   string                       `json:"remarks,omitempty"`

	Source          string         `json:"source,omitempty"`
	PageType        string         `json:"pageType,omitempty"`
	CampaignID      string         `json:"campaignId,omitempty"`
	SpecificDetails map[string]any `json:"specificDetails,omitempty"`

	IsRevisit      bool   `json:"isRevisit"`
	AssignedTo     string `json:"assignedTo,omitempty"`
	AssignedToName string `json:"assignedToName,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LeadListRequest are the list query parameters
type LeadListRequest struct {
	Search string `query:"search"`
	Page   int    `query:"page" validate:"omitempty,min=1"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=200"`
	Filter string `query:"filter" validate:"omitempty,oneof=all fresh reminder revisit converted dropped"`
}

// LeadListResponse is the paginated list body
type LeadListResponse struct {
	Leads []LeadResponse `json:"leads"`
	Total int            `json:"total"`
}

// CreateLeadRequest captures a new inbound contact. Name and phone are the
// only hard requirements; provenance fields are immutable afterwards.
type CreateLeadRequest struct {
	Name            string         `json:"name" validate:"required"`
	Phone           string         `json:"phone" validate:"required"`
	Address         string         `json:"address"`
	City            string         `json:"city"`
	Pincode         string         `json:"pincode"`
	Notes           string         `json:"notes"`
	Source          string         `json:"source"`
	PageType        string         `json:"pageType"`
	CampaignID      string         `json:"campaignId"`
	SpecificDetails map[string]any `json:"specificDetails"`
}

// UpdateLeadRequest is the partial-save payload for PATCH /leads/:id.
// Pointer fields distinguish "absent" from an explicit empty value; only
// the call fields honor explicit clearing (with cascade), everything else
// treats empty as not provided.
type UpdateLeadRequest struct {
	Call1 *string `json:"call1"`
	Call2 *string `json:"call2"`
	Call3 *string `json:"call3"`

	Status *string `json:"status"`

	Scheduled    *bool   `json:"scheduled"`
	SelectedDate *string `json:"selectedDate"`
	TimeSlot     *string `json:"timeSlot"`

	NextActionDate *time.Time `json:"nextActionDate"`

	AppointmentBooked *bool   `json:"appointmentBooked"`
	BookedDate        *string `json:"bookedDate"`

	PreferredExperienceCenter *string                      `json:"preferredExperienceCenter"`
	PreferredProducts         []string                     `json:"preferredProducts"`
	PreferredProductOptions   map[string]map[string]string `json:"preferredProductOptions"`
	Remarks                   *string                      `json:"remarks"`

	// Customer fields editable from the lead form.
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	City    *string `json:"city"`
	Pincode *string `json:"pincode"`
	Notes   *string `json:"notes"`
}

// AssignLeadRequest reassigns ownership to a lead caller
type AssignLeadRequest struct {
	CallerID string `json:"callerId" validate:"required"`
}

// ChangeRecord is one audit-trail entry
type ChangeRecord struct {
	FieldName string    `json:"fieldName"`
	OldValue  string    `json:"oldValue"`
	NewValue  string    `json:"newValue"`
	ChangedBy string    `json:"changedBy"`
	ChangedAt time.Time `json:"changedAt"`
}

// LeadEpisode is one prior lead of the same customer with its history
type LeadEpisode struct {
	ID        string         `json:"id"`
	Status    string         `json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
	History   []ChangeRecord `json:"history"`
}

// LeadHistoryResponse is the body of GET /leads/:id/history
type LeadHistoryResponse struct {
	CurrentLead struct {
		ID      string         `json:"id"`
		History []ChangeRecord `json:"history"`
	} `json:"currentLead"`
	PriorLeads []LeadEpisode `json:"priorLeads"`
}

// ClickToCallRequest triggers an outbound call to a lead
type ClickToCallRequest struct {
	LeadID string `json:"leadId" validate:"required"`
}

package leads

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/salonlink/backend/pkg/leadlifecycle"
	"github.com/salonlink/backend/pkg/models"
)

// leadRow mirrors the leads table. Slice and map fields are stored as JSON
// text so the same row works on Postgres and SQLite.
type leadRow struct {
	ID         string `db:"id"`
	CustomerID string `db:"customer_id"`

	Status string `db:"status"`

	Call1 string `db:"call1"`
	Call2 string `db:"call2"`
	Call3 string `db:"call3"`

	Scheduled    bool   `db:"scheduled"`
	SelectedDate string `db:"selected_date"`
	TimeSlot     string `db:"time_slot"`

	NextActionDate *time.Time `db:"next_action_date"`

	AppointmentBooked bool   `db:"appointment_booked"`
	BookedDate        string `db:"booked_date"`

	PreferredExperienceCenter string `db:"preferred_experience_center"`
	PreferredProducts         string `db:"preferred_products"`
	PreferredProductOptions   string `db:"preferred_product_options"`
	Remarks                   string `db:"remarks"`

	Source          string `db:"source"`
	PageType        string `db:"page_type"`
	CampaignID      string `db:"campaign_id"`
	SpecificDetails string `db:"specific_details"`

	IsRevisit  bool   `db:"is_revisit"`
	AssignedTo string `db:"assigned_to"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// leadListRow is the joined shape returned by list queries.
type leadListRow struct {
	leadRow
	CustomerName    string `db:"customer_name"`
	CustomerPhone   string `db:"customer_phone"`
	CustomerAddress string `db:"customer_address"`
	CustomerCity    string `db:"customer_city"`
	CustomerPincode string `db:"customer_pincode"`
	CustomerNotes   string `db:"customer_notes"`
	AssignedToName  string `db:"assigned_to_name"`
}

const leadJoinQuery = `SELECT l.*,
	c.name AS customer_name,
	c.phone AS customer_phone,
	c.address AS customer_address,
	c.city AS customer_city,
	c.pincode AS customer_pincode,
	c.notes AS customer_notes,
	COALESCE(u.name, '') AS assigned_to_name
FROM leads l
JOIN customers c ON c.id = l.customer_id
LEFT JOIN users u ON u.id = l.assigned_to`

// toDomain decodes a row into the lifecycle engine's lead shape.
func (r leadRow) toDomain() (leadlifecycle.Lead, error) {
	status, err := leadlifecycle.ParseStatus(r.Status)
	if err != nil {
		return leadlifecycle.Lead{}, fmt.Errorf("lead %s has unrecognized stored status %q: %w", r.ID, r.Status, err)
	}

	var products []string
	if err := json.Unmarshal([]byte(r.PreferredProducts), &products); err != nil {
		return leadlifecycle.Lead{}, fmt.Errorf("lead %s has bad preferred_products: %w", r.ID, err)
	}
	var options map[string]map[string]string
	if err := json.Unmarshal([]byte(r.PreferredProductOptions), &options); err != nil {
		return leadlifecycle.Lead{}, fmt.Errorf("lead %s has bad preferred_product_options: %w", r.ID, err)
	}
	var details map[string]any
	if err := json.Unmarshal([]byte(r.SpecificDetails), &details); err != nil {
		return leadlifecycle.Lead{}, fmt.Errorf("lead %s has bad specific_details: %w", r.ID, err)
	}

	return leadlifecycle.Lead{
		ID:         r.ID,
		CustomerID: r.CustomerID,

		Status: status,

		Call1: r.Call1,
		Call2: r.Call2,
		Call3: r.Call3,

		Scheduled:    r.Scheduled,
		SelectedDate: r.SelectedDate,
		TimeSlot:     r.TimeSlot,

		NextActionDate: r.NextActionDate,

		AppointmentBooked: r.AppointmentBooked,
		BookedDate:        r.BookedDate,

		PreferredExperienceCenter: r.PreferredExperienceCenter,
		PreferredProducts:         products,
		PreferredProductOptions:   options,
		Remarks:                   r.Remarks,

		Source:          r.Source,
		PageType:        r.PageType,
		CampaignID:      r.CampaignID,
		SpecificDetails: details,

		IsRevisit:  r.IsRevisit,
		AssignedTo: r.AssignedTo,

		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}

// fromDomain encodes a lead back into row form.
func fromDomain(l leadlifecycle.Lead) (leadRow, error) {
	products := l.PreferredProducts
	if products == nil {
		products = []string{}
	}
	rawProducts, err := json.Marshal(products)
	if err != nil {
		return leadRow{}, fmt.Errorf("failed encoding preferred products: %w", err)
	}

	options := l.PreferredProductOptions
	if options == nil {
		options = map[string]map[string]string{}
	}
	rawOptions, err := json.Marshal(options)
	if err != nil {
		return leadRow{}, fmt.Errorf("failed encoding product options: %w", err)
	}

	details := l.SpecificDetails
	if details == nil {
		details = map[string]any{}
	}
	rawDetails, err := json.Marshal(details)
	if err != nil {
		return leadRow{}, fmt.Errorf("failed encoding specific details: %w", err)
	}

	return leadRow{
		ID:         l.ID,
		CustomerID: l.CustomerID,

		Status: l.Status.String(),

		Call1: l.Call1,
		Call2: l.Call2,
		Call3: l.Call3,

		Scheduled:    l.Scheduled,
		SelectedDate: l.SelectedDate,
		TimeSlot:     l.TimeSlot,

		NextActionDate: l.NextActionDate,

		AppointmentBooked: l.AppointmentBooked,
		BookedDate:        l.BookedDate,

		PreferredExperienceCenter: l.PreferredExperienceCenter,
		PreferredProducts:         string(rawProducts),
		PreferredProductOptions:   string(rawOptions),
		Remarks:                   l.Remarks,

		Source:          l.Source,
		PageType:        l.PageType,
		CampaignID:      l.CampaignID,
		SpecificDetails: string(rawDetails),

		IsRevisit:  l.IsRevisit,
		AssignedTo: l.AssignedTo,

		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}, nil
}

// toResponse builds the wire shape for one joined row.
func (r leadListRow) toResponse() (models.LeadResponse, error) {
	domain, err := r.toDomain()
	if err != nil {
		return models.LeadResponse{}, err
	}
	return models.LeadResponse{
		ID: domain.ID,
		Customer: models.CustomerResponse{
			ID:      domain.CustomerID,
			Name:    r.CustomerName,
			Phone:   r.CustomerPhone,
			Address: r.CustomerAddress,
			City:    r.CustomerCity,
			Pincode: r.CustomerPincode,
			Notes:   r.CustomerNotes,
		},

		Status: domain.Status.String(),

		Call1: domain.Call1,
		Call2: domain.Call2,
		Call3: domain.Call3,

		Scheduled:    domain.Scheduled,
		SelectedDate: domain.SelectedDate,
		TimeSlot:     domain.TimeSlot,

		NextActionDate: domain.NextActionDate,

		AppointmentBooked: domain.AppointmentBooked,
		BookedDate:        domain.BookedDate,

		PreferredExperienceCenter: domain.PreferredExperienceCenter,
		PreferredProducts:         domain.PreferredProducts,
		PreferredProductOptions:   domain.PreferredProductOptions,
		Remarks:                   domain.Remarks,

		Source:          domain.Source,
		PageType:        domain.PageType,
		CampaignID:      domain.CampaignID,
		SpecificDetails: domain.SpecificDetails,

		IsRevisit:      domain.IsRevisit,
		AssignedTo:     domain.AssignedTo,
		AssignedToName: r.AssignedToName,

		CreatedAt: domain.CreatedAt,
		UpdatedAt: domain.UpdatedAt,
	}, nil
}

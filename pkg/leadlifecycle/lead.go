package leadlifecycle

import "time"

// Lead is the engine's snapshot of one contact episode. Call fields hold ""
// when the call has not happened; the sequential invariant (call2 requires
// call1, call3 requires call2) is re-established by every ApplyUpdate.
type Lead struct {
	ID         string
	CustomerID string

	Status Status

	Call1 string
	Call2 string
	Call3 string

	Scheduled    bool
	SelectedDate string
	TimeSlot     string

	NextActionDate *time.Time

	AppointmentBooked bool
	BookedDate        string

	PreferredExperienceCenter string
	PreferredProducts         []string
	PreferredProductOptions   map[string]map[string]string
	Remarks                   string

	// Provenance, immutable after creation.
	Source          string
	PageType        string
	CampaignID      string
	SpecificDetails map[string]any

	IsRevisit  bool
	AssignedTo string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ChangeEntry is one append-only audit record: a single field that actually
// changed during one save.
type ChangeEntry struct {
	Field     string
	OldValue  string
	NewValue  string
	ChangedBy string
	ChangedAt time.Time
}

// Changes is a partial update proposal. Nil pointers mean "not provided".
// For call1/call2/call3 a pointer to "" is an explicit clear; everywhere
// else empty strings, empty slices and empty maps are treated as not
// provided and never overwrite a stored value.
type Changes struct {
	Call1 *string
	Call2 *string
	Call3 *string

	Status *string

	Scheduled    *bool
	SelectedDate *string
	TimeSlot     *string

	NextActionDate *time.Time

	AppointmentBooked *bool
	BookedDate        *string

	PreferredExperienceCenter *string
	PreferredProducts         []string
	PreferredProductOptions   map[string]map[string]string
	Remarks                   *string
}

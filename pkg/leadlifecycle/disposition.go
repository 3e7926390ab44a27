package leadlifecycle

import "fmt"

// Disposition is the categorical outcome of one call attempt. The list is
// ordered the way callers see it; it is configuration, not derived data.
type Disposition string

const (
	DispositionRNR               Disposition = "RNR"
	DispositionDisconnect        Disposition = "Disconnect"
	DispositionRequestedCallback Disposition = "Requested callback"
	DispositionNotInterested     Disposition = "Not Interested"
	DispositionInterested        Disposition = "Interested"
	DispositionNotReachable      Disposition = "Not reachable"
	DispositionBusy              Disposition = "Busy"
	DispositionSwitchOff         Disposition = "Switch off"
	DispositionWrongNumber       Disposition = "Wrong Number"
)

var dispositions = []Disposition{
	DispositionRNR,
	DispositionDisconnect,
	DispositionRequestedCallback,
	DispositionNotInterested,
	DispositionInterested,
	DispositionNotReachable,
	DispositionBusy,
	DispositionSwitchOff,
	DispositionWrongNumber,
}

// Dispositions returns the closed, ordered set of call outcome labels.
func Dispositions() []Disposition {
	out := make([]Disposition, len(dispositions))
	copy(out, dispositions)
	return out
}

// ValidDisposition reports whether label is a member of the closed set.
// The empty string is not a disposition; callers treat it as "no call yet".
func ValidDisposition(label string) bool {
	for _, d := range dispositions {
		if label == string(d) {
			return true
		}
	}
	return false
}

// ExperienceCenters is the fixed location list a lead can prefer.
var ExperienceCenters = []string{
	"Mumbai - Andheri", "Mumbai - Bandra",
	"Delhi - Saket", "Delhi - Connaught Place",
	"Bangalore - Indiranagar", "Bangalore - Koramangala",
	"Hyderabad - Banjara Hills", "Chennai - Anna Nagar", "Pune - Koregaon Park",
}

// TimeSlots is the fixed set of visit slots offered while scheduling.
var TimeSlots = []string{
	"Morning 10am–1pm", "Afternoon 1pm–4pm", "Evening 4pm–7pm",
}

// ValidExperienceCenter reports membership in ExperienceCenters.
func ValidExperienceCenter(name string) bool {
	for _, ec := range ExperienceCenters {
		if name == ec {
			return true
		}
	}
	return false
}

// ValidTimeSlot reports membership in TimeSlots.
func ValidTimeSlot(slot string) bool {
	for _, ts := range TimeSlots {
		if slot == ts {
			return true
		}
	}
	return false
}

// FieldError names the field that violated a closed-enumeration or
// required-field constraint. It is the recoverable validation error of the
// engine: nothing is persisted when one is returned.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

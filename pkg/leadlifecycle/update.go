package leadlifecycle

import (
	"encoding/json"
	"maps"
	"slices"
	"strconv"
	"time"
)

// ApplyUpdate merges a partial change proposal into the current lead state,
// enforcing the sequential call-tracking rules:
//
//  1. clearing call1 cascades: call2 and call3 are forced empty no matter
//     what else was proposed;
//  2. while the effective call1 is empty, call2/call3 proposals are stripped
//     rather than rejected (partial saves stay permissive on purpose);
//  3. same gate for call3 against the effective call2;
//  4. empty strings, slices and maps in other fields are "not provided" and
//     dropped instead of overwriting stored values.
//
// It returns the updated lead plus one audit entry per field whose value
// actually changed. An empty change set returns the lead untouched and no
// entries. On a *FieldError nothing must be persisted.
func ApplyUpdate(lead Lead, ch Changes, actor string, now time.Time) (Lead, []ChangeEntry, error) {
	updated := lead
	var entries []ChangeEntry

	record := func(field, oldVal, newVal string) {
		if oldVal == newVal {
			return
		}
		entries = append(entries, ChangeEntry{
			Field:     field,
			OldValue:  oldVal,
			NewValue:  newVal,
			ChangedBy: actor,
			ChangedAt: now,
		})
	}

	// Call chain first: every other rule depends on the effective call state.
	if ch.Call1 != nil {
		if *ch.Call1 != "" && !ValidDisposition(*ch.Call1) {
			return lead, nil, &FieldError{Field: "call1", Reason: "unknown call disposition"}
		}
		record("call1", updated.Call1, *ch.Call1)
		updated.Call1 = *ch.Call1
	}
	if updated.Call1 == "" {
		// Cascade clear; any call2/call3 proposal is stripped silently.
		record("call2", updated.Call2, "")
		record("call3", updated.Call3, "")
		updated.Call2, updated.Call3 = "", ""
	} else {
		if ch.Call2 != nil {
			if *ch.Call2 != "" && !ValidDisposition(*ch.Call2) {
				return lead, nil, &FieldError{Field: "call2", Reason: "unknown call disposition"}
			}
			record("call2", updated.Call2, *ch.Call2)
			updated.Call2 = *ch.Call2
		}
		if updated.Call2 == "" {
			record("call3", updated.Call3, "")
			updated.Call3 = ""
		} else if ch.Call3 != nil {
			if *ch.Call3 != "" && !ValidDisposition(*ch.Call3) {
				return lead, nil, &FieldError{Field: "call3", Reason: "unknown call disposition"}
			}
			record("call3", updated.Call3, *ch.Call3)
			updated.Call3 = *ch.Call3
		}
	}

	if ch.Status != nil && *ch.Status != "" {
		status, err := ParseStatus(*ch.Status)
		if err != nil {
			return lead, nil, &FieldError{Field: "status", Reason: err.Error()}
		}
		record("status", updated.Status.String(), status.String())
		updated.Status = status
	}

	if ch.Scheduled != nil {
		record("scheduled", strconv.FormatBool(updated.Scheduled), strconv.FormatBool(*ch.Scheduled))
		updated.Scheduled = *ch.Scheduled
	}
	if ch.SelectedDate != nil && *ch.SelectedDate != "" {
		record("selectedDate", updated.SelectedDate, *ch.SelectedDate)
		updated.SelectedDate = *ch.SelectedDate
	}
	if ch.TimeSlot != nil && *ch.TimeSlot != "" {
		if !ValidTimeSlot(*ch.TimeSlot) {
			return lead, nil, &FieldError{Field: "timeSlot", Reason: "unknown time slot"}
		}
		record("timeSlot", updated.TimeSlot, *ch.TimeSlot)
		updated.TimeSlot = *ch.TimeSlot
	}
	if ch.NextActionDate != nil && !ch.NextActionDate.IsZero() {
		record("nextActionDate", formatTimePtr(updated.NextActionDate), ch.NextActionDate.Format(time.RFC3339))
		t := *ch.NextActionDate
		updated.NextActionDate = &t
	}

	if ch.AppointmentBooked != nil {
		record("appointmentBooked", strconv.FormatBool(updated.AppointmentBooked), strconv.FormatBool(*ch.AppointmentBooked))
		updated.AppointmentBooked = *ch.AppointmentBooked
	}
	if ch.BookedDate != nil && *ch.BookedDate != "" {
		record("bookedDate", updated.BookedDate, *ch.BookedDate)
		updated.BookedDate = *ch.BookedDate
	}

	if ch.PreferredExperienceCenter != nil && *ch.PreferredExperienceCenter != "" {
		if !ValidExperienceCenter(*ch.PreferredExperienceCenter) {
			return lead, nil, &FieldError{Field: "preferredExperienceCenter", Reason: "unknown experience center"}
		}
		record("preferredExperienceCenter", updated.PreferredExperienceCenter, *ch.PreferredExperienceCenter)
		updated.PreferredExperienceCenter = *ch.PreferredExperienceCenter
	}
	if len(ch.PreferredProducts) > 0 && !slices.Equal(updated.PreferredProducts, ch.PreferredProducts) {
		record("preferredProducts", marshalValue(updated.PreferredProducts), marshalValue(ch.PreferredProducts))
		updated.PreferredProducts = slices.Clone(ch.PreferredProducts)
	}
	if len(ch.PreferredProductOptions) > 0 && !optionsEqual(updated.PreferredProductOptions, ch.PreferredProductOptions) {
		record("preferredProductOptions", marshalValue(updated.PreferredProductOptions), marshalValue(ch.PreferredProductOptions))
		updated.PreferredProductOptions = cloneOptions(ch.PreferredProductOptions)
	}
	if ch.Remarks != nil && *ch.Remarks != "" {
		record("remarks", updated.Remarks, *ch.Remarks)
		updated.Remarks = *ch.Remarks
	}

	if len(entries) == 0 {
		return lead, nil, nil
	}

	updated.UpdatedAt = now
	return updated, entries, nil
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

// marshalValue renders slices and maps for the audit trail. Empty values
// render as "" so a first-time set reads as old="" new="[...]".
func marshalValue(v any) string {
	switch val := v.(type) {
	case []string:
		if len(val) == 0 {
			return ""
		}
	case map[string]map[string]string:
		if len(val) == 0 {
			return ""
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

func optionsEqual(a, b map[string]map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for product, opts := range a {
		other, ok := b[product]
		if !ok || !maps.Equal(opts, other) {
			return false
		}
	}
	return true
}

func cloneOptions(in map[string]map[string]string) map[string]map[string]string {
	out := make(map[string]map[string]string, len(in))
	for product, opts := range in {
		out[product] = maps.Clone(opts)
	}
	return out
}

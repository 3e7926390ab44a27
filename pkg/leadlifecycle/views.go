package leadlifecycle

// Derived views over a lead snapshot. These are pure functions re-evaluated
// on every read; nothing here is materialized or cached, so correctness
// depends only on the rows passed in and the caller's clock.

import "time"

// IsActive reports whether the lead is still open: terminal statuses
// (dropped, every converted variant) close a lead without deleting it.
func IsActive(l Lead) bool {
	return !l.Status.Terminal()
}

// Active returns the open leads.
func Active(leads []Lead) []Lead {
	return filter(leads, IsActive)
}

// Fresh returns active leads nobody has called yet.
func Fresh(leads []Lead) []Lead {
	return filter(leads, func(l Lead) bool {
		return IsActive(l) && l.Call1 == ""
	})
}

// Reminders returns active leads whose next-action date has come due (at or
// before the end of "today" around now) and that have not been touched since
// the reminder was set.
func Reminders(leads []Lead, now time.Time) []Lead {
	eod := EndOfDay(now)
	return filter(leads, func(l Lead) bool {
		if !IsActive(l) || l.NextActionDate == nil {
			return false
		}
		nad := *l.NextActionDate
		return !nad.After(eod) && l.UpdatedAt.Before(nad)
	})
}

// Revisits returns active leads that are repeat episodes for their customer.
func Revisits(leads []Lead) []Lead {
	return filter(leads, func(l Lead) bool {
		return IsActive(l) && l.IsRevisit
	})
}

// ConvertedLeads returns every lead closed through any conversion channel.
func ConvertedLeads(leads []Lead) []Lead {
	return filter(leads, func(l Lead) bool {
		return l.Status.Kind == KindConverted
	})
}

// DroppedLeads returns every dropped lead.
func DroppedLeads(leads []Lead) []Lead {
	return filter(leads, func(l Lead) bool {
		return l.Status.Kind == KindDropped
	})
}

// EndOfDay returns 23:59:59.999999999 local time of now's calendar day,
// the boundary the reminder view compares against.
func EndOfDay(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), now.Location())
}

func filter(leads []Lead, keep func(Lead) bool) []Lead {
	out := make([]Lead, 0, len(leads))
	for _, l := range leads {
		if keep(l) {
			out = append(out, l)
		}
	}
	return out
}

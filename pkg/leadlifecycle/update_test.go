package leadlifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func baseLead() Lead {
	created := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	return Lead{
		ID:         "lead-1",
		CustomerID: "cust-1",
		Status:     StatusNew,
		CreatedAt:  created,
		UpdatedAt:  created,
	}
}

func assertCallInvariant(t *testing.T, l Lead) {
	t.Helper()
	if l.Call1 == "" {
		assert.Empty(t, l.Call2, "call2 must be empty while call1 is empty")
	}
	if l.Call2 == "" {
		assert.Empty(t, l.Call3, "call3 must be empty while call2 is empty")
	}
}

func TestApplyUpdate_SetCall1(t *testing.T) {
	now := time.Date(2025, 3, 11, 10, 0, 0, 0, time.UTC)

	updated, entries, err := ApplyUpdate(baseLead(), Changes{Call1: str("Interested")}, "caller-7", now)

	require.NoError(t, err)
	assert.Equal(t, "Interested", updated.Call1)
	require.Len(t, entries, 1)
	assert.Equal(t, "call1", entries[0].Field)
	assert.Equal(t, "", entries[0].OldValue)
	assert.Equal(t, "Interested", entries[0].NewValue)
	assert.Equal(t, "caller-7", entries[0].ChangedBy)
	assert.Equal(t, now, updated.UpdatedAt)
	assertCallInvariant(t, updated)
}

func TestApplyUpdate_ClearCall1CascadesToLaterCalls(t *testing.T) {
	lead := baseLead()
	lead.Call1 = "Interested"
	lead.Call2 = "Requested callback"
	lead.Call3 = "Wrong Number"

	updated, entries, err := ApplyUpdate(lead, Changes{Call1: str("")}, "caller-7", time.Now())

	require.NoError(t, err)
	assert.Empty(t, updated.Call1)
	assert.Empty(t, updated.Call2)
	assert.Empty(t, updated.Call3)
	assert.Len(t, entries, 3)
	assertCallInvariant(t, updated)
}

func TestApplyUpdate_ClearCall1WinsOverProposedLaterCalls(t *testing.T) {
	lead := baseLead()
	lead.Call1 = "Busy"
	lead.Call2 = "Interested"

	// Clearing call1 while also proposing call3: the cascade wins.
	updated, entries, err := ApplyUpdate(lead, Changes{
		Call1: str(""),
		Call3: str("Interested"),
	}, "caller-7", time.Now())

	require.NoError(t, err)
	assert.Empty(t, updated.Call1)
	assert.Empty(t, updated.Call2)
	assert.Empty(t, updated.Call3)
	assert.Len(t, entries, 2) // call1 and call2 cleared; call3 was already empty
	assertCallInvariant(t, updated)
}

func TestApplyUpdate_Call2StrippedWithoutCall1(t *testing.T) {
	updated, entries, err := ApplyUpdate(baseLead(), Changes{Call2: str("Interested")}, "caller-7", time.Now())

	require.NoError(t, err)
	assert.Empty(t, updated.Call1)
	assert.Empty(t, updated.Call2, "call2 proposal must be stripped while call1 is empty")
	assert.Empty(t, entries)
	assertCallInvariant(t, updated)
}

func TestApplyUpdate_Call3StrippedWithoutCall2(t *testing.T) {
	lead := baseLead()
	lead.Call1 = "Interested"

	updated, entries, err := ApplyUpdate(lead, Changes{Call3: str("Busy")}, "caller-7", time.Now())

	require.NoError(t, err)
	assert.Empty(t, updated.Call3)
	assert.Empty(t, entries)
	assertCallInvariant(t, updated)
}

func TestApplyUpdate_Call2AllowedWhenCall1SetInSameProposal(t *testing.T) {
	updated, entries, err := ApplyUpdate(baseLead(), Changes{
		Call1: str("RNR"),
		Call2: str("Interested"),
	}, "caller-7", time.Now())

	require.NoError(t, err)
	assert.Equal(t, "RNR", updated.Call1)
	assert.Equal(t, "Interested", updated.Call2)
	assert.Len(t, entries, 2)
	assertCallInvariant(t, updated)
}

func TestApplyUpdate_UnknownDispositionRejected(t *testing.T) {
	_, entries, err := ApplyUpdate(baseLead(), Changes{Call1: str("Left a voicemail")}, "caller-7", time.Now())

	require.Error(t, err)
	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "call1", fieldErr.Field)
	assert.Empty(t, entries)
}

func TestApplyUpdate_UnknownStatusRejected(t *testing.T) {
	for _, status := range []string{"qualified", "converted:Telepathy", "CONVERTED", "dropped "} {
		_, _, err := ApplyUpdate(baseLead(), Changes{Status: str(status)}, "caller-7", time.Now())
		var fieldErr *FieldError
		require.ErrorAs(t, err, &fieldErr, "status %q must be rejected", status)
		assert.Equal(t, "status", fieldErr.Field)
	}
}

func TestApplyUpdate_ConvertedStatusCarriesChannel(t *testing.T) {
	updated, entries, err := ApplyUpdate(baseLead(), Changes{Status: str("converted:Marked to EC")}, "admin-1", time.Now())

	require.NoError(t, err)
	assert.Equal(t, KindConverted, updated.Status.Kind)
	assert.Equal(t, ChannelMarkedToEC, updated.Status.Channel)
	assert.Equal(t, "converted:Marked to EC", updated.Status.String())
	require.Len(t, entries, 1)
	assert.Equal(t, "status", entries[0].Field)
	assert.Equal(t, "new", entries[0].OldValue)
}

func TestApplyUpdate_EmptyChangeSetIsNoOp(t *testing.T) {
	lead := baseLead()
	lead.Call1 = "Interested"
	lead.Remarks = "spoke briefly"
	before := lead.UpdatedAt

	updated, entries, err := ApplyUpdate(lead, Changes{}, "caller-7", time.Now())

	require.NoError(t, err)
	assert.Equal(t, lead, updated)
	assert.Empty(t, entries)
	assert.Equal(t, before, updated.UpdatedAt)
}

func TestApplyUpdate_EmptyValuesNeverOverwrite(t *testing.T) {
	lead := baseLead()
	lead.Remarks = "prefers evenings"
	lead.SelectedDate = "2025-03-20"
	lead.PreferredProducts = []string{"Argan Hair Serum"}
	lead.PreferredProductOptions = map[string]map[string]string{
		"Argan Hair Serum": {"Size": "100ml"},
	}

	updated, entries, err := ApplyUpdate(lead, Changes{
		Remarks:                 str(""),
		SelectedDate:            str(""),
		PreferredProducts:       []string{},
		PreferredProductOptions: map[string]map[string]string{},
	}, "caller-7", time.Now())

	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, "prefers evenings", updated.Remarks)
	assert.Equal(t, "2025-03-20", updated.SelectedDate)
	assert.Equal(t, []string{"Argan Hair Serum"}, updated.PreferredProducts)
	assert.Equal(t, "100ml", updated.PreferredProductOptions["Argan Hair Serum"]["Size"])
}

func TestApplyUpdate_OneAuditEntryPerChangedField(t *testing.T) {
	now := time.Date(2025, 3, 11, 12, 30, 0, 0, time.UTC)
	nextAction := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	updated, entries, err := ApplyUpdate(baseLead(), Changes{
		Call1:             str("Interested"),
		Status:            str("contacted"),
		Scheduled:         boolPtr(true),
		TimeSlot:          str("Evening 4pm–7pm"),
		NextActionDate:    &nextAction,
		AppointmentBooked: boolPtr(false), // unchanged: already false
		Remarks:           str("wants a salon near Bandra"),
	}, "caller-7", now)

	require.NoError(t, err)
	fields := make(map[string]ChangeEntry, len(entries))
	for _, e := range entries {
		_, dup := fields[e.Field]
		require.False(t, dup, "field %s audited more than once", e.Field)
		fields[e.Field] = e
	}
	assert.Len(t, fields, 6) // call1, status, scheduled, timeSlot, nextActionDate, remarks
	assert.NotContains(t, fields, "appointmentBooked", "unchanged fields produce no audit entry")
	assert.Equal(t, "false", fields["scheduled"].OldValue)
	assert.Equal(t, "true", fields["scheduled"].NewValue)
	require.NotNil(t, updated.NextActionDate)
	assert.True(t, updated.NextActionDate.Equal(nextAction))
}

func TestApplyUpdate_RepeatedSaveIsIdempotent(t *testing.T) {
	lead := baseLead()
	ch := Changes{Call1: str("Interested"), Remarks: str("call back tomorrow")}

	first, entries1, err := ApplyUpdate(lead, ch, "caller-7", time.Now())
	require.NoError(t, err)
	assert.Len(t, entries1, 2)

	second, entries2, err := ApplyUpdate(first, ch, "caller-7", time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Empty(t, entries2)
	assert.Equal(t, first, second)
}

func TestApplyUpdate_InvalidExperienceCenterRejected(t *testing.T) {
	_, _, err := ApplyUpdate(baseLead(), Changes{PreferredExperienceCenter: str("Goa - Panjim")}, "caller-7", time.Now())

	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "preferredExperienceCenter", fieldErr.Field)
}

func TestParseStatus_RoundTrip(t *testing.T) {
	for _, s := range []string{"new", "contacted", "dropped", "converted:Online Order", "converted:Store Visit"} {
		parsed, err := ParseStatus(s)
		require.NoError(t, err)
		assert.Equal(t, s, parsed.String())
	}
}

func TestStatus_Terminal(t *testing.T) {
	assert.False(t, StatusNew.Terminal())
	assert.False(t, StatusContacted.Terminal())
	assert.True(t, StatusDropped.Terminal())
	assert.True(t, Converted(ChannelOnlineOrder).Terminal())
}

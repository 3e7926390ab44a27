package leadlifecycle

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StatusKind is the coarse lifecycle bucket of a lead.
type StatusKind string

const (
	KindNew       StatusKind = "new"
	KindContacted StatusKind = "contacted"
	KindConverted StatusKind = "converted"
	KindDropped   StatusKind = "dropped"
)

// Channel identifies how a converted lead was closed. The set is closed;
// anything else is rejected at the boundary.
type Channel string

const (
	ChannelMarkedToEC  Channel = "Marked to EC"
	ChannelOnlineOrder Channel = "Online Order"
	ChannelStoreVisit  Channel = "Store Visit"
)

var channels = []Channel{ChannelMarkedToEC, ChannelOnlineOrder, ChannelStoreVisit}

// Channels returns the closed set of conversion channels.
func Channels() []Channel {
	out := make([]Channel, len(channels))
	copy(out, channels)
	return out
}

// Status is the lead status as a tagged value. The wire format keeps the
// legacy "converted:<channel>" string, but inside the engine the channel is
// carried as a separate field instead of being re-parsed everywhere.
type Status struct {
	Kind    StatusKind
	Channel Channel // set only when Kind == KindConverted
}

var (
	StatusNew       = Status{Kind: KindNew}
	StatusContacted = Status{Kind: KindContacted}
	StatusDropped   = Status{Kind: KindDropped}
)

// Converted builds a converted status for the given channel.
func Converted(ch Channel) Status {
	return Status{Kind: KindConverted, Channel: ch}
}

// ParseStatus parses the wire representation of a status. Unrecognized
// values, including unknown conversion channels, are rejected.
func ParseStatus(s string) (Status, error) {
	switch s {
	case string(KindNew):
		return StatusNew, nil
	case string(KindContacted):
		return StatusContacted, nil
	case string(KindDropped):
		return StatusDropped, nil
	}
	if rest, ok := strings.CutPrefix(s, string(KindConverted)+":"); ok {
		for _, ch := range channels {
			if rest == string(ch) {
				return Converted(ch), nil
			}
		}
		return Status{}, fmt.Errorf("unknown conversion channel %q", rest)
	}
	return Status{}, fmt.Errorf("unknown status %q", s)
}

// String renders the wire representation ("new", "converted:Store Visit", ...).
func (s Status) String() string {
	if s.Kind == KindConverted {
		return string(KindConverted) + ":" + string(s.Channel)
	}
	if s.Kind == "" {
		return string(KindNew)
	}
	return string(s.Kind)
}

// Terminal reports whether the status closes the lead. Closed leads are
// excluded from every active view.
func (s Status) Terminal() bool {
	return s.Kind == KindDropped || s.Kind == KindConverted
}

// MarshalJSON encodes the status as its wire string.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes and validates the wire string.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

package model

import (
	"encoding/json"
	"fmt"
)

// ownerSource is the wire value for human-attached events.
const ownerSource = "owner"

// Source identifies who attached an event to a task: a human owner, or the
// automated detector that flagged it. It is a tagged variant rather than a
// free-form string; the wire representation is "owner" or the detector name.
type Source struct {
	detector string
}

// HumanSource returns the source for human-attached events.
func HumanSource() Source {
	return Source{}
}

// DetectorSource returns the source for events attached by the named
// automated detector. An empty name degrades to HumanSource.
func DetectorSource(name string) Source {
	if name == ownerSource {
		return Source{}
	}
	return Source{detector: name}
}

// IsHuman reports whether the event was attached (or confirmed) by a human.
func (s Source) IsHuman() bool {
	return s.detector == ""
}

// Detector returns the detector name and true when the event was attached by
// an automated detector.
func (s Source) Detector() (string, bool) {
	return s.detector, s.detector != ""
}

// String returns the wire representation: "owner" or the detector name.
func (s Source) String() string {
	if s.detector == "" {
		return ownerSource
	}
	return s.detector
}

// MarshalJSON encodes the source as its wire string.
func (s Source) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes "owner" (or empty/null) as human, anything else as a
// detector name.
func (s *Source) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = Source{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode event source: %w", err)
	}
	if raw == "" || raw == ownerSource {
		*s = Source{}
	} else {
		*s = Source{detector: raw}
	}
	return nil
}

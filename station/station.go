// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

// Package station describes the deployed stations: the read-mostly
// catalog the hub consults for a station's language, channel kind,
// and quiet hours. The catalog is a JSONC file so operators can
// comment their deployments.
package station

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/tidwall/jsonc"

	"github.com/foyer-foundation/foyer/dialog"
)

// Descriptor is one deployed station's static facts.
type Descriptor struct {
	// ID is the station's stable name ("kitchen", "workshop").
	ID string `json:"id"`

	// Name is the human-readable label.
	Name string `json:"name"`

	// Language is the station's spoken language.
	Language dialog.Language `json:"language"`

	// TextOnly marks minimal stations that speak the simplified text
	// channel.
	TextOnly bool `json:"text_only,omitempty"`

	// QuietStart and QuietEnd bound the daily quiet hours as "HH:MM"
	// local time. The window may cross midnight. Both empty means the
	// station is never quiet.
	QuietStart string `json:"quiet_start,omitempty"`
	QuietEnd   string `json:"quiet_end,omitempty"`
}

// Kind returns the session kind the station speaks.
func (d Descriptor) Kind() dialog.SessionKind {
	if d.TextOnly {
		return dialog.KindText
	}
	return dialog.KindBinary
}

// QuietAt reports whether the station is inside its quiet hours at t.
func (d Descriptor) QuietAt(t time.Time) bool {
	if d.QuietStart == "" || d.QuietEnd == "" {
		return false
	}
	start, err := minuteOfDay(d.QuietStart)
	if err != nil {
		return false
	}
	end, err := minuteOfDay(d.QuietEnd)
	if err != nil {
		return false
	}

	minute := t.Hour()*60 + t.Minute()
	if start <= end {
		return minute >= start && minute < end
	}
	// Window crosses midnight: quiet from start until end next day.
	return minute >= start || minute < end
}

func minuteOfDay(value string) (int, error) {
	parsed, err := time.Parse("15:04", value)
	if err != nil {
		return 0, fmt.Errorf("station: bad time of day %q: %w", value, err)
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}

// Catalog is the set of deployed stations, keyed by ID.
type Catalog struct {
	stations map[string]Descriptor
}

// LoadCatalog reads a JSONC station catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("station: reading catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog parses JSONC catalog bytes: a top-level array of
// descriptors.
func ParseCatalog(data []byte) (*Catalog, error) {
	var descriptors []Descriptor
	if err := json.Unmarshal(jsonc.ToJSON(data), &descriptors); err != nil {
		return nil, fmt.Errorf("station: parsing catalog: %w", err)
	}

	stations := make(map[string]Descriptor, len(descriptors))
	for _, descriptor := range descriptors {
		if descriptor.ID == "" {
			return nil, fmt.Errorf("station: catalog entry without id")
		}
		if _, exists := stations[descriptor.ID]; exists {
			return nil, fmt.Errorf("station: duplicate catalog id %q", descriptor.ID)
		}
		stations[descriptor.ID] = descriptor
	}
	return &Catalog{stations: stations}, nil
}

// Lookup returns the descriptor for a station id.
func (c *Catalog) Lookup(id string) (Descriptor, bool) {
	descriptor, ok := c.stations[id]
	return descriptor, ok
}

// Len returns the number of cataloged stations.
func (c *Catalog) Len() int { return len(c.stations) }

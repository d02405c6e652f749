// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"reflect"
	"testing"
)

type sample struct {
	Name   string         `json:"name"`
	Count  int            `json:"count"`
	Nested map[string]any `json:"nested,omitempty"`
}

func TestMarshalDeterministic(t *testing.T) {
	value := sample{
		Name:  "kitchen",
		Count: 3,
		Nested: map[string]any{
			"zeta":  "last",
			"alpha": "first",
			"mid":   int64(7),
		},
	}

	first, err := Marshal(value)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	second, err := Marshal(value)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("deterministic encoding produced differing bytes")
	}
}

func TestRoundTrip(t *testing.T) {
	value := sample{Name: "hall", Count: -2}
	data, err := Marshal(value)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded sample
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(decoded, value) {
		t.Errorf("round trip = %+v, want %+v", decoded, value)
	}
}

func TestAnyTargetDecodesStringKeyedMaps(t *testing.T) {
	data, err := Marshal(map[string]any{"key": "value"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	m, ok := decoded.(map[string]any)
	if !ok {
		t.Fatalf("decoded type = %T, want map[string]any", decoded)
	}
	if m["key"] != "value" {
		t.Errorf("decoded[key] = %v, want value", m["key"])
	}
}

func TestStreamEncodeDecode(t *testing.T) {
	var buffer bytes.Buffer
	encoder := NewEncoder(&buffer)
	for _, name := range []string{"one", "two"} {
		if err := encoder.Encode(sample{Name: name}); err != nil {
			t.Fatalf("Encode(%s): %v", name, err)
		}
	}

	decoder := NewDecoder(&buffer)
	for _, want := range []string{"one", "two"} {
		var decoded sample
		if err := decoder.Decode(&decoded); err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if decoded.Name != want {
			t.Errorf("decoded.Name = %q, want %q", decoded.Name, want)
		}
	}
}

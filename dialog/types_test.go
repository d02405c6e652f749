// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

package dialog

import "testing"

func TestRequestValidate(t *testing.T) {
	valid := Request{From: 2, To: 1, Language: "eng", Message: "hello"}

	tests := []struct {
		name    string
		mutate  func(*Request)
		wantErr bool
	}{
		{"valid text", func(r *Request) {}, false},
		{"valid intents only", func(r *Request) { r.Message = ""; r.Intents = []Intent{"play-media"} }, false},
		{"valid audio only", func(r *Request) { r.Message = ""; r.Audio = &AudioClip{} }, false},
		{"missing from", func(r *Request) { r.From = None }, true},
		{"missing to", func(r *Request) { r.To = None }, true},
		{"missing language", func(r *Request) { r.Language = "" }, true},
		{"empty payload", func(r *Request) { r.Message = "" }, true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			request := valid
			test.mutate(&request)
			err := request.Validate()
			if (err != nil) != test.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, test.wantErr)
			}
		})
	}
}

func TestResponseValidate(t *testing.T) {
	valid := Response{From: 1, To: 2, Language: "eng", Message: "ok"}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid response: %v", err)
	}

	broadcast := Response{From: 1, To: Broadcast, Language: "eng", Message: "everyone"}
	if err := broadcast.Validate(); err != nil {
		t.Errorf("broadcast response: %v", err)
	}

	missing := Response{From: 1, To: 2}
	if err := missing.Validate(); err == nil {
		t.Error("response without language should fail validation")
	}
}

func TestParseClientID(t *testing.T) {
	id, err := ParseClientID("42")
	if err != nil || id != 42 {
		t.Errorf("ParseClientID(42) = (%v, %v)", id, err)
	}
	if _, err := ParseClientID("not-a-number"); err == nil {
		t.Error("ParseClientID on garbage should fail")
	}
}

func TestHasIntent(t *testing.T) {
	request := Request{Intents: []Intent{IntentClientStartup, "play-media"}}
	if !request.HasIntent(IntentClientStartup) {
		t.Error("HasIntent(client-startup) = false")
	}
	if request.HasIntent(IntentClientShutdown) {
		t.Error("HasIntent(client-shutdown) = true")
	}
}

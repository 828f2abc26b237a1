// Clearcast Playout Engine
// Copyright 2026 Clearcast Broadcast Systems
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clearcast/playoutd

package validation

import (
	"testing"
)

type mediaFixture struct {
	Name       string `validate:"required"`
	Kind       string `validate:"required,mediakind"`
	DurationMs int64  `validate:"mediaduration"`
}

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()
	if v1 != v2 {
		t.Error("expected GetValidator to return the same singleton instance")
	}
}

func TestValidateStruct_Valid(t *testing.T) {
	req := mediaFixture{Name: "ident-1", Kind: "local_file", DurationMs: 30000}
	if err := ValidateStruct(&req); err != nil {
		t.Errorf("expected no validation error, got: %v", err)
	}
}

func TestValidateStruct_MissingRequired(t *testing.T) {
	req := mediaFixture{Kind: "local_file", DurationMs: 1000}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected validation error for missing Name")
	}
	if len(err.Errors()) != 1 || err.Errors()[0].Field() != "Name" {
		t.Errorf("expected a single Name error, got: %+v", err.Errors())
	}
}

func TestMediaKind_Valid(t *testing.T) {
	for _, kind := range []string{"local_file", "web_stream", "rtmp", "graphics_layer"} {
		req := mediaFixture{Name: "x", Kind: kind, DurationMs: 0}
		if err := ValidateStruct(&req); err != nil {
			t.Errorf("kind %q: expected valid, got: %v", kind, err)
		}
	}
}

func TestMediaKind_Invalid(t *testing.T) {
	req := mediaFixture{Name: "x", Kind: "ftp_stream", DurationMs: 0}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected validation error for unknown media kind")
	}
	if err.Errors()[0].Tag() != "mediakind" {
		t.Errorf("expected mediakind tag, got %q", err.Errors()[0].Tag())
	}
}

func TestMediaDuration_InfiniteSentinel(t *testing.T) {
	req := mediaFixture{Name: "live-feed", Kind: "rtmp", DurationMs: -1}
	if err := ValidateStruct(&req); err != nil {
		t.Errorf("expected -1 (infinite) duration to be valid, got: %v", err)
	}
}

func TestMediaDuration_NegativeNonSentinel(t *testing.T) {
	req := mediaFixture{Name: "x", Kind: "local_file", DurationMs: -2}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected validation error for duration < -1")
	}
	if err.Errors()[0].Tag() != "mediaduration" {
		t.Errorf("expected mediaduration tag, got %q", err.Errors()[0].Tag())
	}
}

func TestToAPIError_SingleError(t *testing.T) {
	req := mediaFixture{Kind: "local_file"}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected validation error")
	}
	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR code, got %s", apiErr.Code)
	}
	if apiErr.Details["field"] != "Name" {
		t.Errorf("expected field detail Name, got %v", apiErr.Details["field"])
	}
}

func TestToAPIError_MultipleErrors(t *testing.T) {
	req := mediaFixture{Kind: "ftp_stream", DurationMs: -5}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected validation error")
	}
	apiErr := err.ToAPIError()
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 3 {
		t.Errorf("expected 3 field errors (Name, Kind, DurationMs), got: %+v", apiErr.Details)
	}
}

func TestErrorMessages(t *testing.T) {
	req := mediaFixture{Kind: "rtmp_relay", DurationMs: 0}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	if msg == "" {
		t.Error("expected non-empty combined error message")
	}
}

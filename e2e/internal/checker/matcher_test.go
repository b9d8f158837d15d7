package checker

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/foliolab/foliage-platform/e2e/internal/observer"
	"github.com/foliolab/foliage-platform/e2e/internal/scenario"
)

func TestMatchValue(t *testing.T) {
	tests := []struct {
		name     string
		actual   interface{}
		expected interface{}
		want     bool
	}{
		{"equal strings", "playing", "playing", true},
		{"different strings", "paused", "playing", false},
		{"bool match", true, true, true},
		{"bool mismatch", false, true, false},
		{"int against json float", float64(288), 288, true},
		{"float mismatch", float64(288.5), 288, false},
		{"numeric string from redis", "42", 42, true},
		{"regex match", "canopy/frame/helsinki-trees", "~^canopy/frame/~", true},
		{"regex mismatch", "canopy/state/helsinki-trees", "~^canopy/frame/~", false},
		{"greater than", float64(288.4), ">288", true},
		{"greater than fails", float64(287.0), ">288", false},
		{"greater equal on string", "288", ">=288", true},
		{"less equal", float64(365), "<=365", true},
		{"comparison on non-numeric", "soon", ">5", false},
		{"nil expected nil actual", nil, nil, true},
		{"nil actual", nil, "x", false},
		{
			"map subset",
			map[string]interface{}{"dataset": "d", "playing": true, "doy": float64(288)},
			map[string]interface{}{"playing": true},
			true,
		},
		{
			"map missing key",
			map[string]interface{}{"dataset": "d"},
			map[string]interface{}{"playing": true},
			false,
		},
		{
			"map nested mismatch",
			map[string]interface{}{"daylight": map[string]interface{}{"day_length_min": float64(600)}},
			map[string]interface{}{"daylight": map[string]interface{}{"day_length_min": ">700"}},
			false,
		},
		{
			"array match",
			[]interface{}{"Acer rubrum", "Quercus robur"},
			[]interface{}{"Acer rubrum", "Quercus robur"},
			true,
		},
		{
			"array length mismatch",
			[]interface{}{"Acer rubrum"},
			[]interface{}{"Acer rubrum", "Quercus robur"},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reason := MatchValue(tt.actual, tt.expected)
			if got != tt.want {
				t.Errorf("MatchValue(%v, %v) = %v (%s), want %v", tt.actual, tt.expected, got, reason, tt.want)
			}
			if !got && reason == "" {
				t.Error("mismatch must carry a reason")
			}
		})
	}
}

func TestMatchValuePackedBytes(t *testing.T) {
	// Four entities worth of RGBA, like a frame color buffer.
	buf := make([]byte, 16)
	encoded := base64.StdEncoding.EncodeToString(buf)

	if ok, reason := MatchValue(encoded, "bytes:16"); !ok {
		t.Errorf("bytes:16 should match a 16-byte buffer: %s", reason)
	}
	if ok, _ := MatchValue(encoded, "bytes:20"); ok {
		t.Error("bytes:20 must not match a 16-byte buffer")
	}
	if ok, reason := MatchValue("not base64!!", "bytes:16"); ok {
		t.Errorf("invalid base64 must not match, got pass (%s)", reason)
	}
	if ok, _ := MatchValue(float64(16), "bytes:16"); ok {
		t.Error("non-string values must not match a bytes matcher")
	}
}

func TestCheckMessageUsesLatest(t *testing.T) {
	exp := scenario.Expectation{
		Topic:   "canopy/state/helsinki-trees",
		Payload: map[string]interface{}{"playing": false, "doy": ">=288"},
	}

	messages := []observer.CapturedMessage{
		{Topic: exp.Topic, Payload: map[string]interface{}{"playing": true, "doy": float64(250)}},
		{Topic: exp.Topic, Payload: map[string]interface{}{"playing": false, "doy": float64(288)}},
	}

	passed, reason, _ := CheckMessage(exp, messages)
	if !passed {
		t.Errorf("CheckMessage should pass against the latest message: %s", reason)
	}
}

func TestCheckMessageFailures(t *testing.T) {
	exp := scenario.Expectation{
		Topic:   "canopy/frame/helsinki-trees",
		Payload: map[string]interface{}{"playing": true},
	}

	passed, reason, _ := CheckMessage(exp, nil)
	if passed {
		t.Fatal("CheckMessage must fail with no captured messages")
	}
	if !strings.Contains(reason, "no messages") {
		t.Errorf("reason = %q, want it to mention missing messages", reason)
	}

	passed, reason, _ = CheckMessage(exp, []observer.CapturedMessage{
		{Topic: exp.Topic, Payload: "raw text"},
	})
	if passed {
		t.Fatal("CheckMessage must fail on a non-object payload")
	}
	if !strings.Contains(reason, "not a JSON object") {
		t.Errorf("reason = %q, want it to mention the payload shape", reason)
	}
}

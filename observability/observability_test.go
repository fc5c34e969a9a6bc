package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestFields(t *testing.T) {
	tests := []struct {
		field Field
		key   string
		value interface{}
	}{
		{String("name", "doc.pdf"), "name", "doc.pdf"},
		{Int("page", 3), "page", 3},
		{Int64("bytes", 42), "bytes", int64(42)},
		{Float64("area", 1.5), "area", 1.5},
	}
	for _, tt := range tests {
		if tt.field.Key() != tt.key {
			t.Fatalf("Key() = %q, want %q", tt.field.Key(), tt.key)
		}
		if tt.field.Value() != tt.value {
			t.Fatalf("Value() = %v, want %v", tt.field.Value(), tt.value)
		}
	}
}

func TestNopLoggerWith(t *testing.T) {
	var l Logger = NopLogger{}
	l = l.With(String("k", "v"))
	l.Info("ignored")
}

func TestSlogBridge(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlog(slog.New(slog.NewJSONHandler(&buf, nil)))
	l.With(String("file", "in.pdf")).Warn("page out of range", Int("page", 9))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output not JSON: %v", err)
	}
	if entry["msg"] != "page out of range" {
		t.Fatalf("msg = %v", entry["msg"])
	}
	if entry["file"] != "in.pdf" {
		t.Fatalf("file = %v", entry["file"])
	}
	if entry["page"] != float64(9) {
		t.Fatalf("page = %v", entry["page"])
	}
}

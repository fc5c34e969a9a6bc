package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidateInput(t *testing.T) {
	dir := t.TempDir()

	pdf := filepath.Join(dir, "doc.pdf")
	if err := os.WriteFile(pdf, []byte("%PDF-1.7\n1 0 obj\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := validateInput(pdf); err != nil {
		t.Fatalf("valid header rejected: %v", err)
	}

	text := filepath.Join(dir, "notes.pdf")
	if err := os.WriteFile(text, []byte("just some text"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := validateInput(text); err == nil {
		t.Fatal("expected rejection for non-PDF content")
	}

	if err := validateInput(filepath.Join(dir, "missing.pdf")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestCheckCriteria(t *testing.T) {
	if err := checkCriteria(nil, nil, nil, ""); err == nil {
		t.Fatal("expected error with no criteria")
	}
	if err := checkCriteria([]string{"secret"}, nil, nil, ""); err != nil {
		t.Fatalf("terms alone should suffice: %v", err)
	}
	if err := checkCriteria(nil, nil, nil, "rects.json"); err != nil {
		t.Fatalf("rect spec alone should suffice: %v", err)
	}
	if err := checkCriteria(nil, nil, []string{"ssn"}, ""); err != nil {
		t.Fatalf("known pattern rejected: %v", err)
	}
	if err := checkCriteria(nil, nil, []string{"passport"}, ""); err == nil {
		t.Fatal("expected error for unknown pattern name")
	}
}

package audit

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRecordAndHistory(t *testing.T) {
	db := openTestDB(t)

	id, err := db.Record(Run{
		InputFile:          "contract.pdf",
		OutputFile:         "contract_redacted.pdf",
		TermsSearched:      2,
		RedactionsApplied:  7,
		PagesModified:      3,
		Verified:           true,
		VerificationPassed: true,
	})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if id == "" {
		t.Fatal("no run ID assigned")
	}

	runs, err := db.History("contract.pdf", 10)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("History() = %d runs, want 1", len(runs))
	}
	got := runs[0]
	if got.ID != id || got.RedactionsApplied != 7 || !got.VerificationPassed {
		t.Fatalf("run = %+v", got)
	}
	if got.StartedAt.IsZero() {
		t.Fatal("StartedAt not defaulted")
	}
}

func TestHistoryOrderAndFilter(t *testing.T) {
	db := openTestDB(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, file := range []string{"a.pdf", "b.pdf", "a.pdf"} {
		if _, err := db.Record(Run{
			InputFile:  file,
			OutputFile: "out.pdf",
			StartedAt:  base.Add(time.Duration(i) * time.Hour),
		}); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := db.History("a.pdf", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("History(a.pdf) = %d runs, want 2", len(runs))
	}
	if !runs[0].StartedAt.After(runs[1].StartedAt) {
		t.Fatal("history not newest-first")
	}

	all, err := db.History("", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("History(all) = %d runs, want 3", len(all))
	}
}

func TestHistoryLimit(t *testing.T) {
	db := openTestDB(t)
	for i := 0; i < 5; i++ {
		if _, err := db.Record(Run{InputFile: "x.pdf", OutputFile: "y.pdf"}); err != nil {
			t.Fatal(err)
		}
	}
	runs, err := db.History("x.pdf", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("History() = %d runs, want limit of 2", len(runs))
	}
}

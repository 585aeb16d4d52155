package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/ramancert/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "certificates.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return st
}

func record(id string, serial int, issued time.Time) model.CertificateRecord {
	return model.CertificateRecord{
		ID:       id,
		IssuedAt: issued,
		Device: model.Device{
			Serial:     serial,
			Model:      "miniRaman",
			Type:       "Power",
			Wavelength: "785",
		},
		Operator:     "Yaroslav Aulin",
		Source:       "polystyrene",
		Rows:         10,
		MaxIntensity: 98.5,
		PeakPosition: 1001.4,
		Result:       model.ResultPass,
		DocumentPath: "test_report.pdf",
		ChartPath:    "polystyrene.png",
	}
}

func TestInsertAndGetCertificate(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	issued := time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)

	want := record("a", 10000, issued)
	if err := st.InsertCertificate(ctx, want); err != nil {
		t.Fatalf("insert: %v", err)
	}
	got, err := st.GetCertificate(ctx, "a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.IssuedAt.Equal(issued) {
		t.Fatalf("expected issued at %v, got %v", issued, got.IssuedAt)
	}
	got.IssuedAt = want.IssuedAt
	if got != want {
		t.Fatalf("unexpected record:\n got %+v\nwant %+v", got, want)
	}

	if _, err := st.GetCertificate(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := st.InsertCertificate(ctx, record("", 1, issued)); err == nil {
		t.Fatalf("expected error for empty id")
	}
	if err := st.InsertCertificate(ctx, want); err == nil {
		t.Fatalf("expected error for duplicate id")
	}
}

func TestListCertificatesFilters(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	inserts := []model.CertificateRecord{
		record("c", 10001, base.Add(2*time.Hour)),
		record("a", 10000, base),
		record("b", 10000, base.Add(time.Hour).Add(500*time.Millisecond)),
		record("d", 10000, base.Add(3*time.Hour)),
	}
	for _, rec := range inserts {
		if err := st.InsertCertificate(ctx, rec); err != nil {
			t.Fatalf("insert %s: %v", rec.ID, err)
		}
	}

	all, err := st.ListCertificates(ctx, model.HistoryFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if ids := idsOf(all); ids != "abcd" {
		t.Fatalf("expected oldest first order abcd, got %s", ids)
	}

	bySerial, err := st.ListCertificates(ctx, model.HistoryFilter{Serial: 10000})
	if err != nil {
		t.Fatalf("list by serial: %v", err)
	}
	if ids := idsOf(bySerial); ids != "abd" {
		t.Fatalf("expected abd, got %s", ids)
	}

	since := base.Add(90 * time.Minute)
	recent, err := st.ListCertificates(ctx, model.HistoryFilter{Since: &since})
	if err != nil {
		t.Fatalf("list since: %v", err)
	}
	if ids := idsOf(recent); ids != "cd" {
		t.Fatalf("expected cd, got %s", ids)
	}

	last, err := st.ListCertificates(ctx, model.HistoryFilter{Last: 2})
	if err != nil {
		t.Fatalf("list last: %v", err)
	}
	if ids := idsOf(last); ids != "cd" {
		t.Fatalf("expected the two newest in order cd, got %s", ids)
	}
}

func idsOf(records []model.CertificateRecord) string {
	out := ""
	for _, r := range records {
		out += r.ID
	}
	return out
}

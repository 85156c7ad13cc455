package validation

import (
	"testing"
)

func TestErrorsCollectAllFields(t *testing.T) {
	var v Errors
	v.Require("lahan_id", "")
	v.OneOf("jenis_aktivitas", "INVALID", "TANAM", "PANEN", "ESTIMASI_PANEN")
	v.Date("tanggal_aktivitas", "15-06-2024")

	if !v.HasErrors() {
		t.Fatal("expected validation errors")
	}
	if got := len(v.Fields()); got != 3 {
		t.Errorf("expected 3 field errors, got %d: %v", got, v.Fields())
	}
}

func TestDateParsesISO(t *testing.T) {
	var v Errors
	d := v.Date("tanggal_aktivitas", "2024-06-15")
	if v.HasErrors() {
		t.Fatalf("unexpected errors: %v", v.Fields())
	}
	if d.Year() != 2024 || d.Month() != 6 || d.Day() != 15 {
		t.Errorf("parsed wrong date: %v", d)
	}
}

func TestOneOfAcceptsValid(t *testing.T) {
	var v Errors
	v.OneOf("status", "SELESAI", "TERJADWAL", "SELESAI", "PENDING")
	if v.HasErrors() {
		t.Errorf("unexpected errors: %v", v.Fields())
	}
}

func TestPositive(t *testing.T) {
	var v Errors
	zero := 0.0
	ok := 12.5
	v.Positive("jumlah_aktual_kg", &zero)
	v.Positive("jumlah_estimasi_kg", &ok)
	v.Positive("jumlah", nil)
	if got := len(v.Fields()); got != 1 {
		t.Errorf("expected 1 error, got %d: %v", got, v.Fields())
	}
}

package utils

import (
	"strings"
	"testing"
	"time"
)

func TestGenerateBatchID(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	got := GenerateBatchID(7, now)
	want := "BATCH-1718445600000-7"
	if got != want {
		t.Errorf("GenerateBatchID = %s, want %s", got, want)
	}
}

func TestGenerateReportID(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	got := GenerateReportID("BATCH-1718445600000-7", now)
	if !strings.HasPrefix(got, "TR-BATCH-1718445600000-7-") {
		t.Errorf("unexpected report id: %s", got)
	}
}

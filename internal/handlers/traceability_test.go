package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/kopitani-id/kopitrace/internal/models"
)

// postHarvest records a completed harvest over HTTP and returns the batch id
// it materialized.
func postHarvest(t *testing.T, r *Router, token string, lahanID uint) string {
	t.Helper()
	rec := doJSON(t, r, "POST", "/api/aktivitas", token, map[string]interface{}{
		"lahan_id":          lahanID,
		"jenis_aktivitas":   "PANEN",
		"tanggal_aktivitas": "2024-06-15",
		"jumlah_aktual_kg":  200,
		"status":            "SELESAI",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/aktivitas = %d, body %s", rec.Code, rec.Body.String())
	}

	var entry models.InventoryEntry
	if err := r.db.Order("id DESC").First(&entry).Error; err != nil {
		t.Fatalf("No inventory entry materialized: %v", err)
	}
	if entry.BatchID == "" {
		t.Fatal("Materialized entry has no batch id")
	}
	return entry.BatchID
}

func TestTraceabilityReportEndToEnd(t *testing.T) {
	r := newTestRouter(t)
	lahanID := seedFarm(t, r.db.DB)
	token := tokenFor(t, models.RoleAdmin, nil)
	batchID := postHarvest(t, r, token, lahanID)

	rec := doJSON(t, r, "GET", "/api/inventory/traceability/report/"+batchID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET report = %d, body %s", rec.Code, rec.Body.String())
	}

	var rep struct {
		ReportID      string `json:"reportId"`
		BatchID       string `json:"batchId"`
		ReportSummary struct {
			TotalProcessingSteps int `json:"totalProcessingSteps"`
			TotalFarmSources     int `json:"totalFarmSources"`
		} `json:"reportSummary"`
		TraceabilityConfirmed bool `json:"traceabilityConfirmed"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &rep); err != nil {
		t.Fatalf("Failed to decode report: %v", err)
	}
	if !rep.TraceabilityConfirmed {
		t.Error("traceabilityConfirmed must be true")
	}
	if !strings.HasPrefix(rep.ReportID, "TR-") {
		t.Errorf("reportId = %s, want TR- prefix", rep.ReportID)
	}
	if rep.BatchID != batchID {
		t.Errorf("batchId = %s, want %s", rep.BatchID, batchID)
	}
	if rep.ReportSummary.TotalProcessingSteps < 1 {
		t.Errorf("totalProcessingSteps = %d, want >= 1", rep.ReportSummary.TotalProcessingSteps)
	}
	if rep.ReportSummary.TotalFarmSources != 1 {
		t.Errorf("totalFarmSources = %d, want 1", rep.ReportSummary.TotalFarmSources)
	}
}

func TestTraceabilityReportPDF(t *testing.T) {
	r := newTestRouter(t)
	lahanID := seedFarm(t, r.db.DB)
	token := tokenFor(t, models.RoleAdmin, nil)
	batchID := postHarvest(t, r, token, lahanID)

	rec := doJSON(t, r, "GET", "/api/inventory/traceability/report/"+batchID+"?format=pdf", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET report pdf = %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %s, want application/pdf", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF") {
		t.Error("Body does not look like a PDF document")
	}
}

func TestLineageTreeOverHTTP(t *testing.T) {
	r := newTestRouter(t)
	lahanID := seedFarm(t, r.db.DB)
	token := tokenFor(t, models.RoleAdmin, nil)
	parentBatch := postHarvest(t, r, token, lahanID)

	// Downstream processing batch referencing the harvest batch.
	child := models.InventoryEntry{
		KoperasiID:    1,
		NamaItem:      "Green bean",
		Jenis:         models.DirectionIn,
		Tanggal:       time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC),
		Jumlah:        160,
		Satuan:        "kg",
		BatchID:       "BATCH-CHILD-1",
		ParentBatchID: parentBatch,
	}
	if err := r.db.Create(&child).Error; err != nil {
		t.Fatalf("Failed to seed child batch: %v", err)
	}

	rec := doJSON(t, r, "GET", "/api/inventory/traceability/batch/BATCH-CHILD-1", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET lineage = %d, body %s", rec.Code, rec.Body.String())
	}

	var tree struct {
		MainBatch struct {
			BatchID string `json:"batch_id"`
		} `json:"mainBatch"`
		ParentBatches []struct {
			BatchID string `json:"batch_id"`
		} `json:"parentBatches"`
		ChildBatches []struct {
			BatchID string `json:"batch_id"`
		} `json:"childBatches"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &tree); err != nil {
		t.Fatalf("Failed to decode lineage: %v", err)
	}
	if tree.MainBatch.BatchID != "BATCH-CHILD-1" {
		t.Errorf("mainBatch = %s", tree.MainBatch.BatchID)
	}
	if len(tree.ParentBatches) != 1 || tree.ParentBatches[0].BatchID != parentBatch {
		t.Errorf("parentBatches = %+v, want [%s]", tree.ParentBatches, parentBatch)
	}
	if len(tree.ChildBatches) != 0 {
		t.Errorf("childBatches = %+v, want none", tree.ChildBatches)
	}
}

func TestTimelineOverHTTP(t *testing.T) {
	r := newTestRouter(t)
	lahanID := seedFarm(t, r.db.DB)
	token := tokenFor(t, models.RoleAdmin, nil)
	batchID := postHarvest(t, r, token, lahanID)

	rec := doJSON(t, r, "GET", "/api/inventory/traceability/timeline/"+batchID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET timeline = %d, body %s", rec.Code, rec.Body.String())
	}

	var timeline struct {
		BatchID  string `json:"batchId"`
		Timeline []struct {
			EventType string `json:"event_type"`
		} `json:"timeline"`
		TotalEvents int `json:"totalEvents"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &timeline); err != nil {
		t.Fatalf("Failed to decode timeline: %v", err)
	}
	if timeline.BatchID != batchID {
		t.Errorf("batchId = %s, want %s", timeline.BatchID, batchID)
	}
	if timeline.TotalEvents == 0 || len(timeline.Timeline) == 0 {
		t.Fatal("Timeline must contain the harvest inventory event")
	}
	if timeline.Timeline[0].EventType != "INVENTORY" {
		t.Errorf("Event type = %s, want INVENTORY", timeline.Timeline[0].EventType)
	}
}

func TestTraceabilityUnknownBatchReturns404(t *testing.T) {
	r := newTestRouter(t)
	token := tokenFor(t, models.RoleAdmin, nil)

	for _, path := range []string{
		"/api/inventory/traceability/batch/UNKNOWN",
		"/api/inventory/traceability/timeline/UNKNOWN",
		"/api/inventory/traceability/report/UNKNOWN",
	} {
		rec := doJSON(t, r, "GET", path, token, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("GET %s = %d, want 404", path, rec.Code)
		}
	}
}

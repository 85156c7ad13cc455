package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/kopitani-id/kopitrace/internal/services/lineage"
)

// getLineageTree returns the full ancestor/descendant chain of a batch
func (r *Router) getLineageTree(w http.ResponseWriter, req *http.Request) {
	batchID := mux.Vars(req)["batchId"]

	tree, err := r.lineage.LineageTree(batchID)
	if err != nil {
		if errors.Is(err, lineage.ErrBatchNotFound) {
			respondError(w, http.StatusNotFound, "Batch tidak ditemukan")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to build lineage: "+err.Error())
		return
	}
	respondJSON(w, http.StatusOK, tree)
}

// getTimeline returns the unified event history of a batch, newest first
func (r *Router) getTimeline(w http.ResponseWriter, req *http.Request) {
	batchID := mux.Vars(req)["batchId"]

	timeline, err := r.lineage.Timeline(batchID)
	if err != nil {
		if errors.Is(err, lineage.ErrBatchNotFound) {
			respondError(w, http.StatusNotFound, "Batch tidak ditemukan")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to build timeline: "+err.Error())
		return
	}
	respondJSON(w, http.StatusOK, timeline)
}

// getTraceabilityReport returns the compliance report for a batch; with
// format=pdf the report is rendered server-side as a document
func (r *Router) getTraceabilityReport(w http.ResponseWriter, req *http.Request) {
	batchID := mux.Vars(req)["batchId"]

	rep, err := r.reports.Generate(batchID)
	if err != nil {
		if errors.Is(err, lineage.ErrBatchNotFound) {
			respondError(w, http.StatusNotFound, "Batch tidak ditemukan")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to generate report: "+err.Error())
		return
	}

	if req.URL.Query().Get("format") == "pdf" {
		pdfBytes, err := r.reports.RenderPDF(rep)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to render PDF: "+err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", "attachment; filename=\""+rep.ReportID+".pdf\"")
		w.Header().Set("Content-Length", strconv.Itoa(len(pdfBytes)))
		w.WriteHeader(http.StatusOK)
		w.Write(pdfBytes)
		return
	}

	respondJSON(w, http.StatusOK, rep)
}

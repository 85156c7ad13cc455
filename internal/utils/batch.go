package utils

import (
	"fmt"
	"time"
)

// GenerateBatchID builds an opaque batch identifier for inventory produced by
// the harvest pipeline: BATCH-<epoch-millis>-<lahan id>.
func GenerateBatchID(lahanID uint, now time.Time) string {
	return fmt.Sprintf("BATCH-%d-%d", now.UnixMilli(), lahanID)
}

// GenerateReportID builds a traceability report identifier: TR-<batch>-<epoch-millis>.
func GenerateReportID(batchID string, now time.Time) string {
	return fmt.Sprintf("TR-%s-%d", batchID, now.UnixMilli())
}

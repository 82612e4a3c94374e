package tasks

import (
	"fmt"

	"github.com/desertthunder/mealplan/internal/formatter"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
}

// Operation phase enumeration
type Phase int

const (
	ExportFormat Phase = iota
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case ExportFormat:
		return "export_format"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func exportingUpdate(step, total int, format formatter.Format, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportFormat,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting %d recipes as %s...", step, total, count, format),
	}
}

func exportCompletedUpdate(step, total int, res FormatResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportFormat,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s → %s", step, total, res.Format, res.File),
	}
}

func exportFailedUpdate(step, total int, res FormatResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportFormat,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %s", step, total, res.Format, res.Error),
	}
}

func manifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Writing manifest %s", path),
	}
}

package flow

import (
	"time"

	"github.com/atinyakov/FlowDoc/internal/models"
)

// Improvement and risk vocabularies.
const (
	ImprovementPlanned = "planned"

	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"

	CyclePlan  = "plan"
	CycleDo    = "do"
	CycleCheck = "check"
	CycleAct   = "act"
)

// Achievement is current/target as a percentage; 0 when target is zero.
func Achievement(m models.Metric) float64 {
	if m.Target == 0 {
		return 0
	}
	return m.Current / m.Target * 100
}

// ChecklistCompletion is the checked share of items as a percentage; 0 when empty.
func ChecklistCompletion(items []models.ChecklistItem) float64 {
	if len(items) == 0 {
		return 0
	}
	checked := 0
	for _, it := range items {
		if it.Checked {
			checked++
		}
	}
	return float64(checked) / float64(len(items)) * 100
}

// RecordSave stores title and content on doc and appends one save-log entry.
// The first save is InitialVersion; later saves bump the patch component of
// the latest entry.
func RecordSave(doc *models.Document, title, content string, now time.Time) models.DocumentVersion {
	version := InitialVersion
	if latest := doc.LatestVersion(); latest != "" {
		version = Bump(latest, Patch)
	}
	doc.Title = title
	doc.Content = content
	doc.UpdatedAt = now
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	v := models.DocumentVersion{
		Version: version,
		Title:   title,
		SavedAt: now,
		Changes: "Updated: " + title,
	}
	doc.Versions = append(doc.Versions, v)
	return v
}

package model

// Label is the user-facing classification of a page
type Label string

const (
	LabelLeave Label = "Leave" // Irrelevant or a distraction
	LabelSave  Label = "Save"  // Worth bookmarking, not reading now
	LabelRead  Label = "Read"  // Directly relevant, read now
)

// Score band boundaries (inclusive lower bounds)
const (
	SaveThreshold = 30
	ReadThreshold = 60
	MaxScore      = 100
	MaxReasons    = 3
)

// Valid reports whether the label is one of the three known verdicts
func (l Label) Valid() bool {
	switch l {
	case LabelLeave, LabelSave, LabelRead:
		return true
	default:
		return false
	}
}

// LabelForScore derives the verdict label from a 0-100 score.
// 0-29 Leave, 30-59 Save, 60-100 Read.
func LabelForScore(score int) Label {
	switch {
	case score >= ReadThreshold:
		return LabelRead
	case score >= SaveThreshold:
		return LabelSave
	default:
		return LabelLeave
	}
}

// Verdict is the validated classification of a single page
type Verdict struct {
	Verdict Label    `json:"verdict" yaml:"verdict"`
	Score   int      `json:"score" yaml:"score"`
	Reasons []string `json:"reasons" yaml:"reasons"`
}

// CachedVerdict is the persisted form of a verdict
type CachedVerdict struct {
	Verdict   Verdict `json:"verdict"`
	Timestamp int64   `json:"timestamp"` // Epoch milliseconds
	URL       string  `json:"url"`
}

package model

// ValidationSource tags which pipeline tier produced a detail outcome
type ValidationSource string

const (
	SourcePattern ValidationSource = "pattern"
	SourceLearned ValidationSource = "learned"
	SourceRule    ValidationSource = "rule"
	SourceAI      ValidationSource = "ai"
)

// ValidationOutcome is the result of validating one detail address
type ValidationOutcome struct {
	IsValid         bool             `json:"is_valid"`
	WarningMessage  string           `json:"warning_message,omitempty"`
	ReasonCode      string           `json:"reason_code"`
	CorrectedDetail string           `json:"corrected_detail,omitempty"`
	Source          ValidationSource `json:"source"`
	Confidence      float64          `json:"confidence"`
}

// DetailPattern is a stored regex rule converting a detail string for a building class
type DetailPattern struct {
	ID            int64         `json:"id" db:"id"`
	BuildingClass BuildingClass `json:"building_class" db:"building_class" binding:"required"`
	PatternRegex  string        `json:"pattern_regex" db:"pattern_regex" binding:"required"`
	Replacement   string        `json:"replacement" db:"replacement" binding:"required"`
	Label         string        `json:"label" db:"label"`
	Priority      int           `json:"priority" db:"priority"`
}

// PatternMatch is a pattern-store hit
type PatternMatch struct {
	PatternRegex    string
	CorrectedDetail string
	Label           string
}

// LearnedCorrection is a prior human or AI correction of a raw detail string
type LearnedCorrection struct {
	Original        string        `db:"original_detail"`
	Corrected       string        `db:"corrected_detail"`
	BuildingClass   BuildingClass `db:"building_class"`
	CorrectionType  string        `db:"correction_type"`
	Confidence      *float64      `db:"confidence"`
	OccurrenceCount int           `db:"occurrence_count"`
}

// Correction types stored alongside learned corrections
const (
	CorrectionTypeAI    = "ai"
	CorrectionTypeHuman = "human"
)

// AINormalization is the AI normalizer's answer for one detail string
type AINormalization struct {
	Normalized string  `json:"normalized"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning,omitempty"`
	HasError   bool    `json:"has_error"`
}

package service

import (
	"context"
	"log/slog"
	"regexp"
	"unicode/utf8"

	"addrcore/internal/metrics"
	"addrcore/internal/model"
)

// PatternStore finds a stored conversion pattern matching a raw detail
type PatternStore interface {
	FindByPattern(ctx context.Context, detail string, class model.BuildingClass) (*model.PatternMatch, error)
}

// LearnedStore holds prior human and AI corrections
type LearnedStore interface {
	FindLearned(ctx context.Context, detail string, class model.BuildingClass) (*model.LearnedCorrection, error)
	SaveLearned(ctx context.Context, original, corrected string, class model.BuildingClass, correctionType string, confidence float64) error
}

// Detail validation reason codes
const (
	DetailReasonPatternMatch     = "pattern_match"
	DetailReasonLearnedMatch     = "learned_match"
	DetailReasonBlockUnit        = "block_unit"
	DetailReasonBlockAndUnit     = "block_and_unit"
	DetailReasonUnitOnly         = "unit_only"
	DetailReasonHyphenPair       = "hyphen_pair"
	DetailReasonFloorOrUnit      = "floor_or_unit"
	DetailReasonFreeText         = "free_text"
	DetailReasonGeneral          = "general_detail"
	DetailReasonNoDetailRequired = "no_detail_required"
	DetailReasonDetailMissing    = "detail_missing"
	DetailReasonUnitMissing      = "unit_missing"
	DetailReasonBlockUnitUnclear = "block_unit_unclear"
	DetailReasonAICorrected      = "ai_corrected"
	DetailReasonAILowConfidence  = "ai_low_confidence"
)

// ruleConfidence converts a rule outcome into a confidence score.
var ruleConfidence = map[string]float64{
	DetailReasonBlockUnit:        0.95,
	DetailReasonBlockAndUnit:     0.95,
	DetailReasonUnitOnly:         0.95,
	DetailReasonHyphenPair:       0.95,
	DetailReasonFloorOrUnit:      0.95,
	DetailReasonFreeText:         0.95,
	DetailReasonGeneral:          0.95,
	DetailReasonNoDetailRequired: 0.95,
	DetailReasonUnitMissing:      0.6,
	DetailReasonDetailMissing:    0.5,
	DetailReasonBlockUnitUnclear: 0.5,
}

const (
	defaultRuleConfidence = 0.5
	aiValidConfidence     = 0.85
	minFreeTextRunes      = 2
)

// blockIDPattern is a block identifier: digits, or one or two letters / hangul.
const blockIDPattern = `(\d+|[A-Za-z가-힣]{1,2})`

var (
	combinedBlockUnitRe = regexp.MustCompile(blockIDPattern + `\s*동\s*\d+\s*호`)
	unitOnlyRe          = regexp.MustCompile(`\d+\s*호`)
	blockOnlyRe         = regexp.MustCompile(blockIDPattern + `\s*동`)
	bareHyphenPairRe    = regexp.MustCompile(`\d+-\d+`)
	floorOrUnitRe       = regexp.MustCompile(`\d+\s*[층호]|지하\s*\d+`)
)

// ValidatorOptions carries the process-wide AI settings into each call
type ValidatorOptions struct {
	AIEnabled             bool
	AIConfidenceThreshold float64
}

// DetailRequest is the input of one detail validation
type DetailRequest struct {
	Raw           string
	Normalized    string
	BuildingClass model.BuildingClass
	BuildingName  string
}

// DetailValidator runs pattern store, learned corrections, rule grammar and
// AI fallback in that order; the first tier with an answer wins.
type DetailValidator struct {
	patterns PatternStore
	learned  LearnedStore
	ai       AINormalizer
	metrics  *metrics.Metrics
	log      *slog.Logger
}

// NewDetailValidator creates a validator. Any collaborator may be nil.
func NewDetailValidator(patterns PatternStore, learned LearnedStore, ai AINormalizer, m *metrics.Metrics, logger *slog.Logger) *DetailValidator {
	return &DetailValidator{
		patterns: patterns,
		learned:  learned,
		ai:       ai,
		metrics:  m,
		log:      logger.With("component", "detail_validator"),
	}
}

// Validate returns the outcome for one detail address
func (v *DetailValidator) Validate(ctx context.Context, req DetailRequest, opts ValidatorOptions) model.ValidationOutcome {
	outcome := v.validate(ctx, req, opts)
	v.metrics.IncrementValidation(string(outcome.Source), outcome.IsValid)
	return outcome
}

func (v *DetailValidator) validate(ctx context.Context, req DetailRequest, opts ValidatorOptions) model.ValidationOutcome {
	if out, ok := v.fromPatternStore(ctx, req); ok {
		return out
	}
	if out, ok := v.fromLearnedStore(ctx, req); ok {
		return out
	}

	rule := ValidateByRule(req.Normalized, req.BuildingClass)

	if out, ok := v.fromAI(ctx, req, rule, opts); ok {
		return out
	}
	return rule
}

func (v *DetailValidator) fromPatternStore(ctx context.Context, req DetailRequest) (model.ValidationOutcome, bool) {
	if v.patterns == nil || req.Raw == "" {
		return model.ValidationOutcome{}, false
	}
	match, err := v.patterns.FindByPattern(ctx, req.Raw, req.BuildingClass)
	if err != nil {
		v.log.WarnContext(ctx, "pattern lookup failed", slog.String("detail", req.Raw), slog.String("error", err.Error()))
		return model.ValidationOutcome{}, false
	}
	if match == nil || match.CorrectedDetail == "" {
		return model.ValidationOutcome{}, false
	}
	return model.ValidationOutcome{
		IsValid:         true,
		ReasonCode:      DetailReasonPatternMatch,
		CorrectedDetail: match.CorrectedDetail,
		Source:          model.SourcePattern,
		Confidence:      1.0,
	}, true
}

func (v *DetailValidator) fromLearnedStore(ctx context.Context, req DetailRequest) (model.ValidationOutcome, bool) {
	if v.learned == nil || req.Raw == "" {
		return model.ValidationOutcome{}, false
	}
	learned, err := v.learned.FindLearned(ctx, req.Raw, req.BuildingClass)
	if err != nil {
		v.log.WarnContext(ctx, "learned correction lookup failed", slog.String("detail", req.Raw), slog.String("error", err.Error()))
		return model.ValidationOutcome{}, false
	}
	if learned == nil || learned.Corrected == "" {
		return model.ValidationOutcome{}, false
	}
	confidence := 1.0
	if learned.Confidence != nil {
		confidence = *learned.Confidence
	}
	return model.ValidationOutcome{
		IsValid:         true,
		ReasonCode:      DetailReasonLearnedMatch,
		CorrectedDetail: learned.Corrected,
		Source:          model.SourceLearned,
		Confidence:      confidence,
	}, true
}

func (v *DetailValidator) fromAI(ctx context.Context, req DetailRequest, rule model.ValidationOutcome, opts ValidatorOptions) (model.ValidationOutcome, bool) {
	if !opts.AIEnabled || v.ai == nil || req.Raw == "" || rule.Confidence >= opts.AIConfidenceThreshold {
		return model.ValidationOutcome{}, false
	}

	res, err := v.ai.NormalizeDetail(ctx, req.Raw, req.BuildingClass, req.BuildingName)
	if err != nil {
		v.log.WarnContext(ctx, "ai normalization failed, using rule result", slog.String("detail", req.Raw), slog.String("error", err.Error()))
		return model.ValidationOutcome{}, false
	}
	if res == nil || res.HasError || res.Normalized == "" || res.Confidence <= rule.Confidence {
		return model.ValidationOutcome{}, false
	}

	out := model.ValidationOutcome{
		IsValid:         res.Confidence >= aiValidConfidence,
		ReasonCode:      DetailReasonAICorrected,
		CorrectedDetail: res.Normalized,
		Source:          model.SourceAI,
		Confidence:      res.Confidence,
	}
	if !out.IsValid {
		out.ReasonCode = DetailReasonAILowConfidence
		out.WarningMessage = "detail address was corrected automatically with low confidence; please verify"
	}

	if v.learned != nil {
		if err := v.learned.SaveLearned(ctx, req.Raw, res.Normalized, req.BuildingClass, model.CorrectionTypeAI, res.Confidence); err != nil {
			v.log.WarnContext(ctx, "saving ai correction failed", slog.String("detail", req.Raw), slog.String("error", err.Error()))
		}
	}
	return out, true
}

// ValidateByRule applies the building-class grammar to a normalized detail.
func ValidateByRule(detail string, class model.BuildingClass) model.ValidationOutcome {
	valid, reason, message := ruleVerdict(detail, class)
	confidence, ok := ruleConfidence[reason]
	if !ok {
		confidence = defaultRuleConfidence
	}
	return model.ValidationOutcome{
		IsValid:        valid,
		WarningMessage: message,
		ReasonCode:     reason,
		Source:         model.SourceRule,
		Confidence:     confidence,
	}
}

func ruleVerdict(detail string, class model.BuildingClass) (bool, string, string) {
	if detail == "" {
		if class.IsApartment() {
			return false, DetailReasonDetailMissing, "unit number is required for this building"
		}
		return true, DetailReasonNoDetailRequired, ""
	}

	switch class {
	case model.BuildingStrictApartment:
		hasBlock := blockOnlyRe.MatchString(detail)
		hasUnit := unitOnlyRe.MatchString(detail)
		switch {
		case combinedBlockUnitRe.MatchString(detail):
			return true, DetailReasonBlockUnit, ""
		case hasBlock && hasUnit:
			return true, DetailReasonBlockAndUnit, ""
		case hasUnit:
			// Small apartment buildings often have no block number.
			return true, DetailReasonUnitOnly, ""
		case hasBlock:
			return false, DetailReasonUnitMissing, "unit number missing"
		default:
			return false, DetailReasonBlockUnitUnclear, "block/unit information unclear"
		}

	case model.BuildingRelaxedApartment:
		switch {
		case combinedBlockUnitRe.MatchString(detail):
			return true, DetailReasonBlockUnit, ""
		case bareHyphenPairRe.MatchString(detail):
			return true, DetailReasonHyphenPair, ""
		case floorOrUnitRe.MatchString(detail):
			return true, DetailReasonFloorOrUnit, ""
		case utf8.RuneCountInString(detail) >= minFreeTextRunes:
			return true, DetailReasonFreeText, ""
		default:
			return false, DetailReasonUnitMissing, "unit missing"
		}

	default:
		return true, DetailReasonGeneral, ""
	}
}

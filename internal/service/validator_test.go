package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"addrcore/internal/model"
)

func TestValidateByRule(t *testing.T) {
	tests := []struct {
		name       string
		detail     string
		class      model.BuildingClass
		valid      bool
		reason     string
		confidence float64
	}{
		{"strict block unit", "101동 505호", model.BuildingStrictApartment, true, DetailReasonBlockUnit, 0.95},
		{"strict letter block", "가동 201호", model.BuildingStrictApartment, true, DetailReasonBlockUnit, 0.95},
		{"strict reversed", "505호 101동", model.BuildingStrictApartment, true, DetailReasonBlockAndUnit, 0.95},
		{"strict unit only", "505호", model.BuildingStrictApartment, true, DetailReasonUnitOnly, 0.95},
		{"strict block only", "101동", model.BuildingStrictApartment, false, DetailReasonUnitMissing, 0.6},
		{"strict letter block only", "가동", model.BuildingStrictApartment, false, DetailReasonUnitMissing, 0.6},
		{"strict unclear", "지하 1층", model.BuildingStrictApartment, false, DetailReasonBlockUnitUnclear, 0.5},
		{"strict empty", "", model.BuildingStrictApartment, false, DetailReasonDetailMissing, 0.5},
		{"relaxed block unit", "1동 301호", model.BuildingRelaxedApartment, true, DetailReasonBlockUnit, 0.95},
		{"relaxed hyphen", "3-402", model.BuildingRelaxedApartment, true, DetailReasonHyphenPair, 0.95},
		{"relaxed unit", "301호", model.BuildingRelaxedApartment, true, DetailReasonFloorOrUnit, 0.95},
		{"relaxed floor", "3층", model.BuildingRelaxedApartment, true, DetailReasonFloorOrUnit, 0.95},
		{"relaxed basement", "지하 1층", model.BuildingRelaxedApartment, true, DetailReasonFloorOrUnit, 0.95},
		{"relaxed free text", "옥탑방", model.BuildingRelaxedApartment, true, DetailReasonFreeText, 0.95},
		{"relaxed too short", "a", model.BuildingRelaxedApartment, false, DetailReasonUnitMissing, 0.6},
		{"relaxed empty", "", model.BuildingRelaxedApartment, false, DetailReasonDetailMissing, 0.5},
		{"general empty", "", model.BuildingGeneral, true, DetailReasonNoDetailRequired, 0.95},
		{"general anything", "뒷동 창고", model.BuildingGeneral, true, DetailReasonGeneral, 0.95},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateByRule(tt.detail, tt.class)
			assert.Equal(t, tt.valid, got.IsValid)
			assert.Equal(t, tt.reason, got.ReasonCode)
			assert.InDelta(t, tt.confidence, got.Confidence, 1e-9)
			assert.Equal(t, model.SourceRule, got.Source)
			if !tt.valid {
				assert.NotEmpty(t, got.WarningMessage)
			}
		})
	}
}

func strictRequest(raw string) DetailRequest {
	return DetailRequest{
		Raw:           raw,
		Normalized:    NormalizeDetail(raw),
		BuildingClass: model.BuildingStrictApartment,
		BuildingName:  "래미안아파트",
	}
}

var aiOn = ValidatorOptions{AIEnabled: true, AIConfidenceThreshold: 0.9}

func TestDetailValidator_PatternStoreWins(t *testing.T) {
	patterns := &fakePatternStore{match: &model.PatternMatch{CorrectedDetail: "101동 505호", Label: "slash pair"}}
	learned := &fakeLearnedStore{hit: &model.LearnedCorrection{Corrected: "999동 999호"}}
	v := NewDetailValidator(patterns, learned, nil, nil, discardLogger())

	got := v.Validate(context.Background(), strictRequest("101 / 505"), ValidatorOptions{})

	assert.True(t, got.IsValid)
	assert.Equal(t, model.SourcePattern, got.Source)
	assert.Equal(t, DetailReasonPatternMatch, got.ReasonCode)
	assert.Equal(t, "101동 505호", got.CorrectedDetail)
	assert.Equal(t, 1.0, got.Confidence)
}

func TestDetailValidator_PatternErrorFallsThrough(t *testing.T) {
	patterns := &fakePatternStore{err: errors.New("connection refused")}
	conf := 0.8
	learned := &fakeLearnedStore{hit: &model.LearnedCorrection{Corrected: "101동 505호", Confidence: &conf}}
	v := NewDetailValidator(patterns, learned, nil, nil, discardLogger())

	got := v.Validate(context.Background(), strictRequest("101/505"), ValidatorOptions{})

	assert.Equal(t, 1, patterns.calls)
	assert.Equal(t, model.SourceLearned, got.Source)
	assert.Equal(t, DetailReasonLearnedMatch, got.ReasonCode)
	assert.InDelta(t, 0.8, got.Confidence, 1e-9)
}

func TestDetailValidator_LearnedWithoutConfidence(t *testing.T) {
	learned := &fakeLearnedStore{hit: &model.LearnedCorrection{Corrected: "101동 505호"}}
	v := NewDetailValidator(nil, learned, nil, nil, discardLogger())

	got := v.Validate(context.Background(), strictRequest("백일동 오공오호"), ValidatorOptions{})

	assert.Equal(t, model.SourceLearned, got.Source)
	assert.Equal(t, 1.0, got.Confidence)
}

func TestDetailValidator_StoreErrorsFallBackToRules(t *testing.T) {
	patterns := &fakePatternStore{err: errors.New("timeout")}
	learned := &fakeLearnedStore{findErr: errors.New("timeout")}
	v := NewDetailValidator(patterns, learned, nil, nil, discardLogger())

	got := v.Validate(context.Background(), strictRequest("101동 505"), ValidatorOptions{})

	assert.True(t, got.IsValid)
	assert.Equal(t, model.SourceRule, got.Source)
	assert.Equal(t, DetailReasonBlockUnit, got.ReasonCode)
}

func TestDetailValidator_EmptyRawSkipsStores(t *testing.T) {
	patterns := &fakePatternStore{match: &model.PatternMatch{CorrectedDetail: "x"}}
	ai := &fakeAI{answer: &model.AINormalization{Normalized: "101동 505호", Confidence: 0.99}}
	v := NewDetailValidator(patterns, nil, ai, nil, discardLogger())

	got := v.Validate(context.Background(), strictRequest(""), aiOn)

	assert.Zero(t, patterns.calls)
	assert.Zero(t, ai.calls)
	assert.Equal(t, DetailReasonDetailMissing, got.ReasonCode)
}

func TestDetailValidator_AIDisabled(t *testing.T) {
	ai := &fakeAI{answer: &model.AINormalization{Normalized: "101동 505호", Confidence: 0.99}}
	v := NewDetailValidator(nil, nil, ai, nil, discardLogger())

	got := v.Validate(context.Background(), strictRequest("101동"), ValidatorOptions{AIConfidenceThreshold: 0.9})

	assert.Zero(t, ai.calls)
	assert.Equal(t, model.SourceRule, got.Source)
	assert.Equal(t, DetailReasonUnitMissing, got.ReasonCode)
}

func TestDetailValidator_AISkippedWhenRuleConfident(t *testing.T) {
	ai := &fakeAI{answer: &model.AINormalization{Normalized: "101동 505호", Confidence: 0.99}}
	v := NewDetailValidator(nil, nil, ai, nil, discardLogger())

	got := v.Validate(context.Background(), strictRequest("101동 505호"), aiOn)

	assert.Zero(t, ai.calls)
	assert.Equal(t, model.SourceRule, got.Source)
}

func TestDetailValidator_AIAdopted(t *testing.T) {
	ai := &fakeAI{answer: &model.AINormalization{Normalized: "101동 505호", Confidence: 0.92}}
	learned := &fakeLearnedStore{}
	v := NewDetailValidator(nil, learned, ai, nil, discardLogger())

	got := v.Validate(context.Background(), strictRequest("백일동 오공오"), aiOn)

	require.Equal(t, 1, ai.calls)
	assert.True(t, got.IsValid)
	assert.Equal(t, model.SourceAI, got.Source)
	assert.Equal(t, DetailReasonAICorrected, got.ReasonCode)
	assert.Equal(t, "101동 505호", got.CorrectedDetail)

	require.Len(t, learned.saved, 1)
	assert.Equal(t, savedCorrection{
		original:       "백일동 오공오",
		corrected:      "101동 505호",
		class:          model.BuildingStrictApartment,
		correctionType: model.CorrectionTypeAI,
		confidence:     0.92,
	}, learned.saved[0])
}

func TestDetailValidator_AILowConfidence(t *testing.T) {
	ai := &fakeAI{answer: &model.AINormalization{Normalized: "101동 505호", Confidence: 0.7}}
	learned := &fakeLearnedStore{}
	v := NewDetailValidator(nil, learned, ai, nil, discardLogger())

	got := v.Validate(context.Background(), strictRequest("백일동 오공오"), aiOn)

	assert.False(t, got.IsValid)
	assert.Equal(t, model.SourceAI, got.Source)
	assert.Equal(t, DetailReasonAILowConfidence, got.ReasonCode)
	assert.NotEmpty(t, got.WarningMessage)
	assert.Len(t, learned.saved, 1)
}

func TestDetailValidator_AINotBetterThanRule(t *testing.T) {
	// rule confidence for "101동" is 0.6
	ai := &fakeAI{answer: &model.AINormalization{Normalized: "101동 1호", Confidence: 0.6}}
	learned := &fakeLearnedStore{}
	v := NewDetailValidator(nil, learned, ai, nil, discardLogger())

	got := v.Validate(context.Background(), strictRequest("101동"), aiOn)

	assert.Equal(t, 1, ai.calls)
	assert.Equal(t, model.SourceRule, got.Source)
	assert.Equal(t, DetailReasonUnitMissing, got.ReasonCode)
	assert.Empty(t, learned.saved)
}

func TestDetailValidator_AIFailuresKeepRule(t *testing.T) {
	tests := []struct {
		name string
		ai   *fakeAI
	}{
		{"error", &fakeAI{err: errors.New("upstream 502")}},
		{"nil answer", &fakeAI{}},
		{"has error", &fakeAI{answer: &model.AINormalization{Normalized: "101동 505호", Confidence: 0.99, HasError: true}}},
		{"empty normalized", &fakeAI{answer: &model.AINormalization{Confidence: 0.99}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewDetailValidator(nil, nil, tt.ai, nil, discardLogger())
			got := v.Validate(context.Background(), strictRequest("지하 1층"), aiOn)

			assert.Equal(t, 1, tt.ai.calls)
			assert.Equal(t, model.SourceRule, got.Source)
			assert.Equal(t, DetailReasonBlockUnitUnclear, got.ReasonCode)
		})
	}
}

func TestDetailValidator_SaveErrorKeepsAIOutcome(t *testing.T) {
	ai := &fakeAI{answer: &model.AINormalization{Normalized: "101동 505호", Confidence: 0.95}}
	learned := &fakeLearnedStore{saveErr: errors.New("read-only replica")}
	v := NewDetailValidator(nil, learned, ai, nil, discardLogger())

	got := v.Validate(context.Background(), strictRequest("백일동 오공오"), aiOn)

	assert.True(t, got.IsValid)
	assert.Equal(t, model.SourceAI, got.Source)
}

package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"addrcore/internal/model"
)

func newTestResolver(reg Registry) *CandidateResolver {
	return NewCandidateResolver(reg, NewRanker(DefaultScoreWeights()), nil, discardLogger())
}

func TestCandidateResolver_DirectHit(t *testing.T) {
	reg := newFakeRegistry().on("강남구 테헤란로 152", gangnamFinance())
	r := newTestResolver(reg)

	got, err := r.Resolve(context.Background(), "강남구 테헤란로 152", []string{"강남구", "테헤란로", "152"})
	require.NoError(t, err)

	assert.Equal(t, strategyTrim, got.Strategy)
	assert.Equal(t, model.ConfidenceHigh, got.Confidence)
	assert.Equal(t, 1, got.CandidateCount)
	assert.Empty(t, got.TrimmedParts)
	assert.Equal(t, []string{"강남구 테헤란로 152"}, reg.seen())
}

func TestCandidateResolver_TrimsTrailingTokens(t *testing.T) {
	reg := newFakeRegistry().on("강남구 테헤란로 152", gangnamFinance())
	r := newTestResolver(reg)

	tokens := []string{"강남구", "테헤란로", "152", "101동", "505"}
	got, err := r.Resolve(context.Background(), strings.Join(tokens, " "), tokens)
	require.NoError(t, err)

	assert.Equal(t, []string{"101동", "505"}, got.TrimmedParts)
	assert.Equal(t, []string{
		"강남구 테헤란로 152 101동 505",
		"강남구 테헤란로 152 101동",
		"강남구 테헤란로 152",
	}, reg.seen())
}

func TestCandidateResolver_NeverQueriesSingleTokenWhileTrimming(t *testing.T) {
	reg := newFakeRegistry()
	r := newTestResolver(reg)

	_, err := r.Resolve(context.Background(), "가 나 다", []string{"가", "나", "다"})
	require.ErrorIs(t, err, ErrBuildingNotFound)

	queries := reg.seen()
	assert.Equal(t, []string{"가 나 다", "가 나", "가나다"}, queries)
	for _, q := range queries[:2] {
		assert.GreaterOrEqual(t, len(strings.Fields(q)), minKeywordTokens, q)
	}
}

func TestCandidateResolver_TrimAttemptsAreBounded(t *testing.T) {
	reg := newFakeRegistry()
	r := newTestResolver(reg)

	tokens := []string{"t1", "t2", "t3", "t4", "t5", "t6"}
	_, err := r.Resolve(context.Background(), strings.Join(tokens, " "), tokens)
	require.ErrorIs(t, err, ErrBuildingNotFound)

	queries := reg.seen()
	require.GreaterOrEqual(t, len(queries), maxTrimAttempts)
	assert.Equal(t, []string{
		"t1 t2 t3 t4 t5 t6",
		"t1 t2 t3 t4 t5",
		"t1 t2 t3 t4",
		"t1 t2 t3",
	}, queries[:maxTrimAttempts])
	assert.NotContains(t, queries, "t1 t2")
}

func TestCandidateResolver_StrategyOrder(t *testing.T) {
	reg := newFakeRegistry().on("서울특별시 강남구 테헤란로 152", gangnamFinance())
	r := newTestResolver(reg)

	tokens := []string{"서울", "강남구", "테헤란로", "152"}
	got, err := r.Resolve(context.Background(), strings.Join(tokens, " "), tokens)
	require.NoError(t, err)

	assert.Equal(t, "expand_region", got.Strategy)
	assert.Nil(t, got.TrimmedParts)
	// Phase A, then collapse_spaces; strategies that repeat a tried keyword are skipped.
	assert.Equal(t, []string{
		"서울 강남구 테헤란로 152",
		"서울 강남구 테헤란로",
		"서울 강남구",
		"서울강남구테헤란로152",
		"서울특별시 강남구 테헤란로 152",
	}, reg.seen())
}

func TestCandidateResolver_RemoveBuildingName(t *testing.T) {
	reg := newFakeRegistry().on("강남구 테헤란로 152 101동", gangnamFinance())
	r := newTestResolver(reg)

	tokens := []string{"강남구", "래미안아파트", "테헤란로", "152", "101동"}
	got, err := r.Resolve(context.Background(), strings.Join(tokens, " "), tokens)
	require.NoError(t, err)
	assert.Equal(t, "remove_building_name", got.Strategy)
}

func TestCandidateResolver_RegistryErrorAborts(t *testing.T) {
	reg := newFakeRegistry()
	reg.err = &RegistryError{Code: "E0001", Message: "승인되지 않은 KEY 입니다."}
	r := newTestResolver(reg)

	_, err := r.Resolve(context.Background(), "강남구 테헤란로 152", []string{"강남구", "테헤란로", "152"})
	require.Error(t, err)

	var regErr *RegistryError
	require.True(t, errors.As(err, &regErr))
	assert.Equal(t, "E0001", regErr.Code)
	assert.Len(t, reg.seen(), 1)
}

func TestCandidateResolver_NotConfiguredPropagates(t *testing.T) {
	reg := newFakeRegistry()
	reg.err = ErrRegistryNotConfigured
	r := newTestResolver(reg)

	_, err := r.Resolve(context.Background(), "강남구 테헤란로", []string{"강남구", "테헤란로"})
	assert.ErrorIs(t, err, ErrRegistryNotConfigured)
}

func TestCandidateResolver_SingleCandidateIsHigh(t *testing.T) {
	weak := model.RegistryCandidate{RoadAddressPart1: "부산광역시 해운대구 해운대로 1", RoadName: "해운대로"}
	reg := newFakeRegistry().on("강남구 테헤란로", weak)
	r := newTestResolver(reg)

	got, err := r.Resolve(context.Background(), "강남구 테헤란로", []string{"강남구", "테헤란로"})
	require.NoError(t, err)

	assert.Zero(t, got.Ranked[0].Score)
	assert.Equal(t, model.ConfidenceHigh, got.Confidence)
}

func TestCandidateResolver_MultipleCandidatesAreRanked(t *testing.T) {
	near := model.RegistryCandidate{RoadAddressPart1: "서울특별시 테헤란로 123", RoadName: "테헤란로", CityName: "서울특별시", NeighborhoodName: "역삼동"}
	far := model.RegistryCandidate{RoadAddressPart1: "부산광역시 테헤란로 123", RoadName: "테헤란로", CityName: "부산광역시", NeighborhoodName: "역삼동"}
	reg := newFakeRegistry().on("서울특별시 역삼동 테헤란로 123", far, near)
	r := newTestResolver(reg)

	tokens := []string{"서울특별시", "역삼동", "테헤란로", "123"}
	got, err := r.Resolve(context.Background(), strings.Join(tokens, " "), tokens)
	require.NoError(t, err)

	assert.Equal(t, near.RoadAddressPart1, got.Candidate.RoadAddressPart1)
	assert.Equal(t, 80, got.Ranked[0].Score)
	assert.Equal(t, 60, got.Ranked[1].Score)
	assert.Equal(t, model.ConfidenceHigh, got.Confidence)
	assert.Equal(t, 2, got.CandidateCount)
}

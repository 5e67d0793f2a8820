package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"addrcore/internal/metrics"
	"addrcore/internal/model"
	"addrcore/internal/utils"
)

// ErrBuildingNotFound is returned when no search strategy yields a candidate.
var ErrBuildingNotFound = errors.New("building not found")

const (
	maxTrimAttempts  = 4
	minKeywordTokens = 2
	strategyTrim     = "trim"
)

var parentheticalRe = regexp.MustCompile(`\([^)]*\)`)

// searchStrategy derives a fresh keyword from the original tokens.
// ok is false when the strategy does not apply.
type searchStrategy struct {
	name   string
	derive func(tokens []string) (keyword string, ok bool)
}

// Phase B strategies, tried in this order.
var searchStrategies = []searchStrategy{
	{"remove_parentheses", removeParentheses},
	{"remove_building_name", removeBuildingName},
	{"collapse_spaces", collapseSpaces},
	{"expand_region", expandRegion},
}

func removeParentheses(tokens []string) (string, bool) {
	remaining := Tokenize(parentheticalRe.ReplaceAllString(strings.Join(tokens, " "), " "))
	if len(remaining) == 0 {
		return "", false
	}
	return strings.Join(remaining, " "), true
}

func removeBuildingName(tokens []string) (string, bool) {
	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if !utils.ContainsAny(tok, buildingNameKeywords) {
			kept = append(kept, tok)
		}
	}
	if len(kept) < minKeywordTokens {
		return "", false
	}
	return strings.Join(kept, " "), true
}

func collapseSpaces(tokens []string) (string, bool) {
	return strings.Join(tokens, ""), len(tokens) > 0
}

func expandRegion(tokens []string) (string, bool) {
	expanded := Tokenize(ExpandRegionAbbreviation(strings.Join(tokens, " ")))
	return strings.Join(expanded, " "), len(expanded) > 0
}

// ResolvedCandidate is the candidate accepted for an input address
type ResolvedCandidate struct {
	Candidate      model.RegistryCandidate
	Confidence     model.Confidence
	CandidateCount int
	Ranked         []model.ScoredCandidate
	// TrimmedParts are the tokens popped during trimming, in input order.
	TrimmedParts []string
	Strategy     string
}

// CandidateResolver finds the registry building matching a normalized address
type CandidateResolver struct {
	registry Registry
	ranker   *Ranker
	metrics  *metrics.Metrics
	log      *slog.Logger
}

// NewCandidateResolver creates a new candidate resolver
func NewCandidateResolver(registry Registry, ranker *Ranker, m *metrics.Metrics, logger *slog.Logger) *CandidateResolver {
	return &CandidateResolver{
		registry: registry,
		ranker:   ranker,
		metrics:  m,
		log:      logger.With("component", "resolver"),
	}
}

// Resolve runs progressive trimming, then the retry strategies. Registry
// errors abort the resolution; ErrBuildingNotFound means every strategy came
// back empty.
func (r *CandidateResolver) Resolve(ctx context.Context, normalized string, tokens []string) (*ResolvedCandidate, error) {
	tried := make(map[string]bool)

	// Phase A: progressive trimming
	keywordTokens := append([]string(nil), tokens...)
	var trimmed []string
	for attempt := 0; attempt < maxTrimAttempts && len(keywordTokens) >= minKeywordTokens; attempt++ {
		keyword := strings.Join(keywordTokens, " ")
		tried[keyword] = true

		candidates, err := r.query(ctx, keyword)
		if err != nil {
			return nil, err
		}
		if len(candidates) > 0 {
			return r.accept(candidates, normalized, tokens, trimmed, strategyTrim), nil
		}

		last := keywordTokens[len(keywordTokens)-1]
		keywordTokens = keywordTokens[:len(keywordTokens)-1]
		trimmed = append([]string{last}, trimmed...)
	}

	// Phase B: each strategy starts again from the original tokens
	for _, strategy := range searchStrategies {
		keyword, ok := strategy.derive(tokens)
		if !ok || keyword == "" || tried[keyword] {
			continue
		}
		tried[keyword] = true

		candidates, err := r.query(ctx, keyword)
		if err != nil {
			return nil, err
		}
		if len(candidates) > 0 {
			r.log.DebugContext(ctx, "retry strategy matched", slog.String("strategy", strategy.name), slog.String("keyword", keyword))
			return r.accept(candidates, normalized, tokens, nil, strategy.name), nil
		}
	}

	return nil, ErrBuildingNotFound
}

func (r *CandidateResolver) query(ctx context.Context, keyword string) ([]model.RegistryCandidate, error) {
	resp, err := r.registry.Query(ctx, keyword)
	if err != nil {
		return nil, fmt.Errorf("registry query %q: %w", keyword, err)
	}
	if resp == nil {
		return nil, nil
	}
	return resp.Candidates, nil
}

func (r *CandidateResolver) accept(candidates []model.RegistryCandidate, normalized string, tokens, trimmed []string, strategy string) *ResolvedCandidate {
	r.metrics.IncrementStrategy(strategy)

	ranked := r.ranker.RankCandidates(candidates, normalized, tokens)

	// A single registry answer is taken as is, whatever its score.
	confidence := model.ConfidenceHigh
	if len(candidates) > 1 {
		confidence = ClassifyConfidence(ranked)
	}

	return &ResolvedCandidate{
		Candidate:      ranked[0].Candidate,
		Confidence:     confidence,
		CandidateCount: len(candidates),
		Ranked:         ranked,
		TrimmedParts:   trimmed,
		Strategy:       strategy,
	}
}

package service

import (
	"sort"
	"strings"

	"addrcore/internal/model"
	"addrcore/internal/utils"
)

// Match reason constants
const (
	ReasonRoadNameMatch     = "Road name match"
	ReasonCityMatch         = "City match"
	ReasonDistrictMatch     = "District match"
	ReasonNeighborhoodMatch = "Neighborhood match"
	ReasonBuildingNameMatch = "Building name match"
)

// Confidence thresholds
const (
	highConfidenceScore   = 70
	highConfidenceMargin  = 15
	mediumConfidenceScore = 50
)

// ScoreWeights are the points awarded per matching candidate field
type ScoreWeights struct {
	RoadName     int
	City         int
	District     int
	Neighborhood int
	BuildingName int
}

// DefaultScoreWeights returns the production weights
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		RoadName:     50,
		City:         20,
		District:     20,
		Neighborhood: 10,
		BuildingName: 15,
	}
}

// Ranker scores registry candidates against the user's input
type Ranker struct {
	weights ScoreWeights
}

// NewRanker creates a new ranker with specified weights
func NewRanker(weights ScoreWeights) *Ranker {
	return &Ranker{weights: weights}
}

// RankCandidates scores every candidate and sorts by score descending.
// Equal scores keep the registry's order.
func (r *Ranker) RankCandidates(candidates []model.RegistryCandidate, normalizedInput string, tokens []string) []model.ScoredCandidate {
	results := make([]model.ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		results = append(results, r.ScoreCandidate(c, normalizedInput, tokens))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

// ScoreCandidate computes the match score of one candidate
func (r *Ranker) ScoreCandidate(c model.RegistryCandidate, normalizedInput string, tokens []string) model.ScoredCandidate {
	input := strings.ToLower(normalizedInput)
	result := model.ScoredCandidate{Candidate: c, MatchedReasons: []string{}}

	fields := []struct {
		value  string
		points int
		reason string
	}{
		{c.RoadName, r.weights.RoadName, ReasonRoadNameMatch},
		{c.CityName, r.weights.City, ReasonCityMatch},
		{c.DistrictName, r.weights.District, ReasonDistrictMatch},
		{c.NeighborhoodName, r.weights.Neighborhood, ReasonNeighborhoodMatch},
	}
	for _, f := range fields {
		if f.value != "" && strings.Contains(input, strings.ToLower(f.value)) {
			result.Score += f.points
			result.MatchedReasons = append(result.MatchedReasons, f.reason)
		}
	}

	// At most one bonus, however many tokens match.
	if c.BuildingName != "" {
		for _, tok := range tokens {
			if utils.MutualContains(tok, c.BuildingName) {
				result.Score += r.weights.BuildingName
				result.MatchedReasons = append(result.MatchedReasons, ReasonBuildingNameMatch)
				break
			}
		}
	}

	return result
}

// ClassifyConfidence derives the confidence tier from the ranked list
func ClassifyConfidence(ranked []model.ScoredCandidate) model.Confidence {
	if len(ranked) == 0 {
		return model.ConfidenceLow
	}
	best := ranked[0].Score
	if best >= highConfidenceScore && (len(ranked) == 1 || best-ranked[1].Score >= highConfidenceMargin) {
		return model.ConfidenceHigh
	}
	if best >= mediumConfidenceScore {
		return model.ConfidenceMedium
	}
	return model.ConfidenceLow
}

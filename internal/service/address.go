package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"addrcore/internal/metrics"
	"addrcore/internal/model"
)

// AddressService turns one free-form address into a resolution result
type AddressService struct {
	resolver   *CandidateResolver
	validator  *DetailValidator
	validation ValidatorOptions
	bulk       BulkOptions
	metrics    *metrics.Metrics
	log        *slog.Logger
}

// NewAddressService creates a new address service
func NewAddressService(
	resolver *CandidateResolver,
	validator *DetailValidator,
	validation ValidatorOptions,
	bulk BulkOptions,
	m *metrics.Metrics,
	logger *slog.Logger,
) *AddressService {
	return &AddressService{
		resolver:   resolver,
		validator:  validator,
		validation: validation,
		bulk:       bulk.withDefaults(),
		metrics:    m,
		log:        logger.With("component", "address_service"),
	}
}

// Resolve runs the resolution checks in order; the first failing check
// decides the status. It never returns an error.
func (s *AddressService) Resolve(ctx context.Context, raw string) model.AddressResolutionResult {
	result := s.resolve(ctx, raw)
	s.metrics.IncrementOutcome(string(result.Status), result.ReasonCode)
	return result
}

func (s *AddressService) resolve(ctx context.Context, raw string) model.AddressResolutionResult {
	result := model.AddressResolutionResult{InputAddress: raw}

	if strings.TrimSpace(raw) == "" {
		return invalid(result, model.ReasonEmptyInput, "address is empty")
	}

	normalized := NormalizeAddress(raw)
	tokens := Tokenize(normalized)
	if len(tokens) < minKeywordTokens {
		return invalid(result, model.ReasonAddressTooShort, "address too short")
	}

	resolved, err := s.resolver.Resolve(ctx, normalized, tokens)
	switch {
	case errors.Is(err, ErrRegistryNotConfigured):
		return invalid(result, model.ReasonRegistryNotConfigured, "address registry is not configured")
	case errors.Is(err, ErrBuildingNotFound):
		return invalid(result, model.ReasonBuildingNotFound, "building not found")
	case err != nil:
		s.log.WarnContext(ctx, "registry failure", slog.String("address", raw), slog.String("error", err.Error()))
		return invalid(result, model.ReasonRegistryError, "address registry request failed")
	}

	candidate := resolved.Candidate
	class := ClassifyBuilding(candidate.BuildingTypeCode, candidate.BuildingName)

	result.CanonicalAddress = candidate.CanonicalAddress()
	result.RoadAddress = candidate.RoadAddress
	result.JibunAddress = candidate.JibunAddress
	result.PostalCode = candidate.PostalCode
	result.BuildingName = candidate.BuildingName
	result.BuildingClass = class
	result.Confidence = resolved.Confidence
	result.CandidateCount = resolved.CandidateCount
	result.SearchStrategy = resolved.Strategy

	rawDetail := ExtractDetail(tokens, result.CanonicalAddress)
	if rawDetail == "" {
		rawDetail = strings.Join(resolved.TrimmedParts, " ")
	}
	detail := NormalizeDetail(rawDetail)
	result.DetailAddress = detail

	// Content checks run on the normalized detail, invalid characters first.
	switch {
	case HasInvalidCharacters(detail):
		return warning(result, model.ReasonInvalidCharacters, "detail address contains invalid characters")
	case HasForbiddenWord(detail, class.IsApartment()):
		return warning(result, model.ReasonForbiddenContent, "detail address contains placeholder or forbidden text")
	case HasMixedMemo(detail):
		return warning(result, model.ReasonMixedMemo, "detail address is mixed with a delivery memo or phone number")
	case HasUnrealisticValue(detail):
		return warning(result, model.ReasonUnrealisticValue, "detail address has an implausible block or unit number")
	}

	outcome := s.validator.Validate(ctx, DetailRequest{
		Raw:           rawDetail,
		Normalized:    detail,
		BuildingClass: class,
		BuildingName:  candidate.BuildingName,
	}, s.validation)
	result.ValidationSource = string(outcome.Source)
	if outcome.CorrectedDetail != "" {
		result.DetailAddress = outcome.CorrectedDetail
	}
	if !outcome.IsValid {
		return warning(result, outcome.ReasonCode, outcome.WarningMessage)
	}

	if resolved.Confidence == model.ConfidenceLow && resolved.CandidateCount > 1 {
		return warning(result, model.ReasonAmbiguousCandidates, "several buildings matched; the best candidate was selected automatically")
	}

	result.Status = model.StatusValid
	result.ReasonCode = outcome.ReasonCode
	if result.ReasonCode == "" {
		result.ReasonCode = model.ReasonOK
	}
	return result
}

func invalid(result model.AddressResolutionResult, reason, message string) model.AddressResolutionResult {
	result.Status = model.StatusInvalid
	result.ReasonCode = reason
	result.Message = message
	return result
}

func warning(result model.AddressResolutionResult, reason, message string) model.AddressResolutionResult {
	result.Status = model.StatusWarning
	result.ReasonCode = reason
	result.Message = message
	return result
}

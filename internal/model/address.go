package model

// RegistryCandidate is one record returned by the road-name address registry
type RegistryCandidate struct {
	RoadAddress      string `json:"roadAddr"`
	RoadAddressPart1 string `json:"roadAddrPart1"`
	RoadAddressPart2 string `json:"roadAddrPart2"`
	JibunAddress     string `json:"jibunAddr"`
	PostalCode       string `json:"zipNo"`
	BuildingName     string `json:"bdNm"`
	BuildingTypeCode string `json:"bdKdcd"` // "1" = multi-unit housing
	CityName         string `json:"siNm"`
	DistrictName     string `json:"sggNm"`
	NeighborhoodName string `json:"emdNm"`
	RoadName         string `json:"rn"`
	BuildingMainNo   string `json:"buldMnnm"`
	BuildingSubNo    string `json:"buldSlno"`
}

// CanonicalAddress returns the road address without the parenthetical reference part
func (c RegistryCandidate) CanonicalAddress() string {
	if c.RoadAddressPart1 != "" {
		return c.RoadAddressPart1
	}
	return c.RoadAddress
}

// RegistryResponse is the result of one registry keyword query
type RegistryResponse struct {
	TotalCount int                 `json:"total_count"`
	Candidates []RegistryCandidate `json:"candidates"`
}

// ScoredCandidate pairs a registry candidate with its match score
type ScoredCandidate struct {
	Candidate      RegistryCandidate `json:"candidate"`
	Score          int               `json:"score"`
	MatchedReasons []string          `json:"matched_reasons"`
}

// Confidence is the tier assigned to a candidate selection
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// BuildingClass determines which sub-unit grammar a building requires
type BuildingClass string

const (
	BuildingStrictApartment  BuildingClass = "strict_apartment"
	BuildingRelaxedApartment BuildingClass = "relaxed_apartment"
	BuildingGeneral          BuildingClass = "general"
)

// IsApartment reports whether the class needs a unit-level detail address
func (b BuildingClass) IsApartment() bool {
	return b == BuildingStrictApartment || b == BuildingRelaxedApartment
}

// ResolutionStatus is the terminal status of an address resolution
type ResolutionStatus string

const (
	StatusValid   ResolutionStatus = "valid"
	StatusWarning ResolutionStatus = "warning"
	StatusInvalid ResolutionStatus = "invalid"
)

// Reason codes carried by resolution results
const (
	ReasonOK                    = "ok"
	ReasonEmptyInput            = "empty_input"
	ReasonAddressTooShort       = "address_too_short"
	ReasonRegistryNotConfigured = "registry_not_configured"
	ReasonRegistryError         = "registry_error"
	ReasonBuildingNotFound      = "building_not_found"
	ReasonInvalidCharacters     = "invalid_characters"
	ReasonForbiddenContent      = "forbidden_content"
	ReasonMixedMemo             = "mixed_memo"
	ReasonUnrealisticValue      = "unrealistic_value"
	ReasonAmbiguousCandidates   = "ambiguous_candidates"
)

// AddressResolutionResult is returned once per resolution call and never mutated afterwards
type AddressResolutionResult struct {
	Status           ResolutionStatus `json:"status"`
	InputAddress     string           `json:"input_address"`
	CanonicalAddress string           `json:"canonical_address,omitempty"`
	RoadAddress      string           `json:"road_address,omitempty"`
	JibunAddress     string           `json:"jibun_address,omitempty"`
	DetailAddress    string           `json:"detail_address,omitempty"`
	PostalCode       string           `json:"postal_code,omitempty"`
	BuildingName     string           `json:"building_name,omitempty"`
	BuildingClass    BuildingClass    `json:"building_class,omitempty"`
	ReasonCode       string           `json:"reason_code"`
	Message          string           `json:"message,omitempty"`
	Confidence       Confidence       `json:"confidence,omitempty"`
	CandidateCount   int              `json:"candidate_count"`
	SearchStrategy   string           `json:"search_strategy,omitempty"`
	ValidationSource string           `json:"validation_source,omitempty"`
}

package service

import (
	"strings"

	"addrcore/internal/model"
	"addrcore/internal/utils"
)

// multiUnitHousingCode is the registry building-type code for multi-unit housing.
const multiUnitHousingCode = "1"

// villaSuffix covers terse names such as "한신빌" that the keyword list misses.
const villaSuffix = "빌"

var strictApartmentKeywords = []string{
	"아파트", "apt", "공동주택", "연립", "다세대",
}

var relaxedApartmentKeywords = []string{
	"빌라", "주상복합", "오피스텔", "타운하우스", "타워", "맨션", "팰리스", "빌딩", "레지던스", "하이츠",
}

// buildingNameKeywords is every keyword that marks a token as a building name.
var buildingNameKeywords = append(append([]string{}, strictApartmentKeywords...), relaxedApartmentKeywords...)

// IsStrictApartment reports whether a building needs a block+unit detail address.
func IsStrictApartment(buildingTypeCode, buildingName string) bool {
	if buildingTypeCode == multiUnitHousingCode {
		return true
	}
	return utils.ContainsAny(buildingName, strictApartmentKeywords)
}

// IsRelaxedApartment reports whether a building needs a unit-level detail address
// without being a strict apartment.
func IsRelaxedApartment(buildingTypeCode, buildingName string) bool {
	if IsStrictApartment(buildingTypeCode, buildingName) {
		return false
	}
	if utils.ContainsAny(buildingName, relaxedApartmentKeywords) {
		return true
	}
	return strings.HasSuffix(strings.TrimSpace(buildingName), villaSuffix)
}

// ClassifyBuilding applies StrictApartment > RelaxedApartment > General.
func ClassifyBuilding(buildingTypeCode, buildingName string) model.BuildingClass {
	switch {
	case IsStrictApartment(buildingTypeCode, buildingName):
		return model.BuildingStrictApartment
	case IsRelaxedApartment(buildingTypeCode, buildingName):
		return model.BuildingRelaxedApartment
	default:
		return model.BuildingGeneral
	}
}

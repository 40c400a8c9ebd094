package parcels

import (
	"github.com/rotisserie/eris"
)

// SpeciesInfo summarizes the dominant declared crop across a set of GSAA
// parcels: the species covering the largest summed area.
type SpeciesInfo struct {
	ParcelID           string  `json:"parcel_id"`
	LPISParcelID       string  `json:"lpis_parcel_id"`
	SpeciesCode        string  `json:"species_code"`
	SpeciesDescription string  `json:"species_description"`
	Area               float64 `json:"area"`
}

// DominantSpecies returns the species with the largest summed area among the
// given records. Records without species information are ignored.
func DominantSpecies(records []ParcelRecord) (*SpeciesInfo, error) {
	type key struct {
		code        string
		description string
	}
	areas := make(map[key]float64)
	for _, rec := range records {
		if rec.SpeciesCode == nil {
			continue
		}
		k := key{code: *rec.SpeciesCode}
		if rec.SpeciesDescription != nil {
			k.description = *rec.SpeciesDescription
		}
		var area float64
		if rec.Area != nil {
			area = *rec.Area
		}
		areas[k] += area
	}
	if len(areas) == 0 {
		return nil, eris.New("parcels: no species information in records")
	}

	var best key
	bestArea := -1.0
	for k, area := range areas {
		if area > bestArea || (area == bestArea && k.code < best.code) {
			best, bestArea = k, area
		}
	}
	return &SpeciesInfo{
		SpeciesCode:        best.code,
		SpeciesDescription: best.description,
		Area:               bestArea,
	}, nil
}

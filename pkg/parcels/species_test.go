package parcels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gsaaRecord(code, desc string, area float64) ParcelRecord {
	return ParcelRecord{
		Year:               2023,
		SpeciesCode:        &code,
		SpeciesDescription: &desc,
		Area:               &area,
	}
}

func TestDominantSpecies_LargestSummedArea(t *testing.T) {
	records := []ParcelRecord{
		gsaaRecord("1310", "Kaura", 1.2),
		gsaaRecord("1310", "Kaura", 1.1),
		gsaaRecord("1400", "Ohra", 2.0),
	}

	info, err := DominantSpecies(records)
	require.NoError(t, err)
	assert.Equal(t, "1310", info.SpeciesCode)
	assert.Equal(t, "Kaura", info.SpeciesDescription)
	assert.InDelta(t, 2.3, info.Area, 1e-9)
}

func TestDominantSpecies_TieBreaksOnCode(t *testing.T) {
	records := []ParcelRecord{
		gsaaRecord("1400", "Ohra", 1.0),
		gsaaRecord("1310", "Kaura", 1.0),
	}

	info, err := DominantSpecies(records)
	require.NoError(t, err)
	assert.Equal(t, "1310", info.SpeciesCode)
}

func TestDominantSpecies_MissingAreaCountsAsZero(t *testing.T) {
	noArea := ParcelRecord{Year: 2023, SpeciesCode: strPtr("1400")}
	records := []ParcelRecord{
		noArea,
		gsaaRecord("1310", "Kaura", 0.5),
	}

	info, err := DominantSpecies(records)
	require.NoError(t, err)
	assert.Equal(t, "1310", info.SpeciesCode)
}

func TestDominantSpecies_NoSpeciesInformation(t *testing.T) {
	records := []ParcelRecord{
		{Year: 2023, Area: floatPtr(1.0)},
	}
	_, err := DominantSpecies(records)
	assert.Error(t, err)
}

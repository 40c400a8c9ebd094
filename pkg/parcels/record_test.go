package parcels

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

func strPtr(s string) *string    { return &s }
func floatPtr(f float64) *float64 { return &f }

func TestParcelID(t *testing.T) {
	gsaa := ParcelRecord{
		Year:         2023,
		LPISParcelID: strPtr("5730455963"),
		ParcelName:   strPtr("2"),
	}
	assert.Equal(t, "2023-5730455963-2", gsaa.ParcelID())

	lpis := ParcelRecord{
		Year:         2023,
		LPISParcelID: strPtr("5730455963"),
	}
	assert.Equal(t, "2023-5730455963", lpis.ParcelID())

	bare := ParcelRecord{Year: 2023}
	assert.Equal(t, "2023", bare.ParcelID())
}

func TestSplitGSAAParcelID(t *testing.T) {
	lpisID, name, err := SplitGSAAParcelID("5730455963-2")
	require.NoError(t, err)
	assert.Equal(t, "5730455963", lpisID)
	assert.Equal(t, "2", name)

	// Only the first separator splits; the name keeps the rest.
	lpisID, name, err = SplitGSAAParcelID("5730455963-2-A")
	require.NoError(t, err)
	assert.Equal(t, "5730455963", lpisID)
	assert.Equal(t, "2-A", name)

	for _, id := range []string{"", "5730455963", "5730455963-", "-2"} {
		_, _, err := SplitGSAAParcelID(id)
		assert.Error(t, err, "id %q", id)
	}
}

func TestMarshalJSON(t *testing.T) {
	rec := ParcelRecord{
		ID:           "f.1",
		Year:         2023,
		LPISParcelID: strPtr("725173"),
		Area:         floatPtr(1.52),
		SpeciesCode:  strPtr("1310"),
		ParcelName:   strPtr("2"),
		Geometry:     geom.NewPointFlat(geom.XY, []float64{22.391, 60.2945}).SetSRID(4326),
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "f.1", got["id"])
	assert.Equal(t, "2023-725173-2", got["parcel_id"])
	assert.Equal(t, float64(2023), got["year"])
	assert.Equal(t, "725173", got["lpis_parcel_id"])
	assert.Equal(t, 1.52, got["area"])
	assert.NotContains(t, got, "species_description")

	geomObj, ok := got["geometry"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Point", geomObj["type"])
}

func TestMarshalJSON_NilGeometry(t *testing.T) {
	data, err := json.Marshal(ParcelRecord{ID: "f.1", Year: 2023})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "geometry")
}

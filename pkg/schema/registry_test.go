package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_BuiltinCountries(t *testing.T) {
	r := NewRegistry()

	fi, err := r.Get("FI")
	require.NoError(t, err)
	assert.Equal(t, "FI", fi.ID)
	assert.Equal(t, 3067, fi.SRID)
	assert.Contains(t, fi.Layer(GSAA), YearPlaceholder)
	assert.Equal(t, "PERUSLOHKOTUNNUS", fi.Properties(GSAA).LPISParcelID)

	dk, err := r.Get("DK")
	require.NoError(t, err)
	assert.Equal(t, "DK", dk.ID)
	assert.Equal(t, 25832, dk.SRID)
	assert.NotContains(t, dk.Layer(GSAA), YearPlaceholder)
	assert.NotEmpty(t, dk.Years)
}

func TestRegistry_UnknownCountry(t *testing.T) {
	r := NewRegistry()

	_, err := r.Get("ZZ")
	require.Error(t, err)

	var unknownErr *UnknownCountryError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "ZZ", unknownErr.Code)
}

func TestRegistry_ExplicitBeatsBuiltin(t *testing.T) {
	r := NewRegistry()

	custom, err := Load(strings.NewReader(strings.Replace(validYAML, "id: XX", "id: FI", 1)))
	require.NoError(t, err)
	require.NoError(t, r.Register(custom))

	got, err := r.Get("FI")
	require.NoError(t, err)
	assert.Equal(t, "test:GSAAParcel.{year}", got.Layer(GSAA))
}

func TestRegistry_DuplicateRegistration(t *testing.T) {
	r := NewRegistry()

	s, err := Load(strings.NewReader(validYAML))
	require.NoError(t, err)
	require.NoError(t, r.Register(s))
	assert.Error(t, r.Register(s))
}

func TestRegistry_RegisterValidates(t *testing.T) {
	r := NewRegistry()

	err := r.Register(&CountrySchema{})
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestRegistry_Codes(t *testing.T) {
	r := NewRegistry()

	s, err := Load(strings.NewReader(validYAML))
	require.NoError(t, err)
	require.NoError(t, r.Register(s))

	codes := r.Codes()
	assert.Contains(t, codes, "FI")
	assert.Contains(t, codes, "DK")
	assert.Contains(t, codes, "XX")
	assert.IsIncreasing(t, codes)
}

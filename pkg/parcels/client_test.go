package parcels

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordagri/parcelwfs/pkg/schema"
	"github.com/nordagri/parcelwfs/pkg/wfs"
)

// fakeTransport satisfies wfs.Client, recording every spec it sees and
// answering from a caller-supplied function.
type fakeTransport struct {
	mu      sync.Mutex
	specs   []*wfs.Spec
	respond func(spec *wfs.Spec) ([]byte, error)
	layers  []string
	capErr  error
}

func (f *fakeTransport) Fetch(_ context.Context, spec *wfs.Spec) ([]byte, error) {
	f.mu.Lock()
	f.specs = append(f.specs, spec)
	f.mu.Unlock()
	return f.respond(spec)
}

func (f *fakeTransport) Capabilities(_ context.Context, _, _ string) ([]string, error) {
	return f.layers, f.capErr
}

func (f *fakeTransport) lastSpec(t *testing.T) *wfs.Spec {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.specs)
	return f.specs[len(f.specs)-1]
}

func gsaaFeature(id string, year int, ref, name, crop string, area float64) string {
	return fmt.Sprintf(`{
  "type": "Feature",
  "geometry": {"type": "Point", "coordinates": [22.39, 60.29]},
  "properties": {"PARCEL_ID": %q, "YEAR": %d, "REF": %q, "NAME": %q, "CROP": %q, "CROP_NAME": "Crop %s", "AREA": %g}
}`, id, year, ref, name, crop, crop, area)
}

func collection(features ...string) []byte {
	return []byte(`{"type":"FeatureCollection","features":[` + strings.Join(features, ",") + `]}`)
}

const emptyCollection = `{"type":"FeatureCollection","features":[]}`

func testClient(t *testing.T, ft *fakeTransport) Client {
	t.Helper()
	reg := schema.NewRegistry()
	require.NoError(t, reg.Register(testCountrySchema(t, 4326)))
	return New(WithRegistry(reg), WithTransport(ft), WithMaxConcurrentYears(2))
}

func TestParcelsByPoint(t *testing.T) {
	ft := &fakeTransport{respond: func(*wfs.Spec) ([]byte, error) {
		return collection(gsaaFeature("gsaa.1", 2023, "725173", "2", "1310", 1.5)), nil
	}}
	c := testClient(t, ft)

	records, err := c.ParcelsByPoint(context.Background(), "XX", 60.2945, 22.391, schema.GSAA, 2023)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2023-725173-2", records[0].ParcelID())

	spec := ft.lastSpec(t)
	assert.Equal(t, "test:GSAA.2023", spec.Layer)
	assert.Equal(t, "Intersects(geom,POINT (22.391 60.2945))", spec.Filter)
}

func TestParcelsByPoint_NoMatch(t *testing.T) {
	ft := &fakeTransport{respond: func(*wfs.Spec) ([]byte, error) {
		return []byte(emptyCollection), nil
	}}
	c := testClient(t, ft)

	_, err := c.ParcelsByPoint(context.Background(), "XX", 60.2945, 22.391, schema.LPIS, 2023)
	var nfe *NoParcelFoundError
	require.ErrorAs(t, err, &nfe)
	assert.Equal(t, "XX", nfe.Country)
	assert.Equal(t, schema.LPIS, nfe.Category)
	assert.Equal(t, 2023, nfe.Year)
}

func TestParcelsByPoint_UnknownCountry(t *testing.T) {
	c := testClient(t, &fakeTransport{})
	_, err := c.ParcelsByPoint(context.Background(), "ZZ", 60.0, 22.0, schema.GSAA, 2023)
	var uce *schema.UnknownCountryError
	assert.ErrorAs(t, err, &uce)
}

func TestParcelsByPointYears_MatchesSingleYearQueries(t *testing.T) {
	respond := func(spec *wfs.Spec) ([]byte, error) {
		return collection(gsaaFeature(fmt.Sprintf("gsaa.%d", spec.Year), spec.Year, "725173", "2", "1310", 1.5)), nil
	}
	c := testClient(t, &fakeTransport{respond: respond})

	rs, err := c.ParcelsByPointYears(context.Background(), "XX", 60.2945, 22.391, schema.GSAA, []int{2023, 2022})
	require.NoError(t, err)
	assert.Equal(t, []int{2022, 2023}, rs.Years())
	assert.Empty(t, rs.FailedYears())

	for _, year := range []int{2022, 2023} {
		single, err := c.ParcelsByPoint(context.Background(), "XX", 60.2945, 22.391, schema.GSAA, year)
		require.NoError(t, err)
		assert.Equal(t, single, rs.Records(year))
	}
}

func TestParcelsByPointYears_PartialFailure(t *testing.T) {
	respond := func(spec *wfs.Spec) ([]byte, error) {
		if spec.Year == 2022 {
			return nil, &wfs.TransportError{Endpoint: spec.Endpoint, StatusCode: 503}
		}
		return collection(gsaaFeature("gsaa.1", spec.Year, "725173", "2", "1310", 1.5)), nil
	}
	c := testClient(t, &fakeTransport{respond: respond})

	rs, err := c.ParcelsByPointYears(context.Background(), "XX", 60.2945, 22.391, schema.GSAA, []int{2021, 2022, 2023})
	require.NoError(t, err)
	assert.Equal(t, []int{2021, 2023}, rs.Years())
	assert.Equal(t, []int{2022}, rs.FailedYears())

	var te *wfs.TransportError
	require.ErrorAs(t, rs.Err(2022), &te)
	assert.Equal(t, 503, te.StatusCode)
}

func TestParcelByID(t *testing.T) {
	ft := &fakeTransport{respond: func(*wfs.Spec) ([]byte, error) {
		return collection(gsaaFeature("gsaa.1", 2023, "5730455963", "2", "1310", 1.5)), nil
	}}
	c := testClient(t, ft)

	rec, err := c.ParcelByID(context.Background(), "XX", "5730455963-2", 2023)
	require.NoError(t, err)
	assert.Equal(t, "2023-5730455963-2", rec.ParcelID())
	assert.Equal(t, "REF='5730455963' AND NAME='2'", ft.lastSpec(t).Filter)
}

func TestParcelByID_MalformedID(t *testing.T) {
	ft := &fakeTransport{}
	c := testClient(t, ft)

	_, err := c.ParcelByID(context.Background(), "XX", "5730455963", 2023)
	require.Error(t, err)
	assert.Empty(t, ft.specs)
}

func TestParcelsByReferenceParcelID(t *testing.T) {
	ft := &fakeTransport{respond: func(*wfs.Spec) ([]byte, error) {
		return collection(
			gsaaFeature("gsaa.1", 2023, "725173", "1", "1310", 1.5),
			gsaaFeature("gsaa.2", 2023, "725173", "2", "1400", 2.5),
		), nil
	}}
	c := testClient(t, ft)

	records, err := c.ParcelsByReferenceParcelID(context.Background(), "XX", "725173", 2023)
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, rec := range records {
		require.NotNil(t, rec.LPISParcelID)
		assert.Equal(t, "725173", *rec.LPISParcelID)
	}
	assert.Equal(t, "REF='725173'", ft.lastSpec(t).Filter)
	assert.Equal(t, schema.GSAA, ft.lastSpec(t).Category)
}

func TestReferenceParcelByID(t *testing.T) {
	ft := &fakeTransport{respond: func(*wfs.Spec) ([]byte, error) {
		return []byte(`{"type":"FeatureCollection","features":[{
  "type": "Feature",
  "geometry": {"type": "Point", "coordinates": [22.39, 60.29]},
  "properties": {"BLOCK_ID": "725173", "YEAR": 2023, "AREA": 3.4}
}]}`), nil
	}}
	c := testClient(t, ft)

	rec, err := c.ReferenceParcelByID(context.Background(), "XX", "725173", 2023)
	require.NoError(t, err)
	assert.Equal(t, "2023-725173", rec.ParcelID())

	spec := ft.lastSpec(t)
	assert.Equal(t, schema.LPIS, spec.Category)
	assert.Equal(t, "test:LPIS.2023", spec.Layer)
	assert.Equal(t, "BLOCK_ID='725173'", spec.Filter)
}

func TestAvailableYears_FromCapabilities(t *testing.T) {
	ft := &fakeTransport{layers: []string{
		"test:GSAA.2023",
		"test:GSAA.2021",
		"test:GSAA.2022",
		"test:LPIS.2023",
		"test:Unrelated",
	}}
	c := testClient(t, ft)

	years, err := c.AvailableYears(context.Background(), "XX", schema.GSAA)
	require.NoError(t, err)
	assert.Equal(t, []int{2021, 2022, 2023}, years)
}

func TestAvailableYears_StaticLayerUsesSchemaYears(t *testing.T) {
	s := testCountrySchema(t, 4326)
	s.ID = "YY"
	s.Layers = map[schema.Category]string{
		schema.GSAA: "test:Fields",
		schema.LPIS: "test:Blocks",
	}
	s.Years = []int{2021, 2019, 2020}
	reg := schema.NewRegistry()
	require.NoError(t, reg.Register(s))
	c := New(WithRegistry(reg), WithTransport(&fakeTransport{}))

	years, err := c.AvailableYears(context.Background(), "YY", schema.GSAA)
	require.NoError(t, err)
	assert.Equal(t, []int{2019, 2020, 2021}, years)
}

func TestAvailableYears_StaticLayerWithoutYears(t *testing.T) {
	s := testCountrySchema(t, 4326)
	s.ID = "YY"
	s.Layers = map[schema.Category]string{
		schema.GSAA: "test:Fields",
		schema.LPIS: "test:Blocks",
	}
	reg := schema.NewRegistry()
	require.NoError(t, reg.Register(s))
	c := New(WithRegistry(reg), WithTransport(&fakeTransport{}))

	_, err := c.AvailableYears(context.Background(), "YY", schema.GSAA)
	assert.Error(t, err)
}

func TestDominantSpecies(t *testing.T) {
	ft := &fakeTransport{respond: func(*wfs.Spec) ([]byte, error) {
		return collection(
			gsaaFeature("gsaa.1", 2023, "725173", "1", "1310", 1.2),
			gsaaFeature("gsaa.2", 2023, "725173", "2", "1310", 1.1),
			gsaaFeature("gsaa.3", 2023, "725173", "3", "1400", 2.0),
		), nil
	}}
	c := testClient(t, ft)

	info, err := c.DominantSpecies(context.Background(), "XX", "725173", 2023)
	require.NoError(t, err)
	assert.Equal(t, "1310", info.SpeciesCode)
	assert.Equal(t, "725173", info.LPISParcelID)
	assert.Equal(t, "2023-725173", info.ParcelID)
	assert.InDelta(t, 2.3, info.Area, 1e-9)
}

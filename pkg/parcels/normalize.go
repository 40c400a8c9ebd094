package parcels

import (
	"encoding/json"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/nordagri/parcelwfs/internal/proj"
	"github.com/nordagri/parcelwfs/pkg/schema"
)

// Normalize converts a raw GeoJSON feature collection into canonical parcel
// records using the schema's property mapping for the category. Geometry is
// reprojected from the service CRS to WGS84. A feature missing id, year or
// geometry is skipped with a warning; one bad feature never discards the
// batch.
func Normalize(s *schema.CountrySchema, cat schema.Category, raw []byte) ([]ParcelRecord, error) {
	var fc geojson.FeatureCollection
	if err := json.Unmarshal(raw, &fc); err != nil {
		return nil, eris.Wrap(err, "parcels: parse feature collection")
	}

	props := s.Properties(cat)
	records := make([]ParcelRecord, 0, len(fc.Features))
	for i, f := range fc.Features {
		rec, err := featureRecord(props, s.SRID, i, f)
		if err != nil {
			zap.L().Warn("parcels: skipping malformed feature",
				zap.String("country", s.ID),
				zap.String("category", string(cat)),
				zap.Error(err),
			)
			continue
		}
		records = append(records, *rec)
	}
	return records, nil
}

func featureRecord(props schema.PropertyMapping, srid, idx int, f *geojson.Feature) (*ParcelRecord, error) {
	id, ok := stringProp(f, props.ID)
	if !ok {
		return nil, &MalformedFeatureError{Index: idx, Reason: "missing property " + props.ID}
	}

	yearVal, ok := f.Properties[props.Year]
	if !ok {
		return nil, &MalformedFeatureError{Index: idx, Reason: "missing property " + props.Year}
	}
	year, ok := coerceInt(yearVal)
	if !ok {
		return nil, &MalformedFeatureError{Index: idx, Reason: "property " + props.Year + " is not a year"}
	}

	if f.Geometry == nil {
		return nil, &MalformedFeatureError{Index: idx, Reason: "missing geometry"}
	}
	g, err := reprojectGeometry(f.Geometry, srid)
	if err != nil {
		return nil, &MalformedFeatureError{Index: idx, Reason: err.Error()}
	}

	rec := &ParcelRecord{ID: id, Year: year, Geometry: g}
	if v, ok := stringProp(f, props.LPISParcelID); ok {
		rec.LPISParcelID = &v
	}
	if v, ok := f.Properties[props.Area]; ok {
		if area, ok := coerceFloat(v); ok {
			rec.Area = &area
		}
	}
	// Species fields and the parcel name are unmapped for LPIS.
	if props.SpeciesCode != "" {
		if v, ok := stringProp(f, props.SpeciesCode); ok {
			rec.SpeciesCode = &v
		}
	}
	if props.SpeciesDescription != "" {
		if v, ok := stringProp(f, props.SpeciesDescription); ok {
			rec.SpeciesDescription = &v
		}
	}
	if props.ParcelName != "" {
		if v, ok := stringProp(f, props.ParcelName); ok {
			rec.ParcelName = &v
		}
	}
	return rec, nil
}

// reprojectGeometry converts a geometry from the service CRS to WGS84,
// preserving the geometry type and ring structure.
func reprojectGeometry(g geom.T, srid int) (geom.T, error) {
	if srid == 4326 {
		return g, nil
	}

	layout := g.Layout()
	stride := layout.Stride()
	flat := append([]float64(nil), g.FlatCoords()...)
	for i := 0; i+1 < len(flat); i += stride {
		lat, lon, err := proj.ToGeographic(srid, flat[i], flat[i+1])
		if err != nil {
			return nil, err
		}
		flat[i], flat[i+1] = lon, lat
	}

	switch t := g.(type) {
	case *geom.Point:
		return geom.NewPointFlat(layout, flat).SetSRID(4326), nil
	case *geom.MultiPoint:
		return geom.NewMultiPointFlat(layout, flat).SetSRID(4326), nil
	case *geom.LineString:
		return geom.NewLineStringFlat(layout, flat).SetSRID(4326), nil
	case *geom.MultiLineString:
		return geom.NewMultiLineStringFlat(layout, flat, t.Ends()).SetSRID(4326), nil
	case *geom.Polygon:
		return geom.NewPolygonFlat(layout, flat, t.Ends()).SetSRID(4326), nil
	case *geom.MultiPolygon:
		return geom.NewMultiPolygonFlat(layout, flat, t.Endss()).SetSRID(4326), nil
	default:
		return nil, eris.Errorf("parcels: unsupported geometry type %T", g)
	}
}

// stringProp reads a property as a string, rendering numeric values without
// an exponent. GeoServer emits the feature id outside the properties object,
// so a mapping of "id" falls back to the feature-level id.
func stringProp(f *geojson.Feature, name string) (string, bool) {
	if name == "" {
		return "", false
	}
	if v, ok := f.Properties[name]; ok {
		return coerceString(v)
	}
	if name == "id" && f.ID != "" {
		return f.ID, true
	}
	return "", false
}

func coerceString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case json.Number:
		return t.String(), true
	default:
		return "", false
	}
}

func coerceInt(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		return int(t), true
	case int:
		return t, true
	case string:
		n, err := strconv.Atoi(t)
		return n, err == nil
	case json.Number:
		n, err := t.Int64()
		return int(n), err == nil
	default:
		return 0, false
	}
}

func coerceFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

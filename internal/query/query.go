// Package query translates an abstract parcel predicate into a concrete WFS
// request spec for one country, category and year. It performs no I/O.
package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nordagri/parcelwfs/internal/proj"
	"github.com/nordagri/parcelwfs/pkg/schema"
	"github.com/nordagri/parcelwfs/pkg/wfs"
)

// OutputFormat is the response encoding requested from every service. The
// normalizer assumes GeoJSON.
const OutputFormat = "json"

// Predicate selects which parcels a query matches.
type Predicate interface {
	predicate()
}

// PointPredicate matches parcels whose geometry contains a WGS84 point.
type PointPredicate struct {
	Lat float64
	Lon float64
}

// ParcelIDPredicate matches one GSAA parcel by its reference parcel id and
// parcel name (the two components of a GSAA parcel identifier).
type ParcelIDPredicate struct {
	LPISParcelID string
	ParcelName   string
}

// ReferenceParcelIDPredicate matches every parcel sharing a reference
// (LPIS) parcel id.
type ReferenceParcelIDPredicate struct {
	ID string
}

// SpeciesCodePredicate matches parcels declared with a crop species code.
// Only GSAA layers carry species information.
type SpeciesCodePredicate struct {
	Code string
}

func (PointPredicate) predicate()             {}
func (ParcelIDPredicate) predicate()          {}
func (ReferenceParcelIDPredicate) predicate() {}
func (SpeciesCodePredicate) predicate()       {}

// UnsupportedPredicateError reports a predicate the schema cannot answer for
// the requested category.
type UnsupportedPredicateError struct {
	Category schema.Category
	Reason   string
}

func (e *UnsupportedPredicateError) Error() string {
	return fmt.Sprintf("query: predicate not supported for category %q: %s", e.Category, e.Reason)
}

// Build resolves the layer for the year, translates the predicate into a CQL
// filter in the service's native CRS, and returns a dispatch-ready spec.
func Build(s *schema.CountrySchema, cat schema.Category, year int, pred Predicate) (*wfs.Spec, error) {
	props := s.Properties(cat)

	filter, err := buildFilter(s, cat, props, pred)
	if err != nil {
		return nil, err
	}

	layer := s.Layer(cat)
	if strings.Contains(layer, schema.YearPlaceholder) {
		layer = strings.ReplaceAll(layer, schema.YearPlaceholder, strconv.Itoa(year))
	} else {
		// Static layer holding all years: constrain on the year attribute.
		filter = fmt.Sprintf("%s AND %s=%d", filter, props.Year, year)
	}

	return &wfs.Spec{
		Country:      s.ID,
		Category:     cat,
		Year:         year,
		Endpoint:     s.Endpoint(cat),
		Layer:        layer,
		Filter:       filter,
		OutputFormat: OutputFormat,
		Version:      s.WFSVersion,
		SRID:         s.SRID,
	}, nil
}

func buildFilter(s *schema.CountrySchema, cat schema.Category, props schema.PropertyMapping, pred Predicate) (string, error) {
	switch p := pred.(type) {
	case PointPredicate:
		x, y, err := proj.ToPlanar(s.SRID, p.Lat, p.Lon)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Intersects(%s,POINT (%s %s))",
			props.Geometry, formatCoord(x), formatCoord(y)), nil

	case ParcelIDPredicate:
		if props.ParcelName == "" {
			return "", &UnsupportedPredicateError{Category: cat, Reason: "no parcel_name property mapped"}
		}
		if p.LPISParcelID == "" || p.ParcelName == "" {
			return "", &UnsupportedPredicateError{Category: cat, Reason: "parcel id predicate needs both reference parcel id and parcel name"}
		}
		return fmt.Sprintf("%s=%s AND %s=%s",
			props.LPISParcelID, quote(p.LPISParcelID),
			props.ParcelName, quote(p.ParcelName)), nil

	case ReferenceParcelIDPredicate:
		if p.ID == "" {
			return "", &UnsupportedPredicateError{Category: cat, Reason: "empty reference parcel id"}
		}
		return fmt.Sprintf("%s=%s", props.LPISParcelID, quote(p.ID)), nil

	case SpeciesCodePredicate:
		if props.SpeciesCode == "" {
			return "", &UnsupportedPredicateError{Category: cat, Reason: "no species_code property mapped"}
		}
		return fmt.Sprintf("%s=%s", props.SpeciesCode, quote(p.Code)), nil

	default:
		return "", &UnsupportedPredicateError{Category: cat, Reason: fmt.Sprintf("unknown predicate type %T", pred)}
	}
}

// quote single-quotes an identifier value. Without quoting, ids with leading
// zeros are read as numbers and match nothing.
func quote(v string) string {
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

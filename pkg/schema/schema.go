// Package schema describes national agricultural parcel WFS services: their
// endpoints, layer naming, native coordinate system, and the mapping from
// canonical parcel fields to service-specific property names. Schemas are
// loaded once, validated eagerly, and never mutated afterwards.
package schema

import (
	"io"
	"net/url"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/nordagri/parcelwfs/internal/proj"
)

// Category identifies one of the two parcel data categories a service exposes.
type Category string

const (
	// GSAA is farmer-declared land use data (Geospatial Aid Application).
	GSAA Category = "gsaa"
	// LPIS is reference parcel boundary data (Land Parcel Identification System).
	LPIS Category = "lpis"
)

// DefaultWFSVersion is assumed when a schema does not pin a protocol version.
const DefaultWFSVersion = "2.0.0"

// YearPlaceholder marks the spot in a layer template where the query year is
// substituted. Services without it expose one static layer filtered by a year
// attribute instead.
const YearPlaceholder = "{year}"

// PropertyMapping maps canonical parcel fields to the property names a
// service uses natively. Species fields and the parcel name are GSAA-only.
type PropertyMapping struct {
	ID                 string `yaml:"id"`
	Year               string `yaml:"year"`
	LPISParcelID       string `yaml:"lpis_parcel_id"`
	SpeciesCode        string `yaml:"species_code,omitempty"`
	SpeciesDescription string `yaml:"species_description,omitempty"`
	Area               string `yaml:"area"`
	ParcelName         string `yaml:"parcel_name,omitempty"`
	Geometry           string `yaml:"geometry"`
}

// CountrySchema is the immutable description of one country's parcel WFS.
type CountrySchema struct {
	ID             string              `yaml:"id"`
	WFSVersion     string              `yaml:"wfs_version"`
	SRID           int                 `yaml:"srid"`
	Endpoints      map[Category]string `yaml:"endpoints"`
	Layers         map[Category]string `yaml:"layers"`
	Years          []int               `yaml:"years,omitempty"`
	GSAAProperties PropertyMapping     `yaml:"gsaa_properties"`
	LPISProperties PropertyMapping     `yaml:"lpis_properties"`
}

// Load decodes and validates a country schema from a YAML document.
func Load(r io.Reader) (*CountrySchema, error) {
	var s CountrySchema
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, &ConfigError{Field: "document", Reason: "decode yaml: " + err.Error()}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadFile loads and validates a country schema from a YAML file on disk.
func LoadFile(path string) (*CountrySchema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "schema: open %s", path)
	}
	defer f.Close() //nolint:errcheck
	s, err := Load(f)
	if err != nil {
		return nil, eris.Wrapf(err, "schema: load %s", path)
	}
	return s, nil
}

// Validate checks the schema for the invariants every downstream consumer
// relies on and fills in defaults. It is called by Load and by
// Registry.Register, so a schema in circulation is always well-formed.
func (s *CountrySchema) Validate() error {
	if s.ID == "" {
		return &ConfigError{Field: "id", Reason: "must not be empty"}
	}
	if s.WFSVersion == "" {
		s.WFSVersion = DefaultWFSVersion
	}
	if s.SRID == 0 {
		s.SRID = 4326
	}
	if !proj.Supported(s.SRID) {
		return &ConfigError{Field: "srid", Reason: "no coordinate transform available for this SRID"}
	}

	for _, cat := range []Category{GSAA, LPIS} {
		endpoint, ok := s.Endpoints[cat]
		if !ok || endpoint == "" {
			return &ConfigError{Field: "endpoints." + string(cat), Reason: "missing"}
		}
		u, err := url.Parse(endpoint)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return &ConfigError{Field: "endpoints." + string(cat), Reason: "not a valid absolute URL"}
		}
		if layer, ok := s.Layers[cat]; !ok || layer == "" {
			return &ConfigError{Field: "layers." + string(cat), Reason: "missing"}
		}
	}

	if err := s.GSAAProperties.validate(GSAA); err != nil {
		return err
	}
	return s.LPISProperties.validate(LPIS)
}

func (m PropertyMapping) validate(cat Category) error {
	required := map[string]string{
		"id":             m.ID,
		"year":           m.Year,
		"lpis_parcel_id": m.LPISParcelID,
		"area":           m.Area,
		"geometry":       m.Geometry,
	}
	if cat == GSAA {
		required["species_code"] = m.SpeciesCode
		required["species_description"] = m.SpeciesDescription
		required["parcel_name"] = m.ParcelName
	}
	for field, value := range required {
		if value == "" {
			return &ConfigError{
				Field:  string(cat) + "_properties." + field,
				Reason: "missing",
			}
		}
	}
	return nil
}

// Endpoint returns the base URL for the given category.
func (s *CountrySchema) Endpoint(cat Category) string {
	return s.Endpoints[cat]
}

// Layer returns the layer name template for the given category.
func (s *CountrySchema) Layer(cat Category) string {
	return s.Layers[cat]
}

// Properties returns the property mapping for the given category.
func (s *CountrySchema) Properties(cat Category) PropertyMapping {
	if cat == LPIS {
		return s.LPISProperties
	}
	return s.GSAAProperties
}

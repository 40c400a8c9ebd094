// Package parcels is the public entry point for retrieving agricultural
// parcels (GSAA declared-use and LPIS reference parcels) from national WFS
// services. It composes schema lookup, query building, transport and
// response normalization behind one client, returning records in a single
// canonical shape with WGS84 geometry regardless of source country.
package parcels

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// ParcelIDSep separates the year, reference parcel id and parcel name
// components of a composite parcel identifier.
const ParcelIDSep = "-"

// ParcelRecord is one parcel in canonical form. Geometry is always WGS84.
// Pointer fields are nil when the source feature did not carry the value;
// species fields and the parcel name are never set for LPIS records.
type ParcelRecord struct {
	ID                 string
	Year               int
	LPISParcelID       *string
	Area               *float64
	SpeciesCode        *string
	SpeciesDescription *string
	ParcelName         *string
	Geometry           geom.T
}

// ParcelID renders the composite identifier {year}-{lpis_parcel_id} for LPIS
// records and {year}-{lpis_parcel_id}-{parcel_name} for GSAA records.
func (r ParcelRecord) ParcelID() string {
	parts := []string{fmt.Sprintf("%d", r.Year)}
	if r.LPISParcelID != nil {
		parts = append(parts, *r.LPISParcelID)
	}
	if r.ParcelName != nil {
		parts = append(parts, *r.ParcelName)
	}
	return strings.Join(parts, ParcelIDSep)
}

// MarshalJSON renders the record with GeoJSON geometry.
func (r ParcelRecord) MarshalJSON() ([]byte, error) {
	var rawGeom json.RawMessage
	if r.Geometry != nil {
		data, err := geojson.Marshal(r.Geometry)
		if err != nil {
			return nil, eris.Wrap(err, "parcels: marshal geometry")
		}
		rawGeom = data
	}
	return json.Marshal(struct {
		ID                 string          `json:"id"`
		ParcelID           string          `json:"parcel_id"`
		Year               int             `json:"year"`
		LPISParcelID       *string         `json:"lpis_parcel_id,omitempty"`
		Area               *float64        `json:"area,omitempty"`
		SpeciesCode        *string         `json:"species_code,omitempty"`
		SpeciesDescription *string         `json:"species_description,omitempty"`
		ParcelName         *string         `json:"parcel_name,omitempty"`
		Geometry           json.RawMessage `json:"geometry,omitempty"`
	}{
		ID:                 r.ID,
		ParcelID:           r.ParcelID(),
		Year:               r.Year,
		LPISParcelID:       r.LPISParcelID,
		Area:               r.Area,
		SpeciesCode:        r.SpeciesCode,
		SpeciesDescription: r.SpeciesDescription,
		ParcelName:         r.ParcelName,
		Geometry:           rawGeom,
	})
}

// SplitGSAAParcelID splits a GSAA parcel identifier of the form
// {lpis_parcel_id}-{parcel_name} into its components.
func SplitGSAAParcelID(id string) (lpisParcelID, parcelName string, err error) {
	parts := strings.SplitN(id, ParcelIDSep, 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", eris.Errorf("parcels: malformed GSAA parcel id %q, want {lpis_parcel_id}%s{parcel_name}", id, ParcelIDSep)
	}
	return parts[0], parts[1], nil
}

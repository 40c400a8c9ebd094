// Package wfs performs the network half of a parcel lookup: it turns a fully
// resolved query spec into an OGC WFS GetFeature request and hands back the
// raw feature-collection payload, and it reads layer names from a service's
// capabilities document. It owns no query semantics; everything variable is
// parameterized through the request spec.
package wfs

import "github.com/nordagri/parcelwfs/pkg/schema"

// Spec is a fully resolved feature request: endpoint, layer, filter and
// protocol version, ready to be dispatched without further interpretation.
type Spec struct {
	Country      string
	Category     schema.Category
	Year         int
	Endpoint     string
	Layer        string
	Filter       string
	OutputFormat string
	Version      string
	// SRID of the service's native CRS; coordinates inside Filter are
	// already expressed in it, and response geometries come back in it.
	SRID int
}

package parcels

import (
	"fmt"

	"github.com/nordagri/parcelwfs/pkg/schema"
)

// NoParcelFoundError reports that a query completed normally but matched
// zero parcels. It is an expected outcome, distinct from a transport
// failure.
type NoParcelFoundError struct {
	Country  string
	Category schema.Category
	Year     int
}

func (e *NoParcelFoundError) Error() string {
	return fmt.Sprintf("parcels: no %s parcel found for %s in %d", e.Category, e.Country, e.Year)
}

// MalformedFeatureError reports one feature in a response batch that could
// not be normalized. The batch continues without it.
type MalformedFeatureError struct {
	Index  int
	Reason string
}

func (e *MalformedFeatureError) Error() string {
	return fmt.Sprintf("parcels: malformed feature at index %d: %s", e.Index, e.Reason)
}

package parcels

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/nordagri/parcelwfs/internal/query"
	"github.com/nordagri/parcelwfs/pkg/schema"
	"github.com/nordagri/parcelwfs/pkg/wfs"
)

// Client exposes the parcel retrieval operations. All operations are
// stateless: each one resolves the country schema, builds a query, fetches
// and normalizes, in that order.
type Client interface {
	// ParcelsByPoint returns the parcels of one category whose geometry
	// contains the given WGS84 point in the given year.
	ParcelsByPoint(ctx context.Context, country string, lat, lon float64, cat schema.Category, year int) ([]ParcelRecord, error)

	// ParcelsByPointYears runs one ParcelsByPoint query per year and groups
	// the results by year. Failed years are marked in the result set instead
	// of failing the whole call.
	ParcelsByPointYears(ctx context.Context, country string, lat, lon float64, cat schema.Category, years []int) (*ResultSet, error)

	// ParcelByID returns one GSAA parcel by its {lpis_parcel_id}-{parcel_name}
	// identifier.
	ParcelByID(ctx context.Context, country, gsaaParcelID string, year int) (*ParcelRecord, error)

	// ParcelsByReferenceParcelID returns every GSAA parcel declared within
	// the given reference (LPIS) parcel.
	ParcelsByReferenceParcelID(ctx context.Context, country, referenceParcelID string, year int) ([]ParcelRecord, error)

	// ReferenceParcelByID returns the LPIS reference parcel itself.
	ReferenceParcelByID(ctx context.Context, country, referenceParcelID string, year int) (*ParcelRecord, error)

	// AvailableYears returns the years a country's service can answer for a
	// category.
	AvailableYears(ctx context.Context, country string, cat schema.Category) ([]int, error)

	// DominantSpecies returns the declared species covering the largest
	// summed area within a reference parcel.
	DominantSpecies(ctx context.Context, country, referenceParcelID string, year int) (*SpeciesInfo, error)
}

// Option configures the client.
type Option func(*service)

// WithTransport substitutes the WFS transport.
func WithTransport(t wfs.Client) Option {
	return func(s *service) {
		s.transport = t
	}
}

// WithRegistry substitutes the schema registry.
func WithRegistry(r *schema.Registry) Option {
	return func(s *service) {
		s.registry = r
	}
}

// WithMaxConcurrentYears caps the fan-out of multi-year queries.
func WithMaxConcurrentYears(n int) Option {
	return func(s *service) {
		if n > 0 {
			s.maxConcurrentYears = n
		}
	}
}

type service struct {
	registry           *schema.Registry
	transport          wfs.Client
	maxConcurrentYears int
}

// New creates a Client backed by the process-wide schema registry and the
// default HTTP transport.
func New(opts ...Option) Client {
	s := &service{
		registry:           schema.Default(),
		transport:          wfs.New(),
		maxConcurrentYears: 4,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// queryYear runs one build-fetch-normalize cycle. Zero matched features is a
// NoParcelFoundError, never conflated with a transport failure.
func (s *service) queryYear(ctx context.Context, cs *schema.CountrySchema, cat schema.Category, year int, pred query.Predicate) ([]ParcelRecord, error) {
	spec, err := query.Build(cs, cat, year, pred)
	if err != nil {
		return nil, err
	}
	raw, err := s.transport.Fetch(ctx, spec)
	if err != nil {
		return nil, err
	}
	records, err := Normalize(cs, cat, raw)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &NoParcelFoundError{Country: cs.ID, Category: cat, Year: year}
	}
	return records, nil
}

func (s *service) ParcelsByPoint(ctx context.Context, country string, lat, lon float64, cat schema.Category, year int) ([]ParcelRecord, error) {
	cs, err := s.registry.Get(country)
	if err != nil {
		return nil, err
	}
	return s.queryYear(ctx, cs, cat, year, query.PointPredicate{Lat: lat, Lon: lon})
}

func (s *service) ParcelsByPointYears(ctx context.Context, country string, lat, lon float64, cat schema.Category, years []int) (*ResultSet, error) {
	cs, err := s.registry.Get(country)
	if err != nil {
		return nil, err
	}

	rs := NewResultSet()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrentYears)
	for _, year := range years {
		year := year
		g.Go(func() error {
			records, err := s.queryYear(gctx, cs, cat, year, query.PointPredicate{Lat: lat, Lon: lon})
			if err != nil {
				// One failed year must not discard the completed ones.
				rs.Fail(year, err)
				return nil
			}
			rs.Add(year, records)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "parcels: multi-year query")
	}
	return rs, nil
}

func (s *service) ParcelByID(ctx context.Context, country, gsaaParcelID string, year int) (*ParcelRecord, error) {
	cs, err := s.registry.Get(country)
	if err != nil {
		return nil, err
	}
	lpisID, name, err := SplitGSAAParcelID(gsaaParcelID)
	if err != nil {
		return nil, err
	}
	records, err := s.queryYear(ctx, cs, schema.GSAA, year, query.ParcelIDPredicate{LPISParcelID: lpisID, ParcelName: name})
	if err != nil {
		return nil, err
	}
	return &records[0], nil
}

func (s *service) ParcelsByReferenceParcelID(ctx context.Context, country, referenceParcelID string, year int) ([]ParcelRecord, error) {
	cs, err := s.registry.Get(country)
	if err != nil {
		return nil, err
	}
	return s.queryYear(ctx, cs, schema.GSAA, year, query.ReferenceParcelIDPredicate{ID: referenceParcelID})
}

func (s *service) ReferenceParcelByID(ctx context.Context, country, referenceParcelID string, year int) (*ParcelRecord, error) {
	cs, err := s.registry.Get(country)
	if err != nil {
		return nil, err
	}
	records, err := s.queryYear(ctx, cs, schema.LPIS, year, query.ReferenceParcelIDPredicate{ID: referenceParcelID})
	if err != nil {
		return nil, err
	}
	return &records[0], nil
}

func (s *service) AvailableYears(ctx context.Context, country string, cat schema.Category) ([]int, error) {
	cs, err := s.registry.Get(country)
	if err != nil {
		return nil, err
	}

	layer := cs.Layer(cat)
	if !strings.Contains(layer, schema.YearPlaceholder) {
		// Static layer: the capabilities document cannot enumerate years, so
		// the schema maintains them.
		if len(cs.Years) == 0 {
			return nil, eris.Errorf("parcels: schema %s does not enumerate years for %s", cs.ID, cat)
		}
		years := append([]int(nil), cs.Years...)
		sort.Ints(years)
		return years, nil
	}

	layers, err := s.transport.Capabilities(ctx, cs.Endpoint(cat), cs.WFSVersion)
	if err != nil {
		return nil, err
	}
	prefix := layer[:strings.Index(layer, schema.YearPlaceholder)]
	seen := make(map[int]bool)
	var years []int
	for _, name := range layers {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		// Year-bound layers end in ".YYYY".
		idx := strings.LastIndex(name, ".")
		if idx < 0 {
			continue
		}
		year, convErr := strconv.Atoi(name[idx+1:])
		if convErr != nil || seen[year] {
			continue
		}
		seen[year] = true
		years = append(years, year)
	}
	sort.Ints(years)
	return years, nil
}

func (s *service) DominantSpecies(ctx context.Context, country, referenceParcelID string, year int) (*SpeciesInfo, error) {
	records, err := s.ParcelsByReferenceParcelID(ctx, country, referenceParcelID, year)
	if err != nil {
		return nil, err
	}
	info, err := DominantSpecies(records)
	if err != nil {
		return nil, err
	}
	info.LPISParcelID = referenceParcelID
	info.ParcelID = strconv.Itoa(year) + ParcelIDSep + referenceParcelID
	return info, nil
}

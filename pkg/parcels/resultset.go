package parcels

import (
	"sort"
	"sync"
)

// ResultSet groups multi-year query results by year. Years that failed keep
// their error instead of discarding the rest of the set, so callers always
// see every completed year. Safe for concurrent population.
type ResultSet struct {
	mu      sync.Mutex
	records map[int][]ParcelRecord
	errs    map[int]error
}

// NewResultSet returns an empty result set.
func NewResultSet() *ResultSet {
	return &ResultSet{
		records: make(map[int][]ParcelRecord),
		errs:    make(map[int]error),
	}
}

// Add records the parcels returned for one year. Per-year ordering is
// whatever the service returned.
func (rs *ResultSet) Add(year int, records []ParcelRecord) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.records[year] = records
}

// Fail marks one year as failed.
func (rs *ResultSet) Fail(year int, err error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.errs[year] = err
}

// Years returns the successfully completed years in ascending order.
func (rs *ResultSet) Years() []int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	years := make([]int, 0, len(rs.records))
	for year := range rs.records {
		years = append(years, year)
	}
	sort.Ints(years)
	return years
}

// Records returns the parcels for one year, or nil if the year failed or was
// never queried.
func (rs *ResultSet) Records(year int) []ParcelRecord {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.records[year]
}

// Err returns the failure recorded for one year, or nil.
func (rs *ResultSet) Err(year int) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.errs[year]
}

// FailedYears returns the years that ended in an error, ascending.
func (rs *ResultSet) FailedYears() []int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	years := make([]int, 0, len(rs.errs))
	for year := range rs.errs {
		years = append(years, year)
	}
	sort.Ints(years)
	return years
}

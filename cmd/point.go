package main

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nordagri/parcelwfs/pkg/schema"
)

var (
	pointCountry string
	pointLat     float64
	pointLon     float64
	pointYears   string
	pointLPIS    bool
)

var pointCmd = &cobra.Command{
	Use:   "point",
	Short: "Find parcels containing a WGS84 coordinate",
	RunE: func(cmd *cobra.Command, args []string) error {
		years, err := parseYears(pointYears)
		if err != nil {
			return err
		}

		cat := schema.GSAA
		if pointLPIS {
			cat = schema.LPIS
		}
		client := newClient()

		if len(years) == 1 {
			records, err := client.ParcelsByPoint(cmd.Context(), pointCountry, pointLat, pointLon, cat, years[0])
			if err != nil {
				return err
			}
			return printJSON(records)
		}

		rs, err := client.ParcelsByPointYears(cmd.Context(), pointCountry, pointLat, pointLon, cat, years)
		if err != nil {
			return err
		}
		out := make(map[string]any, len(years))
		for _, year := range rs.Years() {
			out[strconv.Itoa(year)] = rs.Records(year)
		}
		for _, year := range rs.FailedYears() {
			zap.L().Warn("year query failed", zap.Int("year", year), zap.Error(rs.Err(year)))
			out[strconv.Itoa(year)] = map[string]string{"error": rs.Err(year).Error()}
		}
		return printJSON(out)
	},
}

// parseYears parses a comma-separated year list.
func parseYears(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, eris.New("at least one year is required")
	}
	parts := strings.Split(s, ",")
	years := make([]int, 0, len(parts))
	for _, p := range parts {
		year, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, eris.Errorf("invalid year %q", p)
		}
		years = append(years, year)
	}
	return years, nil
}

func init() {
	pointCmd.Flags().StringVar(&pointCountry, "country", "", "country code (e.g. FI)")
	pointCmd.Flags().Float64Var(&pointLat, "lat", 0, "latitude (WGS84)")
	pointCmd.Flags().Float64Var(&pointLon, "lon", 0, "longitude (WGS84)")
	pointCmd.Flags().StringVar(&pointYears, "years", "", "comma-separated years to query")
	pointCmd.Flags().BoolVar(&pointLPIS, "lpis", false, "query LPIS reference parcels instead of GSAA")
	_ = pointCmd.MarkFlagRequired("country")
	_ = pointCmd.MarkFlagRequired("lat")
	_ = pointCmd.MarkFlagRequired("lon")
	_ = pointCmd.MarkFlagRequired("years")
	rootCmd.AddCommand(pointCmd)
}

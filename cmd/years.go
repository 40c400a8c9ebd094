package main

import (
	"github.com/spf13/cobra"

	"github.com/nordagri/parcelwfs/pkg/schema"
)

var (
	yearsCountry string
	yearsLPIS    bool
)

var yearsCmd = &cobra.Command{
	Use:   "years",
	Short: "List the years a country's service can answer",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat := schema.GSAA
		if yearsLPIS {
			cat = schema.LPIS
		}
		years, err := newClient().AvailableYears(cmd.Context(), yearsCountry, cat)
		if err != nil {
			return err
		}
		return printJSON(years)
	},
}

var countriesCmd = &cobra.Command{
	Use:   "countries",
	Short: "List the country codes with a registered schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printJSON(schema.Codes())
	},
}

func init() {
	yearsCmd.Flags().StringVar(&yearsCountry, "country", "", "country code (e.g. FI)")
	yearsCmd.Flags().BoolVar(&yearsLPIS, "lpis", false, "list LPIS years instead of GSAA")
	_ = yearsCmd.MarkFlagRequired("country")
	rootCmd.AddCommand(yearsCmd)
	rootCmd.AddCommand(countriesCmd)
}

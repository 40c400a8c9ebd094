package main

import (
	"github.com/spf13/cobra"
)

var (
	refCountry string
	refID      string
	refYear    int
	refSpecies bool
	refLPIS    bool
)

var refparcelCmd = &cobra.Command{
	Use:   "refparcel",
	Short: "Fetch parcels by reference (LPIS) parcel id",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()
		ctx := cmd.Context()

		switch {
		case refSpecies:
			info, err := client.DominantSpecies(ctx, refCountry, refID, refYear)
			if err != nil {
				return err
			}
			return printJSON(info)
		case refLPIS:
			record, err := client.ReferenceParcelByID(ctx, refCountry, refID, refYear)
			if err != nil {
				return err
			}
			return printJSON(record)
		default:
			records, err := client.ParcelsByReferenceParcelID(ctx, refCountry, refID, refYear)
			if err != nil {
				return err
			}
			return printJSON(records)
		}
	},
}

func init() {
	refparcelCmd.Flags().StringVar(&refCountry, "country", "", "country code (e.g. FI)")
	refparcelCmd.Flags().StringVar(&refID, "id", "", "reference parcel id")
	refparcelCmd.Flags().IntVar(&refYear, "year", 0, "year to query")
	refparcelCmd.Flags().BoolVar(&refSpecies, "species", false, "report the dominant declared species instead of the parcels")
	refparcelCmd.Flags().BoolVar(&refLPIS, "lpis", false, "fetch the LPIS reference parcel itself")
	_ = refparcelCmd.MarkFlagRequired("country")
	_ = refparcelCmd.MarkFlagRequired("id")
	_ = refparcelCmd.MarkFlagRequired("year")
	rootCmd.AddCommand(refparcelCmd)
}

package main

import (
	"github.com/spf13/cobra"
)

var (
	parcelCountry string
	parcelID      string
	parcelYear    int
)

var parcelCmd = &cobra.Command{
	Use:   "parcel",
	Short: "Fetch one GSAA parcel by its {lpis_parcel_id}-{parcel_name} id",
	RunE: func(cmd *cobra.Command, args []string) error {
		record, err := newClient().ParcelByID(cmd.Context(), parcelCountry, parcelID, parcelYear)
		if err != nil {
			return err
		}
		return printJSON(record)
	},
}

func init() {
	parcelCmd.Flags().StringVar(&parcelCountry, "country", "", "country code (e.g. FI)")
	parcelCmd.Flags().StringVar(&parcelID, "id", "", "GSAA parcel id")
	parcelCmd.Flags().IntVar(&parcelYear, "year", 0, "year to query")
	_ = parcelCmd.MarkFlagRequired("country")
	_ = parcelCmd.MarkFlagRequired("id")
	_ = parcelCmd.MarkFlagRequired("year")
	rootCmd.AddCommand(parcelCmd)
}

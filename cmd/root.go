package main

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nordagri/parcelwfs/internal/config"
	"github.com/nordagri/parcelwfs/pkg/parcels"
	"github.com/nordagri/parcelwfs/pkg/schema"
	"github.com/nordagri/parcelwfs/pkg/wfs"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "parcelwfs",
	Short: "Query agricultural parcels from national WFS services",
	Long:  "Retrieves GSAA declared-use and LPIS reference parcels by point or identifier from national geospatial services, normalized into one record shape.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}

		for _, path := range cfg.Schema.Paths {
			if err := schema.Default().RegisterFile(path); err != nil {
				return eris.Wrapf(err, "register schema %s", path)
			}
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// newClient wires the facade from the loaded configuration.
func newClient() parcels.Client {
	transport := wfs.New(
		wfs.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.WFS.TimeoutSecs) * time.Second}),
		wfs.WithRateLimit(cfg.WFS.RateLimit),
		wfs.WithMaxRetries(cfg.WFS.MaxRetries),
	)
	return parcels.New(
		parcels.WithTransport(transport),
		parcels.WithMaxConcurrentYears(cfg.Query.MaxConcurrentYears),
	)
}

// printJSON writes a value as indented JSON to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

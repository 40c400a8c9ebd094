package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nordagri/parcelwfs/internal/query"
	"github.com/nordagri/parcelwfs/pkg/parcels"
	"github.com/nordagri/parcelwfs/pkg/schema"
	"github.com/nordagri/parcelwfs/pkg/wfs"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the parcel lookup HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(newClient()),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			zap.L().Info("http listen", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
			return nil
		case err := <-errCh:
			return err
		}
	},
}

// newRouter builds the HTTP API on top of the parcels client.
func newRouter(client parcels.Client) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Get("/v1/countries", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, schema.Codes())
	})

	r.Get("/v1/{country}/years", func(w http.ResponseWriter, req *http.Request) {
		years, err := client.AvailableYears(req.Context(), chi.URLParam(req, "country"), categoryParam(req))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, years)
	})

	r.Get("/v1/{country}/parcels", func(w http.ResponseWriter, req *http.Request) {
		country := chi.URLParam(req, "country")
		lat, latErr := strconv.ParseFloat(req.URL.Query().Get("lat"), 64)
		lon, lonErr := strconv.ParseFloat(req.URL.Query().Get("lon"), 64)
		if latErr != nil || lonErr != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "lat and lon are required numbers"})
			return
		}
		years, err := parseYears(req.URL.Query().Get("years"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		cat := categoryParam(req)

		if len(years) == 1 {
			records, err := client.ParcelsByPoint(req.Context(), country, lat, lon, cat, years[0])
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, records)
			return
		}

		rs, err := client.ParcelsByPointYears(req.Context(), country, lat, lon, cat, years)
		if err != nil {
			writeError(w, err)
			return
		}
		out := make(map[string]any)
		for _, year := range rs.Years() {
			out[strconv.Itoa(year)] = rs.Records(year)
		}
		for _, year := range rs.FailedYears() {
			out[strconv.Itoa(year)] = map[string]string{"error": rs.Err(year).Error()}
		}
		writeJSON(w, http.StatusOK, out)
	})

	r.Get("/v1/{country}/parcels/{id}", func(w http.ResponseWriter, req *http.Request) {
		year, err := strconv.Atoi(req.URL.Query().Get("year"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "year is required"})
			return
		}
		record, err := client.ParcelByID(req.Context(), chi.URLParam(req, "country"), chi.URLParam(req, "id"), year)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, record)
	})

	r.Get("/v1/{country}/reference/{id}", func(w http.ResponseWriter, req *http.Request) {
		country := chi.URLParam(req, "country")
		id := chi.URLParam(req, "id")
		year, err := strconv.Atoi(req.URL.Query().Get("year"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "year is required"})
			return
		}

		if req.URL.Query().Has("species") {
			info, err := client.DominantSpecies(req.Context(), country, id, year)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, info)
			return
		}

		records, err := client.ParcelsByReferenceParcelID(req.Context(), country, id, year)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, records)
	})

	return r
}

func categoryParam(req *http.Request) schema.Category {
	if req.URL.Query().Get("category") == string(schema.LPIS) {
		return schema.LPIS
	}
	return schema.GSAA
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("write response", zap.Error(err))
	}
}

// writeError maps the error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	var (
		unknownCountry *schema.UnknownCountryError
		noParcel       *parcels.NoParcelFoundError
		unsupported    *query.UnsupportedPredicateError
		transport      *wfs.TransportError
	)
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &unknownCountry), errors.As(err, &noParcel):
		status = http.StatusNotFound
	case errors.As(err, &unsupported):
		status = http.StatusBadRequest
	case errors.As(err, &transport):
		status = http.StatusBadGateway
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (defaults to server.port config)")
	rootCmd.AddCommand(serveCmd)
}

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/puneet-chandna/water-brakes/internal/ingest"
	"github.com/puneet-chandna/water-brakes/internal/logger"
	"github.com/puneet-chandna/water-brakes/internal/model"
	"github.com/puneet-chandna/water-brakes/internal/terrain"
)

// maxBodyBytes bounds uploads; survey tables are thousands of rows,
// not millions.
const maxBodyBytes = 32 << 20

// datasetHandler accepts a CSV survey table, runs the pipeline and
// returns the labeled points, contour grid, summary and cell stats.
// Query parameters override the configured pipeline defaults.
func datasetHandler(p *Processor, defaults model.Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := optionsFromQuery(r, defaults)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		coll, err := ingest.ParseCSV(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			writePipelineError(w, err)
			return
		}

		ctx := logger.WithDatasetID(r.Context(), coll.ID)
		res, err := p.Process(ctx, coll, opts)
		if err != nil {
			logger.FromContext(ctx, &p.log).Warn().Err(err).Msg("pipeline rejected dataset")
			writePipelineError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(res); err != nil {
			logger.FromContext(ctx, &p.log).Error().Err(err).Msg("encode response")
		}
	}
}

// writePipelineError maps the three error kinds onto HTTP statuses;
// anything else is a 500.
func writePipelineError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, terrain.ErrMalformedInput), errors.Is(err, terrain.ErrInvalidCoordinate):
		status = http.StatusBadRequest
	case errors.Is(err, terrain.ErrInsufficientData):
		status = http.StatusUnprocessableEntity
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func optionsFromQuery(r *http.Request, defaults model.Options) (model.Options, error) {
	opts := defaults
	q := r.URL.Query()

	getInt := func(name string, dst *int) error {
		if v := strings.TrimSpace(q.Get(name)); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %v", name, err)
			}
			*dst = n
		}
		return nil
	}

	if err := getInt("grid_size", &opts.GridSize); err != nil {
		return opts, err
	}
	if err := getInt("slope_neighbors", &opts.SlopeNeighbors); err != nil {
		return opts, err
	}
	if err := getInt("max_iter", &opts.ClusterMaxIter); err != nil {
		return opts, err
	}
	if err := getInt("utm_zone", &opts.UTMZone); err != nil {
		return opts, err
	}

	if v := strings.TrimSpace(q.Get("seed")); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return opts, fmt.Errorf("invalid seed: %v", err)
		}
		opts.ClusterSeed = n
	}
	if v := strings.TrimSpace(q.Get("idw_power")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, fmt.Errorf("invalid idw_power: %v", err)
		}
		opts.IDWPower = f
	}
	if v := strings.TrimSpace(q.Get("interp")); v != "" {
		opts.Interp = model.InterpMethod(strings.ToLower(v))
	}
	if v := strings.TrimSpace(q.Get("utm_hemisphere")); v != "" {
		switch strings.ToUpper(v) {
		case "N":
			opts.UTMSouth = false
		case "S":
			opts.UTMSouth = true
		default:
			return opts, fmt.Errorf("invalid utm_hemisphere %q (want N or S)", v)
		}
	}

	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

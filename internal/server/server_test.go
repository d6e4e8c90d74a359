package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/puneet-chandna/water-brakes/internal/cache/resultcache"
	"github.com/puneet-chandna/water-brakes/internal/metrics"
	"github.com/puneet-chandna/water-brakes/internal/model"
	"github.com/puneet-chandna/water-brakes/pkg/publish/kafka"
)

type capturePublisher struct {
	events []kafka.Event
}

func (c *capturePublisher) Publish(ev kafka.Event) { c.events = append(c.events, ev) }

func newTestHandler(t *testing.T) (http.HandlerFunc, *capturePublisher) {
	t.Helper()
	pub := &capturePublisher{}
	proc := NewProcessor(
		zerolog.New(io.Discard),
		resultcache.New(16),
		nil,
		pub,
		metrics.Init(metrics.BuildInfo{}),
		8,
	)
	return datasetHandler(proc, model.DefaultOptions()), pub
}

const squareCSV = `easting,northing,elevation
500000,3100000,10
500100,3100000,10
500000,3100100,50
500100,3100100,50
`

func TestDatasetEndpoint_ClassifiesSquare(t *testing.T) {
	h, pub := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/datasets?grid_size=10&seed=7", strings.NewReader(squareCSV))
	rec := httptest.NewRecorder()
	h(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var res model.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.DatasetID == "" {
		t.Error("response missing dataset id")
	}
	if res.Summary.PointCount != 4 {
		t.Errorf("point count = %d, want 4", res.Summary.PointCount)
	}
	if res.Summary.SwaleCount+res.Summary.TrenchCount != 4 {
		t.Errorf("classes cover %d points, want 4",
			res.Summary.SwaleCount+res.Summary.TrenchCount)
	}
	if got := len(res.Grid.XCoords); got != 10 {
		t.Errorf("grid columns = %d, want 10", got)
	}
	if len(pub.events) != 1 {
		t.Fatalf("published %d events, want 1", len(pub.events))
	}
	if pub.events[0].DatasetID != res.DatasetID {
		t.Errorf("event dataset = %q, want %q", pub.events[0].DatasetID, res.DatasetID)
	}
}

func TestDatasetEndpoint_RepeatUploadHitsCache(t *testing.T) {
	h, pub := newTestHandler(t)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/v1/datasets", strings.NewReader(squareCSV))
		rec := httptest.NewRecorder()
		h(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("upload %d: status = %d", i, rec.Code)
		}
	}

	// identical content and options, so the second run is served from
	// cache and publishes nothing
	if len(pub.events) != 1 {
		t.Errorf("published %d events, want 1", len(pub.events))
	}
}

func TestDatasetEndpoint_EmptyBodyRejected(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/datasets", strings.NewReader(""))
	rec := httptest.NewRecorder()
	h(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestDatasetEndpoint_MalformedCSVRejected(t *testing.T) {
	h, _ := newTestHandler(t)

	body := "easting,northing,elevation\n500000,notanumber,10\n"
	req := httptest.NewRequest(http.MethodPost, "/v1/datasets", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	var payload map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("error body is not JSON: %v", err)
	}
	if payload["error"] == "" {
		t.Error("error body missing message")
	}
}

func TestDatasetEndpoint_OutOfRangeLatitudeRejected(t *testing.T) {
	h, _ := newTestHandler(t)

	body := "latitude,longitude,elevation\n95,80,10\n28,80,20\n"
	req := httptest.NewRequest(http.MethodPost, "/v1/datasets", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestDatasetEndpoint_BadQueryParam(t *testing.T) {
	h, _ := newTestHandler(t)

	for _, query := range []string{
		"grid_size=abc",
		"grid_size=1",
		"interp=spline",
		"utm_hemisphere=x",
		"utm_zone=61",
	} {
		req := httptest.NewRequest(http.MethodPost, "/v1/datasets?"+query, strings.NewReader(squareCSV))
		rec := httptest.NewRecorder()
		h(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("query %q: status = %d, want 400", query, rec.Code)
		}
	}
}

func TestOptionsFromQuery_Overrides(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost,
		"/v1/datasets?grid_size=25&interp=nearest&idw_power=3.5&slope_neighbors=4&seed=99&max_iter=10&utm_zone=33&utm_hemisphere=S",
		nil)

	opts, err := optionsFromQuery(req, model.DefaultOptions())
	if err != nil {
		t.Fatalf("optionsFromQuery: %v", err)
	}
	if opts.GridSize != 25 || opts.Interp != model.InterpNearest || opts.IDWPower != 3.5 {
		t.Errorf("grid options not applied: %+v", opts)
	}
	if opts.SlopeNeighbors != 4 || opts.ClusterSeed != 99 || opts.ClusterMaxIter != 10 {
		t.Errorf("cluster options not applied: %+v", opts)
	}
	if opts.UTMZone != 33 || !opts.UTMSouth {
		t.Errorf("zone options not applied: %+v", opts)
	}
}

func TestOptionsFromQuery_DefaultsPassThrough(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/datasets", nil)

	opts, err := optionsFromQuery(req, model.DefaultOptions())
	if err != nil {
		t.Fatalf("optionsFromQuery: %v", err)
	}
	if opts != model.DefaultOptions() {
		t.Errorf("defaults changed: %+v", opts)
	}
}

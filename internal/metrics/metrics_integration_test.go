package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func assertHasMetricLine(t *testing.T, body, metric string, wantLabels ...string) {
	t.Helper()
	for _, ln := range strings.Split(body, "\n") {
		if !strings.HasPrefix(ln, metric+"{") {
			continue
		}
		ok := true
		for _, s := range wantLabels {
			if !strings.Contains(ln, s) {
				ok = false
				break
			}
		}
		if ok && (len(ln) > 0 && ln[len(ln)-1] >= '0' && ln[len(ln)-1] <= '9') {
			return
		}
	}
	t.Fatalf("expected a %s line with labels %v; got:\n%s", metric, wantLabels, body)
}

func Test_PipelineMetrics_Scrape_Smoke(t *testing.T) {
	p := Init(BuildInfo{Version: "test"})

	p.DatasetsProcessed.WithLabelValues("ok").Inc()
	p.DatasetsProcessed.WithLabelValues("error").Inc()
	p.PipelineDuration.Observe(0.012)
	p.PointsPerDataset.Observe(4)
	p.CacheHits.WithLabelValues("memory").Inc()
	p.CacheMisses.WithLabelValues("redis").Inc()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	p.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d want 200", rr.Code)
	}
	body := rr.Body.String()

	assertHasMetricLine(t, body, "datasets_processed_total", `outcome="ok"`)
	assertHasMetricLine(t, body, "datasets_processed_total", `outcome="error"`)
	assertHasMetricLine(t, body, "result_cache_hits_total", `tier="memory"`)
	assertHasMetricLine(t, body, "result_cache_misses_total", `tier="redis"`)
	if !strings.Contains(body, "pipeline_duration_seconds_bucket") {
		t.Fatalf("expected pipeline duration histogram; got:\n%s", body)
	}
	if !strings.Contains(body, "dataset_points_sum") {
		t.Fatalf("expected dataset points histogram; got:\n%s", body)
	}
}

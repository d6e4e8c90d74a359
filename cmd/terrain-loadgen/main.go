// terrain-loadgen posts synthetic survey datasets at the terrain
// server and reports latency percentiles. A fraction of requests
// re-send a fixed "hot" dataset so the result cache path gets
// exercised alongside fresh computations.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

type Config struct {
	TargetURL   string
	Concurrency int
	Duration    time.Duration
	Points      int
	HotRatio    float64
	Timeout     time.Duration
	Seed        int64
	Out         string
}

func loadConfig() Config {
	var cfg Config
	flag.StringVar(&cfg.TargetURL, "target", "http://localhost:8090/v1/datasets", "dataset endpoint URL")
	flag.IntVar(&cfg.Concurrency, "concurrency", 8, "concurrent workers")
	flag.DurationVar(&cfg.Duration, "duration", 30*time.Second, "test duration")
	flag.IntVar(&cfg.Points, "points", 200, "survey points per generated dataset")
	flag.Float64Var(&cfg.HotRatio, "hot-ratio", 0.5, "fraction of requests that repeat the hot dataset")
	flag.DurationVar(&cfg.Timeout, "timeout", 30*time.Second, "per-request timeout")
	flag.Int64Var(&cfg.Seed, "seed", 1, "workload RNG seed")
	flag.StringVar(&cfg.Out, "out", "", "optional JSON summary output path")
	flag.Parse()
	return cfg
}

// surveyCSV writes a synthetic transect: points scattered over a UTM
// tile with elevation following a tilted plane plus noise, so both
// clusters come out populated.
func surveyCSV(r *rand.Rand, points int) []byte {
	var b bytes.Buffer
	b.WriteString("easting,northing,elevation\n")
	e0 := 400000 + r.Float64()*200000
	n0 := 2000000 + r.Float64()*2000000
	for i := 0; i < points; i++ {
		de := r.Float64() * 500
		dn := r.Float64() * 500
		elev := 100 + 0.08*de - 0.05*dn + r.NormFloat64()*2
		fmt.Fprintf(&b, "%.2f,%.2f,%.3f\n", e0+de, n0+dn, elev)
	}
	return b.Bytes()
}

type sample struct {
	latency time.Duration
	status  int
	hot     bool
	err     bool
}

type summary struct {
	Requests  int     `json:"requests"`
	Errors    int     `json:"errors"`
	Non200    int     `json:"non_200"`
	HotShare  float64 `json:"hot_share"`
	P50Millis float64 `json:"p50_ms"`
	P95Millis float64 `json:"p95_ms"`
	P99Millis float64 `json:"p99_ms"`
	RPS       float64 `json:"rps"`
}

func percentile(sorted []time.Duration, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(q * float64(len(sorted)-1))
	return float64(sorted[idx]) / float64(time.Millisecond)
}

func main() {
	cfg := loadConfig()
	r := rand.New(rand.NewSource(cfg.Seed))
	hot := surveyCSV(r, cfg.Points)

	client := &http.Client{Timeout: cfg.Timeout}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	var mu sync.Mutex
	var samples []sample

	var wg sync.WaitGroup
	for w := 0; w < cfg.Concurrency; w++ {
		wg.Add(1)
		go func(workerSeed int64) {
			defer wg.Done()
			wr := rand.New(rand.NewSource(workerSeed))
			for ctx.Err() == nil {
				useHot := wr.Float64() < cfg.HotRatio
				body := hot
				if !useHot {
					body = surveyCSV(wr, cfg.Points)
				}

				start := time.Now()
				s := sample{hot: useHot}
				req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.TargetURL, bytes.NewReader(body))
				if err != nil {
					log.Fatalf("build request: %v", err)
				}
				req.Header.Set("Content-Type", "text/csv")
				resp, err := client.Do(req)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					s.err = true
				} else {
					_, _ = io.Copy(io.Discard, resp.Body)
					_ = resp.Body.Close()
					s.status = resp.StatusCode
				}
				s.latency = time.Since(start)

				mu.Lock()
				samples = append(samples, s)
				mu.Unlock()
			}
		}(cfg.Seed + int64(w) + 1)
	}
	wg.Wait()

	if len(samples) == 0 {
		log.Fatal("no requests completed")
	}

	lats := make([]time.Duration, 0, len(samples))
	var errs, non200, hotCount int
	for _, s := range samples {
		if s.err {
			errs++
			continue
		}
		if s.status != http.StatusOK {
			non200++
		}
		if s.hot {
			hotCount++
		}
		lats = append(lats, s.latency)
	}
	sort.Slice(lats, func(i, j int) bool { return lats[i] < lats[j] })

	sum := summary{
		Requests:  len(samples),
		Errors:    errs,
		Non200:    non200,
		HotShare:  float64(hotCount) / float64(len(samples)),
		P50Millis: percentile(lats, 0.50),
		P95Millis: percentile(lats, 0.95),
		P99Millis: percentile(lats, 0.99),
		RPS:       float64(len(samples)) / cfg.Duration.Seconds(),
	}

	out, _ := json.MarshalIndent(sum, "", "  ")
	fmt.Println(string(out))

	if cfg.Out != "" {
		if !strings.HasSuffix(cfg.Out, ".json") {
			cfg.Out += ".json"
		}
		if err := os.WriteFile(cfg.Out, out, 0o600); err != nil {
			log.Fatalf("write summary: %v", err)
		}
	}
}

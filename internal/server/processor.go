package server

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/puneet-chandna/water-brakes/internal/cache/fingerprint"
	"github.com/puneet-chandna/water-brakes/internal/cache/redisstore"
	"github.com/puneet-chandna/water-brakes/internal/cache/resultcache"
	"github.com/puneet-chandna/water-brakes/internal/geo"
	"github.com/puneet-chandna/water-brakes/internal/metrics"
	"github.com/puneet-chandna/water-brakes/internal/model"
	"github.com/puneet-chandna/water-brakes/internal/summary"
	"github.com/puneet-chandna/water-brakes/internal/terrain"
	"github.com/puneet-chandna/water-brakes/pkg/publish/kafka"
)

// Publisher is the outbound event hook; satisfied by the Kafka
// publisher and by fakes in tests.
type Publisher interface {
	Publish(ev kafka.Event)
}

// Processor runs the pipeline behind a two-tier result cache. Results
// are keyed by dataset fingerprint, so identical uploads with identical
// options are answered without recomputation.
type Processor struct {
	log     zerolog.Logger
	mem     *resultcache.Cache
	redis   *redisstore.Store // optional
	pub     Publisher         // optional
	m       *metrics.Provider
	cellRes int
}

func NewProcessor(log zerolog.Logger, mem *resultcache.Cache, redis *redisstore.Store, pub Publisher, m *metrics.Provider, cellRes int) *Processor {
	return &Processor{log: log, mem: mem, redis: redis, pub: pub, m: m, cellRes: cellRes}
}

func (p *Processor) Process(ctx context.Context, coll model.Collection, opts model.Options) (model.Result, error) {
	key := fingerprint.Key(coll, opts)

	if res, ok := p.mem.Get(key); ok {
		p.m.CacheHits.WithLabelValues("memory").Inc()
		res.DatasetID = coll.ID
		return res, nil
	}
	p.m.CacheMisses.WithLabelValues("memory").Inc()

	if p.redis != nil {
		res, ok, err := p.redis.Get(ctx, key)
		if err != nil {
			// cache trouble must not fail the dataset
			p.log.Warn().Err(err).Str("key", key).Msg("redis get failed, computing")
		} else if ok {
			p.m.CacheHits.WithLabelValues("redis").Inc()
			p.mem.Add(key, res)
			res.DatasetID = coll.ID
			return res, nil
		} else {
			p.m.CacheMisses.WithLabelValues("redis").Inc()
		}
	}

	start := time.Now()
	res, err := terrain.Run(coll, opts)
	if err != nil {
		p.m.DatasetsProcessed.WithLabelValues("error").Inc()
		return model.Result{}, err
	}

	cells, err := summary.Cells(res.Points, p.cellRes)
	if err != nil {
		return model.Result{}, fmt.Errorf("cell summary: %w", err)
	}
	res.Cells = cells

	p.m.DatasetsProcessed.WithLabelValues("ok").Inc()
	p.m.PipelineDuration.Observe(time.Since(start).Seconds())
	p.m.PointsPerDataset.Observe(float64(coll.Len()))

	p.mem.Add(key, res)
	if p.redis != nil {
		if err := p.redis.Put(ctx, key, res); err != nil {
			p.log.Warn().Err(err).Str("key", key).Msg("redis put failed")
		}
	}

	if p.pub != nil {
		zone := ""
		if opts.UTMZone > 0 {
			zone = geo.Zone{Number: opts.UTMZone, South: opts.UTMSouth}.String()
		}
		p.pub.Publish(kafka.Event{DatasetID: res.DatasetID, Summary: res.Summary, Zone: zone})
	}

	p.log.Info().
		Str("dataset_id", res.DatasetID).
		Int("points", res.Summary.PointCount).
		Int("swale", res.Summary.SwaleCount).
		Int("trench", res.Summary.TrenchCount).
		Dur("took", time.Since(start)).
		Msg("dataset processed")
	return res, nil
}

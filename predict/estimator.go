// Package predict turns validated requests into price estimates using the
// currently loaded artifacts.
package predict

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"homeprice/artifact"
	"homeprice/ml"
	"homeprice/monitoring"
)

var ErrArtifactsNotLoaded = errors.New("artifacts not loaded")

// SnapshotSource yields the artifacts to predict with.
type SnapshotSource interface {
	Current() *artifact.Snapshot
}

type Result struct {
	Price float64
	Path  string
}

type Status struct {
	Ready     bool      `json:"ready"`
	Version   uint64    `json:"version"`
	Columns   int       `json:"columns"`
	Locations int       `json:"locations"`
	ModelType string    `json:"model_type"`
	LoadedAt  time.Time `json:"loaded_at"`
}

type cacheKey struct {
	version  uint64
	location string
	sqft     float64
	bhk      int
	bath     int
}

type Estimator struct {
	source SnapshotSource
	cache  *lru.Cache[cacheKey, float64]
	log    *zap.Logger
}

// NewEstimator builds an estimator; cacheSize 0 disables caching.
func NewEstimator(source SnapshotSource, cacheSize int, logger *zap.Logger) (*Estimator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Estimator{source: source, log: logger.Named("predict")}
	if cacheSize > 0 {
		cache, err := lru.New[cacheKey, float64](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("create estimate cache: %w", err)
		}
		e.cache = cache
	}
	return e, nil
}

// Purge drops cached estimates. Keys already carry the snapshot version,
// so this only releases memory held for replaced snapshots.
func (e *Estimator) Purge(*artifact.Snapshot) {
	if e.cache != nil {
		e.cache.Purge()
	}
}

// Estimate returns the price for req. A failing model never surfaces as an
// error; the fallback formula answers instead.
func (e *Estimator) Estimate(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := req.Validate(); err != nil {
		monitoring.PredictionErrors.WithLabelValues("invalid_request").Inc()
		return Result{}, err
	}

	snapshot := e.source.Current()
	if !snapshot.Ready() {
		monitoring.PredictionErrors.WithLabelValues("not_loaded").Inc()
		return Result{}, ErrArtifactsNotLoaded
	}

	key := cacheKey{
		version:  snapshot.Version,
		location: ml.NormalizeLocation(req.Location),
		sqft:     req.Sqft,
		bhk:      req.BHK,
		bath:     req.Bath,
	}
	if e.cache != nil {
		if price, ok := e.cache.Get(key); ok {
			monitoring.Predictions.WithLabelValues(monitoring.PathCache).Inc()
			return Result{Price: price, Path: monitoring.PathCache}, nil
		}
	}

	result := e.estimate(snapshot, req)
	if e.cache != nil {
		e.cache.Add(key, result.Price)
	}
	monitoring.Predictions.WithLabelValues(result.Path).Inc()
	return result, nil
}

func (e *Estimator) estimate(snapshot *artifact.Snapshot, req Request) Result {
	x := snapshot.Schema.Encode(req.Location, req.Sqft, req.BHK, req.Bath)
	price, err := snapshot.Model.Predict(x)
	if err == nil && (math.IsNaN(price) || math.IsInf(price, 0)) {
		err = fmt.Errorf("model returned %v", price)
	}
	if err == nil {
		return Result{Price: ml.RoundPrice(price), Path: monitoring.PathModel}
	}

	e.log.Warn("model prediction failed, using fallback formula",
		zap.Error(err),
		zap.String("model_type", snapshot.ModelType),
		zap.Uint64("version", snapshot.Version),
	)
	_, known := snapshot.Schema.IndexOf(req.Location)
	return Result{Price: ml.FallbackPrice(req.Sqft, req.BHK, req.Bath, known), Path: monitoring.PathFallback}
}

// Locations lists the known locations, empty when no schema is loaded.
func (e *Estimator) Locations() []string {
	return e.source.Current().Locations()
}

func (e *Estimator) Ready() bool {
	return e.source.Current().Ready()
}

func (e *Estimator) Status() Status {
	snapshot := e.source.Current()
	if snapshot == nil {
		return Status{}
	}
	return Status{
		Ready:     snapshot.Ready(),
		Version:   snapshot.Version,
		Columns:   snapshot.Schema.Len(),
		Locations: len(snapshot.Locations()),
		ModelType: snapshot.ModelType,
		LoadedAt:  snapshot.LoadedAt,
	}
}

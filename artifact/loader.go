package artifact

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"homeprice/ml"
	"homeprice/monitoring"
)

type Options struct {
	ColumnsPath string
	ModelPath   string
	// FallbackOnCorruptModel installs ml.UnfittedModel when the model file
	// exists but cannot be decoded, so estimates use the fallback formula.
	FallbackOnCorruptModel bool
}

// Loader owns the current Snapshot. Loads are serialized; readers take the
// published pointer without locking.
type Loader struct {
	opts Options
	log  *zap.Logger

	mu      sync.Mutex
	version uint64
	current atomic.Pointer[Snapshot]

	subMu       sync.RWMutex
	subscribers []func(*Snapshot)
}

func NewLoader(opts Options, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Loader{opts: opts, log: logger.Named("artifact")}
	l.current.Store(emptySnapshot())
	return l
}

// Current returns the last published snapshot, or an empty unready one
// before the first Load.
func (l *Loader) Current() *Snapshot {
	return l.current.Load()
}

// Subscribe registers fn to run after every published load.
func (l *Loader) Subscribe(fn func(*Snapshot)) {
	l.subMu.Lock()
	defer l.subMu.Unlock()
	l.subscribers = append(l.subscribers, fn)
}

// Load reads both artifacts and publishes a new snapshot. Failures degrade
// the snapshot instead of aborting: the returned error only describes what
// could not be loaded, and the snapshot is always installed.
func (l *Loader) Load() (*Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.log.Info("loading saved artifacts", zap.String("columns", l.opts.ColumnsPath), zap.String("model", l.opts.ModelPath))

	var errs error
	columns, err := ReadSchema(l.opts.ColumnsPath)
	if err != nil {
		l.log.Warn("schema unavailable, serving without locations", zap.Error(err))
		recordLoad("schema", err)
		errs = multierr.Append(errs, err)
		columns = nil
	} else {
		recordLoad("schema", nil)
	}
	schema := ml.NewFeatureSchema(columns)

	model, modelType, err := ReadModel(l.opts.ModelPath)
	if err != nil {
		recordLoad("model", err)
		errs = multierr.Append(errs, err)
		switch {
		case errors.Is(err, ErrArtifactParse) && l.opts.FallbackOnCorruptModel:
			l.log.Warn("model unreadable, estimates will use the fallback formula", zap.Error(err))
			model, modelType = ml.UnfittedModel{}, ml.ModelTypeUnfitted
		default:
			l.log.Warn("model unavailable", zap.Error(err))
			model, modelType = nil, ""
		}
	} else {
		recordLoad("model", nil)
	}

	l.version++
	snapshot := &Snapshot{
		Schema:    schema,
		Model:     model,
		ModelType: modelType,
		Version:   l.version,
		LoadedAt:  time.Now(),
	}
	l.current.Store(snapshot)

	ready := 0.0
	if snapshot.Ready() {
		ready = 1
	}
	monitoring.ArtifactsReady.Set(ready)
	monitoring.Locations.Set(float64(len(snapshot.Locations())))

	l.log.Info("loading saved artifacts done",
		zap.Uint64("version", snapshot.Version),
		zap.Int("columns", schema.Len()),
		zap.Int("locations", len(snapshot.Locations())),
		zap.String("model_type", modelType),
		zap.Bool("ready", snapshot.Ready()),
	)

	l.subMu.RLock()
	subscribers := append([]func(*Snapshot){}, l.subscribers...)
	l.subMu.RUnlock()
	for _, fn := range subscribers {
		fn(snapshot)
	}

	return snapshot, errs
}

func recordLoad(artifact string, err error) {
	outcome := "ok"
	switch {
	case errors.Is(err, ErrArtifactMissing):
		outcome = "missing"
	case err != nil:
		outcome = "parse_error"
	}
	monitoring.ArtifactLoads.WithLabelValues(artifact, outcome).Inc()
}

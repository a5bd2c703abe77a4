package artifact

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"homeprice/ml"
)

var testColumns = []string{"total_sqft", "bath", "bhk", "electronic city", "whitefield", "hebbal"}

func writeArtifacts(t *testing.T, dir string, columns []string, model *ml.LinearRegression) Options {
	t.Helper()
	opts := Options{
		ColumnsPath:            filepath.Join(dir, "columns.json"),
		ModelPath:              filepath.Join(dir, "model.json"),
		FallbackOnCorruptModel: true,
	}
	if columns != nil {
		require.NoError(t, WriteSchema(opts.ColumnsPath, columns))
	}
	if model != nil {
		require.NoError(t, model.Save(opts.ModelPath))
	}
	return opts
}

func testModel(n int) *ml.LinearRegression {
	coefs := make([]float64, n)
	coefs[0] = 0.08
	coefs[1] = 2
	coefs[2] = 3
	return &ml.LinearRegression{Coefficients: coefs, Intercept: -5}
}

func TestLoadBothArtifacts(t *testing.T) {
	opts := writeArtifacts(t, t.TempDir(), testColumns, testModel(len(testColumns)))
	loader := NewLoader(opts, zaptest.NewLogger(t))

	snapshot, err := loader.Load()
	require.NoError(t, err)

	assert.True(t, snapshot.Ready())
	assert.Equal(t, testColumns, snapshot.Schema.Columns())
	assert.Equal(t, []string{"electronic city", "whitefield", "hebbal"}, snapshot.Locations())
	assert.Len(t, snapshot.Locations(), snapshot.Schema.Len()-ml.FixedColumns)
	assert.Equal(t, ml.ModelTypeLinear, snapshot.ModelType)
	assert.Equal(t, uint64(1), snapshot.Version)
	assert.Same(t, snapshot, loader.Current())
}

func TestCurrentBeforeLoad(t *testing.T) {
	loader := NewLoader(Options{}, nil)

	snapshot := loader.Current()
	require.NotNil(t, snapshot)
	assert.False(t, snapshot.Ready())
	assert.Equal(t, []string{}, snapshot.Locations())
}

func TestLoadMissingSchema(t *testing.T) {
	opts := writeArtifacts(t, t.TempDir(), nil, testModel(6))
	loader := NewLoader(opts, zaptest.NewLogger(t))

	snapshot, err := loader.Load()
	assert.ErrorIs(t, err, ErrArtifactMissing)
	assert.ErrorIs(t, err, os.ErrNotExist)

	assert.Equal(t, []string{}, snapshot.Locations())
	assert.Equal(t, 0, snapshot.Schema.Len())
	assert.NotNil(t, snapshot.Model)
	assert.False(t, snapshot.Ready())
}

func TestLoadMalformedSchema(t *testing.T) {
	dir := t.TempDir()
	opts := writeArtifacts(t, dir, nil, testModel(6))

	for _, body := range []string{`{"data_columns": [`, `{"columns": ["a"]}`, `{"data_columns": "a,b"}`} {
		require.NoError(t, os.WriteFile(opts.ColumnsPath, []byte(body), 0o644))
		snapshot, err := NewLoader(opts, zaptest.NewLogger(t)).Load()
		assert.ErrorIs(t, err, ErrArtifactParse, body)
		assert.Equal(t, []string{}, snapshot.Locations(), body)
		assert.False(t, snapshot.Ready(), body)
	}
}

func TestLoadMissingModel(t *testing.T) {
	opts := writeArtifacts(t, t.TempDir(), testColumns, nil)

	snapshot, err := NewLoader(opts, zaptest.NewLogger(t)).Load()
	assert.ErrorIs(t, err, ErrArtifactMissing)
	assert.Nil(t, snapshot.Model)
	assert.Empty(t, snapshot.ModelType)
	assert.Len(t, snapshot.Locations(), 3)
	assert.False(t, snapshot.Ready())
}

func TestLoadCorruptModel(t *testing.T) {
	opts := writeArtifacts(t, t.TempDir(), testColumns, nil)
	require.NoError(t, os.WriteFile(opts.ModelPath, []byte("\x80\x04\x95pickle"), 0o644))

	snapshot, err := NewLoader(opts, zaptest.NewLogger(t)).Load()
	assert.ErrorIs(t, err, ErrArtifactParse)
	assert.Equal(t, ml.UnfittedModel{}, snapshot.Model)
	assert.Equal(t, ml.ModelTypeUnfitted, snapshot.ModelType)
	assert.True(t, snapshot.Ready())

	opts.FallbackOnCorruptModel = false
	snapshot, err = NewLoader(opts, zaptest.NewLogger(t)).Load()
	assert.ErrorIs(t, err, ErrArtifactParse)
	assert.Nil(t, snapshot.Model)
	assert.False(t, snapshot.Ready())
}

func TestLoadIdempotent(t *testing.T) {
	opts := writeArtifacts(t, t.TempDir(), testColumns, testModel(len(testColumns)))
	loader := NewLoader(opts, zaptest.NewLogger(t))

	first, err := loader.Load()
	require.NoError(t, err)
	second, err := loader.Load()
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, first.Schema, second.Schema)
	assert.Equal(t, first.Locations(), second.Locations())
	assert.Equal(t, first.Model, second.Model)
	assert.Equal(t, first.ModelType, second.ModelType)
	assert.Equal(t, first.Version+1, second.Version)
}

func TestLoadNotifiesSubscribers(t *testing.T) {
	opts := writeArtifacts(t, t.TempDir(), testColumns, testModel(len(testColumns)))
	loader := NewLoader(opts, zaptest.NewLogger(t))

	var seen atomic.Uint64
	loader.Subscribe(func(s *Snapshot) { seen.Store(s.Version) })

	_, err := loader.Load()
	require.NoError(t, err)
	_, err = loader.Load()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), seen.Load())
}

func TestWatcherReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	opts := writeArtifacts(t, dir, testColumns, testModel(len(testColumns)))
	loader := NewLoader(opts, zaptest.NewLogger(t))
	_, err := loader.Load()
	require.NoError(t, err)

	watcher, err := NewWatcher(loader, 10*time.Millisecond, zaptest.NewLogger(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watcher.Run(ctx) }()

	updated := append(append([]string{}, testColumns...), "yelahanka")
	require.NoError(t, WriteSchema(opts.ColumnsPath, updated))

	assert.Eventually(t, func() bool {
		return loader.Current().Schema.Len() == len(updated)
	}, 5*time.Second, 20*time.Millisecond)
	assert.Contains(t, loader.Current().Locations(), "yelahanka")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	opts := writeArtifacts(t, dir, testColumns, testModel(len(testColumns)))
	loader := NewLoader(opts, zaptest.NewLogger(t))

	watcher, err := NewWatcher(loader, time.Millisecond, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, watcher.relevant(fsnotifyEvent(filepath.Join(dir, "notes.txt"))))
	assert.True(t, watcher.relevant(fsnotifyEvent(opts.ModelPath)))
	require.NoError(t, watcher.fs.Close())
}

func TestNewWatcherMissingDir(t *testing.T) {
	loader := NewLoader(Options{
		ColumnsPath: filepath.Join(t.TempDir(), "absent", "columns.json"),
		ModelPath:   filepath.Join(t.TempDir(), "absent", "model.json"),
	}, nil)

	_, err := NewWatcher(loader, time.Millisecond, nil)
	assert.Error(t, err)
}

func fsnotifyEvent(name string) fsnotify.Event {
	return fsnotify.Event{Name: name, Op: fsnotify.Write}
}

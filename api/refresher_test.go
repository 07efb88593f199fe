package api

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/warp/loan-projection/catalog"
)

func writeDataset(t *testing.T, path, name string) {
	ds, err := catalog.Embedded(name)
	require.NoError(t, err)
	raw, err := json.Marshal(ds)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o600))
}

func TestDatasetRefresher_ReloadsOnChange(t *testing.T) {
	// GIVEN: a server on the minimal dataset and a file holding the default one
	s := newTestServer(t, nil)
	path := filepath.Join(t.TempDir(), "dataset.json")
	writeDataset(t, path, "default")

	r := NewDatasetRefresher(s.handler, path)

	// WHEN: the file is checked for the first time
	reloaded, err := r.Check(context.Background())

	// THEN: it replaces the dataset
	require.NoError(t, err)
	assert.True(t, reloaded)
	assert.Equal(t, "default", s.handler.CurrentDataset())

	// Unchanged file is not reloaded
	reloaded, err = r.Check(context.Background())
	require.NoError(t, err)
	assert.False(t, reloaded)

	// A broken file is reported and the dataset kept
	later := time.Now().Add(time.Hour)
	require.NoError(t, os.WriteFile(path, []byte(`{"name": "broken", "colleges": [`), 0o600))
	require.NoError(t, os.Chtimes(path, later, later))
	_, err = r.Check(context.Background())
	assert.Error(t, err)
	assert.Equal(t, "default", s.handler.CurrentDataset())

	// ...and not retried until it changes again
	reloaded, err = r.Check(context.Background())
	require.NoError(t, err)
	assert.False(t, reloaded)
}

func TestDatasetRefresher_MissingFile(t *testing.T) {
	s := newTestServer(t, nil)
	r := NewDatasetRefresher(s.handler, filepath.Join(t.TempDir(), "nope.json"))

	_, err := r.Check(context.Background())

	assert.Error(t, err)
	assert.Equal(t, "minimal", s.handler.CurrentDataset())
}

func TestDatasetRefresher_StartStop(t *testing.T) {
	// Registered first so it runs after the store is closed
	t.Cleanup(func() { goleak.VerifyNone(t) })

	s := newTestServer(t, nil)
	path := filepath.Join(t.TempDir(), "dataset.json")
	writeDataset(t, path, "default")

	r := NewDatasetRefresher(s.handler, path)
	r.CheckInterval = time.Hour
	r.Start()
	r.Start() // no second goroutine

	// The file is checked once on start
	require.Eventually(t, func() bool {
		return s.handler.CurrentDataset() == "default"
	}, 2*time.Second, 10*time.Millisecond)

	r.Stop()
	r.Stop()
}

func TestDatasetRefresher_RestartAfterStop(t *testing.T) {
	t.Cleanup(func() { goleak.VerifyNone(t) })

	// GIVEN: a refresher that ran once and was stopped
	s := newTestServer(t, nil)
	path := filepath.Join(t.TempDir(), "dataset.json")
	writeDataset(t, path, "default")

	r := NewDatasetRefresher(s.handler, path)
	r.CheckInterval = time.Hour
	r.Start()
	require.Eventually(t, func() bool {
		return s.handler.CurrentDataset() == "default"
	}, 2*time.Second, 10*time.Millisecond)
	r.Stop()

	// WHEN: the file changes and the refresher is started again
	writeDataset(t, path, "minimal")
	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, later, later))
	r.Start()
	defer r.Stop()

	// THEN: the new file is picked up
	require.Eventually(t, func() bool {
		return s.handler.CurrentDataset() == "minimal"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestDatasetRefresher_ManualCheckWhileRunning(t *testing.T) {
	// GIVEN: a refresher checking every millisecond
	s := newTestServer(t, nil)
	path := filepath.Join(t.TempDir(), "dataset.json")
	writeDataset(t, path, "default")

	r := NewDatasetRefresher(s.handler, path)
	r.CheckInterval = time.Millisecond
	r.Start()

	// WHEN: manual checks run alongside the ticker
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			_, err := r.Check(context.Background())
			assert.NoError(t, err)
		}
	}()
	<-done
	r.Stop()

	// THEN: the file was loaded exactly as if checked once
	assert.Equal(t, "default", s.handler.CurrentDataset())
	reloaded, err := r.Check(context.Background())
	require.NoError(t, err)
	assert.False(t, reloaded)
}

func TestDatasetRefresher_Disabled(t *testing.T) {
	s := newTestServer(t, nil)
	r := NewDatasetRefresher(s.handler, filepath.Join(t.TempDir(), "dataset.json"))
	r.Enabled = false

	r.Start()
	defer r.Stop()

	assert.Nil(t, r.ticker)
}

package main

import (
	"bytes"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"voxmesh/internal/config"
	"voxmesh/internal/export"
	"voxmesh/internal/registry"
	"voxmesh/internal/world"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunExports(t *testing.T) {
	t.Setenv(config.EnvConfig, "")
	dir := t.TempDir()
	objPath := filepath.Join(dir, "world.obj.zst")
	pngPath := filepath.Join(dir, "world.png")

	var logs bytes.Buffer
	err := run([]string{
		"-radius", "1",
		"-ticks", "2",
		"-edits", "8",
		"-noise", "perlin",
		"-obj", objPath,
		"-png", pngPath,
		"-png-size", "64",
	}, &logs)
	require.NoError(t, err, logs.String())

	r, err := export.OpenFile(objPath)
	require.NoError(t, err)
	obj, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.True(t, strings.HasPrefix(string(obj), "# voxmesh chunk export"))
	assert.Contains(t, string(obj), "usemtl ")

	png, err := os.ReadFile(pngPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	assert.Contains(t, logs.String(), "Generated world")
	assert.Contains(t, logs.String(), "msg=Tick")
}

func TestRunRejectsUnknownStrategy(t *testing.T) {
	t.Setenv(config.EnvConfig, "")
	strategy := config.GetStrategy()
	defer config.SetStrategy(strategy)

	err := run([]string{"-strategy", "marching", "-ticks", "0"}, io.Discard)
	assert.ErrorContains(t, err, "unknown meshing strategy")
}

func TestRunRejectsUnknownNoise(t *testing.T) {
	t.Setenv(config.EnvConfig, "")
	err := run([]string{"-noise", "simplex", "-ticks", "0"}, io.Discard)
	assert.ErrorContains(t, err, "unknown noise")
}

func TestParseFlagsConfigFile(t *testing.T) {
	t.Setenv(config.EnvConfig, "")
	seed := config.GetSeed()
	workers := config.GetWorkers()
	defer func() {
		config.SetSeed(seed)
		config.SetWorkers(workers)
	}()

	path := filepath.Join(t.TempDir(), "voxmesh.toml")
	require.NoError(t, os.WriteFile(path, []byte("[world]\nseed = 11\n[mesher]\nworkers = 3\n[metrics]\naddr = \":9999\"\n"), 0o644))

	opts, file, err := parseFlags([]string{"-config", path, "-workers", "5"}, io.Discard)
	require.NoError(t, err)
	require.NotNil(t, file)
	assert.Equal(t, int64(11), config.GetSeed())
	// The flag overrides the file.
	assert.Equal(t, 5, config.GetWorkers())
	assert.Equal(t, ":9999", opts.metrics)
}

func TestApplyEditsDirtiesChunks(t *testing.T) {
	w := world.New(world.NewGenerator(3, registry.DefaultPalette()))
	w.GenerateArea(0, 0, 1, 0, 2)
	for _, c := range w.Store.AllChunks() {
		c.ClearChanged()
	}

	applyEdits(w, rand.New(rand.NewSource(1)), 256, []world.MaterialID{world.AirID, registry.Glass})
	assert.NotEmpty(t, w.Store.DirtyChunks())
}

func TestShutdownServerLogsTimeout(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
	}))
	defer func() {
		close(release)
		ts.Close()
	}()

	go func() {
		resp, err := http.Get(ts.URL)
		if err == nil {
			resp.Body.Close()
		}
	}()
	<-started

	var logs bytes.Buffer
	shutdownServer(ts.Config, 10*time.Millisecond, slog.New(slog.NewTextHandler(&logs, nil)))
	assert.Contains(t, logs.String(), "Metrics server shutdown failed")
	assert.Contains(t, logs.String(), "context deadline exceeded")
}

func TestShutdownServerIdle(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	var logs bytes.Buffer
	shutdownServer(ts.Config, time.Second, slog.New(slog.NewTextHandler(&logs, nil)))
	assert.Empty(t, logs.String())
}

func TestEditPalette(t *testing.T) {
	reg := registry.Defaults()
	ids, err := editPalette(reg, " air, stone ,,torch")
	require.NoError(t, err)
	assert.Equal(t, []world.MaterialID{world.AirID, registry.Stone, registry.Torch}, ids)

	_, err = editPalette(reg, "stone,obsidian")
	assert.ErrorContains(t, err, "obsidian")
	_, err = editPalette(reg, " , ")
	assert.Error(t, err)
}

func TestLogMaterials(t *testing.T) {
	var logs bytes.Buffer
	logMaterials(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})), registry.Defaults())
	assert.Equal(t, 7, strings.Count(logs.String(), "msg=Material"))
	assert.Contains(t, logs.String(), "name=torch")
	assert.Contains(t, logs.String(), "custom_model=true")
}

func TestRunRejectsUnknownEditMaterial(t *testing.T) {
	t.Setenv(config.EnvConfig, "")
	err := run([]string{"-edit-materials", "lava", "-ticks", "0"}, io.Discard)
	assert.ErrorContains(t, err, "lava")
}

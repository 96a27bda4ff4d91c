// Command chunkmesh builds a demo voxel world, meshes it with the scheduler
// and exports the result.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"slices"
	"strings"
	"time"

	"voxmesh/internal/config"
	"voxmesh/internal/export"
	"voxmesh/internal/meshing"
	"voxmesh/internal/metrics"
	"voxmesh/internal/profiling"
	"voxmesh/internal/registry"
	"voxmesh/internal/world"

	"github.com/xlab/closer"
)

type options struct {
	configPath string
	noise      string
	ticks      int
	edits      int
	editNames  string
	interval   time.Duration
	objPath    string
	pngPath    string
	pngSize    int
	serve      bool
	metrics    string
}

func main() {
	if err := run(os.Args[1:], os.Stderr); err != nil {
		slog.Error("chunkmesh failed", "error", err)
		closer.Exit(1)
	}
	closer.Close()
}

func parseFlags(args []string, stderr io.Writer) (options, *config.File, error) {
	var opts options
	fs := flag.NewFlagSet("chunkmesh", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "YAML or TOML config file (default $"+config.EnvConfig+")")
	seed := fs.Int64("seed", config.GetSeed(), "terrain seed")
	radius := fs.Int("radius", config.GetRadius(), "generated area radius in chunks")
	strategy := fs.String("strategy", config.GetStrategy(), "meshing strategy: greedy or naive")
	workers := fs.Int("workers", config.GetWorkers(), "mesh worker goroutines")
	fs.StringVar(&opts.noise, "noise", "value", "terrain noise: value or perlin")
	fs.IntVar(&opts.ticks, "ticks", 3, "scheduler ticks to run")
	fs.IntVar(&opts.edits, "edits", 32, "random block edits between ticks")
	fs.StringVar(&opts.editNames, "edit-materials", "air,stone,glass,torch", "comma-separated material names placed by random edits")
	fs.DurationVar(&opts.interval, "interval", 100*time.Millisecond, "tick interval in serve mode")
	fs.StringVar(&opts.objPath, "obj", "", "write meshes as Wavefront OBJ (.zst compresses)")
	fs.StringVar(&opts.pngPath, "png", "", "write a top-down PNG preview")
	fs.IntVar(&opts.pngSize, "png-size", 512, "preview size in pixels")
	fs.BoolVar(&opts.serve, "serve", false, "keep ticking and serve metrics until interrupted")
	fs.StringVar(&opts.metrics, "metrics", "", "metrics listen address in serve mode (default from config or :2112)")
	if err := fs.Parse(args); err != nil {
		return opts, nil, err
	}

	file, err := config.Load(opts.configPath)
	if err != nil {
		return opts, nil, err
	}
	file.Apply()

	// Explicit flags win over the config file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "seed":
			config.SetSeed(*seed)
		case "radius":
			config.SetRadius(*radius)
		case "strategy":
			config.SetStrategy(*strategy)
		case "workers":
			config.SetWorkers(*workers)
		}
	})
	if opts.metrics == "" {
		opts.metrics = ":2112"
		if file != nil && file.Metrics.Addr != "" {
			opts.metrics = file.Metrics.Addr
		}
	}
	return opts, file, nil
}

func newGenerator(noise string, seed int64, palette world.Palette) (*world.Generator, error) {
	switch noise {
	case "", "value":
		return world.NewGenerator(seed, palette), nil
	case "perlin":
		return world.NewPerlinGenerator(seed, palette), nil
	}
	return nil, fmt.Errorf("unknown noise %q", noise)
}

func run(args []string, stderr io.Writer) error {
	opts, file, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	level, err := file.SlogLevel()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	reg := registry.Defaults()
	reg.SetLogger(logger)
	if path := file.MaterialsPath(); path != "" {
		n, err := reg.LoadFile(path)
		if err != nil {
			return fmt.Errorf("load materials: %w", err)
		}
		logger.Info("Loaded material table", "path", path, "materials", n)
	}
	logMaterials(logger, reg)
	editIDs, err := editPalette(reg, opts.editNames)
	if err != nil {
		return err
	}

	uv, err := meshing.ParseUVMode(config.GetUVMode())
	if err != nil {
		return err
	}
	mesher, err := meshing.NewMesher(config.GetStrategy(), meshing.Options{
		Materials:   reg,
		UV:          uv,
		MaxVertices: config.GetMaxVertices(),
	})
	if err != nil {
		return err
	}

	gen, err := newGenerator(opts.noise, config.GetSeed(), registry.DefaultPalette())
	if err != nil {
		return err
	}
	gen.SetSeaLevel(config.GetSeaLevel())
	w := world.New(gen)

	stop := profiling.Track("world.Generate")
	minY, maxY := config.GetVerticalRange()
	created := w.GenerateArea(0, 0, config.GetRadius(), minY, maxY)
	stop()
	logger.Info("Generated world", "chunks", created, "seed", config.GetSeed(), "noise", opts.noise, "took", profiling.TopN(1))

	pool := meshing.NewWorkerPool(mesher, config.GetWorkers(), config.GetQueueSize())
	collector := metrics.New()
	sink := meshing.NewMemorySink()
	sched, err := meshing.NewScheduler(meshing.SchedulerConfig{
		Source:   w.Store,
		Pool:     pool,
		Sink:     sink,
		Logger:   logger,
		Metrics:  collector,
		Profiler: profiling.Default(),
		SlowTick: config.GetSlowTick(),
	})
	if err != nil {
		pool.Shutdown()
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	closer.Bind(func() {
		cancel()
		pool.Shutdown()
		logger.Info("Mesh workers stopped")
	})

	rng := rand.New(rand.NewSource(config.GetSeed()))
	for i := 0; i < opts.ticks; i++ {
		if i > 0 {
			applyEdits(w, rng, opts.edits, editIDs)
		}
		report, err := sched.Tick(ctx)
		if err != nil {
			return err
		}
		logger.Info("Tick",
			"tick", i,
			"dirty", report.Dirty,
			"meshed", report.Meshed,
			"failed", report.Failed,
			"quads", report.Quads,
			"duration", report.Duration,
		)
	}

	if err := exportMeshes(opts, reg, sink, logger); err != nil {
		return err
	}

	if !opts.serve {
		return nil
	}
	return serve(ctx, opts, sched, w, rng, editIDs, collector, logger)
}

func logMaterials(logger *slog.Logger, reg *registry.Registry) {
	for _, m := range reg.Materials() {
		logger.Debug("Material",
			"id", m.ID,
			"name", m.Name,
			"transparent", m.Transparent,
			"custom_model", m.CustomModel,
		)
	}
}

// editPalette resolves the comma-separated material names used by random edits.
func editPalette(reg *registry.Registry, names string) ([]world.MaterialID, error) {
	var ids []world.MaterialID
	for _, name := range strings.Split(names, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		m, ok := reg.ByName(name)
		if !ok {
			return nil, fmt.Errorf("edit material %q is not registered", name)
		}
		ids = append(ids, m.ID)
	}
	if len(ids) == 0 {
		return nil, errors.New("no edit materials given")
	}
	return ids, nil
}

// applyEdits scatters single block changes over the surface so the next
// tick has chunks to remesh.
func applyEdits(w *world.World, rng *rand.Rand, n int, ids []world.MaterialID) {
	radius := max(config.GetRadius(), 1) * world.ChunkSizeX
	for i := 0; i < n; i++ {
		x := rng.Intn(2*radius) - radius
		z := rng.Intn(2*radius) - radius
		y := w.SurfaceHeightAt(x, z) + rng.Intn(3) - 1
		if y < 0 {
			y = 0
		}
		if w.Store.GetChunkFromBlockCoords(x, y, z, false) == nil {
			continue
		}
		w.Set(x, y, z, ids[rng.Intn(len(ids))])
	}
}

func sortedMeshes(sink *meshing.MemorySink) []*meshing.Mesh {
	meshes := make([]*meshing.Mesh, 0, sink.Len())
	for _, m := range sink.Meshes() {
		meshes = append(meshes, m)
	}
	slices.SortFunc(meshes, func(a, b *meshing.Mesh) int {
		switch {
		case a.Coord.Less(b.Coord):
			return -1
		case b.Coord.Less(a.Coord):
			return 1
		}
		return 0
	})
	return meshes
}

func exportMeshes(opts options, reg *registry.Registry, sink *meshing.MemorySink, logger *slog.Logger) error {
	if opts.objPath == "" && opts.pngPath == "" {
		return nil
	}
	meshes := sortedMeshes(sink)

	if opts.objPath != "" {
		f, err := export.CreateFile(opts.objPath)
		if err != nil {
			return err
		}
		werr := export.WriteOBJ(f, reg, meshes...)
		if err := errors.Join(werr, f.Close()); err != nil {
			return fmt.Errorf("write %s: %w", opts.objPath, err)
		}
		logger.Info("Wrote OBJ", "path", opts.objPath, "meshes", len(meshes), "compressed", export.Compressed(opts.objPath))
	}

	if opts.pngPath != "" {
		img := export.RenderPreview(meshes, export.PreviewOptions{Size: opts.pngSize})
		f, err := os.Create(opts.pngPath)
		if err != nil {
			return err
		}
		werr := export.WritePNG(f, img)
		if err := errors.Join(werr, f.Close()); err != nil {
			return fmt.Errorf("write %s: %w", opts.pngPath, err)
		}
		logger.Info("Wrote preview", "path", opts.pngPath, "size", opts.pngSize)
	}
	return nil
}

// shutdownServer stops srv, waiting at most timeout for open requests.
func shutdownServer(srv *http.Server, timeout time.Duration, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("Metrics server shutdown failed", "error", err)
	}
}

func serve(ctx context.Context, opts options, sched *meshing.Scheduler, w *world.World, rng *rand.Rand, editIDs []world.MaterialID, collector *metrics.Collector, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	srv := &http.Server{Addr: opts.metrics, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	closer.Bind(func() { shutdownServer(srv, 2*time.Second, logger) })

	go func() {
		logger.Info("Serving metrics", "addr", opts.metrics)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", "error", err)
			closer.Close()
		}
	}()

	// Keep the world changing so the scheduler has work.
	go func() {
		ticker := time.NewTicker(opts.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				applyEdits(w, rng, max(opts.edits/10, 1), editIDs)
			}
		}
	}()
	go func() {
		if err := sched.Run(ctx, opts.interval); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Scheduler stopped", "error", err)
		}
	}()

	closer.Hold()
	return nil
}

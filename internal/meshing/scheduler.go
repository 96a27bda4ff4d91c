package meshing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"voxmesh/internal/metrics"
	"voxmesh/internal/profiling"
	"voxmesh/internal/world"
)

// MeshSink receives finished meshes, typically uploading them to the GPU.
// A chunk is only marked clean once Install returns nil.
type MeshSink interface {
	Install(coord world.ChunkCoord, mesh *Mesh) error
}

// MeshSinkFunc adapts a function to MeshSink.
type MeshSinkFunc func(coord world.ChunkCoord, mesh *Mesh) error

// Install implements MeshSink.
func (f MeshSinkFunc) Install(coord world.ChunkCoord, mesh *Mesh) error { return f(coord, mesh) }

// MemorySink keeps the latest mesh per chunk in memory.
type MemorySink struct {
	mu        sync.RWMutex
	meshes    map[world.ChunkCoord]*Mesh
	checksums map[world.ChunkCoord]uint64
	installs  int
	unchanged int
}

// NewMemorySink creates an empty sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{
		meshes:    make(map[world.ChunkCoord]*Mesh),
		checksums: make(map[world.ChunkCoord]uint64),
	}
}

// Install stores mesh. A mesh identical to the stored one is not replaced.
func (s *MemorySink) Install(coord world.ChunkCoord, mesh *Mesh) error {
	sum := mesh.Checksum()
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.checksums[coord]; ok && old == sum {
		s.unchanged++
		return nil
	}
	s.meshes[coord] = mesh
	s.checksums[coord] = sum
	s.installs++
	return nil
}

// Mesh returns the installed mesh for coord.
func (s *MemorySink) Mesh(coord world.ChunkCoord) (*Mesh, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.meshes[coord]
	return m, ok
}

// Remove drops the mesh for coord, e.g. when the chunk is unloaded.
func (s *MemorySink) Remove(coord world.ChunkCoord) {
	s.mu.Lock()
	delete(s.meshes, coord)
	delete(s.checksums, coord)
	s.mu.Unlock()
}

// Meshes returns a copy of every installed mesh.
func (s *MemorySink) Meshes() map[world.ChunkCoord]*Mesh {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[world.ChunkCoord]*Mesh, len(s.meshes))
	for k, v := range s.meshes {
		out[k] = v
	}
	return out
}

// Len returns the number of installed meshes.
func (s *MemorySink) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.meshes)
}

// Stats returns how many meshes were stored and how many were skipped as unchanged.
func (s *MemorySink) Stats() (installs, unchanged int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.installs, s.unchanged
}

// ChunkSource is what the scheduler needs from the chunk store.
type ChunkSource interface {
	world.NeighborSource
	// DirtyChunks returns every chunk needing a remesh in a stable order.
	DirtyChunks() []*world.Chunk
}

// SchedulerConfig wires a Scheduler. Source and Pool are required.
type SchedulerConfig struct {
	Source   ChunkSource
	Pool     *WorkerPool
	Sink     MeshSink
	Logger   *slog.Logger
	Metrics  *metrics.Collector
	Profiler *profiling.Tracker
	// SlowTick logs a warning for ticks taking longer. Zero disables it.
	SlowTick time.Duration
}

// TickReport summarises one Tick.
type TickReport struct {
	Dirty     int
	Submitted int
	Meshed    int
	Failed    int
	Skipped   int
	Quads     int
	Duration  time.Duration
}

// Scheduler remeshes dirty chunks once per tick. A chunk is marked clean
// only after its mesh was installed, and only up to the change version read
// before meshing started, so edits made meanwhile trigger another pass.
type Scheduler struct {
	src      ChunkSource
	pool     *WorkerPool
	sink     MeshSink
	log      *slog.Logger
	metrics  *metrics.Collector
	profiler *profiling.Tracker
	slowTick time.Duration
}

// NewScheduler validates cfg and fills defaults: a MemorySink, the default
// slog logger and a private profiling tracker.
func NewScheduler(cfg SchedulerConfig) (*Scheduler, error) {
	if cfg.Source == nil {
		return nil, errors.New("scheduler: nil chunk source")
	}
	if cfg.Pool == nil {
		return nil, errors.New("scheduler: nil worker pool")
	}
	if cfg.Sink == nil {
		cfg.Sink = NewMemorySink()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Profiler == nil {
		cfg.Profiler = profiling.NewTracker()
	}
	return &Scheduler{
		src:      cfg.Source,
		pool:     cfg.Pool,
		sink:     cfg.Sink,
		log:      cfg.Logger.With("component", "mesh-scheduler", "strategy", cfg.Pool.Mesher().Name()),
		metrics:  cfg.Metrics,
		profiler: cfg.Profiler,
		slowTick: cfg.SlowTick,
	}, nil
}

// Sink returns the sink meshes are installed into.
func (s *Scheduler) Sink() MeshSink { return s.sink }

// Tick meshes every dirty chunk once. Cancelling ctx stops further
// submissions; chunks already handed to the pool are still finished and
// installed. Failures leave the chunk dirty and do not abort the tick.
func (s *Scheduler) Tick(ctx context.Context) (TickReport, error) {
	start := time.Now()
	s.profiler.ResetTick()

	var report TickReport
	defer func() {
		report.Duration = time.Since(start)
		s.metrics.ObserveTick(report.Duration)
		if s.slowTick > 0 && report.Duration > s.slowTick {
			s.log.Warn("Slow tick", "duration", report.Duration, "chunks", report.Submitted, "top", s.profiler.TopN(5))
		}
	}()

	dirty := s.src.DirtyChunks()
	report.Dirty = len(dirty)
	s.metrics.SetDirty(len(dirty))
	if len(dirty) == 0 {
		return report, nil
	}

	results := make(chan MeshResult, len(dirty))
	var tickErr error
	for i, c := range dirty {
		if err := ctx.Err(); err != nil {
			report.Skipped = len(dirty) - i
			tickErr = err
			break
		}
		job := MeshJob{Chunk: c, Source: s.src, Version: c.ChangeVersion(), ResultChan: results}
		if err := s.pool.SubmitJobBlocking(ctx, job); err != nil {
			report.Skipped = len(dirty) - i
			tickErr = err
			break
		}
		report.Submitted++
	}

	for pending := report.Submitted; pending > 0; pending-- {
		select {
		case res := <-results:
			s.handle(res, &report)
		case <-s.pool.Done():
			report.Skipped += pending
			return report, ErrPoolClosed
		}
	}

	if tickErr != nil {
		return report, fmt.Errorf("tick interrupted: %w", tickErr)
	}
	return report, nil
}

func (s *Scheduler) handle(res MeshResult, report *TickReport) {
	s.profiler.Add("meshing.GenerateMesh", res.Duration)

	if res.Error != nil {
		s.fail(res, failureReason(res.Error), res.Error, report)
		return
	}

	stop := s.profiler.Track("meshing.Install")
	err := s.sink.Install(res.Coord, res.Mesh)
	stop()
	if err != nil {
		s.fail(res, metrics.ReasonInstall, err, report)
		return
	}

	if !res.Chunk.ClearChangedThrough(res.Version) {
		s.log.Debug("Chunk changed while meshing", "chunk", res.Coord, "version", res.Version)
	}
	report.Meshed++
	report.Quads += res.Mesh.Quads
	s.metrics.ObserveMesh(s.pool.Mesher().Name(), res.Duration, res.Mesh.Quads)
}

func (s *Scheduler) fail(res MeshResult, reason string, err error, report *TickReport) {
	report.Failed++
	s.metrics.ObserveFailure(reason)
	s.log.Warn("Chunk mesh failed, will retry", "chunk", res.Coord, "reason", reason, "error", err)
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrMesherPanic):
		return metrics.ReasonPanic
	case errors.Is(err, world.ErrOutOfRange):
		return metrics.ReasonOutOfRange
	case errors.Is(err, ErrVertexBudgetExceeded):
		return metrics.ReasonVertexBudget
	}
	return metrics.ReasonOther
}

// Run ticks every interval until ctx is done or the pool shuts down.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			report, err := s.Tick(ctx)
			if errors.Is(err, ErrPoolClosed) {
				return err
			}
			if err != nil && ctx.Err() == nil {
				s.log.Error("Tick failed", "error", err)
			}
			if report.Submitted > 0 {
				s.log.Debug("Tick", "meshed", report.Meshed, "failed", report.Failed, "quads", report.Quads, "duration", report.Duration)
			}
		}
	}
}

package meshing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"voxmesh/internal/world"
)

// ErrPoolClosed is returned when submitting to a pool that was shut down.
var ErrPoolClosed = errors.New("mesh worker pool closed")

// ErrMesherPanic wraps any panic recovered while a worker was meshing.
var ErrMesherPanic = errors.New("mesher panicked")

// MeshJob represents a meshing job request
type MeshJob struct {
	Chunk  *world.Chunk
	Source world.NeighborSource
	// Version is the chunk change version read before submission. The
	// scheduler clears the dirty flag only up to this version.
	Version uint64
	// Result channel - will be sent the result when done
	ResultChan chan<- MeshResult
}

// MeshResult contains the result of a meshing operation
type MeshResult struct {
	Coord    world.ChunkCoord
	Chunk    *world.Chunk
	Version  uint64
	Mesh     *Mesh
	Duration time.Duration
	Error    error
}

// WorkerPool runs a Mesher on a fixed set of goroutines.
type WorkerPool struct {
	mesher   Mesher
	jobQueue chan MeshJob
	workers  int
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewWorkerPool creates a new mesh worker pool
func NewWorkerPool(mesher Mesher, workers int, queueSize int) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	ctx, cancel := context.WithCancel(context.Background())

	pool := &WorkerPool{
		mesher:   mesher,
		jobQueue: make(chan MeshJob, queueSize),
		workers:  workers,
		ctx:      ctx,
		cancel:   cancel,
	}

	for i := 0; i < workers; i++ {
		pool.wg.Add(1)
		go pool.worker(i)
	}

	return pool
}

// Mesher returns the strategy the workers run.
func (p *WorkerPool) Mesher() Mesher { return p.mesher }

// Workers returns the number of worker goroutines.
func (p *WorkerPool) Workers() int { return p.workers }

// SubmitJob submits a mesh generation job to the pool
// Returns true if job was submitted successfully, false if queue is full
func (p *WorkerPool) SubmitJob(job MeshJob) bool {
	if p.ctx.Err() != nil {
		return false
	}
	select {
	case p.jobQueue <- job:
		return true
	default:
		return false
	}
}

// SubmitJobBlocking blocks until the job is queued, ctx is done or the pool
// shuts down.
func (p *WorkerPool) SubmitJobBlocking(ctx context.Context, job MeshJob) error {
	if p.ctx.Err() != nil {
		return ErrPoolClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case p.jobQueue <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return ErrPoolClosed
	}
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case job := <-p.jobQueue:
			result := p.run(job)
			select {
			case job.ResultChan <- result:
			case <-p.ctx.Done():
				return
			}
		case <-p.ctx.Done():
			return
		}
	}
}

// run meshes one chunk. Panics never escape a worker.
func (p *WorkerPool) run(job MeshJob) (res MeshResult) {
	res = MeshResult{Coord: job.Chunk.Coord, Chunk: job.Chunk, Version: job.Version}
	start := time.Now()
	defer func() {
		res.Duration = time.Since(start)
		if r := recover(); r != nil {
			res.Mesh = nil
			if err, ok := r.(error); ok {
				res.Error = fmt.Errorf("%w: chunk %v: %w", ErrMesherPanic, job.Chunk.Coord, err)
			} else {
				res.Error = fmt.Errorf("%w: chunk %v: %v", ErrMesherPanic, job.Chunk.Coord, r)
			}
		}
	}()
	res.Mesh, res.Error = p.mesher.GenerateMesh(job.Chunk, job.Source)
	return res
}

// Done is closed once Shutdown has been called.
func (p *WorkerPool) Done() <-chan struct{} {
	return p.ctx.Done()
}

// Shutdown stops the workers and waits for them. Jobs still queued are
// dropped. The queue is left open so late submitters fail instead of panicking.
func (p *WorkerPool) Shutdown() {
	p.cancel()
	p.wg.Wait()
}

// QueueLength returns the current number of jobs in the queue
func (p *WorkerPool) QueueLength() int {
	return len(p.jobQueue)
}

package mesh

import (
	"github.com/alitto/pond/v2"
	"go.uber.org/atomic"
)

const (
	DefaultWorkers  = 4
	DefaultQueueCap = 256
)

type PoolConfig struct {
	Workers  int
	QueueCap int // max jobs submitted but not yet meshed
}

// Job asks for one slice to be meshed against a snapshot taken at submit time.
// Gen is opaque to the pool and comes back on the Result.
type Job struct {
	Key      Key
	Gen      uint64
	Snapshot Snapshot
}

// Run meshes a job inline. Failures are reported on Result.Err.
func Run(job Job, atlas TextureAtlas) Result {
	res, err := MeshSlice(job.Key, job.Snapshot, atlas)
	if err != nil {
		res = Result{Key: job.Key, Err: err}
	}
	res.Gen = job.Gen
	return res
}

// Pool meshes slices on a fixed set of workers. Results are delivered on
// Results in completion order; nothing orders them by submission.
type Pool struct {
	pool    pond.Pool
	atlas   TextureAtlas
	results chan Result
	stop    chan struct{}
	cap     int64

	closed    atomic.Bool
	inFlight  atomic.Int64
	completed atomic.Int64
	rejected  atomic.Int64
	dropped   atomic.Int64
}

func NewPool(cfg PoolConfig, atlas TextureAtlas) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.QueueCap <= 0 {
		cfg.QueueCap = DefaultQueueCap
	}
	return &Pool{
		pool:    pond.NewPool(cfg.Workers),
		atlas:   atlas,
		results: make(chan Result, cfg.QueueCap),
		stop:    make(chan struct{}),
		cap:     int64(cfg.QueueCap),
	}
}

// Submit queues a job without blocking. It reports false when the pool is at
// capacity or closed; the caller keeps the slice pending and retries later.
func (p *Pool) Submit(job Job) bool {
	if p.closed.Load() {
		return false
	}
	if p.inFlight.Inc() > p.cap {
		p.inFlight.Dec()
		p.rejected.Inc()
		return false
	}
	p.pool.Submit(func() {
		res := Run(job, p.atlas)
		p.inFlight.Dec()
		select {
		case p.results <- res:
			p.completed.Inc()
		case <-p.stop:
			p.dropped.Inc()
		}
	})
	return true
}

func (p *Pool) Results() <-chan Result { return p.results }

func (p *Pool) InFlight() int64  { return p.inFlight.Load() }
func (p *Pool) Completed() int64 { return p.completed.Load() }
func (p *Pool) Rejected() int64  { return p.rejected.Load() }
func (p *Pool) Dropped() int64   { return p.dropped.Load() }

// Close stops accepting jobs and waits for running ones. Results that can no
// longer be delivered are counted as dropped.
func (p *Pool) Close() {
	if p.closed.Swap(true) {
		return
	}
	close(p.stop)
	p.pool.StopAndWait()
}

package prediction

import (
	"context"
	"errors"
	"sync"

	"github.com/Alias1177/fxsignal/models"
)

// ErrPoolClosed is returned by Submit after Close
var ErrPoolClosed = errors.New("prediction: pool closed")

type job struct {
	features []float64
	out      chan<- jobResult
}

type jobResult struct {
	pred models.MLPrediction
	err  error
}

// Pool runs model inference on a fixed set of goroutines so scan units
// blocked on I/O do not compete with CPU-bound scoring
type Pool struct {
	model *Model
	jobs  chan job

	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

// NewPool starts workers inference goroutines
func NewPool(model *Model, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	p := &Pool{
		model: model,
		jobs:  make(chan job),
		done:  make(chan struct{}),
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.done:
			return
		case j := <-p.jobs:
			pred, err := p.model.Predict(j.features)
			j.out <- jobResult{pred: pred, err: err}
		}
	}
}

// Submit runs one inference and waits for its result
func (p *Pool) Submit(ctx context.Context, features []float64) (models.MLPrediction, error) {
	out := make(chan jobResult, 1)

	select {
	case p.jobs <- job{features: features, out: out}:
	case <-p.done:
		return models.NeutralPrediction(), ErrPoolClosed
	case <-ctx.Done():
		return models.NeutralPrediction(), ctx.Err()
	}

	select {
	case r := <-out:
		return r.pred, r.err
	case <-ctx.Done():
		return models.NeutralPrediction(), ctx.Err()
	}
}

// Close stops the workers and waits for them to exit
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.done)
	})
	p.wg.Wait()
}

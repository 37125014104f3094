package worker

import (
	"context"
	"runtime"
	"sync"
)

const (
	MaxWorkersCountNumCPU    = -1
	MaxWorkersCountUnlimited = 0
)

type (
	Job      func(context.Context)
	ErrorJob func(context.Context) error

	Pool interface {
		// Do blocks until a worker is available, it returns ctx error without running the job when ctx is done first
		Do(ctx context.Context, job Job) error
		Wait()
	}
)

type pool struct {
	jobCompleted *sync.WaitGroup
	workers      chan struct{}
}

func NewPool(maxWorkers int) Pool {
	if maxWorkers <= MaxWorkersCountNumCPU {
		maxWorkers = runtime.NumCPU()
	}

	var workers chan struct{}
	if maxWorkers > 0 {
		workers = make(chan struct{}, maxWorkers)
	}

	return &pool{
		jobCompleted: &sync.WaitGroup{},
		workers:      workers,
	}
}

func (p *pool) Do(ctx context.Context, job Job) error {
	if p.workers != nil {
		select {
		case p.workers <- struct{}{}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	p.jobCompleted.Add(1)
	go func() {
		defer func() {
			if p.workers != nil {
				<-p.workers
			}
			p.jobCompleted.Done()
		}()

		job(ctx)
	}()

	return nil
}

func (p *pool) Wait() {
	p.jobCompleted.Wait()
}

package pool

import (
	"io"
	"runtime"
	"sync"
	"sync/atomic"
)

// job is a unit of work sent to the workers.
//
// A search job keeps evaluating f until the shared counter drops to zero,
// a plain job evaluates f exactly once at index i.
// Completions are signalled on done, which belongs to the call that created the job.
type job struct {
	search  bool
	i       int
	remain  *int64
	f       func(int) (interface{}, bool)
	results []interface{}
	done    chan<- struct{}
}

func (j job) run() {
	done := j.done
	if !j.search {
		j.results[j.i], _ = j.f(j.i)
		done <- struct{}{}
		return
	}
	for atomic.LoadInt64(j.remain) > 0 {
		res, ok := j.f(0)
		if !ok {
			continue
		}
		slot := atomic.AddInt64(j.remain, -1)
		if slot < 0 {
			return
		}
		j.results[slot] = res
		done <- struct{}{}
	}
}

// Pool is a fixed set of goroutines used to parallelize expensive searches,
// such as sampling safe primes.
//
// Every function taking a *Pool accepts a nil receiver, and then runs on the
// calling goroutine instead. A Pool may be shared by concurrent calls.
type Pool struct {
	jobs    chan job
	workers int
}

// NewPool creates a pool with count workers.
// If count <= 0, runtime.NumCPU() workers are started.
func NewPool(count int) *Pool {
	if count <= 0 {
		count = runtime.NumCPU()
	}
	p := &Pool{
		jobs:    make(chan job),
		workers: count,
	}
	for i := 0; i < count; i++ {
		go func() {
			for j := range p.jobs {
				j.run()
			}
		}()
	}
	return p
}

// TearDown stops all workers. The pool must not be used afterwards.
func (p *Pool) TearDown() {
	if p == nil {
		return
	}
	close(p.jobs)
}

// Workers returns the number of goroutines backing p, or 1 for a nil pool.
func (p *Pool) Workers() int {
	if p == nil {
		return 1
	}
	return p.workers
}

// dispatch sends jobs produced by next until it returns false, while draining
// completion signals from done so that workers never block. It returns once
// want completions have been observed.
//
// Each call owns its done channel, so that concurrent calls never observe
// each other's completions.
func (p *Pool) dispatch(done <-chan struct{}, want int, next func() (job, bool)) {
	received := 0
	pending, more := next()
	for more {
		select {
		case p.jobs <- pending:
			pending, more = next()
		case <-done:
			received++
		}
	}
	for ; received < want; received++ {
		<-done
	}
}

// Search evaluates f until count successful results are found.
//
// f tries a single candidate and reports whether it succeeded.
func Search[T any](p *Pool, count int, f func() (T, bool)) []T {
	out := make([]T, count)
	if p == nil {
		for i := range out {
			for {
				res, ok := f()
				if ok {
					out[i] = res
					break
				}
			}
		}
		return out
	}

	results := make([]interface{}, count)
	remain := int64(count)
	done := make(chan struct{})
	j := job{
		search: true,
		remain: &remain,
		f: func(int) (interface{}, bool) {
			return f()
		},
		results: results,
		done:    done,
	}
	sent := 0
	p.dispatch(done, count, func() (job, bool) {
		if sent == p.workers || atomic.LoadInt64(&remain) <= 0 {
			return job{}, false
		}
		sent++
		return j, true
	})
	for i, r := range results {
		// a nil interface result stays the zero value of T
		out[i], _ = r.(T)
	}
	return out
}

// Parallelize evaluates f(0), …, f(count-1) and returns the results in order.
func Parallelize[T any](p *Pool, count int, f func(int) T) []T {
	out := make([]T, count)
	if p == nil {
		for i := range out {
			out[i] = f(i)
		}
		return out
	}

	results := make([]interface{}, count)
	wrapped := func(i int) (interface{}, bool) {
		return f(i), true
	}
	done := make(chan struct{})
	i := 0
	p.dispatch(done, count, func() (job, bool) {
		if i == count {
			return job{}, false
		}
		j := job{i: i, f: wrapped, results: results, done: done}
		i++
		return j, true
	})
	for i, r := range results {
		// a nil interface result stays the zero value of T
		out[i], _ = r.(T)
	}
	return out
}

// LockedReader serializes reads from an underlying io.Reader, so that a single
// source of randomness can be shared by all workers of a Pool.
type LockedReader struct {
	reader io.Reader
	m      sync.Mutex
}

// NewLockedReader wraps r.
func NewLockedReader(r io.Reader) *LockedReader {
	return &LockedReader{reader: r}
}

// Read implements io.Reader.
func (r *LockedReader) Read(p []byte) (int, error) {
	r.m.Lock()
	defer r.m.Unlock()
	return r.reader.Read(p)
}

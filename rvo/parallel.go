package rvo

import (
	"runtime"
	"sync"
)

// SetNumWorkers bounds the goroutines used by DoStep's per-agent phases.
// Values <= 0 restore the default of runtime.NumCPU().
func (s *Simulator) SetNumWorkers(workers int) {
	s.workers = workers
}

// parallelForEachAgent runs work over every agent, fanned out in
// contiguous chunks over worker goroutines, and waits for completion.
// Each call is a barrier; work must only write state owned by its agent.
func (s *Simulator) parallelForEachAgent(work func(*agent)) {
	numWorkers := s.workers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	if numWorkers > len(s.agents) {
		numWorkers = len(s.agents)
	}

	if numWorkers <= 1 {
		for _, ag := range s.agents {
			work(ag)
		}

		return
	}

	var wg sync.WaitGroup

	chunk := (len(s.agents) + numWorkers - 1) / numWorkers

	for start := 0; start < len(s.agents); start += chunk {
		end := start + chunk
		if end > len(s.agents) {
			end = len(s.agents)
		}

		wg.Add(1)

		go func(agents []*agent) {
			defer wg.Done()

			for _, ag := range agents {
				work(ag)
			}
		}(s.agents[start:end])
	}

	wg.Wait()
}

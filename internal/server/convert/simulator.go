// Package convert simulates the PDF-to-Excel conversion. No document is ever
// parsed: page counts are fabricated from the file descriptor, results are
// synthesized workbooks, and a fixed delay stands in for processing time.
package convert

import (
	"hash/fnv"
	"time"
)

const StatusPending = "pending"

// FileDescriptor is what the view layer knows about an upload before
// conversion: its name and byte size.
type FileDescriptor struct {
	Name string
	Size int64
}

// Estimate is the simulator's verdict for one file.
type Estimate struct {
	Name   string
	Size   int64
	Pages  int
	Status string
}

type Simulator struct {
	delay    time.Duration
	maxPages int
}

func NewSimulator(delay time.Duration, maxPages int) *Simulator {
	if maxPages < 1 {
		maxPages = 1
	}
	return &Simulator{delay: delay, maxPages: maxPages}
}

// EstimatePages fabricates a page count in [1, maxPages] for a file. The
// count is a pure function of the descriptor so repeated estimates for the
// same upload agree.
func (s *Simulator) EstimatePages(f FileDescriptor) int {
	h := fnv.New64a()
	h.Write([]byte(f.Name))
	var size [8]byte
	for i := 0; i < 8; i++ {
		size[i] = byte(f.Size >> (8 * i))
	}
	h.Write(size[:])
	return 1 + int(h.Sum64()%uint64(s.maxPages))
}

// EstimateBatch estimates every file of a batch; all estimates start out
// pending until the simulated delay has elapsed.
func (s *Simulator) EstimateBatch(files []FileDescriptor) []Estimate {
	estimates := make([]Estimate, 0, len(files))
	for _, f := range files {
		estimates = append(estimates, Estimate{
			Name:   f.Name,
			Size:   f.Size,
			Pages:  s.EstimatePages(f),
			Status: StatusPending,
		})
	}
	return estimates
}

// Wait blocks for the simulated conversion latency. There is deliberately no
// abort path: once a conversion is triggered it always completes and applies
// its ledger effect.
func (s *Simulator) Wait() {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
}

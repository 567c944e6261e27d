package bench

import (
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/marmos91/nfsclient/pkg/nfs3"
)

// Config carries everything a workload needs for one run.
type Config struct {
	Server    string
	Export    string
	BlockSize uint32
	Size      uint64
	Threads   int
	Duration  time.Duration
	Stable    nfs3.Stable
	RWRatio   float64 // read fraction of the mixed workload
}

// WorkerState is the per-thread context handed to a workload's run
// function: the thread's own client, the shared scratch directory, and the
// accumulators the runner reads afterwards.
type WorkerState struct {
	Client  *nfs3.Client
	Workdir nfs3.FH
	TID     int
	Stop    *atomic.Bool
	Lat     *Reservoir
	Ops     uint64
	Bytes   uint64
}

// RunFn executes the workload loop on one worker until Stop is set.
type RunFn func(st *WorkerState, cfg *Config) error

// HookFn runs once on the main thread before or after the workers.
type HookFn func(client *nfs3.Client, workdir nfs3.FH, cfg *Config) error

// Workload is a named benchmark access pattern.
type Workload struct {
	Name     string
	Setup    HookFn // pre-creates test files; may be nil
	Run      RunFn
	Teardown HookFn // removes what Setup created; may be nil
}

var workloads = map[string]*Workload{}

func register(w *Workload) {
	workloads[w.Name] = w
}

// Lookup resolves a workload by name.
func Lookup(name string) (*Workload, error) {
	w, ok := workloads[name]
	if !ok {
		return nil, fmt.Errorf("unknown workload %q (have %v)", name, Names())
	}
	return w, nil
}

// Names lists the registered workloads in stable order.
func Names() []string {
	names := make([]string, 0, len(workloads))
	for name := range workloads {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// timed runs op, records its latency, and bumps the accumulators.
func timed(st *WorkerState, nbytes uint64, op func() error) error {
	start := time.Now()
	if err := op(); err != nil {
		return err
	}
	st.Lat.Record(time.Since(start))
	st.Ops++
	st.Bytes += nbytes
	return nil
}

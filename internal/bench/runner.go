package bench

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/marmos91/nfsclient/internal/logger"
	"github.com/marmos91/nfsclient/pkg/mount"
	"github.com/marmos91/nfsclient/pkg/nfs3"
)

// Result aggregates one benchmark run.
type Result struct {
	Workload string
	Threads  int
	Elapsed  time.Duration
	Ops      uint64
	Bytes    uint64
	Lat      LatencyStats
	Errors   []error
}

// OpsPerSecond returns the aggregate operation rate.
func (r *Result) OpsPerSecond() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Ops) / r.Elapsed.Seconds()
}

// Throughput returns the aggregate byte rate per second.
func (r *Result) Throughput() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Bytes) / r.Elapsed.Seconds()
}

// Run executes one workload: it mounts the export, prepares a per-run
// scratch directory, fans out cfg.Threads workers (each with a dedicated
// client and connection), lets them run for cfg.Duration, and tears the
// scratch directory down again.
func Run(cfg *Config, wl *Workload) (*Result, error) {
	root, err := mount.Mnt(cfg.Server, cfg.Export)
	if err != nil {
		return nil, fmt.Errorf("mount %s:%s: %w", cfg.Server, cfg.Export, err)
	}
	defer func() {
		if err := mount.Umnt(cfg.Server, cfg.Export); err != nil {
			logger.Debug("UMNT failed", "error", err)
		}
	}()

	client, err := nfs3.Dial(cfg.Server)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	workdirName := fmt.Sprintf("nfsbench.%d", os.Getpid())
	workdir, err := client.Mkdir(root, workdirName, &nfs3.Sattr{})
	if err != nil {
		return nil, fmt.Errorf("create scratch directory: %w", err)
	}
	defer func() {
		if err := RemoveRecursive(client, root, workdirName); err != nil {
			logger.Warn("scratch directory cleanup failed", "dir", workdirName, "error", err)
		}
	}()

	if wl.Setup != nil {
		logger.Info("preparing workload", "workload", wl.Name)
		if err := wl.Setup(client, workdir, cfg); err != nil {
			return nil, fmt.Errorf("workload setup: %w", err)
		}
	}

	var stop atomic.Bool
	var wg sync.WaitGroup
	states := make([]*WorkerState, cfg.Threads)
	errs := make([]error, cfg.Threads)

	logger.Info("starting workers", "workload", wl.Name, "threads", cfg.Threads, "duration", cfg.Duration)
	start := time.Now()

	for tid := 0; tid < cfg.Threads; tid++ {
		st := &WorkerState{
			Workdir: workdir,
			TID:     tid,
			Stop:    &stop,
			Lat:     NewReservoir(int64(tid) + 1),
		}
		states[tid] = st

		wg.Add(1)
		go func(tid int) {
			defer wg.Done()
			worker, err := nfs3.Dial(cfg.Server)
			if err != nil {
				errs[tid] = err
				return
			}
			defer worker.Close()
			st.Client = worker
			errs[tid] = wl.Run(st, cfg)
		}(tid)
	}

	time.Sleep(cfg.Duration)
	stop.Store(true)
	wg.Wait()
	elapsed := time.Since(start)

	if wl.Teardown != nil {
		if err := wl.Teardown(client, workdir, cfg); err != nil {
			logger.Warn("workload teardown failed", "error", err)
		}
	}

	result := &Result{Workload: wl.Name, Threads: cfg.Threads, Elapsed: elapsed}
	lat := NewReservoir(0)
	for tid, st := range states {
		result.Ops += st.Ops
		result.Bytes += st.Bytes
		lat.Merge(st.Lat)
		if errs[tid] != nil {
			result.Errors = append(result.Errors, fmt.Errorf("worker %d: %w", tid, errs[tid]))
		}
	}
	result.Lat = lat.Stats()

	if len(result.Errors) > 0 {
		return result, fmt.Errorf("%d of %d workers failed: %w", len(result.Errors), cfg.Threads, result.Errors[0])
	}
	return result, nil
}

// RemoveRecursive deletes parent/name and everything below it, walking
// directories with READDIRPLUS so entry types come back without extra
// lookups.
func RemoveRecursive(client *nfs3.Client, parent nfs3.FH, name string) error {
	dir, err := client.Lookup(parent, name)
	if err != nil {
		if nfs3.IsStatus(err, nfs3.NFS3ErrNoEnt) {
			return nil
		}
		return err
	}

	entries, err := client.ReadDirPlus(dir, 4096, 32768)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.Name == "." || e.Name == ".." {
			continue
		}
		if e.Attr != nil && e.Attr.Type == nfs3.NF3DIR {
			if err := RemoveRecursive(client, dir, e.Name); err != nil {
				return err
			}
			continue
		}
		if err := client.Remove(dir, e.Name); err != nil {
			return err
		}
	}
	return client.Rmdir(parent, name)
}

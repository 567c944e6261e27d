package bench

import (
	"fmt"
	"math/rand"

	"github.com/marmos91/nfsclient/pkg/nfs3"
)

// dataFileName is the shared pre-created file read-oriented workloads use.
const dataFileName = "data.bin"

func init() {
	register(&Workload{
		Name:     "seqread",
		Setup:    setupDataFile,
		Run:      runSeqRead,
		Teardown: removeDataFile,
	})
	register(&Workload{
		Name:     "randread",
		Setup:    setupDataFile,
		Run:      runRandRead,
		Teardown: removeDataFile,
	})
	register(&Workload{Name: "seqwrite", Run: runSeqWrite, Teardown: removeWriteFiles})
	register(&Workload{Name: "randwrite", Setup: setupWriteFiles, Run: runRandWrite, Teardown: removeWriteFiles})
	register(&Workload{Name: "meta", Run: runMeta})
	register(&Workload{
		Name:     "mixed",
		Setup:    setupDataFile,
		Run:      runMixed,
		Teardown: removeDataFile,
	})
}

// setupDataFile pre-creates the shared data file of cfg.Size bytes.
func setupDataFile(client *nfs3.Client, workdir nfs3.FH, cfg *Config) error {
	fh, err := client.Create(workdir, dataFileName, nfs3.CreateUnchecked, &nfs3.Sattr{})
	if err != nil {
		return fmt.Errorf("create data file: %w", err)
	}

	block := make([]byte, cfg.BlockSize)
	for i := range block {
		block[i] = byte(i)
	}
	for offset := uint64(0); offset < cfg.Size; offset += uint64(cfg.BlockSize) {
		chunk := block
		if remaining := cfg.Size - offset; remaining < uint64(len(chunk)) {
			chunk = chunk[:remaining]
		}
		if _, err := client.Write(fh, offset, nfs3.Unstable, chunk); err != nil {
			return fmt.Errorf("fill data file at %d: %w", offset, err)
		}
	}
	if _, err := client.Commit(fh, 0, 0); err != nil {
		return fmt.Errorf("commit data file: %w", err)
	}
	return nil
}

func removeDataFile(client *nfs3.Client, workdir nfs3.FH, _ *Config) error {
	return client.Remove(workdir, dataFileName)
}

func writeFileName(tid int) string {
	return fmt.Sprintf("write-%d.bin", tid)
}

// setupWriteFiles pre-creates one target file per thread so random writes
// land inside an allocated range.
func setupWriteFiles(client *nfs3.Client, workdir nfs3.FH, cfg *Config) error {
	for tid := 0; tid < cfg.Threads; tid++ {
		fh, err := client.Create(workdir, writeFileName(tid), nfs3.CreateUnchecked, &nfs3.Sattr{})
		if err != nil {
			return err
		}
		size := cfg.Size
		if err := client.SetAttr(fh, &nfs3.Sattr{Size: &size}, nil); err != nil {
			return err
		}
	}
	return nil
}

func removeWriteFiles(client *nfs3.Client, workdir nfs3.FH, cfg *Config) error {
	for tid := 0; tid < cfg.Threads; tid++ {
		if err := client.Remove(workdir, writeFileName(tid)); err != nil && !nfs3.IsStatus(err, nfs3.NFS3ErrNoEnt) {
			return err
		}
	}
	return nil
}

func runSeqRead(st *WorkerState, cfg *Config) error {
	fh, err := st.Client.Lookup(st.Workdir, dataFileName)
	if err != nil {
		return err
	}

	offset := uint64(0)
	for !st.Stop.Load() {
		if err := timed(st, uint64(cfg.BlockSize), func() error {
			_, err := st.Client.Read(fh, offset, cfg.BlockSize)
			return err
		}); err != nil {
			return err
		}
		offset += uint64(cfg.BlockSize)
		if offset >= cfg.Size {
			offset = 0
		}
	}
	return nil
}

func runRandRead(st *WorkerState, cfg *Config) error {
	fh, err := st.Client.Lookup(st.Workdir, dataFileName)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(int64(st.TID) + 1))
	blocks := cfg.Size / uint64(cfg.BlockSize)
	if blocks == 0 {
		blocks = 1
	}
	for !st.Stop.Load() {
		offset := uint64(rng.Int63n(int64(blocks))) * uint64(cfg.BlockSize)
		if err := timed(st, uint64(cfg.BlockSize), func() error {
			_, err := st.Client.Read(fh, offset, cfg.BlockSize)
			return err
		}); err != nil {
			return err
		}
	}
	return nil
}

func runSeqWrite(st *WorkerState, cfg *Config) error {
	fh, err := st.Client.Create(st.Workdir, writeFileName(st.TID), nfs3.CreateUnchecked, &nfs3.Sattr{})
	if err != nil {
		return err
	}

	block := make([]byte, cfg.BlockSize)
	offset := uint64(0)
	for !st.Stop.Load() {
		if err := timed(st, uint64(cfg.BlockSize), func() error {
			_, err := st.Client.Write(fh, offset, cfg.Stable, block)
			return err
		}); err != nil {
			return err
		}
		offset += uint64(cfg.BlockSize)
		if offset >= cfg.Size {
			offset = 0
		}
	}
	return nil
}

func runRandWrite(st *WorkerState, cfg *Config) error {
	fh, err := st.Client.Lookup(st.Workdir, writeFileName(st.TID))
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(int64(st.TID) + 1))
	block := make([]byte, cfg.BlockSize)
	blocks := cfg.Size / uint64(cfg.BlockSize)
	if blocks == 0 {
		blocks = 1
	}
	for !st.Stop.Load() {
		offset := uint64(rng.Int63n(int64(blocks))) * uint64(cfg.BlockSize)
		if err := timed(st, uint64(cfg.BlockSize), func() error {
			_, err := st.Client.Write(fh, offset, cfg.Stable, block)
			return err
		}); err != nil {
			return err
		}
	}
	return nil
}

// runMeta cycles create / getattr / remove, the metadata-heavy pattern.
func runMeta(st *WorkerState, cfg *Config) error {
	for i := 0; !st.Stop.Load(); i++ {
		name := fmt.Sprintf("meta-%d-%d", st.TID, i)

		var fh nfs3.FH
		if err := timed(st, 0, func() error {
			var err error
			fh, err = st.Client.Create(st.Workdir, name, nfs3.CreateUnchecked, &nfs3.Sattr{})
			return err
		}); err != nil {
			return err
		}
		if err := timed(st, 0, func() error {
			_, err := st.Client.GetAttr(fh)
			return err
		}); err != nil {
			return err
		}
		if err := timed(st, 0, func() error {
			return st.Client.Remove(st.Workdir, name)
		}); err != nil {
			return err
		}
	}
	return nil
}

// runMixed issues reads and writes against the shared data file in the
// configured ratio.
func runMixed(st *WorkerState, cfg *Config) error {
	fh, err := st.Client.Lookup(st.Workdir, dataFileName)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(int64(st.TID) + 1))
	block := make([]byte, cfg.BlockSize)
	blocks := cfg.Size / uint64(cfg.BlockSize)
	if blocks == 0 {
		blocks = 1
	}
	for !st.Stop.Load() {
		offset := uint64(rng.Int63n(int64(blocks))) * uint64(cfg.BlockSize)
		if rng.Float64() < cfg.RWRatio {
			err = timed(st, uint64(cfg.BlockSize), func() error {
				_, err := st.Client.Read(fh, offset, cfg.BlockSize)
				return err
			})
		} else {
			err = timed(st, uint64(cfg.BlockSize), func() error {
				_, err := st.Client.Write(fh, offset, cfg.Stable, block)
				return err
			})
		}
		if err != nil {
			return err
		}
	}
	return nil
}

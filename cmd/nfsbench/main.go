// nfsbench drives synthetic workloads against an NFSv3 export and reports
// throughput and latency percentiles. Every worker thread owns its own
// client and TCP connection.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/nfsclient/internal/bench"
	"github.com/marmos91/nfsclient/internal/bytesize"
	"github.com/marmos91/nfsclient/internal/logger"
	"github.com/marmos91/nfsclient/pkg/config"
	"github.com/marmos91/nfsclient/pkg/nfs3"
)

// Build-time variables injected via ldflags.
var (
	version = "dev"
	commit  = "none"
)

// errBadArgs marks argument errors so main can exit 2 instead of 1.
var errBadArgs = errors.New("bad arguments")

func parseStable(s string) (nfs3.Stable, error) {
	switch strings.ToLower(s) {
	case "unstable":
		return nfs3.Unstable, nil
	case "datasync":
		return nfs3.DataSync, nil
	case "filesync":
		return nfs3.FileSync, nil
	default:
		return 0, fmt.Errorf("%w: unknown stability mode %q", errBadArgs, s)
	}
}

func newRootCommand() *cobra.Command {
	var (
		configPath string
		flagServer string
		flagExport string
		workload   string
		bs         string
		size       string
		threads    int
		duration   int
		stable     string
		rwRatio    float64
		csvPath    string
	)

	root := &cobra.Command{
		Use:           "nfsbench",
		Short:         "Benchmark an NFSv3 export",
		Long:          "nfsbench runs synthetic workloads (" + strings.Join(bench.Names(), ", ") + ") against an NFS export.",
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("%w: %s", errBadArgs, err)
			}

			// Flags override file and environment values.
			if cmd.Flags().Changed("server") {
				cfg.Server = flagServer
			}
			if cmd.Flags().Changed("export") {
				cfg.Export = flagExport
			}
			if cmd.Flags().Changed("workload") {
				cfg.Bench.Workload = workload
			}
			if cmd.Flags().Changed("bs") {
				v, err := bytesize.Parse(bs)
				if err != nil {
					return fmt.Errorf("%w: --bs: %s", errBadArgs, err)
				}
				cfg.Bench.BlockSize = v
			}
			if cmd.Flags().Changed("size") {
				v, err := bytesize.Parse(size)
				if err != nil {
					return fmt.Errorf("%w: --size: %s", errBadArgs, err)
				}
				cfg.Bench.Size = v
			}
			if cmd.Flags().Changed("threads") {
				cfg.Bench.Threads = threads
			}
			if cmd.Flags().Changed("duration") {
				cfg.Bench.Duration = duration
			}
			if cmd.Flags().Changed("stable") {
				cfg.Bench.Stable = stable
			}
			if cmd.Flags().Changed("rw-ratio") {
				cfg.Bench.RWRatio = rwRatio
			}
			if cmd.Flags().Changed("csv") {
				cfg.Bench.CSV = csvPath
			}
			if err := config.Validate(cfg); err != nil {
				return fmt.Errorf("%w: %s", errBadArgs, err)
			}

			if err := logger.Configure(logger.Config{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
				Output: cfg.Logging.Output,
			}); err != nil {
				return fmt.Errorf("%w: %s", errBadArgs, err)
			}

			wl, err := bench.Lookup(cfg.Bench.Workload)
			if err != nil {
				return fmt.Errorf("%w: %s", errBadArgs, err)
			}
			stableMode, err := parseStable(cfg.Bench.Stable)
			if err != nil {
				return err
			}

			runCfg := &bench.Config{
				Server:    cfg.Server,
				Export:    cfg.Export,
				BlockSize: uint32(cfg.Bench.BlockSize.Uint64()),
				Size:      cfg.Bench.Size.Uint64(),
				Threads:   cfg.Bench.Threads,
				Duration:  time.Duration(cfg.Bench.Duration) * time.Second,
				Stable:    stableMode,
				RWRatio:   cfg.Bench.RWRatio,
			}

			result, err := bench.Run(runCfg, wl)
			if err != nil {
				return err
			}

			bench.PrintTable(cmd.OutOrStdout(), result)
			if cfg.Bench.CSV != "" {
				if err := bench.AppendCSV(cfg.Bench.CSV, result); err != nil {
					return err
				}
			}
			return nil
		},
	}

	flags := root.Flags()
	flags.StringVar(&configPath, "config", "", "path to a YAML config file")
	flags.StringVar(&flagServer, "server", "localhost", "NFS server host")
	flags.StringVar(&flagExport, "export", "/", "exported path to benchmark")
	flags.StringVar(&workload, "workload", "seqread", "workload: "+strings.Join(bench.Names(), ", "))
	flags.StringVar(&bs, "bs", "64K", "block size per operation")
	flags.StringVar(&size, "size", "1G", "working-set file size")
	flags.IntVar(&threads, "threads", 1, "concurrent workers, one connection each")
	flags.IntVar(&duration, "duration", 30, "run time in seconds")
	flags.StringVar(&stable, "stable", "unstable", "write stability: unstable, datasync, filesync")
	flags.Float64Var(&rwRatio, "rw-ratio", 0.7, "read fraction for the mixed workload")
	flags.StringVar(&csvPath, "csv", "", "append results to a CSV file")

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %s", errBadArgs, err)
	})

	root.AddCommand(newInitCommand())
	return root
}

func newInitCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a sample config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "nfsbench.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.WriteSample(path, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "nfsbench:", err)
		if errors.Is(err, errBadArgs) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// nfscompliance runs protocol conformance checks against a live NFS server
// through the public client verbs. Subcommands select the protocol
// generation; --filter narrows the checks by substring.
//
// Exit codes: 0 all selected checks passed, 1 any failure, 2 bad arguments.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/nfsclient/internal/compliance"
	"github.com/marmos91/nfsclient/internal/logger"
)

var errBadArgs = errors.New("bad arguments")

// errChecksFailed distinguishes check failures (exit 1) from usage errors.
var errChecksFailed = errors.New("checks failed")

func main() {
	var (
		server string
		export string
		filter string
		level  string
	)

	run := func(cmd *cobra.Command, checks []compliance.Check) error {
		if server == "" {
			return fmt.Errorf("%w: --server is required", errBadArgs)
		}
		if err := logger.Configure(logger.Config{Level: level}); err != nil {
			return fmt.Errorf("%w: %s", errBadArgs, err)
		}
		env := &compliance.Env{Server: server, Export: export}
		if failed := compliance.Run(cmd.OutOrStdout(), env, checks, filter); failed > 0 {
			return fmt.Errorf("%w: %d", errChecksFailed, failed)
		}
		return nil
	}

	root := &cobra.Command{
		Use:           "nfscompliance",
		Short:         "Check an NFS server against the protocol client suites",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&server, "server", os.Getenv("NFS_SERVER"), "NFS server host (default $NFS_SERVER)")
	pf.StringVar(&export, "export", "/", "exported path to test against")
	pf.StringVar(&filter, "filter", "", "run only checks whose name contains this substring")
	pf.StringVar(&level, "log-level", "WARN", "log level: DEBUG, INFO, WARN, ERROR")

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %s", errBadArgs, err)
	})

	root.AddCommand(
		&cobra.Command{
			Use:   "v3",
			Short: "NFSv3 checks (RFC 1813)",
			RunE:  func(cmd *cobra.Command, args []string) error { return run(cmd, compliance.V3Checks()) },
		},
		&cobra.Command{
			Use:   "v4",
			Short: "NFSv4.0 checks (RFC 7530)",
			RunE:  func(cmd *cobra.Command, args []string) error { return run(cmd, compliance.V4Checks()) },
		},
		&cobra.Command{
			Use:   "v41",
			Short: "NFSv4.1 checks (RFC 8881)",
			RunE:  func(cmd *cobra.Command, args []string) error { return run(cmd, compliance.V41Checks()) },
		},
		&cobra.Command{
			Use:   "all",
			Short: "Every check suite",
			RunE: func(cmd *cobra.Command, args []string) error {
				var checks []compliance.Check
				checks = append(checks, compliance.V3Checks()...)
				checks = append(checks, compliance.V4Checks()...)
				checks = append(checks, compliance.V41Checks()...)
				return run(cmd, checks)
			},
		},
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "nfscompliance:", err)
		if errors.Is(err, errBadArgs) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// Package compliance implements the protocol check suites behind the
// nfscompliance tool. Every check talks to a live server exclusively
// through the public client verbs and owns its own connections, so checks
// are independent and order-insensitive.
package compliance

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/marmos91/nfsclient/pkg/mount"
	"github.com/marmos91/nfsclient/pkg/nfs3"
)

// Env carries the target server and export for one suite run.
type Env struct {
	Server string
	Export string
}

// V3 mounts the export and dials a fresh NFSv3 client. The caller closes
// the client.
func (e *Env) V3() (*nfs3.Client, nfs3.FH, error) {
	root, err := mount.Mnt(e.Server, e.Export)
	if err != nil {
		return nil, nil, err
	}
	client, err := nfs3.Dial(e.Server)
	if err != nil {
		return nil, nil, err
	}
	return client, root, nil
}

// ScratchName returns a collision-resistant object name for a check.
func ScratchName(prefix string) string {
	return fmt.Sprintf("%s-%d-%d", prefix, os.Getpid(), time.Now().UnixNano())
}

// Check is one named compliance probe.
type Check struct {
	Name string
	Fn   func(env *Env) error
}

// Outcome records one executed check.
type Outcome struct {
	Name    string
	Err     error
	Elapsed time.Duration
}

// Run executes the checks whose names contain filter (all when empty) and
// renders a result table. It returns the number of failures.
func Run(w io.Writer, env *Env, checks []Check, filter string) int {
	var outcomes []Outcome
	for _, check := range checks {
		if filter != "" && !strings.Contains(check.Name, filter) {
			continue
		}
		start := time.Now()
		err := check.Fn(env)
		outcomes = append(outcomes, Outcome{Name: check.Name, Err: err, Elapsed: time.Since(start)})
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Check", "Result", "Elapsed", "Detail"})
	failed := 0
	for _, o := range outcomes {
		result, detail := "PASS", ""
		if o.Err != nil {
			result = "FAIL"
			detail = o.Err.Error()
			failed++
		}
		table.Append([]string{o.Name, result, o.Elapsed.Round(time.Millisecond).String(), detail})
	}
	table.Render()
	fmt.Fprintf(w, "%d checks, %d failed\n", len(outcomes), failed)
	return failed
}

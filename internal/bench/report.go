package bench

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/marmos91/nfsclient/internal/bytesize"
)

// PrintTable renders the run result as a table.
func PrintTable(w io.Writer, r *Result) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Workload", "Threads", "Elapsed", "Ops", "Ops/s", "Throughput", "p50", "p95", "p99", "Max"})
	table.Append([]string{
		r.Workload,
		fmt.Sprintf("%d", r.Threads),
		r.Elapsed.Round(time.Millisecond).String(),
		fmt.Sprintf("%d", r.Ops),
		fmt.Sprintf("%.1f", r.OpsPerSecond()),
		fmt.Sprintf("%s/s", bytesize.ByteSize(r.Throughput())),
		r.Lat.P50.String(),
		r.Lat.P95.String(),
		r.Lat.P99.String(),
		r.Lat.Max.String(),
	})
	table.Render()
}

// AppendCSV appends the result to path, writing the header when the file is
// new.
func AppendCSV(path string, r *Result) error {
	info, statErr := os.Stat(path)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if statErr != nil || info.Size() == 0 {
		if err := w.Write([]string{
			"timestamp", "workload", "threads", "elapsed_s", "ops", "ops_per_s",
			"bytes", "bytes_per_s", "p50_us", "p95_us", "p99_us", "max_us",
		}); err != nil {
			return err
		}
	}

	row := []string{
		time.Now().UTC().Format(time.RFC3339),
		r.Workload,
		fmt.Sprintf("%d", r.Threads),
		fmt.Sprintf("%.3f", r.Elapsed.Seconds()),
		fmt.Sprintf("%d", r.Ops),
		fmt.Sprintf("%.1f", r.OpsPerSecond()),
		fmt.Sprintf("%d", r.Bytes),
		fmt.Sprintf("%.1f", r.Throughput()),
		fmt.Sprintf("%d", r.Lat.P50.Microseconds()),
		fmt.Sprintf("%d", r.Lat.P95.Microseconds()),
		fmt.Sprintf("%d", r.Lat.P99.Microseconds()),
		fmt.Sprintf("%d", r.Lat.Max.Microseconds()),
	}
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

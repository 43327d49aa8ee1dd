package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/s0up4200/trbridge/api"
	"github.com/s0up4200/trbridge/bridge"
)

// resultError turns a failed outcome into a command error
func resultError[T any](res bridge.Result[T]) error {
	if res.OK() {
		return nil
	}
	_, status := api.OutcomeStatus(res.Outcome)
	if res.Err != nil {
		return fmt.Errorf("%s: %w", status, res.Err)
	}
	return fmt.Errorf("%s", status)
}

// printJSON writes the same envelope the HTTP API returns
func printJSON[T any](w io.Writer, res bridge.Result[T], data any) error {
	_, status := api.OutcomeStatus(res.Outcome)
	if !res.OK() || data == nil {
		data = struct{}{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(api.Envelope{Status: status, Data: data}); err != nil {
		return err
	}
	return resultError(res)
}

func printRecords(w io.Writer, records []bridge.Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No torrents found matching the filter criteria.")
		return
	}

	fmt.Fprintf(w, "\nFound %d torrents:\n", len(records))
	fmt.Fprintln(w, strings.Repeat("━", 92))
	fmt.Fprintf(w, "%-6s %-44s %-18s %7s %10s\n", "ID", "NAME", "STATUS", "DONE", "SIZE")
	fmt.Fprintln(w, strings.Repeat("━", 92))

	for _, r := range records {
		fmt.Fprintf(w, "%-6d %-44s %-18s %6.1f%% %10s\n",
			r.ID, truncate(r.Name, 44), r.Status, r.PercentDone*100, humanBytes(r.SizeWhenDone))
	}
	fmt.Fprintln(w, strings.Repeat("━", 92))
}

func printRecord(w io.Writer, r bridge.Record) {
	fmt.Fprintf(w, "• %s (ID: %d)\n", r.Name, r.ID)
	fmt.Fprintf(w, "  Status: %s\n", r.Status)
	fmt.Fprintf(w, "  Progress: %.1f%%\n", r.PercentDone*100)
	fmt.Fprintf(w, "  Size: %s\n", humanBytes(r.SizeWhenDone))
	if r.RateDownload > 0 {
		fmt.Fprintf(w, "  Download rate: %s/s\n", humanBytes(r.RateDownload))
	}
	if r.DownloadDir != "" {
		fmt.Fprintf(w, "  Directory: %s\n", r.DownloadDir)
	}
}

func truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-3]) + "..."
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

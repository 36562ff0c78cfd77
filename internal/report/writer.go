package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/hamed0406/proxyprobe/internal/config"
	"github.com/hamed0406/proxyprobe/internal/probe"
)

// Columns is the fixed CSV schema, in column order.
var Columns = []string{
	"timestamp_utc",
	"account_id",
	"check_name",
	"url",
	"success",
	"latency_ms",
	"status_code",
	"proxy_used",
	"summary",
	"error",
}

// TimestampLayout renders ISO-8601 with an explicit UTC offset.
const TimestampLayout = "2006-01-02T15:04:05.000000-07:00"

// Writer appends probe outcomes to a CSV file and mirrors each row as a
// human-readable console line.
type Writer struct {
	file    *os.File
	csv     *csv.Writer
	console io.Writer
}

// NewWriter creates (or truncates) the CSV at path, creating parent
// directories as needed, and writes the header row immediately.
func NewWriter(path string, console io.Writer) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	w := &Writer{file: f, csv: csv.NewWriter(f), console: console}
	if err := w.csv.Write(Columns); err != nil {
		f.Close()
		return nil, err
	}
	w.csv.Flush()
	return w, w.csv.Error()
}

// WriteResult appends one row and prints one console line. The timestamp is
// taken once per account and shared across that account's rows.
func (w *Writer) WriteResult(accountID string, check config.Check, out probe.Outcome, ts time.Time) error {
	status := ""
	if out.StatusCode != 0 {
		status = strconv.Itoa(out.StatusCode)
	}
	success := "False"
	if out.Success {
		success = "True"
	}

	row := []string{
		ts.Format(TimestampLayout),
		accountID,
		check.Name,
		check.URL,
		success,
		fmt.Sprintf("%.2f", out.LatencyMS),
		status,
		out.ProxyUsed,
		out.Summary,
		out.Error,
	}
	if err := w.csv.Write(row); err != nil {
		return err
	}
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return err
	}

	verdict := "OK"
	if !out.Success {
		verdict = "FAIL"
	}
	line := fmt.Sprintf("[%s] %-20s %-20s %s %.1fms %s",
		ts.Format(TimestampLayout), accountID, check.Name, verdict, out.LatencyMS, out.ProxyUsed)
	if status != "" {
		line += " status=" + status
	}
	if out.Error != "" {
		line += " err=" + out.Error
	}
	_, err := fmt.Fprintln(w.console, line)
	return err
}

// Close flushes any buffered rows and closes the file.
func (w *Writer) Close() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

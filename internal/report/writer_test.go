package report

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/hamed0406/proxyprobe/internal/config"
	"github.com/hamed0406/proxyprobe/internal/probe"
)

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	return rows
}

func TestWriter_HeaderAndRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	var console bytes.Buffer

	w, err := NewWriter(path, &console)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	check := config.Check{Name: "ipify", URL: "http://127.0.0.1:5001/ip", ExpectJSON: true}
	out := probe.Outcome{
		Success:    true,
		LatencyMS:  12.5,
		StatusCode: 200,
		Summary:    `{"ip": "127.0.0.1"}`,
		ProxyUsed:  probe.ProxyPrimary,
	}
	ts := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	if err := w.WriteResult("acct-1", check, out, ts); err != nil {
		t.Fatalf("WriteResult: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	rows := readRows(t, path)
	if len(rows) != 2 {
		t.Fatalf("want header + 1 row, got %d rows", len(rows))
	}
	if !reflect.DeepEqual(rows[0], Columns) {
		t.Fatalf("header wrong: %v", rows[0])
	}
	want := []string{
		ts.Format(TimestampLayout),
		"acct-1",
		"ipify",
		"http://127.0.0.1:5001/ip",
		"True",
		"12.50",
		"200",
		"primary",
		`{"ip": "127.0.0.1"}`,
		"",
	}
	if !reflect.DeepEqual(rows[1], want) {
		t.Fatalf("row wrong:\nwant %v\ngot  %v", want, rows[1])
	}

	line := console.String()
	if !strings.Contains(line, "acct-1") || !strings.Contains(line, "OK") || !strings.Contains(line, "status=200") {
		t.Fatalf("console line wrong: %q", line)
	}
}

func TestWriter_FailureRowHasEmptyStatusAndError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	var console bytes.Buffer

	w, err := NewWriter(path, &console)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	check := config.Check{Name: "ipify", URL: "http://example.invalid/ip", ExpectJSON: true}
	out := probe.Outcome{
		Success:   false,
		Summary:   "{}",
		ProxyUsed: probe.ProxyBackup,
		Error:     "dial tcp: connection refused",
	}
	if err := w.WriteResult("acct-1", check, out, time.Now().UTC()); err != nil {
		t.Fatalf("WriteResult: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	rows := readRows(t, path)
	row := rows[1]
	if row[4] != "False" {
		t.Fatalf("want success False, got %q", row[4])
	}
	if row[5] != "0.00" {
		t.Fatalf("want zero latency, got %q", row[5])
	}
	if row[6] != "" {
		t.Fatalf("want empty status_code, got %q", row[6])
	}
	if row[7] != "backup" {
		t.Fatalf("want backup label, got %q", row[7])
	}
	if row[9] != "dial tcp: connection refused" {
		t.Fatalf("want error text, got %q", row[9])
	}

	line := console.String()
	if !strings.Contains(line, "FAIL") || !strings.Contains(line, "err=dial tcp") {
		t.Fatalf("console line wrong: %q", line)
	}
	if strings.Contains(line, "status=") {
		t.Fatalf("no status annotation expected for transport failure: %q", line)
	}
}

func TestWriter_CreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "out.csv")
	w, err := NewWriter(path, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("output file missing: %v", err)
	}
}

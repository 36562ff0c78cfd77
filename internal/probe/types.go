package probe

import "github.com/hamed0406/proxyprobe/internal/config"

// Proxy labels recorded on every outcome.
const (
	ProxyPrimary = "primary"
	ProxyBackup  = "backup"
)

// Outcome is the recorded result of one probe attempt.
//
// Fields:
// - StatusCode: HTTP status when a response was received; 0 on transport failure.
// - Summary: always valid JSON; "{}" when no response body was summarized.
// - Raw: truncated body capture; empty on transport failure.
type Outcome struct {
	Success    bool
	LatencyMS  float64
	StatusCode int
	Summary    string
	Raw        string
	ProxyUsed  string
	Error      string
}

// Result pairs an outcome with the check that produced it.
type Result struct {
	Check   config.Check
	Outcome Outcome
}

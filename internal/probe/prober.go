package probe

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/hamed0406/proxyprobe/internal/config"
)

// Prober issues the HTTP probes for one run. Not safe for concurrent use;
// the run loop processes accounts and checks one at a time.
type Prober struct {
	DefaultTimeout time.Duration
}

func NewProber(defaultTimeout time.Duration) *Prober {
	if defaultTimeout <= 0 {
		defaultTimeout = time.Duration(config.DefaultTimeoutSeconds * float64(time.Second))
	}
	return &Prober{DefaultTimeout: defaultTimeout}
}

// ProbeAccount runs every check for one account, in catalog order.
//
// Each check gets at most two attempts: the primary proxy first, then the
// backup proxy only when the primary attempt failed at the transport level
// and a backup is configured. Both attempts are recorded. A non-success HTTP
// status never triggers the backup; the proxy reached the target, so failing
// over would not help.
func (p *Prober) ProbeAccount(ctx context.Context, acct config.Account, checks []config.Check) []Result {
	userAgent := acct.UserAgent
	if userAgent == "" {
		userAgent = config.DefaultUserAgent
	}
	timeout := p.DefaultTimeout
	if acct.TimeoutSeconds > 0 {
		timeout = time.Duration(acct.TimeoutSeconds * float64(time.Second))
	}

	primary := newClient(acct.Proxy, timeout)
	defer primary.CloseIdleConnections()
	var backup *http.Client
	if len(acct.BackupProxy) > 0 {
		backup = newClient(acct.BackupProxy, timeout)
		defer backup.CloseIdleConnections()
	}

	results := make([]Result, 0, len(checks))
	for _, check := range checks {
		client, label := primary, ProxyPrimary
		for attempt := 0; attempt < 2; attempt++ {
			out, transportFailed := p.attempt(ctx, client, label, check, userAgent)
			results = append(results, Result{Check: check, Outcome: out})
			if !transportFailed || backup == nil || attempt > 0 {
				break
			}
			client, label = backup, ProxyBackup
		}
	}
	return results
}

// attempt performs a single GET and reports whether the failure (if any) was
// a transport failure, i.e. eligible for the backup retry.
func (p *Prober) attempt(ctx context.Context, client *http.Client, label string, check config.Check, userAgent string) (Outcome, bool) {
	failed := func(err error) Outcome {
		return Outcome{Summary: emptySummary, ProxyUsed: label, Error: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, check.URL, nil)
	if err != nil {
		return failed(err), true
	}
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return failed(err), true
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return failed(err), true
	}
	latency := time.Since(start).Seconds() * 1000 // ms

	summary, raw := Summarize(check, body)
	out := Outcome{
		Success:    resp.StatusCode >= 200 && resp.StatusCode < 300,
		LatencyMS:  latency,
		StatusCode: resp.StatusCode,
		Summary:    summary,
		Raw:        raw,
		ProxyUsed:  label,
	}
	if !out.Success {
		out.Error = fmt.Sprintf("HTTP %d", resp.StatusCode)
	}
	return out, false
}

// newClient builds an HTTP client routed through the given proxy descriptor.
// The client is reused across all checks for one account so connections are
// pooled within the account.
func newClient(proxies config.ProxyMap, timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy: proxyFunc(proxies),
		DialContext: (&net.Dialer{
			Timeout: timeout,
		}).DialContext,
		TLSHandshakeTimeout: timeout,
	}
	return &http.Client{Transport: transport, Timeout: timeout}
}

// proxyFunc selects the proxy URL by the scheme of each outgoing request.
// Schemes missing from the descriptor connect directly. An unparseable proxy
// URL surfaces as a transport failure on the request that needed it.
func proxyFunc(proxies config.ProxyMap) func(*http.Request) (*url.URL, error) {
	if len(proxies) == 0 {
		return nil
	}
	return func(req *http.Request) (*url.URL, error) {
		raw, ok := proxies[req.URL.Scheme]
		if !ok || raw == "" {
			return nil, nil
		}
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("proxy url for scheme %s: %w", req.URL.Scheme, err)
		}
		return u, nil
	}
}

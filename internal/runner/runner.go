package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/proxyprobe/internal/config"
	"github.com/hamed0406/proxyprobe/internal/probe"
	"github.com/hamed0406/proxyprobe/internal/report"
)

// ErrNoAccounts signals a configuration with an empty accounts list. The
// output file is never created in that case.
var ErrNoAccounts = errors.New("no accounts defined in configuration")

type Runner struct {
	Logger  *zap.Logger
	Console io.Writer
}

func NewRunner(logger *zap.Logger, console io.Writer) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{Logger: logger, Console: console}
}

// Run probes every account against every check, sequentially, writing one
// CSV row per outcome. Individual probe failures are recorded and the run
// continues; only structural errors make Run fail.
func (r *Runner) Run(ctx context.Context, cfg config.Config, outputPath string) (err error) {
	if len(cfg.Accounts) == 0 {
		return ErrNoAccounts
	}
	checks := config.BuildChecks(cfg)

	w, err := report.NewWriter(outputPath, r.Console)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	prober := probe.NewProber(time.Duration(cfg.DefaultTimeoutSeconds * float64(time.Second)))

	for _, acct := range cfg.Accounts {
		accountID := acct.ID
		if accountID == "" {
			accountID = "unknown"
		}
		ts := time.Now().UTC()
		for _, res := range prober.ProbeAccount(ctx, acct, checks) {
			if err := w.WriteResult(accountID, res.Check, res.Outcome, ts); err != nil {
				return err
			}
			r.logOutcome(accountID, res)
		}
	}

	fmt.Fprintf(r.Console, "\nResults written to %s\n", outputPath)
	return nil
}

func (r *Runner) logOutcome(accountID string, res probe.Result) {
	if r.Logger == nil {
		return
	}
	fields := []zap.Field{
		zap.String("account_id", accountID),
		zap.String("check", res.Check.Name),
		zap.String("url", res.Check.URL),
		zap.String("proxy_used", res.Outcome.ProxyUsed),
		zap.Float64("latency_ms", res.Outcome.LatencyMS),
		zap.Int("status", res.Outcome.StatusCode),
	}
	if res.Outcome.Success {
		r.Logger.Info("probe_ok", fields...)
	} else {
		r.Logger.Warn("probe_fail", append(fields, zap.String("error", res.Outcome.Error))...)
	}
}

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/NodePath81/httpbench/internal/config"
	"github.com/NodePath81/httpbench/internal/metrics"
	"github.com/NodePath81/httpbench/internal/probe"
	"github.com/NodePath81/httpbench/internal/report"
	"github.com/NodePath81/httpbench/internal/util"
)

// execute probes every configured host and writes the report. No report is
// written when ctx is cancelled mid-run.
func execute(ctx context.Context, cfg config.Config, requester probe.Requester, stdout io.Writer, logger util.Logger) int {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := metrics.NewMetrics()
	if cfg.MetricsAddr != "" {
		m.Serve(runCtx, cfg.MetricsAddr, logger)
		logger.Info("metrics listening", "addr", cfg.MetricsAddr)
	}
	prober := probe.New(requester,
		probe.WithLogger(logger),
		probe.WithRate(cfg.Rate),
		probe.WithObserver(m),
	)

	n := len(cfg.Hosts)
	fmt.Fprintf(stdout, "Testing %d %s\n", n, util.Plural(n, "server", "servers"))

	results := make([]probe.Result, 0, n)
	for _, host := range cfg.Hosts {
		fmt.Fprintf(stdout, "Testing %s...\n", host)
		res, err := prober.Probe(runCtx, host, cfg.Count)
		if err != nil {
			if ctx.Err() != nil {
				fmt.Fprintln(stdout, "\nTesting interrupted")
			} else {
				logger.Error("probe failed", "host", host, "error", err)
			}
			return 1
		}
		results = append(results, res)
	}

	saved, err := report.Write(cfg.Output, report.Render(results), stdout)
	if err != nil {
		logger.Error("could not save report", "error", err)
		return 0
	}
	if saved {
		fmt.Fprintf(stdout, "Results saved to: %s\n", cfg.Output)
	}
	return 0
}

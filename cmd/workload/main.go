// Command workload runs a YAML workload file: it loads the actor
// blocks, produces each actor from the registered Cast, and drives
// them to completion through the phase barrier, then writes the
// resulting metrics report.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "workloadgen/actors/find"
	_ "workloadgen/actors/insert"

	"workloadgen/actors"
	"workloadgen/internal/config"
	"workloadgen/internal/driver"
	"workloadgen/internal/metrics"
	"workloadgen/internal/phase"
	"workloadgen/internal/store"
	"workloadgen/internal/workload"
)

const (
	ExitSuccess = 0
	ExitError   = 2
)

func main() {
	workloadFile := flag.String("workload-file", "", "path to YAML workload file (required)")
	flag.StringVar(workloadFile, "w", "", "shorthand for --workload-file")
	mongoURI := flag.String("mongo-uri", "mongodb://localhost:27017", "MongoDB connection URI")
	flag.StringVar(mongoURI, "u", "mongodb://localhost:27017", "shorthand for --mongo-uri")
	metricsFormat := flag.String("metrics-format", "csv", "metrics report format: csv, text, json")
	flag.StringVar(metricsFormat, "m", "csv", "shorthand for --metrics-format")
	metricsOutputFile := flag.String("metrics-output-file", "", "path to write the metrics report (default: stdout)")
	flag.StringVar(metricsOutputFile, "o", "", "shorthand for --metrics-output-file")
	listActors := flag.Bool("list-actors", false, "print every registered actor Type and exit")
	flag.Parse()

	if *listActors {
		for _, name := range actors.DefaultCast().Names() {
			fmt.Println(name)
		}
		os.Exit(ExitSuccess)
	}

	// --workload-file/-w is also accepted as a bare positional argument.
	if *workloadFile == "" && flag.NArg() > 0 {
		*workloadFile = flag.Arg(0)
	}
	if *workloadFile == "" {
		fmt.Fprintln(os.Stderr, "error: --workload-file is required")
		flag.Usage()
		os.Exit(ExitError)
	}

	switch *metricsFormat {
	case "csv", "text", "json":
	default:
		fmt.Fprintf(os.Stderr, "error: --metrics-format must be 'csv', 'text', or 'json', got %q\n", *metricsFormat)
		os.Exit(ExitError)
	}

	cfg, err := config.LoadConfig(*workloadFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(ExitError)
	}

	// Unknown actor types are an InvalidConfiguration, caught before any
	// orchestrator or goroutine exists, not discovered lazily once
	// actors start producing.
	registered := make(map[string]bool, len(actors.DefaultCast().Names()))
	for _, name := range actors.DefaultCast().Names() {
		registered[name] = true
	}
	for _, actorCfg := range cfg.Actors {
		if !registered[actorCfg.Type] {
			fmt.Fprintf(os.Stderr, "error: actor %q has unknown Type %q\n", actorCfg.Name, actorCfg.Type)
			os.Exit(ExitError)
		}
	}

	// A real deployment would dial *mongoURI here and hand the
	// resulting driver-backed store.Pool to NewWorkloadContext.
	// workloadgen's core never imports a MongoDB driver (see
	// DESIGN.md); FakePool stands in so every actor still runs.
	pool := store.NewFakePool()

	registry := metrics.NewRegistry()
	orchestrator := phase.NewOrchestrator()

	wc, err := workload.NewWorkloadContext(cfg, registry, orchestrator, pool)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(ExitError)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nreceived interrupt signal, aborting...")
		orchestrator.Abort()
		cancel()
	}()

	prog := metrics.NewProgress(registry, false)
	prog.Printf("running %q: %d actors", *workloadFile, len(wc.Actors()))
	prog.Start()

	result := driver.Run(ctx, wc, func(actorCtx *workload.ActorContext) (driver.Actor, error) {
		return actors.DefaultCast().Produce(actorCtx)
	})

	prog.Stop()
	signal.Stop(sigCh)
	cancel()

	out := os.Stdout
	if *metricsOutputFile != "" && *metricsOutputFile != "-" {
		f, err := os.Create(*metricsOutputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: opening %s: %v\n", *metricsOutputFile, err)
			os.Exit(ExitError)
		}
		defer f.Close()
		out = f
	}

	var thresholdResults *metrics.ThresholdResults
	if cfg.Thresholds != nil {
		thresholdResults = cfg.Thresholds.Check(result.Report)
	}

	switch *metricsFormat {
	case "json":
		if err := metrics.WriteJSON(out, result.Report, thresholdResults); err != nil {
			fmt.Fprintf(os.Stderr, "error: writing metrics: %v\n", err)
			os.Exit(ExitError)
		}
	case "text":
		metrics.WriteText(out, result.Report, thresholdResults)
	default:
		if err := metrics.WriteCSV(out, result.Report); err != nil {
			fmt.Fprintf(os.Stderr, "error: writing metrics: %v\n", err)
			os.Exit(ExitError)
		}
	}

	if len(result.Errs) > 0 {
		for _, actorErr := range result.Errs {
			fmt.Fprintf(os.Stderr, "error: %v\n", actorErr)
		}
		os.Exit(ExitError)
	}

	os.Exit(ExitSuccess)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/hupe1980/nodefinder"
	"github.com/hupe1980/nodefinder/prommetrics"
)

type runFlags struct {
	config        string
	saveFile      string
	load          bool
	loadQuiet     bool
	metricsAddr   string
	s3Bucket      string
	minioEndpoint string
	output        string
}

func newRunCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Search a built-in gap function for nodal points",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSearch(cmd, f)
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.config, "config", "c", "", "YAML run configuration")
	fl.StringVar(&f.saveFile, "save", "", "checkpoint file (overrides save_file)")
	fl.BoolVar(&f.load, "load", false, "resume from the checkpoint")
	fl.BoolVar(&f.loadQuiet, "load-quiet", false, "start fresh when the checkpoint does not exist")
	fl.StringVar(&f.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	fl.StringVar(&f.s3Bucket, "s3-bucket", "", "mirror checkpoints to this S3 bucket")
	fl.StringVar(&f.minioEndpoint, "minio-endpoint", "", "mirror checkpoints to this MinIO endpoint")
	fl.StringVarP(&f.output, "output", "o", "", "write the result to this file")
	return cmd
}

func runSearch(cmd *cobra.Command, f runFlags) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(f.config)
	if err != nil {
		return err
	}
	applyRunFlags(cfg, f)

	gap, err := objective(cfg.Objective, cfg.Nodes)
	if err != nil {
		return err
	}
	opts, err := cfg.options()
	if err != nil {
		return err
	}

	store, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	if store != nil {
		opts = append(opts, nodefinder.WithCheckpointStore(store, cfg.Store.Key))
	}

	if f.metricsAddr != "" {
		reg := prometheus.NewRegistry()
		collector, err := prommetrics.NewCollector(reg)
		if err != nil {
			return err
		}
		opts = append(opts, nodefinder.WithMetricsCollector(collector))

		stop, err := serveMetrics(f.metricsAddr, reg)
		if err != nil {
			return err
		}
		defer stop()
	}

	res, runErr := nodefinder.Run(ctx, gap, opts...)
	if res != nil {
		printNodes(cmd, res)
		if f.output != "" {
			if err := res.Save(f.output); err != nil {
				return errors.Join(runErr, err)
			}
		}
	}
	return runErr
}

func applyRunFlags(cfg *RunConfig, f runFlags) {
	if f.saveFile != "" {
		cfg.SaveFile = f.saveFile
	}
	if f.load || f.loadQuiet {
		cfg.Load = true
		cfg.LoadQuiet = f.loadQuiet
	}
	if f.s3Bucket != "" {
		cfg.Store.Type = "s3"
		cfg.Store.Bucket = f.s3Bucket
	}
	if f.minioEndpoint != "" {
		cfg.Store.Type = "minio"
		cfg.Store.Endpoint = f.minioEndpoint
	}
}

func printNodes(cmd *cobra.Command, res *nodefinder.Result) {
	out := cmd.OutOrStdout()
	nodes := res.Nodes()
	fmt.Fprintf(out, "%d nodes, %d rejected minimizations, %d evaluations\n",
		len(nodes), len(res.Rejected()), res.Evaluations())
	for _, n := range nodes {
		fmt.Fprintf(out, "%v\t%g\n", n.Pos, n.Value)
	}
}

// serveMetrics starts the metrics endpoint and returns a function that
// shuts it down.
func serveMetrics(addr string, reg *prometheus.Registry) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Serve(ln)
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
		<-done
	}, nil
}

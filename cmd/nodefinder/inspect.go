package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/nodefinder/internal/queue"
	"github.com/hupe1980/nodefinder/internal/results"
	"github.com/hupe1980/nodefinder/internal/search"
	"github.com/hupe1980/nodefinder/persistence"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE",
		Short: "Summarize a checkpoint or result file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return inspect(cmd, args[0])
		},
	}
}

func inspect(cmd *cobra.Command, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	h, doc, err := persistence.Decode(bufio.NewReader(f))
	if err != nil {
		return fmt.Errorf("inspect %s: %w", path, err)
	}
	cs, err := search.CoordinateSystemFromDocument(doc.CoordinateSystem)
	if err != nil {
		return err
	}
	c := results.New(cs, float64(doc.GapThreshold), float64(doc.DistCutoff), doc.MinimizationResults...)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "kind:          %s\n", h.Kind)
	fmt.Fprintf(out, "version:       %d\n", h.Version)
	fmt.Fprintf(out, "run id:        %s\n", h.RunID)
	fmt.Fprintf(out, "codec:         %s\n", h.Codec)
	fmt.Fprintf(out, "compression:   %s\n", h.Compression)
	fmt.Fprintf(out, "domain:        %s\n", cs)
	fmt.Fprintf(out, "gap threshold: %g\n", float64(doc.GapThreshold))
	fmt.Fprintf(out, "dist cutoff:   %g\n", float64(doc.DistCutoff))
	fmt.Fprintf(out, "nodes:         %d\n", c.NumNodes())
	fmt.Fprintf(out, "rejected:      %d\n", c.NumRejected())

	if doc.SimplexQueue != nil {
		counts := map[string]int{}
		for _, e := range doc.SimplexQueue.Objects {
			counts[e.State]++
		}
		fmt.Fprintf(out, "simplices:     %d queued, %d running, %d finished\n",
			counts[queue.Queued.String()], counts[queue.Running.String()], counts[queue.Finished.String()])
	}
	if doc.PositionQueue != nil {
		fmt.Fprintf(out, "positions:     %d queued\n", len(doc.PositionQueue.Objects))
	}
	return nil
}

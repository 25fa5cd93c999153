// Package nodefinder locates the nodal points of a scalar gap function: the
// positions in a bounded, optionally periodic domain where the function
// drops below a small threshold.
//
// The search seeds local minimizations from a regular mesh of simplices,
// records every converged minimum below the gap threshold as a node and
// refines the neighborhood of each new node with a finer mesh. A repulsive
// bias around known nodes steers later minimizations towards unexplored
// regions.
//
// # Quick Start
//
//	gap := func(ctx context.Context, x []float64) (float64, error) {
//	    return math.Hypot(x[0]-0.5, x[1]-0.5), nil
//	}
//	res, err := nodefinder.Run(ctx, gap,
//	    nodefinder.WithLimits(coords.Limit{Lower: 0, Upper: 1}, coords.Limit{Lower: 0, Upper: 1}),
//	    nodefinder.WithInitialMeshSize(3),
//	)
//	for _, node := range res.Nodes() {
//	    fmt.Println(node.Pos, node.Value)
//	}
//
// # Checkpoints
//
// With WithSaveFile the run state is written periodically and atomically.
// A later run with WithLoad resumes from it, re-running minimizations that
// were in flight:
//
//	res, err := nodefinder.Run(ctx, gap,
//	    nodefinder.WithSaveFile("search.nfcp"),
//	    nodefinder.WithLoad(true),
//	)
//
// WithCheckpointStore mirrors every checkpoint to a blob store (local
// directory, S3 or MinIO); loading falls back to the mirror when the save
// file does not exist.
//
// # Concurrency
//
// Up to WithNumMinimizeParallel minimizations run at once, each on its own
// goroutine, so the objective must be safe for concurrent use. The
// resource options cap concurrent evaluations and their rate independently
// of the number of minimizations.
package nodefinder

// Package search implements the node search controller.
//
// The controller owns the run state (the result container and the simplex
// and position queues) and mutates it from a single goroutine. Local
// minimizations run as goroutines, at most NumMinimizeParallel at a time,
// and report back over a channel; the controller ingests each result,
// schedules refinement around newly found nodes and periodically writes a
// checkpoint. Scheduled minimizations always run to completion: a fatal
// error or a cancelled context stops new work, drains the running tasks and
// writes a final checkpoint before returning.
package search

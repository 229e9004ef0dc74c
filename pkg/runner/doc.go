/*
Package runner converts many documents concurrently.

Each input gets its own conversion state, so inputs never share frames or marks.
Results are returned in input order regardless of completion order.

	r := runner.New(conv, runner.WithConcurrency(8))
	results, err := r.Run(ctx, inputs)
*/
package runner

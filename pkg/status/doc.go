/*
Package status collects outcomes into the run summary and reports progress.

	            +-------------+
	            |   Status    |
	            | (Aggregate) |
	            +------+------+
	                   |
	      +------------+------------+
	      |                         |
	+-----+------+            +-----+-----+
	|  Summary   |            | Progress  |
	| (exit code)|            |  (UI/UX)  |
	+------------+            +-----------+

🎯 Purpose:
- Counts attempted, succeeded and failed units
- Keeps failures in the order they were received
- Collects non-fatal warnings (arguments that matched nothing)
- Renders a live progress line while the run is going

🔄 Flow:
 1. The runner hands every Outcome to an operation.Sink
 2. Aggregator.Record and Progress.Record are both sinks
 3. The engine calls Aggregator.Summary once the runner has drained
 4. The command exits with Summary.ExitCode

⚡ Exit status:
  - 0   everything succeeded
  - 1   at least one unit failed
  - 2   nothing failed but some arguments matched nothing
  - 130 the run was canceled

🤝 Interfaces:
  - Formatter: turns outcomes, progress snapshots and summaries into text
  - operation.Sink: implemented by Aggregator and Progress

📝 Failure explanations:
A directory that could not be removed because a child survived is reported
as not empty. Summary links such failures to the failed children directly
below them (Failure.Blockers), so the user sees why the parent is still there.

🔍 Example:

	agg := status.NewAggregator()
	prog := status.NewProgress(nil)
	runner := operation.NewRunner(operation.RunnerOptions{Sink: operation.Sinks{agg, prog}})

	...

	summary := agg.Summary()
	os.Exit(summary.ExitCode())
*/
package status

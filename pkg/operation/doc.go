/*
Package operation schedules and executes per-entry filesystem work.

	+-------------+      +-------------+      +-------------+
	|   Submit    | ---> |   Runner    | ---> |  Executor   |
	| (unit+deps) |      | (pool+deps) |      | (rm / cp)   |
	+-------------+      +------+------+      +-------------+
	                            |
	                     +------+------+
	                     |    Sink     |
	                     | (outcomes)  |
	                     +-------------+

🎯 Purpose:
- Runs one Unit per discovered entry on a fixed pool of workers
- Holds units until their prerequisites have reported
- Turns every accepted unit into exactly one Outcome

🔄 Flow:
 1. The engine submits a unit together with the tasks it must wait for
 2. Eligible units enter a bounded intake queue, held units wait in the dependency map
 3. A worker acquires an execution permit and calls the Executor
 4. The Outcome goes to the Sink, then dependents are released

⚡ Ordering:
- Remove: a directory waits for all of its direct children (post-order)
- Copy: children wait for the directory that creates their destination (pre-order)
- Nothing else is ordered; siblings and unrelated subtrees run in any order

🛑 Failure policy:
- Remove proceeds past failed children; the parent rmdir fails on its own
- Copy abandons dependents of a failed directory with ErrAbandoned
- Cancellation drains: in-flight units finish, everything else reports ErrCanceled
- EMFILE, ENFILE and ENOMEM permanently shrink the execution limit by one

🔍 Example:

	r := operation.NewRunner(operation.RunnerOptions{
		Workers:  8,
		Executor: operation.NewRemoveOperation(operation.Options{Force: true}),
		Sink:     agg,
	})
	r.Start(ctx)
	dir, _ := r.Submit(ctx, operation.Unit{Entry: root, Op: operation.OpRemove}, children...)
	stats := r.Wait()
*/
package operation

// Package pipeline provides a framework for executing scan phases in
// sequence.
//
// One orphan-detection run is a strict pipeline with no feedback:
// index the root directory, scan all ordered record pairs for substring
// containment, classify the unreferenced records, and optionally persist
// the run summary. Each phase is a Step that receives the accumulated
// ScanReport and fills in its own fields; a single linear scan already
// considers every ordered pair, so no repeated rounds are needed.
//
// Design decision: We use a pipeline pattern instead of direct function
// calls because:
//  1. It allows easy addition/removal of steps without modifying core logic
//  2. It provides consistent error handling and logging across steps
//  3. It supports cancellation via context for large trees
//
// The package also supports batch processing of multiple root
// directories with concurrency control using errgroup.
package pipeline

// Package pipeline provides a framework for executing analysis steps in
// sequence.
//
// The pipeline pattern is used to process CRM tables through multiple
// stages: reading, schema validation, field issue detection, duplicate
// detection, and report assembly. Each stage is implemented as a Step that
// receives the current analysis and can extend it.
//
// Design decision: We use a pipeline pattern instead of direct function calls
// because:
// 1. It allows easy addition/removal of steps without modifying core logic
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context for long-running batch runs
// 4. It keeps optional stages (explanation) out of the detection core
//
// The pipeline supports both individual analyses and batch processing with
// concurrency control using errgroup.
package pipeline

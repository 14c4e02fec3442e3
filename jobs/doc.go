// Package jobs runs document conversions over a fixed worker pool.
//
// Documents are split into contiguous page chunks so that large files
// parallelize and progress stays granular. The [Orchestrator] streams
// [ProgressEvent] values while chunks complete and delivers one [Result]
// per document once all of its chunks are assembled back in page order.
// Cancellation is cooperative: in-flight pages finish, pending work is
// skipped, and every document still reports its full page count.
package jobs

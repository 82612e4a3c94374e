// Package tasks runs long discover-list operations with real-time progress reporting.
//
// # Bulk Export
//
// [Export] writes one snapshot of the discover list in several formats at once.
// A small worker pool renders and writes one file per format, and a manifest
// summarizing every file (or the error that prevented it) is written last.
//
// A failed format does not stop the others. Export only returns an error when
// the output directory or the manifest cannot be written, or ctx is canceled.
//
// # Progress Reporting
//
// Operations accept an optional progress channel. [ProgressUpdate] carries a
// phase, step counters and a display message. Sends use select with default, so
// a slow or absent reader never blocks the work.
package tasks

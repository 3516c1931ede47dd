// Package backfill keeps a live, render-ready view of an agent's import
// jobs synchronized with the backend's push channels.
//
// Three components cooperate. [JobStreamSync] owns the job map for one
// agent, fed by a single job-stream connection (snapshots replace
// wholesale, incremental updates merge field by field).
// [VideoProgressSync] owns per-video live progress, holding exactly one
// subscription per video referenced by a non-terminal job. [Project]
// is a pure function combining both maps into ordered job views. The
// [Coordinator] wires them together, drives subscription
// reconciliation whenever the job map changes, and exposes the
// imperative actions (start, cancel, dismiss) the UI needs.
package backfill

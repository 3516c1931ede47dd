// Package models defines domain entities and persistence interfaces for the podbridge client.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): structs mirroring the backend's wire format
//   - [Agent] : One YouTube-channel-to-podcast automation
//   - [Episode] : A published podcast episode
//   - [Job] : One backfill/import operation with per-video breakdowns
//   - [JobPatch] : A presence-tagged incremental job update
//   - [VideoProgress] : Live per-video processing state
//
// 2. Persistent Entities: locally cached models with full lifecycle management
//   - [PersistedAgent] : Cached agents for offline listing
//   - [PersistedEpisode] : Cached episodes keyed by agent and video
//
// All persistent entities implement the Model interface providing ID handling, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models

// Package repositories implements SQLite persistence for the local cache.
//
// The cache lets episode and agent listings work offline; the backend
// remains authoritative and the cache is refreshed from it on demand.
// Each repository handles CRUD operations with atomic sequence
// generation for stable local ordering. All repositories support soft
// deletes via deleted_at timestamps and exclude deleted records from
// queries by default.
//
// Key Implementations:
//   - [AgentRepository] : cached agent records with slug lookups
//   - [EpisodeRepository] : cached episodes with per-agent queries
//   - [CacheAdapter] : dedup-on-write sync from backend listings
//
// Sequence numbers provide stable, human-readable ordering independent
// of backend IDs and creation timestamps. The [NextSequence] function
// atomically increments per-table sequence counters in dedicated
// sequence tables.
package repositories

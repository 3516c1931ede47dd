// Package services implements clients for the podcast agent backend.
//
// [APIService] is the typed REST client covering agents, episodes,
// media assets, feed URLs, and backfill job control. [Stream] is a
// minimal server-sent-events client used for the backend's two push
// channels: the per-agent backfill job stream and the per-video
// progress streams. The stream client owns reconnection; consumers of
// push data (internal/sync) only interpret payloads.
package services

// Package web implements an HTMX-based web application mirroring the TUI dashboard.
//
// # HTMX Web Application Implementation Plan
//
// # Architecture
//
// The web app replicates the dashboard workflow using server-side rendering
// with HTMX for dynamic updates. Each view corresponds to a template and handler:
//
//  1. Agent List: Server-rendered table with hx-get for episode preview
//  2. Agent Detail: HTMX partial swap showing episodes + import controls
//  3. Import Confirm: Modal picking the since date with hx-post trigger
//  4. Progress Monitor: SSE relay forwarding the coordinator's job views
//  5. Feed Instructions: Final view with the RSS URL and subscribe links
//
// Core Components
//
//   - HTTP Server: net/http server with html/template rendering, reusing server.BasicRouter
//   - Service Integration: Uses the same services.AgentAPI and backfill.Coordinator as the TUI
//   - Session Management: Cookie-based sessions holding the identity-provider token
//   - SSE Relay: Re-streams coordinator snapshots to the browser
//
// Routes
//
//	GET  /                        → Agent list view (requires auth)
//	GET  /auth/login              → OAuth initiation
//	GET  /auth/callback           → OAuth completion
//	GET  /agents/{id}             → Agent detail with episode table
//	POST /agents/{id}/import      → Start backfill, return SSE endpoint
//	GET  /agents/{id}/stream      → SSE relay of projected job views
//	GET  /agents/{id}/feed        → RSS feed instructions
//
// Templates
//
//   - base.html: Layout with navigation, auth status
//   - agents.html: Table with hx-get on rows
//   - episodes.html: Partial template for episode listing
//   - progress.html: SSE consumer rendering unified video rows
//   - feed.html: Feed URL with podcast-app deep links
//
// # State Management
//
// Unlike the TUI's in-memory state, the web app persists state in:
//   - Session cookies: identity-provider tokens
//   - The local SQLite cache: agent and episode listings
//   - In-memory coordinators: one per agent with an open progress stream
//
// # Progress Streaming
//
// Import progress is relayed from the backend:
//  1. POST /agents/{id}/import starts the backfill via the API
//  2. Client opens SSE connection to /agents/{id}/stream
//  3. Handler attaches to the agent's backfill.Coordinator updates channel
//  4. Each update renders the projected job views as an SSE event
//  5. Terminal jobs stay visible until the client posts a dismiss
//
// Authentication Flow
//
//  1. User visits /, redirected to /auth/login if not authenticated
//  2. OAuth dance against the identity provider stores tokens in session
//  3. Session middleware validates tokens on protected routes
//  4. Expired tokens trigger reauthorization flow
//
// Dependencies
//
//   - html/template: Server-side rendering
//   - net/http: HTTP server and SSE relay
//   - gorilla/sessions or similar: Cookie management
//
// # Testing Strategy
//
// Use httptest:
//   - MockAgentAPI from internal/testing for agent/episode data
//   - Scripted stream openers driving the coordinator
//   - Validate HTMX headers and response structure
//   - Test SSE relay formatting
package web

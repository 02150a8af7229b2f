// Package http implements the HTTP handlers for the analysis API.
// It is a thin layer between transport and business logic: handlers
// parse and validate requests, delegate to services, and render
// responses.
//
// A typical request flows through these layers:
//
//	HTTP Request → Chi Router → Middleware → Handler → Service
//	                                             ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// Errors render as the standard error envelope produced by the errors
// package. Analysis failures are not transport errors: the pipeline
// degrades internally and returns an "unavailable" result with HTTP
// success, so only malformed requests and missing resources surface as
// 4xx here.
package http

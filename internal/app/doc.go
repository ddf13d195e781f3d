// Package app wires the rankpulse web service together and manages its
// lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration (defaults, config.yaml, .env, RANKPULSE_* variables)
//	2. Initialize the JSON slog logger and OpenTelemetry providers
//	3. Create business metrics and the runtime sampler
//	4. Build the dashboard and health services
//	5. Set up middleware, handlers and the HTTP server
//
// # Middleware Order
//
//	RequestID → RealIP → OTel → request logging/recovery → SecurityHeaders → CORS
//
// The upload route additionally gets a body size limit, a content type check
// and, when enabled, the rate limiter. /metrics is served outside the traced
// group.
//
// # Shutdown
//
// Run blocks until SIGINT or SIGTERM, or until the listener fails, then
// shuts the server down within Server.ShutdownTimeout and flushes telemetry.
package app

// Package timeouts defines shared timeout constants used across services.
package timeouts

import "time"

// Request caps the time allowed for a single console call to the records API.
const Request = 2 * time.Second

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// ModuleLoad caps how long a lazily loaded console module may take to mount.
const ModuleLoad = 3 * time.Second

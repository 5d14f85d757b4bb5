// Package timeouts defines shared timeout constants used by the notepad
// process so HTTP and storage bounds live in one place.
package timeouts

import "time"

// ReadHeader limits how long the HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Read limits how long the HTTP server spends reading a full request.
const Read = 10 * time.Second

// Write limits how long a handler may take to write its response.
const Write = 15 * time.Second

// Idle bounds keep-alive connections between requests.
const Idle = 60 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// StoragePing caps the startup and health-check database ping.
const StoragePing = 2 * time.Second

// OTelShutdown caps the time spent flushing spans on exit.
const OTelShutdown = 5 * time.Second

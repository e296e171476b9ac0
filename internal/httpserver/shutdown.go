package httpserver

import "time"

// ShutdownTimeout bounds how long in-flight requests may run once shutdown begins.
var ShutdownTimeout = 10 * time.Second

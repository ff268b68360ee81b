package main

import (
	"net/http"
	"time"
)

const timeoutBody = `<!doctype html>
<html lang="en">
<head><title>Timeout | Japan Method</title><link rel="stylesheet" href="/static/main.css"></head>
<body>
<main>
<h1>That took too long</h1>
<p>The page did not load in time. Please try again.</p>
<a class="button" href="">Retry</a>
</main>
</body>
</html>
`

// timeoutHandler responds with a 503 Service Unavailable error when the handler does not meet the deadline.
func timeoutHandler(h http.Handler, defaultTimeout time.Duration) http.Handler {
	// Respond before the server's write timeout closes the connection.
	httpHandlerTimeout := defaultTimeout - 500*time.Millisecond //nolint:mnd // 500ms
	return http.TimeoutHandler(h, httpHandlerTimeout, timeoutBody)
}

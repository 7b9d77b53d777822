// utils/http.go
package utils

import (
	"net/http"
	"time"
)

var httpClient = &http.Client{
	Timeout: 30 * time.Second,
}

// SharedHTTPClient returns the process-wide HTTP client used for calls to
// sibling services.
func SharedHTTPClient() *http.Client {
	return httpClient
}

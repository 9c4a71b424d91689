// Package web contains the network-facing builtin tools: file download,
// search-API wrappers, page readers, and screenshot capture. Each tool is a
// thin wrapper over a third-party HTTP API; expected transport and HTTP
// failures are converted to structured failure payloads at the tool
// boundary.
package web

import (
	retryablehttp "github.com/hashicorp/go-retryablehttp"
)

// newClient builds the HTTP client shared shape for web tools. Retries are
// deliberately disabled: a failed external call is reported once.
func newClient() *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = 0
	client.Logger = nil
	return client
}

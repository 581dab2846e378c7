package llm

import (
	"net/http"

	retryablehttp "github.com/hashicorp/go-retryablehttp"
)

// NewHTTPClient returns an http.Client that retries transient failures.
// Both provider SDKs accept it.
func NewHTTPClient() *http.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.Logger = nil
	return client.StandardClient()
}

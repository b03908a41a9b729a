// Package resilience retries failed operations with exponential backoff.
//
// The API client uses it to retry transport failures and retryable error
// kinds (RateLimited, ExternalService):
//
//	resp, err := resilience.Retry(ctx, cfg, func(attempt int) (*http.Response, error) {
//	    return send(ctx)
//	})
//
// An error exposing RetryAfter() time.Duration overrides the computed delay,
// capped at MaxBackoff.
package resilience

// Package httputil provides HTTP utilities for package feed clients.
//
// # Retry
//
// [Retry] re-runs an operation with exponential backoff when it fails with
// a [RetryableError]. Feed clients wrap transient failures (connection
// errors, 5xx responses) in RetryableError and return everything else
// unwrapped, so 404s and malformed responses fail immediately:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    ...
//	})
//
// [RetryWithBackoff] uses 3 attempts starting at a 1 second delay.
package httputil

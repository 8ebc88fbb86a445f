// Package httputil provides HTTP helpers for clients of external services,
// currently the type inference engine.
//
// # Retry
//
// [Retry] re-runs an operation with exponential backoff while it fails with
// a [RetryableError]:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    defer resp.Body.Close()
//	    return httputil.CheckStatus(resp)
//	})
//
// # Status handling
//
// [CheckStatus] classifies a response: 2xx is success, 429 and 5xx are
// retryable, and everything else is a permanent [StatusError].
package httputil

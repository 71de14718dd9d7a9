// Package resilience retries transient file operations.
//
// Retry re-runs a function with exponential backoff and jitter while the
// error it returns is retryable. By default only AppErrors marked
// Retryable qualify, which for sessionscribe means transient IO errors on
// synced or network-mounted session folders.
//
//	rec, err := resilience.Retry(ctx, resilience.DefaultRetryConfig(), func() (transcript.Recording, error) {
//	    return sessionio.LoadRecording(path)
//	})
package resilience

package api

import "time"

// RetryPolicy controls how a persist attempt is retried when it fails.
// MaxAttempts includes the first attempt. For example:
//
//	MaxAttempts = 1 => no retries (just the initial call)
//	MaxAttempts = 3 => initial call + up to 2 retries
type RetryPolicy struct {
	MaxAttempts int

	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration

	// MaxBackoff caps the per-retry delay. Zero means no cap.
	MaxBackoff time.Duration

	// BackoffMultiplier grows the delay each attempt.
	// Values <= 0 default to 2.0 (standard exponential backoff).
	BackoffMultiplier float64
}

// Delay returns the backoff before retry number 'retry' (1-based).
func (p RetryPolicy) Delay(retry int) time.Duration {
	if retry < 1 || p.InitialBackoff <= 0 {
		return 0
	}
	mult := p.BackoffMultiplier
	if mult <= 0 {
		mult = 2.0
	}
	d := p.InitialBackoff
	for i := 1; i < retry; i++ {
		d = time.Duration(float64(d) * mult)
		if p.MaxBackoff > 0 && d > p.MaxBackoff {
			return p.MaxBackoff
		}
	}
	if p.MaxBackoff > 0 && d > p.MaxBackoff {
		return p.MaxBackoff
	}
	return d
}

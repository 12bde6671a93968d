package exchange

import "time"

// RetransmitConfig controls MRP backoff (spec.md §4.5). It is sourced from
// the startup config (mrp_initial_backoff_ms, mrp_max_retries).
type RetransmitConfig struct {
	InitialBackoff time.Duration
	MaxRetries     int
}

// maxBackoff caps the doubling retransmit interval (spec.md §4.5: "initial
// backoff configurable, doubling, capped"). spec.md §6 exposes no config
// key for the cap itself, so it is a fixed constant here, mirroring
// muxer.go's backoff/maxRetryTime doubling-then-clamp pattern scaled down
// from a WAN reconnect loop to a link-local request/response protocol.
const maxBackoff = 4 * time.Second

// retransmit tracks the single outstanding reliable send for an exchange.
// MRP only ever has one in-flight reliable message per exchange (responses
// are emitted in request order, spec.md §5), so this is a single slot
// rather than a ring of many outstanding sends.
type retransmit struct {
	counter  uint32
	payload  []byte
	attempts int
	deadline time.Time
	backoff  time.Duration
}

func newRetransmit(counter uint32, payload []byte, cfg RetransmitConfig, now time.Time) *retransmit {
	backoff := cfg.InitialBackoff
	if backoff > maxBackoff {
		backoff = maxBackoff
	}
	return &retransmit{
		counter:  counter,
		payload:  payload,
		attempts: 1,
		deadline: now.Add(backoff),
		backoff:  backoff,
	}
}

// due reports whether the retransmit deadline has passed.
func (r *retransmit) due(now time.Time) bool {
	return !now.Before(r.deadline)
}

// advance doubles the backoff and bumps the deadline, returning false once
// MaxRetries attempts have been made (spec.md §4.5: default 3 attempts).
func (r *retransmit) advance(cfg RetransmitConfig, now time.Time) bool {
	if r.attempts >= cfg.MaxRetries {
		return false
	}
	r.attempts++
	if r.backoff *= 2; r.backoff > maxBackoff {
		r.backoff = maxBackoff
	}
	r.deadline = now.Add(r.backoff)
	return true
}

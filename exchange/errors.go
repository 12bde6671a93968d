package exchange

import "errors"

var (
	// ErrNoExchange is returned when a lookup finds no matching exchange.
	ErrNoExchange = errors.New("exchange: no matching exchange")
	// ErrNoSpace is returned when the exchange table has no free slot.
	ErrNoSpace = errors.New("exchange: exchange table full")
	// ErrTimeout is returned when a reliable send exhausts its retries.
	ErrTimeout = errors.New("exchange: retransmit retries exhausted")
)

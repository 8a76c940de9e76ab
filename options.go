package goalpool

import (
	"log/slog"
	"time"
)

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

const (
	// DefaultPollInterval is how often the tracker asks for a receipt.
	DefaultPollInterval = 2 * time.Second

	// DefaultConfirmations is the number of blocks (including the inclusion
	// block) required before a transaction is reported Confirmed.
	DefaultConfirmations = 1

	// DefaultDropThreshold is the number of consecutive polls in which the node
	// does not know the transaction before it is reported dropped.
	DefaultDropThreshold = 3
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// WithGatewayLogger sets the logger used for RPC diagnostics.
func WithGatewayLogger(logger *slog.Logger) GatewayOption {
	return func(g *Gateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithPollInterval sets how often the receipt is polled.
// Non-positive values keep the default.
func WithPollInterval(interval time.Duration) TrackerOption {
	return func(t *Tracker) {
		if interval > 0 {
			t.pollInterval = interval
		}
	}
}

// WithConfirmations sets how many blocks, counting the inclusion block, must
// exist before a receipt is reported Confirmed. Values below 1 are raised to 1.
func WithConfirmations(n uint64) TrackerOption {
	return func(t *Tracker) {
		if n < 1 {
			n = 1
		}
		t.confirmations = n
	}
}

// WithDropThreshold sets how many consecutive polls may find the transaction
// unknown to the node before it is reported dropped.
func WithDropThreshold(polls int) TrackerOption {
	return func(t *Tracker) {
		if polls > 0 {
			t.dropThreshold = polls
		}
	}
}

// WithTrackerLogger sets the logger used for polling diagnostics.
func WithTrackerLogger(logger *slog.Logger) TrackerOption {
	return func(t *Tracker) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithCredential sets the signing credential used for write commands.
func WithCredential(cred *Credential) DispatcherOption {
	return func(d *Dispatcher) {
		d.credential = cred
	}
}

// WithTracker makes write commands await confirmation for up to timeout.
// Without a tracker, writes return as soon as they are submitted.
func WithTracker(tracker Awaiter, timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		d.tracker = tracker
		d.confirmTimeout = timeout
	}
}

// WithReporter sets where command progress and results are printed.
func WithReporter(r *Reporter) DispatcherOption {
	return func(d *Dispatcher) {
		if r != nil {
			d.reporter = r
		}
	}
}

// WithDispatcherLogger sets the logger used for command diagnostics.
func WithDispatcherLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

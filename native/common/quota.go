package common

import (
	"errors"
	"sync"

	"github.com/WillShirley13/testudo-bonds/crypto"
)

var ErrQuotaRequestsExceeded = errors.New("quota requests exceeded")

// Quota bounds how many submissions one signer may make per window. A zero
// MaxRequestsPerWindow disables the limit.
type Quota struct {
	MaxRequestsPerWindow uint32
	WindowSeconds        uint32
}

// Window maps a unix timestamp onto the quota window it falls in.
func (q Quota) Window(now int64) uint64 {
	if now < 0 {
		now = 0
	}
	if q.WindowSeconds == 0 {
		return uint64(now)
	}
	return uint64(now) / uint64(q.WindowSeconds)
}

// QuotaTracker counts submissions per signer within the current window.
// Windows are aligned to the epoch, so every counter resets when the window
// advances.
type QuotaTracker struct {
	quota Quota

	mu     sync.Mutex
	window uint64
	counts map[crypto.Address]uint32
}

func NewQuotaTracker(q Quota) *QuotaTracker {
	return &QuotaTracker{quota: q, counts: make(map[crypto.Address]uint32)}
}

func (t *QuotaTracker) rollLocked(now int64) {
	if w := t.quota.Window(now); w != t.window {
		t.window = w
		t.counts = make(map[crypto.Address]uint32)
	}
}

// Charge records one submission for every distinct signer. When any signer is
// already at its limit nothing is recorded.
func (t *QuotaTracker) Charge(now int64, signers ...crypto.Address) error {
	if t == nil || t.quota.MaxRequestsPerWindow == 0 {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollLocked(now)

	seen := make(map[crypto.Address]struct{}, len(signers))
	for _, signer := range signers {
		if _, dup := seen[signer]; dup {
			continue
		}
		seen[signer] = struct{}{}
		if t.counts[signer] >= t.quota.MaxRequestsPerWindow {
			return ErrQuotaRequestsExceeded
		}
	}
	for signer := range seen {
		t.counts[signer]++
	}
	return nil
}

// Remaining reports how many submissions signer may still make in the window
// containing now.
func (t *QuotaTracker) Remaining(now int64, signer crypto.Address) uint32 {
	if t == nil || t.quota.MaxRequestsPerWindow == 0 {
		return ^uint32(0)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollLocked(now)
	return t.quota.MaxRequestsPerWindow - t.counts[signer]
}

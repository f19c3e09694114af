package common

import (
	"errors"
	"testing"

	"github.com/WillShirley13/testudo-bonds/crypto"
)

func TestQuotaTrackerLimit(t *testing.T) {
	tracker := NewQuotaTracker(Quota{MaxRequestsPerWindow: 2, WindowSeconds: 60})
	alice, bob := crypto.Address{0x01}, crypto.Address{0x02}

	if err := tracker.Charge(60, alice, alice); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := tracker.Remaining(61, alice); got != 1 {
		t.Fatalf("duplicate signers must be charged once, remaining %d", got)
	}
	if err := tracker.Charge(62, alice, bob); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tracker.Charge(63, bob, alice); !errors.Is(err, ErrQuotaRequestsExceeded) {
		t.Fatalf("expected ErrQuotaRequestsExceeded, got %v", err)
	}
	if got := tracker.Remaining(64, bob); got != 1 {
		t.Fatalf("denied charge must not be recorded, remaining %d", got)
	}

	if err := tracker.Charge(120, alice); err != nil {
		t.Fatalf("unexpected error after window rollover: %v", err)
	}
	if got := tracker.Remaining(121, alice); got != 1 {
		t.Fatalf("unexpected remaining after rollover: %d", got)
	}
}

func TestQuotaTrackerDisabled(t *testing.T) {
	tracker := NewQuotaTracker(Quota{})
	for i := 0; i < 10; i++ {
		if err := tracker.Charge(1, crypto.Address{0x01}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	var missing *QuotaTracker
	if err := missing.Charge(1, crypto.Address{0x01}); err != nil {
		t.Fatalf("nil tracker must not limit: %v", err)
	}
}

func TestQuotaWindow(t *testing.T) {
	q := Quota{WindowSeconds: 60}
	if got := q.Window(125); got != 2 {
		t.Fatalf("unexpected window: %d", got)
	}
	if got := (Quota{}).Window(7); got != 7 {
		t.Fatalf("unexpected window without size: %d", got)
	}
}

func TestGuardStaticPauses(t *testing.T) {
	pauses := NewStaticPauses(" Bonds ", "")
	if err := Guard(pauses, "bonds"); !errors.Is(err, ErrModulePaused) {
		t.Fatalf("expected paused, got %v", err)
	}
	if err := Guard(pauses, "token"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Guard(nil, "bonds"); err != nil {
		t.Fatalf("nil view must not pause: %v", err)
	}
}

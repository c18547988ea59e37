package ratelimit

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestFixedWindowLimiterCapsPerUser(t *testing.T) {
	redisSrv := miniredis.RunT(t)
	limiter, err := New(redisSrv.Addr(), "", 2, time.Second)
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	if !limiter.Allow(1) {
		t.Fatalf("first attempt should pass")
	}
	if !limiter.Allow(1) {
		t.Fatalf("second attempt should pass")
	}
	if limiter.Allow(1) {
		t.Fatalf("third attempt should be blocked")
	}
	// another user has an independent quota
	if !limiter.Allow(2) {
		t.Fatalf("other user should not be affected")
	}
}

func TestFixedWindowLimiterFailsOpen(t *testing.T) {
	redisSrv := miniredis.RunT(t)
	limiter, err := New(redisSrv.Addr(), "", 1, time.Second)
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	redisSrv.Close()
	if !limiter.Allow(1) {
		t.Fatalf("limiter should fail open when redis is unreachable")
	}
}

func TestFixedWindowLimiterConstructorValidation(t *testing.T) {
	if _, err := New("", "", 1, time.Second); err == nil {
		t.Fatalf("expected error for empty redis addr")
	}
	if _, err := New("localhost:6379", "", 0, time.Second); err == nil {
		t.Fatalf("expected error for zero limit")
	}
	if _, err := New("localhost:6379", "", 1, 0); err == nil {
		t.Fatalf("expected error for zero window")
	}
}

func TestNilLimiterAllowsEverything(t *testing.T) {
	var limiter *FixedWindowLimiter
	if !limiter.Allow(1) {
		t.Fatalf("nil limiter must allow")
	}
}

package handlers

import (
	"sync"
	"testing"
	"time"
)

func TestRateLimiter(t *testing.T) {
	limiter := newRateLimiter()
	ip := "127.0.0.1"

	if !limiter.Allow(ip) {
		t.Errorf("Expected IP to be allowed initially")
	}

	for i := 0; i < maxAttempts-1; i++ {
		limiter.RecordFailure(ip)
	}
	if !limiter.Allow(ip) {
		t.Errorf("Expected IP to be allowed after %d failures", maxAttempts-1)
	}

	limiter.RecordFailure(ip)
	if limiter.Allow(ip) {
		t.Errorf("Expected IP to be blocked after %d failures", maxAttempts)
	}
	if !limiter.Allow("127.0.0.2") {
		t.Errorf("Expected other IPs to stay allowed")
	}

	limiter.Reset(ip)
	if !limiter.Allow(ip) {
		t.Errorf("Expected IP to be allowed after reset")
	}
}

func TestRateLimiterBlockExpires(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter := newRateLimiter()
	limiter.now = func() time.Time { return now }
	ip := "10.0.0.9"

	for i := 0; i < maxAttempts; i++ {
		limiter.RecordFailure(ip)
	}
	if limiter.Allow(ip) {
		t.Fatal("Expected IP to be blocked")
	}

	now = now.Add(blockDuration + time.Second)
	if !limiter.Allow(ip) {
		t.Error("Expected block to expire")
	}
}

func TestRateLimiterWindowRestarts(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter := newRateLimiter()
	limiter.now = func() time.Time { return now }
	ip := "10.0.0.10"

	for i := 0; i < maxAttempts-1; i++ {
		limiter.RecordFailure(ip)
	}
	now = now.Add(windowDuration + time.Minute)
	limiter.RecordFailure(ip)
	if !limiter.Allow(ip) {
		t.Error("Failures from an expired window must not count")
	}
}

func TestRateLimiterParallel(t *testing.T) {
	limiter := newRateLimiter()
	ip := "10.0.0.1"

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			limiter.RecordFailure(ip)
		}()
	}
	wg.Wait()

	if limiter.Allow(ip) {
		t.Errorf("Expected IP to be blocked after concurrent failures")
	}
}

package ratelimit

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"
)

// TestNewLimiter tests the Limiter constructor
func TestNewLimiter(t *testing.T) {
	t.Run("ValidBytesPerSecond", func(t *testing.T) {
		limiter := NewLimiter(1024 * 1024)
		if limiter == nil {
			t.Fatal("NewLimiter() returned nil for valid input")
		}
		if limiter.BytesPerSecond() != 1024*1024 {
			t.Errorf("BytesPerSecond() = %d, want %d", limiter.BytesPerSecond(), 1024*1024)
		}
	})

	t.Run("ZeroBytesPerSecond", func(t *testing.T) {
		if limiter := NewLimiter(0); limiter != nil {
			t.Error("NewLimiter(0) should return nil (no limiting)")
		}
	})

	t.Run("NegativeBytesPerSecond", func(t *testing.T) {
		if limiter := NewLimiter(-100); limiter != nil {
			t.Error("NewLimiter(-100) should return nil (no limiting)")
		}
	})

	t.Run("SmallBytesPerSecond", func(t *testing.T) {
		limiter := NewLimiter(1000)
		if limiter == nil {
			t.Fatal("NewLimiter() returned nil")
		}
		if limiter.burst < minBurst {
			t.Errorf("burst = %d, want at least %d", limiter.burst, minBurst)
		}
	})

	t.Run("NilLimiterReportsZero", func(t *testing.T) {
		var limiter *Limiter
		if limiter.BytesPerSecond() != 0 {
			t.Error("nil limiter should report 0 bytes per second")
		}
	})
}

func TestNewReader(t *testing.T) {
	src := strings.NewReader("data")

	if r := NewReader(context.Background(), src, nil); r != io.Reader(src) {
		t.Error("NewReader() with nil limiter should return the original reader")
	}

	if _, ok := NewReader(context.Background(), src, NewLimiter(1024)).(*Reader); !ok {
		t.Error("NewReader() with a limiter should wrap the reader")
	}
}

func TestReaderRead(t *testing.T) {
	data := bytes.Repeat([]byte("x"), 10*1024)
	reader := NewReader(context.Background(), bytes.NewReader(data), NewLimiter(10*1024*1024))

	got, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("read %d bytes, want %d", len(got), len(data))
	}
}

func TestReaderContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reader := NewReader(ctx, strings.NewReader("data"), NewLimiter(1024))
	buf := make([]byte, 4)
	if _, err := reader.Read(buf); err != context.Canceled {
		t.Errorf("Read() error = %v, want context.Canceled", err)
	}
}

func TestRateLimiting(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping timing test in short mode")
	}

	// The first burst is free, the second one has to wait about a second.
	limit := int64(minBurst)
	data := bytes.Repeat([]byte("y"), int(2*limit))
	reader := NewReader(context.Background(), bytes.NewReader(data), NewLimiter(limit))

	start := time.Now()
	if _, err := io.Copy(io.Discard, reader); err != nil {
		t.Fatalf("Copy() error = %v", err)
	}

	if elapsed := time.Since(start); elapsed < 500*time.Millisecond {
		t.Errorf("transfer took %v, expected rate limiting to slow it down", elapsed)
	}
}

func TestParseBandwidth(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"", 0, false},
		{"100", 100, false},
		{"512K", 512 * 1024, false},
		{"10M", 10 * 1024 * 1024, false},
		{"10MB", 10 * 1024 * 1024, false},
		{"1G", 1024 * 1024 * 1024, false},
		{"1.5k", 1536, false},
		{"2MiB", 2 * 1024 * 1024, false},
		{"fast", 0, true},
		{"-5M", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBandwidth(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseBandwidth(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseBandwidth(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

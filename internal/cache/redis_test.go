package cache

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestDisabledRedisBypasses(t *testing.T) {
	r := NewRedis("", "", zerolog.Nop())
	ctx := context.Background()

	if err := r.SetJSON(ctx, "k", []int{1, 2}, time.Minute); err != nil {
		t.Fatalf("SetJSON() error = %v", err)
	}
	var out []int
	hit, err := r.GetJSON(ctx, "k", &out)
	if err != nil || hit {
		t.Fatalf("expected miss without error, got hit=%v err=%v", hit, err)
	}
	if err := r.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

func TestNilRedisBypasses(t *testing.T) {
	var r *Redis
	var out map[string]string
	if hit, err := r.GetJSON(context.Background(), "k", &out); hit || err != nil {
		t.Fatalf("nil cache must miss, got hit=%v err=%v", hit, err)
	}
}

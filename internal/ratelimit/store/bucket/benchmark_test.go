package bucket

import (
	"context"
	"fmt"
	"testing"
	"time"
)

// BenchmarkAllowN measures single-threaded throughput
func BenchmarkAllowN(b *testing.B) {
	store := NewInMemoryBucketStore()
	ctx := context.Background()

	for b.Loop() {
		_, _ = store.AllowN(ctx, "bench-key", 1, 1000, time.Minute)
	}
}

// BenchmarkAllowN_Parallel measures concurrent throughput on one hot key
func BenchmarkAllowN_Parallel(b *testing.B) {
	store := NewInMemoryBucketStore()
	ctx := context.Background()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = store.AllowN(ctx, "bench-key", 1, 1000, time.Minute)
		}
	})
}

// BenchmarkAllowN_HighCardinality measures performance with many client IPs
func BenchmarkAllowN_HighCardinality(b *testing.B) {
	store := NewInMemoryBucketStore()
	ctx := context.Background()

	for i := 0; b.Loop(); i++ {
		key := fmt.Sprintf("ratelimit:ip:10.0.%d.%d:risk_profile", (i/256)%256, i%256)
		_, _ = store.AllowN(ctx, key, 1, 100, time.Minute)
	}
}

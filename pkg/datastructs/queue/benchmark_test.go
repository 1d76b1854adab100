package queue

import (
	"sync"
	"testing"
)

// ===========================================================================
// Benchmark Configuration
// ===========================================================================

// queueBenchConfig holds benchmark test configuration.
type queueBenchConfig struct {
	name     string
	capacity int
}

// benchConfigs defines the data sizes for benchmarking.
var benchConfigs = []queueBenchConfig{
	{"Small/Cap64", 64},
	{"Medium/Cap1K", 1024},
	{"Large/Cap64K", 64 * 1024},
}

// ===========================================================================
// Queue Factory Registry
// ===========================================================================

// queueFactory creates a Blocking[int] with the given capacity.
type queueFactory func(capacity int) Blocking[int]

// queueImplementations holds all registered queue implementations.
var queueImplementations = map[string]queueFactory{
	"Synchronized": func(capacity int) Blocking[int] { return NewSynchronized[int](capacity) },
}

// ===========================================================================
// Single-Threaded Benchmarks
// ===========================================================================

// BenchmarkPush measures Push performance, including eviction once full.
func BenchmarkPush(b *testing.B) {
	for implName, factory := range queueImplementations {
		for _, cfg := range benchConfigs {
			b.Run(implName+"/"+cfg.name, func(b *testing.B) {
				q := factory(cfg.capacity)
				b.ResetTimer()
				b.ReportAllocs()
				for i := 0; i < b.N; i++ {
					q.Push(i)
				}
			})
		}
	}
}

// BenchmarkTryPop measures TryPop performance.
func BenchmarkTryPop(b *testing.B) {
	for implName, factory := range queueImplementations {
		for _, cfg := range benchConfigs {
			b.Run(implName+"/"+cfg.name, func(b *testing.B) {
				q := factory(cfg.capacity)
				for i := 0; i < cfg.capacity; i++ {
					q.Push(i)
				}

				b.ResetTimer()
				b.ReportAllocs()
				for i := 0; i < b.N; i++ {
					if _, ok := q.TryPop(); !ok {
						b.StopTimer()
						for j := 0; j < cfg.capacity; j++ {
							q.Push(j)
						}
						b.StartTimer()
					}
				}
			})
		}
	}
}

// BenchmarkPushPop measures a Push followed by a non-parking Pop.
func BenchmarkPushPop(b *testing.B) {
	for implName, factory := range queueImplementations {
		b.Run(implName, func(b *testing.B) {
			q := factory(1024)
			b.ResetTimer()
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				q.Push(i)
				q.Pop()
			}
		})
	}
}

// ===========================================================================
// Concurrent Benchmarks
// ===========================================================================

// concurrencyConfigs defines producer/consumer count combinations.
var concurrencyConfigs = []struct {
	name      string
	producers int
	consumers int
}{
	{"1P1C", 1, 1},
	{"2P2C", 2, 2},
	{"4P4C", 4, 4},
	{"8P8C", 8, 8},
}

// BenchmarkConcurrent_PushPop measures producer/consumer hand-off with
// consumers parked in Pop until Close.
func BenchmarkConcurrent_PushPop(b *testing.B) {
	const capacity = 1024
	const opsPerProducer = 10000

	for implName, factory := range queueImplementations {
		for _, cc := range concurrencyConfigs {
			b.Run(implName+"/"+cc.name, func(b *testing.B) {
				for n := 0; n < b.N; n++ {
					q := factory(capacity)

					var consumers sync.WaitGroup
					consumers.Add(cc.consumers)
					for c := 0; c < cc.consumers; c++ {
						go func() {
							defer consumers.Done()
							for {
								if _, ok := q.Pop(); !ok {
									return
								}
							}
						}()
					}

					var producers sync.WaitGroup
					producers.Add(cc.producers)
					for p := 0; p < cc.producers; p++ {
						go func(id int) {
							defer producers.Done()
							for i := 0; i < opsPerProducer; i++ {
								q.Push(id*opsPerProducer + i)
							}
						}(p)
					}

					producers.Wait()
					q.Close()
					consumers.Wait()
				}
			})
		}
	}
}

package reduction

import (
	"fmt"
	"testing"

	syclbench "github.com/unisa-hpc/sycl-bench-sub000"
)

func BenchmarkReduction(b *testing.B) {
	q := syclbench.NewQueueOrFail(b)
	input := ones(1<<16, float32(1))
	for _, strategy := range Strategies() {
		for _, g := range []int{64, 256} {
			b.Run(fmt.Sprintf("%s/local=%d", strategy.Name(), g), func(b *testing.B) {
				r, err := NewReduction[float32](Plus[float32]{}, strategy, g)
				if err != nil {
					b.Fatal(err)
				}
				if err := r.Setup(q, input); err != nil {
					b.Fatal(err)
				}
				defer r.Release()
				b.SetBytes(int64(len(input) * 4))
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					if _, err := r.Run(q); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

func BenchmarkSegmentedAtomic(b *testing.B) {
	q := syclbench.NewQueueOrFail(b)
	input := sequence[int32](1 << 16)
	r, err := NewSegmentedAtomicReduction[int32](Plus[int32]{}, 256)
	if err != nil {
		b.Fatal(err)
	}
	if err := r.Setup(q, input); err != nil {
		b.Fatal(err)
	}
	defer r.Release()
	b.SetBytes(int64(len(input) * 4))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := r.Run(q); err != nil {
			b.Fatal(err)
		}
	}
}

package reconcile

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/paulmach/orb"

	"github.com/planbiir/alignfix/internal/address"
	"github.com/planbiir/alignfix/internal/layout"
)

// syntheticAlignment builds a gently curving alignment with one point per
// meter, metadata every 250 m and a switch every kilometer.
func syntheticAlignment(size int) layout.Alignment {
	a := layout.Alignment{ID: fmt.Sprintf("synthetic-%d", size)}
	heading := 0.0
	p := orb.Point{385000, 6672000}
	for i := 0; i < size; i++ {
		a.Points = append(a.Points, p)
		a.Addresses = append(a.Addresses, address.New(i/1000, float64(i%1000)))
		heading += 0.002 * math.Sin(float64(i)/300)
		p = orb.Point{p[0] + math.Cos(heading), p[1] + math.Sin(heading)}
	}
	for start := 0; start+250 < size; start += 250 {
		a.Metadata = append(a.Metadata, layout.ElementMetadata{
			ID:    start/250 + 1,
			Range: address.MustRange(a.Addresses[start], a.Addresses[start+250]),
		})
	}
	for km := 0; km*1000+550 < size; km++ {
		a.SwitchLinks = append(a.SwitchLinks, layout.SwitchLink{
			SwitchID: fmt.Sprintf("sw%d", km),
			Joints: []layout.Joint{
				{Number: 1, Address: address.New(km, 500)},
				{Number: 2, Address: address.New(km, 550)},
			},
		})
	}
	return a
}

func BenchmarkReconcileSizes(b *testing.B) {
	for _, size := range []int{1000, 10000, 50000} {
		b.Run(fmt.Sprintf("%d-points", size), func(b *testing.B) {
			a := syntheticAlignment(size)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				res, err := Reconcile(context.Background(), a, DefaultConfig())
				if err != nil {
					b.Fatal(err)
				}
				if len(res.Segments) == 0 {
					b.Fatal("no segments")
				}
			}
		})
	}
}

func BenchmarkBatch(b *testing.B) {
	alignments := make([]layout.Alignment, 16)
	for i := range alignments {
		alignments[i] = syntheticAlignment(5000)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Batch(context.Background(), alignments, DefaultConfig(), 0); err != nil {
			b.Fatal(err)
		}
	}
}

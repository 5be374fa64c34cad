package merge

import (
	"sort"

	"github.com/planbiir/alignfix/internal/address"
	"github.com/planbiir/alignfix/internal/layout"
)

// StretchSinglePointLinks gives every single-joint switch link an extent
// reaching to the next point address, or back to the previous one when the
// joint sits on the last point. Without it a single-point link covers no
// point pair and vanishes when points are divided into segments.
//
// addresses must be sorted. Links are returned in input order; the inputs
// are not modified.
func StretchSinglePointLinks(links []layout.SwitchLink, addresses []address.Address) ([]layout.SwitchLink, Stats) {
	stats := Stats{}
	out := make([]layout.SwitchLink, len(links))
	copy(out, links)
	if len(addresses) < 2 {
		return out, stats
	}
	last := addresses[len(addresses)-1]

	for i, l := range out {
		if len(l.Joints) == 0 || !l.IsSinglePoint() {
			continue
		}
		at := l.Range().Start

		var extent address.Range
		if at.Equal(last) {
			prev := addresses[len(addresses)-2]
			extent = address.Range{Start: prev, End: at}
		} else {
			next := sort.Search(len(addresses), func(j int) bool { return addresses[j].After(at) })
			if next == len(addresses) {
				continue
			}
			extent = address.Range{Start: at, End: addresses[next]}
		}
		out[i].Extent = &extent
		stats.Stretched++
	}
	return out, stats
}

// SwitchLinkRanges lists the address ranges covered by the links, one per
// joint pair, in link order.
func SwitchLinkRanges(links []layout.SwitchLink) []address.Range {
	var out []address.Range
	for _, l := range links {
		if len(l.Joints) == 0 {
			continue
		}
		out = append(out, l.JointRanges()...)
	}
	return out
}

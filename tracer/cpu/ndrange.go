package cpu

import (
	"sync"
	"sync/atomic"
)

// Default work-group dimensions.
const (
	DefaultTileW uint32 = 8
	DefaultTileH uint32 = 8
)

// A 2D index space of lanes split into LocalW x LocalH work-groups. Lane
// (gx, gy) maps to pixel (gx, OffsetY+gy).
type NDRange struct {
	GlobalW uint32
	GlobalH uint32

	LocalW uint32
	LocalH uint32

	OffsetY uint32
}

// A function executed once per lane. unit identifies the compute unit running
// the lane so per-unit scratch state can be reused across lanes.
type LaneFunc func(unit int, x, y uint32)

func (nd NDRange) localSize() (uint32, uint32) {
	w, h := nd.LocalW, nd.LocalH
	if w == 0 {
		w = DefaultTileW
	}
	if h == 0 {
		h = DefaultTileH
	}
	return w, h
}

// Get the number of work-groups along each axis. Partial groups at the right
// and top edges are counted.
func (nd NDRange) Groups() (uint32, uint32) {
	w, h := nd.localSize()
	return (nd.GlobalW + w - 1) / w, (nd.GlobalH + h - 1) / h
}

// Run all lanes of a work-group. Lanes outside the global range are masked.
func (nd NDRange) runGroup(groupX, groupY uint32, unit int, fn LaneFunc) {
	w, h := nd.localSize()
	for ly := uint32(0); ly < h; ly++ {
		gy := groupY*h + ly
		if gy >= nd.GlobalH {
			return
		}
		for lx := uint32(0); lx < w; lx++ {
			gx := groupX*w + lx
			if gx >= nd.GlobalW {
				break
			}
			fn(unit, gx, nd.OffsetY+gy)
		}
	}
}

// Execute fn for every lane in nd. Work-groups are pulled by computeUnits
// goroutines; the call returns once all lanes have completed.
func Dispatch(nd NDRange, computeUnits int, fn LaneFunc) {
	groupsX, groupsY := nd.Groups()
	total := groupsX * groupsY
	if total == 0 {
		return
	}

	if computeUnits < 1 {
		computeUnits = 1
	}
	if uint32(computeUnits) > total {
		computeUnits = int(total)
	}

	var next atomic.Uint32
	var wg sync.WaitGroup
	wg.Add(computeUnits)
	for unit := 0; unit < computeUnits; unit++ {
		go func(unit int) {
			defer wg.Done()
			for {
				group := next.Add(1) - 1
				if group >= total {
					return
				}
				nd.runGroup(group%groupsX, group/groupsX, unit, fn)
			}
		}(unit)
	}
	wg.Wait()
}

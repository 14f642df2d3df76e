package tracer

import "math"

// The BlockScheduler interface is implemented by all block scheduling algorithms.
type BlockScheduler interface {
	// Split frame into blocks of variable height and assign to the pool
	// of tracers using feedback collected from previous frames.
	//
	// This function returns the block height assignment for each tracer
	// in the input list.
	Schedule(tracers []Tracer, frameH uint32) []uint32
}

// The naive scheduler splits rows according to each tracer's speed estimate.
type naiveScheduler struct{}

// Create a new naive scheduler instance
func NaiveScheduler() BlockScheduler {
	return &naiveScheduler{}
}

func (sch *naiveScheduler) Schedule(tracers []Tracer, frameH uint32) []uint32 {
	weights := make([]float64, len(tracers))
	for idx, tr := range tracers {
		weights[idx] = float64(tr.Speed())
	}
	return distribute(weights, frameH)
}

// The perfect scheduler assumes that the volume of tracing work between two
// subsequent frames is approximately the same.
type perfectScheduler struct {
	blockAssignment []uint32
}

// Create a new perfect scheduler instance
func PerfectScheduler() BlockScheduler {
	return &perfectScheduler{}
}

// Split frame into blocks of variable height and assign to the pool
// of tracers using feedback collected from previous frames.
//
// When previous frame information is available the scheduler uses the
// following formula for estimating the workload for tracer w and frame i+1:
// w_i, f_i+1 = (blockH,w_i / time,w_i) / Σ(blockH_i-1 / time,i-1)
func (sch *perfectScheduler) Schedule(tracers []Tracer, frameH uint32) []uint32 {
	weights := make([]float64, len(tracers))

	// If this is the first time we try to schedule or the number of tracers
	// has changed we need to fall back to the speed estimates
	useStats := len(sch.blockAssignment) == len(tracers)
	for idx, tr := range tracers {
		stats := tr.Stats()
		if !useStats || stats == nil || stats.BlockH == 0 || stats.RenderTime <= 0 {
			useStats = false
			break
		}
		weights[idx] = float64(stats.BlockH) / float64(stats.RenderTime)
	}

	if !useStats {
		for idx, tr := range tracers {
			weights[idx] = float64(tr.Speed())
		}
	}

	sch.blockAssignment = distribute(weights, frameH)
	return sch.blockAssignment
}

// Split frameH rows proportionally to the weights. Every tracer gets at
// least one row when there are enough rows to go around; rows lost to
// rounding are appended to the first tracer.
func distribute(weights []float64, frameH uint32) []uint32 {
	rows := make([]uint32, len(weights))
	if len(weights) == 0 {
		return rows
	}

	var total float64
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		for idx := range weights {
			weights[idx] = 1
		}
		total = float64(len(weights))
	}

	var minRows float64 = 1
	if frameH < uint32(len(weights)) {
		minRows = 0
	}

	scaler := float64(frameH) / total
	var scheduledRows uint32
	for idx, w := range weights {
		rows[idx] = uint32(math.Max(minRows, math.Floor(w*scaler)))
		scheduledRows += rows[idx]
	}

	// Take back rows from the busiest tracers if the minimum row guarantee
	// over-allocated the frame.
	for scheduledRows > frameH {
		busiest := 0
		for idx := range rows {
			if rows[idx] > rows[busiest] {
				busiest = idx
			}
		}
		rows[busiest]--
		scheduledRows--
	}

	// In case rows don't add up to the frame height append the missing ones to the first tracer
	rows[0] += frameH - scheduledRows

	return rows
}

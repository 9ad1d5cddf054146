package kinematics

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-playground/engine/animation"
	"github.com/go-gl/mathgl/mgl64"
)

// MaxInfluences is the largest number of bones that may influence one vertex.
const MaxInfluences = 4

// defaultWeightBatch is the number of vertices handed to one worker task.
const defaultWeightBatch = 1024

// VertexWeights lists the bones influencing one vertex. Unused slots have index -1 and weight 0.
type VertexWeights struct {
	// Bones holds the influencing bone indices, closest first.
	Bones [MaxInfluences]int32

	// Weights holds the normalized influence of each bone. Used slots sum to 1.
	Weights [MaxInfluences]float32
}

// weightOptions holds the configuration for ComputeWeights.
type weightOptions struct {
	pool      worker.DynamicWorkerPool
	batchSize int
}

// WeightsOption is a functional option for ComputeWeights.
type WeightsOption func(o *weightOptions)

// WithWorkerPool fans the per-vertex work out over a worker pool. ComputeWeights still
// returns only after every batch has finished.
//
// Parameters:
//   - pool: the pool that runs the vertex batches
//
// Returns:
//   - WeightsOption: option function to apply
func WithWorkerPool(pool worker.DynamicWorkerPool) WeightsOption {
	return func(o *weightOptions) {
		o.pool = pool
	}
}

// WithBatchSize sets how many vertices one worker task processes.
//
// Parameters:
//   - n: the batch size (values below 1 are ignored)
//
// Returns:
//   - WeightsOption: option function to apply
func WithBatchSize(n int) WeightsOption {
	return func(o *weightOptions) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

// PointSegmentDistance returns the distance from p to the segment between a and b.
//
// Parameters:
//   - p: the query point
//   - a, b: the segment end points
//
// Returns:
//   - float64: the distance
func PointSegmentDistance(p, a, b mgl64.Vec3) float64 {
	ab := b.Sub(a)
	denom := ab.Dot(ab)
	if denom == 0 {
		return p.Sub(a).Len()
	}
	t := mgl64.Clamp(p.Sub(a).Dot(ab)/denom, 0, 1)
	return p.Sub(a.Add(ab.Mul(t))).Len()
}

// ComputeWeights assigns every mesh position to the k bones driving its closest rest-pose
// segments, with inverse-distance weights. A segment runs from the parent joint to the
// bone's joint, so it moves with the parent bone and is bound to the parent. A vertex
// lying on a segment is bound to that segment's bone alone.
//
// Parameters:
//   - skeleton: the skeleton whose rest segments are used
//   - positions: mesh vertex positions, in the same space as the skeleton's rest pose
//   - k: the number of influences per vertex, between 1 and MaxInfluences
//   - options: a variadic list of WeightsOption functions
//
// Returns:
//   - []VertexWeights: one entry per position
//   - error: an error if k is out of range or the skeleton has no segments
func ComputeWeights(skeleton *animation.Skeleton, positions []mgl64.Vec3, k int, options ...WeightsOption) ([]VertexWeights, error) {
	if k < 1 || k > MaxInfluences {
		return nil, fmt.Errorf("compute weights: k must be in [1, %d], got %d", MaxInfluences, k)
	}
	segments := RestSegments(skeleton)
	if len(segments) == 0 {
		return nil, fmt.Errorf("compute weights: skeleton has no bone segments")
	}
	for i, s := range segments {
		segments[i].Bone = skeleton.Bones[s.Bone].ParentIndex
	}

	opts := weightOptions{batchSize: defaultWeightBatch}
	for _, option := range options {
		option(&opts)
	}

	out := make([]VertexWeights, len(positions))
	run := func(lo, hi int) {
		for v := lo; v < hi; v++ {
			out[v] = vertexWeights(positions[v], segments, k)
		}
	}

	if opts.pool == nil {
		run(0, len(positions))
		return out, nil
	}

	var wg sync.WaitGroup
	taskID := 0
	for lo := 0; lo < len(positions); lo += opts.batchSize {
		hi := min(lo+opts.batchSize, len(positions))
		wg.Add(1)
		lo, id := lo, taskID
		taskID++
		opts.pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				run(lo, hi)
				return nil, nil
			},
		})
	}
	wg.Wait()
	return out, nil
}

// vertexWeights computes the influences of one vertex. Segments sharing a bone count once,
// at their smallest distance.
func vertexWeights(p mgl64.Vec3, segments []Segment, k int) VertexWeights {
	type candidate struct {
		bone int
		dist float64
	}
	candidates := make([]candidate, 0, len(segments))
	seen := make(map[int]int, len(segments))
	for _, s := range segments {
		d := PointSegmentDistance(p, s.Start, s.End)
		if j, ok := seen[s.Bone]; ok {
			candidates[j].dist = min(candidates[j].dist, d)
			continue
		}
		seen[s.Bone] = len(candidates)
		candidates = append(candidates, candidate{bone: s.Bone, dist: d})
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].dist < candidates[j].dist })

	var vw VertexWeights
	for i := range vw.Bones {
		vw.Bones[i] = -1
	}
	n := min(k, len(candidates))

	if candidates[0].dist < 1e-9 {
		vw.Bones[0] = int32(candidates[0].bone)
		vw.Weights[0] = 1
		return vw
	}

	total := 0.0
	inv := make([]float64, n)
	for i := 0; i < n; i++ {
		inv[i] = 1 / candidates[i].dist
		total += inv[i]
	}
	for i := 0; i < n; i++ {
		vw.Bones[i] = int32(candidates[i].bone)
		vw.Weights[i] = float32(inv[i] / total)
	}
	if math.IsNaN(total) || math.IsInf(total, 0) {
		vw.Weights = [MaxInfluences]float32{1}
	}
	return vw
}

// Package recommendation extracts normalized CPU/memory recommendations
// from VerticalPodAutoscaler objects. Extraction is a pure function over
// an already-fetched object; it performs no I/O.
package recommendation

import (
	"errors"
	"fmt"

	"k8s.io/apimachinery/pkg/api/resource"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

var (
	// ErrNotAvailable means the VPA has not produced a recommendation yet
	// (or the recommendation section is missing a target). This is an
	// expected state, not a failure.
	ErrNotAvailable = errors.New("recommendation not available")

	// ErrInvalidIndex means the requested container index is out of range
	// for the VPA's containerRecommendations list. The owning resource is
	// misconfigured and will not succeed without a spec change.
	ErrInvalidIndex = errors.New("container index out of range")
)

// Recommendation is a normalized resource recommendation for one container.
// Both values are non-negative; CPU is rounded up to whole millicores.
type Recommendation struct {
	CPUMilli    int64
	MemoryBytes int64
}

// FromVPA extracts the target recommendation for the container at the
// given index from a VerticalPodAutoscaler object.
//
// Missing optional sections (no status, no recommendation, no target,
// unparsable quantities) all map to ErrNotAvailable; only an index out
// of range for a present containerRecommendations list is ErrInvalidIndex.
func FromVPA(vpa *unstructured.Unstructured, containerIndex int) (Recommendation, error) {
	recs, found, err := unstructured.NestedSlice(vpa.Object, "status", "recommendation", "containerRecommendations")
	if err != nil || !found || len(recs) == 0 {
		return Recommendation{}, ErrNotAvailable
	}

	if containerIndex < 0 || containerIndex >= len(recs) {
		return Recommendation{}, fmt.Errorf("%w: index %d, %d container recommendations", ErrInvalidIndex, containerIndex, len(recs))
	}

	entry, ok := recs[containerIndex].(map[string]interface{})
	if !ok {
		return Recommendation{}, ErrNotAvailable
	}
	target, ok := entry["target"].(map[string]interface{})
	if !ok {
		return Recommendation{}, ErrNotAvailable
	}

	cpu, err := quantityOf(target, "cpu")
	if err != nil {
		return Recommendation{}, err
	}
	mem, err := quantityOf(target, "memory")
	if err != nil {
		return Recommendation{}, err
	}

	return Recommendation{
		CPUMilli:    cpu.MilliValue(),
		MemoryBytes: mem.Value(),
	}, nil
}

// quantityOf parses the named quantity from a target map. Absent or
// malformed values are treated as not-yet-available rather than errors.
func quantityOf(target map[string]interface{}, key string) (resource.Quantity, error) {
	raw, ok := target[key].(string)
	if !ok || raw == "" {
		return resource.Quantity{}, ErrNotAvailable
	}
	qty, err := resource.ParseQuantity(raw)
	if err != nil || qty.Sign() < 0 {
		return resource.Quantity{}, ErrNotAvailable
	}
	return qty, nil
}

// Package patch renders recommendations as Kustomize-style JSON-patch
// overlay documents. Rendering is deterministic: identical inputs
// produce byte-identical documents, which lets the Git workspace detect
// "no change" by exact content comparison.
package patch

import (
	"fmt"
	"path"
	"strings"

	"sigs.k8s.io/yaml"

	"vpagitops/api/v1alpha1"
	"vpagitops/pkg/recommendation"
)

const (
	// LimitFactor derives limits from requests. Keeping this a fixed
	// constant makes rendering a pure function of the recommendation.
	LimitFactor = 2

	// mebibyte is the memory rounding unit. Recommendations are rounded
	// up to the next whole MiB before formatting.
	mebibyte = 1024 * 1024
)

// Operation is one JSON-patch operation in the overlay document.
type Operation struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value string `json:"value"`
}

// Render turns a recommendation and a target resource into the ordered
// patch document and its canonical file name.
//
// The document always carries four operations in canonical order:
// requests before limits, cpu before memory. The order is load-bearing
// for stable diffing, not cosmetic.
func Render(rec recommendation.Recommendation, target v1alpha1.TargetResource) ([]Operation, string) {
	cpuReq, memReq := Quantities(rec)
	cpuLimit := fmt.Sprintf("%dm", millicores(rec)*LimitFactor)
	memLimit := fmt.Sprintf("%dMi", mebibytes(rec)*LimitFactor)

	prefix := fmt.Sprintf("/spec/template/spec/containers/%d/resources", target.ContainerIndex)
	doc := []Operation{
		{Op: "add", Path: prefix + "/requests/cpu", Value: cpuReq},
		{Op: "add", Path: prefix + "/requests/memory", Value: memReq},
		{Op: "add", Path: prefix + "/limits/cpu", Value: cpuLimit},
		{Op: "add", Path: prefix + "/limits/memory", Value: memLimit},
	}

	return doc, FileName(target)
}

// Marshal encodes the patch document as YAML. sigs.k8s.io/yaml goes
// through JSON, so key order inside each operation is stable.
func Marshal(doc []Operation) ([]byte, error) {
	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal patch document: %w", err)
	}
	return out, nil
}

// FileName is the canonical patch file name for a target:
// "<name>.<kind lowercased>.yaml".
func FileName(target v1alpha1.TargetResource) string {
	return fmt.Sprintf("%s.%s.yaml", target.Name, strings.ToLower(target.Kind))
}

// RepoPath joins the configured directory prefix with the canonical
// file name, using forward slashes regardless of host OS.
func RepoPath(gitPath string, target v1alpha1.TargetResource) string {
	return path.Join(gitPath, FileName(target))
}

// Quantities renders the request quantities as Kubernetes textual
// quantity strings: CPU in whole millicores, memory in whole MiB
// (both rounded up).
func Quantities(rec recommendation.Recommendation) (cpu, memory string) {
	return fmt.Sprintf("%dm", millicores(rec)), fmt.Sprintf("%dMi", mebibytes(rec))
}

func millicores(rec recommendation.Recommendation) int64 {
	if rec.CPUMilli < 0 {
		return 0
	}
	return rec.CPUMilli
}

func mebibytes(rec recommendation.Recommendation) int64 {
	if rec.MemoryBytes <= 0 {
		return 0
	}
	return (rec.MemoryBytes + mebibyte - 1) / mebibyte
}

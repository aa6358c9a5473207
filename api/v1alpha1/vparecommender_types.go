package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// VPARecommender is the Schema for the vparecommenders API.
// It declares that the target recommendation of one VerticalPodAutoscaler
// should be reconciled into a Kustomize-style patch file in a Git
// repository, staged on a working branch and proposed via a pull request.
//
// The VPARecommender is Namespaced (not Cluster-scoped) to:
//   - Keep credential Secrets in the same namespace as the resource
//   - Avoid RBAC complexity
//   - Prevent cross-tenant leakage of repository access
//
// +kubebuilder:object:root=true
// +kubebuilder:resource:scope=Namespaced
// +kubebuilder:subresource:status
// +kubebuilder:printcolumn:name="VPA",type=string,JSONPath=`.spec.vpaRef.name`
// +kubebuilder:printcolumn:name="Target",type=string,JSONPath=`.spec.targetResource.name`
// +kubebuilder:printcolumn:name="CPU",type=string,JSONPath=`.status.lastRecommendation.cpu`
// +kubebuilder:printcolumn:name="Memory",type=string,JSONPath=`.status.lastRecommendation.memory`
// +kubebuilder:printcolumn:name="PR",type=string,JSONPath=`.status.pullRequest.url`
// +kubebuilder:printcolumn:name="Age",type=date,JSONPath=`.metadata.creationTimestamp`
// +genclient
// +k8s:deepcopy-gen:interfaces=k8s.io/apimachinery/pkg/runtime.Object
type VPARecommender struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   VPARecommenderSpec   `json:"spec,omitempty"`
	Status VPARecommenderStatus `json:"status,omitempty"`
}

// VPARef identifies the source VerticalPodAutoscaler to read
// recommendations from.
type VPARef struct {
	// Name of the VerticalPodAutoscaler object.
	// +kubebuilder:validation:Required
	Name string `json:"name"`

	// Namespace of the VerticalPodAutoscaler object.
	// +kubebuilder:validation:Required
	Namespace string `json:"namespace"`
}

// TargetResource describes the workload the rendered patch applies to.
// The target object itself is never read; it only determines the
// JSON-pointer paths and the patch file name.
type TargetResource struct {
	// Kind of the target workload (e.g. Deployment, StatefulSet).
	// +kubebuilder:validation:Required
	Kind string `json:"kind"`

	// Name of the target workload.
	// +kubebuilder:validation:Required
	Name string `json:"name"`

	// Namespace of the target workload.
	// +kubebuilder:validation:Required
	Namespace string `json:"namespace"`

	// ContainerIndex selects the container whose resources are patched,
	// matching the index into the VPA's containerRecommendations list.
	// +kubebuilder:validation:Minimum=0
	ContainerIndex int `json:"containerIndex,omitempty"`
}

// CredentialRef names a Secret in the VPARecommender's namespace that
// holds a bearer token under the "token" key, valid for both the Git
// remote and the hosting API.
type CredentialRef struct {
	// Name of the Secret.
	// +kubebuilder:validation:Required
	Name string `json:"name"`
}

// VPARecommenderSpec defines the desired state of VPARecommender.
type VPARecommenderSpec struct {
	// VPARef points to the VerticalPodAutoscaler whose target
	// recommendation is rendered into the patch.
	// +kubebuilder:validation:Required
	VPARef VPARef `json:"vpaRef"`

	// GitRepo is the HTTPS clone URL of the repository receiving the
	// patch (e.g. https://github.com/org/infra.git).
	// +kubebuilder:validation:Required
	GitRepo string `json:"gitRepo"`

	// GitPath is the directory inside the repository under which the
	// patch file is written.
	GitPath string `json:"gitPath,omitempty"`

	// BaseBranch is the branch the pull request merges into.
	// +kubebuilder:default=main
	BaseBranch string `json:"baseBranch,omitempty"`

	// TargetResource is the workload the patch applies to.
	// +kubebuilder:validation:Required
	TargetResource TargetResource `json:"targetResource"`

	// CredentialRef names the Secret holding the Git/API token.
	// +kubebuilder:validation:Required
	CredentialRef CredentialRef `json:"credentialRef"`

	// UpdateMode is reserved for future automation. Advisory means the
	// operator only proposes patches via pull requests and never applies
	// them to the cluster.
	// +kubebuilder:validation:Enum=Advisory
	// +kubebuilder:default=Advisory
	UpdateMode string `json:"updateMode,omitempty"`
}

// RecommendationStatus is the last recommendation rendered into a patch,
// as Kubernetes quantity strings.
type RecommendationStatus struct {
	CPU    string `json:"cpu,omitempty"`
	Memory string `json:"memory,omitempty"`
}

// PatchStatus records the last patch file written to the repository.
type PatchStatus struct {
	// Path of the patch file relative to the repository root.
	Path string `json:"path,omitempty"`

	// Target is the patched workload as "<Kind>/<name>".
	Target string `json:"target,omitempty"`

	// Time the patch was last committed.
	Time metav1.Time `json:"time,omitempty"`
}

// PullRequestStatus is a read-through projection of the open pull
// request carrying the working branch. It is re-fetched every
// reconciliation and never authoritative locally.
type PullRequestStatus struct {
	URL       string      `json:"url,omitempty"`
	Number    int         `json:"number,omitempty"`
	CreatedAt metav1.Time `json:"created_at,omitempty"`
	Commits   int         `json:"commits,omitempty"`
}

// Condition is one entry in the append-only condition log. A new entry
// is appended whenever status or reason changes for its type; older
// entries are retained up to a per-type cap.
type Condition struct {
	// Type of the condition: Recommended, Pushed, PullRequestReady.
	Type string `json:"type"`

	// Status is True, False or Unknown.
	Status metav1.ConditionStatus `json:"status"`

	// Reason is a machine-readable cause. Terminal reasons carry a
	// "(not retryable)" marker in the message so operators do not
	// busy-loop on misconfigured resources.
	Reason string `json:"reason"`

	// Message is a human-readable explanation.
	Message string `json:"message,omitempty"`

	// LastTransitionTime is when this entry was appended.
	LastTransitionTime metav1.Time `json:"lastTransitionTime"`
}

// VPARecommenderStatus defines the observed state of VPARecommender.
type VPARecommenderStatus struct {
	// ObservedGeneration is the spec generation last acted upon.
	ObservedGeneration int64 `json:"observedGeneration,omitempty"`

	// LastRecommendation is the recommendation most recently rendered.
	LastRecommendation *RecommendationStatus `json:"lastRecommendation,omitempty"`

	// LastPatch describes the patch file most recently committed.
	LastPatch *PatchStatus `json:"lastPatch,omitempty"`

	// PullRequest describes the open pull request, if any.
	PullRequest *PullRequestStatus `json:"pullRequest,omitempty"`

	// Conditions is the ordered condition log.
	Conditions []Condition `json:"conditions,omitempty"`
}

// VPARecommenderList contains a list of VPARecommender objects.
//
// +kubebuilder:object:root=true
// +k8s:deepcopy-gen:interfaces=k8s.io/apimachinery/pkg/runtime.Object
type VPARecommenderList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []VPARecommender `json:"items"`
}

func init() {
	SchemeBuilder.Register(&VPARecommender{}, &VPARecommenderList{})
}

package controller

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"vpagitops/api/v1alpha1"
)

const (
	// ConditionRecommended tracks whether a recommendation was available
	// and rendered.
	ConditionRecommended = "Recommended"
	// ConditionPushed tracks whether the working branch holds the
	// current patch on the remote.
	ConditionPushed = "Pushed"
	// ConditionPullRequestReady tracks whether an open pull request
	// carries the working branch.
	ConditionPullRequestReady = "PullRequestReady"

	// maxConditionHistory caps the retained entries per condition type.
	maxConditionHistory = 10
)

// Condition reasons, aligned with the error taxonomy.
const (
	ReasonNotAvailable    = "NotAvailable"
	ReasonRendered        = "Rendered"
	ReasonInvalidIndex    = "InvalidIndex"
	ReasonInvalidSpec     = "InvalidSpec"
	ReasonRepoUnreachable = "RepoUnreachable"
	ReasonCommitFailed    = "CommitFailed"
	ReasonBranchConflict  = "BranchConflict"
	ReasonPushRejected    = "PushRejected"
	ReasonHostingAPIError = "HostingAPIError"
	ReasonCredentialError = "CredentialError"
	ReasonCommitted       = "Committed"
	ReasonUpToDate        = "UpToDate"
	ReasonPRCreated       = "PRCreated"
	ReasonPRExists        = "PRExists"
)

// latestCondition returns the newest condition entry of the given type,
// or nil if none was recorded yet.
func latestCondition(st *v1alpha1.VPARecommenderStatus, condType string) *v1alpha1.Condition {
	for i := len(st.Conditions) - 1; i >= 0; i-- {
		if st.Conditions[i].Type == condType {
			return &st.Conditions[i]
		}
	}
	return nil
}

// setCondition appends a new entry to the condition log when status or
// reason changed from the latest entry of the same type, trimming the
// per-type history to maxConditionHistory. Returns true when an entry
// was appended (a transition observers should see).
func setCondition(st *v1alpha1.VPARecommenderStatus, condType string, status metav1.ConditionStatus, reason, message string, now metav1.Time) bool {
	if last := latestCondition(st, condType); last != nil && last.Status == status && last.Reason == reason {
		return false
	}
	st.Conditions = append(st.Conditions, v1alpha1.Condition{
		Type:               condType,
		Status:             status,
		Reason:             reason,
		Message:            message,
		LastTransitionTime: now,
	})
	st.Conditions = trimConditions(st.Conditions, condType)
	return true
}

// trimConditions drops the oldest entries of condType beyond the cap,
// preserving order otherwise.
func trimConditions(conditions []v1alpha1.Condition, condType string) []v1alpha1.Condition {
	count := 0
	for _, c := range conditions {
		if c.Type == condType {
			count++
		}
	}
	if count <= maxConditionHistory {
		return conditions
	}

	drop := count - maxConditionHistory
	trimmed := conditions[:0]
	for _, c := range conditions {
		if c.Type == condType && drop > 0 {
			drop--
			continue
		}
		trimmed = append(trimmed, c)
	}
	return trimmed
}

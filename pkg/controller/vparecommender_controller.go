// Package controller reconciles VPARecommender objects: it reads the
// target recommendation from the referenced VerticalPodAutoscaler,
// renders it as a Kustomize-style patch, commits the patch to a working
// branch in the configured Git repository and ensures an open pull
// request proposes that branch into the base branch.
package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/handler"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"vpagitops/api/v1alpha1"
	"vpagitops/pkg/gitrepo"
	"vpagitops/pkg/patch"
	"vpagitops/pkg/pullrequest"
	"vpagitops/pkg/recommendation"
)

const (
	// WorkingBranch is the fixed branch staging all pending
	// recommendation patches. Every VPARecommender targeting the same
	// repository shares it, each owning a distinct patch file; the
	// workspace pool lock keyed by (repo, branch) makes that safe.
	WorkingBranch = "vpa-recommendations"

	// DefaultBaseBranch is used when the spec leaves baseBranch empty.
	DefaultBaseBranch = "main"

	// SecretTokenKey is the Secret data key holding the Git/API token.
	SecretTokenKey = "token"

	defaultGitTimeout   = 60 * time.Second
	defaultWaitInterval = 5 * time.Minute
)

// VPARecommenderReconciler reconciles VPARecommender objects.
type VPARecommenderReconciler struct {
	client.Client
	Scheme   *runtime.Scheme
	Recorder record.EventRecorder

	// Workspaces serializes Git access per (repository, branch).
	Workspaces *gitrepo.Pool

	// PullRequests builds a hosting API manager for a token. Left nil,
	// the GitHub implementation is used; tests inject fakes.
	PullRequests func(ctx context.Context, token string) pullrequest.Manager

	// GitTimeout bounds every Git and hosting API interaction of one
	// attempt. Zero means a 60s default.
	GitTimeout time.Duration

	// WaitInterval is the requeue delay while the VPA has not produced
	// a recommendation yet. Zero means a 5m default.
	WaitInterval time.Duration
}

var vpaGVK = schema.GroupVersionKind{
	Group:   "autoscaling.k8s.io",
	Version: "v1",
	Kind:    "VerticalPodAutoscaler",
}

// SetupWithManager sets up the controller with the Manager.
func (r *VPARecommenderReconciler) SetupWithManager(mgr ctrl.Manager) error {
	vpaEventHandler := &VPAEventHandler{Client: mgr.GetClient()}
	vpa := &unstructured.Unstructured{}
	vpa.SetGroupVersionKind(vpaGVK)
	return ctrl.NewControllerManagedBy(mgr).
		For(&v1alpha1.VPARecommender{}).
		Watches(
			vpa,
			handler.EnqueueRequestsFromMapFunc(vpaEventHandler.Map),
		).
		Complete(r)
}

// Reconcile runs one end-to-end attempt for a VPARecommender. Every
// attempt re-derives the patch from the current recommendation and
// relies on idempotent rendering and committing to make re-runs safe;
// there is no partial rollback.
func (r *VPARecommenderReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	logger := log.FromContext(ctx)

	vr := &v1alpha1.VPARecommender{}
	if err := r.Get(ctx, req.NamespacedName, vr); err != nil {
		if apierrors.IsNotFound(err) {
			return ctrl.Result{}, nil
		}
		return ctrl.Result{}, fmt.Errorf("get VPARecommender: %w", err)
	}

	if err := validateSpec(vr.Spec); err != nil {
		return r.fail(ctx, vr, ConditionRecommended, ReasonInvalidSpec, err, true)
	}

	token, err := r.credentialToken(ctx, vr)
	if err != nil {
		return r.fail(ctx, vr, ConditionRecommended, ReasonCredentialError, err, terminalCredential(err))
	}

	// Read the recommendation.
	vpa := &unstructured.Unstructured{}
	vpa.SetGroupVersionKind(vpaGVK)
	vpaKey := types.NamespacedName{Namespace: vr.Spec.VPARef.Namespace, Name: vr.Spec.VPARef.Name}
	rec := recommendation.Recommendation{}
	recErr := error(recommendation.ErrNotAvailable)
	if err := r.Get(ctx, vpaKey, vpa); err == nil {
		rec, recErr = recommendation.FromVPA(vpa, vr.Spec.TargetResource.ContainerIndex)
	} else if !apierrors.IsNotFound(err) {
		return ctrl.Result{}, fmt.Errorf("get VPA %s: %w", vpaKey, err)
	}

	switch {
	case errors.Is(recErr, recommendation.ErrNotAvailable):
		return r.waitForRecommendation(ctx, vr, vpaKey)
	case errors.Is(recErr, recommendation.ErrInvalidIndex):
		return r.fail(ctx, vr, ConditionRecommended, ReasonInvalidIndex, recErr, true)
	case recErr != nil:
		return ctrl.Result{}, fmt.Errorf("read recommendation: %w", recErr)
	}

	// Render the patch.
	target := vr.Spec.TargetResource
	doc, _ := patch.Render(rec, target)
	content, err := patch.Marshal(doc)
	if err != nil {
		return ctrl.Result{}, err
	}
	repoPath := patch.RepoPath(vr.Spec.GitPath, target)
	cpuReq, memReq := patch.Quantities(rec)
	targetRef := target.Kind + "/" + target.Name

	now := metav1.Now()
	recommendedTransition := setCondition(&vr.Status, ConditionRecommended, metav1.ConditionTrue, ReasonRendered,
		fmt.Sprintf("Rendered recommendation cpu=%s memory=%s for %s", cpuReq, memReq, targetRef), now)
	vr.Status.LastRecommendation = &v1alpha1.RecommendationStatus{CPU: cpuReq, Memory: memReq}
	recordRecommendation(vr.Namespace, targetRef, rec.CPUMilli, rec.MemoryBytes)

	// Commit and push under the (repo, branch) lock.
	gitCtx, cancel := context.WithTimeout(ctx, r.gitTimeout())
	defer cancel()

	ws, err := r.Workspaces.Acquire(gitCtx, vr.Spec.GitRepo, WorkingBranch, gitrepo.TokenAuth(token))
	if err != nil {
		return r.fail(ctx, vr, ConditionPushed, ReasonRepoUnreachable, err, false)
	}
	defer ws.Close()

	baseBranch := vr.Spec.BaseBranch
	if baseBranch == "" {
		baseBranch = DefaultBaseBranch
	}
	if err := ws.EnsureBranch(baseBranch); err != nil {
		return r.fail(ctx, vr, ConditionPushed, gitReason(err), err, false)
	}

	commitMessage := fmt.Sprintf("Update %s resource requests from VPA recommendation", targetRef)
	changed, err := ws.WriteAndCommit(repoPath, content, commitMessage)
	if err != nil {
		return r.fail(ctx, vr, ConditionPushed, ReasonCommitFailed, err, false)
	}

	if changed {
		if err := ws.Push(gitCtx); err != nil {
			return r.fail(ctx, vr, ConditionPushed, gitReason(err), err, false)
		}
		metricCommitsPushed.Inc()
		vr.Status.LastPatch = &v1alpha1.PatchStatus{Path: repoPath, Target: targetRef, Time: now}
		setCondition(&vr.Status, ConditionPushed, metav1.ConditionTrue, ReasonCommitted,
			fmt.Sprintf("Committed %s to %s", repoPath, WorkingBranch), now)
		logger.Info("Pushed recommendation patch", "path", repoPath, "branch", WorkingBranch)
	} else {
		setCondition(&vr.Status, ConditionPushed, metav1.ConditionTrue, ReasonUpToDate,
			fmt.Sprintf("%s already holds the current recommendation", repoPath), now)
	}

	// Ensure the pull request.
	owner, repoName, err := pullrequest.ParseRepoURL(vr.Spec.GitRepo)
	if err != nil {
		return r.fail(ctx, vr, ConditionPullRequestReady, ReasonInvalidSpec, err, true)
	}

	proposal := pullrequest.Proposal{
		TargetKind:      target.Kind,
		TargetName:      target.Name,
		TargetNamespace: target.Namespace,
		VPAName:         vr.Spec.VPARef.Name,
		VPANamespace:    vr.Spec.VPARef.Namespace,
		CPURequest:      cpuReq,
		MemoryRequest:   memReq,
		CPULimit:        doc[2].Value,
		MemoryLimit:     doc[3].Value,
	}

	prRecord, created, err := r.pullRequestManager(gitCtx, token).Ensure(gitCtx, owner, repoName, WorkingBranch, baseBranch, proposal)
	switch {
	case errors.Is(err, pullrequest.ErrNoChanges):
		// Working branch content already merged; nothing to propose.
		vr.Status.PullRequest = nil
		setCondition(&vr.Status, ConditionPullRequestReady, metav1.ConditionTrue, ReasonUpToDate,
			"No pending changes between working and base branch", now)
	case errors.Is(err, pullrequest.ErrCredential):
		return r.fail(ctx, vr, ConditionPullRequestReady, ReasonCredentialError, err, true)
	case err != nil:
		return r.fail(ctx, vr, ConditionPullRequestReady, ReasonHostingAPIError, err, false)
	default:
		vr.Status.PullRequest = &v1alpha1.PullRequestStatus{
			URL:       prRecord.URL,
			Number:    prRecord.Number,
			CreatedAt: metav1.NewTime(prRecord.CreatedAt),
			Commits:   prRecord.Commits,
		}
		reason, message := ReasonPRExists, fmt.Sprintf("Open pull request #%d carries %s", prRecord.Number, WorkingBranch)
		if created {
			metricPullRequestsCreated.Inc()
			reason, message = ReasonPRCreated, fmt.Sprintf("Created pull request #%d: %s", prRecord.Number, prRecord.URL)
		}
		if setCondition(&vr.Status, ConditionPullRequestReady, metav1.ConditionTrue, reason, message, now) {
			r.Recorder.Event(vr, corev1.EventTypeNormal, reason, message)
		}
	}

	vr.Status.ObservedGeneration = vr.Generation
	if err := r.recordStatus(ctx, vr); err != nil {
		return ctrl.Result{}, err
	}
	if recommendedTransition {
		r.Recorder.Event(vr, corev1.EventTypeNormal, ReasonRendered,
			fmt.Sprintf("Recommendation cpu=%s memory=%s rendered for %s", cpuReq, memReq, targetRef))
	}

	outcome := "up_to_date"
	if changed {
		outcome = "success"
	}
	metricReconcileTotal.WithLabelValues(outcome).Inc()
	return ctrl.Result{}, nil
}

// waitForRecommendation records the expected not-yet-available state
// and schedules a later attempt. No Git or hosting API calls are made.
func (r *VPARecommenderReconciler) waitForRecommendation(ctx context.Context, vr *v1alpha1.VPARecommender, vpaKey types.NamespacedName) (ctrl.Result, error) {
	now := metav1.Now()
	transitioned := setCondition(&vr.Status, ConditionRecommended, metav1.ConditionUnknown, ReasonNotAvailable,
		fmt.Sprintf("Waiting for a recommendation from VPA %s", vpaKey), now)
	vr.Status.ObservedGeneration = vr.Generation
	metricReconcileTotal.WithLabelValues(ReasonNotAvailable).Inc()

	if err := r.recordStatus(ctx, vr); err != nil {
		return ctrl.Result{}, err
	}
	if transitioned {
		r.Recorder.Event(vr, corev1.EventTypeNormal, ReasonNotAvailable,
			fmt.Sprintf("VPA %s has not produced a recommendation yet", vpaKey))
	}
	return ctrl.Result{RequeueAfter: r.waitInterval()}, nil
}

// fail records a failed condition, emits a warning on transition and
// decides retry behavior: terminal failures end the attempt cleanly so
// the controller does not busy-loop on misconfiguration, retryable ones
// return the error for backoff-driven re-attempts.
func (r *VPARecommenderReconciler) fail(ctx context.Context, vr *v1alpha1.VPARecommender, condType, reason string, cause error, terminal bool) (ctrl.Result, error) {
	now := metav1.Now()
	message := cause.Error()
	if terminal {
		message += " (not retryable)"
	}

	transitioned := setCondition(&vr.Status, condType, metav1.ConditionFalse, reason, message, now)
	metricReconcileTotal.WithLabelValues(reason).Inc()

	if err := r.recordStatus(ctx, vr); err != nil {
		return ctrl.Result{}, err
	}
	if transitioned {
		r.Recorder.Event(vr, corev1.EventTypeWarning, reason, message)
	}
	if terminal {
		return ctrl.Result{}, nil
	}
	return ctrl.Result{}, cause
}

// recordStatus writes the status subresource. A NotFound means the
// resource was deleted mid-reconciliation; the outcome is dropped and
// held locks are released by the deferred Close.
func (r *VPARecommenderReconciler) recordStatus(ctx context.Context, vr *v1alpha1.VPARecommender) error {
	if err := r.Status().Update(ctx, vr); err != nil {
		if apierrors.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("update status: %w", err)
	}
	return nil
}

var errMissingToken = fmt.Errorf("missing %q key", SecretTokenKey)

// credentialToken resolves the referenced Secret into a bearer token.
func (r *VPARecommenderReconciler) credentialToken(ctx context.Context, vr *v1alpha1.VPARecommender) (string, error) {
	secret := &corev1.Secret{}
	key := types.NamespacedName{Namespace: vr.Namespace, Name: vr.Spec.CredentialRef.Name}
	if err := r.Get(ctx, key, secret); err != nil {
		return "", fmt.Errorf("get credential secret %s: %w", key, err)
	}
	if len(secret.Data[SecretTokenKey]) == 0 {
		return "", fmt.Errorf("credential secret %s: %w", key, errMissingToken)
	}
	return string(secret.Data[SecretTokenKey]), nil
}

// terminalCredential reports whether a credential failure needs a spec
// or Secret change rather than a retry. A transient apiserver failure
// while reading the Secret stays retryable.
func terminalCredential(err error) bool {
	return apierrors.IsNotFound(err) || errors.Is(err, errMissingToken)
}

func (r *VPARecommenderReconciler) pullRequestManager(ctx context.Context, token string) pullrequest.Manager {
	if r.PullRequests != nil {
		return r.PullRequests(ctx, token)
	}
	return pullrequest.NewGitHub(ctx, token)
}

func (r *VPARecommenderReconciler) gitTimeout() time.Duration {
	if r.GitTimeout > 0 {
		return r.GitTimeout
	}
	return defaultGitTimeout
}

func (r *VPARecommenderReconciler) waitInterval() time.Duration {
	if r.WaitInterval > 0 {
		return r.WaitInterval
	}
	return defaultWaitInterval
}

// gitReason maps workspace errors to condition reasons.
func gitReason(err error) string {
	switch {
	case errors.Is(err, gitrepo.ErrPushRejected):
		return ReasonPushRejected
	case errors.Is(err, gitrepo.ErrBranchConflict):
		return ReasonBranchConflict
	default:
		return ReasonRepoUnreachable
	}
}

// validateSpec rejects misconfigurations that can never succeed without
// a spec change.
func validateSpec(spec v1alpha1.VPARecommenderSpec) error {
	if spec.VPARef.Name == "" || spec.VPARef.Namespace == "" {
		return errors.New("spec.vpaRef requires name and namespace")
	}
	if spec.TargetResource.Kind == "" || spec.TargetResource.Name == "" {
		return errors.New("spec.targetResource requires kind and name")
	}
	if spec.TargetResource.ContainerIndex < 0 {
		return errors.New("spec.targetResource.containerIndex must not be negative")
	}
	if spec.CredentialRef.Name == "" {
		return errors.New("spec.credentialRef.name is required")
	}
	if _, _, err := pullrequest.ParseRepoURL(spec.GitRepo); err != nil {
		return err
	}
	return nil
}

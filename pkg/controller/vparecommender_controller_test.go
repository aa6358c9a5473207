package controller

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	gitobject "github.com/go-git/go-git/v5/plumbing/object"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"
	"sigs.k8s.io/controller-runtime/pkg/client/interceptor"

	"vpagitops/api/v1alpha1"
	"vpagitops/pkg/gitrepo"
	"vpagitops/pkg/pullrequest"
)

// fakePRManager records hosting API interactions in memory.
type fakePRManager struct {
	mu      sync.Mutex
	open    *pullrequest.Record
	creates int
	calls   int
	err     error
}

func (f *fakePRManager) FindOpen(ctx context.Context, owner, repo, head, base string) (*pullrequest.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.open, nil
}

func (f *fakePRManager) Ensure(ctx context.Context, owner, repo, head, base string, proposal pullrequest.Proposal) (*pullrequest.Record, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, false, f.err
	}
	if f.open != nil {
		return f.open, false, nil
	}
	f.creates++
	f.open = &pullrequest.Record{
		Number:    f.creates,
		URL:       fmt.Sprintf("https://github.test/%s/%s/pull/%d", owner, repo, f.creates),
		CreatedAt: time.Now(),
		Commits:   1,
	}
	return f.open, true, nil
}

func newScheme(t *testing.T) *runtime.Scheme {
	t.Helper()
	s := runtime.NewScheme()
	if err := v1alpha1.AddToScheme(s); err != nil {
		t.Fatalf("add v1alpha1 to scheme: %v", err)
	}
	if err := corev1.AddToScheme(s); err != nil {
		t.Fatalf("add corev1 to scheme: %v", err)
	}
	s.AddKnownTypeWithName(vpaGVK, &unstructured.Unstructured{})
	s.AddKnownTypeWithName(vpaGVK.GroupVersion().WithKind(vpaGVK.Kind+"List"), &unstructured.UnstructuredList{})
	metav1.AddToGroupVersion(s, vpaGVK.GroupVersion())
	return s
}

func vpaObject(name, namespace string, targets ...map[string]interface{}) *unstructured.Unstructured {
	recs := make([]interface{}, 0, len(targets))
	for _, target := range targets {
		recs = append(recs, map[string]interface{}{"target": target})
	}
	vpa := &unstructured.Unstructured{Object: map[string]interface{}{
		"metadata": map[string]interface{}{"name": name, "namespace": namespace},
	}}
	vpa.SetGroupVersionKind(vpaGVK)
	if len(recs) > 0 {
		vpa.Object["status"] = map[string]interface{}{
			"recommendation": map[string]interface{}{"containerRecommendations": recs},
		}
	}
	return vpa
}

func tokenSecret(name, namespace string) *corev1.Secret {
	return &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
		Data:       map[string][]byte{SecretTokenKey: []byte("gh-token")},
	}
}

func recommenderFor(remote string) *v1alpha1.VPARecommender {
	return &v1alpha1.VPARecommender{
		ObjectMeta: metav1.ObjectMeta{Name: "web-recommender", Namespace: "prod"},
		Spec: v1alpha1.VPARecommenderSpec{
			VPARef:        v1alpha1.VPARef{Name: "web-vpa", Namespace: "prod"},
			GitRepo:       remote,
			GitPath:       "overlays/prod",
			BaseBranch:    "main",
			CredentialRef: v1alpha1.CredentialRef{Name: "git-credentials"},
			TargetResource: v1alpha1.TargetResource{
				Kind:      "Deployment",
				Name:      "web",
				Namespace: "prod",
			},
		},
	}
}

// seedRemote creates a bare repository with one commit on main. Its
// path doubles as the clone URL.
func seedRemote(t *testing.T) string {
	t.Helper()
	remoteDir := t.TempDir()
	if _, err := git.PlainInitWithOptions(remoteDir, &git.PlainInitOptions{
		Bare:        true,
		InitOptions: git.InitOptions{DefaultBranch: plumbing.Main},
	}); err != nil {
		t.Fatalf("init bare remote: %v", err)
	}

	seedDir := t.TempDir()
	seed, err := git.PlainInitWithOptions(seedDir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.Main},
	})
	if err != nil {
		t.Fatalf("init seed repo: %v", err)
	}
	if err := os.WriteFile(filepath.Join(seedDir, "README.md"), []byte("infra\n"), 0o644); err != nil {
		t.Fatalf("write seed file: %v", err)
	}
	wt, err := seed.Worktree()
	if err != nil {
		t.Fatalf("seed worktree: %v", err)
	}
	if _, err := wt.Add("README.md"); err != nil {
		t.Fatalf("stage seed file: %v", err)
	}
	if _, err := wt.Commit("initial commit", &git.CommitOptions{
		Author: &gitobject.Signature{Name: "test", Email: "test@example.com"},
	}); err != nil {
		t.Fatalf("seed commit: %v", err)
	}
	if _, err := seed.CreateRemote(&gitconfig.RemoteConfig{Name: "origin", URLs: []string{remoteDir}}); err != nil {
		t.Fatalf("add remote: %v", err)
	}
	if err := seed.Push(&git.PushOptions{
		RemoteName: "origin",
		RefSpecs:   []gitconfig.RefSpec{"refs/heads/main:refs/heads/main"},
	}); err != nil {
		t.Fatalf("seed push: %v", err)
	}
	return remoteDir
}

func remoteCommitMessages(t *testing.T, remoteDir, branch string) []string {
	t.Helper()
	repo, err := git.PlainOpen(remoteDir)
	if err != nil {
		t.Fatalf("open remote: %v", err)
	}
	ref, err := repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		t.Fatalf("resolve branch %s: %v", branch, err)
	}
	iter, err := repo.Log(&git.LogOptions{From: ref.Hash()})
	if err != nil {
		t.Fatalf("log branch %s: %v", branch, err)
	}
	var messages []string
	_ = iter.ForEach(func(c *gitobject.Commit) error {
		messages = append(messages, c.Message)
		return nil
	})
	return messages
}

func remoteFileContent(t *testing.T, remoteDir, branch, path string) string {
	t.Helper()
	repo, err := git.PlainOpen(remoteDir)
	if err != nil {
		t.Fatalf("open remote: %v", err)
	}
	ref, err := repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		t.Fatalf("resolve branch %s: %v", branch, err)
	}
	commit, err := repo.CommitObject(ref.Hash())
	if err != nil {
		t.Fatalf("resolve commit: %v", err)
	}
	file, err := commit.File(path)
	if err != nil {
		t.Fatalf("file %s on %s: %v", path, branch, err)
	}
	contents, err := file.Contents()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return contents
}

type testEnv struct {
	client client.Client
	rec    *VPARecommenderReconciler
	pr     *fakePRManager
}

func newTestEnv(t *testing.T, objects ...client.Object) *testEnv {
	t.Helper()
	fakeClient := fake.NewClientBuilder().
		WithScheme(newScheme(t)).
		WithObjects(objects...).
		WithStatusSubresource(&v1alpha1.VPARecommender{}).
		Build()
	pr := &fakePRManager{}
	rec := &VPARecommenderReconciler{
		Client:     fakeClient,
		Scheme:     newScheme(t),
		Recorder:   record.NewFakeRecorder(32),
		Workspaces: gitrepo.NewPool(t.TempDir()),
		PullRequests: func(ctx context.Context, token string) pullrequest.Manager {
			return pr
		},
		GitTimeout:   10 * time.Second,
		WaitInterval: time.Minute,
	}
	return &testEnv{client: fakeClient, rec: rec, pr: pr}
}

func reconcileOnce(t *testing.T, env *testEnv, vr *v1alpha1.VPARecommender) (ctrl.Result, error) {
	t.Helper()
	return env.rec.Reconcile(context.Background(), ctrl.Request{
		NamespacedName: types.NamespacedName{Namespace: vr.Namespace, Name: vr.Name},
	})
}

func fetchStatus(t *testing.T, env *testEnv, vr *v1alpha1.VPARecommender) *v1alpha1.VPARecommenderStatus {
	t.Helper()
	got := &v1alpha1.VPARecommender{}
	if err := env.client.Get(context.Background(), types.NamespacedName{Namespace: vr.Namespace, Name: vr.Name}, got); err != nil {
		t.Fatalf("get VPARecommender: %v", err)
	}
	return &got.Status
}

func TestReconcile_FullFlowCommitsAndOpensPR(t *testing.T) {
	remote := seedRemote(t)
	vr := recommenderFor(remote)
	vpa := vpaObject("web-vpa", "prod", map[string]interface{}{"cpu": "300m", "memory": "512Mi"})
	env := newTestEnv(t, vr, vpa, tokenSecret("git-credentials", "prod"))

	if _, err := reconcileOnce(t, env, vr); err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	messages := remoteCommitMessages(t, remote, WorkingBranch)
	if len(messages) != 2 {
		t.Fatalf("Expected 2 commits on %s, got %d: %v", WorkingBranch, len(messages), messages)
	}
	if messages[0] != "Update Deployment/web resource requests from VPA recommendation" {
		t.Errorf("Unexpected commit message %q", messages[0])
	}

	content := remoteFileContent(t, remote, WorkingBranch, "overlays/prod/web.deployment.yaml")
	for _, want := range []string{"op: add", "value: 300m", "value: 512Mi", "value: 600m", "value: 1024Mi"} {
		if !strings.Contains(content, want) {
			t.Errorf("Patch file missing %q:\n%s", want, content)
		}
	}

	st := fetchStatus(t, env, vr)
	if st.LastRecommendation == nil || st.LastRecommendation.CPU != "300m" || st.LastRecommendation.Memory != "512Mi" {
		t.Errorf("Unexpected lastRecommendation: %+v", st.LastRecommendation)
	}
	if st.LastPatch == nil || st.LastPatch.Path != "overlays/prod/web.deployment.yaml" || st.LastPatch.Target != "Deployment/web" {
		t.Errorf("Unexpected lastPatch: %+v", st.LastPatch)
	}
	if st.PullRequest == nil || st.PullRequest.Number != 1 {
		t.Errorf("Unexpected pullRequest: %+v", st.PullRequest)
	}
	for condType, reason := range map[string]string{
		ConditionRecommended:      ReasonRendered,
		ConditionPushed:           ReasonCommitted,
		ConditionPullRequestReady: ReasonPRCreated,
	} {
		last := latestCondition(st, condType)
		if last == nil || last.Status != metav1.ConditionTrue || last.Reason != reason {
			t.Errorf("Condition %s: expected True/%s, got %+v", condType, reason, last)
		}
	}
}

func TestReconcile_SecondRunIsIdempotent(t *testing.T) {
	remote := seedRemote(t)
	vr := recommenderFor(remote)
	vpa := vpaObject("web-vpa", "prod", map[string]interface{}{"cpu": "300m", "memory": "512Mi"})
	env := newTestEnv(t, vr, vpa, tokenSecret("git-credentials", "prod"))

	for i := 0; i < 2; i++ {
		if _, err := reconcileOnce(t, env, vr); err != nil {
			t.Fatalf("Reconcile %d failed: %v", i, err)
		}
	}

	// No second commit and no second PR.
	if messages := remoteCommitMessages(t, remote, WorkingBranch); len(messages) != 2 {
		t.Errorf("Expected 2 commits after re-run, got %d: %v", len(messages), messages)
	}
	if env.pr.creates != 1 {
		t.Errorf("Expected exactly 1 PR creation, got %d", env.pr.creates)
	}

	st := fetchStatus(t, env, vr)
	if last := latestCondition(st, ConditionPushed); last == nil || last.Reason != ReasonUpToDate {
		t.Errorf("Expected Pushed/UpToDate after no-op run, got %+v", last)
	}
	if last := latestCondition(st, ConditionPullRequestReady); last == nil || last.Reason != ReasonPRExists {
		t.Errorf("Expected PullRequestReady/PRExists after no-op run, got %+v", last)
	}
}

func TestReconcile_NewRecommendationAddsCommitKeepsPR(t *testing.T) {
	remote := seedRemote(t)
	vr := recommenderFor(remote)
	vpa := vpaObject("web-vpa", "prod", map[string]interface{}{"cpu": "300m", "memory": "512Mi"})
	env := newTestEnv(t, vr, vpa, tokenSecret("git-credentials", "prod"))

	if _, err := reconcileOnce(t, env, vr); err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	// The VPA raises its recommendation.
	updated := vpaObject("web-vpa", "prod", map[string]interface{}{"cpu": "450m", "memory": "768Mi"})
	updated.SetResourceVersion("")
	if err := env.client.Delete(context.Background(), vpaObject("web-vpa", "prod")); err != nil {
		t.Fatalf("delete VPA: %v", err)
	}
	if err := env.client.Create(context.Background(), updated); err != nil {
		t.Fatalf("recreate VPA: %v", err)
	}

	if _, err := reconcileOnce(t, env, vr); err != nil {
		t.Fatalf("Reconcile after update failed: %v", err)
	}

	if messages := remoteCommitMessages(t, remote, WorkingBranch); len(messages) != 3 {
		t.Errorf("Expected 3 commits after changed recommendation, got %d", len(messages))
	}
	if env.pr.creates != 1 {
		t.Errorf("Expected the existing PR to be reused, got %d creations", env.pr.creates)
	}

	content := remoteFileContent(t, remote, WorkingBranch, "overlays/prod/web.deployment.yaml")
	if !strings.Contains(content, "value: 450m") || !strings.Contains(content, "value: 768Mi") {
		t.Errorf("Patch file not updated:\n%s", content)
	}
}

func TestReconcile_NotAvailableMakesNoGitOrAPICalls(t *testing.T) {
	vr := recommenderFor("https://github.com/acme/infra.git")
	vpa := vpaObject("web-vpa", "prod") // no status.recommendation
	env := newTestEnv(t, vr, vpa, tokenSecret("git-credentials", "prod"))

	result, err := reconcileOnce(t, env, vr)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if result.RequeueAfter == 0 {
		t.Error("Expected a requeue while waiting for the recommendation")
	}
	if env.pr.calls != 0 {
		t.Errorf("Expected no hosting API calls, got %d", env.pr.calls)
	}

	st := fetchStatus(t, env, vr)
	last := latestCondition(st, ConditionRecommended)
	if last == nil || last.Status != metav1.ConditionUnknown || last.Reason != ReasonNotAvailable {
		t.Errorf("Expected Recommended Unknown/NotAvailable, got %+v", last)
	}
}

func TestReconcile_MissingVPAIsNotAvailable(t *testing.T) {
	vr := recommenderFor("https://github.com/acme/infra.git")
	env := newTestEnv(t, vr, tokenSecret("git-credentials", "prod"))

	result, err := reconcileOnce(t, env, vr)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if result.RequeueAfter == 0 {
		t.Error("Expected a requeue while the VPA does not exist")
	}
}

func TestReconcile_MissingSecretIsTerminal(t *testing.T) {
	vr := recommenderFor("https://github.com/acme/infra.git")
	vpa := vpaObject("web-vpa", "prod", map[string]interface{}{"cpu": "300m", "memory": "512Mi"})
	env := newTestEnv(t, vr, vpa)

	if _, err := reconcileOnce(t, env, vr); err != nil {
		t.Fatalf("Terminal failure must not return an error, got %v", err)
	}

	st := fetchStatus(t, env, vr)
	last := latestCondition(st, ConditionRecommended)
	if last == nil || last.Status != metav1.ConditionFalse || last.Reason != ReasonCredentialError {
		t.Errorf("Expected Recommended False/CredentialError, got %+v", last)
	}
	if !strings.Contains(last.Message, "not retryable") {
		t.Errorf("Expected terminal marker in message, got %q", last.Message)
	}
}

func TestReconcile_TransientSecretReadIsRetryable(t *testing.T) {
	vr := recommenderFor("https://github.com/acme/infra.git")
	vpa := vpaObject("web-vpa", "prod", map[string]interface{}{"cpu": "300m", "memory": "512Mi"})

	boom := apierrors.NewInternalError(errors.New("etcd leader changed"))
	fakeClient := fake.NewClientBuilder().
		WithScheme(newScheme(t)).
		WithObjects(vr, vpa, tokenSecret("git-credentials", "prod")).
		WithStatusSubresource(&v1alpha1.VPARecommender{}).
		WithInterceptorFuncs(interceptor.Funcs{
			Get: func(ctx context.Context, c client.WithWatch, key client.ObjectKey, obj client.Object, opts ...client.GetOption) error {
				if _, ok := obj.(*corev1.Secret); ok {
					return boom
				}
				return c.Get(ctx, key, obj, opts...)
			},
		}).
		Build()

	pr := &fakePRManager{}
	rec := &VPARecommenderReconciler{
		Client:     fakeClient,
		Scheme:     newScheme(t),
		Recorder:   record.NewFakeRecorder(32),
		Workspaces: gitrepo.NewPool(t.TempDir()),
		PullRequests: func(ctx context.Context, token string) pullrequest.Manager {
			return pr
		},
	}
	env := &testEnv{client: fakeClient, rec: rec, pr: pr}

	if _, err := reconcileOnce(t, env, vr); err == nil {
		t.Fatal("Expected a transient secret read failure to be returned for retry")
	}

	st := fetchStatus(t, env, vr)
	last := latestCondition(st, ConditionRecommended)
	if last == nil || last.Status != metav1.ConditionFalse || last.Reason != ReasonCredentialError {
		t.Errorf("Expected Recommended False/CredentialError, got %+v", last)
	}
	if strings.Contains(last.Message, "not retryable") {
		t.Errorf("Transient failure must not be marked terminal, got %q", last.Message)
	}
}

func TestReconcile_CommitFailureIsRetryable(t *testing.T) {
	remote := seedRemote(t)
	vr := recommenderFor(remote)
	// README.md is a file on main, so writing under it must fail.
	vr.Spec.GitPath = "README.md"
	vpa := vpaObject("web-vpa", "prod", map[string]interface{}{"cpu": "300m", "memory": "512Mi"})
	env := newTestEnv(t, vr, vpa, tokenSecret("git-credentials", "prod"))

	if _, err := reconcileOnce(t, env, vr); err == nil {
		t.Fatal("Expected a commit failure to be returned for retry")
	}

	st := fetchStatus(t, env, vr)
	last := latestCondition(st, ConditionPushed)
	if last == nil || last.Status != metav1.ConditionFalse || last.Reason != ReasonCommitFailed {
		t.Errorf("Expected Pushed False/CommitFailed, got %+v", last)
	}
	if env.pr.calls != 0 {
		t.Errorf("Expected no hosting API calls after a commit failure, got %d", env.pr.calls)
	}
}

func TestReconcile_InvalidIndexIsTerminal(t *testing.T) {
	vr := recommenderFor("https://github.com/acme/infra.git")
	vr.Spec.TargetResource.ContainerIndex = 3
	vpa := vpaObject("web-vpa", "prod", map[string]interface{}{"cpu": "300m", "memory": "512Mi"})
	env := newTestEnv(t, vr, vpa, tokenSecret("git-credentials", "prod"))

	if _, err := reconcileOnce(t, env, vr); err != nil {
		t.Fatalf("Terminal failure must not return an error, got %v", err)
	}

	st := fetchStatus(t, env, vr)
	last := latestCondition(st, ConditionRecommended)
	if last == nil || last.Reason != ReasonInvalidIndex {
		t.Errorf("Expected Recommended/InvalidIndex, got %+v", last)
	}
	if env.pr.calls != 0 {
		t.Errorf("Expected no hosting API calls, got %d", env.pr.calls)
	}
}

func TestReconcile_InvalidSpecIsTerminal(t *testing.T) {
	vr := recommenderFor("https://github.com/acme/infra.git")
	vr.Spec.CredentialRef.Name = ""
	env := newTestEnv(t, vr)

	if _, err := reconcileOnce(t, env, vr); err != nil {
		t.Fatalf("Terminal failure must not return an error, got %v", err)
	}

	st := fetchStatus(t, env, vr)
	last := latestCondition(st, ConditionRecommended)
	if last == nil || last.Reason != ReasonInvalidSpec {
		t.Errorf("Expected Recommended/InvalidSpec, got %+v", last)
	}
}

func TestReconcile_HostingAPIErrorIsRetryable(t *testing.T) {
	remote := seedRemote(t)
	vr := recommenderFor(remote)
	vpa := vpaObject("web-vpa", "prod", map[string]interface{}{"cpu": "300m", "memory": "512Mi"})
	env := newTestEnv(t, vr, vpa, tokenSecret("git-credentials", "prod"))
	env.pr.err = fmt.Errorf("%w: list pull requests: 502", pullrequest.ErrHostingAPI)

	_, err := reconcileOnce(t, env, vr)
	if !errors.Is(err, pullrequest.ErrHostingAPI) {
		t.Fatalf("Expected retryable hosting API error, got %v", err)
	}

	// The commit still landed; a later attempt finds it unchanged.
	if messages := remoteCommitMessages(t, remote, WorkingBranch); len(messages) != 2 {
		t.Errorf("Expected the commit to persist, got %d commits", len(messages))
	}

	st := fetchStatus(t, env, vr)
	last := latestCondition(st, ConditionPullRequestReady)
	if last == nil || last.Status != metav1.ConditionFalse || last.Reason != ReasonHostingAPIError {
		t.Errorf("Expected PullRequestReady False/HostingAPIError, got %+v", last)
	}
}

func TestReconcile_NoChangesBetweenBranches(t *testing.T) {
	remote := seedRemote(t)
	vr := recommenderFor(remote)
	vpa := vpaObject("web-vpa", "prod", map[string]interface{}{"cpu": "300m", "memory": "512Mi"})
	env := newTestEnv(t, vr, vpa, tokenSecret("git-credentials", "prod"))
	env.pr.err = fmt.Errorf("%w: vpa-recommendations -> main", pullrequest.ErrNoChanges)

	if _, err := reconcileOnce(t, env, vr); err != nil {
		t.Fatalf("ErrNoChanges must resolve cleanly, got %v", err)
	}

	st := fetchStatus(t, env, vr)
	last := latestCondition(st, ConditionPullRequestReady)
	if last == nil || last.Status != metav1.ConditionTrue || last.Reason != ReasonUpToDate {
		t.Errorf("Expected PullRequestReady True/UpToDate, got %+v", last)
	}
	if st.PullRequest != nil {
		t.Errorf("Expected no pull request reference, got %+v", st.PullRequest)
	}
}

func TestValidateSpec(t *testing.T) {
	valid := recommenderFor("https://github.com/acme/infra.git").Spec
	if err := validateSpec(valid); err != nil {
		t.Fatalf("Expected valid spec, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*v1alpha1.VPARecommenderSpec)
	}{
		{"missing vpaRef name", func(s *v1alpha1.VPARecommenderSpec) { s.VPARef.Name = "" }},
		{"missing target kind", func(s *v1alpha1.VPARecommenderSpec) { s.TargetResource.Kind = "" }},
		{"negative container index", func(s *v1alpha1.VPARecommenderSpec) { s.TargetResource.ContainerIndex = -1 }},
		{"missing credential", func(s *v1alpha1.VPARecommenderSpec) { s.CredentialRef.Name = "" }},
		{"bad repo URL", func(s *v1alpha1.VPARecommenderSpec) { s.GitRepo = "https://github.com/just-owner" }},
	}
	for _, tc := range cases {
		spec := *valid.DeepCopy()
		tc.mutate(&spec)
		if err := validateSpec(spec); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestVPAEventHandler_MapsToReferencingRecommenders(t *testing.T) {
	vrA := recommenderFor("https://github.com/acme/infra.git")
	vrB := recommenderFor("https://github.com/acme/infra.git")
	vrB.Name = "other-recommender"
	vrB.Spec.VPARef.Name = "other-vpa"
	env := newTestEnv(t, vrA, vrB)

	h := &VPAEventHandler{Client: env.client}
	requests := h.Map(context.Background(), vpaObject("web-vpa", "prod"))

	if len(requests) != 1 {
		t.Fatalf("Expected 1 request, got %d", len(requests))
	}
	if requests[0].Name != "web-recommender" {
		t.Errorf("Expected web-recommender requeued, got %s", requests[0].Name)
	}
}

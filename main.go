package main

import (
	"flag"
	"os"
	"time"

	"k8s.io/apimachinery/pkg/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/klog/v2"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"

	"vpagitops/api/v1alpha1"
	"vpagitops/pkg/controller"
	"vpagitops/pkg/gitrepo"
)

func main() {
	var (
		metricsAddr  string
		probeAddr    string
		leaderElect  bool
		workspaceDir string
		gitTimeout   time.Duration
		waitInterval time.Duration
	)
	flag.StringVar(&metricsAddr, "metrics-bind-address", ":8080", "Address the metrics endpoint binds to")
	flag.StringVar(&probeAddr, "health-probe-bind-address", ":8081", "Address the health probe endpoint binds to")
	flag.BoolVar(&leaderElect, "leader-elect", false, "Enable leader election so only one replica reconciles")
	flag.StringVar(&workspaceDir, "workspace-dir", "", "Directory for repository clones (defaults to a temp dir)")
	flag.DurationVar(&gitTimeout, "git-timeout", 60*time.Second, "Timeout for a single clone, fetch or push")
	flag.DurationVar(&waitInterval, "wait-interval", 5*time.Minute, "Requeue delay while waiting for a VPA recommendation")

	opts := zap.Options{Development: false}
	opts.BindFlags(flag.CommandLine)
	flag.Parse()

	ctrl.SetLogger(zap.New(zap.UseFlagOptions(&opts)))

	if workspaceDir == "" {
		dir, err := os.MkdirTemp("", "vpagitops-workspaces-")
		if err != nil {
			klog.Fatalf("Failed to create workspace directory: %v", err)
		}
		workspaceDir = dir
	}

	scheme := runtime.NewScheme()
	if err := clientgoscheme.AddToScheme(scheme); err != nil {
		klog.Fatalf("Failed to register client-go types: %v", err)
	}
	if err := v1alpha1.AddToScheme(scheme); err != nil {
		klog.Fatalf("Failed to register VPARecommender types: %v", err)
	}

	mgr, err := ctrl.NewManager(ctrl.GetConfigOrDie(), ctrl.Options{
		Scheme:                 scheme,
		Metrics:                metricsserver.Options{BindAddress: metricsAddr},
		HealthProbeBindAddress: probeAddr,
		LeaderElection:         leaderElect,
		LeaderElectionID:       "vpagitops.recommander.k8s.io",
	})
	if err != nil {
		klog.Fatalf("Failed to create manager: %v", err)
	}

	reconciler := &controller.VPARecommenderReconciler{
		Client:       mgr.GetClient(),
		Scheme:       mgr.GetScheme(),
		Recorder:     mgr.GetEventRecorderFor("vparecommender-controller"),
		Workspaces:   gitrepo.NewPool(workspaceDir),
		GitTimeout:   gitTimeout,
		WaitInterval: waitInterval,
	}
	if err := reconciler.SetupWithManager(mgr); err != nil {
		klog.Fatalf("Failed to set up VPARecommender controller: %v", err)
	}

	if err := mgr.AddHealthzCheck("healthz", healthz.Ping); err != nil {
		klog.Fatalf("Failed to set up health check: %v", err)
	}
	if err := mgr.AddReadyzCheck("readyz", healthz.Ping); err != nil {
		klog.Fatalf("Failed to set up ready check: %v", err)
	}

	klog.Infof("Starting manager (workspaces in %s)", workspaceDir)
	if err := mgr.Start(ctrl.SetupSignalHandler()); err != nil {
		klog.Fatalf("Manager error: %v", err)
	}
}

package controller

import (
	"context"

	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"

	"vpagitops/api/v1alpha1"
)

// VPAEventHandler requeues VPARecommender objects when the
// VerticalPodAutoscaler they reference changes, so a fresh
// recommendation is rendered without waiting for the periodic requeue.
// VPA changes only trigger reconciliation; all state is re-derived there.
type VPAEventHandler struct {
	Client client.Client
}

// Map maps a VPA object to the VPARecommender objects referencing it.
func (h *VPAEventHandler) Map(ctx context.Context, obj client.Object) []reconcile.Request {
	list := &v1alpha1.VPARecommenderList{}
	if err := h.Client.List(ctx, list); err != nil {
		return nil
	}

	var requests []reconcile.Request
	for _, vr := range list.Items {
		if vr.Spec.VPARef.Name == obj.GetName() && vr.Spec.VPARef.Namespace == obj.GetNamespace() {
			requests = append(requests, reconcile.Request{
				NamespacedName: client.ObjectKeyFromObject(&vr),
			})
		}
	}

	return requests
}

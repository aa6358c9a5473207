package controller

import (
	"fmt"
	"testing"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"vpagitops/api/v1alpha1"
)

func TestSetCondition_AppendsOnReasonChange(t *testing.T) {
	st := &v1alpha1.VPARecommenderStatus{}
	now := metav1.Now()

	if !setCondition(st, ConditionPushed, metav1.ConditionTrue, ReasonCommitted, "committed", now) {
		t.Fatal("Expected first entry to be appended")
	}
	if !setCondition(st, ConditionPushed, metav1.ConditionTrue, ReasonUpToDate, "no change", now) {
		t.Fatal("Expected reason change to append an entry")
	}
	if len(st.Conditions) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(st.Conditions))
	}
}

func TestSetCondition_NoAppendWhenUnchanged(t *testing.T) {
	st := &v1alpha1.VPARecommenderStatus{}
	now := metav1.Now()

	setCondition(st, ConditionPushed, metav1.ConditionTrue, ReasonCommitted, "first", now)
	if setCondition(st, ConditionPushed, metav1.ConditionTrue, ReasonCommitted, "second message", now) {
		t.Fatal("Expected no append when status and reason are unchanged")
	}
	if len(st.Conditions) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(st.Conditions))
	}
	// The original entry keeps its transition time and message.
	if st.Conditions[0].Message != "first" {
		t.Errorf("Expected original message preserved, got %q", st.Conditions[0].Message)
	}
}

func TestSetCondition_IndependentTypes(t *testing.T) {
	st := &v1alpha1.VPARecommenderStatus{}
	now := metav1.Now()

	setCondition(st, ConditionRecommended, metav1.ConditionTrue, ReasonRendered, "", now)
	setCondition(st, ConditionPushed, metav1.ConditionTrue, ReasonCommitted, "", now)
	setCondition(st, ConditionRecommended, metav1.ConditionUnknown, ReasonNotAvailable, "", now)

	if len(st.Conditions) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(st.Conditions))
	}
	last := latestCondition(st, ConditionRecommended)
	if last == nil || last.Reason != ReasonNotAvailable {
		t.Errorf("Expected latest Recommended entry to be NotAvailable, got %+v", last)
	}
}

func TestSetCondition_HistoryCap(t *testing.T) {
	st := &v1alpha1.VPARecommenderStatus{}
	now := metav1.Now()

	// Alternate reasons so every call appends.
	for i := 0; i < 2*maxConditionHistory; i++ {
		reason := ReasonCommitted
		if i%2 == 1 {
			reason = ReasonUpToDate
		}
		setCondition(st, ConditionPushed, metav1.ConditionTrue, reason, fmt.Sprintf("entry %d", i), now)
	}
	setCondition(st, ConditionRecommended, metav1.ConditionTrue, ReasonRendered, "kept", now)

	pushed := 0
	for _, c := range st.Conditions {
		if c.Type == ConditionPushed {
			pushed++
		}
	}
	if pushed != maxConditionHistory {
		t.Errorf("Expected %d Pushed entries after cap, got %d", maxConditionHistory, pushed)
	}
	// The newest entries survive.
	last := latestCondition(st, ConditionPushed)
	if last.Message != fmt.Sprintf("entry %d", 2*maxConditionHistory-1) {
		t.Errorf("Expected newest entry retained, got %q", last.Message)
	}
	if latestCondition(st, ConditionRecommended) == nil {
		t.Error("Expected other condition types to be unaffected by the cap")
	}
}

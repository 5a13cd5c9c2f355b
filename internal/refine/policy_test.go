package refine

import "testing"

func TestPolicyContinuesWhileUnderBudgetAndTarget(t *testing.T) {
	p := &Policy{LoopBudget: 3, TargetWords: 100}
	if d := p.Decide(1, 10, 40); d != Continue {
		t.Fatalf("pass 1: got %s, want continue", d)
	}
	if d := p.Decide(2, 40, 70); d != Continue {
		t.Fatalf("pass 2: got %s, want continue", d)
	}
}

func TestPolicyBudgetIsHardCeiling(t *testing.T) {
	p := &Policy{LoopBudget: 3, TargetWords: 1000}
	p.Decide(1, 0, 20)
	p.Decide(2, 20, 40)
	if d := p.Decide(3, 40, 60); d != StopBudgetExhausted {
		t.Fatalf("got %s, want budget-exhausted", d)
	}
}

func TestPolicyTargetWinsOnFinalPass(t *testing.T) {
	// Crossing the threshold on the last permitted pass reports reached,
	// not budget-exhausted.
	p := &Policy{LoopBudget: 3, TargetWords: 50}
	p.Decide(1, 1, 21)
	p.Decide(2, 21, 41)
	if d := p.Decide(3, 41, 61); d != StopReached {
		t.Fatalf("got %s, want reached", d)
	}
}

func TestPolicyNoTargetRunsToBudget(t *testing.T) {
	p := &Policy{LoopBudget: 2}
	if d := p.Decide(1, 0, 500); d != Continue {
		t.Fatalf("pass 1: got %s", d)
	}
	if d := p.Decide(2, 500, 1000); d != StopBudgetExhausted {
		t.Fatalf("pass 2: got %s", d)
	}
}

func TestPolicyStopsAfterTwoStalledPasses(t *testing.T) {
	p := &Policy{LoopBudget: 10, TargetWords: 1000}
	if d := p.Decide(1, 100, 100); d != Continue {
		t.Fatalf("first stall should continue, got %s", d)
	}
	if d := p.Decide(2, 100, 100); d != StopNoProgress {
		t.Fatalf("second stall should stop, got %s", d)
	}
}

func TestPolicyProgressResetsStallCounter(t *testing.T) {
	p := &Policy{LoopBudget: 10, TargetWords: 1000}
	p.Decide(1, 100, 100)
	if d := p.Decide(2, 100, 150); d != Continue {
		t.Fatalf("progress pass: got %s", d)
	}
	if d := p.Decide(3, 150, 150); d != Continue {
		t.Fatalf("stall counter should have reset, got %s", d)
	}
	if d := p.Decide(4, 150, 150); d != StopNoProgress {
		t.Fatalf("got %s, want no-progress", d)
	}
}

func TestPolicyNegativeDeltaCountsAsStall(t *testing.T) {
	p := &Policy{LoopBudget: 10, TargetWords: 1000}
	p.Decide(1, 100, 90)
	if d := p.Decide(2, 90, 80); d != StopNoProgress {
		t.Fatalf("got %s, want no-progress", d)
	}
}

func TestResearchPolicyReachedWhenNoSourcesRemain(t *testing.T) {
	p := &ResearchPolicy{LoopBudget: 5}
	if d := p.Decide(1, 2, true); d != Continue {
		t.Fatalf("pass 1: got %s", d)
	}
	if d := p.Decide(2, 1, true); d != Continue {
		t.Fatalf("pass 2: got %s", d)
	}
	if d := p.Decide(3, 0, true); d != StopReached {
		t.Fatalf("pass 3: got %s, want reached", d)
	}
}

func TestResearchPolicyBudgetBoundsPasses(t *testing.T) {
	p := &ResearchPolicy{LoopBudget: 2}
	p.Decide(1, 3, true)
	if d := p.Decide(2, 2, true); d != StopBudgetExhausted {
		t.Fatalf("got %s, want budget-exhausted", d)
	}
}

func TestResearchPolicyStallsOnDeadSources(t *testing.T) {
	p := &ResearchPolicy{LoopBudget: 10}
	if d := p.Decide(1, 3, false); d != Continue {
		t.Fatalf("pass 1: got %s", d)
	}
	if d := p.Decide(2, 2, false); d != StopNoProgress {
		t.Fatalf("pass 2: got %s, want no-progress", d)
	}
}

func TestResearchPolicyContributionResetsStall(t *testing.T) {
	p := &ResearchPolicy{LoopBudget: 10}
	p.Decide(1, 3, false)
	if d := p.Decide(2, 2, true); d != Continue {
		t.Fatalf("got %s, want continue", d)
	}
	if d := p.Decide(3, 1, false); d != Continue {
		t.Fatalf("stall counter should have reset, got %s", d)
	}
}

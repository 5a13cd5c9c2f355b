package refine

// Decision is the convergence policy's verdict after a completed pass.
type Decision int

const (
	Continue Decision = iota
	StopReached
	StopBudgetExhausted
	StopNoProgress
)

func (d Decision) String() string {
	switch d {
	case Continue:
		return "continue"
	case StopReached:
		return "reached"
	case StopBudgetExhausted:
		return "budget-exhausted"
	case StopNoProgress:
		return "no-progress"
	default:
		return "unknown"
	}
}

// Policy decides after every expansion pass whether to continue, stop with
// the target met, or stop with a partial result. The loop budget is a hard
// ceiling on passes, but a final pass that crosses the target still counts
// as reaching it.
type Policy struct {
	LoopBudget  int
	TargetWords int // zero means no word-count target

	stalls int
}

// Decide is consulted once per completed pass. passNum is 1-based: the number
// of passes executed so far.
func (p *Policy) Decide(passNum, priorWords, newWords int) Decision {
	if newWords-priorWords <= 0 {
		p.stalls++
	} else {
		p.stalls = 0
	}
	if p.TargetWords > 0 && newWords >= p.TargetWords {
		return StopReached
	}
	if passNum >= p.LoopBudget {
		return StopBudgetExhausted
	}
	if p.stalls >= 2 {
		return StopNoProgress
	}
	return Continue
}

// ResearchPolicy is the research variant: convergence means no unseen source
// material remains, not a word count. Failed fetches and empty extractions
// feed the stall counter so a dead source list cannot spin the loop.
type ResearchPolicy struct {
	LoopBudget int

	stalls int
}

// Decide is consulted once per completed pass with the number of sources
// still waiting for their first fetch and whether this pass added anything
// to the synthesis.
func (p *ResearchPolicy) Decide(passNum, remaining int, contributed bool) Decision {
	if contributed {
		p.stalls = 0
	} else {
		p.stalls++
	}
	if remaining == 0 {
		return StopReached
	}
	if passNum >= p.LoopBudget {
		return StopBudgetExhausted
	}
	if p.stalls >= 2 {
		return StopNoProgress
	}
	return Continue
}

package evaluator

// Budget holds the resource limits for a program execution.
// Zero means unlimited.
type Budget struct {
	MaxSteps int64 // statements executed per run
	MaxDepth int64 // nested user function calls
}

// BudgetTracker tracks resource consumption during execution.
type BudgetTracker struct {
	Steps int64
	Depth int64
}

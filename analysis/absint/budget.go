package absint

import "fmt"

// BudgetExhaustedError is the distinguished failure of a fixpoint run that
// hit its symbolic-operation limit. It is attached to the procedure's result
// by the caller; it never crashes the process.
type BudgetExhaustedError struct {
	Proc  string
	Spent int
}

func (e *BudgetExhaustedError) Error() string {
	return fmt.Sprintf("analysis of %q exhausted its budget after %d node visits", e.Proc, e.Spent)
}

// Budget counts symbolic operations; the engine spends one unit per node
// visit. A limit of zero or less means unlimited.
type Budget struct {
	limit int
	spent int
}

func NewBudget(limit int) *Budget {
	return &Budget{limit: limit}
}

// Spend consumes one unit and reports whether the budget still holds.
func (b *Budget) Spend() bool {
	b.spent++
	return b.limit <= 0 || b.spent <= b.limit
}

// Spent returns the number of units consumed so far.
func (b *Budget) Spent() int { return b.spent }

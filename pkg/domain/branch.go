package domain

// BranchOp is the comparison a branch rule applies to a submitted field value.
type BranchOp string

const (
	OpIsFilled BranchOp = "is_filled"
	OpIsEmpty  BranchOp = "is_empty"
	OpEquals   BranchOp = "equals"
	OpContains BranchOp = "contains"
	OpGt       BranchOp = "gt"
	OpLt       BranchOp = "lt"
	OpIsTrue   BranchOp = "is_true"
	OpIsFalse  BranchOp = "is_false"
)

// KnownOp reports whether op is part of the supported set.
func KnownOp(op BranchOp) bool {
	switch op {
	case OpIsFilled, OpIsEmpty, OpEquals, OpContains, OpGt, OpLt, OpIsTrue, OpIsFalse:
		return true
	}
	return false
}

// BranchRule is a conditional edge attached to a screen. Rules are ordered;
// at evaluation time the first matching rule wins, so the list order is
// significant and preserved through every transform.
type BranchRule struct {
	Field string   `json:"field"`
	Op    BranchOp `json:"op"`
	// Value is always the underlying option ID for choice fields, never the
	// display label.
	Value string `json:"value,omitempty"`
	// Next is the destination screen ID. Empty means "no destination yet".
	Next string `json:"next,omitempty"`
	// AutoNext marks Next as inferred by the engine rather than pinned by the
	// user. Auto destinations are recomputed on every normalization; pinned
	// ones are sticky.
	AutoNext bool `json:"auto_next,omitempty"`
}

// CloneRules copies a rule list preserving order.
func CloneRules(rules []BranchRule) []BranchRule {
	if rules == nil {
		return nil
	}
	return append([]BranchRule(nil), rules...)
}

package api

type (
	// Operator names a condition comparison
	Operator string

	// LogicalOperator combines the conditions of a rule
	LogicalOperator string

	// Condition is a pure predicate over an event or execution context.
	// FieldPath addresses a value using dotted-path notation, with
	// payload fields under "payload."
	Condition struct {
		FieldPath     string   `json:"field_path"`
		Operator      Operator `json:"operator"`
		Value         any      `json:"value,omitempty"`
		CaseSensitive bool     `json:"case_sensitive,omitempty"`
	}

	// Rule is an ordered list of conditions combined by a logical operator
	Rule struct {
		Conditions []Condition     `json:"conditions"`
		Operator   LogicalOperator `json:"operator"`
	}
)

const (
	OpEquals     Operator = "equals"
	OpNotEquals  Operator = "not_equals"
	OpIn         Operator = "in"
	OpContains   Operator = "contains"
	OpStartsWith Operator = "starts_with"
	OpEndsWith   Operator = "ends_with"
	OpMatches    Operator = "matches"
	OpGt         Operator = "gt"
	OpGte        Operator = "gte"
	OpLt         Operator = "lt"
	OpLte        Operator = "lte"
	OpBetween    Operator = "between"
	OpBefore     Operator = "before"
	OpAfter      Operator = "after"
	OpWithinLast Operator = "within_last"
)

const (
	LogicalAnd LogicalOperator = "and"
	LogicalOr  LogicalOperator = "or"
	LogicalNot LogicalOperator = "not"
)

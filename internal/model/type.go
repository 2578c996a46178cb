package model

// TypeCode identifies one of the canonical movement types.
// The zero value means the type carries no code, which is the case for custom types.
type TypeCode string

const (
	// TypeIncome is money coming in.
	TypeIncome TypeCode = "income"
	// TypeExpense is money going out.
	TypeExpense TypeCode = "expense"
)

// TypeChoice pairs a canonical code with its display name.
type TypeChoice struct {
	Code TypeCode
	Name string
}

// TypeChoices is the fixed set of canonical types in display order.
var TypeChoices = []TypeChoice{
	{Code: TypeIncome, Name: "Income"},
	{Code: TypeExpense, Name: "Expense"},
}

// Valid reports whether c is one of the canonical type codes.
func (c TypeCode) Valid() bool {
	return c == TypeIncome || c == TypeExpense
}

// Type is the root of the classification hierarchy.
type Type struct {
	Code     TypeCode
	Name     string
	ID       int
	IsCustom bool
}

func (t Type) String() string {
	return t.Name
}

package model

// StatusCode identifies one of the canonical statuses.
// The zero value means the status carries no code, which is the case for custom statuses.
type StatusCode string

const (
	// StatusBusiness marks business-related movements.
	StatusBusiness StatusCode = "business"
	// StatusPersonal marks personal movements.
	StatusPersonal StatusCode = "personal"
	// StatusTax marks tax payments and refunds.
	StatusTax StatusCode = "tax"
)

// StatusChoice pairs a canonical code with its display name.
type StatusChoice struct {
	Code StatusCode
	Name string
}

// StatusChoices is the fixed set of canonical statuses in display order.
var StatusChoices = []StatusChoice{
	{Code: StatusBusiness, Name: "Business"},
	{Code: StatusPersonal, Name: "Personal"},
	{Code: StatusTax, Name: "Tax"},
}

// Valid reports whether c is one of the canonical status codes.
func (c StatusCode) Valid() bool {
	switch c {
	case StatusBusiness, StatusPersonal, StatusTax:
		return true
	}
	return false
}

// Status tags a movement as business, personal, tax or a user-defined bucket.
type Status struct {
	Code     StatusCode
	Name     string
	ID       int
	IsCustom bool
}

func (s Status) String() string {
	return s.Name
}

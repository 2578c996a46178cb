package model

// Category groups movements of a single Type.
// TypeName is filled in by reads and is only used for display.
type Category struct {
	Name     string
	TypeName string
	ID       int
	TypeID   int
}

func (c Category) String() string {
	if c.TypeName == "" {
		return c.Name
	}
	return c.TypeName + " - " + c.Name
}

// SubCategory refines a Category. Deleting the parent Category removes it.
type SubCategory struct {
	Name         string
	CategoryName string
	ID           int
	CategoryID   int
}

func (s SubCategory) String() string {
	if s.CategoryName == "" {
		return s.Name
	}
	return s.CategoryName + " - " + s.Name
}

package models

// All lists every persisted model in dependency order. Used by tests and the
// sqlite dev bootstrap.
func All() []any {
	return []any{
		&User{},
		&Customer{},
		&Banner{},
		&Category{},
		&Brand{},
		&Color{},
		&Size{},
		&Product{},
		&ProductAttribute{},
		&Cart{},
		&CartProduct{},
		&Order{},
	}
}

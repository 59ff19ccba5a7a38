package enums

// CartAction is a line-item adjustment requested from the cart page.
type CartAction string

const (
	CartActionIncrement CartAction = "inc"
	CartActionDecrement CartAction = "dcr"
	CartActionRemove    CartAction = "rmv"
)

func (a CartAction) String() string {
	return string(a)
}

// IsValid reports whether the action changes the line item. Unknown actions
// are accepted by the cart page and ignored.
func (a CartAction) IsValid() bool {
	switch a {
	case CartActionIncrement, CartActionDecrement, CartActionRemove:
		return true
	default:
		return false
	}
}

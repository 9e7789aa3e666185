package bank

import "github.com/fanoutorg/libfanout-go/access"

// MockBank is a test double for Bank.
// All function fields must be set before the corresponding method is called.
type MockBank struct {
	PayFn     func(transfers []Transfer) error
	BalanceFn func(token TokenID, id access.Identity) (uint64, error)
}

func (m *MockBank) Pay(transfers []Transfer) error {
	return m.PayFn(transfers)
}

func (m *MockBank) Balance(token TokenID, id access.Identity) (uint64, error) {
	return m.BalanceFn(token, id)
}

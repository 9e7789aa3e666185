package distributor

// MockEngine is a test double for Engine.
// The function field must be set before PendingAmount is called.
type MockEngine struct {
	PendingAmountFn func(position, rawAmount, multiplier uint64) (uint64, error)
}

func (m *MockEngine) PendingAmount(position, rawAmount, multiplier uint64) (uint64, error) {
	return m.PendingAmountFn(position, rawAmount, multiplier)
}

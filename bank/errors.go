package bank

import "errors"

var (
	// ErrInsufficientFunds indicates a transfer exceeds the source balance.
	ErrInsufficientFunds = errors.New("bank: insufficient funds")

	// ErrBalanceOverflow indicates a credit would overflow the destination balance.
	ErrBalanceOverflow = errors.New("bank: balance overflow")

	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("bank: nil parameter")
)

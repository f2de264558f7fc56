// Package calc is the console calculator: four arithmetic operations and a
// velocity helper, plus the interactive sessions that drive them.
package calc

import (
	"errors"
	"fmt"
)

var (
	ErrDivideByZero    = errors.New("cannot divide by zero")
	ErrZeroTime        = errors.New("time cannot be zero")
	ErrUnknownOperator = errors.New("unknown operator")
)

func Add(a, b float64) float64      { return a + b }
func Subtract(a, b float64) float64 { return a - b }
func Multiply(a, b float64) float64 { return a * b }

func Divide(a, b float64) (float64, error) {
	if b == 0 {
		return 0, ErrDivideByZero
	}
	return a / b, nil
}

// Velocity is distance over time, in whatever units the caller uses.
func Velocity(distance, time float64) (float64, error) {
	if time == 0 {
		return 0, ErrZeroTime
	}
	return distance / time, nil
}

// Operators lists the symbols Apply understands.
var Operators = []string{"+", "-", "*", "/"}

// Apply evaluates a op b for one of Operators.
func Apply(op string, a, b float64) (float64, error) {
	switch op {
	case "+":
		return Add(a, b), nil
	case "-":
		return Subtract(a, b), nil
	case "*":
		return Multiply(a, b), nil
	case "/":
		return Divide(a, b)
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOperator, op)
}

package calc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"
)

const (
	rule    = "========================================"
	goodbye = "Thank you for using the calculator. Goodbye!"
)

// errEOF ends a session quietly when input runs out.
var errEOF = errors.New("end of input")

// Session is one interactive calculator conversation over in/out.
type Session struct {
	in  *bufio.Reader
	out io.Writer
}

func NewSession(in io.Reader, out io.Writer) *Session {
	return &Session{in: bufio.NewReader(in), out: out}
}

// RunMenu is the numbered-menu calculator: 1-4 arithmetic, 5 velocity,
// 6 exit.
func (s *Session) RunMenu() error {
	fmt.Fprintln(s.out, rule)
	fmt.Fprintln(s.out, "Welcome to Simple Calculator")
	fmt.Fprintln(s.out, rule)

	ops := map[string]string{"1": "+", "2": "-", "3": "*", "4": "/"}
	for {
		fmt.Fprintln(s.out, "\nChoose an operation:")
		fmt.Fprintln(s.out, "1. Add")
		fmt.Fprintln(s.out, "2. Subtract")
		fmt.Fprintln(s.out, "3. Multiply")
		fmt.Fprintln(s.out, "4. Divide")
		fmt.Fprintln(s.out, "5. Calculate Velocity")
		fmt.Fprintln(s.out, "6. Exit")

		choice, err := s.prompt("\nEnter choice (1/2/3/4/5/6): ")
		if err != nil {
			return s.finish(err)
		}

		switch {
		case choice == "6":
			fmt.Fprintln(s.out, goodbye)
			return nil
		case choice == "5":
			err = s.velocity()
		case ops[choice] != "":
			err = s.binary(ops[choice], "\n%s %s %s = %s\n")
		default:
			fmt.Fprintln(s.out, "Invalid choice. Please try again.")
			continue
		}
		if err != nil {
			return s.finish(err)
		}
	}
}

// RunOperators is the symbol-driven calculator: + - * / or q to quit.
func (s *Session) RunOperators() error {
	fmt.Fprintln(s.out, rule)
	fmt.Fprintln(s.out, "Simple Calculator")
	fmt.Fprintln(s.out, rule)
	fmt.Fprintln(s.out, "\nOperations:")
	fmt.Fprintln(s.out, "  + : Add")
	fmt.Fprintln(s.out, "  - : Subtract")
	fmt.Fprintln(s.out, "  * : Multiply")
	fmt.Fprintln(s.out, "  / : Divide")
	fmt.Fprintln(s.out, "  q : Quit")
	fmt.Fprintln(s.out, rule)

	for {
		op, err := s.prompt("\nEnter operation (+, -, *, /, q): ")
		if err != nil {
			return s.finish(err)
		}
		if strings.EqualFold(op, "q") {
			fmt.Fprintln(s.out, goodbye)
			return nil
		}
		if !isOperator(op) {
			fmt.Fprintln(s.out, "Invalid operation. Please try again.")
			continue
		}
		if err := s.binary(op, "\nResult: %s %s %s = %s\n"); err != nil {
			return s.finish(err)
		}
	}
}

// binary reads two operands and prints the result with layout, or the
// error line. Only I/O problems are returned.
func (s *Session) binary(op, layout string) error {
	a, ok, err := s.number("Enter first number: ")
	if err != nil || !ok {
		return err
	}
	b, ok, err := s.number("Enter second number: ")
	if err != nil || !ok {
		return err
	}
	res, cerr := Apply(op, a, b)
	if cerr != nil {
		fmt.Fprintf(s.out, "Error: %v\n", cerr)
		return nil
	}
	fmt.Fprintf(s.out, layout, FormatNumber(a), op, FormatNumber(b), FormatNumber(res))
	return nil
}

func (s *Session) velocity() error {
	d, ok, err := s.number("Enter distance: ")
	if err != nil || !ok {
		return err
	}
	t, ok, err := s.number("Enter time: ")
	if err != nil || !ok {
		return err
	}
	v, cerr := Velocity(d, t)
	if cerr != nil {
		fmt.Fprintf(s.out, "Error: %v\n", cerr)
		return nil
	}
	fmt.Fprintf(s.out, "\nVelocity = %s / %s = %s units/time\n", FormatNumber(d), FormatNumber(t), FormatNumber(v))
	return nil
}

// number prompts for a float. ok is false when the input was not a number;
// the complaint has already been printed.
func (s *Session) number(label string) (v float64, ok bool, err error) {
	raw, err := s.prompt(label)
	if err != nil {
		return 0, false, err
	}
	v, perr := ParseNumber(raw)
	if perr != nil {
		fmt.Fprintf(s.out, "Invalid input: %v. Please enter valid numbers.\n", perr)
		return 0, false, nil
	}
	return v, true, nil
}

func (s *Session) prompt(label string) (string, error) {
	fmt.Fprint(s.out, label)
	line, err := s.in.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read input: %w", err)
		}
		if line == "" {
			return "", errEOF
		}
	}
	return strings.TrimSpace(line), nil
}

func (s *Session) finish(err error) error {
	if errors.Is(err, errEOF) {
		fmt.Fprintln(s.out)
		return nil
	}
	return err
}

func isOperator(op string) bool { return slices.Contains(Operators, op) }

// ParseNumber accepts decimal and scientific notation; NaN and infinities
// are rejected.
func ParseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	return v, nil
}

// FormatNumber prints whole numbers with one decimal (3.0) and everything
// else in the shortest exact form.
func FormatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

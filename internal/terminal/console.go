// Package terminal is the interactive point-of-sale front end: a login gate,
// role-gated menus and a checkout operator that drives the billing engine.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
)

// ErrClosed is returned once the input stream is exhausted.
var ErrClosed = errors.New("input closed")

// Console reads one line per prompt and writes plain text.
type Console struct {
	in  *bufio.Scanner
	out io.Writer
}

func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewScanner(in), out: out}
}

func (c *Console) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *Console) Println(args ...interface{}) {
	fmt.Fprintln(c.out, args...)
}

// Prompt prints label and returns the trimmed reply.
func (c *Console) Prompt(ctx context.Context, label string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprint(c.out, label)
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", err
		}
		return "", ErrClosed
	}
	return strings.TrimSpace(c.in.Text()), nil
}

// PromptInt asks until the reply parses as an integer.
func (c *Console) PromptInt(ctx context.Context, label string) (int, error) {
	for {
		raw, err := c.Prompt(ctx, label)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(raw)
		if err == nil {
			return n, nil
		}
		c.Println("Please enter a whole number.")
	}
}

// Confirm asks a yes/no question.
func (c *Console) Confirm(ctx context.Context, label string) (bool, error) {
	raw, err := c.Prompt(ctx, label+" (yes/no): ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(raw) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Table writes rows aligned in columns.
func (c *Console) Table(header []string, rows [][]string) {
	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for _, r := range rows {
		fmt.Fprintln(w, strings.Join(r, "\t"))
	}
	_ = w.Flush()
}

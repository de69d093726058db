package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
)

// prompter reads answers line by line and writes prompts and results to out.
// Every read reports false once input is exhausted.
type prompter struct {
	sc  *bufio.Scanner
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{sc: bufio.NewScanner(in), out: out}
}

func (p *prompter) line(prompt string) (string, bool) {
	fmt.Fprint(p.out, prompt)
	if !p.sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(p.sc.Text()), true
}

// readInt asks until an integer in [lo, hi] is entered.
func (p *prompter) readInt(prompt string, lo, hi int) (int, bool) {
	for {
		s, ok := p.line(prompt)
		if !ok {
			return 0, false
		}
		n, err := strconv.Atoi(s)
		if err == nil && n >= lo && n <= hi {
			return n, true
		}
		fmt.Fprintf(p.out, "  ▶ Please enter an integer between %d and %d.\n", lo, hi)
	}
}

// readFloat asks until a number in [lo, hi] is entered.
func (p *prompter) readFloat(prompt string, lo, hi float64) (float64, bool) {
	for {
		s, ok := p.line(prompt)
		if !ok {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err == nil && f >= lo && f <= hi {
			return f, true
		}
		fmt.Fprintf(p.out, "  ▶ Please enter a number between %g and %g.\n", lo, hi)
	}
}

func (p *prompter) success(format string, a ...any) {
	fmt.Fprintln(p.out, pterm.Success.Sprintf(format, a...))
}

func (p *prompter) warn(format string, a ...any) {
	fmt.Fprintln(p.out, pterm.Warning.Sprintf(format, a...))
}

// fail prints err and any hints attached to it.
func (p *prompter) fail(what string, err error) {
	fmt.Fprintln(p.out, pterm.Error.Sprintf("%s: %v", what, err))
	if hint := errors.FlattenHints(err); hint != "" {
		fmt.Fprintln(p.out, pterm.Info.Sprint(hint))
	}
}

// table renders rows with the first row as header.
func (p *prompter) table(rows [][]string) {
	out, err := pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData(rows)).Srender()
	if err != nil {
		fmt.Fprintf(p.out, "render table: %v\n", err)
		return
	}
	fmt.Fprintln(p.out, out)
}

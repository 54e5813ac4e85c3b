package resolver

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrInputClosed is returned when input ends before a valid answer.
var ErrInputClosed = errors.New("input closed")

var prompts = map[string]string{
	FieldSave:       "Do you want to save the loan data? (yes/no): ",
	FieldPrincipal:  "Enter the loan amount: ",
	FieldYears:      "Enter the loan term in years (0 if specifying in months): ",
	FieldMonths:     "Enter additional loan term in months: ",
	FieldAnnualRate: "Enter the loan annual interest rate (as a percentage): ",
}

// Prompter asks for loan details line by line and asks again until each
// answer is valid.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer

	ctx   context.Context
	lines chan scanned
}

type scanned struct {
	text string
	err  error
}

func NewPrompter(r io.Reader, w io.Writer) *Prompter {
	return &Prompter{in: bufio.NewScanner(r), out: w}
}

// WithContext makes every read return ctx.Err() once ctx is done, even
// while the reader is blocked.
func (p *Prompter) WithContext(ctx context.Context) *Prompter {
	p.ctx = ctx
	return p
}

func (p *Prompter) scan() (string, error) {
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return "", ErrInputClosed
	}
	return strings.TrimSpace(p.in.Text()), nil
}

func (p *Prompter) readLine() (string, error) {
	if p.ctx == nil {
		return p.scan()
	}
	if err := p.ctx.Err(); err != nil {
		return "", err
	}
	if p.lines == nil {
		p.lines = make(chan scanned)
		go p.feed()
	}
	select {
	case <-p.ctx.Done():
		return "", p.ctx.Err()
	case l := <-p.lines:
		return l.text, l.err
	}
}

// feed scans lines until input ends or the context is done.
func (p *Prompter) feed() {
	for {
		text, err := p.scan()
		select {
		case p.lines <- scanned{text: text, err: err}:
		case <-p.ctx.Done():
			return
		}
		if err != nil {
			return
		}
	}
}

// Ask prints the prompt for field until the answer passes validation.
func (p *Prompter) Ask(field string) (string, error) {
	prompt, ok := prompts[field]
	if !ok {
		return "", fmt.Errorf("unknown field %q", field)
	}
	for {
		fmt.Fprint(p.out, prompt)
		v, err := p.readLine()
		if err != nil {
			return "", err
		}
		if fe := ValidateField(field, v); fe != nil {
			fmt.Fprintln(p.out, fe.Message())
			continue
		}
		return v, nil
	}
}

// AskYesNo asks question until the answer is yes or no.
func (p *Prompter) AskYesNo(question string) (bool, error) {
	for {
		fmt.Fprint(p.out, question)
		v, err := p.readLine()
		if err != nil {
			return false, err
		}
		if yes, ok := parseYesNo(v); ok {
			return yes, nil
		}
		fmt.Fprintln(p.out, messages[KindNotYesNo])
	}
}

// PromptLoan collects a full loan. Fields rejected only in combination, a
// zero total term or a payment that rounds to nothing, are asked again.
func (p *Prompter) PromptLoan() (Result, error) {
	var in RawInput
	var err error

	fields := []struct {
		name string
		dst  *string
	}{
		{FieldSave, &in.Save},
		{FieldPrincipal, &in.Principal},
		{FieldYears, &in.Years},
		{FieldMonths, &in.Months},
		{FieldAnnualRate, &in.AnnualRate},
	}
	for _, f := range fields {
		if *f.dst, err = p.Ask(f.name); err != nil {
			return Result{}, err
		}
	}

	for {
		res := Resolve(in)
		if res.Valid() {
			return res, nil
		}
		for _, fe := range res.Errors {
			fmt.Fprintln(p.out, fe.Message())
		}
		if res.Has(FieldTerm) {
			if in.Years, err = p.Ask(FieldYears); err != nil {
				return Result{}, err
			}
			if in.Months, err = p.Ask(FieldMonths); err != nil {
				return Result{}, err
			}
		}
		if res.Has(FieldPrincipal) {
			if in.Principal, err = p.Ask(FieldPrincipal); err != nil {
				return Result{}, err
			}
		}
		if res.Has(FieldAnnualRate) {
			if in.AnnualRate, err = p.Ask(FieldAnnualRate); err != nil {
				return Result{}, err
			}
		}
		if !res.Has(FieldTerm) && !res.Has(FieldPrincipal) && !res.Has(FieldAnnualRate) {
			return res, res.Err()
		}
	}
}

package resolver

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func TestPromptLoan(t *testing.T) {
	input := strings.Join([]string{
		"sure", // rejected
		"yes",
		"-100", // rejected
		"10000",
		"one", // rejected
		"1",
		"0",
		"6",
	}, "\n") + "\n"
	var out bytes.Buffer

	res, err := NewPrompter(strings.NewReader(input), &out).PromptLoan()
	if err != nil {
		t.Fatalf("PromptLoan: %v", err)
	}
	if !res.Valid() || !res.Save || res.Params.Payment.Cents != 86066 {
		t.Fatalf("unexpected result: %+v", res)
	}

	transcript := out.String()
	for _, want := range []string{
		"Invalid input. Please enter 'yes' or 'no'.",
		"Please enter a positive number.",
		"Invalid input. Please enter an integer.",
		"Enter the loan annual interest rate (as a percentage): ",
	} {
		if !strings.Contains(transcript, want) {
			t.Errorf("transcript missing %q:\n%s", want, transcript)
		}
	}
}

func TestPromptLoanAsksTermAgain(t *testing.T) {
	input := "no\n5000\n0\n0\n3\n2\n0\n"
	var out bytes.Buffer

	res, err := NewPrompter(strings.NewReader(input), &out).PromptLoan()
	if err != nil {
		t.Fatalf("PromptLoan: %v", err)
	}
	if res.Params.TermMonths != 24 {
		t.Fatalf("expected 24 months after re-prompt, got %d", res.Params.TermMonths)
	}
	if !strings.Contains(out.String(), "The loan term must be at least one month.") {
		t.Fatalf("expected zero-term message:\n%s", out.String())
	}
}

func TestPromptLoanInputClosed(t *testing.T) {
	_, err := NewPrompter(strings.NewReader("yes\n"), &bytes.Buffer{}).PromptLoan()
	if !errors.Is(err, ErrInputClosed) {
		t.Fatalf("expected ErrInputClosed, got %v", err)
	}
}

func TestAskYesNo(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("y\nYes\n"), &out)
	yes, err := p.AskYesNo("Do you want to retrieve saved loan details? (yes/no): ")
	if err != nil || !yes {
		t.Fatalf("expected yes, got %v %v", yes, err)
	}
	if strings.Count(out.String(), "(yes/no)") != 2 {
		t.Fatalf("expected the question twice:\n%s", out.String())
	}
}

func TestPrompterStopsOnCancel(t *testing.T) {
	pr, pw := io.Pipe()
	t.Cleanup(func() { pw.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	p := NewPrompter(pr, &bytes.Buffer{}).WithContext(ctx)

	done := make(chan error, 1)
	go func() {
		_, err := p.Ask(FieldPrincipal)
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("prompt still blocked after cancel")
	}
}

func TestPrompterWithContextReadsInput(t *testing.T) {
	input := "no\n10000\n1\n0\n6\n"
	res, err := NewPrompter(strings.NewReader(input), &bytes.Buffer{}).
		WithContext(context.Background()).
		PromptLoan()
	if err != nil {
		t.Fatalf("PromptLoan: %v", err)
	}
	if res.Params.Payment.Cents != 86066 || res.Save {
		t.Fatalf("unexpected result: %+v", res)
	}

	_, err = NewPrompter(strings.NewReader("yes\n"), &bytes.Buffer{}).
		WithContext(context.Background()).
		PromptLoan()
	if !errors.Is(err, ErrInputClosed) {
		t.Fatalf("expected ErrInputClosed, got %v", err)
	}
}

package equiv

import (
	"bytes"
	"strings"
	test "testing"
)

func TestNaiveInterpreterHelloWorld(t *test.T) {
	src := "++++++++[>++++[>++>+++>+++>+<<<<-]>+>+>->>+[<]<-]>>.>---.+++++++..+++.>>.<-.<.+++.------.--------.>>+.>++."
	interp, err := NewNaiveInterpreter([]byte(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var out bytes.Buffer
	if _, err := interp.Run(strings.NewReader(""), &out, 0); err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}
	if out.String() != "Hello World!\n" {
		t.Fatalf("expected %q, got %q", "Hello World!\n", out.String())
	}
}

func TestNaiveInterpreterEcho(t *test.T) {
	interp, err := NewNaiveInterpreter([]byte(",[.,]"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var out bytes.Buffer
	// The trailing zero byte ends the loop; ',' past the end of input is
	// an error (see TestNaiveInterpreterReadPastEnd).
	if _, err := interp.Run(strings.NewReader("xyz\x00"), &out, 0); err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}
	if out.String() != "xyz" {
		t.Fatalf("expected echo, got %q", out.String())
	}
}

func TestNewNaiveInterpreterUnmatchedBracket(t *test.T) {
	if _, err := NewNaiveInterpreter([]byte("[++")); err != ErrUnmatchedBracket {
		t.Fatalf("expected ErrUnmatchedBracket, got %v", err)
	}
	if _, err := NewNaiveInterpreter([]byte("++]")); err != ErrUnmatchedBracket {
		t.Fatalf("expected ErrUnmatchedBracket, got %v", err)
	}
}

func TestNaiveInterpreterStepLimitExceeded(t *test.T) {
	interp, err := NewNaiveInterpreter([]byte("+[>+<]"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var out bytes.Buffer
	_, err = interp.Run(strings.NewReader(""), &out, 20)
	if err != ErrStepLimitExceeded {
		t.Fatalf("expected ErrStepLimitExceeded, got %v", err)
	}
}

func TestNaiveInterpreterReadPastEnd(t *test.T) {
	interp, err := NewNaiveInterpreter([]byte(",,"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var out bytes.Buffer
	_, err = interp.Run(strings.NewReader("a"), &out, 0)
	if err != ErrReadPastEnd {
		t.Fatalf("expected ErrReadPastEnd, got %v", err)
	}
}

package exit

import (
	"bytes"
	"os"
	"testing"
)

func TestSuccess(t *testing.T) {
	t.Parallel()

	result := Success("all checks passed")

	if result.ExitCode != 0 {
		t.Errorf("Success() ExitCode = %d, want 0", result.ExitCode)
	}
	if result.Message != "all checks passed" {
		t.Errorf("Success() Message = %q", result.Message)
	}
	if result.Output != os.Stdout {
		t.Error("Success() expected output to stdout")
	}
}

func TestError(t *testing.T) {
	t.Parallel()

	result := Error("check failed")

	if result.ExitCode != 1 {
		t.Errorf("Error() ExitCode = %d, want 1", result.ExitCode)
	}
	if result.Message != "check failed" {
		t.Errorf("Error() Message = %q", result.Message)
	}
	if result.Output != os.Stderr {
		t.Error("Error() expected output to stderr")
	}
}

func TestErrorf(t *testing.T) {
	t.Parallel()

	result := Errorf("check failed: %s (step %d)", "timeout", 3)

	if result.ExitCode != 1 {
		t.Errorf("Errorf() ExitCode = %d, want 1", result.ExitCode)
	}

	want := "check failed: timeout (step 3)"
	if result.Message != want {
		t.Errorf("Errorf() Message = %q, want %q", result.Message, want)
	}
}

func TestUsage(t *testing.T) {
	t.Parallel()

	result := Usagef("unknown flag: %s", "--frobnicate")

	if result.ExitCode != 2 {
		t.Errorf("Usagef() ExitCode = %d, want 2", result.ExitCode)
	}
	if result.Output != os.Stderr {
		t.Error("Usagef() expected output to stderr")
	}
	if result.Message != "unknown flag: --frobnicate" {
		t.Errorf("Usagef() Message = %q", result.Message)
	}
}

func TestPrint(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	result := &Result{
		Output:   &buf,
		ExitCode: 0,
		Message:  "1 file processed",
	}

	result.Print()

	if buf.String() != "1 file processed" {
		t.Errorf("Print() output = %q", buf.String())
	}
}

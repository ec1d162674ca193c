package assert

import (
	"testing"
	"time"

	"github.com/jacoelho/certq/internal/certq/model"
)

func TestEvaluate(t *testing.T) {
	t.Parallel()

	predicateInput := model.Predicate{
		Operation: "equals",
		Value:     200,
		HasValue:  true,
	}

	ok, err := Evaluate(200, predicateInput)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if !ok {
		t.Fatalf("Evaluate() = false, want true")
	}
}

func TestEvaluateCertificateExpiry(t *testing.T) {
	t.Parallel()

	predicateInput := model.Predicate{
		Operation: "greater_than",
		Value:     "2024-01-01T00:00:00Z",
		HasValue:  true,
	}

	expiry := time.Date(2026, 1, 10, 8, 29, 52, 0, time.UTC)
	ok, err := Evaluate(expiry, predicateInput)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if !ok {
		t.Fatalf("Evaluate() = false, want true")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	err := Validate(model.Predicate{
		Operation: "exists",
		Value:     true,
		HasValue:  true,
	})
	if err == nil {
		t.Fatalf("Validate() expected error for exists with value")
	}
}

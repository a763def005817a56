package errors

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewMissingWordError(t *testing.T) {
	tests := []struct {
		name     string
		word     string
		source   string
		setIndex int
		wantMsg  string
	}{
		{
			name:     "definitional set",
			word:     "queen",
			source:   SourceDefinitional,
			setIndex: 2,
			wantMsg:  "debias: word 'queen' from definitional set 2 is not in the vocabulary",
		},
		{
			name:     "target words",
			word:     "doctor",
			source:   SourceTarget,
			setIndex: -1,
			wantMsg:  "debias: word 'doctor' from target words is not in the vocabulary",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewMissingWordError(tt.word, tt.source, tt.setIndex)

			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			// スタックトレースの存在確認
			formatted := fmt.Sprintf("%+v", err)
			if !strings.Contains(formatted, "errors_test.go") {
				t.Error("Expected stack trace to contain test file name")
			}

			var missing *MissingWordError
			if !As(err, &missing) {
				t.Fatal("Error should be castable to *MissingWordError")
			}
			if missing.Word != tt.word || missing.Source != tt.source {
				t.Errorf("got word=%q source=%q", missing.Word, missing.Source)
			}
		})
	}
}

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("HardDebias", "TransformToCopy")

	want := "debias: HardDebias: this model is not fitted yet. Call Fit() before using TransformToCopy()"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var notFittedErr *NotFittedError
	if !As(err, &notFittedErr) {
		t.Error("Error should be castable to *NotFittedError")
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("HardDebias.TransformInPlace", 300, 50, 1)

	want := "debias: HardDebias.TransformInPlace: dimension mismatch on axis 1 (dimensions). Expected 300, got 50"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var dimErr *DimensionError
	if !As(err, &dimErr) {
		t.Error("Error should be castable to *DimensionError")
	}
}

func TestNewInsufficientMemoryError(t *testing.T) {
	cause := New("budget exhausted")
	err := NewInsufficientMemoryError("TransformToCopy", 4096, 1024, cause)

	if !strings.Contains(err.Error(), "use TransformInPlace") {
		t.Errorf("expected remediation hint, got %q", err.Error())
	}

	var memErr *InsufficientMemoryError
	if !As(err, &memErr) {
		t.Fatal("Error should be castable to *InsufficientMemoryError")
	}
	if memErr.RequiredBytes != 4096 || memErr.AvailableBytes != 1024 {
		t.Errorf("unexpected byte counts: %+v", memErr)
	}
	if !Is(err, cause) {
		t.Error("cause should be reachable through the chain")
	}
}

func TestModelErrorChaining(t *testing.T) {
	err := NewModelError("HardDebias.Fit", "empty data", ErrEmptyData)

	if err.Error() != "debias: HardDebias.Fit: empty data: empty data" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !Is(err, ErrEmptyData) {
		t.Error("Expected Is(err, ErrEmptyData) to be true")
	}

	wrapped := Wrapf(err, "fit criterion %s", "gender")
	if !strings.Contains(wrapped.Error(), "fit criterion gender") {
		t.Error("Expected wrapped error to contain wrapping message")
	}
	var modelErr *ModelError
	if !As(wrapped, &modelErr) {
		t.Error("wrapped error should still be a *ModelError")
	}
}

func TestWarn_UsesZerologWhenConfigured(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	SetZerologWarnFunc(func(w error) {
		ev := logger.Warn()
		if m, ok := w.(zerolog.LogObjectMarshaler); ok {
			ev = ev.EmbedObject(m)
		}
		ev.Msg(w.Error())
	})
	defer SetZerologWarnFunc(nil)

	Warn(NewDegenerateDirectionWarning("fit", "gender", 0, 0))

	out := buf.String()
	if !strings.Contains(out, `"type":"DegenerateDirectionWarning"`) {
		t.Errorf("expected structured warning, got %s", out)
	}
	if !strings.Contains(out, `"criterion":"gender"`) {
		t.Errorf("expected criterion field, got %s", out)
	}
}

func TestWarn_FallsBackToHandler(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []error
	)
	SetWarningHandler(func(w error) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, w)
	})
	defer SetWarningHandler(func(error) {})

	Warn(NewDegenerateDirectionWarning("neutralize", "race", 1, 1e-12))

	if len(seen) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(seen))
	}
	var w *DegenerateDirectionWarning
	if !As(seen[0], &w) || w.Component != 1 {
		t.Errorf("unexpected warning %v", seen[0])
	}
}

func TestCheckVector(t *testing.T) {
	if err := CheckVector("neutralize", "nurse", []float64{0.1, -0.2}); err != nil {
		t.Errorf("unexpected error %v", err)
	}

	err := CheckVector("equalize", "king", []float64{0.1, math.NaN()})
	var numErr *NumericalInstabilityError
	if !As(err, &numErr) {
		t.Fatalf("expected NumericalInstabilityError, got %v", err)
	}
	if numErr.Word != "king" {
		t.Errorf("Word = %q", numErr.Word)
	}
}

func TestSafeSqrt(t *testing.T) {
	if got := SafeSqrt(-0.25); got != 0 {
		t.Errorf("SafeSqrt(-0.25) = %v, want 0", got)
	}
	if got := SafeSqrt(0.25); got != 0.5 {
		t.Errorf("SafeSqrt(0.25) = %v, want 0.5", got)
	}
	if got := SafeDivide(1, 1e-12); got != 0 {
		t.Errorf("SafeDivide by ~0 = %v, want 0", got)
	}
}

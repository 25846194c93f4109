package errors_test

import (
	"errors"
	"fmt"
	"testing"

	apperrors "github.com/adventure-scaler/scaler/internal/errors"
)

func TestErrorIsByCode(t *testing.T) {
	err := apperrors.Malformed("tokens[0].x", "expected number")
	if !errors.Is(err, apperrors.ErrMalformedScene) {
		t.Fatal("expected malformed scene error to match sentinel")
	}
	if errors.Is(err, apperrors.ErrArchiveFormat) {
		t.Fatal("did not expect archive format match")
	}

	wrapped := fmt.Errorf("scale: %w", err.WithEntry("scene/a.json"))
	if !errors.Is(wrapped, apperrors.ErrMalformedScene) {
		t.Fatal("expected match through fmt wrapping")
	}

	var appErr *apperrors.Error
	if !errors.As(wrapped, &appErr) {
		t.Fatal("expected errors.As to find *Error")
	}
	if appErr.Entry() != "scene/a.json" {
		t.Errorf("expected entry scene/a.json, got %q", appErr.Entry())
	}
	if appErr.Field() != "tokens[0].x" {
		t.Errorf("expected field tokens[0].x, got %q", appErr.Field())
	}
}

func TestWithDoesNotMutateOriginal(t *testing.T) {
	base := apperrors.Malformed("width", "missing")
	_ = base.WithEntry("scene/b.json")
	if base.Entry() != "" {
		t.Fatalf("expected original to stay without entry, got %q", base.Entry())
	}
}

func TestErrorMessage(t *testing.T) {
	cause := errors.New("zip: not a valid zip file")
	err := apperrors.Wrap(apperrors.CodeArchiveFormat, "open input archive", cause).WithEntry("in.fvttadv")

	want := "open input archive (entry in.fvttadv): zip: not a valid zip file"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable")
	}
}

package errors

import (
	"errors"
	"testing"
)

func TestDomainError(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		err := New(CodeParse, "could not parse file")
		if err.Error() != "[PARSE_ERROR] could not parse file" {
			t.Errorf("expected [PARSE_ERROR] could not parse file, got %s", err.Error())
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		original := errors.New("original error")
		err := Wrap(original, CodeStorage, "snapshot insert failed")
		expected := "[STORAGE_ERROR] snapshot insert failed: original error"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
	})

	t.Run("IsCode", func(t *testing.T) {
		err := New(CodeConfig, "rules file unreadable")
		if !IsCode(err, CodeConfig) {
			t.Error("expected IsCode to return true for CodeConfig")
		}
		if IsCode(err, CodeParse) {
			t.Error("expected IsCode to return false for CodeParse")
		}
	})

	t.Run("IsCodeWithWrapped", func(t *testing.T) {
		original := errors.New("original error")
		err := Wrap(original, CodeInternal, "internal failure")
		if !IsCode(err, CodeInternal) {
			t.Error("expected IsCode to return true for wrapped CodeInternal")
		}
	})

	t.Run("WithContext", func(t *testing.T) {
		err := New(CodeParse, "could not parse file")
		var de *DomainError
		if !errors.As(err, &de) {
			t.Fatal("expected DomainError")
		}
		de.WithContext(CtxPath, "a/b.ts")
		if de.Context[CtxPath] != "a/b.ts" {
			t.Errorf("expected context path a/b.ts, got %v", de.Context[CtxPath])
		}
	})
}

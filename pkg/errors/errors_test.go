package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidMarker, "unexpected token %q", "===")

	if err.Code != ErrCodeInvalidMarker {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidMarker)
	}

	if err.Message != `unexpected token "==="` {
		t.Errorf("Message = %v, want %v", err.Message, `unexpected token "==="`)
	}

	expected := `INVALID_MARKER: unexpected token "==="`
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("permission denied")
	err := Wrap(ErrCodeMissingMetadata, cause, "reading METADATA for %s", "requests")

	if err.Code != ErrCodeMissingMetadata {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeMissingMetadata)
	}

	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}

	expected := "MISSING_METADATA: reading METADATA for requests: permission denied"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeDuplicatePackage, "test"),
			code:     ErrCodeDuplicatePackage,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeDuplicatePackage, "test"),
			code:     ErrCodeMissingMetadata,
			expected: false,
		},
		{
			name:     "outer code wins",
			err:      Wrap(ErrCodeInvalidFormat, New(ErrCodeInvalidRequirement, "inner"), "outer"),
			code:     ErrCodeInvalidFormat,
			expected: true,
		},
		{
			name:     "fmt wrapped",
			err:      errorsJoinLike(New(ErrCodeFileNotFound, "missing")),
			code:     ErrCodeFileNotFound,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func errorsJoinLike(err error) error {
	return errors.Join(errors.New("context"), err)
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeInternal, "x")); got != ErrCodeInternal {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeInternal)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode() = %v, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"coded", New(ErrCodeInvalidInput, "bad input"), "bad input"},
		{"wrapped", Wrap(ErrCodeInvalidFormat, errors.New("eof"), "parsing poetry.lock"), "parsing poetry.lock: eof"},
		{"plain", errors.New("plain error"), "plain error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

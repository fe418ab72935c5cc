package errors

import (
	"bytes"
	stdErrors "errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacpanError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *PacpanError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(CategoryConfig, SeverityFatal, "configuration invalid"),
			expected: "config (fatal): configuration invalid",
		},
		{
			name:     "error with cause",
			err:      Wrap(fmt.Errorf("file not found"), CategoryConfig, SeverityFatal, "failed to load config"),
			expected: "config (fatal): failed to load config: file not found",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := test.err.Error()
			if result != test.expected {
				t.Errorf("Error() = %q, want %q", result, test.expected)
			}
		})
	}
}

func TestPacpanError_WithContext(t *testing.T) {
	err := New(CategoryBuild, SeverityWarning, "bundle failed").
		WithContext("entry", "src/index.js").
		WithContext("stage", "bundle")

	if err.Context == nil {
		t.Fatal("Context should not be nil")
	}
	if err.Context["entry"] != "src/index.js" {
		t.Errorf("Context[entry] = %v, want src/index.js", err.Context["entry"])
	}
	if err.Context["stage"] != "bundle" {
		t.Errorf("Context[stage] = %v, want bundle", err.Context["stage"])
	}
}

func TestIsCategory(t *testing.T) {
	configErr := New(CategoryConfig, SeverityFatal, "config error")
	buildErr := New(CategoryBuild, SeverityWarning, "build error")
	wrapped := fmt.Errorf("outer: %w", buildErr)
	standardErr := fmt.Errorf("standard error")

	tests := []struct {
		name     string
		err      error
		category ErrorCategory
		expected bool
	}{
		{"config error matches config category", configErr, CategoryConfig, true},
		{"config error doesn't match build category", configErr, CategoryBuild, false},
		{"build error matches build category", buildErr, CategoryBuild, true},
		{"wrapped build error matches build category", wrapped, CategoryBuild, true},
		{"standard error doesn't match any category", standardErr, CategoryConfig, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := IsCategory(test.err, test.category)
			if result != test.expected {
				t.Errorf("IsCategory() = %v, want %v", result, test.expected)
			}
		})
	}
}

func TestGetCategory(t *testing.T) {
	assert.Equal(t, CategoryFileSystem, GetCategory(WriteFailed("/x", io.ErrShortWrite)))
	assert.Equal(t, CategoryInternal, GetCategory(stdErrors.New("plain")))
}

func TestConvenienceFunctions(t *testing.T) {
	t.Run("ConfigNotFound", func(t *testing.T) {
		err := ConfigNotFound("/path/to/.panels.yaml")
		assert.Equal(t, CategoryConfig, err.Category)
		assert.Equal(t, SeverityFatal, err.Severity)
		assert.Equal(t, "/path/to/.panels.yaml", err.Context["path"])
	})

	t.Run("BuildFailed", func(t *testing.T) {
		cause := fmt.Errorf("syntax error")
		err := BuildFailed("bundle", cause)
		assert.Equal(t, CategoryBuild, err.Category)
		assert.Equal(t, "bundle", err.Context["stage"])
		assert.True(t, stdErrors.Is(err, cause))
	})

	t.Run("ValidationFailed", func(t *testing.T) {
		err := ValidationFailed("expose", "must not be empty")
		assert.Equal(t, CategoryValidation, err.Category)
		assert.Equal(t, "expose", err.Context["field"])
		assert.Equal(t, "must not be empty", err.Context["reason"])
	})
}

func TestCLIErrorAdapter_ExitCodes(t *testing.T) {
	a := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.Equal(t, 0, a.ExitCodeFor(nil))
	assert.Equal(t, 7, a.ExitCodeFor(EntryNotFound("src/index.js")))
	assert.Equal(t, 2, a.ExitCodeFor(ValidationFailed("expose", "empty")))
	assert.Equal(t, 11, a.ExitCodeFor(BuildFailed("bundle", io.EOF)))
	assert.Equal(t, 11, a.ExitCodeFor(WriteFailed("out.js", io.EOF)))
	assert.Equal(t, 10, a.ExitCodeFor(InternalError("boom", io.EOF)))
	assert.Equal(t, 1, a.ExitCodeFor(stdErrors.New("plain")))
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var out bytes.Buffer
	code := -1
	a := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(io.Discard, nil))).
		WithOutput(&out, func(c int) { code = c })

	a.HandleError(EntryNotFound("/app/src/index.js"))

	require.Equal(t, 7, code)
	assert.Equal(t, "entry module not found: /app/src/index.js\n", out.String())
}

func TestCLIErrorAdapter_FormatBuildError(t *testing.T) {
	a := NewCLIErrorAdapter(false, nil)
	msg := a.FormatError(BuildFailed("bundle", stdErrors.New("unexpected token")))
	assert.Equal(t, "build: build failed: unexpected token", msg)

	verbose := NewCLIErrorAdapter(true, nil)
	assert.Equal(t, "build (fatal): build failed: unexpected token",
		verbose.FormatError(BuildFailed("bundle", stdErrors.New("unexpected token"))))
}

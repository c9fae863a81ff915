package skills

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestResumeReaderRead(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		path      string
		convert   converter
		expect    string
		converted bool
	}{
		{
			name:      "pdf",
			path:      "data/resume.pdf",
			convert:   func(string) (string, error) { return "  Scrum Master \n", nil },
			expect:    "Scrum Master",
			converted: true,
		},
		{
			name:      "docx with upper-case extension",
			path:      "data/RESUME.DOCX",
			convert:   func(string) (string, error) { return "Agile", nil },
			expect:    "Agile",
			converted: true,
		},
		{
			name:      "conversion failure yields empty text",
			path:      "data/resume.pdf",
			convert:   func(string) (string, error) { return "", errors.New("pdftotext not found") },
			expect:    "",
			converted: true,
		},
		{
			name:    "unsupported format yields empty text",
			path:    "data/resume.txt",
			expect:  "",
			convert: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			called := false
			reader := NewResumeReader(zap.NewNop())
			reader.convert = func(path string) (string, error) {
				called = true
				if tt.convert == nil {
					t.Fatalf("converter must not be called for %s", path)
				}
				return tt.convert(path)
			}

			if got := reader.Read(tt.path); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
			if called != tt.converted {
				t.Fatalf("expected converter called=%v, got %v", tt.converted, called)
			}
		})
	}
}

func TestResumeReaderLogsUnsupportedFormat(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)
	reader := NewResumeReader(zap.New(core))

	reader.Read("resume.odt")

	if observed.FilterMessage("unsupported resume format, use PDF or DOCX").Len() != 1 {
		t.Fatalf("expected unsupported format warning")
	}
}

package skills

import (
	"path/filepath"
	"strings"

	"code.sajari.com/docconv"
	"go.uber.org/zap"
)

// converter turns a document on disk into plain text.
type converter func(path string) (string, error)

func docconvConverter(path string) (string, error) {
	res, err := docconv.ConvertPath(path)
	if err != nil {
		return "", err
	}
	return res.Body, nil
}

// ResumeReader extracts the raw text of a PDF or DOCX résumé.
type ResumeReader struct {
	convert converter
	logger  *zap.Logger
}

func NewResumeReader(logger *zap.Logger) *ResumeReader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResumeReader{convert: docconvConverter, logger: logger}
}

// Read returns the résumé text. Unsupported formats and conversion failures
// are logged and yield empty text.
func (r *ResumeReader) Read(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf", ".docx":
	default:
		r.logger.Warn("unsupported resume format, use PDF or DOCX",
			zap.String("path", path),
			zap.String("extension", ext),
		)
		return ""
	}

	text, err := r.convert(path)
	if err != nil {
		r.logger.Warn("extracting resume text failed", zap.String("path", path), zap.Error(err))
		return ""
	}

	return strings.TrimSpace(text)
}

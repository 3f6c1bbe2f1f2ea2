package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/kailas-cloud/clausewise/internal/domain"
	"github.com/kailas-cloud/clausewise/internal/logger"
)

// pdfUnits extracts one text unit per page. Pages that cannot be parsed
// are skipped and logged so one broken page never sinks the document.
func pdfUnits(ctx context.Context, data []byte) ([]Unit, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse pdf: %w: %v", domain.ErrUnsupportedDocument, err)
	}

	log := logger.FromContext(ctx)
	pageCount := reader.NumPage()
	units := make([]Unit, 0, pageCount)
	for i := 1; i <= pageCount; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			log.Warn("skipping unparseable pdf page", zap.Int("page", i), zap.Error(err))
			continue
		}
		if text = strings.TrimSpace(text); text == "" {
			continue
		}
		units = append(units, Unit{Text: text, Page: i})
	}
	return units, nil
}

package insights

import (
	"context"
	"errors"

	"tajirpos/internal/report"
)

// Advisor turns a business stats snapshot into a written analysis.
type Advisor interface {
	Summarize(ctx context.Context, stats report.Stats) (string, error)
}

// ErrEmptyReply is returned when the upstream model answered with no text.
var ErrEmptyReply = errors.New("model returned no text")

// User-facing fallback texts, kept in the storefront's language.
const (
	FallbackMissingKey = "الرجاء تكوين مفتاح API للحصول على التحليل."
	FallbackFailure    = "حدث خطأ أثناء تحليل البيانات. تأكد من مفتاح API."
	FallbackEmpty      = "لم يتم استلام رد من النموذج."
)

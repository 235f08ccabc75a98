package explain

import (
	"context"

	"github.com/nao1215/crmscan/internal/model"
)

// Generator produces a narrative explanation for a quality report.
//
// Implementations must treat the report as read-only and must return an
// empty string without contacting the provider when the report carries
// no issues: there is nothing to explain about clean data.
type Generator interface {
	// Generate returns prose describing why the report's issues matter
	// and in which order to clean them up.
	Generate(ctx context.Context, report *model.QualityReport) (string, error)
}

// Generation parameters shared by all providers. A low temperature keeps
// the narrative close to the listed issues instead of inventing new ones,
// and the token cap bounds cost for large reports.
const (
	defaultTemperature float32 = 0.3
	defaultMaxTokens           = 1500
)

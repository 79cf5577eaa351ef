package driving

import (
	"context"

	"github.com/custodia-labs/speakmath/internal/core/domain"
)

// ResultActionService provides actions on conversion results for external actors.
type ResultActionService interface {
	// CopyToClipboard copies the spoken output to the system clipboard.
	CopyToClipboard(ctx context.Context, result *domain.ProcessingResult) error
}

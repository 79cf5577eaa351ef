package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/atotto/clipboard"

	"github.com/custodia-labs/speakmath/internal/core/domain"
	"github.com/custodia-labs/speakmath/internal/core/ports/driving"
)

// Ensure ResultActionService implements the interface.
var _ driving.ResultActionService = (*ResultActionService)(nil)

// ResultActionService provides actions on conversion results.
type ResultActionService struct {
	write func(string) error
}

// NewResultActionService creates a result action service backed by the
// system clipboard.
func NewResultActionService() *ResultActionService {
	if clipboard.Unsupported {
		return &ResultActionService{write: func(string) error {
			return errors.New("no clipboard utility found (install xclip or xsel)")
		}}
	}
	return &ResultActionService{write: clipboard.WriteAll}
}

// CopyToClipboard copies the result's spoken output to the system clipboard.
func (s *ResultActionService) CopyToClipboard(_ context.Context, result *domain.ProcessingResult) error {
	if result == nil {
		return fmt.Errorf("%w: result is nil", domain.ErrInvalidInput)
	}
	if err := s.write(result.Output); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	return nil
}

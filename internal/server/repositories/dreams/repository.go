// Package dreams stores journal entries per user and calendar day.
package dreams

import (
	"context"

	"github.com/dmitrijs2005/dreamteller/internal/server/models"
)

// Repository persists dreams. Lists come back in creation order and are
// never nil.
type Repository interface {
	Create(ctx context.Context, dream *models.Dream) error
	// Get returns common.ErrorNotFound unless the dream exists and belongs
	// to userID.
	Get(ctx context.Context, userID, id string) (*models.Dream, error)
	ListByDay(ctx context.Context, userID, dateKey string) ([]models.Dream, error)
	// DaysWithDreams returns the distinct date keys starting with
	// monthPrefix (YYYYMM), ascending.
	DaysWithDreams(ctx context.Context, userID, monthPrefix string) ([]string, error)
	SetInterpretation(ctx context.Context, id string, in models.Interpretation) error
}

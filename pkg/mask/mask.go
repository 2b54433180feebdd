// Package mask tracks relations whose deletion is in flight so reads can hide them while the
// remote counterpart is being removed.
package mask

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/Ramsey-B/verzoeken/pkg/metrics"
)

// Mask is a set of relation ids. Add and Remove are atomic with respect to each other.
type Mask interface {
	Add(ctx context.Context, id uuid.UUID) error
	Remove(ctx context.Context, id uuid.UUID) error
	Marked(ctx context.Context) ([]uuid.UUID, error)
}

// Hold marks ids, runs fn and unmarks them again on every exit path, including a panic in fn.
func Hold(ctx context.Context, m Mask, ids []uuid.UUID, fn func(ctx context.Context) error) (err error) {
	added := make([]uuid.UUID, 0, len(ids))

	defer func() {
		var removeErr *multierror.Error
		for _, id := range added {
			if rmErr := m.Remove(ctx, id); rmErr != nil {
				removeErr = multierror.Append(removeErr, fmt.Errorf("failed to unmark %s: %w", id, rmErr))
			}
		}
		metrics.MaskedRelations.Sub(float64(len(added)))
		// the error of fn takes precedence
		if err == nil {
			err = removeErr.ErrorOrNil()
		}
	}()

	for _, id := range ids {
		if err = m.Add(ctx, id); err != nil {
			return fmt.Errorf("failed to mark %s: %w", id, err)
		}
		added = append(added, id)
		metrics.MaskedRelations.Inc()
	}

	return fn(ctx)
}

// Contains reports whether id is currently marked.
func Contains(ctx context.Context, m Mask, id uuid.UUID) (bool, error) {
	marked, err := m.Marked(ctx)
	if err != nil {
		return false, err
	}
	for _, candidate := range marked {
		if candidate == id {
			return true, nil
		}
	}
	return false, nil
}

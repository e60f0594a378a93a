package catalog

import (
	"context"
	"errors"

	"github.com/juanjparedez/mundobl/internal/models"
)

// ListReferences returns every row of a lookup table with its series count.
func (s *Service) ListReferences(ctx context.Context, kind models.RefKind) ([]*models.Reference, error) {
	if !kind.Valid() {
		return nil, invalid("kind", "unknown reference kind %q", kind)
	}
	return s.store.Repos().References.List(ctx, kind)
}

func isDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

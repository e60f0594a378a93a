package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/juanjparedez/mundobl/internal/countries"
	"github.com/juanjparedez/mundobl/internal/models"
)

// ResolveOrCreate returns the id of the kind row named name, inserting it
// when it does not exist yet. Matching is exact and case-sensitive; callers
// trim and skip blank names. An existing row is returned untouched.
//
// The lookup and the insert are separate statements, so two requests
// creating the same name race. The loser gets a *ConflictError wrapping
// ErrDuplicate from the unique index on name.
func ResolveOrCreate(ctx context.Context, refs ReferenceRepository, kind models.RefKind, name string) (int64, error) {
	if !kind.Valid() {
		return 0, invalid("kind", "unknown reference kind %q", kind)
	}
	if strings.TrimSpace(name) == "" {
		return 0, invalid(string(kind), "name is blank")
	}

	id, err := refs.FindByName(ctx, kind, name)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return 0, err
	}

	var code *string
	if kind == models.KindCountry {
		if c := countries.Code(name); c != "" {
			code = &c
		}
	}

	id, err = refs.Insert(ctx, kind, name, code)
	if errors.Is(err, ErrDuplicate) {
		return 0, &ConflictError{Kind: string(kind), Name: name, Err: err}
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

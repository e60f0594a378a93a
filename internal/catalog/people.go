package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/juanjparedez/mundobl/internal/models"
)

// ──────────────────── Actors & directors ────────────────────

// PersonDetail is a profile plus the series it is credited on.
type PersonDetail struct {
	*models.Person
	Credits []models.Credit `json:"credits"`
}

// MergeResult reports a completed merge.
type MergeResult struct {
	Target *models.Person `json:"target"`
	Moved  int            `json:"moved"`
}

func personKind(kind models.RefKind) error {
	if !kind.IsPerson() {
		return invalid("kind", "%q has no profile", kind)
	}
	return nil
}

func (s *Service) ListPeople(ctx context.Context, kind models.RefKind, search string) ([]*models.Person, error) {
	if err := personKind(kind); err != nil {
		return nil, err
	}
	return s.store.Repos().People.List(ctx, kind, strings.TrimSpace(search))
}

func (s *Service) GetPerson(ctx context.Context, kind models.RefKind, id int64) (*PersonDetail, error) {
	if err := personKind(kind); err != nil {
		return nil, err
	}
	people := s.store.Repos().People
	p, err := people.GetByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	credits, err := people.Credits(ctx, kind, id)
	if err != nil {
		return nil, fmt.Errorf("load credits: %w", err)
	}
	return &PersonDetail{Person: p, Credits: credits}, nil
}

// UpdatePerson edits a profile. Renaming onto an existing name is a conflict.
func (s *Service) UpdatePerson(ctx context.Context, kind models.RefKind, id int64, in *PersonInput) (*models.Person, error) {
	if err := personKind(kind); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	people := s.store.Repos().People
	p, err := people.GetByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Biography != nil {
		p.Biography = blankToNil(*in.Biography)
	}
	if in.Nationality != nil {
		p.Nationality = blankToNil(*in.Nationality)
	}
	if in.BirthDate != nil {
		p.BirthDate = nil
		if v := strings.TrimSpace(*in.BirthDate); v != "" {
			t, _ := time.Parse(time.DateOnly, v)
			p.BirthDate = &t
		}
	}
	if url := s.hostImage(ctx, in.ImageURL, models.ImageOwner(kind)); url != nil {
		p.ImageURL = blankToNil(*url)
	}

	if err := people.Update(ctx, kind, p); err != nil {
		if isDuplicate(err) {
			return nil, &ConflictError{Kind: string(kind), Name: p.Name, Err: err}
		}
		return nil, err
	}
	s.publish(personEvent(kind, "updated"), p)
	return p, nil
}

// DeletePerson refuses while any series still links the person.
func (s *Service) DeletePerson(ctx context.Context, kind models.RefKind, id int64) error {
	if err := personKind(kind); err != nil {
		return err
	}
	err := s.store.WithTx(ctx, func(r Repos) error {
		if _, err := r.People.GetByID(ctx, kind, id); err != nil {
			return err
		}
		n, err := r.People.CountReferences(ctx, kind, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return &ReferentialBlockError{Kind: kind, ID: id, References: n}
		}
		return r.People.Delete(ctx, kind, id)
	})
	if err != nil {
		return err
	}
	s.logger.Info("person deleted", "kind", kind, "id", id)
	s.publish(personEvent(kind, "deleted"), map[string]int64{"id": id})
	return nil
}

// MergePeople moves every credit of source onto target and deletes source.
func (s *Service) MergePeople(ctx context.Context, kind models.RefKind, in MergeInput) (*MergeResult, error) {
	if err := personKind(kind); err != nil {
		return nil, err
	}
	if in.SourceID <= 0 || in.TargetID <= 0 {
		return nil, invalid("sourceId", "sourceId and targetId are required")
	}
	if in.SourceID == in.TargetID {
		return nil, invalid("targetId", "cannot merge %s %d into itself", kind, in.SourceID)
	}

	var res MergeResult
	err := s.store.WithTx(ctx, func(r Repos) error {
		if _, err := r.People.GetByID(ctx, kind, in.SourceID); err != nil {
			return err
		}
		target, err := r.People.GetByID(ctx, kind, in.TargetID)
		if err != nil {
			return err
		}
		moved, err := r.People.Reassign(ctx, kind, in.SourceID, in.TargetID)
		if err != nil {
			return fmt.Errorf("reassign %s credits: %w", kind, err)
		}
		if err := r.People.Delete(ctx, kind, in.SourceID); err != nil {
			return err
		}
		res = MergeResult{Target: target, Moved: moved}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("people merged", "kind", kind, "source", in.SourceID, "target", in.TargetID, "moved", res.Moved)
	s.publish(personEvent(kind, "merged"), map[string]interface{}{
		"sourceId": in.SourceID,
		"targetId": in.TargetID,
		"moved":    res.Moved,
	})
	return &res, nil
}

package app

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pravinkannan18/RFID-Reader-Application/internal/domain"
)

type TagService struct {
	repo     TagNameRepository
	pipeline Pipeline
}

func NewTagService(repo TagNameRepository, pipeline Pipeline) *TagService {
	return &TagService{repo: repo, pipeline: pipeline}
}

type TagName struct {
	TagID string
	Name  string
}

// SetDisplayName stores a name for a tag that has been seen or named before.
// The next published snapshot carries the new name.
func (s *TagService) SetDisplayName(ctx context.Context, tagID, name string) (TagName, error) {
	tagID = strings.TrimSpace(tagID)
	name = strings.TrimSpace(name)
	switch {
	case tagID == "":
		return TagName{}, domain.Validation("tag_id", "is required")
	case name == "":
		return TagName{}, domain.Validation("name", "is required")
	case len(name) > domain.MaxNameLength:
		return TagName{}, domain.Validation("name", fmt.Sprintf("must be at most %d characters", domain.MaxNameLength))
	}

	known, err := s.pipeline.Known(ctx, tagID)
	if err != nil {
		return TagName{}, err
	}
	if !known {
		return TagName{}, domain.ErrTagNotFound
	}

	if err := s.repo.SetTagName(ctx, tagID, name); err != nil {
		return TagName{}, err
	}
	if err := s.pipeline.Rename(ctx, tagID, name); err != nil {
		return TagName{}, err
	}
	return TagName{TagID: tagID, Name: name}, nil
}

// ListNames returns every stored name ordered by tag id.
func (s *TagService) ListNames(ctx context.Context) ([]TagName, error) {
	names, err := s.repo.ListTagNames(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]TagName, 0, len(names))
	for id, name := range names {
		out = append(out, TagName{TagID: id, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TagID < out[j].TagID })
	return out, nil
}

// Load hands stored names to the pipeline.
func (s *TagService) Load(ctx context.Context) error {
	names, err := s.repo.ListTagNames(ctx)
	if err != nil {
		return fmt.Errorf("load tag names: %w", err)
	}
	return s.pipeline.SetNames(ctx, names)
}

package casestudy

import (
	"errors"
	"fmt"
)

// ErrCaseStudyNotFound is returned when no case study matches the lookup.
var ErrCaseStudyNotFound = errors.New("case study not found")

// ErrSlugAlreadyExists is returned when creating or updating a case study
// with a slug that another study already uses.
type ErrSlugAlreadyExists struct {
	Slug string
}

func (e ErrSlugAlreadyExists) Error() string {
	return fmt.Sprintf("slug already exists: %s", e.Slug)
}

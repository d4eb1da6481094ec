// Package portal drives the external recruiting portal through a real
// browser. The portal is a collaborator, not part of the core: navigation and
// DOM reads are blocking calls with their own timeouts, and a single failure
// aborts the request, with no internal retry loop.
package portal

import (
	"context"
	"fmt"

	"github.com/satonodoka/herp-recommender/internal/types"
)

// Portal is what the pipeline needs from the recruiting site: the visible
// posting titles, selection of one posting, and the resulting form's fields.
type Portal interface {
	ListPostings(ctx context.Context) ([]string, error)
	SelectPosting(ctx context.Context, title string) error
	ReadFormFields(ctx context.Context) ([]types.FormField, error)
}

// Error represents a failed portal interaction.
type Error struct {
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("portal %s: %s: %v", e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("portal %s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

package leads

import (
	"context"
	"encoding/json"
	"fmt"
)

// Collection is an ordered sequence of leads in server response order.
type Collection []Lead

// ParseCollection decodes a JSON array of lead objects.
func ParseCollection(data []byte) (Collection, error) {
	var out Collection
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("leads: decode collection: %w", err)
	}
	if out == nil {
		out = Collection{}
	}
	return out, nil
}

// Fetcher loads a fresh lead collection.
type Fetcher func(ctx context.Context) (Collection, error)

// ViewState holds the lead collection of a single page render.
type ViewState struct {
	Leads Collection
}

// Refresh replaces the state with a fresh fetch. On failure the previous
// collection is kept and the error is returned for logging only.
func (s *ViewState) Refresh(ctx context.Context, fetch Fetcher) error {
	if fetch == nil {
		return fmt.Errorf("leads: fetcher required")
	}
	fetched, err := fetch(ctx)
	if err != nil {
		return err
	}
	// a request that went away while the fetch was in flight must not
	// publish late results
	if err := ctx.Err(); err != nil {
		return err
	}
	if fetched == nil {
		fetched = Collection{}
	}
	s.Leads = fetched
	return nil
}

// Empty reports whether there is nothing to render yet.
func (s *ViewState) Empty() bool {
	return s == nil || len(s.Leads) == 0
}

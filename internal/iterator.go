package internal

import (
	"context"
	"encoding/json"
	"iter"

	pkgerrs "github.com/jamesprial/go-instagram-api-wrapper/pkg/errors"
)

const (
	// DefaultHasMoreKey is the continuation flag of the "big list" endpoints.
	DefaultHasMoreKey = "big_list"
	// DefaultNextKey is the continuation token field.
	DefaultNextKey = "next_max_id"
)

// PageFunc fetches one page. token is empty for the first page.
type PageFunc func(ctx context.Context, token string) (*Response, error)

// CursorOptions names the fields of a list resource.
type CursorOptions struct {
	// ItemsKey is the field holding the page's items, e.g. "users" or "items".
	ItemsKey string
	// HasMoreKey is the continuation flag. Defaults to DefaultHasMoreKey.
	HasMoreKey string
	// NextKey is the continuation token. Defaults to DefaultNextKey.
	NextKey string
	// Limit stops iteration at the first page boundary where at least Limit items
	// have been yielded. The current page is always yielded in full, so more than
	// Limit items may come out. Zero means unbounded.
	Limit int
}

// Cursor is a lazy, forward-only sequence over a continuation-token list.
// Nothing is fetched until an item is needed. A Cursor is single-pass and not
// safe for concurrent use; build a new one to start over.
type Cursor[T any] struct {
	ctx   context.Context
	fetch PageFunc
	opts  CursorOptions

	buffer    []T
	bufferIdx int
	token     string
	started   bool
	hasMore   bool
	yielded   int
	pages     int
	err       error
}

// NewCursor creates a cursor. No request is made here.
func NewCursor[T any](ctx context.Context, fetch PageFunc, opts CursorOptions) *Cursor[T] {
	if opts.HasMoreKey == "" {
		opts.HasMoreKey = DefaultHasMoreKey
	}
	if opts.NextKey == "" {
		opts.NextKey = DefaultNextKey
	}
	return &Cursor[T]{
		ctx:     ctx,
		fetch:   fetch,
		opts:    opts,
		hasMore: true,
	}
}

// HasNext reports whether Next may return another item, fetching pages as
// needed. It returns false after an error; check Err.
func (c *Cursor[T]) HasNext() bool {
	if c.err != nil {
		return false
	}
	for c.bufferIdx >= len(c.buffer) {
		if !c.canFetch() {
			return false
		}
		if err := c.fetchPage(); err != nil {
			return false
		}
	}
	return true
}

// Next returns the next item. It returns errors.ErrNoMoreItems once the list is
// exhausted, or the page-fetch error that aborted the sequence.
func (c *Cursor[T]) Next() (T, error) {
	var zero T
	if !c.HasNext() {
		if c.err != nil {
			return zero, c.err
		}
		return zero, pkgerrs.ErrNoMoreItems
	}
	item := c.buffer[c.bufferIdx]
	c.bufferIdx++
	c.yielded++
	return item, nil
}

// Err returns the error that stopped the cursor, if any.
func (c *Cursor[T]) Err() error {
	return c.err
}

// Yielded returns the number of items returned so far.
func (c *Cursor[T]) Yielded() int {
	return c.yielded
}

// Pages returns the number of pages fetched so far.
func (c *Cursor[T]) Pages() int {
	return c.pages
}

// All returns the remaining items as a range-over-func sequence. A fetch error is
// yielded once with the zero item and ends the sequence.
func (c *Cursor[T]) All() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			item, err := c.Next()
			if err == pkgerrs.ErrNoMoreItems {
				return
			}
			if !yield(item, err) || err != nil {
				return
			}
		}
	}
}

// Collect drains the cursor. Items gathered before an error are returned with it.
func (c *Cursor[T]) Collect() ([]T, error) {
	var items []T
	for item, err := range c.All() {
		if err != nil {
			return items, err
		}
		items = append(items, item)
	}
	return items, nil
}

// canFetch decides, at a page boundary, whether another page should be requested.
func (c *Cursor[T]) canFetch() bool {
	if !c.started {
		return true
	}
	if !c.hasMore {
		return false
	}
	if c.opts.Limit > 0 && c.yielded >= c.opts.Limit {
		return false
	}
	return true
}

func (c *Cursor[T]) fetchPage() error {
	resp, err := c.fetch(c.ctx, c.token)
	if err != nil {
		c.err = err
		c.hasMore = false
		return err
	}
	c.started = true
	c.pages++

	var items []T
	if raw, ok := resp.Raw(c.opts.ItemsKey); ok && len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &items); err != nil {
			c.err = &pkgerrs.ParseError{Operation: "decode page", Message: "field " + c.opts.ItemsKey, Err: err}
			c.hasMore = false
			return c.err
		}
	}
	c.buffer = items
	c.bufferIdx = 0

	next := resp.String(c.opts.NextKey)
	c.hasMore = resp.Bool(c.opts.HasMoreKey) && next != "" && next != c.token
	c.token = next
	return nil
}

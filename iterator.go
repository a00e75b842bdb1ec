package igapi

import (
	"context"

	"github.com/jamesprial/go-instagram-api-wrapper/internal"
)

// Cursor is a lazy, forward-only sequence over a paginated list.
// No request is made until the first item is needed. Iterate with All:
//
//	for user, err := range client.Friends.Followers(ctx, id, nil).All() {
//		if err != nil {
//			return err
//		}
//		fmt.Println(user.Username)
//	}
//
// or with HasNext/Next. A Cursor cannot be rewound; build a new one to start over.
type Cursor[T any] = internal.Cursor[T]

// ListOptions bounds a cursor.
type ListOptions struct {
	// Limit stops paging once at least Limit items have been returned.
	// The page that crosses the limit is returned in full, so more than Limit
	// items may come out. Zero means no limit.
	Limit int

	// MaxID starts the listing at this continuation token instead of the first page.
	MaxID string
}

func (o *ListOptions) limit() int {
	if o == nil {
		return 0
	}
	return o.Limit
}

func (o *ListOptions) maxID() string {
	if o == nil {
		return ""
	}
	return o.MaxID
}

// listSpec describes how one list resource is paged.
type listSpec struct {
	endpoint   internal.Endpoint
	path       internal.Params
	query      internal.Params
	itemsKey   string
	hasMoreKey string
	tokenParam string
}

// newCursor builds a cursor over a GET list endpoint. The continuation token
// is sent as tokenParam (max_id unless stated otherwise).
func newCursor[T any](ctx context.Context, c *Client, list listSpec, opts *ListOptions) *Cursor[T] {
	tokenParam := list.tokenParam
	if tokenParam == "" {
		tokenParam = "max_id"
	}
	start := opts.maxID()

	fetch := func(ctx context.Context, token string) (*internal.Response, error) {
		if token == "" {
			token = start
		}
		query := internal.Params{}
		for k, v := range list.query {
			query[k] = v
		}
		if token != "" {
			query[tokenParam] = token
		}
		return list.endpoint.Call(ctx, c.dispatcher, list.path, query)
	}

	return internal.NewCursor[T](ctx, fetch, internal.CursorOptions{
		ItemsKey:   list.itemsKey,
		HasMoreKey: list.hasMoreKey,
		Limit:      opts.limit(),
	})
}

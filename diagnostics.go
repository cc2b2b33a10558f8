package pool

import "context"

type currentItemIDKey struct{}

func withCurrentItemID(ctx context.Context, id ID) context.Context {
	return context.WithValue(ctx, currentItemIDKey{}, id)
}

// CurrentItemID returns the id of the item currently being processed on the
// calling goroutine, if called from within a Hooks callback or an Item's
// ProcessMessage. Go has no thread-local storage; since each worker is a
// single dedicated goroutine processing one message at a time, the context
// passed down the call stack plays that role here.
func CurrentItemID(ctx context.Context) (ID, bool) {
	id, ok := ctx.Value(currentItemIDKey{}).(ID)
	return id, ok
}

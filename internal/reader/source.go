package reader

import "context"

// Read is the result of one poll: the tag ids seen plus anything that could
// not be decoded.
type Read struct {
	Tags      []string
	Malformed []error
}

// Source opens sessions against one reader.
type Source interface {
	Open(ctx context.Context) (Session, error)
	// Describe names the endpoint for logs.
	Describe() string
}

// Session is one connected conversation with a reader. A Poll error means
// the session is unusable and the link must reconnect.
type Session interface {
	Poll(ctx context.Context) (Read, error)
	Close() error
}

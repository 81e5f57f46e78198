package feeds

import "errors"

var (
	// ErrFeedNotResolvable indicates a feed reference could not be
	// converted to a canonical AT-URI (unknown handle, malformed URL, or
	// a failed resolution call). Not retried automatically.
	ErrFeedNotResolvable = errors.New("feed reference not resolvable")

	// ErrUnsupportedMode indicates a fetch mode this retriever does not
	// dispatch (thread retrieval lives in the threads service).
	ErrUnsupportedMode = errors.New("unsupported fetch mode")
)

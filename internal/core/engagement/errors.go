package engagement

import "errors"

var (
	// ErrNoSession indicates a write was attempted without an
	// authenticated session.
	ErrNoSession = errors.New("no authenticated session")

	// ErrEmptyPost indicates post creation with no text, images or quote.
	ErrEmptyPost = errors.New("post content is required")

	// ErrPostTooLong indicates post text exceeds the grapheme limit.
	ErrPostTooLong = errors.New("post text exceeds 300 graphemes")

	// ErrInvalidBlobRef indicates an image blob reference carries a CID
	// that does not decode.
	ErrInvalidBlobRef = errors.New("invalid blob reference")
)

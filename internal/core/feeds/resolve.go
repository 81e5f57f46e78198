package feeds

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/bluesky-social/indigo/atproto/syntax"
)

// DefaultFeedURI is the well-known Discover feed, used when no feed
// reference is given.
const DefaultFeedURI = "at://did:plc:z72i7hdynmk6r22z27h6tvur/app.bsky.feed.generator/whats-hot"

// feedCollection is the AT Protocol collection for feed generator records.
const feedCollection = "app.bsky.feed.generator"

// feedURLPattern matches https://bsky.app/profile/{handle-or-did}/feed/{rkey}
var feedURLPattern = regexp.MustCompile(`^https://bsky\.app/profile/([^/]+)/feed/([^/]+)$`)

// resolveFeedURI converts a feed reference into a canonical feed
// generator AT-URI. Already-canonical at:// references pass through after
// a syntax check; bsky.app feed URLs have their owner resolved to a DID
// first. Anything else is not resolvable.
func (s *feedService) resolveFeedURI(ctx context.Context, ref string) (string, error) {
	if strings.HasPrefix(ref, "at://") {
		if _, err := syntax.ParseATURI(ref); err != nil {
			return "", fmt.Errorf("%w: %s", ErrFeedNotResolvable, ref)
		}
		return ref, nil
	}

	matches := feedURLPattern.FindStringSubmatch(ref)
	if matches == nil {
		return "", fmt.Errorf("%w: %s", ErrFeedNotResolvable, ref)
	}

	owner := matches[1]
	rkey := matches[2]

	did := owner
	if !strings.HasPrefix(owner, "did:") {
		resolved, err := s.client.ResolveHandle(ctx, owner)
		if err != nil || resolved == "" {
			s.logger.Debug("feed owner resolution failed", "handle", owner, "error", err)
			return "", fmt.Errorf("%w: cannot resolve %s", ErrFeedNotResolvable, owner)
		}
		did = resolved
	}

	return fmt.Sprintf("at://%s/%s/%s", did, feedCollection, rkey), nil
}

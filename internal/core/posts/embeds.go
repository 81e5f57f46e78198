package posts

import "Skylark/internal/atproto/appview"

// Lexicon tags for resolved embed views.
const (
	embedVideoView = "app.bsky.embed.video#view"
)

// embedFacets is the four-way classification of a post's embed field.
type embedFacets struct {
	quote    *Quote
	images   []Image
	video    *Video
	external *External
}

// classifyEmbed extracts the quote, image, video and external-link facets
// from a resolved embed. The four facets are independent: well-formed
// input populates one, but malformed or future embed variants degrade to
// empty facets instead of failing.
func classifyEmbed(e *appview.Embed) embedFacets {
	var f embedFacets
	if e == nil {
		return f
	}

	f.quote = quoteFromEmbed(e)
	f.video = videoFromEmbed(e)

	if e.External != nil {
		f.external = &External{
			URI:         e.External.URI,
			Title:       e.External.Title,
			Description: e.External.Description,
			Thumb:       e.External.Thumb,
		}
	}

	f.images = imagesFromEmbed(e, f.external)

	return f
}

// quoteFromEmbed recognizes a quoted record by the presence of an author
// on the embedded record. record#view carries the viewRecord fields
// directly; recordWithMedia#view nests them one level down. Both depths
// are checked before concluding there is no quote.
func quoteFromEmbed(e *appview.Embed) *Quote {
	rec := e.Record
	if rec == nil {
		return nil
	}
	if rec.Author == nil {
		rec = rec.Record
		if rec == nil || rec.Author == nil {
			return nil
		}
	}

	q := &Quote{
		URI:    rec.URI,
		CID:    rec.CID,
		Author: fromActor(rec.Author),
	}
	if rec.Value != nil {
		q.Text = rec.Value.Text
		q.CreatedAt = parseTime(rec.Value.CreatedAt)
	}
	return q
}

// imagesFromEmbed resolves display images from three locations in
// priority order: the direct image array, the media-wrapped image array
// of a recordWithMedia embed, and finally a single image synthesized from
// an external-link thumbnail so link cards always have something to show.
func imagesFromEmbed(e *appview.Embed, external *External) []Image {
	raw := e.Images
	if len(raw) == 0 && e.Media != nil {
		raw = e.Media.Images
	}

	if len(raw) > 0 {
		images := make([]Image, 0, len(raw))
		for _, img := range raw {
			images = append(images, Image{
				Thumb:    img.Thumb,
				Fullsize: img.Fullsize,
				Alt:      img.Alt,
			})
		}
		return images
	}

	if external != nil && external.Thumb != "" {
		return []Image{{
			Thumb:    external.Thumb,
			Fullsize: external.Thumb,
			Alt:      external.Title,
		}}
	}

	return nil
}

// videoFromEmbed recognizes the direct video embed and the media-wrapped
// video of a recordWithMedia embed; both project to the same shape.
func videoFromEmbed(e *appview.Embed) *Video {
	if e.Type == embedVideoView && e.Playlist != "" {
		return &Video{
			Playlist:  e.Playlist,
			Thumbnail: e.Thumbnail,
			Alt:       e.Alt,
			CID:       e.CID,
		}
	}
	if e.Media != nil && e.Media.Type == embedVideoView && e.Media.Playlist != "" {
		return &Video{
			Playlist:  e.Media.Playlist,
			Thumbnail: e.Media.Thumbnail,
			Alt:       e.Media.Alt,
			CID:       e.Media.CID,
		}
	}
	return nil
}

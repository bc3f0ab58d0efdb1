package vision

import (
	"encoding/json"
)

type partKind uint8

const (
	partText partKind = iota + 1
	partImage
)

// ContentPart is one segment of a multimodal chat message. Build it with
// TextPart or ImagePart; the zero value is not a valid part.
type ContentPart struct {
	kind  partKind
	value string
}

// TextPart returns a text segment.
func TextPart(text string) ContentPart {
	return ContentPart{kind: partText, value: text}
}

// ImagePart returns an image segment referencing url, typically a data URI.
func ImagePart(url string) ContentPart {
	return ContentPart{kind: partImage, value: url}
}

// IsImage reports whether the part carries an image reference.
func (p ContentPart) IsImage() bool { return p.kind == partImage }

// Value returns the text or the image URL.
func (p ContentPart) Value() string { return p.value }

func (p ContentPart) MarshalJSON() ([]byte, error) {
	switch p.kind {
	case partText:
		return json.Marshal(struct {
			Type string `json:"type"`
			Text string `json:"text"`
		}{Type: "text", Text: p.value})
	case partImage:
		return json.Marshal(struct {
			Type     string `json:"type"`
			ImageURL string `json:"image_url"`
		}{Type: "image_url", ImageURL: p.value})
	default:
		return nil, errInvalidPart
	}
}

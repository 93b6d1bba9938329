package qrcard

import (
	"fmt"
	"net/url"
	"strings"
)

// LinkPath is the path a carrier link points at.
const LinkPath = "/scan"

// LinkParam is the query parameter holding the payload.
const LinkParam = "data"

// Link builds a carrier link embedding text as a percent-encoded query
// parameter. Spaces are written as %20 so the link matches what browsers
// produce with encodeURIComponent.
func Link(base, text string) string {
	escaped := strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	return strings.TrimRight(base, "/") + LinkPath + "?" + LinkParam + "=" + escaped
}

// ParseLink extracts and percent-decodes the payload of a carrier link.
// A link without the data parameter fails with ErrMissingPayload; a present
// but empty parameter yields "".
func ParseLink(link string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidLink, err)
	}
	q, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidLink, err)
	}
	if !q.Has(LinkParam) {
		return "", newDecodeError(MissingPayload, 0, nil)
	}
	return q.Get(LinkParam), nil
}

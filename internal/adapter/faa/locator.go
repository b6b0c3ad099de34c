package faa

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// ErrArtifactNotFound means the landing page has no matching ZIP link,
// usually because the page layout changed or the cycle is not yet posted.
var ErrArtifactNotFound = errors.New("artifact link not found")

// Locator finds the current download link on an FAA landing page.
type Locator struct {
	client *Client
}

// NewLocator creates a Locator that fetches pages through client.
func NewLocator(client *Client) *Locator {
	return &Locator{client: client}
}

// Locate returns the absolute URL of the first ZIP link on pageURL whose
// href contains keyword, compared case-insensitively.
func (l *Locator) Locate(ctx context.Context, pageURL, keyword string) (string, error) {
	body, err := l.client.Get(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("fetch landing page: %w", err)
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parse landing page url: %w", err)
	}
	href, err := findZipLink(bytes.NewReader(body), keyword)
	if err != nil {
		return "", fmt.Errorf("%s on %s: %w", keyword, pageURL, err)
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("parse link %q: %w", href, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// LocateAny tries each keyword in order and returns the first hit.
func (l *Locator) LocateAny(ctx context.Context, pageURL string, keywords ...string) (string, error) {
	var lastErr error = ErrArtifactNotFound
	for _, kw := range keywords {
		u, err := l.Locate(ctx, pageURL, kw)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, ErrArtifactNotFound) {
			return "", err
		}
		lastErr = err
	}
	return "", lastErr
}

func findZipLink(r io.Reader, keyword string) (string, error) {
	keyword = strings.ToLower(keyword)
	z := html.NewTokenizer(r)
	for {
		switch z.Next() {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return "", ErrArtifactNotFound
			}
			return "", fmt.Errorf("tokenize page: %w", z.Err())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "a" || !hasAttr {
				continue
			}
			for {
				key, val, more := z.TagAttr()
				if string(key) == "href" {
					href := strings.TrimSpace(string(val))
					lower := strings.ToLower(href)
					if strings.Contains(lower, keyword) && strings.HasSuffix(lower, ".zip") {
						return href, nil
					}
				}
				if !more {
					break
				}
			}
		}
	}
}

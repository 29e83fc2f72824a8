package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anaskhan96/soup"
	"github.com/parnurzeal/gorequest"
)

var ErrFetchFailed = errors.New("could not fetch job page")

const fetchUserAgent = "Mozilla/5.0 (compatible; placement-portal/1.0)"

// DescriptionFetcher downloads a job posting page and reduces it to plain text for
// the criteria extractor.
type DescriptionFetcher struct {
	Timeout time.Duration
}

func NewDescriptionFetcher(timeout time.Duration) *DescriptionFetcher {
	return &DescriptionFetcher{Timeout: timeout}
}

func (f *DescriptionFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return "", fmt.Errorf("%w: %q is not an http(s) URL", ErrFetchFailed, url)
	}

	resp, body, errs := gorequest.New().Get(url).
		Set("User-Agent", fetchUserAgent).
		Retry(1, time.Second, http.StatusBadGateway, http.StatusServiceUnavailable).
		Timeout(f.Timeout).
		End()
	if len(errs) > 0 {
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, errs[0])
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s returned %d", ErrFetchFailed, url, resp.StatusCode)
	}

	text := htmlToText(body)
	if text == "" {
		return "", fmt.Errorf("%w: %s has no readable text", ErrFetchFailed, url)
	}
	return text, nil
}

// htmlToText keeps the visible text of the page body with whitespace collapsed.
func htmlToText(page string) string {
	doc := soup.HTMLParse(page)
	for _, tag := range []string{"script", "style", "noscript"} {
		for _, n := range doc.FindAll(tag) {
			if p := n.Pointer.Parent; p != nil {
				p.RemoveChild(n.Pointer)
			}
		}
	}

	root := doc
	if body := doc.Find("body"); body.Error == nil {
		root = body
	}
	return strings.Join(strings.Fields(root.FullText()), " ")
}

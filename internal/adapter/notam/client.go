package notam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/couchcryptid/obstacle-data-etl/internal/adapter/faa"
)

// maxPages bounds pagination per location.
const maxPages = 20

// Source harvests NOTAM message bodies for a set of location designators.
// It is best-effort: a failed location is logged and skipped.
type Source struct {
	client    *faa.Client
	searchURL string
	locations []string
	logger    *slog.Logger
}

// NewSource creates a Source querying searchURL for each location.
func NewSource(client *faa.Client, searchURL string, locations []string, logger *slog.Logger) *Source {
	return &Source{
		client:    client,
		searchURL: searchURL,
		locations: locations,
		logger:    logger.With("dataset", "notam"),
	}
}

// Messages returns the traditional-format text of every NOTAM found. An
// error is returned only when every location failed.
func (s *Source) Messages(ctx context.Context) ([]string, error) {
	var (
		msgs []string
		errs []error
	)
	for _, loc := range s.locations {
		got, err := s.search(ctx, loc)
		if err != nil {
			s.logger.Warn("notam search failed", "location", loc, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", loc, err))
			continue
		}
		msgs = append(msgs, got...)
	}
	if len(errs) > 0 && len(errs) == len(s.locations) {
		return nil, errors.Join(errs...)
	}
	return msgs, nil
}

func (s *Source) search(ctx context.Context, location string) ([]string, error) {
	var msgs []string
	offset := 0
	for page := 0; page < maxPages; page++ {
		form := url.Values{
			"searchType":             {"0"},
			"designatorsForLocation": {location},
			"offset":                 {strconv.Itoa(offset)},
			"notamsOnly":             {"false"},
		}
		body, err := s.client.PostForm(ctx, s.searchURL, form)
		if err != nil {
			return nil, err
		}
		var resp searchResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		for _, n := range resp.NotamList {
			if text := n.text(); text != "" {
				msgs = append(msgs, text)
			}
		}
		offset += len(resp.NotamList)
		if len(resp.NotamList) == 0 || offset >= resp.TotalNotamCount {
			break
		}
	}
	return msgs, nil
}

// FAA NOTAM search response types.

type searchResponse struct {
	NotamList       []notamItem `json:"notamList"`
	TotalNotamCount int         `json:"totalNotamCount"`
}

type notamItem struct {
	TraditionalMessage string `json:"traditionalMessage"`
	ICAOMessage        string `json:"icaoMessage"`
}

func (n notamItem) text() string {
	if t := strings.TrimSpace(n.TraditionalMessage); t != "" {
		return t
	}
	return strings.TrimSpace(n.ICAOMessage)
}

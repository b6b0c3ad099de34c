package faa

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/couchcryptid/obstacle-data-etl/internal/domain"
	"golang.org/x/text/encoding"
)

// ArtifactSource locates, downloads and opens one text member of a
// published FAA ZIP. Each Open holds the archive only until the returned
// stream is closed.
type ArtifactSource struct {
	client   *Client
	locator  *Locator
	pageURL  string
	keywords func() []string
	match    MemberMatcher
	enc      encoding.Encoding
	logger   *slog.Logger
}

// NewDOFSource opens the .DAT member of the current DOF archive.
func NewDOFSource(client *Client, pageURL, keyword string, enc encoding.Encoding, logger *slog.Logger) *ArtifactSource {
	return &ArtifactSource{
		client:   client,
		locator:  NewLocator(client),
		pageURL:  pageURL,
		keywords: func() []string { return []string{keyword} },
		match:    SuffixFold(".DAT"),
		enc:      enc,
		logger:   logger.With("dataset", "dof"),
	}
}

// NewAPTSource opens APT.txt from the NASR subscription for the current
// 28-day cycle, falling back to any subscription link on the page.
func NewAPTSource(client *Client, pageURL, keyword string, enc encoding.Encoding, logger *slog.Logger) *ArtifactSource {
	return &ArtifactSource{
		client:  client,
		locator: NewLocator(client),
		pageURL: pageURL,
		keywords: func() []string {
			dated := fmt.Sprintf("%s_Effective_%s", keyword, domain.CycleKey(domain.CurrentCycle()))
			return []string{dated, keyword}
		},
		match:  BaseNameFold("APT.txt"),
		enc:    enc,
		logger: logger.With("dataset", "apt"),
	}
}

// Open returns the decoded member stream.
func (s *ArtifactSource) Open(ctx context.Context) (io.ReadCloser, error) {
	zipURL, err := s.locator.LocateAny(ctx, s.pageURL, s.keywords()...)
	if err != nil {
		return nil, fmt.Errorf("locate artifact: %w", err)
	}
	s.logger.Info("downloading artifact", "url", zipURL)

	data, err := s.client.Get(ctx, zipURL)
	if err != nil {
		return nil, fmt.Errorf("download artifact: %w", err)
	}

	rc, name, err := OpenMember(data, s.match, s.enc)
	if err != nil {
		return nil, fmt.Errorf("artifact %s: %w", zipURL, err)
	}
	s.logger.Info("opened archive member", "member", name, "archive_bytes", len(data))
	return rc, nil
}

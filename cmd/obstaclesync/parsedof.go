package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/obstacle-data-etl/internal/adapter/faa"
	"github.com/couchcryptid/obstacle-data-etl/internal/adapter/filestore"
	"github.com/couchcryptid/obstacle-data-etl/internal/config"
	"github.com/couchcryptid/obstacle-data-etl/internal/domain"
	"github.com/spf13/cobra"
	"golang.org/x/text/encoding"
)

type parseDOFOptions struct {
	outDir   string
	minAGL   int
	encoding string
	layout   string
}

func newParseDOFCmd() *cobra.Command {
	opts := parseDOFOptions{}
	cmd := &cobra.Command{
		Use:   "parse-dof FILE",
		Short: "Convert a local DOF file to obstacles.json",
		Long: `Convert a local DOF.DAT (or the DOF zip that contains it) to obstacles.json,
using the same extraction rules as a full run. Useful for building test data.

Examples:
  obstaclesync parse-dof DOF.DAT --out testdata/
  obstaclesync parse-dof DAILY_DOF_DAT.ZIP --min-agl 500`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return parseDOF(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}
	cmd.Flags().StringVar(&opts.outDir, "out", ".", "directory to write obstacles.json into")
	cmd.Flags().IntVar(&opts.minAGL, "min-agl", domain.DefaultMinAGL, "lowest height in feet to keep")
	cmd.Flags().StringVar(&opts.encoding, "encoding", "utf-8", "source text encoding")
	cmd.Flags().StringVar(&opts.layout, "layout", "", "YAML column layout overrides")
	return cmd
}

func parseDOF(ctx context.Context, out io.Writer, path string, opts parseDOFOptions) error {
	layouts, err := config.LoadLayouts(opts.layout)
	if err != nil {
		return err
	}
	enc, err := faa.LookupEncoding(opts.encoding)
	if err != nil {
		return err
	}

	rc, err := openDOF(path, enc)
	if err != nil {
		return err
	}
	defer rc.Close()

	res, err := domain.ExtractObstacles(rc, domain.DOFOptions{Layout: layouts.DOF, MinAGL: opts.minAGL})
	if err != nil {
		return err
	}

	store, err := filestore.New(opts.outDir)
	if err != nil {
		return err
	}
	if err := store.ReplaceObstacles(ctx, res.Obstacles); err != nil {
		return err
	}

	fmt.Fprintf(out, "Generated %s with %d obstacles (currency date %s, %d lines skipped).\n",
		filepath.Join(store.Dir(), filestore.ObstaclesFile),
		len(res.Obstacles), res.CurrencyDate, res.Stats.TotalSkipped())
	return nil
}

// openDOF opens a DOF text file, or its .DAT member when path is a zip.
func openDOF(path string, enc encoding.Encoding) (io.ReadCloser, error) {
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		rc, _, err := faa.OpenMember(data, faa.SuffixFold(".DAT"), enc)
		return rc, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return readCloser{Reader: enc.NewDecoder().Reader(f), Closer: f}, nil
}

type readCloser struct {
	io.Reader
	io.Closer
}

package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/meigma/ebc"
)

type extractOptions struct {
	outDir string
	raw    bool
}

func newExtractCmd(g *globalFlags) *cobra.Command {
	opts := &extractOptions{}
	cmd := &cobra.Command{
		Use:   "extract FILE",
		Short: "Write every embedded file to a directory",
		Long: `Write every embedded file to a directory.

Files are named <prefix>_<n><ext>, where prefix identifies the object and
architecture the bitcode came from and n is the unit's position.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			containers, err := loadContainers(args[0], g.containerOptions(cmd)...)
			if err != nil {
				return err
			}
			total := 0
			for _, c := range containers {
				n, err := extractContainer(c, opts)
				total += n
				if err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "extracted %d file(s) to %s\n", total, opts.outDir)
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.outDir, "output", "o", ".", "destination directory")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "decode entries in memory instead of through temporary files")
	return cmd
}

// extractContainer saves each unit of c into opts.outDir and returns how
// many were written. Temporary payloads are removed whether or not saving
// succeeds.
func extractContainer(c ebc.Container, opts *extractOptions) (int, error) {
	var files []*ebc.EmbeddedFile
	if opts.raw {
		files = c.RawEmbeddedFiles()
	} else {
		files = c.EmbeddedFiles()
	}
	defer func() {
		for _, f := range files {
			_ = f.Remove() //nolint:errcheck // best-effort cleanup of temp payloads
		}
	}()

	written := 0
	for i, f := range files {
		dest := filepath.Join(opts.outDir, c.Prefix()+"_"+strconv.Itoa(i)+f.FileType().Extension())
		if err := f.Save(dest); err != nil {
			return written, fmt.Errorf("extract %s: %w", c.Prefix(), err)
		}
		written++
	}
	return written, nil
}

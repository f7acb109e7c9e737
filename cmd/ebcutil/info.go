package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/meigma/ebc"
)

type containerInfo struct {
	Prefix  string      `json:"prefix" yaml:"prefix"`
	Archive bool        `json:"archive" yaml:"archive"`
	Size    int         `json:"size" yaml:"size"`
	Linker  *linkerInfo `json:"linker,omitempty" yaml:"linker,omitempty"`
	Files   []fileInfo  `json:"files" yaml:"files"`
}

type linkerInfo struct {
	Version      string   `json:"version,omitempty" yaml:"version,omitempty"`
	Architecture string   `json:"architecture,omitempty" yaml:"architecture,omitempty"`
	Platform     string   `json:"platform,omitempty" yaml:"platform,omitempty"`
	SDKVersion   string   `json:"sdkVersion,omitempty" yaml:"sdkVersion,omitempty"`
	HideSymbols  bool     `json:"hideSymbols" yaml:"hideSymbols"`
	LinkOptions  []string `json:"linkOptions,omitempty" yaml:"linkOptions,omitempty"`
	Dylibs       []string `json:"dylibs,omitempty" yaml:"dylibs,omitempty"`
	WeakDylibs   []string `json:"weakDylibs,omitempty" yaml:"weakDylibs,omitempty"`
}

type fileInfo struct {
	Entry  string   `json:"entry,omitempty" yaml:"entry,omitempty"`
	Type   string   `json:"type" yaml:"type"`
	Size   int      `json:"size" yaml:"size"`
	Digest string   `json:"digest" yaml:"digest"`
	Clang  []string `json:"clang,omitempty" yaml:"clang,omitempty"`
	Swift  []string `json:"swift,omitempty" yaml:"swift,omitempty"`
}

func newInfoCmd(g *globalFlags) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "info FILE",
		Short: "Describe the embedded bitcode in a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			write, err := infoWriter(format)
			if err != nil {
				return err
			}
			containers, err := loadContainers(args[0], g.containerOptions(cmd)...)
			if err != nil {
				return err
			}
			infos := make([]containerInfo, 0, len(containers))
			for _, c := range containers {
				info, err := describe(c)
				if err != nil {
					return err
				}
				infos = append(infos, info)
			}
			return write(cmd.OutOrStdout(), infos)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json or yaml")
	return cmd
}

func infoWriter(format string) (func(io.Writer, []containerInfo) error, error) {
	switch strings.ToLower(format) {
	case "text":
		return writeText, nil
	case "json":
		return func(w io.Writer, infos []containerInfo) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(infos)
		}, nil
	case "yaml":
		return func(w io.Writer, infos []containerInfo) error {
			enc := yaml.NewEncoder(w)
			enc.SetIndent(2)
			if err := enc.Encode(infos); err != nil {
				return err
			}
			return enc.Close()
		}, nil
	default:
		return nil, fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}
}

// describe summarizes c from its in-memory units, so no files are written.
func describe(c ebc.Container) (containerInfo, error) {
	info := containerInfo{
		Prefix:  c.Prefix(),
		Archive: c.IsArchive(),
		Size:    len(c.Data()),
	}
	if a, ok := c.(*ebc.Archive); ok && a.Metadata().HasLinkerInfo() {
		info.Linker = describeLinker(a)
	}

	files := c.RawEmbeddedFiles()
	info.Files = make([]fileInfo, 0, len(files))
	for _, f := range files {
		d, err := f.Digest()
		if err != nil {
			return containerInfo{}, fmt.Errorf("digest %s: %w", f.EntryPath(), err)
		}
		info.Files = append(info.Files, fileInfo{
			Entry:  f.EntryPath(),
			Type:   f.FileType().String(),
			Size:   len(f.Data()),
			Digest: d.String(),
			Clang:  f.ClangCommands(),
			Swift:  f.SwiftCommands(),
		})
	}
	return info, nil
}

func describeLinker(a *ebc.Archive) *linkerInfo {
	m := a.Metadata()
	ld := &linkerInfo{
		Version:      m.Version(),
		Architecture: m.Architecture(),
		Platform:     m.Platform(),
		SDKVersion:   m.SDKVersion(),
		HideSymbols:  m.HideSymbols(),
		LinkOptions:  m.LinkOptions(),
	}
	for _, lib := range m.Dylibs() {
		if lib.Weak {
			ld.WeakDylibs = append(ld.WeakDylibs, lib.Path)
		} else {
			ld.Dylibs = append(ld.Dylibs, lib.Path)
		}
	}
	return ld
}

func writeText(w io.Writer, infos []containerInfo) error {
	var b strings.Builder
	for i, c := range infos {
		if i > 0 {
			b.WriteByte('\n')
		}
		kind := "bitcode"
		if c.Archive {
			kind = "archive"
		}
		fmt.Fprintf(&b, "%s: %s, %d bytes, %d file(s)\n", c.Prefix, kind, c.Size, len(c.Files))
		if ld := c.Linker; ld != nil {
			fmt.Fprintf(&b, "  linker: version=%s arch=%s platform=%s sdk=%s hide-symbols=%t\n",
				ld.Version, ld.Architecture, ld.Platform, ld.SDKVersion, ld.HideSymbols)
			if len(ld.LinkOptions) > 0 {
				fmt.Fprintf(&b, "  link options: %s\n", strings.Join(ld.LinkOptions, " "))
			}
			for _, lib := range ld.Dylibs {
				fmt.Fprintf(&b, "  dylib: %s\n", lib)
			}
			for _, lib := range ld.WeakDylibs {
				fmt.Fprintf(&b, "  weak dylib: %s\n", lib)
			}
		}
		for _, f := range c.Files {
			name := f.Entry
			if name == "" {
				name = "-"
			}
			fmt.Fprintf(&b, "  %s\t%s\t%d\t%s\n", name, f.Type, f.Size, f.Digest)
			if len(f.Clang) > 0 {
				fmt.Fprintf(&b, "    clang: %s\n", strings.Join(f.Clang, " "))
			}
			if len(f.Swift) > 0 {
				fmt.Fprintf(&b, "    swift: %s\n", strings.Join(f.Swift, " "))
			}
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

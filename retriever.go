package ebc

import (
	"debug/elf"
	"debug/macho"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Section names that carry embedded bitcode.
const (
	machoSegment        = "__LLVM"
	machoBundleSection  = "__bundle"
	machoBitcodeSection = "__bitcode"
	machoCmdSection     = "__cmdline"
	elfBitcodeSection   = ".llvmbc"
	elfCmdSection       = ".llvmcmd"
)

// objectSlice is the bitcode found for one architecture of an object file.
type objectSlice struct {
	arch    string
	payload []byte
	cmdline []byte
}

// Retrieve returns one Container per architecture slice of the object file
// at path that carries embedded bitcode.
//
// Thin and fat Mach-O files and ELF files are supported. Each container's
// prefix is "<file name>_<arch>" and, for single-unit payloads, its command
// line comes from the object's command-line section. Options are applied
// after those defaults.
func Retrieve(path string, opts ...Option) ([]Container, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	f, err := os.Open(path) //nolint:gosec // caller-provided path is intentional
	if err != nil {
		return nil, fmt.Errorf("open object: %w", err)
	}
	defer f.Close()

	objSlices, err := retrieveSlices(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	base := filepath.Base(path)
	containers := make([]Container, 0, len(objSlices))
	for _, s := range objSlices {
		sliceOpts := append([]Option{
			WithPrefix(base + "_" + s.arch),
			WithCommands(splitCommandLine(s.cmdline)),
		}, opts...)
		containers = append(containers, FromBytes(s.payload, sliceOpts...))
	}
	return containers, nil
}

// retrieveSlices dispatches on the object format.
func retrieveSlices(r io.ReaderAt) ([]objectSlice, error) {
	if fat, err := macho.NewFatFile(r); err == nil {
		defer fat.Close()
		var out []objectSlice
		for _, arch := range fat.Arches {
			s, ok, err := machoSlice(arch.File)
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, s)
			}
		}
		return nonEmpty(out)
	}
	if thin, err := macho.NewFile(r); err == nil {
		defer thin.Close()
		s, ok, err := machoSlice(thin)
		if err != nil || !ok {
			return nil, firstErr(err, ErrNoBitcode)
		}
		return []objectSlice{s}, nil
	}
	if ef, err := elf.NewFile(r); err == nil {
		defer ef.Close()
		s, ok, err := elfSlice(ef)
		if err != nil || !ok {
			return nil, firstErr(err, ErrNoBitcode)
		}
		return []objectSlice{s}, nil
	}
	return nil, ErrUnsupportedFormat
}

func machoSlice(f *macho.File) (objectSlice, bool, error) {
	s := objectSlice{arch: machoArch(f.Cpu)}
	var bundle, bitcode, cmdline *macho.Section
	for _, sec := range f.Sections {
		if sec.Seg != machoSegment {
			continue
		}
		switch sec.Name {
		case machoBundleSection:
			bundle = sec
		case machoBitcodeSection:
			bitcode = sec
		case machoCmdSection:
			cmdline = sec
		}
	}
	payload := bundle
	if payload == nil {
		payload = bitcode
	}
	if payload == nil {
		return s, false, nil
	}
	var err error
	if s.payload, err = payload.Data(); err != nil {
		return s, false, fmt.Errorf("read %s,%s: %w", payload.Seg, payload.Name, err)
	}
	if cmdline != nil {
		if s.cmdline, err = cmdline.Data(); err != nil {
			return s, false, fmt.Errorf("read %s,%s: %w", cmdline.Seg, cmdline.Name, err)
		}
	}
	return s, true, nil
}

func elfSlice(f *elf.File) (objectSlice, bool, error) {
	s := objectSlice{arch: elfArch(f.Machine)}
	sec := f.Section(elfBitcodeSection)
	if sec == nil {
		return s, false, nil
	}
	var err error
	if s.payload, err = sec.Data(); err != nil {
		return s, false, fmt.Errorf("read %s: %w", elfBitcodeSection, err)
	}
	if cmd := f.Section(elfCmdSection); cmd != nil {
		if s.cmdline, err = cmd.Data(); err != nil {
			return s, false, fmt.Errorf("read %s: %w", elfCmdSection, err)
		}
	}
	return s, true, nil
}

func machoArch(cpu macho.Cpu) string {
	switch cpu {
	case macho.CpuAmd64:
		return "x86_64"
	case macho.CpuArm64:
		return "arm64"
	case macho.Cpu386:
		return "i386"
	case macho.CpuArm:
		return "arm"
	case macho.CpuPpc:
		return "ppc"
	case macho.CpuPpc64:
		return "ppc64"
	default:
		return strings.ToLower(strings.TrimPrefix(cpu.String(), "Cpu"))
	}
}

func elfArch(m elf.Machine) string {
	switch m {
	case elf.EM_X86_64:
		return "x86_64"
	case elf.EM_AARCH64:
		return "aarch64"
	case elf.EM_386:
		return "i386"
	case elf.EM_ARM:
		return "arm"
	default:
		return strings.ToLower(strings.TrimPrefix(m.String(), "EM_"))
	}
}

// splitCommandLine splits a NUL-separated command-line section.
func splitCommandLine(b []byte) []string {
	s := strings.TrimRight(string(b), "\x00")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\x00")
}

func nonEmpty(s []objectSlice) ([]objectSlice, error) {
	if len(s) == 0 {
		return nil, ErrNoBitcode
	}
	return s, nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

package ebc

import (
	"debug/elf"
	"debug/macho"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/ebc/internal/testutil"
)

func writeObject(t *testing.T, name string, data []byte) string {
	t.Helper()
	return testutil.WriteFile(t, filepath.Join(t.TempDir(), name), data)
}

func TestRetrieveThinMachOBundle(t *testing.T) {
	t.Parallel()

	obj := writeObject(t, "app", testutil.BuildMachO(t, testutil.MachOSlice{
		Cpu: macho.CpuArm64,
		Sections: []testutil.Section{
			{Segment: "__TEXT", Name: "__text", Data: []byte{0x1f, 0x20, 0x03, 0xd5}},
			{Segment: "__LLVM", Name: "__bundle", Data: twoEntryArchive(t)},
		},
	}))

	containers, err := Retrieve(obj, WithTempDir(t.TempDir()))
	require.NoError(t, err)
	require.Len(t, containers, 1)

	c := containers[0]
	assert.True(t, c.IsArchive())
	assert.Equal(t, "app_arm64", c.Prefix())

	files := c.RawEmbeddedFiles()
	require.Len(t, files, 2)
	assert.Equal(t, FileTypeBitcode, files[0].FileType())
	assert.Equal(t, []string{"-target", "x86_64"}, files[0].ClangCommands())
	assert.Equal(t, []byte("object b"), files[1].Data())
}

func TestRetrieveBitcodeSectionWithCommandLine(t *testing.T) {
	t.Parallel()

	payload := testutil.Bitcode("thin")
	obj := writeObject(t, "unit.o", testutil.BuildMachO(t, testutil.MachOSlice{
		Cpu: macho.CpuAmd64,
		Sections: []testutil.Section{
			{Segment: "__LLVM", Name: "__bitcode", Data: payload},
			{Segment: "__LLVM", Name: "__cmdline", Data: []byte("-triple\x00x86_64-apple-macosx\x00-O2\x00")},
		},
	}))

	containers, err := Retrieve(obj, WithTempDir(t.TempDir()))
	require.NoError(t, err)
	require.Len(t, containers, 1)

	bc, ok := containers[0].(*Bitcode)
	require.True(t, ok)
	assert.Equal(t, "unit.o_x86_64", bc.Prefix())
	assert.Equal(t, payload, bc.Data())
	assert.Equal(t, []string{"-triple", "x86_64-apple-macosx", "-O2"}, bc.Commands())

	files := bc.RawEmbeddedFiles()
	require.Len(t, files, 1)
	assert.Equal(t, []string{"-triple", "x86_64-apple-macosx", "-O2"}, files[0].ClangCommands())
}

func TestRetrievePrefersBundle(t *testing.T) {
	t.Parallel()

	obj := writeObject(t, "both", testutil.BuildMachO(t, testutil.MachOSlice{
		Cpu: macho.CpuArm64,
		Sections: []testutil.Section{
			{Segment: "__LLVM", Name: "__bitcode", Data: testutil.Bitcode("thin")},
			{Segment: "__LLVM", Name: "__bundle", Data: twoEntryArchive(t)},
		},
	}))

	containers, err := Retrieve(obj, WithTempDir(t.TempDir()))
	require.NoError(t, err)
	require.Len(t, containers, 1)
	assert.True(t, containers[0].IsArchive())
}

func TestRetrieveFatMachO(t *testing.T) {
	t.Parallel()

	obj := writeObject(t, "universal", testutil.BuildFatMachO(t,
		testutil.MachOSlice{
			Cpu:      macho.CpuAmd64,
			SubCpu:   3,
			Sections: []testutil.Section{{Segment: "__LLVM", Name: "__bitcode", Data: testutil.Bitcode("x86")}},
		},
		testutil.MachOSlice{
			Cpu:      macho.CpuArm64,
			Sections: []testutil.Section{{Segment: "__TEXT", Name: "__text", Data: []byte{0}}},
		},
		testutil.MachOSlice{
			Cpu:      macho.CpuArm,
			SubCpu:   9,
			Sections: []testutil.Section{{Segment: "__LLVM", Name: "__bitcode", Data: testutil.Bitcode("arm")}},
		},
	))

	containers, err := Retrieve(obj, WithTempDir(t.TempDir()), WithPrefix(""))
	require.NoError(t, err)
	require.Len(t, containers, 2, "slices without bitcode are skipped")

	assert.Equal(t, "universal_x86_64", containers[0].Prefix())
	assert.Equal(t, testutil.Bitcode("x86"), containers[0].Data())
	assert.Equal(t, "universal_arm", containers[1].Prefix())
	assert.Equal(t, testutil.Bitcode("arm"), containers[1].Data())
}

func TestRetrieveELF(t *testing.T) {
	t.Parallel()

	payload := testutil.Bitcode("elf")
	obj := writeObject(t, "unit.o", testutil.BuildELF(t, elf.EM_X86_64, []testutil.Section{
		{Name: ".text", Data: []byte{0xc3}},
		{Name: ".llvmbc", Data: payload},
		{Name: ".llvmcmd", Data: []byte("-O0\x00-g\x00")},
	}))

	dir := t.TempDir()
	containers, err := Retrieve(obj, WithTempDir(dir))
	require.NoError(t, err)
	require.Len(t, containers, 1)
	assert.Equal(t, "unit.o_x86_64", containers[0].Prefix())

	files := containers[0].EmbeddedFiles()
	require.Len(t, files, 1)
	assert.Equal(t, dir, filepath.Dir(files[0].Path()))
	assert.Equal(t, ".bc", filepath.Ext(files[0].Path()))
	assert.Equal(t, []string{"-O0", "-g"}, files[0].ClangCommands())

	got, err := files[0].Content()
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestRetrieveCallerOptionsOverrideDefaults(t *testing.T) {
	t.Parallel()

	obj := writeObject(t, "unit.o", testutil.BuildELF(t, elf.EM_AARCH64, []testutil.Section{
		{Name: ".llvmbc", Data: testutil.Bitcode("elf")},
		{Name: ".llvmcmd", Data: []byte("-O0\x00")},
	}))

	containers, err := Retrieve(obj, WithPrefix("custom"), WithCommands([]string{"-O3"}))
	require.NoError(t, err)
	require.Len(t, containers, 1)
	assert.Equal(t, "custom", containers[0].Prefix())
	assert.Equal(t, []string{"-O3"}, containers[0].(*Bitcode).Commands())
}

func TestRetrieveErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	noBitcodeMachO := testutil.WriteFile(t, filepath.Join(dir, "plain-macho"), testutil.BuildMachO(t, testutil.MachOSlice{
		Cpu:      macho.CpuArm64,
		Sections: []testutil.Section{{Segment: "__TEXT", Name: "__text", Data: []byte{0}}},
	}))
	noBitcodeFat := testutil.WriteFile(t, filepath.Join(dir, "plain-fat"), testutil.BuildFatMachO(t, testutil.MachOSlice{
		Cpu:      macho.CpuArm64,
		Sections: []testutil.Section{{Segment: "__TEXT", Name: "__text", Data: []byte{0}}},
	}))
	noBitcodeELF := testutil.WriteFile(t, filepath.Join(dir, "plain-elf"), testutil.BuildELF(t, elf.EM_X86_64, []testutil.Section{
		{Name: ".text", Data: []byte{0xc3}},
	}))
	unknown := testutil.WriteFile(t, filepath.Join(dir, "text"), []byte("just some text"))

	tests := []struct {
		name string
		path string
		want error
	}{
		{name: "empty path", path: "", want: ErrEmptyPath},
		{name: "missing file", path: filepath.Join(dir, "missing"), want: os.ErrNotExist},
		{name: "unsupported format", path: unknown, want: ErrUnsupportedFormat},
		{name: "mach-o without bitcode", path: noBitcodeMachO, want: ErrNoBitcode},
		{name: "fat mach-o without bitcode", path: noBitcodeFat, want: ErrNoBitcode},
		{name: "elf without bitcode", path: noBitcodeELF, want: ErrNoBitcode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			containers, err := Retrieve(tt.path)
			require.ErrorIs(t, err, tt.want)
			assert.Nil(t, containers)
		})
	}
}

func TestSplitCommandLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{in: "", want: nil},
		{in: "\x00\x00", want: nil},
		{in: "-O2", want: []string{"-O2"}},
		{in: "-O2\x00-g\x00", want: []string{"-O2", "-g"}},
		{in: "a\x00\x00b", want: []string{"a", "", "b"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, splitCommandLine([]byte(tt.in)), "%q", tt.in)
	}
}

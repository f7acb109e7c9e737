package main

import (
	"bytes"
	"debug/elf"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/meigma/ebc/internal/testutil"
)

func runCmd(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err = root.Execute()
	return out.String(), errOut.String(), err
}

// writeBundle writes a two-entry bitcode bundle with a linker subdocument.
func writeBundle(t *testing.T) string {
	t.Helper()
	data := testutil.BuildTestArchiveWithLinker(t, []testutil.TestEntry{
		{Name: "1", Data: testutil.Bitcode("one"), FileType: "Bitcode", Clang: []string{"-triple", "arm64-apple-ios"}},
		{Name: "2", Data: []byte("exports"), FileType: "Exports", Compress: true},
	}, &testutil.LinkerInfo{
		Version:      "1.0",
		Architecture: "arm64",
		Platform:     "iOS",
		SDKVersion:   "17.0",
		HideSymbols:  true,
		LinkOptions:  []string{"-execute"},
		Dylibs:       []string{"{SDKPATH}/usr/lib/libSystem.B.dylib"},
		WeakDylibs:   []string{"{SDKPATH}/System/Library/Frameworks/UIKit.framework/UIKit"},
	})
	return testutil.WriteFile(t, filepath.Join(t.TempDir(), "bundle.xar"), data)
}

func TestVersionCmd(t *testing.T) {
	out, _, err := runCmd(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "ebcutil "+version+"\n", out)
}

func TestInfoText(t *testing.T) {
	out, _, err := runCmd(t, "info", writeBundle(t), "--temp-dir", t.TempDir())
	require.NoError(t, err)

	assert.Contains(t, out, "bundle.xar: archive,")
	assert.Contains(t, out, "2 file(s)")
	assert.Contains(t, out, "arch=arm64 platform=iOS sdk=17.0 hide-symbols=true")
	assert.Contains(t, out, "link options: -execute")
	assert.Contains(t, out, "weak dylib: {SDKPATH}/System/Library/Frameworks/UIKit.framework/UIKit")
	assert.Contains(t, out, "  1\tBitcode\t7\tsha256:")
	assert.Contains(t, out, "    clang: -triple arm64-apple-ios")
	assert.Contains(t, out, "  2\tExports\t7\tsha256:")
}

func TestInfoJSON(t *testing.T) {
	out, _, err := runCmd(t, "info", writeBundle(t), "--format", "json", "--temp-dir", t.TempDir())
	require.NoError(t, err)

	var infos []containerInfo
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	require.Len(t, infos, 1)
	c := infos[0]
	assert.True(t, c.Archive)
	assert.Equal(t, "bundle.xar", c.Prefix)
	require.NotNil(t, c.Linker)
	assert.Equal(t, []string{"{SDKPATH}/usr/lib/libSystem.B.dylib"}, c.Linker.Dylibs)
	require.Len(t, c.Files, 2)
	assert.Equal(t, "Bitcode", c.Files[0].Type)
	assert.Equal(t, []string{"-triple", "arm64-apple-ios"}, c.Files[0].Clang)
	assert.Equal(t, "Exports", c.Files[1].Type)
}

func TestInfoYAML(t *testing.T) {
	out, _, err := runCmd(t, "info", writeBundle(t), "-f", "yaml", "--temp-dir", t.TempDir())
	require.NoError(t, err)

	var infos []containerInfo
	require.NoError(t, yaml.Unmarshal([]byte(out), &infos))
	require.Len(t, infos, 1)
	assert.Equal(t, "1.0", infos[0].Linker.Version)
	assert.True(t, infos[0].Linker.HideSymbols)
	assert.Len(t, infos[0].Files, 2)
}

func TestInfoObjectFile(t *testing.T) {
	obj := testutil.WriteFile(t, filepath.Join(t.TempDir(), "unit.o"), testutil.BuildELF(t, elf.EM_X86_64, []testutil.Section{
		{Name: ".llvmbc", Data: testutil.Bitcode("elf")},
		{Name: ".llvmcmd", Data: []byte("-O2\x00")},
	}))

	out, _, err := runCmd(t, "info", obj, "--format", "json")
	require.NoError(t, err)

	var infos []containerInfo
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	require.Len(t, infos, 1)
	assert.Equal(t, "unit.o_x86_64", infos[0].Prefix)
	assert.False(t, infos[0].Archive)
	assert.Nil(t, infos[0].Linker)
	require.Len(t, infos[0].Files, 1)
	assert.Empty(t, infos[0].Files[0].Entry)
	assert.Equal(t, []string{"-O2"}, infos[0].Files[0].Clang)
}

func TestInfoErrors(t *testing.T) {
	dir := t.TempDir()
	empty := testutil.WriteFile(t, filepath.Join(dir, "empty"), nil)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no args", []string{"info"}, "accepts 1 arg(s)"},
		{"bad format", []string{"info", empty, "--format", "xml"}, `unknown format "xml"`},
		{"missing file", []string{"info", filepath.Join(dir, "missing")}, "no such file"},
		{"empty file", []string{"info", empty}, "no embedded bitcode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCmd(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestVerboseLogsDiagnostics(t *testing.T) {
	corrupt := testutil.WriteFile(t, filepath.Join(t.TempDir(), "corrupt.xar"), []byte("xar!not really an archive"))

	out, stderr, err := runCmd(t, "info", corrupt, "--temp-dir", t.TempDir(), "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "corrupt.xar: archive,")
	assert.Contains(t, out, "0 file(s)")
	assert.Contains(t, stderr, "level=WARN")

	_, stderr, err = runCmd(t, "info", corrupt, "--temp-dir", t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, stderr)
}

func TestExtract(t *testing.T) {
	for _, raw := range []bool{false, true} {
		name := "disk"
		if raw {
			name = "raw"
		}
		t.Run(name, func(t *testing.T) {
			bundle := writeBundle(t)
			outDir := filepath.Join(t.TempDir(), "out")
			tempDir := t.TempDir()

			args := []string{"extract", bundle, "-o", outDir, "--temp-dir", tempDir}
			if raw {
				args = append(args, "--raw")
			}
			out, _, err := runCmd(t, args...)
			require.NoError(t, err)
			assert.Contains(t, out, "extracted 2 file(s)")

			assert.Equal(t, []string{"bundle.xar_0.bc", "bundle.xar_1.exports"}, testutil.ListDir(t, outDir))
			got, err := os.ReadFile(filepath.Join(outDir, "bundle.xar_0.bc"))
			require.NoError(t, err)
			assert.Equal(t, testutil.Bitcode("one"), got)
			got, err = os.ReadFile(filepath.Join(outDir, "bundle.xar_1.exports"))
			require.NoError(t, err)
			assert.Equal(t, []byte("exports"), got)

			assert.Empty(t, testutil.ListDir(t, tempDir), "temporary payloads are removed")
		})
	}
}

func TestExtractBareBitcode(t *testing.T) {
	bc := testutil.WriteFile(t, filepath.Join(t.TempDir(), "unit.bc"), testutil.Bitcode("bare"))
	outDir := t.TempDir()

	_, _, err := runCmd(t, "extract", bc, "-o", outDir, "--temp-dir", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, []string{"unit.bc_0.bc"}, testutil.ListDir(t, outDir))
}

func TestProfileFlags(t *testing.T) {
	dir := t.TempDir()
	cpu := filepath.Join(dir, "cpu.pprof")
	fg := filepath.Join(dir, "fg.pprof")
	mem := filepath.Join(dir, "mem.pprof")
	tr := filepath.Join(dir, "trace.out")

	_, _, err := runCmd(t, "info", writeBundle(t), "--temp-dir", t.TempDir(),
		"--cpuprofile", cpu, "--fgprofile", fg, "--memprofile", mem, "--trace", tr)
	require.NoError(t, err)

	for _, path := range []string{cpu, fg, mem, tr} {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size(), path)
	}
}

func TestProfileStartFailure(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "missing", "cpu.pprof")
	_, _, err := runCmd(t, "version", "--cpuprofile", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "profiling:")
}

func TestProfilesFlushedOnCommandError(t *testing.T) {
	dir := t.TempDir()
	cpu := filepath.Join(dir, "cpu.pprof")
	mem := filepath.Join(dir, "mem.pprof")

	_, _, err := runCmd(t, "info", filepath.Join(dir, "missing.o"), "--cpuprofile", cpu, "--memprofile", mem)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such file")

	for _, path := range []string{cpu, mem} {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size(), path)
	}

	// The CPU profiler was released, so a second run can start it again.
	_, _, err = runCmd(t, "version", "--cpuprofile", cpu)
	require.NoError(t, err)
}

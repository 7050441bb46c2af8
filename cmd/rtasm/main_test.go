package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/colorfulnotion/rtsimd/lanes"
	"github.com/colorfulnotion/rtsimd/target"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rtasm(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRoot()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestEncodeCommand(t *testing.T) {
	out, err := rtasm(t, "addox_rr Xmm1, Xmm2\n", "encode", "--target", "x86_64-sse2-128")
	require.NoError(t, err)
	assert.Equal(t, "660ffeca\n", out)

	out, err = rtasm(t, "addox_rr Xmm1, Xmm2\n", "encode", "--format", "asm")
	require.NoError(t, err)
	assert.Contains(t, out, "paddd")

	t.Setenv("RTASM_TARGET", "mips32-msa-128")
	out, err = rtasm(t, "addox3rr Xmm1, Xmm2, Xmm3\n", "encode")
	require.NoError(t, err)
	assert.Equal(t, "4e104378\n", out)

	_, err = rtasm(t, "frobox_rr Xmm1, Xmm2\n", "encode")
	assert.Error(t, err)
	_, err = rtasm(t, "", "encode", "--target", "z80-mmx-64")
	assert.Error(t, err)
	_, err = rtasm(t, "", "encode", "--log", "loud")
	assert.Error(t, err)
}

func TestNamedProfiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.yaml")
	cfg := target.MustParse("x86_64-avx2-256")
	cfg.Name = "wide"
	require.NoError(t, target.SaveFile(path, []target.Config{cfg}))

	out, err := rtasm(t, "addox3rr Xmm1, Xmm2, Xmm3\n", "encode", "--profiles", path, "--target", "wide")
	require.NoError(t, err)
	assert.Equal(t, "c5edfecb\n", out)

	out, err = rtasm(t, "", "targets", "--profiles", path)
	require.NoError(t, err)
	assert.Contains(t, out, "mips64")
	assert.Contains(t, out, "x86_64-avx2-256")
}

func TestReportCommands(t *testing.T) {
	out, err := rtasm(t, "", "matrix", "--target", "x86_64-sse4-128")
	require.NoError(t, err)
	assert.Contains(t, out, "x86_64-sse4-128")
	assert.Contains(t, out, "svr")

	out, err = rtasm(t, "", "matrix", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "mips32-msa-128")

	html := filepath.Join(t.TempDir(), "sizes.html")
	out, err = rtasm(t, "", "chart", "-o", html, "--elem", "s16", "x86_64-avx2-256", "mips64-msa-128")
	require.NoError(t, err)
	assert.Contains(t, out, html)
	data, err := os.ReadFile(html)
	require.NoError(t, err)
	assert.Contains(t, string(data), "mips64-msa-128")

	_, err = rtasm(t, "", "chart", "--elem", "u7")
	assert.Error(t, err)
}

func TestGoldenCommand(t *testing.T) {
	out, err := rtasm(t, "", "golden", "../../golden/testdata/vectors.json")
	require.NoError(t, err)
	assert.Contains(t, out, "vectors ok")

	path := filepath.Join(t.TempDir(), "v.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"vectors":[
		{"name":"stale","profile":"x86_64-sse2-128","source":"addos_rr Xmm1, Xmm2","code":"00"}]}`), 0o644))
	out, err = rtasm(t, "", "golden", path)
	assert.Error(t, err)
	assert.Contains(t, out, "0f58ca")

	_, err = rtasm(t, "", "golden", "--update", path)
	require.NoError(t, err)
	out, err = rtasm(t, "", "golden", path)
	require.NoError(t, err)
	assert.Contains(t, out, "1 vectors ok")
}

func TestRunCommand(t *testing.T) {
	seed := filepath.Join(t.TempDir(), "seed.bin")
	data := append(lanes.Pack(lanes.U32, 1, 2, 3, 4), lanes.Pack(lanes.U32, 5, 6, 7, 8)...)
	require.NoError(t, os.WriteFile(seed, data, 0o644))
	src := `
        movox_ld Xmm1, [Rebp]
        addox_ld Xmm1, [Rebp + DP(0x10)]
        movox_st [Rebp + DP(0x20)], Xmm1
`
	out, err := rtasm(t, src, "run", "--interp", "--size", "0x40", "--init", seed)
	require.NoError(t, err)
	assert.Contains(t, out, "00000020  06 00 00 00 08 00 00 00  0a 00 00 00 0c 00 00 00")

	_, err = rtasm(t, src, "run", "--interp", "--base", "Xmm1")
	assert.Error(t, err)
	_, err = rtasm(t, src, "run", "--interp", "--size", "4", "--init", seed)
	assert.Error(t, err)
}

func TestSession(t *testing.T) {
	s := &session{cfg: target.MustParse("x86_64-sse2-128")}
	var out bytes.Buffer
	assert.False(t, s.eval("addox_rr Xmm1, Xmm2", &out))
	assert.Equal(t, "660ffeca\n", out.String())

	out.Reset()
	assert.False(t, s.eval(":target mips32-msa-128", &out))
	assert.Equal(t, "target mips32-msa-128\n", out.String())

	out.Reset()
	s.eval(":reset", &out)
	s.eval("top:", &out)
	s.eval("addxx_ri Reax, IB(1)", &out)
	s.eval("cmjxx_ri Reax, IB(3), LT_u, top", &out)
	assert.Contains(t, out.String(), "resolved by :list")
	out.Reset()
	s.eval(":list", &out)
	assert.Contains(t, out.String(), "addiu")
	assert.Len(t, s.lines, 3)

	out.Reset()
	s.eval("frobox_rr Xmm1", &out)
	assert.Contains(t, out.String(), "error:")
	assert.Len(t, s.lines, 3)

	assert.True(t, s.eval(":quit", &out))
}

func TestGenerate(t *testing.T) {
	text, err := generate(`for (var i = 0; i < 3; i++) emit("addox_ld Xmm1, [Rebp + DP(" + hex(i * 16) + ")]")`)
	require.NoError(t, err)
	assert.Equal(t, "addox_ld Xmm1, [Rebp + DP(0x0)]\naddox_ld Xmm1, [Rebp + DP(0x10)]\naddox_ld Xmm1, [Rebp + DP(0x20)]", text)

	_, err = generate("emit(")
	assert.Error(t, err)

	out, err := rtasm(t, `emit("addox_rr Xmm1, Xmm2"); emit("addox_rr Xmm1, Xmm2")`, "encode", "--js", "--target", "x86_64-sse2-128")
	require.NoError(t, err)
	assert.Equal(t, "660ffeca660ffeca\n", out)

	s := &session{cfg: target.MustParse("x86_64-sse2-128")}
	var buf bytes.Buffer
	s.eval(`!emit("addox_rr Xmm1, Xmm2"); emit("xorox_rr Xmm1, Xmm1")`, &buf)
	assert.Len(t, s.lines, 2)
	assert.True(t, strings.HasPrefix(buf.String(), "660ffeca\n"))
}

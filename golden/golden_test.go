package golden

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectors(t *testing.T) {
	f, err := Load("testdata/vectors.json")
	require.NoError(t, err)
	require.NotEmpty(t, f.Vectors)
	for _, v := range f.Vectors {
		t.Run(v.Name, func(t *testing.T) {
			got, err := Encode(v)
			require.NoError(t, err)
			assert.Equal(t, v.Code, got)
		})
	}
	mm := Check(f)
	assert.Empty(t, mm)
	d, err := Diff(f, mm, false)
	require.NoError(t, err)
	assert.Empty(t, d)
}

func TestDiffReportsDrift(t *testing.T) {
	f := &File{Vectors: []Vector{
		{Name: "ok", Profile: "x86_64-sse2-128", Source: "addox_rr Xmm1, Xmm2", Code: "660ffeca"},
		{Name: "stale", Profile: "x86_64-sse2-128", Source: "addos_rr Xmm1, Xmm2", Code: "660ffeca"},
		{Name: "broken", Profile: "x86_64-sse2-128", Source: "frobox_rr Xmm1, Xmm2", Code: "00"},
	}}
	mm := Check(f)
	require.Len(t, mm, 2)
	assert.Equal(t, "stale", mm[0].Name)
	assert.Equal(t, "0f58ca", mm[0].Got)
	assert.Error(t, mm[1].Err)

	d, err := Diff(f, mm, false)
	require.NoError(t, err)
	assert.Contains(t, d, "0f58ca")
	assert.Contains(t, d, "stale")
}

func TestUpdateRoundTrip(t *testing.T) {
	f := &File{Vectors: []Vector{
		{Name: "b", Profile: "x86_64-avx2-256", Source: "addox3rr Xmm1, Xmm2, Xmm3"},
		{Name: "a", Profile: "mips32-msa-128", Source: "addox3rr Xmm1, Xmm2, Xmm3"},
	}}
	require.NoError(t, Update(f))
	assert.Equal(t, "c5edfecb", f.Vectors[0].Code)
	assert.Equal(t, []string{"a", "b"}, f.Names())

	path := filepath.Join(t.TempDir(), "v.json")
	require.NoError(t, Save(path, f))
	g, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, f, g)
	assert.Empty(t, Check(g))

	f.Vectors = append(f.Vectors, Vector{Name: "bad", Profile: "nope", Source: ""})
	assert.Error(t, Update(f))
}

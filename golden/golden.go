// Package golden keeps expected encodings of listing snippets in JSON
// files and reports drift as a JSON diff.
package golden

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/colorfulnotion/rtsimd/encoder"
	"github.com/colorfulnotion/rtsimd/target"
	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"
)

// Vector is one expected encoding.
type Vector struct {
	Name    string `json:"name"`
	Profile string `json:"profile"`
	Source  string `json:"source"`
	Code    string `json:"code"` // lower-case hex
}

// File is a set of vectors.
type File struct {
	Vectors []Vector `json:"vectors"`
}

// Load reads a vector file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &f, nil
}

// Save writes f with stable indentation.
func Save(path string, f *File) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// Encode computes the hex encoding of v.
func Encode(v Vector) (string, error) {
	cfg, err := target.Parse(v.Profile)
	if err != nil {
		return "", err
	}
	code, err := encoder.Encode(cfg, v.Source)
	if err != nil {
		return "", fmt.Errorf("%s: %w", v.Name, err)
	}
	return hex.EncodeToString(code), nil
}

// Mismatch is a vector whose encoding changed.
type Mismatch struct {
	Name string
	Want string
	Got  string
	Err  error
}

// Check encodes every vector and returns the mismatches.
func Check(f *File) []Mismatch {
	var out []Mismatch
	for _, v := range f.Vectors {
		got, err := Encode(v)
		if err != nil || got != v.Code {
			out = append(out, Mismatch{Name: v.Name, Want: v.Code, Got: got, Err: err})
		}
	}
	return out
}

// Update rewrites every vector's code with the current encoding.
func Update(f *File) error {
	for i := range f.Vectors {
		got, err := Encode(f.Vectors[i])
		if err != nil {
			return err
		}
		f.Vectors[i].Code = got
	}
	return nil
}

// Diff renders want and got, keyed by vector name, as an ASCII JSON diff.
// It returns "" when they agree.
func Diff(f *File, mismatches []Mismatch, coloring bool) (string, error) {
	if len(mismatches) == 0 {
		return "", nil
	}
	want := map[string]string{}
	got := map[string]string{}
	for _, v := range f.Vectors {
		want[v.Name] = v.Code
		got[v.Name] = v.Code
	}
	for _, m := range mismatches {
		got[m.Name] = m.Got
		if m.Err != nil {
			got[m.Name] = "error: " + m.Err.Error()
		}
	}
	left, err := json.Marshal(want)
	if err != nil {
		return "", err
	}
	right, err := json.Marshal(got)
	if err != nil {
		return "", err
	}
	delta, err := gojsondiff.New().Compare(left, right)
	if err != nil {
		return "", err
	}
	if !delta.Modified() {
		return "", nil
	}
	var leftObj map[string]interface{}
	if err := json.Unmarshal(left, &leftObj); err != nil {
		return "", err
	}
	f2 := formatter.NewAsciiFormatter(leftObj, formatter.AsciiFormatterConfig{Coloring: coloring})
	return f2.Format(delta)
}

// Names lists the vector names in order.
func (f *File) Names() []string {
	names := make([]string, len(f.Vectors))
	for i, v := range f.Vectors {
		names[i] = v.Name
	}
	sort.Strings(names)
	return names
}

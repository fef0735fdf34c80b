package control

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/couchcryptid/flex-control/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeControl(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParse_OrderAndCanonicalNames(t *testing.T) {
	doc, err := Parse(strings.NewReader("class EA\n\nStream OPER\nGRID 0.5\n"), "")
	require.NoError(t, err)

	assert.Equal(t, []string{"CLASS", "STREAM", "GRID"}, doc.Keys())
	assert.Equal(t, "EA", doc.Get("class"))
	assert.Equal(t, "OPER", doc.Get("STREAM"))
	assert.Equal(t, 3, doc.Len())
}

func TestParse_ValueKeepsInnerWhitespace(t *testing.T) {
	doc, err := Parse(strings.NewReader("TYPE AN FC  FC\n"), "")
	require.NoError(t, err)
	assert.Equal(t, "AN FC  FC", doc.Get(KeyType))
}

func TestParse_MalformedLine(t *testing.T) {
	_, err := Parse(strings.NewReader("CLASS EA\nBROKEN\n"), "CONTROL_EA5")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrParse))

	var perr *domain.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 2, perr.Line)
	assert.Equal(t, "BROKEN", perr.Text)
	assert.Equal(t, "CONTROL_EA5", perr.Source)
	assert.Contains(t, err.Error(), "BROKEN")
}

func TestParse_DuplicateOverwritesInPlace(t *testing.T) {
	doc, err := Parse(strings.NewReader("A 1\nB 2\na 3\n"), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, doc.Keys())
	assert.Equal(t, "3", doc.Get("A"))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "CONTROL_OD"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMissingResource))
}

func TestSave_ByteIdenticalRoundTrip(t *testing.T) {
	const content = "CLASS EA\nSTREAM OPER\n"
	path := writeControl(t, t.TempDir(), "CONTROL_EA5", content)

	doc, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, doc.Save(path))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(got))
}

func TestSave_RoundTripNormalizesCase(t *testing.T) {
	dir := t.TempDir()
	path := writeControl(t, dir, "CONTROL_OD", "class OD\nstream OPER\nlevelist 1/to/137\n")

	first, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, first.Save(path))

	second, err := Load(path)
	require.NoError(t, err)

	if diff := cmp.Diff(first.Directives(), second.Directives()); diff != "" {
		t.Errorf("round trip mismatch (-first +second):\n%s", diff)
	}

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "CLASS OD\nSTREAM OPER\nLEVELIST 1/to/137\n", string(got))
}

func TestSave_PreservesPermissionsAndLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeControl(t, dir, "CONTROL_OD", "CLASS OD\n")
	require.NoError(t, os.Chmod(path, 0o600))

	doc, err := Load(path)
	require.NoError(t, err)
	doc.Set("STREAM", "OPER")
	require.NoError(t, doc.Save(path))

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestMerge_AppendsNewAndOverwritesExisting(t *testing.T) {
	doc := New().Merge(
		Directive{Name: "CLASS", Value: "OD"},
		Directive{Name: "STREAM", Value: "OPER"},
	)
	doc.Merge(
		Directive{Name: "grid", Value: "1"},
		Directive{Name: "class", Value: "EA"},
	)

	assert.Equal(t, []string{"CLASS", "STREAM", "GRID"}, doc.Keys())
	assert.Equal(t, "EA", doc.Get("CLASS"))
	assert.Equal(t, "CLASS EA\nSTREAM OPER\nGRID 1\n", doc.String())
}

func TestDelete_KeepsOrder(t *testing.T) {
	doc := New().Merge(
		Directive{Name: "A", Value: "1"},
		Directive{Name: "B", Value: "2"},
		Directive{Name: "C", Value: "3"},
	)
	doc.Delete("b")
	doc.Delete("missing")
	assert.Equal(t, []string{"A", "C"}, doc.Keys())
}

func TestTypedAccessors(t *testing.T) {
	doc := New().Merge(
		Directive{Name: "DTIME", Value: "3"},
		Directive{Name: "GRID", Value: "0.25"},
		Directive{Name: "CLASS", Value: "EA"},
	)

	n, err := doc.Int("dtime")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	g, err := doc.Float(KeyGrid)
	require.NoError(t, err)
	assert.InEpsilon(t, 0.25, g, 1e-12)

	_, err = doc.Int(KeyClass)
	require.Error(t, err)

	_, err = doc.Float("UPPER")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UPPER")

	_, ok := doc.Lookup("UPPER")
	assert.False(t, ok)
}

func TestClone_IsIndependent(t *testing.T) {
	doc := New().Merge(Directive{Name: "CLASS", Value: "OD"})
	c := doc.Clone()
	c.Set("CLASS", "EA")
	c.Set("STREAM", "OPER")

	assert.Equal(t, "OD", doc.Get("CLASS"))
	assert.Equal(t, 1, doc.Len())
}

func TestFindControlFile(t *testing.T) {
	dir := t.TempDir()
	writeControl(t, dir, "README", "x")
	writeControl(t, dir, "CONTROL_OD", "CLASS OD\n")
	writeControl(t, dir, "CONTROL_EA5", "CLASS EA\n")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "CONTROLS"), 0o755))

	path, err := FindControlFile(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "CONTROL_EA5"), path)
}

func TestFindControlFile_None(t *testing.T) {
	dir := t.TempDir()
	writeControl(t, dir, "notes.txt", "x")

	_, err := FindControlFile(dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMissingResource))
	assert.Contains(t, err.Error(), "control file")
}

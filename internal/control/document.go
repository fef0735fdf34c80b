// Package control reads, derives and writes flex_extract control files.
//
// A Document is loaded from a control file, mutated by the derivations in
// this package (SetArea, SetSteps, SetEnsemble) through Merge, and saved back
// over the same file. Derivations compute every new value before merging, so
// a failed call leaves the document unchanged.
//
// A Document is not safe for concurrent mutation.
package control

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/couchcryptid/flex-control/internal/domain"
)

// lineRe splits a directive line into name and value on the first run of
// whitespace.
var lineRe = regexp.MustCompile(`^(\S+)\s+(\S.*)$`)

// Directive is a single name/value pair.
type Directive struct {
	Name  string
	Value string
}

// Document is an ordered set of control directives keyed by canonical
// (upper-case) name.
type Document struct {
	keys   []string
	values map[string]string
}

// New returns an empty document.
func New() *Document {
	return &Document{values: make(map[string]string)}
}

// Canonical returns the canonical form of a directive name.
func Canonical(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// Load reads the control file at path.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &domain.MissingResourceError{Resource: "control file", Location: path}
		}
		return nil, fmt.Errorf("open control file: %w", err)
	}
	defer f.Close()

	return Parse(f, path)
}

// Parse reads control directives from r. source names the input in errors.
func Parse(r io.Reader, source string) (*Document, error) {
	doc := New()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNum := 0
	for sc.Scan() {
		lineNum++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		m := lineRe.FindStringSubmatch(line)
		if m == nil {
			return nil, &domain.ParseError{Source: source, Line: lineNum, Text: sc.Text()}
		}
		doc.Set(m[1], m[2])
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read control file: %w", err)
	}
	return doc, nil
}

// Set inserts or overwrites a directive. New directives are appended.
func (d *Document) Set(name, value string) {
	key := Canonical(name)
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
}

// Merge applies updates in order and returns d.
func (d *Document) Merge(updates ...Directive) *Document {
	for _, u := range updates {
		d.Set(u.Name, u.Value)
	}
	return d
}

// Delete removes a directive, keeping the order of the rest.
func (d *Document) Delete(name string) {
	key := Canonical(name)
	if _, ok := d.values[key]; !ok {
		return
	}
	delete(d.values, key)
	for i, k := range d.keys {
		if k == key {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			return
		}
	}
}

// Lookup returns the value of a directive and whether it is set.
func (d *Document) Lookup(name string) (string, bool) {
	v, ok := d.values[Canonical(name)]
	return v, ok
}

// Get returns the value of a directive, or "" when unset.
func (d *Document) Get(name string) string {
	return d.values[Canonical(name)]
}

// Int parses a directive as an integer.
func (d *Document) Int(name string) (int, error) {
	v, ok := d.Lookup(name)
	if !ok {
		return 0, fmt.Errorf("directive %s is not set", Canonical(name))
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("directive %s: %w", Canonical(name), err)
	}
	return n, nil
}

// Float parses a directive as a float.
func (d *Document) Float(name string) (float64, error) {
	v, ok := d.Lookup(name)
	if !ok {
		return 0, fmt.Errorf("directive %s is not set", Canonical(name))
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("directive %s: %w", Canonical(name), err)
	}
	return f, nil
}

// Keys returns the directive names in document order.
func (d *Document) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// Directives returns the directives in document order.
func (d *Document) Directives() []Directive {
	out := make([]Directive, len(d.keys))
	for i, k := range d.keys {
		out[i] = Directive{Name: k, Value: d.values[k]}
	}
	return out
}

// Len returns the number of directives.
func (d *Document) Len() int { return len(d.keys) }

// Clone returns a deep copy of d.
func (d *Document) Clone() *Document {
	c := &Document{
		keys:   make([]string, len(d.keys)),
		values: make(map[string]string, len(d.values)),
	}
	copy(c.keys, d.keys)
	for k, v := range d.values {
		c.values[k] = v
	}
	return c
}

// WriteTo serializes the document, one "NAME value" line per directive.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	for _, k := range d.keys {
		written, err := fmt.Fprintf(bw, "%s %s\n", k, d.values[k])
		n += int64(written)
		if err != nil {
			return n, err
		}
	}
	return n, bw.Flush()
}

// String returns the serialized document.
func (d *Document) String() string {
	var sb strings.Builder
	_, _ = d.WriteTo(&sb)
	return sb.String()
}

// Save writes the document to path, replacing any existing file. The data
// is written to a temporary file in the same directory and renamed over the
// destination.
func (d *Document) Save(path string) error {
	perm := os.FileMode(0o644)
	if fi, err := os.Stat(path); err == nil {
		perm = fi.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".control-*")
	if err != nil {
		return fmt.Errorf("create temp control file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := d.WriteTo(tmp); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write control file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("sync control file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close control file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("chmod control file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace control file: %w", err)
	}
	return nil
}

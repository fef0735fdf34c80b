// Package manifest turns the CSV request manifest written by the
// preparation step into ordered MARS retrieval requests.
//
// For every row, in order:
//
//   - each column becomes a keyword, named after its normalized header;
//   - cells that are empty after trimming are skipped;
//   - values starting with "/" are wrapped in double quotes so MARS does not
//     read them as a list continuation;
//   - columns in the rename table are renamed ("marsclass" becomes "class");
//   - columns in the drop list are removed ("request_number").
package manifest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/couchcryptid/flex-control/internal/domain"
)

// Options configures the column handling.
type Options struct {
	// Rename maps a normalized column name to the request keyword.
	Rename map[string]string
	// Drop lists normalized column names never emitted in a request.
	Drop []string
}

// DefaultOptions returns the column handling for flex_extract manifests.
func DefaultOptions() Options {
	return Options{
		Rename: map[string]string{"marsclass": "class"},
		Drop:   []string{"request_number"},
	}
}

// Load reads the manifest at path with DefaultOptions.
func Load(path string) ([]*domain.Request, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &domain.MissingResourceError{Resource: "request manifest", Location: path}
		}
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	return Parse(f, path, DefaultOptions())
}

// Parse reads a manifest from r. source names the input in errors.
func Parse(r io.Reader, source string, opts Options) ([]*domain.Request, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &domain.ParseError{Source: source, Line: 1, Reason: "missing header row"}
		}
		return nil, csvParseError(source, err, nil)
	}
	columns := NormalizeNames(header)

	drop := make(map[string]bool, len(opts.Drop))
	for _, c := range opts.Drop {
		drop[c] = true
	}

	var requests []*domain.Request
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvParseError(source, err, record)
		}
		requests = append(requests, buildRequest(columns, record, opts.Rename, drop))
	}
	return requests, nil
}

func buildRequest(columns, record []string, rename map[string]string, drop map[string]bool) *domain.Request {
	req := domain.NewRequest()
	for i, col := range columns {
		value := strings.TrimSpace(record[i])
		if value == "" {
			continue
		}
		if strings.HasPrefix(value, "/") {
			value = `"` + value + `"`
		}
		req.Set(col, value)
	}
	for from, to := range rename {
		req.Rename(from, to)
	}
	for col := range drop {
		req.Delete(col)
	}
	return req
}

func csvParseError(source string, err error, record []string) error {
	perr := &domain.ParseError{Source: source, Reason: err.Error(), Text: strings.Join(record, ",")}
	var cerr *csv.ParseError
	if errors.As(err, &cerr) {
		perr.Line = cerr.Line
		perr.Reason = cerr.Err.Error()
	}
	return perr
}

// NormalizeNames turns header cells into identifiers: surrounding space is
// trimmed, characters other than letters, digits and underscores become
// underscores, a leading digit gets an underscore prefix, empty names
// become Column<n>, and repeated names get a _<n> suffix.
func NormalizeNames(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		name := normalizeName(h)
		if name == "" {
			name = "Column" + strconv.Itoa(i+1)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = name + "_" + strconv.Itoa(n)
		} else {
			seen[name] = 1
		}
		out[i] = name
	}
	return out
}

func normalizeName(s string) string {
	s = strings.TrimSpace(strings.TrimPrefix(s, "\ufeff"))
	var sb strings.Builder
	for i, r := range s {
		if i == 0 && unicode.IsDigit(r) {
			sb.WriteByte('_')
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('_')
		}
	}
	return sb.String()
}

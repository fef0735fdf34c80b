package control

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/flex-control/internal/domain"
)

// Directive names read or written by this package.
const (
	KeyClass     = "CLASS"
	KeyStream    = "STREAM"
	KeyGrid      = "GRID"
	KeyLower     = "LOWER"
	KeyUpper     = "UPPER"
	KeyLeft      = "LEFT"
	KeyRight     = "RIGHT"
	KeyStartDate = "START_DATE"
	KeyEndDate   = "END_DATE"
	KeyType      = "TYPE"
	KeyTime      = "TIME"
	KeyStep      = "STEP"
	KeyDTime     = "DTIME"
	KeyAccTime   = "ACCTIME"
	KeyNumber    = "NUMBER"
	KeyLevel     = "LEVEL"
	KeyLevelList = "LEVELIST"
	KeyResol     = "RESOL"
	KeyFormat    = "FORMAT"
	KeyGauss     = "GAUSS"
)

// controlPrefix is the file-name prefix of control files.
const controlPrefix = "CONTROL"

// FindControlFile returns the path of the control file in dir: the first
// regular file, in lexical order, whose name starts with CONTROL.
func FindControlFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &domain.MissingResourceError{Resource: "run directory", Location: dir}
		}
		return "", fmt.Errorf("read run directory: %w", err)
	}
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if strings.HasPrefix(e.Name(), controlPrefix) {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", &domain.MissingResourceError{Resource: "control file", Location: dir}
}

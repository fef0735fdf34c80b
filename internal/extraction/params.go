// Package extraction builds the parameter set handed to the external
// flex_extract submission and preparation programs. It does not run them.
package extraction

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/flex-control/internal/domain"
)

// gribSuffix marks the intermediate files the retrieval step leaves in the
// input directory, named <name>.<ppid>.<pid>.grb.
const gribSuffix = ".grb"

// Params is the argument set of a submit or prepare invocation.
type Params struct {
	ControlFile string
	InputDir    string
	OutputDir   string
	// PPID is set for the preparation step only.
	PPID string
}

// NewParams returns the parameter set for a submission run.
func NewParams(controlFile, inputDir, outputDir string) Params {
	return Params{ControlFile: controlFile, InputDir: inputDir, OutputDir: outputDir}
}

// ForPrepare returns a copy of p with PPID taken from the GRIB files in
// the input directory.
func (p Params) ForPrepare() (Params, error) {
	ppid, err := FindPPID(p.InputDir)
	if err != nil {
		return Params{}, err
	}
	p.PPID = ppid
	return p, nil
}

// Args renders the parameters as command-line arguments.
func (p Params) Args() []string {
	args := []string{
		"--controlfile", p.ControlFile,
		"--inputdir", p.InputDir,
		"--outputdir", p.OutputDir,
	}
	if p.PPID != "" {
		args = append(args, "--ppid", p.PPID)
	}
	return args
}

// FindPPID returns the process id embedded in the first (lexically) GRIB
// file in dir, the second dot-separated field of its name.
func FindPPID(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &domain.MissingResourceError{Resource: "input directory", Location: dir}
		}
		return "", fmt.Errorf("read input directory: %w", err)
	}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, gribSuffix) {
			continue
		}
		fields := strings.Split(name, ".")
		if len(fields) < 3 || fields[1] == "" {
			continue
		}
		return fields[1], nil
	}
	return "", &domain.MissingResourceError{
		Resource: "GRIB file matching *.<ppid>.*" + gribSuffix,
		Location: filepath.Clean(dir),
	}
}

// Command flexctl edits flex_extract control files and dispatches the
// retrieval requests of a prepared run.
//
// Usage:
//
//	flexctl area --box 50,-10,40,10 --grid 0.5
//	flexctl steps --start 2020-01-01 --end 2020-01-02 --timestep 3
//	flexctl ensemble --seed 7
//	flexctl show
//	flexctl params --input ./input --output ./output --prepare
//	flexctl requests mars_requests.csv -o yaml
//	flexctl retrieve mars_requests.csv --public
package main

import (
	"log/slog"
	"os"
)

func main() {
	if err := newRootCmd(newApp()).Execute(); err != nil {
		slog.Error("flexctl failed", "error", err)
		os.Exit(1)
	}
}

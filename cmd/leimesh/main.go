// Command leimesh generates LEI kite airfoil profiles, meshes their fluid
// domain and computes their polars with OpenFOAM.
package main

import (
	"os"

	"github.com/kiteworks/leimesh/cmd/leimesh/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

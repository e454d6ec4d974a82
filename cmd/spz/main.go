// spz inspects and converts Gaussian splat point cloud files.
//
// Usage:
//
//	spz info <path>
//	spz convert <input> <output>
//
// info prints num_points, sh_degree, antialiased, and median_volume for
// the given SPZ or PLY file. convert reads <input> and writes <output>,
// choosing the SPZ or PLY codec on each side from the file suffix.
//
// Exit codes:
//
//	0: success
//	1: error
package main

import (
	"fmt"
	"os"

	"github.com/mrjoshuak/go-spz/spzutil"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "info":
		if len(os.Args) != 3 {
			printUsage()
			os.Exit(1)
		}
		err = runInfo(os.Args[2])
	case "convert":
		if len(os.Args) != 4 {
			printUsage()
			os.Exit(1)
		}
		err = spzutil.Convert(os.Args[2], os.Args[3])
	case "-h", "--help":
		printUsage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "spz: unknown command %q\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "spz: %v\n", err)
		os.Exit(1)
	}
}

func runInfo(path string) error {
	info, err := spzutil.GetFileInfo(path)
	if err != nil {
		return err
	}
	fmt.Printf("num_points:    %d\n", info.NumPoints)
	fmt.Printf("sh_degree:     %d\n", info.ShDegree)
	fmt.Printf("antialiased:   %t\n", info.Antialiased)
	fmt.Printf("median_volume: %g\n", info.MedianVolume)
	return nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: spz info <path>")
	fmt.Fprintln(os.Stderr, "       spz convert <input> <output>")
}

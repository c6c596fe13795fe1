package main

import (
	"fmt"
	"math/rand"
	"os"

	flag "github.com/spf13/pflag"

	"kp_with_conflicts/src/kpcs"
)

func main() {
	var outPath string
	var numItems int
	var meanDensity, stdDevDensity float64
	var seed int64

	flag.StringVar(&outPath, "out", "out.dat", "The output file")
	flag.IntVar(&numItems, "items", 0, "The number of items")
	flag.Float64Var(&meanDensity, "meand", 0, "The conflict density mean")
	flag.Float64Var(&stdDevDensity, "stddevd", 0, "The conflict density standard deviation")
	flag.Int64Var(&seed, "seed", 1, "The random seed")

	flag.Parse()

	err := false
	if numItems <= 0 {
		fmt.Fprintln(os.Stderr, "Must specify the number of items")
		err = true
	}
	if meanDensity <= 0 {
		fmt.Fprintln(os.Stderr, "Must specify conflict density mean")
		err = true
	}
	if stdDevDensity < 0 {
		fmt.Fprintln(os.Stderr, "Conflict density standard deviation must not be negative")
		err = true
	}

	if err {
		os.Exit(1)
	}

	inst := kpcs.Generate(rand.New(rand.NewSource(seed)), numItems, meanDensity, stdDevDensity)

	if ferr := writeInstance(outPath, inst); ferr != nil {
		fmt.Fprintln(os.Stderr, ferr)
		os.Exit(1)
	}
}

func writeInstance(path string, inst *kpcs.Instance) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := inst.WriteTo(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

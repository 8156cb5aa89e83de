//go:build mage
// +build mage

package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/magefile/mage/mg"
)

// Default target to run when none is specified
// If not set, running mage will list available targets
var Default = Build

func Build() error {
	mg.Deps(BuildPeakFinder)
	mg.Deps(BuildCoincidence)
	mg.Deps(BuildMeasureAlgos)
	fmt.Println("Compilation finished")
	return nil
}

// goCommand runs go with the cgo flags needed by the HDF5 writer.
func goCommand(args ...string) *exec.Cmd {
	ldflags := os.Getenv("CGO_LDFLAGS")
	cflags := os.Getenv("CGO_CFLAGS")
	cmd := exec.Command("go", args...)
	cmd.Env = append(os.Environ(),
		"CGO_ENABLED=1",
		fmt.Sprintf("CGO_LDFLAGS=%s", ldflags),
		fmt.Sprintf("CGO_CFLAGS=%s", cflags))
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd
}

func BuildPeakFinder() error {
	fmt.Println("Building peakFinder executable...")
	return goCommand("build", "-o", "./bin/peakFinder", "./peakFinder").Run()
}

func BuildCoincidence() error {
	fmt.Println("Building coincidenceAnalysis executable...")
	return goCommand("build", "-o", "./bin/coincidenceAnalysis", "./coincidenceAnalysis").Run()
}

func BuildMeasureAlgos() error {
	fmt.Println("Building measureAlgos executable...")
	return goCommand("build", "-o", "./bin/measureAlgos", "./measureAlgos").Run()
}

// Test runs the unit tests of the analysis library and the plots.
func Test() error {
	fmt.Println("Running tests...")
	return goCommand("test", "./pkg", "./pkg/plots").Run()
}

// Command validate performs integrity checks over a completed run: every
// valid volume under the input root must have its mirrored profile output,
// the round-trip property must hold for every output, and outputs with no
// surviving input are reported as orphans. Exit code 1 signals a failed
// check, so the command can gate a downstream aggregation job.
//
// Usage:
//
//	go run ./cmd/validate -input-root data/pvol -output-root data/vp
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/IsaacEarlJr/tigerRAD/internal/domain"
	"github.com/IsaacEarlJr/tigerRAD/internal/scan"
)

// phase tracks pass/fail for one validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	inputRoot := flag.String("input-root", "", "local root holding raw volumes")
	outputRoot := flag.String("output-root", "", "local root holding derived profiles")
	invalidSuffix := flag.String("invalid-suffix", "_MDM", "invalid-data marker")
	outputSuffix := flag.String("output-suffix", ".h5", "derived-profile suffix")
	flag.Parse()

	if *inputRoot == "" || *outputRoot == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*inputRoot, *outputRoot, *invalidSuffix, *outputSuffix); code != 0 {
		os.Exit(code)
	}
}

func run(inputRoot, outputRoot, invalidSuffix, outputSuffix string) int {
	fmt.Println("=== Run Integrity Validation ===")
	fmt.Println()

	inputs, err := scan.Walk(inputRoot, invalidSuffix)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: walk input root: %v\n", err)
		return 1
	}
	outputs, err := scan.Walk(outputRoot, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: walk output root: %v\n", err)
		return 1
	}

	phases := []*phase{
		checkCoverage(inputRoot, outputRoot, inputs, outputSuffix),
		checkRoundTrip(inputRoot, outputRoot, outputs, outputSuffix),
		checkOrphans(inputRoot, outputRoot, outputs, outputSuffix),
	}

	failed := false
	for _, p := range phases {
		if p.passed() {
			fmt.Printf("PASS  %s\n", p.name)
			continue
		}
		failed = true
		fmt.Printf("FAIL  %s\n", p.name)
		for _, e := range p.errors {
			fmt.Printf("      %s\n", e)
		}
	}

	fmt.Println()
	if failed {
		fmt.Println("validation failed")
		return 1
	}
	valid := 0
	for _, f := range inputs {
		if f.Valid {
			valid++
		}
	}
	fmt.Printf("validation passed: %d volumes, %d profiles\n", valid, len(outputs))
	return 0
}

// checkCoverage verifies every valid input has its mirrored output on disk.
func checkCoverage(inputRoot, outputRoot string, inputs []domain.LocalFile, suffix string) *phase {
	p := &phase{name: "coverage: every valid volume has a profile"}
	for _, f := range inputs {
		if !f.Valid {
			continue
		}
		mp, err := domain.MapOutput(inputRoot, outputRoot, f.Path, suffix)
		if err != nil {
			p.errorf("map %s: %v", f.Path, err)
			continue
		}
		if _, err := os.Stat(mp.Output); err != nil {
			p.errorf("missing profile for %s: want %s", f.Path, mp.Output)
		}
	}
	return p
}

// checkRoundTrip verifies every output inverts to an input path that maps
// straight back onto the same output.
func checkRoundTrip(inputRoot, outputRoot string, outputs []domain.LocalFile, suffix string) *phase {
	p := &phase{name: "round trip: outputs invert to input paths"}
	for _, f := range outputs {
		in, err := domain.InputFromOutput(inputRoot, outputRoot, f.Path, suffix)
		if err != nil {
			p.errorf("%s: %v", f.Path, err)
			continue
		}
		mp, err := domain.MapOutput(inputRoot, outputRoot, in, suffix)
		if err != nil {
			p.errorf("remap %s: %v", in, err)
			continue
		}
		if mp.Output != f.Path {
			p.errorf("%s round-trips to %s", f.Path, mp.Output)
		}
	}
	return p
}

// checkOrphans reports outputs whose input no longer exists.
func checkOrphans(inputRoot, outputRoot string, outputs []domain.LocalFile, suffix string) *phase {
	p := &phase{name: "orphans: every profile still has its volume"}
	for _, f := range outputs {
		in, err := domain.InputFromOutput(inputRoot, outputRoot, f.Path, suffix)
		if err != nil {
			continue // already reported by the round-trip phase
		}
		if _, err := os.Stat(in); err != nil {
			p.errorf("orphan profile %s: no volume at %s", f.Path, in)
		}
	}
	return p
}

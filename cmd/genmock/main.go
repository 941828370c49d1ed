// Command genmock writes a synthetic NEXRAD Level-II station-day tree for
// offline testing of the walker and converter stages without touching the
// archive bucket. The tree includes well-formed volumes on a fixed scan
// cadence, a trailing _MDM metadata object, and one malformed basename, so
// every filter path is exercised.
//
// Usage:
//
//	go run ./cmd/genmock -root data/pvol -station KDIX -date 2024-12-12 -interval 10m
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	root := flag.String("root", "", "input root to write the tree under")
	station := flag.String("station", "KDIX", "4-letter station identifier")
	date := flag.String("date", "2024-12-12", "archive day, YYYY-MM-DD")
	interval := flag.Duration("interval", 10*time.Minute, "scan cadence")
	flag.Parse()

	if *root == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -root")
	}
	st := strings.ToUpper(*station)
	if len(st) != 4 {
		return fmt.Errorf("station must be 4 letters, got %q", st)
	}
	day, err := time.Parse("2006-01-02", *date)
	if err != nil {
		return fmt.Errorf("parsing -date: %w", err)
	}
	if *interval < time.Minute {
		return fmt.Errorf("interval must be at least 1m, got %s", *interval)
	}

	dir := filepath.Join(*root, day.Format("2006/01/02"), st)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	count := 0
	for t := day; t.Day() == day.Day(); t = t.Add(*interval) {
		name := fmt.Sprintf("%s%s_%s_V06", st, day.Format("20060102"), t.Format("150405"))
		if err := writeVolume(filepath.Join(dir, name)); err != nil {
			return err
		}
		count++
	}

	// One metadata object and one convention-breaking name, to exercise the
	// invalid-marker and unparseable paths.
	extras := []string{
		fmt.Sprintf("%s%s_235959_V06_MDM", st, day.Format("20060102")),
		"stray-checksum-file",
	}
	for _, name := range extras {
		if err := writeVolume(filepath.Join(dir, name)); err != nil {
			return err
		}
	}

	log.Printf("wrote %d volumes plus %d extras under %s", count, len(extras), dir)
	return nil
}

// writeVolume writes a placeholder volume. The payload only needs to exist;
// converter tests stub the real binary.
func writeVolume(path string) error {
	if err := os.WriteFile(path, []byte("AR2V0006."), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Command generate-users writes a synthetic users dataset to a CSV file.
//
// The file can be loaded with import-users to benchmark queries against a pre-populated table.
// One million records take roughly 150MB.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/AntonStoeckl/backend-benchmark-go/benchmark"
	"github.com/AntonStoeckl/backend-benchmark-go/benchmark/fixtures"
)

const (
	defaultCount     = 1000000
	defaultOutputDir = "testutil/fixtures"
	outputFile       = "users.csv"
)

func main() {
	count := flag.Int("count", defaultCount, "Number of records to generate")
	outputDir := flag.String("out", "", "Output directory, defaults to testutil/fixtures below the project root")
	seed := flag.Uint64("seed", 0, "Seed for reproducible datasets, 0 for a random one")
	flag.Parse()

	path, err := generateUsers(*count, *outputDir, *seed)
	if err != nil {
		log.Fatalf("Error generating fixture data: %v", err)
	}

	fmt.Printf("Successfully generated %d users and wrote CSV to %s\n", *count, path)
}

// generateUsers writes count records to users.csv in outputDir and returns the file path.
func generateUsers(count int, outputDir string, seed uint64) (string, error) {
	if outputDir == "" {
		projectRoot, err := findProjectRoot()
		if err != nil {
			return "", fmt.Errorf("failed to find project root: %w", err)
		}
		outputDir = filepath.Join(projectRoot, defaultOutputDir)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	var options []benchmark.GeneratorOption
	if seed != 0 {
		options = append(options, benchmark.WithRandSource(rand.NewPCG(seed, seed)))
	}

	records, err := benchmark.NewGenerator(options...).Generate(count)
	if err != nil {
		return "", err
	}

	path := filepath.Join(outputDir, outputFile)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create CSV file: %w", err)
	}

	if err = fixtures.WriteCSV(file, records); err != nil {
		return "", errors.Join(err, file.Close())
	}

	return path, file.Close()
}

// findProjectRoot walks up from the working directory to the directory holding go.mod.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, statErr := os.Stat(filepath.Join(dir, "go.mod")); statErr == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", errors.New("could not find project root (no go.mod found)")
}

package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"zoo-management/logger"
	"zoo-management/zoo"
)

// seedFile is the layout of the YAML seed document.
type seedFile struct {
	Exhibits []struct {
		Name     string `yaml:"name"`
		Type     string `yaml:"type"`
		Capacity int    `yaml:"capacity"`
	} `yaml:"exhibits"`
	Animals []struct {
		ID      int64  `yaml:"id"`
		Name    string `yaml:"name"`
		Species string `yaml:"species"`
		Age     int    `yaml:"age"`
		Exhibit string `yaml:"exhibit"`
	} `yaml:"animals"`
}

func main() {
	seedPath, dbFile := "seed.yaml", "zoo.db"
	if len(os.Args) > 1 {
		seedPath = os.Args[1]
	}
	if len(os.Args) > 2 {
		dbFile = os.Args[2]
	}

	data, err := os.ReadFile(seedPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading seed file: %v\n", err)
		os.Exit(1)
	}
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing seed file: %v\n", err)
		os.Exit(1)
	}

	// Clean up any existing database files
	fmt.Println("Cleaning up existing database files...")
	for _, file := range []string{dbFile, dbFile + "-shm", dbFile + "-wal"} {
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			fmt.Printf("Warning: Could not remove %s: %v\n", file, err)
		}
	}

	log, err := logger.New("warn", false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	manager, err := zoo.NewZooManager(dbFile, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating database: %v\n", err)
		os.Exit(1)
	}
	defer manager.Close()

	successCount, errorCount := 0, 0

	for _, e := range seed.Exhibits {
		fmt.Printf("Exhibit: %s (%s, %d slots)... ", e.Name, e.Type, e.Capacity)
		if _, err := manager.AddExhibit(e.Name, e.Type, e.Capacity); err != nil {
			fmt.Printf("ERROR - %v\n", err)
			errorCount++
			continue
		}
		fmt.Println("SUCCESS")
		successCount++
	}

	for _, a := range seed.Animals {
		fmt.Printf("Animal: %s the %s -> %s... ", a.Name, a.Species, a.Exhibit)
		idx := manager.Exhibits.FindIndex(a.Exhibit)
		if idx < 0 {
			fmt.Println("ERROR - unknown exhibit")
			errorCount++
			continue
		}
		added, err := manager.AddAnimal(zoo.Animal{ID: a.ID, Name: a.Name, Species: a.Species, Age: a.Age}, idx)
		switch {
		case err != nil:
			fmt.Printf("ERROR - %v\n", err)
			errorCount++
		case !added:
			fmt.Println("ERROR - exhibit full")
			errorCount++
		default:
			fmt.Printf("SUCCESS (ID: %d)\n", a.ID)
			successCount++
		}
	}

	fmt.Printf("\nSeed complete!\n")
	fmt.Printf("Successfully imported: %d entries\n", successCount)
	fmt.Printf("Errors: %d\n", errorCount)

	if successCount > 0 {
		fmt.Println("\nExhibits:")
		fmt.Printf("%-25s %-15s %-9s\n", "Name", "Type", "Occupied")
		fmt.Println(strings.Repeat("-", 51))
		for _, ex := range manager.Exhibits.List() {
			fmt.Printf("%-25s %-15s %d/%d\n", truncateString(ex.Name, 25), truncateString(ex.Type, 15), ex.Occupied, ex.Capacity)
		}
	}
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

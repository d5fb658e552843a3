// Package main implements a CLI tool to bump the current database schema
// version in a YAML tracking document, recording the pull request that
// introduced the new version.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	dbversion "github.com/bcomnes/dbversion/pkg"
)

func usage() {
	msg := `Usage:
  update-db-version [options] <pr-number>

Bumps the current_version counter in the database version document (default: .db-versions.yml)
and prepends a history record linking the new version to the given pull request number.
The counter and the history record are written together in a single atomic update.

Examples:
  update-db-version 123
  update-db-version -file db/.db-versions.yml 123
  update-db-version -dry 123

Positional arguments:
  <pr-number>     The pull request number introducing the new schema version

Options:
`
	fmt.Fprint(os.Stderr, msg)
	flag.PrintDefaults()
}

func main() {
	// Define flags.
	docFile := flag.String("file", ".db-versions.yml", "Path to the database version document")
	dryRun := flag.Bool("dry", false, "Perform a dry run without modifying the document")
	showVersion := flag.Bool("version", false, "Show CLI version and exit")
	help := flag.Bool("help", false, "Show help message and exit")

	flag.Usage = usage
	flag.Parse()

	if *help {
		usage()
		os.Exit(0)
	}
	if *showVersion {
		fmt.Println("update-db-version CLI version", Version)
		os.Exit(0)
	}

	// Guard against misplaced flags after positional args.
	for _, arg := range flag.Args() {
		if strings.HasPrefix(arg, "-") {
			fmt.Fprintln(os.Stderr, "Error: Flags must be specified before the command. Please reorder your arguments.")
			usage()
			os.Exit(1)
		}
	}

	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Error: <pr-number> positional argument is required")
		usage()
		os.Exit(1)
	}
	prNumber, err := strconv.Atoi(args[0])
	if err != nil || prNumber <= 0 {
		fmt.Fprintf(os.Stderr, "Error: <pr-number> must be a positive integer, got %q\n", args[0])
		usage()
		os.Exit(1)
	}

	var meta dbversion.BumpMeta

	if *dryRun {
		meta, err = dbversion.DryRun(*docFile, prNumber)
	} else {
		meta, err = dbversion.Run(*docFile, prNumber)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	// Summary
	if *dryRun {
		fmt.Println("Dry run complete — no files were modified.")
		fmt.Printf("Would bump database version to %d for PR #%d\n", meta.NewVersion, meta.PR)
	} else {
		fmt.Printf("Database version bumped to %d for PR #%d\n", meta.NewVersion, meta.PR)
	}
	fmt.Printf("Old Version: %d\n", meta.OldVersion)
	fmt.Printf("New Version: %d\n", meta.NewVersion)
	fmt.Printf("PR:          #%d\n", meta.PR)
}

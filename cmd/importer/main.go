// Command importer loads a student roster CSV into the placement database.
//
//	importer -file students.csv -password 'Student@123'
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/justsurfingit/placement-portal/internal/config"
	"github.com/justsurfingit/placement-portal/internal/database"
	"github.com/justsurfingit/placement-portal/internal/services"
	"github.com/olekukonko/tablewriter"
)

// Only this many row errors are printed; the total is always shown.
const maxErrorRows = 25

func main() {
	file := flag.String("file", "students.csv", "roster CSV with a header row")
	password := flag.String("password", "", "initial password for every imported student")
	flag.Parse()

	if *password == "" {
		color.Red("-password is required")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}

	f, err := os.Open(*file)
	if err != nil {
		color.Red("Error opening file: %v", err)
		os.Exit(1)
	}
	defer f.Close()

	importer := services.NewImportService(services.NewUserService(db))
	report, err := importer.ImportStudentsCSV(context.Background(), f, *password)
	if err != nil && report == nil {
		color.Red("Error importing data: %v", err)
		os.Exit(1)
	}

	color.Cyan("\n=== Roster import: %s ===", *file)
	color.Green("Imported: %d", report.Imported)
	if len(report.Errors) == 0 {
		color.Green("Skipped:  0")
	} else {
		color.Yellow("Skipped:  %d", len(report.Errors))
		printErrors(report.Errors)
	}

	if err != nil {
		color.Red("Import stopped early: %v", err)
		os.Exit(1)
	}
}

func printErrors(rowErrs []services.ImportRowError) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Line", "Email", "Reason"})
	table.SetAutoWrapText(false)

	for i, e := range rowErrs {
		if i == maxErrorRows {
			break
		}
		table.Append([]string{strconv.Itoa(e.Line), e.Email, e.Err.Error()})
	}
	table.Render()

	if len(rowErrs) > maxErrorRows {
		fmt.Printf("... and %d more\n", len(rowErrs)-maxErrorRows)
	}
}

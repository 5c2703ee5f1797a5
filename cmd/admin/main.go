package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"centavo/internal/domain/recurring"
	"centavo/internal/infrastructure/postgres"
	"centavo/internal/shared/config"
)

const usage = `Centavo Admin CLI - Management commands for the Centavo API

Usage:
  admin <command> [options]

Commands:
  detect   Run recurring pattern detection on existing transactions

Examples:
  # Detect patterns for a specific user
  admin detect --user-id=1

  # Detect patterns for multiple users
  admin detect --user-id=1,2,3

  # Detect patterns for all users with transactions
  admin detect --all

  # Run with timeout
  admin detect --user-id=1 --timeout=5m
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "detect":
		runDetect(os.Args[2:])
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		fmt.Print(usage)
		os.Exit(1)
	}
}

func runDetect(args []string) {
	fs := flag.NewFlagSet("detect", flag.ExitOnError)

	userIDStr := fs.String("user-id", "", "User ID(s) to scan (comma-separated for multiple)")
	allUsers := fs.Bool("all", false, "Scan all users with transactions")
	timeoutStr := fs.String("timeout", "30m", "Timeout for the operation (e.g., 5m, 1h)")

	fs.Usage = func() {
		fmt.Println("Usage: admin detect [options]")
		fmt.Println("\nOptions:")
		fs.PrintDefaults()
		fmt.Println("\nExamples:")
		fmt.Println("  admin detect --user-id=1")
		fmt.Println("  admin detect --user-id=1,2,3")
		fmt.Println("  admin detect --all --timeout=1h")
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *userIDStr == "" && !*allUsers {
		fmt.Println("Error: must specify --user-id or --all")
		fs.Usage()
		os.Exit(1)
	}

	timeout, err := time.ParseDuration(*timeoutStr)
	if err != nil {
		log.Fatalf("Invalid timeout format: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to database")

	ledgerRepo := postgres.NewLedgerRepository(db)
	patternRepo := postgres.NewPatternRepository(db)
	detector := recurring.NewDetector(ledgerRepo, patternRepo)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var userIDs []int64

	if *allUsers {
		userIDs, err = ledgerRepo.ListActiveUserIDs(ctx)
		if err != nil {
			log.Fatalf("Failed to list users: %v", err)
		}
		log.Printf("Found %d users with transactions", len(userIDs))
	} else {
		for _, p := range strings.Split(*userIDStr, ",") {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			id, err := strconv.ParseInt(p, 10, 64)
			if err != nil {
				log.Fatalf("Invalid user ID '%s': %v", p, err)
			}
			userIDs = append(userIDs, id)
		}
	}

	if len(userIDs) == 0 {
		log.Println("No users to process")
		return
	}

	log.Printf("Starting pattern detection for %d user(s)", len(userIDs))
	startTime := time.Now()

	for _, userID := range userIDs {
		printResult(userID, detector.Detect(ctx, userID))
	}

	elapsed := time.Since(startTime)
	log.Printf("Pattern detection completed in %v", elapsed)
}

func printResult(userID int64, result *recurring.DetectionResult) {
	fmt.Printf("\n=== User %d ===\n", userID)
	fmt.Printf("  Transactions scanned: %d\n", result.TransactionsScanned)
	fmt.Printf("  Groups analyzed:      %d\n", result.GroupsAnalyzed)
	fmt.Printf("  Patterns found:       %d\n", result.PatternsFound)
	fmt.Printf("  Patterns updated:     %d\n", result.PatternsUpdated)

	if len(result.Errors) > 0 {
		fmt.Printf("  Errors:               %d\n", len(result.Errors))
		for i, e := range result.Errors {
			if i >= 5 {
				fmt.Printf("    ... and %d more errors\n", len(result.Errors)-5)
				break
			}
			fmt.Printf("    - %s\n", e)
		}
	}
}

// cmd/tools/rank-fixture/main.go
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rank-fixture",
	Short: "Rank a company against a fixture of announcements offline",
	Long:  "rank-fixture runs the eligibility evaluator and ranker over a JSON fixture without Zeebe, PostgreSQL or Redis. It is used to check taxonomy edits and scoring changes against known cases.",
	RunE:  runRank,
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// cmd/tools/rank-fixture/rank.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"grant-workers/internal/common/validation"
	"grant-workers/internal/models"
	"grant-workers/internal/recommendation/eligibility"
	"grant-workers/internal/recommendation/ranker"
	"grant-workers/internal/recommendation/taxonomy"
)

// Fixture is the input file format. Signals is optional; when absent the
// behavior step is skipped.
type Fixture struct {
	Company       models.CompanyProfile   `json:"company"`
	Announcements []*models.Announcement  `json:"announcements"`
	Signals       *models.BehaviorSignals `json:"signals,omitempty"`
}

var (
	fixtureFile  string
	taxonomyFile string
	asOf         string
	minScore     int
	limit        int
	outputJSON   bool
)

func init() {
	rootCmd.Flags().StringVarP(&fixtureFile, "fixture", "f", "", "Path to fixture JSON (required)")
	rootCmd.Flags().StringVarP(&taxonomyFile, "taxonomy", "t", "", "Path to a taxonomy YAML overriding the built-in tables")
	rootCmd.Flags().StringVar(&asOf, "as-of", "", "Reference date YYYY-MM-DD for deadline and business age (default: today)")
	rootCmd.Flags().IntVar(&minScore, "min-score", 0, "Minimum score (default 50, 0 keeps every scored candidate)")
	rootCmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum recommendations (0 uses the ranker default)")
	rootCmd.Flags().BoolVar(&outputJSON, "json", false, "Print the full result as JSON")
	_ = rootCmd.MarkFlagRequired("fixture")
}

// fixtureOptions passes --min-score through only when it was given, so an
// explicit 0 is not mistaken for the default.
func fixtureOptions(cmd *cobra.Command) ranker.Options {
	opts := ranker.Options{Limit: limit}
	if cmd.Flags().Changed("min-score") {
		opts.MinScore = ranker.Threshold(minScore)
	}
	return opts
}

func runRank(cmd *cobra.Command, _ []string) error {
	fx, err := loadFixture(fixtureFile)
	if err != nil {
		return err
	}

	tx := taxonomy.Default()
	if taxonomyFile != "" {
		if tx, err = taxonomy.Load(taxonomyFile); err != nil {
			return err
		}
	}

	now := time.Now()
	if asOf != "" {
		if now, err = time.Parse("2006-01-02", asOf); err != nil {
			return fmt.Errorf("--as-of: %w", err)
		}
	}

	res, err := rankFixture(cmd.Context(), fx, tx, now, fixtureOptions(cmd))
	if err != nil {
		return err
	}

	if outputJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	return printResult(cmd.OutOrStdout(), res)
}

func loadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fx Fixture
	if err := json.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if res := validation.ValidateStruct(fx.Company); !res.Valid {
		return nil, fmt.Errorf("company: %s", res.Summary())
	}
	return &fx, nil
}

func rankFixture(ctx context.Context, fx *Fixture, tx *taxonomy.Taxonomy, now time.Time, opts ranker.Options) (*ranker.Result, error) {
	ev := eligibility.NewEvaluator(tx, eligibility.WithClock(func() time.Time { return now }))
	return ranker.New(ev, ranker.Options{}).Rank(ctx, &fx.Company, fx.Announcements, fx.Signals, &opts)
}

func printResult(out io.Writer, res *ranker.Result) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tID\tSCORE\tGRADE\tIND\tREG\tEMP\tREV\tAGE\tCERT\tBONUS\tBEH\tTITLE")
	for i, r := range res.Recommendations {
		b := r.ScoreBreakdown
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%s\n",
			i+1, r.Announcement.ID, r.Score, r.Grade.Label,
			b.Industry, b.Region, b.EmployeeCount, b.Revenue, b.BusinessAge, b.Certification, b.Bonus, b.Behavior,
			r.Announcement.Title)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	s := res.Stats
	_, err := fmt.Fprintf(out, "\ncandidates=%d scored=%d excluded=%d notScorable=%d repeats=%d belowMin=%d returned=%d\n",
		s.Candidates, s.Scored, s.Excluded, s.NotScorable, s.Repeats, s.BelowMin, s.Returned)
	return err
}

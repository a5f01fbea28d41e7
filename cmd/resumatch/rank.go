package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gcbaptista/resumatch/model"
)

// defaultRankLimit is how many candidates a recruiter sees by default.
const defaultRankLimit = 6

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank stored documents against a job description",
	RunE:  runRank,
}

var (
	rankQuery     string
	rankQueryFile string
	rankLimit     int
	rankOutput    string
)

func init() {
	rankCmd.Flags().StringVarP(&rankQuery, "query", "q", "", "job description text")
	rankCmd.Flags().StringVarP(&rankQueryFile, "query-file", "f", "", "path to a file holding the job description")
	rankCmd.Flags().IntVarP(&rankLimit, "limit", "n", defaultRankLimit, "number of results to show (0 shows all)")
	rankCmd.Flags().StringVarP(&rankOutput, "output", "o", "table", "output format: table or json")
	rankCmd.MarkFlagsMutuallyExclusive("query", "query-file")
	rankCmd.MarkFlagsOneRequired("query", "query-file")

	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, _ []string) error {
	if rankOutput != "table" && rankOutput != "json" {
		return fmt.Errorf("unknown output format %q (use table or json)", rankOutput)
	}

	query := rankQuery
	if rankQueryFile != "" {
		content, err := os.ReadFile(rankQueryFile) // #nosec G304 -- path is given by the operator
		if err != nil {
			return fmt.Errorf("failed to read query file %s: %w", rankQueryFile, err)
		}
		query = string(content)
	}

	eng, log, err := openEngine(cmd.Context())
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck
	defer eng.Close()

	result, err := eng.Rank(cmd.Context(), query, rankLimit)
	if err != nil {
		return err
	}

	if rankOutput == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	return printRanking(cmd, result)
}

func printRanking(cmd *cobra.Command, result *model.RankResult) error {
	out := cmd.OutOrStdout()
	if len(result.Results) == 0 {
		fmt.Fprintln(out, "No documents to rank.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tID\tSCORE\tCONTENT\tSKILL\tSECTION\tMATCHED SKILLS")
	for i, r := range result.Results {
		matched := "-"
		if len(r.MatchedSkills) > 0 {
			matched = strings.Join(r.MatchedSkills, ",")
		}
		fmt.Fprintf(w, "%d\t%s\t%.4f\t%.4f\t%.4f\t%.4f\t%s\n",
			i+1, r.ID, r.Score, r.Components.Content, r.Components.Skill, r.Components.Section, matched)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Showing %d of %d documents (source: %s, %d ms)\n",
		len(result.Results), result.Total, result.Source, result.Took)
	return nil
}

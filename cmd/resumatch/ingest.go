package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gcbaptista/resumatch/model"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest FILE...",
	Short: "Store and enrich local documents",
	Long:  "Stores each file under its base name, extracts its text, sections and skills and saves the enriched record, so later rank calls can use it.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIngest,
}

var ingestID string

func init() {
	ingestCmd.Flags().StringVar(&ingestID, "id", "", "document ID to store a single file under (default: the file name)")

	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestID != "" && len(args) != 1 {
		return fmt.Errorf("--id can only be used with a single file")
	}

	eng, log, err := openEngine(cmd.Context())
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck
	defer eng.Close()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFORMAT\tBYTES\tSKILLS\tWARNINGS")

	failed := 0
	for _, path := range args {
		key := filepath.Base(path)
		if ingestID != "" {
			key = ingestID
		}

		data, err := os.ReadFile(path) // #nosec G304 -- paths are given by the operator
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		result, err := eng.IngestSync(cmd.Context(), key, data)
		if err != nil {
			failed++
			fmt.Fprintf(w, "%s\t-\t%d\t-\t%v\n", key, len(data), err)
			continue
		}

		skills := "-"
		if rec, err := eng.GetDocument(cmd.Context(), key); err == nil && len(rec.Skills) > 0 {
			skills = strings.Join(rec.Skills, ",")
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", result.Key, result.Format, result.Size, skills, warnings(result))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d documents could not be ingested", failed, len(args))
	}
	return nil
}

func warnings(result *model.IngestResult) string {
	if len(result.Warnings) == 0 {
		return "-"
	}
	return strings.Join(result.Warnings, "; ")
}

package commands

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/modguard/modguard/pkg/scoring"
	"github.com/modguard/modguard/pkg/services"
)

// NewScoreCmd creates the score command.
func NewScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score [comments...]",
		Short: "Score comments through the decision cascade",
		Long: `Score one or more comments. Comments are given as arguments, or one
per line via --file ("-" reads stdin). Batches are scored in parallel
across the configured worker pool; one comment's failure never aborts
the rest.`,
		RunE: runScore,
	}
	cmd.Flags().StringP("file", "f", "", "Read comments from file, one per line (\"-\" for stdin)")
	cmd.Flags().Bool("redact", false, "Also detect and redact PII per comment")
	return cmd
}

func runScore(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, err := buildService(cfg)
	if err != nil {
		return err
	}

	texts, err := collectComments(cmd, args)
	if err != nil {
		return err
	}
	if len(texts) == 0 {
		return fmt.Errorf("no comments to score; pass arguments or --file")
	}

	withRedaction, _ := cmd.Flags().GetBool("redact")
	output, _ := cmd.Flags().GetString("output")

	if withRedaction {
		return scoreWithRedaction(cmd, svc, texts, output)
	}

	results := svc.ScoreBatch(cmd.Context(), texts)
	if output == "json" {
		return printJSON(cmd, batchToJSON(texts, results))
	}
	printBatchTable(cmd, texts, results)
	return nil
}

func collectComments(cmd *cobra.Command, args []string) ([]string, error) {
	texts := append([]string{}, args...)

	path, _ := cmd.Flags().GetString("file")
	if path == "" {
		return texts, nil
	}

	var reader *bufio.Scanner
	if path == "-" {
		reader = bufio.NewScanner(os.Stdin)
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		reader = bufio.NewScanner(f)
	}
	reader.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for reader.Scan() {
		if line := reader.Text(); strings.TrimSpace(line) != "" {
			texts = append(texts, line)
		}
	}
	if err := reader.Err(); err != nil {
		return nil, fmt.Errorf("failed to read comments: %w", err)
	}
	return texts, nil
}

type scoredComment struct {
	Index       int     `json:"index"`
	Text        string  `json:"text"`
	Probability float64 `json:"probability,omitempty"`
	Tier        string  `json:"tier,omitempty"`
	Escalated   bool    `json:"escalated"`
	Error       string  `json:"error,omitempty"`
}

func batchToJSON(texts []string, results []scoring.BatchResult) []scoredComment {
	out := make([]scoredComment, len(results))
	for i, br := range results {
		sc := scoredComment{Index: br.Index, Text: texts[br.Index]}
		if br.Err != nil {
			sc.Error = br.Err.Error()
		} else {
			sc.Probability = br.Result.Probability
			sc.Tier = br.Result.Tier.String()
			sc.Escalated = br.Result.Escalated
		}
		out[i] = sc
	}
	return out
}

func printBatchTable(cmd *cobra.Command, texts []string, results []scoring.BatchResult) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tTIER\tPROB\tSTAGE\tCOMMENT")

	tierCounts := map[string]int{}
	escalated, failed := 0, 0
	for _, br := range results {
		if br.Err != nil {
			failed++
			fmt.Fprintf(w, "%d\tERROR\t-\t-\t%s\n", br.Index, truncate(texts[br.Index], 60))
			continue
		}
		tier := br.Result.Tier.String()
		tierCounts[tier]++
		stage := "baseline"
		if br.Result.Escalated {
			stage = "secondary"
			escalated++
		}
		fmt.Fprintf(w, "%d\t%s\t%.4f\t%s\t%s\n", br.Index, tier, br.Result.Probability, stage, truncate(texts[br.Index], 60))
	}
	w.Flush()

	fmt.Fprintf(cmd.OutOrStdout(), "\n%d comments", len(results))
	for _, tier := range []string{"OVERRIDE_TOXIC", "HIGH", "MEDIUM", "LOW", "VERY_LOW", "OVERRIDE_SAFE"} {
		if n := tierCounts[tier]; n > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), ", %d %s", n, tier)
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), ", %d escalated, %d failed\n", escalated, failed)
}

type analyzedComment struct {
	scoredComment
	Redacted string `json:"redacted,omitempty"`
	PIIHits  int    `json:"pii_hits"`
}

func scoreWithRedaction(cmd *cobra.Command, svc *services.AnalysisService, texts []string, output string) error {
	results := svc.ScoreBatch(cmd.Context(), texts)

	analyzed := make([]analyzedComment, len(results))
	for i, sc := range batchToJSON(texts, results) {
		redacted, hits := svc.RedactPII(texts[sc.Index])
		analyzed[i] = analyzedComment{scoredComment: sc, Redacted: redacted, PIIHits: len(hits)}
	}

	if output == "json" {
		return printJSON(cmd, analyzed)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tTIER\tPROB\tPII\tREDACTED")
	for _, a := range analyzed {
		if a.Error != "" {
			fmt.Fprintf(w, "%d\tERROR\t-\t-\t%s\n", a.Index, truncate(texts[a.Index], 60))
			continue
		}
		fmt.Fprintf(w, "%d\t%s\t%.4f\t%d\t%s\n", a.Index, a.Tier, a.Probability, a.PIIHits, truncate(a.Redacted, 60))
	}
	return w.Flush()
}

// truncate shortens s to at most max runes for table display, cutting on
// rune boundaries so multi-byte characters are never split.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

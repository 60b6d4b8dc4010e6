package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/modguard/modguard/pkg/pii"
)

// NewRedactCmd creates the redact command. Redaction needs no classifier,
// so it works without any oracle configured.
func NewRedactCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "redact [comments...]",
		Short: "Detect and redact PII in comments",
		RunE:  runRedact,
	}
	cmd.Flags().StringP("file", "f", "", "Read comments from file, one per line (\"-\" for stdin)")
	return cmd
}

type redactedComment struct {
	Index    int       `json:"index"`
	Redacted string    `json:"redacted"`
	Hits     []pii.Hit `json:"hits"`
}

func runRedact(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	detector := buildDetector(cfg)

	texts, err := collectComments(cmd, args)
	if err != nil {
		return err
	}
	if len(texts) == 0 {
		return fmt.Errorf("no comments to redact; pass arguments or --file")
	}

	output, _ := cmd.Flags().GetString("output")
	results := make([]redactedComment, len(texts))
	for i, text := range texts {
		hits := detector.Detect(text)
		results[i] = redactedComment{Index: i, Redacted: pii.Redact(text, hits), Hits: hits}
	}

	if output == "json" {
		return printJSON(cmd, results)
	}
	for _, r := range results {
		fmt.Fprintln(cmd.OutOrStdout(), r.Redacted)
	}
	return nil
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bimmerbailey/logshare/internal/detect"
	"github.com/bimmerbailey/logshare/internal/output"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [flags] [file...]",
	Short: "Detect which tool or language produced some output",
	Long: `Classify terminal output by the framework, tool or language it most
likely came from. Reads stdin when no file is given.

Examples:
  npm run dev 2>&1 | logshare classify
  logshare classify --scores build.log
  logshare classify --format table logs/*.log
  logshare classify --list`,
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().Bool("scores", false, "show the match count of every signature that matched")
	classifyCmd.Flags().Bool("list", false, "list the known labels in tie-breaking order and exit")

	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	showScores, _ := cmd.Flags().GetBool("scores")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	classifier, err := newClassifier(cfg)
	if err != nil {
		return err
	}

	if list, _ := cmd.Flags().GetBool("list"); list {
		if len(args) > 0 {
			return fmt.Errorf("--list takes no arguments")
		}
		for _, label := range classifier.Labels() {
			fmt.Fprintln(cmd.OutOrStdout(), label)
		}
		return nil
	}

	inputs, err := readInputs(cmd, args)
	if err != nil {
		return err
	}

	format := output.ParseFormat(cfg.Format)
	items := make([]output.Classification, 0, len(inputs))
	for _, in := range inputs {
		scores := classifier.Scores(in.Content)
		label := detect.PlainText
		if len(scores) > 0 {
			label = scores[0].Label
		}

		item := output.Classification{
			Source:   in.Source,
			Context:  label,
			Language: detect.Language(label),
		}
		if showScores || format == output.FormatTable {
			item.Scores = scores
		}
		items = append(items, item)
	}

	return newWriter(cmd, cfg).WriteClassifications(items)
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewTranscribeCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "trascrivi <file_audio>",
		Short: "Trascrive un file audio e genera il resoconto della riunione",
		Long: "Trascrive il file audio indicato, salva la trascrizione accanto al file " +
			"e genera un resoconto .docx nella stessa cartella.",
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeline, err := deps.offline()
			if err != nil {
				return fmt.Errorf("initializing pipeline: %w", err)
			}

			res, err := pipeline.TranscribeAndReport(cmd.Context(), args[0])
			if res != nil && res.TranscriptPath != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Trascrizione salvata in %s\n", res.TranscriptPath)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report salvato in %s\n", res.ReportPath)
			return nil
		},
	}
}

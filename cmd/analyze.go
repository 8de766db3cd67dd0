package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maastricht-university/edmo-interaction/orchestrator"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var s orchestrator.Session
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze one session and write its report",
		Example: `  edmo analyze --speech speech.json --tracks tracks.json
  edmo analyze --audio session.wav --tracks tracks.json --label pair-7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if s.SpeechPath == "" && s.AudioPath == "" && s.TracksPath == "" {
				return errors.New("nothing to analyze: set --speech, --audio or --tracks")
			}
			if s.AudioPath != "" && s.SpeechPath == "" && a.conf.Services.ASR.URL == "" {
				a.logger.Warn("--audio given but services.asr.url is not set; speech will be empty")
			}

			p, release, err := a.pipeline(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			res, err := p.Run(cmd.Context(), s)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.ReportPath)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&s.SpeechPath, "speech", "", "transcription JSON")
	f.StringVar(&s.SpeechFormat, "speech-format", orchestrator.FormatEDMO, "speech payload format: edmo, google or transcribe")
	f.StringVar(&s.TracksPath, "tracks", "", "person tracks JSON")
	f.StringVar(&s.ProfilesPath, "profiles", "", "participant profiles (YAML or JSON)")
	f.StringVar(&s.AudioPath, "audio", "", "audio file sent to the ASR service when --speech is not set")
	f.StringVar(&s.Label, "label", "", "session label used in logs and charts")
	return cmd
}

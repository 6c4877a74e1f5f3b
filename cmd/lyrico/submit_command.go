package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"lyrico/internal/api"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var reference string
	var title string
	var transcriptPath string
	var artworkURL string
	var audioURL string
	var languageTag string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a render job to the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			transcript, err := os.ReadFile(strings.TrimSpace(transcriptPath))
			if err != nil {
				return fmt.Errorf("read transcript: %w", err)
			}

			payload := api.JobPayload{
				Reference:  reference,
				Title:      title,
				Transcript: json.RawMessage(transcript),
				ArtworkURL: artworkURL,
				AudioURL:   audioURL,
				Language:   languageTag,
			}
			if _, err := payload.ToJob(); err != nil {
				return err
			}

			client, err := ctx.requireClient()
			if err != nil {
				return err
			}
			job, err := client.Submit(cmd.Context(), payload)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Queued job #%d (%s)\n", job.ID, job.Reference)
			return nil
		},
	}

	cmd.Flags().StringVarP(&reference, "reference", "r", "", "Client reference for the job")
	cmd.Flags().StringVarP(&title, "title", "t", "", "Track title")
	cmd.Flags().StringVar(&transcriptPath, "transcript", "", "Path to the transcript JSON file")
	cmd.Flags().StringVar(&artworkURL, "artwork", "", "Artwork image URL")
	cmd.Flags().StringVar(&audioURL, "audio", "", "Audio file URL")
	cmd.Flags().StringVarP(&languageTag, "language", "l", "", "Caption language tag")
	_ = cmd.MarkFlagRequired("reference")
	_ = cmd.MarkFlagRequired("transcript")
	_ = cmd.MarkFlagRequired("artwork")
	_ = cmd.MarkFlagRequired("audio")
	return cmd
}

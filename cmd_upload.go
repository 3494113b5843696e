package main

import (
	"github.com/spf13/cobra"

	"github.com/n0madic/go-chorus/internal/api"
	"github.com/n0madic/go-chorus/internal/render"
	"github.com/n0madic/go-chorus/internal/stream"
)

func newUploadCommand(a *app) *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "upload <dataset-id> <file>...",
		Short: "Upload documents into a dataset with live progress",
		Long: `Upload one or more files into a dataset. The backend reports progress
as it chunks and embeds each file; the upload finishes when it reports the
final summary. Press Ctrl-C to abandon the upload.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("dataset", args[0])
			if err != nil {
				return err
			}

			progress := render.NewProgress(a.stderr)
			opts := api.UploadOptions{
				OnMalformed: func(ev stream.Event) {
					a.logger.Debug("upload.malformed_frame", "type", ev.Type, "error", ev.Err)
				},
			}
			if !quiet && !a.jsonOut {
				opts.OnProgress = progress.Update
			}

			result, err := a.client.UploadPaths(cmd.Context(), id, args[1:], opts)
			if err != nil {
				progress.Failure(err)
				return err
			}
			progress.Finish()
			if a.jsonOut {
				return render.JSON(a.stdout, result)
			}
			out := render.NewProgress(a.stdout)
			return out.Summary(result)
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not draw the progress bar")
	return cmd
}

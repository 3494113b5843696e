package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/n0madic/go-chorus/internal/render"
	"github.com/n0madic/go-chorus/internal/types"
)

func newDatasetsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "datasets",
		Aliases: []string{"dataset", "ds"},
		Short:   "Manage datasets",
		Example: `  # List datasets
  go-chorus datasets list

  # Create a dataset and upload documents into it
  go-chorus datasets create handbook --description "Employee handbook"
  go-chorus upload 3 handbook.pdf faq.md`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List datasets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			datasets, err := a.client.ListDatasets(cmd.Context())
			if err != nil {
				return err
			}
			if a.jsonOut {
				return render.JSON(a.stdout, datasets)
			}
			return render.Datasets(a.stdout, datasets)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <dataset-id>",
		Short: "Show a dataset and its files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("dataset", args[0])
			if err != nil {
				return err
			}
			ds, err := a.client.GetDataset(cmd.Context(), id)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return render.JSON(a.stdout, ds)
			}
			fmt.Fprintf(a.stdout, "%s (id %d)\n", ds.Name, ds.ID)
			if ds.Description != "" {
				fmt.Fprintln(a.stdout, ds.Description)
			}
			fmt.Fprintln(a.stdout)
			return render.Files(a.stdout, ds.Files)
		},
	})

	var description string
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := a.client.CreateDataset(cmd.Context(), types.CreateDatasetRequest{
				Name:        args[0],
				Description: description,
			})
			if err != nil {
				return err
			}
			if a.jsonOut {
				return render.JSON(a.stdout, ds)
			}
			fmt.Fprintf(a.stdout, "Created dataset %q (id %d)\n", ds.Name, ds.ID)
			return nil
		},
	}
	create.Flags().StringVarP(&description, "description", "d", "", "Dataset description")
	cmd.AddCommand(create)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <dataset-id>",
		Short: "Delete a dataset with all its files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("dataset", args[0])
			if err != nil {
				return err
			}
			resp, err := a.client.DeleteDataset(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.printMessage(resp)
		},
	})

	return cmd
}

func newFilesCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "files",
		Aliases: []string{"file"},
		Short:   "Inspect and delete files stored in a dataset",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show <dataset-id> <file-id>",
		Short: "Print the extracted text of a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			datasetID, fileID, err := parseFileArgs(args)
			if err != nil {
				return err
			}
			f, err := a.client.GetFileContent(cmd.Context(), datasetID, fileID)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return render.JSON(a.stdout, f)
			}
			_, err = fmt.Fprintln(a.stdout, f.Content)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "image-url <dataset-id> <file-id>",
		Short: "Print the URL of an image file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			datasetID, fileID, err := parseFileArgs(args)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.stdout, a.client.FileImageURL(datasetID, fileID))
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <dataset-id> <file-id>",
		Short: "Delete a file and its chunks",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			datasetID, fileID, err := parseFileArgs(args)
			if err != nil {
				return err
			}
			resp, err := a.client.DeleteFile(cmd.Context(), datasetID, fileID)
			if err != nil {
				return err
			}
			return a.printMessage(resp)
		},
	})

	return cmd
}

func parseFileArgs(args []string) (int, int, error) {
	datasetID, err := parseID("dataset", args[0])
	if err != nil {
		return 0, 0, err
	}
	fileID, err := parseID("file", args[1])
	if err != nil {
		return 0, 0, err
	}
	return datasetID, fileID, nil
}

func (a *app) printMessage(resp *types.MessageResponse) error {
	if a.jsonOut {
		return render.JSON(a.stdout, resp)
	}
	_, err := fmt.Fprintln(a.stdout, resp.Message)
	return err
}

package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/n0madic/go-chorus/internal/types"
)

// JSON writes v indented, followed by a newline.
func JSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
}

// Datasets writes a dataset listing.
func Datasets(w io.Writer, datasets []types.Dataset) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tFILES\tCREATED\tDESCRIPTION")
	for _, d := range datasets {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", d.ID, d.Name, d.FileCount, d.CreatedAt, d.Description)
	}
	return tw.Flush()
}

// Files writes the files of a dataset.
func Files(w io.Writer, files []types.FileInfo) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tFILENAME\tTYPE\tSIZE\tCHUNKS\tCREATED")
	for _, f := range files {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\n", f.ID, f.Filename, f.FileType, FormatBytes(f.FileSize), f.ChunksCount, f.CreatedAt)
	}
	return tw.Flush()
}

// Models writes a chorus model listing.
func Models(w io.Writer, models []types.ChorusModel) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tRESPONDERS\tEVALUATORS\tCREATED")
	for _, m := range models {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%s\n", m.ID, m.Name, len(m.ResponderLLMs), len(m.EvaluatorLLMs), m.CreatedAt)
	}
	return tw.Flush()
}

// Bots writes a bot listing. Unset references print as "-".
func Bots(w io.Writer, bots []types.Bot) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tDATASET\tMODEL\tRAG\tCREATED")
	for _, b := range bots {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\n", b.ID, b.Name, optionalID(b.DatasetID), optionalID(b.ChorusModelID), b.RAGResultsCount, b.CreatedAt)
	}
	return tw.Flush()
}

func optionalID(id *int) string {
	if id == nil {
		return "-"
	}
	return strconv.Itoa(*id)
}

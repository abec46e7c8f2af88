package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"law_office_desk/models"
	"law_office_desk/services"
	"law_office_desk/services/drafting"
	"law_office_desk/services/export"

	"github.com/spf13/cobra"
)

const defaultDetail = 0.7

func newDraftCmd(a *app) *cobra.Command {
	var p drafting.Petition
	var contextFile, output, format string

	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Generate a petition draft",
		RunE: func(cmd *cobra.Command, args []string) error {
			if contextFile != "" {
				b, err := readInput(contextFile, cmd.InOrStdin())
				if err != nil {
					return err
				}
				p.Context = string(b)
			}
			return runDraft(cmd.Context(), a.backends, p, output, format, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&p.Kind, "tipo", "t", "", "petition kind (required), e.g. "+strings.Join(models.PetitionKinds, ", "))
	cmd.Flags().StringVarP(&p.Context, "contexto", "c", "", "case description")
	cmd.Flags().StringVar(&contextFile, "contexto-arquivo", "", "read the case description from a file (- for stdin)")
	cmd.Flags().StringVarP(&p.Style, "estilo", "s", drafting.Styles[0], "writing style: "+strings.Join(drafting.Styles, ", "))
	cmd.Flags().Float64VarP(&p.Detail, "detalhe", "d", defaultDetail, "detail level between 0.1 and 1.0")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the draft to a file instead of stdout")
	cmd.Flags().StringVarP(&format, "format", "f", "", "file format (txt, docx, pdf); defaults to the output extension")
	_ = cmd.MarkFlagRequired("tipo")
	return cmd
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func runDraft(ctx context.Context, b *services.Backends, p drafting.Petition, output, format string, w io.Writer) error {
	if err := p.Validate(); err != nil {
		return err
	}

	var f export.Format
	if output != "" {
		if format == "" {
			format = strings.TrimPrefix(filepath.Ext(output), ".")
		}
		var err error
		if f, err = export.ParseFormat(format); err != nil {
			return err
		}
	}

	result, err := b.Drafting.Generate(ctx, p.Request())
	if err != nil {
		return err
	}
	if output == "" {
		_, err := fmt.Fprintln(w, result.Text)
		return err
	}

	data, err := b.Exporter.Document(ctx, p.Kind, result.Text, f)
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "Saved %s (%d attempt(s), %s)\n", output, result.Attempts, result.Latency.Round(time.Millisecond))
	return err
}

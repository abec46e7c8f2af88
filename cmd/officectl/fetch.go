package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	"law_office_desk/models"
	"law_office_desk/services"

	"github.com/spf13/cobra"
)

// recordAliases maps the English names accepted on the command line to store record types.
var recordAliases = map[string]string{
	"cases":     models.RecordTypeCase,
	"clients":   models.RecordTypeClient,
	"offices":   models.RecordTypeOffice,
	"employees": models.RecordTypeEmployee,
	"drafts":    models.RecordTypeDraft,
}

func resolveRecordType(name string) (string, error) {
	if t, ok := recordAliases[strings.ToLower(name)]; ok {
		return t, nil
	}
	for _, t := range recordAliases {
		if strings.EqualFold(t, name) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown record type %q", name)
}

func newFetchCmd(a *app) *cobra.Command {
	// flag name -> filter query key
	filterFlags := map[string]string{
		"area":        "area",
		"escritorio":  "escritorio",
		"responsavel": "responsavel",
		"cliente":     "cliente",
		"nome":        "nome",
		"status":      "status",
		"data-inicio": "data_inicio",
		"data-fim":    "data_fim",
	}
	values := map[string]*string{}
	var showSecrets bool

	cmd := &cobra.Command{
		Use:   "fetch TYPE",
		Short: "Print the records of one type as JSON",
		Long: "TYPE is a store record type (Processo, Cliente, Escritorio, Funcionario, Historico_Peticao)\n" +
			"or one of cases, clients, offices, employees, drafts. Dates use YYYY-MM-DD.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recordType, err := resolveRecordType(args[0])
			if err != nil {
				return err
			}
			q := url.Values{}
			for name, key := range filterFlags {
				if v := *values[name]; v != "" {
					q.Set(key, v)
				}
			}
			f, err := services.ParseReportFilter(q)
			if err != nil {
				return err
			}
			return runFetch(cmd.Context(), a.backends, recordType, f, showSecrets, cmd.OutOrStdout())
		},
	}
	for name := range filterFlags {
		values[name] = cmd.Flags().String(name, "", "filter by "+name)
	}
	cmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "keep employee login secrets in the output")
	return cmd
}

func runFetch(ctx context.Context, b *services.Backends, recordType string, f services.ReportFilter, showSecrets bool, w io.Writer) error {
	var out any
	if recordType == models.RecordTypeCase && f.Status != "" {
		cases, err := b.Store.Cases(ctx)
		if err != nil {
			return err
		}
		out = f.FilterCases(b.Classifier.Annotate(cases))
	} else {
		records, err := b.Store.Fetch(ctx, recordType)
		if err != nil {
			return err
		}
		filtered := services.ApplyFilters(records, f)
		if !showSecrets {
			for _, r := range filtered {
				delete(r, "senha")
			}
		}
		out = filtered
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

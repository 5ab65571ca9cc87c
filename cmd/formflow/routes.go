package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formflow/pkg/portal"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...).
		Render()
}

func newRoutesCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the portal pages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			routes := portal.Routes()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(routes)
			}
			rows := make([][]string, 0, len(routes))
			for _, route := range routes {
				rows = append(rows, []string{route.Path, string(route.Kind), route.Title})
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Path", "Kind", "Title"}, rows))
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func newFormsCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "forms",
		Short: "List the compiled forms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, catalog, err := a.setup(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if asJSON {
				forms := make(map[string]any, len(catalog.Keys()))
				for _, key := range catalog.Keys() {
					entry, _ := catalog.Entry(key)
					forms[key] = entry.Form
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(forms)
			}

			rows := make([][]string, 0, len(catalog.Keys()))
			for _, key := range catalog.Keys() {
				entry, err := catalog.Entry(key)
				if err != nil {
					return err
				}
				photos := "no"
				if entry.Attachments {
					photos = "yes"
				}
				rows = append(rows, []string{
					key,
					entry.OperationID,
					entry.Form.Title,
					strconv.Itoa(len(entry.Form.Fields)),
					photos,
				})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Key", "Operation", "Title", "Fields", "Photos"}, rows))
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the form models as JSON")
	return cmd
}

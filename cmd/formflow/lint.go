package main

import (
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formflow"
	pkgopenapi "github.com/goliatone/go-formflow/pkg/openapi"
	"github.com/goliatone/go-formflow/pkg/portal"
)

func newLintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint [paths...]",
		Short: "Check form definitions for unsupported x-formgen extensions",
		Long:  "Lint OpenAPI documents for x-formgen extensions. Without paths the built-in portal definitions are checked.",
		RunE: func(cmd *cobra.Command, paths []string) error {
			loader := formflow.NewLoader(pkgopenapi.WithFileSystem(portal.DefinitionsFS()))

			sources := []pkgopenapi.Source{pkgopenapi.SourceFromFS(portal.DocumentName)}
			var uiFS fs.FS = portal.UISchemaFS()
			if len(paths) > 0 {
				sources = sources[:0]
				for _, path := range paths {
					sources = append(sources, pkgopenapi.SourceFromFile(path))
				}
				uiFS = nil
			}

			var total int
			for _, src := range sources {
				doc, err := loader.Load(cmd.Context(), src)
				if err != nil {
					return err
				}
				violations, err := formflow.Lint(cmd.Context(), doc, uiFS)
				if err != nil {
					return fmt.Errorf("lint %s: %w", doc.Location(), err)
				}
				for _, v := range violations {
					fmt.Fprintln(cmd.ErrOrStderr(), v.String())
				}
				total += len(violations)
			}
			if total > 0 {
				return fmt.Errorf("%d violation(s) found", total)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "no violations")
			return nil
		},
	}
}

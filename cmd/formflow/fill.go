package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formflow/pkg/portal"
	"github.com/goliatone/go-formflow/pkg/prompt"
)

func newFillCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "fill <form>",
		Short:     "Fill and submit a form in the terminal",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{portal.FormReport, portal.FormRequest, portal.FormFeedback},
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, catalog, err := a.setup(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			filler := prompt.New(
				prompt.WithOutput(cmd.OutOrStdout()),
				prompt.WithLogger(logger),
			)
			if _, err := filler.Fill(cmd.Context(), catalog, args[0]); err != nil {
				if errors.Is(err, prompt.ErrAborted) {
					fmt.Fprintln(cmd.ErrOrStderr(), "aborted")
					return nil
				}
				return err
			}
			return nil
		},
	}
}

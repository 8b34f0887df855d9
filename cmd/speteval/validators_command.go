package main

import (
	"github.com/spf13/cobra"

	"speteval/internal/validation"
)

type validatorRow struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Enabled  bool   `json:"enabled"`
	Requires string `json:"requires"`
	Params   string `json:"params,omitempty"`
}

func newValidatorsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "validators",
		Short: "List validators in evaluation order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			pipeline, err := buildPipeline(cfg, nil)
			if err != nil {
				return err
			}

			var rows []validatorRow
			seen := make(map[validation.Name]bool)
			for _, v := range pipeline.Registry().Validators() {
				seen[v.Name()] = true
				rows = append(rows, validatorRow{
					Name:     string(v.Name()),
					Label:    v.Name().Label(),
					Enabled:  true,
					Requires: v.Requires().String(),
					Params:   validation.Describe(v),
				})
			}
			for _, name := range validation.Names() {
				if seen[name] {
					continue
				}
				rows = append(rows, validatorRow{Name: string(name), Label: name.Label()})
			}

			if jsonOutput {
				return writeJSON(cmd, rows)
			}
			table := make([][]string, 0, len(rows))
			for _, row := range rows {
				table = append(table, []string{row.Label, yesNo(row.Enabled), row.Requires, row.Params})
			}
			_, err = cmd.OutOrStdout().Write([]byte(renderTable(
				[]string{"Validator", "Enabled", "Requires", "Parameters"},
				table,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			) + "\n"))
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pinsmith/internal/analyzer"
	"pinsmith/internal/config"
	"pinsmith/internal/ir"
	"pinsmith/internal/transform"
)

func newInspectCommand() *cobra.Command {
	var factsOnly bool

	cmd := &cobra.Command{
		Use:   "inspect <program.json>",
		Short: "Print what the converter sees in a program model",
		Long: `inspect runs the analysis (and, unless --facts is given, the full
conversion) over a source program model and prints a human-readable
summary instead of writing JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			program, err := ir.ReadProgram(args[0])
			if err != nil {
				return err
			}

			facts := analyzer.Analyze(program)
			if factsOnly {
				fmt.Print(ir.PrintFacts(facts))
				return nil
			}

			target, err := transform.Transform(program, facts, config.Default())
			if err != nil {
				return err
			}
			fmt.Print(ir.Print(target))
			return nil
		},
	}

	cmd.Flags().BoolVar(&factsOnly, "facts", false, "print the analyzer fact set only")

	return cmd
}

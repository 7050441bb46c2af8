package main

import (
	"fmt"

	"github.com/colorfulnotion/rtsimd/golden"
	"github.com/spf13/cobra"
)

func goldenCmd(a *app) *cobra.Command {
	var update bool
	cmd := &cobra.Command{
		Use:   "golden <vectors.json>",
		Short: "Check (or rewrite) expected encodings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := golden.Load(args[0])
			if err != nil {
				return err
			}
			if update {
				if err := golden.Update(f); err != nil {
					return err
				}
				return golden.Save(args[0], f)
			}
			mm := golden.Check(f)
			if len(mm) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%d vectors ok\n", len(f.Vectors))
				return nil
			}
			d, err := golden.Diff(f, mm, a.v.GetBool("color"))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), d)
			return fmt.Errorf("%d of %d vectors differ", len(mm), len(f.Vectors))
		},
	}
	cmd.Flags().BoolVar(&update, "update", false, "rewrite codes with the current encodings")
	cmd.Flags().Bool("color", false, "colour the diff")
	_ = a.v.BindPFlag("color", cmd.Flags().Lookup("color"))
	return cmd
}

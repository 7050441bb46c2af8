package main

import (
	"fmt"
	"os"

	"github.com/colorfulnotion/rtsimd/lanes"
	"github.com/colorfulnotion/rtsimd/report"
	"github.com/colorfulnotion/rtsimd/target"
	"github.com/spf13/cobra"
)

func matrixCmd(a *app) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "matrix",
		Short: "Print native/fallback/derived support per op and element",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if all {
				return report.Summary(cmd.OutOrStdout(), target.Profiles())
			}
			cfg, err := a.target()
			if err != nil {
				return err
			}
			m, err := report.Build(cfg)
			if err != nil {
				return err
			}
			m.Render(cmd.OutOrStdout())
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "summarise every built-in profile instead")
	return cmd
}

func targetsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "List built-in profiles, tagging those this host can run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			profiles := target.Profiles()
			if path := a.v.GetString("profiles"); path != "" {
				extra, err := target.LoadFile(path)
				if err != nil {
					return err
				}
				profiles = append(profiles, extra...)
			}
			fmt.Fprint(cmd.OutOrStdout(), report.Tree(profiles, target.HostRuns).String())
			return nil
		},
	}
}

func chartCmd(a *app) *cobra.Command {
	var (
		elem string
		out  string
	)
	cmd := &cobra.Command{
		Use:   "chart [profile...]",
		Short: "Render an HTML bar chart of encoded sizes",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, ok := parseElem(elem)
			if !ok {
				return fmt.Errorf("unknown element %q", elem)
			}
			var profiles []target.Config
			for _, name := range args {
				cfg, err := target.Parse(name)
				if err != nil {
					return err
				}
				profiles = append(profiles, cfg)
			}
			if len(profiles) == 0 {
				cfg, err := a.target()
				if err != nil {
					return err
				}
				profiles = append(profiles, cfg)
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := report.SizeChart(f, profiles, e); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "wrote", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&elem, "elem", "u32", "element type, e.g. u8 s16 f64")
	cmd.Flags().StringVarP(&out, "output", "o", "sizes.html", "HTML output file")
	return cmd
}

func parseElem(s string) (lanes.Elem, bool) {
	for _, e := range lanes.All {
		if e.String() == s {
			return e, true
		}
	}
	return lanes.Elem{}, false
}

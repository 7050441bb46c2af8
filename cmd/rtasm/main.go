// rtasm encodes SIMD listings for x86_64 and MIPS MSA targets, reports
// per-target support and runs listings natively or on the interpreter.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/colorfulnotion/rtsimd/log"
	"github.com/colorfulnotion/rtsimd/target"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

// app carries the resolved global settings. Flags win over RTASM_*
// environment variables, which win over the config file.
type app struct {
	v *viper.Viper
}

func (a *app) target() (target.Config, error) {
	name := a.v.GetString("target")
	var profiles []target.Config
	if path := a.v.GetString("profiles"); path != "" {
		var err error
		if profiles, err = target.LoadFile(path); err != nil {
			return target.Config{}, err
		}
	}
	if name == "host" {
		return target.Host()
	}
	return target.Lookup(name, profiles)
}

func (a *app) setup() error {
	if path := a.v.GetString("config"); path != "" {
		a.v.SetConfigFile(path)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("config %s: %w", path, err)
		}
	}
	if _, err := log.ParseLevel(a.v.GetString("log")); err != nil {
		return err
	}
	log.InitLogger(a.v.GetString("log"))
	log.EnableModules(a.v.GetString("debug"))
	return nil
}

func newRoot() *cobra.Command {
	a := &app{v: viper.New()}
	a.v.SetEnvPrefix("rtasm")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "rtasm",
		Short:         "Multi-target SIMD instruction encoder",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, BuildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	pf := root.PersistentFlags()
	pf.String("target", "x86_64-sse2-128", "target profile name, \"host\" or a name from --profiles")
	pf.String("profiles", "", "JSON or YAML file of named profiles")
	pf.String("config", "", "config file (any format viper reads)")
	pf.String("log", "warn", "log level")
	pf.String("debug", "", "comma separated modules to debug-log, or all")
	for _, name := range []string{"target", "profiles", "config", "log", "debug"} {
		_ = a.v.BindPFlag(name, pf.Lookup(name))
	}

	root.AddCommand(
		encodeCmd(a),
		matrixCmd(a),
		targetsCmd(a),
		chartCmd(a),
		goldenCmd(a),
		replCmd(a),
		runCmd(a),
	)
	return root
}

func main() {
	if err := newRoot().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "rtasm:", err)
		os.Exit(1)
	}
}

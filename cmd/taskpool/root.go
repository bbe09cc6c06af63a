package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vnykmshr/taskpool/internal/config"
	"github.com/vnykmshr/taskpool/internal/logging"
)

// app carries state shared by the subcommands.
type app struct {
	v       *viper.Viper
	cfg     config.Configuration
	restore func()
}

func newRootCommand() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:           "taskpool",
		Short:         "Run and inspect taskpool worker pools",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			file, err := cmd.Flags().GetString("config")
			if err != nil {
				return err
			}
			cfg, err := config.Load(a.v, file)
			if err != nil {
				return err
			}
			a.cfg = cfg

			restore, err := logging.Install(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			a.restore = restore
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.restore != nil {
				a.restore()
			}
		},
	}

	if err := config.RegisterFlags(root.PersistentFlags(), a.v); err != nil {
		// Flag names are fixed, so binding only fails on a programming error.
		panic(err)
	}

	root.AddCommand(newBenchCommand(a), newConfigCommand(a))
	return root
}

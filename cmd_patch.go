package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"go-omen/rack"
)

var patchForce bool

var patchCmd = &cobra.Command{
	Use:   "patch",
	Short: "Write or inspect patch files",
	Long: `Patch files describe the rack in YAML: the modules from left to right,
their params and options, cables, MIDI trigger notes and the audio tap.

Available subcommands:
  init  - Write the default patch
  show  - Build a patch and list its modules`,
}

var patchInitCmd = &cobra.Command{
	Use:   "init PATH",
	Short: "Write the default patch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(args[0]); err == nil && !patchForce {
			return fmt.Errorf("%s exists (use --force)", args[0])
		}
		if err := rack.DefaultPatch().Write(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
		return nil
	},
}

var patchShowCmd = &cobra.Command{
	Use:   "show PATH",
	Short: "Build a patch and list its modules",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := rack.LoadPatch(args[0])
		if err != nil {
			return err
		}
		r, err := p.Build()
		if err != nil {
			return err
		}
		r.Run(1)

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "#\tKIND\tNAME\tLINKED\tSTATE")
		for i, m := range r.Snapshot().Modules {
			fmt.Fprintf(w, "%d\t%s\t%s\t%v\t%s\n", i, m.Kind, m.Name, m.Connected, m.Summary)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d cables, %d triggers, %.0f Hz\n", len(r.Cables()), len(r.Watches()), r.SampleRate())
		return nil
	},
}

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "List and remove saved rack states",
	Long: `Saves are written from the monitor with 's' into
~/.config/go-omen/projects/<name>/ and loaded with 'run --load'.

Available subcommands:
  list    - List projects, or the saves in one project
  delete  - Remove one save`,
}

var projectListCmd = &cobra.Command{
	Use:   "list [PROJECT]",
	Short: "List projects, or the saves in one project",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if len(args) == 0 {
			projects, err := rack.ListProjects()
			if err != nil {
				return err
			}
			for _, p := range projects {
				fmt.Fprintln(out, p)
			}
			return nil
		}
		saves, err := rack.ListSaves(args[0])
		if err != nil {
			return err
		}
		for _, s := range saves {
			fmt.Fprintf(out, "%s  %s  %s\n", s.Timestamp.Format("2006-01-02 15:04:05"), s.Filename, s.Name)
		}
		return nil
	},
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete PROJECT FILE",
	Short: "Remove one save",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return rack.DeleteSave(args[0], args[1])
	},
}

func init() {
	patchInitCmd.Flags().BoolVarP(&patchForce, "force", "f", false, "overwrite an existing file")
	patchCmd.AddCommand(patchInitCmd, patchShowCmd)
	projectCmd.AddCommand(projectListCmd, projectDeleteCmd)
}

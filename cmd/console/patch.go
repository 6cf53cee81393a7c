package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/demexconsole/console/internal/fixture"
	"github.com/demexconsole/console/internal/patchfile"
)

func newPatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patch",
		Short: "Inspect and validate patch files",
	}
	cmd.AddCommand(newPatchValidateCmd())
	return cmd
}

func newPatchValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <patch-file>",
		Short: "Load a patch file and report overlap/type errors without starting the render loop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			doc, err := patchfile.Load(path)
			if err != nil {
				return err
			}

			fixtures := fixture.NewStore()
			if err := doc.Apply(path, fixtures); err != nil {
				return err
			}

			fmt.Printf("patched %d fixtures, footprint ok\n", len(fixtures.Fixtures()))
			for _, f := range fixtures.Fixtures() {
				fmt.Printf("  #%d %-20s universe %d @ %d..%d (%s / %s)\n",
					f.ID(), f.Name(), f.Universe(), f.StartAddress(),
					f.StartAddress()+f.AddressFootprint()-1, f.Type().Name, f.Mode().Name)
			}
			return nil
		},
	}
}

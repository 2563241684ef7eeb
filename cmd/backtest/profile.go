package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"backtest_go/internal/domain"

	"github.com/spf13/cobra"
)

func init() {
	profileCmd.AddCommand(profileSaveCmd)
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileDeleteCmd)
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage stored engine profiles",
}

var profileSaveCmd = &cobra.Command{
	Use:   "save NAME",
	Short: "Store the engine section of the config under NAME",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := bootstrap.Storage()
		if err != nil {
			return err
		}
		p := domain.NewProfile(args[0], bootstrap.Config.EngineConfig())
		if err := store.SaveProfile(p); err != nil {
			return err
		}
		fmt.Printf("saved profile %q\n", p.Name)
		return nil
	},
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := bootstrap.Storage()
		if err != nil {
			return err
		}
		profiles, err := store.ListProfiles()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tMAKER\tTAKER\tSPREAD\tCASH\tTICK\tCAPACITY\tFEE MODE\tUPDATED")
		for _, p := range profiles {
			fmt.Fprintf(w, "%s\t%g\t%g\t%g\t%g\t%g\t%d\t%s\t%s\n",
				p.Name, p.MakerFeeBps, p.TakerFeeBps, p.SpreadBps, p.InitialCash, p.TickSize,
				p.BookCapacity, p.FeeMode, p.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var profileDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a stored profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := bootstrap.Storage()
		if err != nil {
			return err
		}
		if err := store.DeleteProfile(args[0]); err != nil {
			return err
		}
		fmt.Printf("deleted profile %q\n", args[0])
		return nil
	},
}

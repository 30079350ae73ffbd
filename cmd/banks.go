// =============================================================================
// Payroll to pain.001 Converter - Banks Command
// =============================================================================
//
// This file defines the 'banks' command, which prints the bank code table in
// use, or resolves a single account.
//
// COMMAND USAGE:
//   payroll-pain001 banks                 # List every prefix
//   payroll-pain001 banks --account RIB   # Resolve one account
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/payroll-pain001/internal/bankcode"
)

// banksAccount is resolved instead of listing the table when set.
var banksAccount string

var banksCmd = &cobra.Command{
	Use:   "banks",
	Short: "Show the bank code table",
	Long: `The banks command prints the RIB prefix to BIC table loaded from
bank_codes_file (or the built-in table). With --account it resolves a single
account number the way the converter does.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := bankcode.LoadOrDefault(mainConfig.BankCodesFile)
		if err != nil {
			return fmt.Errorf("failed to load bank codes: %w", err)
		}

		if banksAccount != "" {
			bic, ok := table.Resolve(banksAccount)
			if !ok {
				return fmt.Errorf("no bank code for account %q", banksAccount)
			}
			fmt.Println(bic)
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PREFIX\tBIC")
		for _, prefix := range table.Prefixes() {
			bic, _ := table.Resolve(prefix)
			fmt.Fprintf(w, "%s\t%s\n", prefix, bic)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Printf("\n%d prefix(es)\n", table.Len())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(banksCmd)

	banksCmd.Flags().StringVar(&banksAccount, "account", "", "Resolve the bank code of this account number")
}

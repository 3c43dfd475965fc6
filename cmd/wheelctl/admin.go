package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"prizewheel/internal/config"
	"prizewheel/internal/controllers"
	"prizewheel/internal/models"
)

func newAdminCmd(opts *options, stdin io.Reader) *cobra.Command {
	adminCmd := &cobra.Command{
		Use:   "admin",
		Short: "List and edit the prize table",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print the prize table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prizes, err := opts.client().Prizes(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-20s %12s %12s %6s\n", "NAME", "PROBABILITY", "USAGE_LIMIT", "USED")
			for _, p := range prizes {
				row := models.RowFromPrize(p)
				fmt.Fprintf(out, "%-20s %12s %12s %6d\n", row.Name, row.Probability, row.UsageLimit, p.Used)
			}
			return nil
		},
	}

	addCmd := &cobra.Command{
		Use:   "add NAME PROBABILITY USAGE_LIMIT",
		Short: "Append a prize and save the table",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := loadTable(cmd, opts, nil)
			if err != nil {
				return err
			}
			i := table.AddRow()
			if err := table.EditRow(i, models.PrizeRow{
				Name:        args[0],
				Probability: models.RawNumeric(args[1]),
				UsageLimit:  models.RawNumeric(args[2]),
			}); err != nil {
				return err
			}
			return report(cmd, table, table.Save)
		},
	}

	var yes bool
	deleteCmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a prize after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			confirm := func(prompt string) bool {
				return yes || askYesNo(stdin, cmd.OutOrStdout(), prompt)
			}
			table, err := loadTable(cmd, opts, confirm)
			if err != nil {
				return err
			}
			index := -1
			for i, row := range table.Rows() {
				if row.Name == args[0] {
					index = i
					break
				}
			}
			if index < 0 {
				return fmt.Errorf("%w: %q", controllers.ErrNoSuchRow, args[0])
			}
			return report(cmd, table, func(ctx context.Context) (bool, error) {
				return table.DeleteRow(ctx, index)
			})
		},
	}
	deleteCmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	var file string
	saveCmd := &cobra.Command{
		Use:   "save",
		Short: "Replace the prize table with the rows in a YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := config.LoadRows(file)
			if err != nil {
				return err
			}
			table := controllers.NewAdminTable(opts.client(), nil, nil)
			for _, row := range rows {
				if err := table.EditRow(table.AddRow(), row); err != nil {
					return err
				}
			}
			return report(cmd, table, table.Save)
		},
	}
	saveCmd.Flags().StringVarP(&file, "file", "f", "", "YAML file with a prizes list")
	_ = saveCmd.MarkFlagRequired("file")

	adminCmd.AddCommand(listCmd, addCmd, deleteCmd, saveCmd)
	return adminCmd
}

func loadTable(cmd *cobra.Command, opts *options, confirm controllers.ConfirmFunc) (*controllers.AdminTable, error) {
	c := opts.client()
	prizes, err := c.Prizes(cmd.Context())
	if err != nil {
		return nil, err
	}
	return controllers.NewAdminTable(c, confirm, prizes), nil
}

// report runs one table action and prints the status it leaves behind.
// A refused change is an error so the exit code reflects it.
func report(cmd *cobra.Command, table *controllers.AdminTable, action func(ctx context.Context) (bool, error)) error {
	ok, err := action(cmd.Context())
	if status := table.Status(); status.Text != "" {
		fmt.Fprintln(cmd.OutOrStdout(), status.Text)
	}
	if err != nil {
		return err
	}
	if !ok && table.Status().Style == controllers.StyleError {
		return errors.New(table.Status().Text)
	}
	return nil
}

func askYesNo(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N] ", prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

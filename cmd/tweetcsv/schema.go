package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tweetcsv/pkg/record"
)

func newSchemaCmd() *cobra.Command {
	var (
		ddl   bool
		table string
	)
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the column layout of the CSV file",
		Long: `Print the column names of <hashtag>-tweets.csv as a comma-separated line.

The file itself has no header row. With --ddl, print a CREATE EXTERNAL TABLE
statement for loading the file into a warehouse instead.`,
		Example: `  tweetcsv schema
  tweetcsv schema --ddl --table tweets`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if ddl {
				fmt.Fprint(cmd.OutOrStdout(), record.DDL(table))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(record.Header(), ","))
			return nil
		},
	}
	cmd.Flags().BoolVar(&ddl, "ddl", false, "print a table definition instead of the header")
	cmd.Flags().StringVar(&table, "table", "tweets", "table name used with --ddl")
	return cmd
}

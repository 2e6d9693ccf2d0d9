package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"sql2ts/internal/config"
	"sql2ts/internal/core"
	"sql2ts/internal/dialect"
	"sql2ts/internal/introspect"
	"sql2ts/internal/output"
	"sql2ts/internal/parser"
	"sql2ts/internal/validate"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sql2ts",
		Short: "Generate TypeScript types from SQL CREATE TABLE statements",
	}

	var genDialect string
	var genFormat string
	var genOutFile string
	var genNaming string
	var genPrefix string
	var genSuffix string
	var genOptional bool
	var genExport string
	var genStrict bool
	var genNoComments bool
	var genConfigFile string

	generateCmd := &cobra.Command{
		Use:   "generate <schema.sql>",
		Short: "Generate TypeScript types from a schema dump",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read schema file: %w", err)
			}

			cf := &config.File{}
			if genConfigFile != "" {
				cf, err = config.Load(genConfigFile)
				if err != nil {
					return err
				}
			}
			extractOpts := cf.ExtractorOptions()
			genOpts := cf.GeneratorOptions()

			if genDialect != "" {
				extractOpts.Dialect = core.Dialect(strings.ToLower(genDialect))
			}
			if genNaming != "" {
				genOpts.Naming = output.NamingConvention(genNaming)
			}
			if genPrefix != "" {
				genOpts.Prefix = genPrefix
			}
			if genSuffix != "" {
				genOpts.Suffix = genSuffix
			}
			if genOptional {
				genOpts.OptionalFields = true
			}
			if genExport != "" {
				genOpts.Export = output.ExportKind(genExport)
			}
			if genNoComments {
				genOpts.IncludeComments = false
				extractOpts.IncludeComments = false
			}

			sql, err := validate.Sanitize(data, cf.GateLimits())
			if err != nil {
				return err
			}

			tables, err := parser.ExtractTables(sql, extractOpts)
			if err != nil {
				return fmt.Errorf("failed to parse schema: %w", err)
			}

			genOpts.Dialect = dialect.ResolveDialect(extractOpts.Dialect, sql)

			mapper := dialect.NewTypeMapper(genStrict)
			cf.ApplyTypes(mapper)

			formatter, err := output.NewFormatter(genFormat, mapper, genOpts)
			if err != nil {
				return err
			}
			formatted, err := formatter.FormatTables(tables)
			if err != nil {
				return fmt.Errorf("failed to format output: %w", err)
			}

			for _, diag := range mapper.Diagnostics() {
				fmt.Fprintf(os.Stderr, "warning: %s\n", diag)
			}

			if genOutFile == "" {
				fmt.Print(formatted)
				return nil
			}
			if err := os.WriteFile(genOutFile, []byte(formatted), 0644); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			fmt.Fprintf(os.Stderr, "Output saved to %s\n", genOutFile)
			return nil
		},
	}

	generateCmd.Flags().StringVarP(&genDialect, "dialect", "d", "", "SQL dialect: mysql, postgresql, sqlite, or auto")
	generateCmd.Flags().StringVarP(&genFormat, "format", "f", "", "Output format: typescript or json")
	generateCmd.Flags().StringVarP(&genOutFile, "output", "o", "", "Output file for the generated types")
	generateCmd.Flags().StringVar(&genNaming, "naming", "", "Declaration naming: camelCase, PascalCase, snake_case, or preserve")
	generateCmd.Flags().StringVar(&genPrefix, "prefix", "", "Prefix added to every declaration name")
	generateCmd.Flags().StringVar(&genSuffix, "suffix", "", "Suffix added to every declaration name")
	generateCmd.Flags().BoolVar(&genOptional, "optional", false, "Mark every field optional")
	generateCmd.Flags().StringVar(&genExport, "export", "", "Declaration form: interface or type")
	generateCmd.Flags().BoolVar(&genStrict, "strict", false, "Fail on unmapped SQL types instead of using 'any'")
	generateCmd.Flags().BoolVar(&genNoComments, "no-comments", false, "Drop column comments from the output")
	generateCmd.Flags().StringVarP(&genConfigFile, "config", "c", "", "Path to a sql2ts TOML config file")

	tablesCmd := &cobra.Command{
		Use:   "tables <schema.sql>",
		Short: "Parse a schema dump and display its tables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read schema file: %w", err)
			}

			sql, err := validate.Sanitize(data, validate.DefaultLimits())
			if err != nil {
				return err
			}

			tables, err := parser.ExtractTables(sql, parser.DefaultOptions())
			if err != nil {
				return fmt.Errorf("failed to parse schema: %w", err)
			}

			fmt.Printf("Detected dialect: %s\n", dialect.DetectDialect(sql))
			fmt.Printf("Tables found: %d\n", len(tables))
			for _, t := range tables {
				fmt.Printf("- %s (%d fields, %d constraints)\n", t.Name, len(t.Fields), len(t.Constraints))
				for _, f := range t.Fields {
					fmt.Printf("  - %s: %s\n", f.Name, f.Type)
				}
			}
			return nil
		},
	}

	var introDialect string
	var introDSN string
	var introTables []string
	var introFormat string
	var introOutFile string
	var introStrict bool
	var introTimeout int

	introspectCmd := &cobra.Command{
		Use:   "introspect",
		Short: "Generate TypeScript types from a live database",
		Long: `Connects to a database, reads its schema, and generates TypeScript types
without needing a schema dump.

Examples:
  sql2ts introspect --dialect mysql --dsn "user:pass@tcp(localhost:3306)/mydb"
  sql2ts introspect --dialect sqlite --dsn app.db --output types.ts`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if introDSN == "" {
				return fmt.Errorf("--dsn is required")
			}

			ctx, cancel := context.WithTimeout(context.Background(), time.Duration(introTimeout)*time.Second)
			defer cancel()

			d := core.Dialect(strings.ToLower(introDialect))
			in, err := introspect.Connect(ctx, d, introDSN)
			if err != nil {
				return err
			}
			defer func() {
				if err := in.Close(context.Background()); err != nil {
					fmt.Fprintf(os.Stderr, "failed to close database connection: %v\n", err)
				}
			}()

			tables, err := in.Introspect(ctx, introTables)
			if err != nil {
				return err
			}
			if len(tables) == 0 {
				fmt.Println("No tables found")
				return nil
			}

			genOpts := output.DefaultOptions()
			genOpts.Dialect = d

			mapper := dialect.NewTypeMapper(introStrict)
			formatter, err := output.NewFormatter(introFormat, mapper, genOpts)
			if err != nil {
				return err
			}
			formatted, err := formatter.FormatTables(tables)
			if err != nil {
				return fmt.Errorf("failed to format output: %w", err)
			}

			for _, diag := range mapper.Diagnostics() {
				fmt.Fprintf(os.Stderr, "warning: %s\n", diag)
			}

			if introOutFile == "" {
				fmt.Print(formatted)
				return nil
			}
			if err := os.WriteFile(introOutFile, []byte(formatted), 0644); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			fmt.Fprintf(os.Stderr, "Output saved to %s\n", introOutFile)
			return nil
		},
	}

	introspectCmd.Flags().StringVarP(&introDialect, "dialect", "d", "mysql", "Database dialect: mysql, postgresql, or sqlite")
	introspectCmd.Flags().StringVar(&introDSN, "dsn", "", "Database connection string (required)")
	introspectCmd.Flags().StringSliceVarP(&introTables, "tables", "t", nil, "Only introspect these tables")
	introspectCmd.Flags().StringVarP(&introFormat, "format", "f", "", "Output format: typescript or json")
	introspectCmd.Flags().StringVarP(&introOutFile, "output", "o", "", "Output file for the generated types")
	introspectCmd.Flags().BoolVar(&introStrict, "strict", false, "Fail on unmapped SQL types instead of using 'any'")
	introspectCmd.Flags().IntVar(&introTimeout, "timeout", 60, "Connection timeout in seconds")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(tablesCmd)
	rootCmd.AddCommand(introspectCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

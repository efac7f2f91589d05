// Copyright (c) 2025 Will Toth

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/willtoth/wpilog-go"
	"github.com/willtoth/wpilog-go/internal/zstdio"
)

///////////////////////////////////////////////////////////////////////////////

var (
	verbose bool

	forceZstdInput = false // force input to be zstd, irrespective of filename suffix

	capacityDivisor int
)

func requireNoErrorWithoutPrint(err error) {
	if err != nil {
		os.Exit(1)
	}
}

///////////////////////////////////////////////////////////////////////////////

func main() {
	cobra.OnInitialize()

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(schemaCmd)
	schemaCmd.Flags().BoolVarP(&forceZstdInput, "zstd", "z", false, "Input is zstd (useful for handling zstd on stdin)")

	rootCmd.AddCommand(dumpCmd)
	dumpCmd.Flags().BoolVarP(&forceZstdInput, "zstd", "z", false, "Input is zstd (useful for handling zstd on stdin)")
	dumpCmd.Flags().IntVar(&capacityDivisor, "capacity-divisor", 0, "Override the row capacity pre-sizing divisor (0 uses the default)")

	err := rootCmd.Execute()
	requireNoErrorWithoutPrint(err)
}

///////////////////////////////////////////////////////////////////////////////

var rootCmd = &cobra.Command{
	Use:   "wpilog-go",
	Short: "wpilog-go converts WPILOG robotics logs into columnar DataFrames",
	Long:  "wpilog-go converts WPILOG robotics logs into columnar DataFrames",
}

///////////////////////////////////////////////////////////////////////////////

var schemaCmd = &cobra.Command{
	Use:   "schema file...",
	Short: `Prints the inferred column schema of the given WPILOG file(s) as JSON`,
	Long:  `Prints the inferred column schema of the given WPILOG file(s) as JSON, running Pass 1 only (no row accumulation)`,
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		for _, sourceFile := range args {
			if err := printSchema(sourceFile); err != nil {
				fmt.Fprintf(os.Stderr, "error: reading %s: %s\n", sourceFile, err.Error())
			}
		}
	},
}

func printSchema(sourceFile string) error {
	data, err := zstdio.ReadAll(sourceFile, forceZstdInput)
	if err != nil {
		return fmt.Errorf("reading %s: %w", sourceFile, err)
	}

	opts := diagnosticOptions()
	schema, err := wpilog.InferSchema(data, opts...)
	if err != nil {
		return fmt.Errorf("inferring schema: %w", err)
	}

	jstr, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("marshaling schema: %w", err)
	}

	fmt.Printf("%s\n", jstr)
	return nil
}

///////////////////////////////////////////////////////////////////////////////

var dumpCmd = &cobra.Command{
	Use:   "dump file...",
	Short: `Converts the given WPILOG file(s) to a columnar DataFrame and prints summary stats`,
	Long:  `Converts the given WPILOG file(s) to a columnar DataFrame (both parsing passes) and prints row/column counts, or the whole column-oriented frame as JSON with --verbose`,
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		for _, sourceFile := range args {
			if err := dumpFile(sourceFile); err != nil {
				fmt.Fprintf(os.Stderr, "error: converting %s: %s\n", sourceFile, err.Error())
			}
		}
	},
}

func dumpFile(sourceFile string) error {
	data, err := zstdio.ReadAll(sourceFile, forceZstdInput)
	if err != nil {
		return fmt.Errorf("reading %s: %w", sourceFile, err)
	}

	opts := diagnosticOptions()
	if capacityDivisor > 0 {
		opts = append(opts, wpilog.WithCapacityDivisor(capacityDivisor))
	}

	result, err := wpilog.Parse(data, opts...)
	if err != nil {
		return fmt.Errorf("parsing: %w", err)
	}

	if !verbose {
		fmt.Printf("%s: %s rows, %d columns (%s read)\n",
			sourceFile,
			humanize.Comma(int64(result.Frame.NumRows())),
			len(result.Schema.Columns),
			humanize.Bytes(uint64(len(data))),
		)
		return nil
	}

	jstr, err := json.Marshal(result.Frame)
	if err != nil {
		return fmt.Errorf("marshaling frame: %w", err)
	}
	fmt.Printf("%s\n", jstr)
	return nil
}

func diagnosticOptions() []wpilog.Option {
	if !verbose {
		return nil
	}
	return []wpilog.Option{wpilog.WithDiagnostics(func(msg string) {
		fmt.Fprintf(os.Stderr, "wpilog: %s\n", msg)
	})}
}

/*
Copyright © 2025 Equilab
*/
package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/equilab/microbiome-prep/metadata"
)

var sampleMetadataCmd = &cobra.Command{
	Use:   "sampleMetadata -x <metadata workbook.xlsx> -o <sample-metadata.tsv>",
	Short: "Convert the raw Excel metadata to a validated, anonymized TSV",
	Long: `Reads the study's Excel metadata workbook (first sheet, embedded header in
the second row), renames every column to its normalized name, replaces subject
identities with fixed aliases, forces the sample-type of control rows, coerces
numeric columns to numeric-or-missing, and writes the self-describing TSV the
downstream stages join against.`,
	Run: func(cmd *cobra.Command, args []string) {

		excelFile, xErr := cmd.Flags().GetString("excel")
		if xErr != nil {
			log.Fatalf("Error getting excel flag: %v", xErr)
		}

		outFile, oErr := cmd.Flags().GetString("out")
		if oErr != nil {
			log.Fatalf("Error getting out flag: %v", oErr)
		}

		if excelFile == "" || outFile == "" {
			log.Fatal("Please provide the metadata workbook (-x) and the output file (-o)")
		}

		if _, err := os.Stat(excelFile); err != nil {
			log.Fatalf("Metadata workbook path %s is not valid: %v", excelFile, err)
		}
		if err := os.MkdirAll(filepath.Dir(outFile), 0755); err != nil {
			log.Fatalf("Error creating output directory: %v", err)
		}

		fmt.Printf("Reading metadata workbook %s ...\n\n", excelFile)

		table, err := metadata.Normalize(excelFile, metadata.DefaultMappings())
		if err != nil {
			log.Fatalf("Metadata normalization failed: %v", err)
		}

		fmt.Printf("Normalized %d samples with columns: %v\n\n", table.NRows(), table.Columns())

		if err := table.Save(outFile); err != nil {
			log.Fatalf("Error writing metadata file: %v", err)
		}

		fmt.Printf("Metadata TSV written to %s\n", outFile)
	},
}

func init() {
	rootCmd.AddCommand(sampleMetadataCmd)

	sampleMetadataCmd.Flags().StringP("excel", "x", "", "Path to raw metadata workbook (.xlsx)")
	sampleMetadataCmd.Flags().StringP("out", "o", "", "Path of the metadata TSV to write")
}

/*
Copyright © 2025 Equilab
*/
package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/equilab/microbiome-prep/metadata"
)

var tabulateMetadataCmd = &cobra.Command{
	Use:   "tabulateMetadata -m <sample-metadata.tsv> -o <summary.tsv> [-H <summary.html>]",
	Short: "Summarize the normalized metadata columns",
	Long: `Reads the normalized metadata TSV back and writes a per-column summary:
min/max/mean/median for numeric columns, level counts for categorical ones,
plus bar charts of sample counts for the grouping columns.`,
	Run: func(cmd *cobra.Command, args []string) {

		metadataFile, mErr := cmd.Flags().GetString("metadata")
		if mErr != nil {
			log.Fatalf("Error getting metadata flag: %v", mErr)
		}

		outFile, oErr := cmd.Flags().GetString("out")
		if oErr != nil {
			log.Fatalf("Error getting out flag: %v", oErr)
		}

		htmlFile, hErr := cmd.Flags().GetString("html")
		if hErr != nil {
			log.Fatalf("Error getting html flag: %v", hErr)
		}

		if metadataFile == "" || outFile == "" {
			log.Fatal("Please provide the metadata TSV (-m) and the output file (-o)")
		}

		if _, err := os.Stat(metadataFile); err != nil {
			log.Fatalf("Metadata file path %s is not valid: %v", metadataFile, err)
		}

		fmt.Printf("Loading metadata from %s ...\n\n", metadataFile)

		table, err := metadata.Load(metadataFile)
		if err != nil {
			log.Fatalf("Error loading metadata: %v", err)
		}

		summaries := metadata.Summarize(table)

		if err := metadata.WriteSummaryTSV(summaries, outFile); err != nil {
			log.Fatalf("Error writing summary: %v", err)
		}
		fmt.Printf("Summary written to %s\n", outFile)

		if htmlFile != "" {
			if err := metadata.WriteSummaryHTML(summaries, htmlFile); err != nil {
				log.Fatalf("Error writing charts: %v", err)
			}
			fmt.Printf("Charts written to %s\n", htmlFile)
		}
	},
}

func init() {
	rootCmd.AddCommand(tabulateMetadataCmd)

	tabulateMetadataCmd.Flags().StringP("metadata", "m", "", "Path to normalized metadata TSV")
	tabulateMetadataCmd.Flags().StringP("out", "o", "", "Path of the summary TSV to write")
	tabulateMetadataCmd.Flags().StringP("html", "H", "", "Optional path of the HTML chart page to write")
}

/*
Copyright © 2025 Equilab
*/
package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/equilab/microbiome-prep/manifest"
	"github.com/equilab/microbiome-prep/reads"
)

var readStatsCmd = &cobra.Command{
	Use:   "readStats -M <manifest.tsv> -o <read-stats.tsv> [-H <read-stats.html>]",
	Short: "Per-sample read counts and quality from the manifest",
	Long: `Scans every fastq.gz pair listed in the manifest and reports read counts,
mean per-read Phred quality and mean read length per sample. Use the charts to
pick truncation parameters for the downstream denoising stage.`,
	Run: func(cmd *cobra.Command, args []string) {

		manifestFile, mErr := cmd.Flags().GetString("manifest")
		if mErr != nil {
			log.Fatalf("Error getting manifest flag: %v", mErr)
		}

		outFile, oErr := cmd.Flags().GetString("out")
		if oErr != nil {
			log.Fatalf("Error getting out flag: %v", oErr)
		}

		htmlFile, hErr := cmd.Flags().GetString("html")
		if hErr != nil {
			log.Fatalf("Error getting html flag: %v", hErr)
		}

		threads, tErr := cmd.Flags().GetInt("threads")
		if tErr != nil {
			log.Fatalf("Error getting threads flag: %v", tErr)
		}

		if manifestFile == "" || outFile == "" {
			log.Fatal("Please provide the manifest TSV (-M) and the output file (-o)")
		}

		if _, err := os.Stat(manifestFile); err != nil {
			log.Fatalf("Manifest file path %s is not valid: %v", manifestFile, err)
		}

		fmt.Printf("Reading manifest %s ...\n\n", manifestFile)

		entries, err := manifest.Read(manifestFile)
		if err != nil {
			log.Fatalf("Error reading manifest: %v", err)
		}

		fmt.Printf("Scanning read pairs for %d samples ...\n\n", len(entries))

		stats, err := reads.Summarize(entries, threads)
		if err != nil {
			log.Fatalf("Read summary failed: %v", err)
		}

		if err := reads.WriteTSV(stats, outFile); err != nil {
			log.Fatalf("Error writing read stats: %v", err)
		}
		fmt.Printf("Read stats written to %s\n", outFile)

		if htmlFile != "" {
			if err := reads.WriteHTML(stats, htmlFile); err != nil {
				log.Fatalf("Error writing charts: %v", err)
			}
			fmt.Printf("Charts written to %s\n", htmlFile)
		}
	},
}

func init() {
	rootCmd.AddCommand(readStatsCmd)

	readStatsCmd.Flags().StringP("manifest", "M", "", "Path to manifest TSV")
	readStatsCmd.Flags().StringP("out", "o", "", "Path of the read stats TSV to write")
	readStatsCmd.Flags().StringP("html", "H", "", "Optional path of the HTML chart page to write")
	readStatsCmd.Flags().IntP("threads", "t", 4, "number of samples to scan concurrently")
}

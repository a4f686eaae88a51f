/*
Copyright © 2025 Equilab
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "microbiome-prep",
	Short: "Sample preparation for amplicon sequencing analysis",
	Long: `Prepares an amplicon-sequencing run for downstream analysis:
1.	sampleMetadata: convert the raw Excel metadata to a validated, anonymized TSV
2.	tabulateMetadata: summarize the metadata columns (TSV + charts)
3.	importManifest: resolve every sample to its paired-end fastq.gz files
4.	readStats: per-sample read counts and quality from the manifest
5.	prep: run the whole chain from a config file
`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var cfgFile string

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to config file ")
}

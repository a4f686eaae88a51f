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
	"github.com/equilab/microbiome-prep/metadata"
)

var importManifestCmd = &cobra.Command{
	Use:   "importManifest -m <sample-metadata.tsv> -r <raw data dir> -o <manifest.tsv>",
	Short: "Resolve every sample to its paired-end fastq.gz files",
	Long: `Takes the sample ids of the normalized metadata TSV and resolves each to
<id>_1.fastq.gz and <id>_2.fastq.gz under the raw data directory. Either every
id resolves to an existing pair and the manifest is written, or the run fails
listing every unresolved id; no partial manifest is produced.`,
	Run: func(cmd *cobra.Command, args []string) {

		metadataFile, mErr := cmd.Flags().GetString("metadata")
		if mErr != nil {
			log.Fatalf("Error getting metadata flag: %v", mErr)
		}

		rawDir, rErr := cmd.Flags().GetString("raw_dir")
		if rErr != nil {
			log.Fatalf("Error getting raw_dir flag: %v", rErr)
		}

		outFile, oErr := cmd.Flags().GetString("out")
		if oErr != nil {
			log.Fatalf("Error getting out flag: %v", oErr)
		}

		if metadataFile == "" || rawDir == "" || outFile == "" {
			log.Fatal("Please provide the metadata TSV (-m), the raw data directory (-r) and the output file (-o)")
		}

		if _, err := os.Stat(metadataFile); err != nil {
			log.Fatalf("Metadata file path %s is not valid: %v", metadataFile, err)
		}

		fmt.Printf("Loading metadata from %s ...\n\n", metadataFile)

		table, err := metadata.Load(metadataFile)
		if err != nil {
			log.Fatalf("Error loading metadata: %v", err)
		}

		ids := table.SampleIDs()
		fmt.Printf("Found %d samples in metadata\n", len(ids))
		fmt.Printf("Scanning directory %s ...\n\n", rawDir)

		entries, err := manifest.Build(ids, rawDir)
		if err != nil {
			log.Fatalf("Manifest build failed: %v", err)
		}

		if err := manifest.Write(entries, outFile); err != nil {
			log.Fatalf("Error writing manifest: %v", err)
		}

		fmt.Printf("Manifest with %d samples written to %s\n", len(entries), outFile)
	},
}

func init() {
	rootCmd.AddCommand(importManifestCmd)

	importManifestCmd.Flags().StringP("metadata", "m", "", "Path to normalized metadata TSV")
	importManifestCmd.Flags().StringP("raw_dir", "r", "", "Directory holding the paired fastq.gz files")
	importManifestCmd.Flags().StringP("out", "o", "", "Path of the manifest TSV to write")
}

/*
Copyright © 2025 Equilab
*/
package cmd

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/equilab/microbiome-prep/manifest"
	"github.com/equilab/microbiome-prep/metadata"
	"github.com/equilab/microbiome-prep/reads"
	"github.com/equilab/microbiome-prep/utils"
)

var prepCmd = &cobra.Command{
	Use:   "prep -c <config file>",
	Short: "Run the whole preparation chain from a config file",
	Long: `Runs sampleMetadata, tabulateMetadata, importManifest and readStats in
order, with paths taken from the config file. Each stage is recorded in a JSON
run log; with --resume, stages already logged as COMPLETED are skipped.`,
	Run: func(cmd *cobra.Command, args []string) {

		configFile, cErr := cmd.Flags().GetString("config")
		if cErr != nil {
			log.Fatalf("Error getting config flag: %v", cErr)
		}

		resume, rErr := cmd.Flags().GetBool("resume")
		if rErr != nil {
			log.Fatalf("Error getting resume flag: %v", rErr)
		}

		if configFile == "" {
			log.Fatal("Please provide a config file with -c")
		}

		fmt.Println("Reading config file ...")
		cfg, err := utils.ReadConfig(configFile)
		if err != nil {
			log.Fatalf("Error reading config file: %v", err)
		}
		if cfg.ExcelFile == "" || cfg.RawDataDir == "" || cfg.OutputDir == "" {
			log.Fatal("Config must set ExcelFile, RawDataDir and OutputDir")
		}
		if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
			log.Fatalf("Error creating output directory: %v", err)
		}

		threads := 4
		if cfg.Threads != "" {
			t, tErr := strconv.Atoi(cfg.Threads)
			if tErr != nil {
				log.Fatalf("Invalid threads value %q in config: %v", cfg.Threads, tErr)
			}
			threads = t
		}

		logger, logFile, err := utils.NewRunLogger(cfg.LogFile)
		if err != nil {
			log.Fatalf("Error opening run log: %v", err)
		}
		defer logFile.Close()

		var completed []utils.LogEntry
		if resume {
			completed = utils.ParseLogFile(cfg.LogFile)
		}

		logger.Info("MICROBIOME PREP", "PROGRAM", "INITIALISE", "STATUS", "STARTED")

		// ---------------------------------------- METADATA ---------------------------------------- //
		var table metadata.Table
		if resume && utils.StageHasCompleted(completed, "METADATA") {
			fmt.Println("Skipping metadata normalization (already completed)")
			table, err = metadata.Load(cfg.MetadataFile)
			if err != nil {
				log.Fatalf("Error loading metadata from previous run: %v", err)
			}
		} else {
			fmt.Printf("Normalizing metadata from %s ...\n\n", cfg.ExcelFile)
			logger.Info("MICROBIOME PREP", "PROGRAM", "METADATA", "STATUS", "STARTED")
			table, err = metadata.Normalize(cfg.ExcelFile, metadata.DefaultMappings())
			if err != nil {
				logger.Error("MICROBIOME PREP", "PROGRAM", "METADATA", "STATUS", fmt.Sprintf("FAILED: %v", err))
				log.Fatalf("Metadata normalization failed: %v", err)
			}
			if err = table.Save(cfg.MetadataFile); err != nil {
				logger.Error("MICROBIOME PREP", "PROGRAM", "METADATA", "STATUS", fmt.Sprintf("FAILED: %v", err))
				log.Fatalf("Error writing metadata file: %v", err)
			}
			logger.Info("MICROBIOME PREP", "PROGRAM", "METADATA", "STATUS", "COMPLETED")
			fmt.Printf("Metadata TSV written to %s\n\n", cfg.MetadataFile)
		}

		// ---------------------------------------- TABULATE ---------------------------------------- //
		if resume && utils.StageHasCompleted(completed, "TABULATE") {
			fmt.Println("Skipping metadata summary (already completed)")
		} else {
			logger.Info("MICROBIOME PREP", "PROGRAM", "TABULATE", "STATUS", "STARTED")
			summaries := metadata.Summarize(table)
			if err = metadata.WriteSummaryTSV(summaries, cfg.SummaryFile); err != nil {
				logger.Error("MICROBIOME PREP", "PROGRAM", "TABULATE", "STATUS", fmt.Sprintf("FAILED: %v", err))
				log.Fatalf("Error writing summary: %v", err)
			}
			if err = metadata.WriteSummaryHTML(summaries, cfg.SummaryChart); err != nil {
				logger.Error("MICROBIOME PREP", "PROGRAM", "TABULATE", "STATUS", fmt.Sprintf("FAILED: %v", err))
				log.Fatalf("Error writing charts: %v", err)
			}
			logger.Info("MICROBIOME PREP", "PROGRAM", "TABULATE", "STATUS", "COMPLETED")
			fmt.Printf("Metadata summary written to %s\n\n", cfg.SummaryFile)
		}

		// ---------------------------------------- MANIFEST ---------------------------------------- //
		var entries []manifest.Entry
		if resume && utils.StageHasCompleted(completed, "MANIFEST") {
			fmt.Println("Skipping manifest build (already completed)")
			entries, err = manifest.Read(cfg.ManifestFile)
			if err != nil {
				log.Fatalf("Error reading manifest from previous run: %v", err)
			}
		} else {
			fmt.Printf("Building manifest against %s ...\n\n", cfg.RawDataDir)
			logger.Info("MICROBIOME PREP", "PROGRAM", "MANIFEST", "STATUS", "STARTED")
			entries, err = manifest.Build(table.SampleIDs(), cfg.RawDataDir)
			if err != nil {
				logger.Error("MICROBIOME PREP", "PROGRAM", "MANIFEST", "STATUS", fmt.Sprintf("FAILED: %v", err))
				log.Fatalf("Manifest build failed: %v", err)
			}
			if err = manifest.Write(entries, cfg.ManifestFile); err != nil {
				logger.Error("MICROBIOME PREP", "PROGRAM", "MANIFEST", "STATUS", fmt.Sprintf("FAILED: %v", err))
				log.Fatalf("Error writing manifest: %v", err)
			}
			logger.Info("MICROBIOME PREP", "PROGRAM", "MANIFEST", "STATUS", "COMPLETED")
			fmt.Printf("Manifest with %d samples written to %s\n\n", len(entries), cfg.ManifestFile)
		}

		// ---------------------------------------- READSTATS --------------------------------------- //
		if resume && utils.StageHasCompleted(completed, "READSTATS") {
			fmt.Println("Skipping read stats (already completed)")
		} else {
			fmt.Printf("Scanning read pairs for %d samples ...\n\n", len(entries))
			logger.Info("MICROBIOME PREP", "PROGRAM", "READSTATS", "STATUS", "STARTED")
			stats, sErr := reads.Summarize(entries, threads)
			if sErr != nil {
				logger.Error("MICROBIOME PREP", "PROGRAM", "READSTATS", "STATUS", fmt.Sprintf("FAILED: %v", sErr))
				log.Fatalf("Read summary failed: %v", sErr)
			}
			if err = reads.WriteTSV(stats, cfg.ReadStats); err != nil {
				logger.Error("MICROBIOME PREP", "PROGRAM", "READSTATS", "STATUS", fmt.Sprintf("FAILED: %v", err))
				log.Fatalf("Error writing read stats: %v", err)
			}
			if err = reads.WriteHTML(stats, cfg.ReadChart); err != nil {
				logger.Error("MICROBIOME PREP", "PROGRAM", "READSTATS", "STATUS", fmt.Sprintf("FAILED: %v", err))
				log.Fatalf("Error writing charts: %v", err)
			}
			logger.Info("MICROBIOME PREP", "PROGRAM", "READSTATS", "STATUS", "COMPLETED")
			fmt.Printf("Read stats written to %s\n\n", cfg.ReadStats)
		}

		logger.Info("MICROBIOME PREP", "PROGRAM", "INITIALISE", "STATUS", "COMPLETED")
		fmt.Println("Preparation complete")
	},
}

func init() {
	rootCmd.AddCommand(prepCmd)

	prepCmd.Flags().Bool("resume", false, "skip stages already logged as COMPLETED")
}

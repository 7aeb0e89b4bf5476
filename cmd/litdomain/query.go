package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/minghan-wu/litdomain/internal/export"
)

var queryCmd = &cobra.Command{
	Use:   "query [domain]",
	Short: "List files classified under a domain",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

var domainsCmd = &cobra.Command{
	Use:   "domains",
	Short: "List all recorded domains",
	Args:  cobra.NoArgs,
	RunE:  runDomains,
}

var exportCmd = &cobra.Command{
	Use:   "export [target]",
	Short: "Export all records to CSV or XLSX",
	Long:  `Writes every file->domain record to the target path. A .xlsx extension selects a workbook; anything else produces CSV.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

var classifyCmd = &cobra.Command{
	Use:   "classify [file]",
	Short: "Classify a single PDF and print the result",
	Args:  cobra.ExactArgs(1),
	RunE:  runClassify,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(domainsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(classifyCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	logger := slog.Default()
	a, err := newApp(cmd.Context(), logger)
	if err != nil {
		return err
	}
	defer a.Close(logger)

	recs, err := a.repo.QueryByDomain(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	for _, r := range recs {
		fmt.Printf("%s\t%s\n", r.FileName, r.FilePath)
	}
	fmt.Printf("%d files in domain %q\n", len(recs), args[0])
	return nil
}

func runDomains(cmd *cobra.Command, args []string) error {
	logger := slog.Default()
	a, err := newApp(cmd.Context(), logger)
	if err != nil {
		return err
	}
	defer a.Close(logger)

	domains, err := a.repo.ListDomains(cmd.Context())
	if err != nil {
		return err
	}
	for _, d := range domains {
		fmt.Println(d)
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	logger := slog.Default()
	a, err := newApp(cmd.Context(), logger)
	if err != nil {
		return err
	}
	defer a.Close(logger)

	svc := export.NewService(a.repo, logger)
	if err := svc.ExportFile(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Printf("Exported to %s\n", args[0])
	return nil
}

// runClassify is a debugging path: full extraction+classification for one
// file, with the record printed in addition to being stored.
func runClassify(cmd *cobra.Command, args []string) error {
	logger := slog.Default()
	a, err := newApp(cmd.Context(), logger)
	if err != nil {
		return err
	}
	defer a.Close(logger)

	res, procErr := a.proc.Process(cmd.Context(), args[0])

	fmt.Printf("file:      %s\n", res.FileName)
	fmt.Printf("tier:      %s\n", res.Tier)
	fmt.Printf("chars:     %d\n", res.ExtractedChars)
	fmt.Printf("domain_cn: %s\n", res.Classification.DomainCN)
	fmt.Printf("domain_en: %s\n", res.Classification.DomainEN)
	return procErr
}

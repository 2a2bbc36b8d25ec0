package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/kamilpajak/verity/internal/agent"
	"github.com/kamilpajak/verity/internal/audit"
	"github.com/kamilpajak/verity/internal/config"
	"github.com/kamilpajak/verity/internal/database"
	"github.com/kamilpajak/verity/internal/extract"
	"github.com/kamilpajak/verity/internal/ingest"
	"github.com/kamilpajak/verity/internal/llm"
	"github.com/kamilpajak/verity/internal/vectorstore"
	"github.com/kamilpajak/verity/pkg/models"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	cfgPath       string
	frameworkFlag string
	strategyFlag  string
	providerFlag  string
	modelFlag     string
	corpusDir     string
	jsonOutput    bool
)

var rootCmd = &cobra.Command{
	Use:   "verity",
	Short: "Retrieval-grounded compliance auditing",
	Long:  `Audits policy documents against regulatory frameworks using retrieval-grounded AI analysis.`,
}

var auditCmd = &cobra.Command{
	Use:   "audit <policy-file>",
	Short: "Audit a policy document against a regulatory framework",
	Args:  cobra.ExactArgs(1),
	RunE:  runAudit,
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <corpus-dir>",
	Short: "Load a regulatory corpus into the vector store",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngest,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("verity %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to YAML config file")

	auditCmd.Flags().StringVarP(&frameworkFlag, "framework", "f", "iso27001", "Framework: iso27001, gdpr, soc2, hipaa")
	auditCmd.Flags().StringVarP(&strategyFlag, "strategy", "s", "chain_of_thought", "Reasoning strategy: chain_of_thought, react, self_correction, tree_of_thoughts")
	auditCmd.Flags().StringVar(&providerFlag, "provider", "", "Model provider override: google, openai, anthropic")
	auditCmd.Flags().StringVar(&modelFlag, "model", "", "Model name override")
	auditCmd.Flags().StringVar(&corpusDir, "corpus", "", "Directory of regulatory texts for an in-memory evidence index")
	auditCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output result as JSON")

	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if rootCmd.Execute() != nil {
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, err
	}
	if providerFlag != "" {
		cfg.LLM.Provider = providerFlag
		switch providerFlag {
		case "google":
			cfg.LLM.APIKey = os.Getenv("GOOGLE_API_KEY")
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		case "anthropic":
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}
	if modelFlag != "" {
		cfg.LLM.Model = modelFlag
	}
	return cfg, nil
}

func runAudit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	framework, ok := models.ParseFramework(frameworkFlag)
	if !ok {
		return fmt.Errorf("unknown framework: %s", frameworkFlag)
	}
	strategy, ok := models.ParseStrategy(strategyFlag)
	if !ok {
		return fmt.Errorf("unknown strategy: %s", strategyFlag)
	}

	policyPath := args[0]
	data, err := os.ReadFile(policyPath)
	if err != nil {
		return fmt.Errorf("reading policy file: %w", err)
	}
	text, meta, status := extract.New().Extract(data, policyPath)
	switch status {
	case extract.StatusUnsupported:
		return fmt.Errorf("unsupported file type: %s", meta.Extension)
	case extract.StatusEmpty:
		return fmt.Errorf("policy file is empty: %s", policyPath)
	}

	ctx := cmd.Context()

	client, err := buildModelClient(cfg)
	if err != nil {
		return err
	}
	embedder := buildEmbedder(cfg)

	index, err := buildEvidenceIndex(ctx, cfg, embedder)
	if err != nil {
		return err
	}

	engine := audit.NewEngine(agent.New(client, index, cfg.Retrieval), embedder, cfg.Audit)

	progress, stop := startProgress(os.Stderr)
	summary, err := engine.Run(ctx, audit.RunRequest{
		DocumentName: meta.Filename,
		PolicyText:   text,
		Framework:    framework,
		Strategy:     strategy,
	}, progress)
	stop()
	if err != nil {
		return fmt.Errorf("audit failed: %w", err)
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(summary)
	}

	printSummary(os.Stdout, summary)
	return nil
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Server.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must be set to ingest a corpus")
	}

	ctx := cmd.Context()

	if err := database.Migrate(cfg.Server.DatabaseURL); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	db, err := database.New(ctx, cfg.Server.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	store := vectorstore.NewStore(db.Pool(), buildEmbedder(cfg))
	result, err := ingest.New(store, cfg.Audit.ChunkSize, cfg.Audit.ChunkOverlap).Run(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Ingested %d files (%d chunks), skipped %d\n", result.FilesRead, result.Chunks, result.FilesSkipped)
	return nil
}

func buildModelClient(cfg config.Config) (llm.Client, error) {
	base, err := llm.New(llm.Options{
		Provider:    cfg.LLM.Provider,
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.LLM.Timeout,
	})
	if err != nil {
		return nil, err
	}
	return llm.NewRetryClient(base, llm.RetryConfig{
		MaxAttempts:       cfg.LLM.MaxAttempts,
		BackoffBase:       cfg.LLM.BackoffBase,
		BackoffMultiplier: cfg.LLM.BackoffMultiplier,
		MaxBackoff:        cfg.LLM.MaxBackoff,
	}, cfg.LLM.RequestsPerMinute), nil
}

func buildEmbedder(cfg config.Config) vectorstore.Embedder {
	key := os.Getenv("GOOGLE_API_KEY")
	if key == "" && cfg.LLM.Provider == "google" {
		key = cfg.LLM.APIKey
	}
	return vectorstore.NewGoogleEmbedder(key)
}

// buildEvidenceIndex prefers the pgvector store and falls back to an
// in-memory index built from --corpus.
func buildEvidenceIndex(ctx context.Context, cfg config.Config, embedder vectorstore.Embedder) (vectorstore.Index, error) {
	if cfg.Server.DatabaseURL != "" {
		db, err := database.New(ctx, cfg.Server.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return vectorstore.NewStore(db.Pool(), embedder), nil
	}

	if corpusDir == "" {
		return nil, fmt.Errorf("no evidence source: set DATABASE_URL or pass --corpus")
	}

	texts, sources, err := readCorpus(corpusDir, cfg.Audit)
	if err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return nil, fmt.Errorf("no usable documents in %s", corpusDir)
	}
	return vectorstore.NewMemoryFromTexts(ctx, embedder, texts, sources)
}

func readCorpus(dir string, cfg config.AuditConfig) (texts, sources []string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("reading corpus directory: %w", err)
	}

	extractor := extract.New()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, nil, err
		}
		text, _, status := extractor.Extract(data, entry.Name())
		if status != extract.StatusOK {
			continue
		}
		for _, chunk := range vectorstore.SplitText(text, cfg.ChunkSize, cfg.ChunkOverlap) {
			texts = append(texts, chunk)
			sources = append(sources, entry.Name())
		}
	}
	return texts, sources, nil
}

// startProgress returns a progress callback wired to a terminal spinner.
// Non-TTY stderr gets plain line output instead.
func startProgress(w *os.File) (audit.ProgressFunc, func()) {
	if !isatty.IsTerminal(w.Fd()) {
		return func(done, total int, requirement string) {
			fmt.Fprintf(w, "[%d/%d] %s\n", done, total, requirement)
		}, func() {}
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Start()
	return func(done, total int, requirement string) {
		s.Suffix = fmt.Sprintf(" analyzing %d/%d: %s", done, total, truncateLabel(requirement, 60))
	}, s.Stop
}

func truncateLabel(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func printSummary(w io.Writer, s models.Summary) {
	bold := color.New(color.Bold)
	dim := color.New(color.FgHiBlack)

	fmt.Fprintln(w)
	_, _ = bold.Fprintf(w, "%s — %s (%s)\n", s.DocumentName, s.Framework.DisplayName(), s.Strategy)
	_, _ = dim.Fprintln(w, "  "+strings.Repeat("━", 50))
	printScoreBar(w, s.ComplianceScore)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  Findings: %d total", s.TotalFindings)
	_, _ = color.New(color.FgGreen).Fprintf(w, "  %d compliant", s.Compliant)
	_, _ = color.New(color.FgYellow).Fprintf(w, "  %d partial", s.Partial)
	_, _ = color.New(color.FgRed).Fprintf(w, "  %d non-compliant", s.NonCompliant)
	_, _ = dim.Fprintf(w, "  %d insufficient evidence\n", s.Insufficient)
	fmt.Fprintln(w)

	for _, f := range byStatusSeverity(s.Findings) {
		printFinding(w, f)
	}
}

// byStatusSeverity orders findings worst first for display.
func byStatusSeverity(findings []models.Finding) []models.Finding {
	rank := map[models.ComplianceStatus]int{
		models.StatusNonCompliant:         0,
		models.StatusPartial:              1,
		models.StatusInsufficientEvidence: 2,
		models.StatusCompliant:            3,
	}
	out := make([]models.Finding, len(findings))
	copy(out, findings)
	sort.SliceStable(out, func(i, j int) bool {
		return rank[out[i].Status] < rank[out[j].Status]
	})
	return out
}

func printFinding(w io.Writer, f models.Finding) {
	label, labelColor := statusLabel(f.Status)
	_, _ = labelColor.Fprintf(w, "  %-12s", label)
	fmt.Fprintln(w, f.Requirement)

	dim := color.New(color.FgHiBlack)
	if len(f.Sources) > 0 {
		_, _ = dim.Fprintf(w, "              evidence: %s", strings.Join(f.Sources, ", "))
		_, _ = dim.Fprintf(w, " (%s confidence)\n", strings.ToLower(string(f.Confidence)))
	} else {
		_, _ = dim.Fprintf(w, "              %s\n", f.RetrievalNote)
	}
}

func statusLabel(s models.ComplianceStatus) (string, *color.Color) {
	switch s {
	case models.StatusCompliant:
		return "PASS", color.New(color.FgGreen)
	case models.StatusPartial:
		return "PARTIAL", color.New(color.FgYellow)
	case models.StatusNonCompliant:
		return "FAIL", color.New(color.FgRed, color.Bold)
	default:
		return "NO EVIDENCE", color.New(color.FgHiBlack)
	}
}

func printScoreBar(w io.Writer, score float64) {
	const barWidth = 24
	filled := int(score) * barWidth / 100
	if filled > barWidth {
		filled = barWidth
	}

	var barColor *color.Color
	switch {
	case score >= 80:
		barColor = color.New(color.FgGreen)
	case score >= 40:
		barColor = color.New(color.FgYellow)
	default:
		barColor = color.New(color.FgRed)
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	fmt.Fprintf(w, "  Score: %.0f/100 ", score)
	_, _ = barColor.Fprintln(w, bar)
}

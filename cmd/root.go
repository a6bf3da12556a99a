package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nodewee/page-ocr/pkg/config"
	"github.com/nodewee/page-ocr/pkg/constants"
	"github.com/nodewee/page-ocr/pkg/core"
	"github.com/nodewee/page-ocr/pkg/interfaces"
	"github.com/nodewee/page-ocr/pkg/logger"
	"github.com/nodewee/page-ocr/pkg/ocr/tesseract"
	"github.com/nodewee/page-ocr/pkg/telemetry"
	"github.com/nodewee/page-ocr/pkg/types"
	"github.com/nodewee/page-ocr/pkg/utils"
)

var (
	outputDir      string
	outputName     string
	backend        string
	credentials    string
	concurrency    int
	dpi            int
	keepImages     bool
	requestTimeout int
	rateLimit      float64
	retries        int
	workDir        string
	languages      []string
	verbose        bool
	showVersion    bool
)

// AppHandler encapsulates application main processing logic
type AppHandler struct {
	config *config.Config
	logger *logger.Logger
	flags  *cobra.Command
}

// NewAppHandler creates an application handler
func NewAppHandler(cmd *cobra.Command) *AppHandler {
	return &AppHandler{flags: cmd}
}

// ProcessDocument is the main entry point for document processing
func (h *AppHandler) ProcessDocument(input string) error {
	if err := h.initialize(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout())
	defer cancel()

	shutdown, err := telemetry.Setup(ctx, constants.AppName, version)
	if err != nil {
		h.logger.Warn("Tracing disabled: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			h.logger.Warn("Failed to flush traces: %v", err)
		}
	}()

	client, err := h.newOCRClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	processor, err := core.NewDocumentProcessor(h.config, client, h.logger)
	if err != nil {
		return err
	}

	result, err := processor.ProcessDocument(ctx, input)
	if err != nil {
		return err
	}

	h.displayResults(result)
	return nil
}

// initialize loads configuration and creates the logger
func (h *AppHandler) initialize() error {
	// Load ~/.page-ocr/config.json (created on first run), then apply environment overrides
	h.config = config.LoadConfigWithEnvOverrides()
	h.applyCommandLineOverrides()

	if err := h.config.Validate(); err != nil {
		return err
	}

	h.logger = logger.NewLogger(h.config.LogLevel, h.config.EnableVerbose)
	h.logger.Debug("Effective configuration: %s", h.config)
	return nil
}

// applyCommandLineOverrides applies flags the user actually set, so that
// environment values survive unset flags
func (h *AppHandler) applyCommandLineOverrides() {
	changed := h.flags.Flags().Changed

	if changed("output-dir") {
		h.config.OutputDir = outputDir
	}
	if changed("name") {
		h.config.OutputName = outputName
	}
	if changed("backend") {
		h.config.OCRBackend = types.OCRBackend(strings.ToLower(backend))
	}
	if changed("credentials") {
		h.config.CredentialsFile = credentials
	}
	if changed("concurrency") {
		h.config.MaxConcurrency = concurrency
	}
	if changed("dpi") {
		h.config.DPI = dpi
	}
	if changed("keep-images") {
		h.config.CleanupImages = !keepImages
	}
	if changed("request-timeout") {
		h.config.RequestTimeoutSeconds = requestTimeout
	}
	if changed("rate-limit") {
		h.config.RateLimit = rateLimit
	}
	if changed("retries") {
		h.config.MaxRetries = retries
	}
	if changed("work-dir") {
		h.config.WorkDir = workDir
	}
	if changed("lang") {
		h.config.LanguageHints = languages
	}
	if verbose {
		h.config.EnableVerbose = true
	}
}

// newOCRClient builds the configured backend. Tesseract is registered here
// because it links against libtesseract.
func (h *AppHandler) newOCRClient(ctx context.Context) (interfaces.OCRClient, error) {
	selector := core.NewFactory(h.config, h.logger).NewOCRSelector()
	selector.Register(types.OCRBackendTesseract, func(context.Context) (interfaces.OCRClient, error) {
		return tesseract.NewClient(h.config.TessdataPath, h.config.MaxConcurrency), nil
	})
	return selector.Select(ctx, h.config.OCRBackend)
}

// displayResults displays processing results
func (h *AppHandler) displayResults(result *interfaces.ProcessingResult) {
	batch := result.Batch

	fmt.Printf("✅ Processed %s\n", result.Document.Name)
	fmt.Printf("🆔 Batch: %s\n", batch.ID)
	fmt.Printf("📊 Backend: %s\n", result.Backend)
	fmt.Printf("📄 Pages: %d (%d with text)\n", len(batch.Pages), batch.PagesWithContent())
	fmt.Printf("📝 Words: %d\n", batch.TotalWords())
	fmt.Printf("⏱️  Processing time: %dms\n", result.ProcessTime)

	if failed := batch.FailedPages(); failed > 0 {
		fmt.Printf("⚠️  %d pages failed:\n", failed)
		for _, p := range batch.Pages {
			if p.Failed() {
				fmt.Printf("   page %d: %s\n", p.PageNumber, p.Error)
			}
		}
	}

	fmt.Printf("💾 Results:\n")
	fmt.Printf("   %s\n", result.Artifacts.CompleteJSON)
	fmt.Printf("   %s\n", result.Artifacts.TextOnlyJSON)
	fmt.Printf("   %s\n", result.Artifacts.ExtractedText)
	fmt.Printf("   %s\n", result.Artifacts.SummaryJSON)
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "page-ocr [pdf_file_or_url]",
	Short: "Concurrent page-by-page OCR for PDF documents",
	Long: `Rasterize a PDF with Ghostscript and recognize every page concurrently.

Pages are processed by a bounded pool of workers. A failed page never stops
the others; every page ends up in the results, in page order.

OCR backends:
- vision:    Google Cloud Vision document text detection (default)
- tesseract: local Tesseract engine

Outputs (written to --output-dir, default: next to the input):
- <name>_complete.json      every page, including failures
- <name>_text_only.json     pages with recognized text
- <name>_extracted_text.txt plain text with page headers
- <name>_summary.json       page counts, words and detected scripts

<name> defaults to <pdf_name>_<YYYYMMDD_HHMMSS>.

Examples:
  page-ocr scan.pdf                                   # Vision OCR with 4 workers
  page-ocr scan.pdf -c 8 --dpi 200                    # More workers, lower resolution
  page-ocr scan.pdf --backend tesseract --lang en,hi  # Local OCR, English and Hindi
  page-ocr https://example.com/report.pdf -o ./out    # Download, then process
  page-ocr scan.pdf --keep-images -v                  # Keep page images, show progress
  page-ocr scan.pdf --retries 2 --rate-limit 5        # Retry transient failures, 5 calls/s`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		// Handle version flag
		if showVersion {
			fmt.Printf("%s %s\n", constants.AppName, version)
			return
		}

		if len(args) == 0 {
			cmd.Help()
			return
		}

		handler := NewAppHandler(cmd)
		if err := handler.ProcessDocument(args[0]); err != nil {
			var appErr *utils.AppError
			if errors.As(err, &appErr) {
				log.Fatalf("Error (%s): %s", appErr.Type, errorMessage(appErr))
			}
			log.Fatalf("Error: %v", err)
		}
	},
}

// errorMessage appends the root cause to the top-level message
func errorMessage(appErr *utils.AppError) string {
	if appErr.Cause == nil {
		return appErr.Message
	}
	return fmt.Sprintf("%s: %v", appErr.Message, appErr.Cause)
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	defaults := config.NewConfig()

	rootCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "",
		"Directory for result files (default: input file directory)")
	rootCmd.Flags().StringVar(&outputName, "name", "",
		"Base name for result files (default: <pdf_name>_<timestamp>)")
	rootCmd.Flags().StringVar(&backend, "backend", string(defaults.OCRBackend),
		"OCR backend (vision, tesseract)")
	rootCmd.Flags().StringVar(&credentials, "credentials", "",
		"Google Cloud service account JSON (default: application default credentials)")
	rootCmd.Flags().IntVarP(&concurrency, "concurrency", "c", defaults.MaxConcurrency,
		fmt.Sprintf("Number of pages processed in parallel (1-%d)", constants.MaxConcurrentPages))
	rootCmd.Flags().IntVar(&dpi, "dpi", defaults.DPI,
		fmt.Sprintf("Rasterization resolution (%d-%d)", constants.MinImageDPI, constants.MaxImageDPI))
	rootCmd.Flags().BoolVar(&keepImages, "keep-images", false,
		"Keep page images in the batch working directory")
	rootCmd.Flags().IntVar(&requestTimeout, "request-timeout", defaults.RequestTimeoutSeconds,
		"Deadline for each OCR call in seconds")
	rootCmd.Flags().Float64Var(&rateLimit, "rate-limit", defaults.RateLimit,
		"Maximum OCR calls per second (0 = unlimited)")
	rootCmd.Flags().IntVar(&retries, "retries", defaults.MaxRetries,
		"Retries for transient OCR failures (0 = fail fast)")
	rootCmd.Flags().StringVar(&workDir, "work-dir", "",
		"Parent directory for batch working directories (default: system temp)")
	rootCmd.Flags().StringSliceVar(&languages, "lang", defaults.LanguageHints,
		"Language hints passed to the OCR backend")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose output to show progress information")
	rootCmd.Flags().BoolVarP(&showVersion, "version", "V", false,
		"Show version information")
}

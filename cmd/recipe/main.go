package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gocloud.dev/blob"

	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/homebysix/discentem-recipes/pkg/api"
	"github.com/homebysix/discentem-recipes/pkg/logging"
	"github.com/homebysix/discentem-recipes/pkg/processing"
	"github.com/homebysix/discentem-recipes/pkg/providers"
	"github.com/homebysix/discentem-recipes/pkg/report"
)

var version = "dev"

const (
	_ = iota
	exitNoRecipeParameter
	exitDotenvError
	exitRecipeFailed
	exitCacheDirectoryCreateFailed
	exitLoadContextFailed
	exitLoadRecipeFailed
	exitBucketOpenFailed
	exitReceiptWriteFailed
	exitSummaryRenderFailed
	exitConflictingRecipeParameters
)

var (
	recipeFile      string
	recipeDirectory string
	maxDepth        int
	cacheDirectory  string
	contextFile     string
	reportTemplate  string
	bucketURL       string
	loggingType     string
	logLevel        string
	showVersion     bool
)

func init() {
	flag.StringVar(
		&recipeFile,
		"recipe",
		"",
		"single *.recipe.yaml to run (non-recursive mode)")
	flag.StringVar(
		&recipeDirectory,
		"recipe-directory",
		"",
		"directory to search for *.recipe.yaml files")
	flag.IntVar(
		&maxDepth,
		"max-depth",
		-1,
		"max directory recursion depth (-1 = unlimited, 0 = root only)")
	flag.StringVar(
		&cacheDirectory,
		"cache-dir",
		".recipe-cache",
		"cache directory for downloads and staged artifacts")
	flag.StringVar(
		&contextFile,
		"context-file",
		"",
		"seed variables YAML file")
	flag.StringVar(
		&reportTemplate,
		"report-template",
		"",
		"summary template file rendered to stdout after all runs")
	flag.StringVar(
		&bucketURL,
		"bucket-url",
		"",
		"blob bucket URL for receipts (e.g. file:///var/receipts or s3://bucket)")
	flag.StringVar(
		&loggingType,
		"logging-type",
		"tint",
		"logging type: json, text or tint")
	flag.StringVar(
		&logLevel,
		"log-level",
		"info",
		"logging level: debug, info, warn, error")
	flag.BoolVar(
		&showVersion,
		"version",
		false,
		"print version and exit")
}

func main() {
	flag.Parse()

	if showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	_ = logging.Initialize(loggingType, logLevel)

	includeEnv()

	if code, err := validateRecipeFlags(recipeFile, recipeDirectory); err != nil {
		slog.Error("invalid parameters", "error", err)
		os.Exit(code)
	}

	engine := buildEngine()
	seed := loadSeedContext()

	ctx := context.Background()

	var results []*processing.RunResult
	runFailed := false
	if recipeFile != "" {
		results = append(results, runSingleRecipe(ctx, engine, seed))
	} else {
		var err error
		results, err = engine.RunAll(ctx, recipeDirectory, maxDepth, seed)
		if err != nil {
			slog.Error("processing failed", "error", err)
			runFailed = true
		}
	}

	receipts := writeReceipts(ctx, results)
	renderSummary(receipts)

	for _, r := range results {
		if r.Outcome == processing.OutcomeHaltedError {
			runFailed = true
		}
	}
	if runFailed {
		os.Exit(exitRecipeFailed)
	}
	slog.Info("done")
}

// validateRecipeFlags requires exactly one of -recipe and
// -recipe-directory.
func validateRecipeFlags(file, dir string) (int, error) {
	switch {
	case file == "" && dir == "":
		return exitNoRecipeParameter, fmt.Errorf("neither -recipe nor -recipe-directory set")
	case file != "" && dir != "":
		return exitConflictingRecipeParameters, fmt.Errorf("-recipe and -recipe-directory are mutually exclusive")
	}
	return 0, nil
}

func buildEngine() *processing.Engine {
	absCache, err := filepath.Abs(cacheDirectory)
	if err == nil {
		cacheDirectory = absCache
	}
	if err := os.MkdirAll(cacheDirectory, 0o750); err != nil {
		slog.Error("failed to create cache directory", "directory", cacheDirectory, "error", err)
		os.Exit(exitCacheDirectoryCreateFailed)
	}

	executor := providers.ShellExecutor{}
	return &processing.Engine{
		CacheDir: cacheDirectory,
		Providers: &providers.Set{
			Fetcher:  &providers.HTTPFetcher{},
			Finder:   providers.GlobFinder{},
			Verifier: &providers.CodesignVerifier{Exec: executor},
			Metadata: providers.PlistMetadata{},
			Copier:   providers.FileCopier{},
			Executor: executor,
			Vendorer: &providers.GitHubVendorer{Token: os.Getenv("GITHUB_TOKEN")},
		},
	}
}

func runSingleRecipe(ctx context.Context, engine *processing.Engine, seed map[string]string) *processing.RunResult {
	recipe, err := api.LoadRecipe(recipeFile)
	if err != nil {
		slog.Error("failed to load recipe", "filename", recipeFile, "error", err)
		os.Exit(exitLoadRecipeFailed)
	}

	result := engine.Run(ctx, recipe, seed)
	switch result.Outcome {
	case processing.OutcomeHaltedError:
		slog.Error("recipe failed", "step", result.FailedStep, "kind", result.FailedKind, "error", result.Err)
	case processing.OutcomeHaltedOk:
		slog.Info("recipe halted at checkpoint, nothing new", "path", recipe.FilePath)
	default:
		slog.Info("recipe succeeded", "path", recipe.FilePath)
	}
	return result
}

func writeReceipts(ctx context.Context, results []*processing.RunResult) []*report.Receipt {
	receipts := make([]*report.Receipt, 0, len(results))
	for _, r := range results {
		receipts = append(receipts, report.FromResult(r))
	}

	if bucketURL == "" {
		return receipts
	}

	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		slog.Error("failed to open receipt bucket", "url", bucketURL, "error", err)
		os.Exit(exitBucketOpenFailed)
	}
	defer func() { _ = bucket.Close() }()

	writer, err := report.NewWriter(bucket, "receipts")
	if err != nil {
		slog.Error("failed to create receipt writer", "error", err)
		os.Exit(exitBucketOpenFailed)
	}

	for _, receipt := range receipts {
		if err := writer.Write(ctx, receipt); err != nil {
			slog.Error("failed to write receipt", "recipe", receipt.Recipe, "error", err)
			os.Exit(exitReceiptWriteFailed)
		}
	}
	return receipts
}

func renderSummary(receipts []*report.Receipt) {
	if reportTemplate == "" {
		return
	}

	tmpl, err := os.ReadFile(reportTemplate)
	if err != nil {
		slog.Error("failed to read report template", "filename", reportTemplate, "error", err)
		os.Exit(exitSummaryRenderFailed)
	}

	out, err := report.RenderSummary(string(tmpl), receipts)
	if err != nil {
		slog.Error("failed to render summary", "error", err)
		os.Exit(exitSummaryRenderFailed)
	}
	fmt.Print(out)
}

func loadSeedContext() map[string]string {
	if contextFile == "" {
		return nil
	}

	seed, err := processing.LoadContextFile(contextFile)
	if err != nil {
		slog.Error("failed to load context file", "filename", contextFile, "error", err)
		os.Exit(exitLoadContextFailed)
	}
	return seed
}

func includeEnv() {
	err := godotenv.Load()
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Error("failed to load .env", "error", err)
			os.Exit(exitDotenvError)
		}
		slog.Debug("no .env file found")
	} else {
		slog.Info("using .env file")
	}
}

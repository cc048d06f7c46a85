package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ironsheep/sheet-grader/internal/answerkey"
	"github.com/ironsheep/sheet-grader/internal/config"
	"github.com/ironsheep/sheet-grader/internal/grading"
	"github.com/ironsheep/sheet-grader/internal/logging"
	"github.com/ironsheep/sheet-grader/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("sheet-grader %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printUsage()
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	logger := logging.NewLogger("sheet-grader", cfg.LogLevel)
	logger.Debug("starting", "version", Version, "built", BuildTime, "commit", GitCommit)

	engine, err := cfg.NewEngine(logger)
	if err != nil {
		log.Fatalf("Setup error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(os.Args) > 1 && os.Args[1] == "grade" {
		if len(os.Args) != 4 {
			printUsage()
			os.Exit(2)
		}
		if err := grade(ctx, engine, cfg.AnswerKeys(), os.Args[2], os.Args[3]); err != nil {
			logger.Error("grading failed", "kind", grading.KindOf(err), "err", err)
			os.Exit(1)
		}
		return
	}

	srv := server.New(engine, cfg.AnswerKeys(), logger.With("server"))
	if err := srv.Run(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// grade grades one sheet and prints the report as JSON on stdout. keyRef is
// either a path to a JSON answer key or an exam code in the key store.
func grade(ctx context.Context, engine *grading.Engine, store answerkey.FileStore, imagePath, keyRef string) error {
	var (
		key grading.AnswerKey
		err error
	)
	if strings.HasSuffix(keyRef, ".json") {
		key, err = answerkey.LoadFile(keyRef)
	} else {
		key, err = store.Load(keyRef)
	}
	if err != nil {
		return err
	}

	report, err := engine.GradeFile(ctx, imagePath, key)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func printUsage() {
	fmt.Println("sheet-grader - grade photographed multiple-choice answer sheets")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  sheet-grader                                   Run the MCP server on stdin/stdout")
	fmt.Println("  sheet-grader grade <image> <key.json|exam-code>  Grade one sheet and print JSON")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables (also read from .env):")
	fmt.Println("  SHEET_GRADER_LOG_LEVEL          debug|info|warn|error (default info)")
	fmt.Println("  SHEET_GRADER_CLASSIFIER         remote|tesseract (default remote)")
	fmt.Println("  SHEET_GRADER_DIGITS_MODEL_URL   Digit model endpoint (remote)")
	fmt.Println("  SHEET_GRADER_LETTERS_MODEL_URL  Letter model endpoint (remote)")
	fmt.Println("  SHEET_GRADER_MODEL_TIMEOUT      Inference timeout (default 30s)")
	fmt.Println("  SHEET_GRADER_DETECTOR           Region detector backend (default go)")
	fmt.Println("  SHEET_GRADER_BINARIZER          gaussian|sauvola (default gaussian)")
	fmt.Println("  SHEET_GRADER_ANNOTATION_SINK    dir|s3|none (default dir)")
	fmt.Println("  SHEET_GRADER_ANNOTATION_DIR     Annotated image directory (default ./static)")
	fmt.Println("  SHEET_GRADER_S3_BUCKET          Bucket for the s3 sink")
	fmt.Println("  SHEET_GRADER_ANSWER_KEY_DIR     Answer key directory (default ./answer_keys)")
}

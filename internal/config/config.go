// Package config loads sheet-grader settings from the environment.
//
// An optional .env file in the working directory is read first; variables
// already set in the process environment take precedence over it.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ironsheep/sheet-grader/internal/detection"
	"github.com/ironsheep/sheet-grader/internal/logging"
)

// Prefix is prepended to every environment variable name.
const Prefix = "SHEET_GRADER_"

// Classifier backends.
const (
	ClassifierRemote    = "remote"
	ClassifierTesseract = "tesseract"
)

// Annotation sinks.
const (
	SinkDir  = "dir"
	SinkS3   = "s3"
	SinkNone = "none"
)

// Config holds all runtime settings.
type Config struct {
	LogLevel logging.Level

	// Classification
	Classifier      string
	DigitsModelURL  string
	LettersModelURL string
	ModelTimeout    time.Duration
	TessdataPrefix  string

	// Detection
	Detector  string
	Binarizer string

	// Annotation output
	AnnotationSink      string
	AnnotationDir       string
	AnnotationURLPrefix string
	S3Bucket            string
	S3Region            string
	S3Prefix            string

	AnswerKeyDir string
}

// Load reads .env (if present) and the environment, then validates the result.
func Load() (*Config, error) {
	return LoadFiles(".env")
}

// LoadFiles is Load with explicit dotenv files. Missing files are skipped.
func LoadFiles(files ...string) (*Config, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	level, err := logging.ParseLevel(getEnvOrDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	timeout, err := getEnvAsDurationOrDefault("MODEL_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		LogLevel:            level,
		Classifier:          strings.ToLower(getEnvOrDefault("CLASSIFIER", ClassifierRemote)),
		DigitsModelURL:      getEnvOrDefault("DIGITS_MODEL_URL", ""),
		LettersModelURL:     getEnvOrDefault("LETTERS_MODEL_URL", ""),
		ModelTimeout:        timeout,
		TessdataPrefix:      getEnvOrDefault("TESSDATA_PREFIX", ""),
		Detector:            strings.ToLower(getEnvOrDefault("DETECTOR", detection.DefaultBackend)),
		Binarizer:           strings.ToLower(getEnvOrDefault("BINARIZER", detection.BinarizerGaussian)),
		AnnotationSink:      strings.ToLower(getEnvOrDefault("ANNOTATION_SINK", SinkDir)),
		AnnotationDir:       getEnvOrDefault("ANNOTATION_DIR", "./static"),
		AnnotationURLPrefix: getEnvOrDefault("ANNOTATION_URL_PREFIX", "/static/"),
		S3Bucket:            getEnvOrDefault("S3_BUCKET", ""),
		S3Region:            getEnvOrDefault("S3_REGION", "us-east-1"),
		S3Prefix:            getEnvOrDefault("S3_PREFIX", ""),
		AnswerKeyDir:        getEnvOrDefault("ANSWER_KEY_DIR", "./answer_keys"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks that the settings are consistent.
func (c *Config) Validate() error {
	switch c.Classifier {
	case ClassifierRemote:
		if c.DigitsModelURL == "" {
			return fmt.Errorf("%sDIGITS_MODEL_URL is required for the remote classifier", Prefix)
		}
		if c.LettersModelURL == "" {
			return fmt.Errorf("%sLETTERS_MODEL_URL is required for the remote classifier", Prefix)
		}
	case ClassifierTesseract:
	default:
		return fmt.Errorf("%sCLASSIFIER must be %q or %q, got %q",
			Prefix, ClassifierRemote, ClassifierTesseract, c.Classifier)
	}

	if c.ModelTimeout <= 0 {
		return fmt.Errorf("%sMODEL_TIMEOUT must be positive, got %s", Prefix, c.ModelTimeout)
	}

	if c.Binarizer != detection.BinarizerGaussian && c.Binarizer != detection.BinarizerSauvola {
		return fmt.Errorf("%sBINARIZER must be %q or %q, got %q",
			Prefix, detection.BinarizerGaussian, detection.BinarizerSauvola, c.Binarizer)
	}

	switch c.AnnotationSink {
	case SinkDir:
		if c.AnnotationDir == "" {
			return fmt.Errorf("%sANNOTATION_DIR is required for the dir sink", Prefix)
		}
	case SinkS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("%sS3_BUCKET is required for the s3 sink", Prefix)
		}
	case SinkNone:
	default:
		return fmt.Errorf("%sANNOTATION_SINK must be one of dir, s3, none, got %q", Prefix, c.AnnotationSink)
	}

	if c.AnswerKeyDir == "" {
		return fmt.Errorf("%sANSWER_KEY_DIR is required", Prefix)
	}
	return nil
}

// getEnvOrDefault gets a prefixed environment variable or returns def.
func getEnvOrDefault(key, def string) string {
	if value := strings.TrimSpace(os.Getenv(Prefix + key)); value != "" {
		return value
	}
	return def
}

// getEnvAsDurationOrDefault accepts Go durations ("45s") or whole seconds ("45").
func getEnvAsDurationOrDefault(key string, def time.Duration) (time.Duration, error) {
	s := getEnvOrDefault(key, "")
	if s == "" {
		return def, nil
	}
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s%s %q: %w", Prefix, key, s, err)
	}
	return d, nil
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/lk2023060901/doc-summarizer/internal/conf"
	"github.com/lk2023060901/doc-summarizer/internal/pkg/logger"
	"github.com/lk2023060901/doc-summarizer/internal/summarizer/inference"
	"github.com/lk2023060901/doc-summarizer/internal/summarizer/orchestrator"
	"github.com/lk2023060901/doc-summarizer/internal/summarizer/types"
)

var (
	configFile = flag.String("config", "configs/config.yaml", "config file path")
	inputFile  = flag.String("input", "", "document to summarize")
)

func main() {
	flag.Parse()

	// Load configuration
	config, err := conf.LoadConfig(*configFile)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	if err := config.Validate(); err != nil {
		panic("invalid config: " + err.Error())
	}

	// Initialize logger with config
	logConfig := &logger.Config{
		Level:            config.Log.Level,
		Format:           config.Log.Format,
		Output:           config.Log.Output,
		EnableCaller:     config.Log.EnableCaller,
		EnableStacktrace: config.Log.EnableStacktrace,
		File: logger.FileConfig{
			Filename:   config.Log.File.Filename,
			MaxSize:    config.Log.File.MaxSize,
			MaxAge:     config.Log.File.MaxAge,
			MaxBackups: config.Log.File.MaxBackups,
			Compress:   config.Log.File.Compress,
		},
	}

	log, err := logger.New(logConfig)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	if err := logger.InitGlobal(logConfig); err != nil {
		log.Fatal("failed to initialize global logger", zap.Error(err))
	}

	if *inputFile == "" {
		log.Fatal("missing -input flag")
	}

	raw, err := os.ReadFile(*inputFile)
	if err != nil {
		log.Fatal("failed to read input file", zap.String("path", *inputFile), zap.Error(err))
	}

	client, err := inference.NewOpenAIClient(inference.Config{
		APIKey:  config.Provider.APIKey,
		BaseURL: config.Provider.BaseURL,
		Model:   config.Provider.Model,
		Timeout: config.Provider.Timeout,
	}, log)
	if err != nil {
		log.Fatal("failed to create inference client", zap.Error(err))
	}

	retrying := inference.NewRetryClient(client, inference.RetryPolicy{
		MaxAttempts: config.Provider.MaxRetries,
		BaseDelay:   config.Provider.RetryBaseDelay,
		MaxDelay:    config.Provider.RetryMaxDelay,
		Jitter:      config.Provider.RetryJitter,
	}, log)

	orch, err := orchestrator.New(&orchestrator.Config{
		Split: types.SplitConfig{
			MaxChunkChars: config.Split.MaxChunkChars,
			OverlapChars:  config.Split.OverlapChars,
			Separators:    config.Split.Separators,
		},
		Profile: types.ModelProfile{
			ContextTokenLimit:     config.Model.ContextTokenLimit,
			CharsPerTokenEstimate: config.Model.CharsPerToken,
			Encoding:              config.Model.Encoding,
		},
		Strategy:             types.StrategyKind(config.Strategy.Kind),
		MaxOutputTokens:      config.Strategy.MaxOutputTokens,
		Temperature:          config.Strategy.Temperature,
		ReservedPromptTokens: config.Strategy.ReservedPromptTokens,
		MaxConcurrency:       config.Strategy.MaxConcurrency,
		CombineFactor:        config.Strategy.CombineFactor,
	}, retrying, log)
	if err != nil {
		log.Fatal("failed to create orchestrator", zap.Error(err))
	}

	// Cancel the run on SIGINT/SIGTERM; in-flight calls drain.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	result, err := orch.Summarize(ctx, string(raw))
	if err != nil {
		log.Error("summarization failed", zap.Error(err))
		os.Exit(1)
	}

	log.Info("done",
		zap.String("run_id", result.RunID),
		zap.Int("chunks", result.ChunkCount),
		zap.String("strategy", string(result.StrategyUsed)),
		zap.Duration("elapsed", time.Since(start)))

	fmt.Println(result.FinalText)
}

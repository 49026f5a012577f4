package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-crypto-picker/internal/entity"
	"golang-crypto-picker/internal/pipeline/config"
	"golang-crypto-picker/internal/pipeline/repository"
	"golang-crypto-picker/internal/pipeline/service"
	"golang-crypto-picker/pkg/logger"
	"golang-crypto-picker/pkg/postgres"
	"golang-crypto-picker/pkg/telegram"
	"golang-crypto-picker/pkg/utils"

	"github.com/spf13/cobra"
	"google.golang.org/genai"
)

var (
	configPath  string
	dateStr     string
	entryPrice  float64
	exitPrice   float64
	commentary  string
	versionFlag int64
	candidateID int64
)

// app bundles everything a stage command needs after bootstrap.
type app struct {
	cfg      *config.Config
	logger   *logger.Logger
	uow      repository.UnitOfWork
	notifier telegram.Notifier

	featureStore    repository.FeatureStoreRepository
	historicalStore repository.HistoricalStoreRepository
	priceSource     repository.OutcomeRepository
	rankingRepo     repository.RankingRepository
	tradeRepo       repository.TradeRepository
	modelRepo       repository.ModelVersionRepository
	candidateRepo   repository.CandidateRepository
	resultRepo      repository.BacktestResultRepository
	decisionRepo    repository.PromotionDecisionRepository

	close func()
}

func bootstrap() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	postgresCfg := postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}
	db, err := postgres.NewDB(postgresCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	var notifier telegram.Notifier
	if cfg.Telegram.BotToken != "" {
		notifier, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			appLogger.Warn("Failed to initialize Telegram notifier, continuing without", logger.ErrorField(err))
			notifier = nil
		}
	}

	closeFn := func() {
		if sqlDB, err := db.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
		_ = appLogger.Sync()
	}

	return &app{
		cfg:             cfg,
		logger:          appLogger,
		uow:             repository.NewUnitOfWork(db.DB),
		notifier:        notifier,
		featureStore:    repository.NewFeatureStoreRepository(db.DB),
		historicalStore: repository.NewHistoricalStoreRepository(db.DB),
		// No brokerage price feed is bundled; record-outcome falls back to
		// the --entry/--exit flags until one is plugged in here.
		priceSource: nil,
		rankingRepo:     repository.NewRankingRepository(db.DB),
		tradeRepo:       repository.NewTradeRepository(db.DB),
		modelRepo:       repository.NewModelVersionRepository(db.DB),
		candidateRepo:   repository.NewCandidateRepository(db.DB),
		resultRepo:      repository.NewBacktestResultRepository(db.DB),
		decisionRepo:    repository.NewPromotionDecisionRepository(db.DB),
		close:           closeFn,
	}, nil
}

func parseDateFlag() (time.Time, error) {
	if dateStr == "" {
		return utils.TruncateToDay(utils.TimeNowUTC()), nil
	}
	return utils.ParseDate(dateStr)
}

// exitOnStageError reports the machine-readable failure kind and exits
// nonzero, so schedulers can branch on the stage outcome.
func exitOnStageError(err error) {
	var stageErr *entity.StageError
	if errors.As(err, &stageErr) {
		fmt.Fprintf(os.Stderr, "stage failed: kind=%s: %s\n", stageErr.Kind, err.Error())
	} else {
		fmt.Fprintf(os.Stderr, "stage failed: %s\n", err.Error())
	}
	os.Exit(1)
}

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Compute and persist the daily ranking, opening a trade on the top pick",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := bootstrap()
		if err != nil {
			log.Fatalf("Failed to bootstrap: %v", err)
		}
		defer a.close()

		date, err := parseDateFlag()
		if err != nil {
			log.Fatalf("Invalid --date: %v", err)
		}

		svc := service.NewRankingService(a.cfg, a.uow, a.featureStore, a.modelRepo, a.rankingRepo, a.tradeRepo, a.notifier, a.logger)
		ranking, err := svc.Rank(ctx, date)
		if err != nil {
			exitOnStageError(err)
		}

		entries, err := ranking.DecodeEntries()
		if err != nil {
			exitOnStageError(err)
		}
		fmt.Printf("ranking for %s (model v%d):\n", utils.FormatDate(ranking.Date), ranking.ModelVersion)
		for _, e := range entries {
			fmt.Printf("  %2d. %-8s %.6f\n", e.Rank, e.Symbol, e.Score)
		}
	},
}

var recordOutcomeCmd = &cobra.Command{
	Use:   "record-outcome",
	Short: "Record the realized entry/exit prices for a date's trade",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := bootstrap()
		if err != nil {
			log.Fatalf("Failed to bootstrap: %v", err)
		}
		defer a.close()

		date, err := parseDateFlag()
		if err != nil {
			log.Fatalf("Invalid --date: %v", err)
		}
		svc := service.NewOutcomeService(a.uow, a.rankingRepo, a.tradeRepo, a.priceSource, a.logger)

		// Explicit prices win; without them the configured price source
		// resolves the day's entry and exit.
		var trade *entity.Trade
		switch {
		case entryPrice > 0 && exitPrice > 0:
			trade, err = svc.Record(ctx, date, entryPrice, exitPrice)
		case entryPrice > 0 || exitPrice > 0:
			log.Fatalf("--entry and --exit must both be positive prices")
		default:
			trade, err = svc.RecordFromSource(ctx, date)
		}
		if err != nil {
			exitOnStageError(err)
		}

		fmt.Printf("trade %s %s: return %.4f%% (rank of pick: %d)\n",
			utils.FormatDate(trade.Date), trade.ChosenSymbol, *trade.Actual24hReturn, *trade.RankOfChosen)
	},
}

var proposeCmd = &cobra.Command{
	Use:   "propose",
	Short: "Ask the advisor for a candidate scoring function and validate it",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := bootstrap()
		if err != nil {
			log.Fatalf("Failed to bootstrap: %v", err)
		}
		defer a.close()

		date, err := parseDateFlag()
		if err != nil {
			log.Fatalf("Invalid --date: %v", err)
		}

		genAiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey: a.cfg.Gemini.APIKey,
		})
		if err != nil {
			a.logger.Fatal("Failed to initialize Gemini AI client", logger.ErrorField(err))
		}
		advisor, err := repository.NewGeminiAdvisorRepository(a.cfg, a.logger, genAiClient)
		if err != nil {
			a.logger.Fatal("Failed to initialize Gemini advisor repository", logger.ErrorField(err))
		}

		svc := service.NewProposerService(a.cfg, advisor, a.historicalStore, a.tradeRepo, a.modelRepo, a.candidateRepo, a.logger)
		candidate, err := svc.Propose(ctx, date, commentary)
		if err != nil {
			exitOnStageError(err)
		}

		fmt.Printf("candidate %d validated: %s\n", candidate.ID, string(candidate.Expression))
	},
}

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Evaluate a model version or candidate over the historical window",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := bootstrap()
		if err != nil {
			log.Fatalf("Failed to bootstrap: %v", err)
		}
		defer a.close()

		date, err := parseDateFlag()
		if err != nil {
			log.Fatalf("Invalid --date: %v", err)
		}
		// The window ends the day before the stage date: that is the most
		// recent day whose realized returns can be complete.
		end := date.AddDate(0, 0, -1)
		start := end.AddDate(0, 0, -(a.cfg.Pipeline.BacktestWindowDays - 1))

		svc := service.NewBacktestService(a.cfg, a.historicalStore, a.modelRepo, a.candidateRepo, a.resultRepo, a.logger)

		var result *entity.BacktestResult
		switch {
		case versionFlag > 0 && candidateID > 0:
			log.Fatalf("Pass either --version or --candidate, not both")
		case candidateID > 0:
			result, err = svc.EvaluateCandidate(ctx, candidateID, start, end)
		default:
			version := versionFlag
			if version == 0 {
				version, err = a.modelRepo.CurrentVersion(ctx)
				if err != nil {
					exitOnStageError(err)
				}
			}
			result, err = svc.EvaluateVersion(ctx, version, start, end)
		}
		if err != nil {
			exitOnStageError(err)
		}

		fmt.Printf("backtest %s..%s: spearman %.4f, avg top-pick return %.4f%% over %d days\n",
			utils.FormatDate(result.WindowStart), utils.FormatDate(result.WindowEnd),
			result.SpearmanCorrelation, result.AvgDailyReturn, result.SampleSize)
	},
}

var promoteCmd = &cobra.Command{
	Use:   "promote",
	Short: "Compare a validated candidate against the incumbent and promote if it clears the gate",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := bootstrap()
		if err != nil {
			log.Fatalf("Failed to bootstrap: %v", err)
		}
		defer a.close()

		id := candidateID
		if id == 0 {
			candidate, err := a.candidateRepo.FindLatestValidated(ctx)
			if err != nil {
				exitOnStageError(err)
			}
			if candidate == nil {
				fmt.Println("no validated candidate to promote")
				return
			}
			id = candidate.ID
		}

		svc := service.NewPromotionService(a.cfg, a.uow, a.modelRepo, a.candidateRepo, a.resultRepo, a.decisionRepo, a.notifier, a.logger)
		decision, err := svc.Decide(ctx, id)
		if err != nil {
			exitOnStageError(err)
		}

		if decision.Decision == entity.DecisionPromoted && decision.NewVersion != nil {
			fmt.Printf("promoted: v%d -> v%d (%s)\n", decision.BaselineVersion, *decision.NewVersion, decision.Reason)
		} else {
			fmt.Printf("rejected: incumbent stays v%d (%s)\n", decision.BaselineVersion, decision.Reason)
		}
	},
}

func main() {
	rootCmd := &cobra.Command{Use: "pipeline"}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config-pipeline.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&dateStr, "date", "", "Stage date as YYYY-MM-DD (defaults to today UTC)")

	recordOutcomeCmd.Flags().Float64Var(&entryPrice, "entry", 0, "Realized entry price for the trade")
	recordOutcomeCmd.Flags().Float64Var(&exitPrice, "exit", 0, "Realized exit price for the trade")
	proposeCmd.Flags().StringVar(&commentary, "commentary", "", "Optional operator commentary passed to the advisor")
	backtestCmd.Flags().Int64Var(&versionFlag, "version", 0, "Model version to evaluate (defaults to the current version)")
	backtestCmd.Flags().Int64Var(&candidateID, "candidate", 0, "Candidate ID to evaluate instead of a version")
	promoteCmd.Flags().Int64Var(&candidateID, "candidate", 0, "Candidate ID to decide on (defaults to the latest validated)")

	rootCmd.AddCommand(rankCmd, recordOutcomeCmd, proposeCmd, backtestCmd, promoteCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing pipeline CLI: %s\n", err)
		os.Exit(1)
	}
}

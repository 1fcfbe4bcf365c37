package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"catalyst-alerts/alerts"
	"catalyst-alerts/config"
	"catalyst-alerts/controllers"
	"catalyst-alerts/database"
	"catalyst-alerts/scheduler"
	"catalyst-alerts/services"
	"catalyst-alerts/signals"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	storage, err := database.NewHistoryStorage(cfg.History.DBPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open history store")
	}
	defer storage.Close()

	marketData := services.NewAlpacaMarketDataService(cfg.Market.AlpacaAPIKey, cfg.Market.AlpacaAPISecret, cfg.Market.AlpacaDataURL)
	finnhub := services.NewFinnhubClient(cfg.News.FinnhubAPIKey)
	newsapi := services.NewNewsAPIClient(cfg.News.NewsAPIKey)
	aggregator := services.NewNewsAggregator(finnhub, newsapi, cfg.App.Ticker, cfg.App.WatchTickers)

	earnings := services.NewEarningsCalendarManager(storage, finnhub)
	averages := services.NewRollingAverageCalculator(storage, earnings, cfg.History.LookbackWeeks)
	comparison := services.NewPriceComparisonEngine(storage, earnings, cfg.History.LookbackWeeks, cfg.History.ElevationThreshold, cfg.History.ElevationBoost)
	collector := services.NewOptionsDataCollector(storage, marketData, cfg.App.TradingDays, cfg.App.MarketOpen, cfg.App.MarketClose)

	adSector := signals.NewAdSectorDetector(aggregator, marketData, comparison, cfg.App.Ticker, cfg.App.TradingDays)
	companyNews := signals.NewCompanyNewsDetector(finnhub, marketData, cfg.App.Ticker, cfg.App.TradingDays)
	friday0DTE := signals.NewFriday0DTEDetector(marketData, cfg.App.Ticker)
	liveNews := signals.NewLiveNewsDetector(finnhub, marketData, comparison, cfg.App.Ticker, cfg.App.TradingDays, cfg.History.MaxOptionPrice)

	detectors := []signals.Detector{adSector, companyNews, friday0DTE}

	notifier := alerts.NewDiscordNotifier(cfg.Alerts.DiscordWebhookURL, cfg.App.Ticker)

	system := scheduler.NewAlertSystem(cfg, detectors, liveNews, collector, averages, earnings, storage, notifier, marketData)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Server.Enabled {
		go func() {
			if err := runAPI(cfg, storage, averages, detectors, adSector); err != nil && err != http.ErrServerClosed {
				logger.WithError(err).Error("Monitoring API stopped")
			}
		}()
	}

	system.Run(ctx)
}

func runAPI(cfg *config.Config, storage *database.HistoryStorage, averages *services.RollingAverageCalculator, detectors []signals.Detector, adSector *signals.AdSectorDetector) error {
	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()

	historyController := controllers.NewHistoryController(storage, averages, cfg.App.Ticker)
	signalController := controllers.NewSignalController(detectors, adSector)

	api := router.Group("/api/v1")
	{
		api.GET("/history/status", historyController.HandleGetStatus)
		api.GET("/history/averages", historyController.HandleGetAverages)
		api.GET("/history/earnings/:symbol", historyController.HandleGetEarningsWeeks)
		api.POST("/history/recompute", historyController.HandleRecompute)
		api.GET("/alerts", historyController.HandleGetAlerts)

		api.GET("/signals", signalController.HandleListDetectors)
		api.POST("/signals/check", signalController.HandleCheckSignals)
		api.GET("/signals/sentiment", signalController.HandleSectorSentiment)
	}

	return router.Run(cfg.Server.ListenAddr)
}

package main

import (
	"fmt"
	"log"

	"docsight/internal/config"
	"docsight/internal/databricks"
	"docsight/internal/handler"
	"docsight/internal/notify/noop"
	"docsight/internal/notify/ses"
	"docsight/internal/port"
	"docsight/internal/repository/memory"
	"docsight/internal/router"
	"docsight/internal/service"
	"docsight/internal/storage/dbfs"
	s3storage "docsight/internal/storage/s3"

	_ "docsight/docs"
)

// @title Docsight API
// @version 1.0
// @description Upload documents, parse them with Databricks ai_parse_document, and serve normalized views, exports, and agent queries over the results.
// @BasePath /api/v1
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if !cfg.Databricks.Ready() {
		log.Printf("warning: databricks host/token/warehouse_id not configured; parse and agent endpoints will fail")
	}

	dbx := databricks.NewClient(&cfg.Databricks)

	// Initialize staging storage
	var staging port.ObjectStorage
	switch cfg.Staging.Backend {
	case "s3":
		staging, err = s3storage.NewS3Client(&cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	default:
		staging = dbfs.NewDBFSClient(dbx, cfg.Staging.Prefix)
	}

	// Initialize notifier
	var notifier port.Notifier
	if cfg.Notify.Provider == "ses" && cfg.Notify.ToAddress != "" {
		notifier, err = ses.NewSESNotifier(cfg.Notify.Region, cfg.Notify.FromAddress, cfg.Notify.FromName, cfg.Notify.ToAddress)
		if err != nil {
			return fmt.Errorf("failed to initialize SES notifier: %w", err)
		}
	} else {
		notifier = noop.NewNoopNotifier()
	}

	// Initialize store and services
	store := memory.NewDocumentStore()
	parseSvc := service.NewParseService(store, staging, dbx, &cfg.Staging, &cfg.Databricks)
	documentSvc := service.NewDocumentService(store, staging, &cfg.S3)
	agentSvc := service.NewAgentService(dbx, &cfg.Agent, &cfg.Databricks)
	queueWorker := service.NewParseQueueWorker(parseSvc, notifier, service.ParseQueueConfig{Concurrency: cfg.Queue.Concurrency})

	// Initialize handlers
	parseH := handler.NewParseHandler(parseSvc, queueWorker)
	documentH := handler.NewDocumentHandler(documentSvc)
	agentH := handler.NewAgentHandler(agentSvc)
	healthH := handler.NewHealthHandler(&cfg.Databricks)

	// Setup router
	r := router.Setup(parseH, documentH, agentH, healthH, cfg.CORS.AllowedOrigins)

	log.Printf("Server starting on %s (staging=%s, notify=%s)", cfg.Server.Port, cfg.Staging.Backend, cfg.Notify.Provider)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/kirimku/smartseller-backend/internal/application/harvester"
	"github.com/kirimku/smartseller-backend/internal/application/imagepipeline"
	"github.com/kirimku/smartseller-backend/internal/application/marketplace"
	"github.com/kirimku/smartseller-backend/internal/application/materializer"
	"github.com/kirimku/smartseller-backend/internal/application/orchestrator"
	"github.com/kirimku/smartseller-backend/internal/application/translator"
	"github.com/kirimku/smartseller-backend/internal/config"
	"github.com/kirimku/smartseller-backend/internal/domain/entity"
	"github.com/kirimku/smartseller-backend/internal/domain/repository"
	"github.com/kirimku/smartseller-backend/internal/infrastructure/database"
	"github.com/kirimku/smartseller-backend/internal/infrastructure/logger"
	infraRepo "github.com/kirimku/smartseller-backend/internal/infrastructure/repository"
	"github.com/kirimku/smartseller-backend/pkg/cache"
)

func main() {
	logger.InitLogger()
	logger.Logger.Info().Msg("rakuten materializer starting up")

	if err := config.LoadConfig(); err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	cfg := config.AppConfig

	db, err := database.Connect(cfg.Database.URL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	go database.MonitorPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, 30*time.Second)

	pool := database.NewPool(db, cfg.Database.URL)
	activeDB, err := pool.Acquire(context.Background())
	if err != nil {
		log.Fatalf("failed to acquire a working database connection: %v", err)
	}

	originRepo := infraRepo.NewPostgreSQLOriginProductRepository(activeDB)
	canonicalRepo := infraRepo.NewPostgreSQLCanonicalProductRepository(activeDB)
	categoryRepo := infraRepo.NewPostgreSQLCategoryRepository(activeDB)
	pricingRepo := infraRepo.NewPostgreSQLPricingSettingsRepository(activeDB)

	harvesterClient := harvester.NewClient(cfg.Harvester.BaseURL, cfg.Harvester.AppKey, cfg.Harvester.AppSecret)

	deepL := translator.NewDeepLBackend(cfg.Translator.DeepLAPIKey, cfg.Translator.DeepLBaseURL)
	translatorCache := cache.NewInMemoryCache(24*time.Hour, time.Hour)
	tr := translator.New(deepL, translatorCache)

	uploader, err := buildUploader(context.Background(), cfg.ObjectStore)
	if err != nil {
		log.Fatalf("failed to configure object store uploader: %v", err)
	}
	images := imagepipeline.New(uploader, cfg.ObjectStore.Bucket)

	content := materializer.NewOpenAIContentGenerator(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	mat := materializer.New(originRepo, canonicalRepo, categoryRepo, pricingRepo, tr, images, content)

	marketClient := marketplace.NewClient(
		cfg.Marketplace.ServiceSecret,
		cfg.Marketplace.LicenseKey,
		cfg.Marketplace.ProductBase,
		cfg.Marketplace.CategoryBase,
		cfg.Marketplace.InventoryBase,
		cfg.Marketplace.CabinetBase,
	)
	orch := orchestrator.New(canonicalRepo, originRepo, marketClient)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	if cfg.AutoRefreshEnabled {
		go runAutoRefresh(ctx, cfg, harvesterClient, originRepo, mat, orch)
	} else {
		logger.Logger.Info().Msg("auto_refresh disabled, pipeline is idle until a background task is triggered")
	}

	<-quit
	logger.Logger.Info().Msg("shutdown signal received, draining in-flight work")
	cancel()
	time.Sleep(2 * time.Second)
	logger.Logger.Info().Msg("rakuten materializer shut down")
}

// runAutoRefresh is the periodic background task referenced by §5: for
// every configured keyword it harvests, materializes, and registers
// whatever the search turns up, on a fixed interval until ctx is done.
func runAutoRefresh(
	ctx context.Context,
	cfg config.Config,
	harvesterClient *harvester.Client,
	originRepo repository.OriginProductRepository,
	mat *materializer.Materializer,
	orch *orchestrator.Orchestrator,
) {
	ticker := time.NewTicker(cfg.AutoRefreshInterval)
	defer ticker.Stop()

	runOnce(ctx, cfg, harvesterClient, originRepo, mat, orch)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce(ctx, cfg, harvesterClient, originRepo, mat, orch)
		}
	}
}

func runOnce(
	ctx context.Context,
	cfg config.Config,
	harvesterClient *harvester.Client,
	originRepo repository.OriginProductRepository,
	mat *materializer.Materializer,
	orch *orchestrator.Orchestrator,
) {
	for _, keyword := range cfg.AutoRefreshKeywords {
		select {
		case <-ctx.Done():
			return
		default:
		}

		productIDs, err := harvestKeyword(ctx, harvesterClient, originRepo, keyword)
		if err != nil {
			logger.Logger.Error().Err(err).Str("keyword", keyword).Msg("auto_refresh harvest failed")
			continue
		}
		if len(productIDs) == 0 {
			continue
		}

		results := mat.MaterializeAll(ctx, productIDs)
		registerMaterialized(ctx, orch, results)
	}
}

func registerMaterialized(ctx context.Context, orch *orchestrator.Orchestrator, results []materializer.ItemResult) {
	for _, r := range results {
		if r.Err != nil || r.Product == nil {
			continue
		}
		res := orch.Register(ctx, r.Product.ManageNumber, false)
		if !res.Success {
			logger.Logger.Warn().Str("manage_number", r.ProductID).Str("error", res.ErrorMessage).Msg("auto_refresh registration failed")
		}
	}
}

// harvestKeyword searches one auto_refresh keyword, filters each result's
// detail payload, persists the batch as origin products, and returns the
// product ids newly available for materialization (§4.1, §5).
func harvestKeyword(ctx context.Context, client *harvester.Client, originRepo repository.OriginProductRepository, keyword string) ([]string, error) {
	raw, err := client.Search(ctx, harvester.SearchRequest{Keyword: keyword, Page: 1, PageSize: 50})
	if err != nil {
		return nil, err
	}

	products := make([]*entity.OriginProduct, 0, len(raw))
	ids := make([]string, 0, len(raw))
	for _, r := range raw {
		var tree interface{}
		if len(r.DetailJSON) > 0 {
			if err := json.Unmarshal(r.DetailJSON, &tree); err != nil {
				logger.Logger.Warn().Err(err).Str("product_id", r.ProductID).Msg("skipping product with unparseable detail json")
				continue
			}
		}
		filtered, err := json.Marshal(harvester.FilterDetailJson(tree))
		if err != nil {
			logger.Logger.Warn().Err(err).Str("product_id", r.ProductID).Msg("skipping product, failed to re-encode filtered detail")
			continue
		}

		products = append(products, &entity.OriginProduct{
			ProductID:          r.ProductID,
			TitleC:             r.TitleC,
			TitleT:             r.TitleT,
			MainCategory:       r.MainCat,
			MiddleCategory:     r.MiddleCat,
			DetailJSON:         filtered,
			RegistrationStatus: entity.RegistrationStatusUnregistered,
		})
		ids = append(ids, r.ProductID)
	}

	if len(products) == 0 {
		return nil, nil
	}
	if err := originRepo.UpsertBatch(ctx, products); err != nil {
		return nil, err
	}
	return ids, nil
}

func buildUploader(ctx context.Context, store config.ObjectStoreConfig) (imagepipeline.Uploader, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(store.Region),
	}
	if store.AccessKey != "" && store.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(store.AccessKey, store.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if store.Endpoint != "" {
			o.BaseEndpoint = &store.Endpoint
		}
		o.UsePathStyle = store.Endpoint != ""
	})
	return manager.NewUploader(client), nil
}

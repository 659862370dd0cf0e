package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/fiscal-bridge/internal/application/fiscal"
	"github.com/jhoicas/fiscal-bridge/internal/domain/repository"
	"github.com/jhoicas/fiscal-bridge/internal/infrastructure/dominio"
	"github.com/jhoicas/fiscal-bridge/internal/infrastructure/nddaverba"
	"github.com/jhoicas/fiscal-bridge/internal/infrastructure/odoo"
	infrapdf "github.com/jhoicas/fiscal-bridge/internal/infrastructure/pdf"
	"github.com/jhoicas/fiscal-bridge/internal/infrastructure/postgres"
	"github.com/jhoicas/fiscal-bridge/internal/infrastructure/settings"
	httpRouter "github.com/jhoicas/fiscal-bridge/internal/interfaces/http"
	"github.com/jhoicas/fiscal-bridge/pkg/config"
	"github.com/jhoicas/fiscal-bridge/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("records_source", cfg.Records.Source).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	companyRepo := postgres.NewCompanyRepository(pool)
	closingRepo := postgres.NewClosingRepository(pool)
	typeRepo := postgres.NewDocumentTypeRepository(pool)
	eventRepo := postgres.NewEndorsementEventRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Documentos y líneas de pago: PostgreSQL propio o Odoo vía XML-RPC.
	var docRepo repository.FiscalDocumentRepository
	var lineRepo repository.PaymentLineRepository
	switch cfg.Records.Source {
	case config.RecordsSourceOdoo:
		odooClient, err := odoo.NewClient(cfg.Odoo.URL, cfg.Odoo.DB, cfg.Odoo.Username, cfg.Odoo.Password, http.DefaultTransport, log)
		if err != nil {
			log.Fatal().Err(err).Msg("cliente Odoo")
		}
		if cfg.Odoo.CompanyID == "" {
			log.Fatal().Msg("ODOO_COMPANY_ID requerido con RECORDS_SOURCE=odoo")
		}
		defer odooClient.Close()
		docRepo = odoo.NewDocumentRepository(odooClient, cfg.Odoo.CompanyID)
		lineRepo = odoo.NewPaymentLineRepository(odooClient, cfg.Odoo.CompanyID)
	default:
		docRepo = postgres.NewFiscalDocumentRepository(pool)
		lineRepo = postgres.NewPaymentLineRepository(pool)
	}

	// Resolución de URLs de integración: entorno > archivo del proceso > parámetro almacenado.
	sources := []settings.Source{
		settings.NewEnvSource(),
		settings.NewProcessSource(config.LoadProcessFile(cfg.Params.ProcessFile)),
	}
	switch cfg.Params.Store {
	case "ssm":
		ssmSource, err := settings.NewSSMSourceFromRegion(ctx, cfg.Params.AWSRegion, cfg.Params.SSMPrefix)
		if err != nil {
			log.Fatal().Err(err).Msg("cliente SSM")
		}
		sources = append(sources, ssmSource)
	default:
		sources = append(sources, settings.NewStoredSource(postgres.NewParameterRepository(pool)))
	}
	resolver := settings.NewResolver(log, sources...)

	newDominio := func(endpoints settings.DominioEndpoints) fiscal.DominioGateway {
		return dominio.NewClient(endpoints)
	}
	nddClient := nddaverba.NewClient(nil)

	dominioSyncUC := fiscal.NewDominioSyncUseCase(
		companyRepo, closingRepo, docRepo, lineRepo, typeRepo,
		resolver, newDominio, dominio.NewPaymentXMLRenderer(), log,
	)
	closingUC := fiscal.NewClosingUseCase(closingRepo, docRepo, lineRepo, txRunner, log)
	reportUC := fiscal.NewClosingReportUseCase(companyRepo, closingUC, infrapdf.NewClosingReportGenerator())
	endorsementUC := fiscal.NewEndorsementUseCase(companyRepo, docRepo, eventRepo, resolver, nddClient, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 120,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Fiscal Bridge API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AppName:      cfg.App.Name,
		DominioSync:  dominioSyncUC,
		Closing:      closingUC,
		Report:       reportUC,
		Endorsement:  endorsementUC,
		Integrations: fiscal.NewIntegrationChecker(companyRepo),
		JWTSecret:    cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// Package di wires the application together with a samber/do container.
package di

import (
	"context"
	"net/http"
	"time"

	"github.com/samber/do/v2"

	"github.com/largefullmoon/backend-book-recommendation/internal/api"
	"github.com/largefullmoon/backend-book-recommendation/internal/config"
	"github.com/largefullmoon/backend-book-recommendation/internal/llm"
	"github.com/largefullmoon/backend-book-recommendation/internal/logger"
	"github.com/largefullmoon/backend-book-recommendation/internal/notify"
	"github.com/largefullmoon/backend-book-recommendation/internal/recommend"
	"github.com/largefullmoon/backend-book-recommendation/internal/search"
	"github.com/largefullmoon/backend-book-recommendation/internal/service"
	"github.com/largefullmoon/backend-book-recommendation/internal/store"
	"github.com/largefullmoon/backend-book-recommendation/internal/validation"
)

const shutdownTimeout = 10 * time.Second

// NewContainer creates the DI container with all providers registered.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure.
	do.Provide(injector, ProvideConfig)
	do.Provide(injector, ProvideLogger)
	do.Provide(injector, ProvideStore)
	do.Provide(injector, ProvideSearchIndex)
	do.Provide(injector, ProvideValidator)

	// External collaborators.
	do.Provide(injector, ProvideLLMClient)
	do.Provide(injector, ProvideEmailClient)
	do.Provide(injector, ProvideWhatsAppClient)

	// Application services.
	do.Provide(injector, ProvideBookService)
	do.Provide(injector, ProvideAgeGroupService)
	do.Provide(injector, ProvideQuizService)
	do.Provide(injector, ProvideAccountService)
	do.Provide(injector, ProvidePlanService)

	// HTTP server.
	do.Provide(injector, ProvideHTTPServer)

	return injector
}

// Bootstrap invokes all providers to trigger initialization.
func Bootstrap(injector *do.RootScope) error {
	// Core infrastructure first so failures surface before the server binds.
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*StoreHandle](injector)
	_ = do.MustInvoke[*SearchIndexHandle](injector)
	_ = do.MustInvoke[*validation.Validator](injector)

	// External collaborators.
	_ = do.MustInvoke[llm.Client](injector)
	_ = do.MustInvoke[*notify.EmailClient](injector)
	_ = do.MustInvoke[*notify.WhatsAppClient](injector)

	// Business services.
	_ = do.MustInvoke[*service.BookService](injector)
	_ = do.MustInvoke[*service.AgeGroupService](injector)
	_ = do.MustInvoke[*service.QuizService](injector)
	_ = do.MustInvoke[*service.AccountService](injector)
	_ = do.MustInvoke[*recommend.Service](injector)

	// Server last.
	_ = do.MustInvoke[*HTTPServerHandle](injector)

	return nil
}

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting book recommendation server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"store_path", cfg.Store.Path,
	)

	return log, nil
}

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the document store with age-group snapshots
// initialized.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	db, err := store.New(cfg.Store.Path, log.Logger)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureAgeGroups(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &StoreHandle{Store: db}, nil
}

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.Index
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the catalog search index and wires it into
// the store so catalog writes stay indexed.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	idx, err := search.NewIndex(search.Options{
		DataPath: cfg.Store.SearchPath,
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}
	storeHandle.SetSearchIndexer(idx)

	// Backfill the index when it is empty but the catalog is not, e.g.
	// after a mapping-version rebuild.
	count, err := idx.DocumentCount()
	if err == nil && count == 0 {
		books, listErr := storeHandle.ListBooks(context.Background())
		if listErr == nil && len(books) > 0 {
			if indexErr := idx.IndexBooks(books); indexErr != nil {
				log.Warn("search index backfill failed", "error", indexErr)
			} else {
				log.Info("search index backfilled", "books", len(books))
			}
		}
	}

	return &SearchIndexHandle{Index: idx}, nil
}

// ProvideValidator provides the request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideLLMClient provides the OpenAI completion client.
func ProvideLLMClient(i do.Injector) (llm.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.OpenAI.APIKey == "" {
		log.Warn("OPENAI_API_KEY not set, plan generation will return empty plans")
	}
	return llm.NewOpenAIClient(cfg.OpenAI, log.Logger), nil
}

// ProvideEmailClient provides the SendGrid client.
func ProvideEmailClient(i do.Injector) (*notify.EmailClient, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	return notify.NewEmailClient(cfg.SendGrid, log.Logger), nil
}

// ProvideWhatsAppClient provides the WhatsApp Cloud API client.
func ProvideWhatsAppClient(i do.Injector) (*notify.WhatsAppClient, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	return notify.NewWhatsAppClient(cfg.WhatsApp, log.Logger), nil
}

// ProvideBookService provides the catalog service.
func ProvideBookService(i do.Injector) (*service.BookService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	idx := do.MustInvoke[*SearchIndexHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewBookService(storeHandle.Store, idx.Index, v, log.Logger), nil
}

// ProvideAgeGroupService provides the age-group snapshot service.
func ProvideAgeGroupService(i do.Injector) (*service.AgeGroupService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewAgeGroupService(storeHandle.Store, log.Logger), nil
}

// ProvideQuizService provides the reader quiz service.
func ProvideQuizService(i do.Injector) (*service.QuizService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewQuizService(storeHandle.Store, v, log.Logger), nil
}

// ProvideAccountService provides the parent account service.
func ProvideAccountService(i do.Injector) (*service.AccountService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewAccountService(storeHandle.Store, log.Logger), nil
}

// ProvidePlanService provides the plan-generation pipeline.
func ProvidePlanService(i do.Injector) (*recommend.Service, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	llmClient := do.MustInvoke[llm.Client](i)
	log := do.MustInvoke[*logger.Logger](i)
	return recommend.NewService(storeHandle.Store, llmClient, cfg.Recommend, log.Logger), nil
}

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server with all handlers wired.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	handler := api.NewServer(
		storeHandle.Store,
		do.MustInvoke[*service.BookService](i),
		do.MustInvoke[*service.AgeGroupService](i),
		do.MustInvoke[*service.QuizService](i),
		do.MustInvoke[*service.AccountService](i),
		do.MustInvoke[*recommend.Service](i),
		do.MustInvoke[*notify.EmailClient](i),
		do.MustInvoke[*notify.WhatsAppClient](i),
		log.Logger,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background.
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}

// Package container provides dependency injection for the application.
// It centralizes the creation and wiring of all dependencies, making them
// explicit and testable; nothing in the application relies on package
// globals.
package container

import (
	"context"
	"fmt"

	"github.com/doctor-kat/ynab-assist/internal/budget"
	"github.com/doctor-kat/ynab-assist/internal/cache"
	"github.com/doctor-kat/ynab-assist/internal/config"
	"github.com/doctor-kat/ynab-assist/internal/logging"
	"github.com/doctor-kat/ynab-assist/internal/models"
	"github.com/doctor-kat/ynab-assist/internal/resolve"
	"github.com/doctor-kat/ynab-assist/internal/staging"
	"github.com/doctor-kat/ynab-assist/internal/tools"
	"github.com/doctor-kat/ynab-assist/internal/ynab"
)

// Container holds the wired application dependencies. Fields are private;
// access goes through getters so the graph is immutable after creation.
type Container struct {
	config     *config.Config
	logger     logging.Logger
	client     *ynab.Client
	budgets    *budget.Context
	accounts   *cache.Store[models.Account]
	payees     *cache.Store[models.Payee]
	categories *cache.Store[models.CategoryGroup]
	settings   *cache.TTLStore[models.BudgetSettings]
	resolver   *resolve.Resolver
	staged     *staging.Store
	toolset    *tools.Toolset
}

// New creates and wires all application dependencies.
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if cfg.YNAB.APIToken == "" {
		return nil, fmt.Errorf("YNAB_API_TOKEN is not set")
	}

	logger := logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)

	client := ynab.New(cfg.YNAB.BaseURL, cfg.YNAB.APIToken, logger, ynab.Options{
		Timeout:    cfg.RequestTimeout(),
		MaxRetries: cfg.YNAB.MaxRetries,
	})

	budgets := budget.NewContext(client, logger)

	accounts := cache.NewStore("accounts", client.Accounts, logger)
	payees := cache.NewStore("payees", client.Payees, logger)
	categories := cache.NewStoreWithMerge("categories", client.CategoryGroups, cache.MergeCategoryGroups, logger)
	settings := cache.NewTTLStore("settings", cfg.SettingsTTL(), client.BudgetSettings, logger)

	resolver := resolve.New(accounts, payees, categories)
	staged := staging.NewStore(client, logger)

	toolset := tools.NewToolset(logger, cfg.ReadOnly, client,
		budgets, accounts, payees, categories, settings, resolver, staged)

	return &Container{
		config:     cfg,
		logger:     logger,
		client:     client,
		budgets:    budgets,
		accounts:   accounts,
		payees:     payees,
		categories: categories,
		settings:   settings,
		resolver:   resolver,
		staged:     staged,
		toolset:    toolset,
	}, nil
}

// Initialize fetches the budget list and warms the reference-data caches
// for the active budget. Failures are logged by the stores themselves and
// never abort startup.
func (c *Container) Initialize(ctx context.Context) {
	c.budgets.Initialize(ctx)
	c.accounts.Warm(ctx, c.budgets)
	c.payees.Warm(ctx, c.budgets)
	c.categories.Warm(ctx, c.budgets)
}

func (c *Container) Config() *config.Config                         { return c.config }
func (c *Container) Logger() logging.Logger                         { return c.logger }
func (c *Container) Client() *ynab.Client                           { return c.client }
func (c *Container) Budgets() *budget.Context                       { return c.budgets }
func (c *Container) Accounts() *cache.Store[models.Account]         { return c.accounts }
func (c *Container) Payees() *cache.Store[models.Payee]             { return c.payees }
func (c *Container) Categories() *cache.Store[models.CategoryGroup] { return c.categories }
func (c *Container) Settings() *cache.TTLStore[models.BudgetSettings] {
	return c.settings
}
func (c *Container) Resolver() *resolve.Resolver { return c.resolver }
func (c *Container) Staged() *staging.Store      { return c.staged }
func (c *Container) Toolset() *tools.Toolset     { return c.toolset }

// Package budget tracks the set of budgets known to the session and which
// one is implicitly active.
package budget

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/doctor-kat/ynab-assist/internal/apperr"
	"github.com/doctor-kat/ynab-assist/internal/logging"
	"github.com/doctor-kat/ynab-assist/internal/models"
)

// Lister is the slice of the YNAB client this package needs.
type Lister interface {
	Budgets(ctx context.Context) ([]models.BudgetSummary, error)
}

// Context owns the budget list and the active budget id. It is the sole
// writer of the active id; everything else reads.
type Context struct {
	client Lister
	log    logging.Logger

	mu          sync.Mutex
	budgets     map[string]models.BudgetSummary
	activeID    string
	lastFetched time.Time

	sessionID string
}

// NewContext builds an empty Context. Call Initialize to populate it.
func NewContext(client Lister, log logging.Logger) *Context {
	return &Context{
		client:    client,
		log:       log,
		budgets:   make(map[string]models.BudgetSummary),
		sessionID: uuid.NewString(),
	}
}

// Initialize fetches the budget list and builds the metadata index. When
// exactly one budget exists it becomes active automatically. Fetch
// failures are logged and leave the context empty; callers may still
// address budgets by explicit id.
func (c *Context) Initialize(ctx context.Context) {
	budgets, err := c.client.Budgets(ctx)
	if err != nil {
		c.log.WithError(err).Warn("failed to initialize budget context")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.budgets = make(map[string]models.BudgetSummary, len(budgets))
	for _, b := range budgets {
		c.budgets[b.ID] = b
	}
	c.lastFetched = time.Now()

	if len(budgets) == 1 {
		c.activeID = budgets[0].ID
		c.log.Info("single budget auto-activated",
			logging.F("budget_id", c.activeID), logging.F("name", budgets[0].Name))
		return
	}

	// A refresh can drop the budget that was active. Clear it rather than
	// silently re-pointing at another budget.
	if c.activeID != "" {
		if _, ok := c.budgets[c.activeID]; !ok {
			c.log.Warn("active budget disappeared from refreshed list, clearing",
				logging.F("budget_id", c.activeID))
			c.activeID = ""
		}
	}
}

// Refresh re-runs Initialize.
func (c *Context) Refresh(ctx context.Context) {
	c.Initialize(ctx)
}

// SetActive activates a budget by id.
func (c *Context) SetActive(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.budgets[id]; !ok {
		return &apperr.NotFoundError{
			Kind:         "budget",
			Query:        id,
			Alternatives: c.knownIDsLocked(),
		}
	}
	c.activeID = id
	return nil
}

// ActiveBudgetID returns the active budget id, if one is set.
func (c *Context) ActiveBudgetID() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeID, c.activeID != ""
}

// ActiveBudgetIDOrError returns the active budget id, or a NotFoundError
// enumerating the known budgets when none is active.
func (c *Context) ActiveBudgetIDOrError() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.activeID == "" {
		return "", &apperr.NotFoundError{
			Kind:         "budget",
			Query:        "active",
			Alternatives: c.knownIDsLocked(),
		}
	}
	return c.activeID, nil
}

// Budgets returns the known budgets sorted by name.
func (c *Context) Budgets() []models.BudgetSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.BudgetSummary, 0, len(c.budgets))
	for _, b := range c.budgets {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Budget returns one budget's metadata by id.
func (c *Context) Budget(id string) (models.BudgetSummary, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.budgets[id]
	return b, ok
}

// SessionID identifies this process's session; staged changes and logs
// carry it.
func (c *Context) SessionID() string {
	return c.sessionID
}

func (c *Context) knownIDsLocked() []string {
	ids := make([]string, 0, len(c.budgets))
	for id := range c.budgets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Package resolve maps human-supplied entity names to ids over the
// current cache snapshots. It never mutates a cache; a lookup sees
// whatever the backing store holds, stale or fresh.
package resolve

import (
	"context"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/doctor-kat/ynab-assist/internal/apperr"
	"github.com/doctor-kat/ynab-assist/internal/cache"
	"github.com/doctor-kat/ynab-assist/internal/models"
)

// Resolver performs case-insensitive name to id resolution for the
// reference-data collections.
type Resolver struct {
	accounts   *cache.Store[models.Account]
	payees     *cache.Store[models.Payee]
	categories *cache.Store[models.CategoryGroup]
}

// New builds a Resolver over the three reference-data stores.
func New(accounts *cache.Store[models.Account], payees *cache.Store[models.Payee], categories *cache.Store[models.CategoryGroup]) *Resolver {
	return &Resolver{accounts: accounts, payees: payees, categories: categories}
}

type candidate struct {
	id   string
	name string
}

// AccountID resolves an account name to its id.
func (r *Resolver) AccountID(ctx context.Context, budgetID, name string) (string, error) {
	accounts, err := r.accounts.Get(ctx, budgetID)
	if err != nil {
		return "", err
	}
	candidates := make([]candidate, 0, len(accounts))
	for _, a := range accounts {
		candidates = append(candidates, candidate{id: a.ID, name: a.Name})
	}
	return match("account", name, candidates)
}

// PayeeID resolves a payee name to its id.
func (r *Resolver) PayeeID(ctx context.Context, budgetID, name string) (string, error) {
	payees, err := r.payees.Get(ctx, budgetID)
	if err != nil {
		return "", err
	}
	candidates := make([]candidate, 0, len(payees))
	for _, p := range payees {
		candidates = append(candidates, candidate{id: p.ID, name: p.Name})
	}
	return match("payee", name, candidates)
}

// CategoryID resolves a category name to its id, flattening the
// group nesting first.
func (r *Resolver) CategoryID(ctx context.Context, budgetID, name string) (string, error) {
	groups, err := r.categories.Get(ctx, budgetID)
	if err != nil {
		return "", err
	}
	var candidates []candidate
	for _, g := range groups {
		for _, c := range g.Categories {
			candidates = append(candidates, candidate{id: c.ID, name: c.Name})
		}
	}
	return match("category", name, candidates)
}

// match runs the two-pass lookup: first exact match on the normalized
// name, then first substring match. A miss reports the candidate names and
// the nearest one by edit distance.
func match(kind, query string, candidates []candidate) (string, error) {
	normQuery := normalize(query)

	for _, c := range candidates {
		if normalize(c.name) == normQuery {
			return c.id, nil
		}
	}
	for _, c := range candidates {
		if strings.Contains(normalize(c.name), normQuery) {
			return c.id, nil
		}
	}

	names := make([]string, 0, len(candidates))
	for _, c := range candidates {
		names = append(names, c.name)
	}
	return "", &apperr.NotFoundError{
		Kind:         kind,
		Query:        query,
		Alternatives: names,
		Suggestion:   nearest(normQuery, candidates),
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// nearest returns the candidate name closest to the query by edit
// distance, when it is close enough to plausibly be a typo.
func nearest(normQuery string, candidates []candidate) string {
	best, bestDist := "", -1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(normQuery, normalize(c.name))
		if bestDist == -1 || d < bestDist {
			best, bestDist = c.name, d
		}
	}
	if bestDist == -1 || bestDist > len(normQuery)/2+1 {
		return ""
	}
	return best
}

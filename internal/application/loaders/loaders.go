package loaders

import (
	"context"
	"sync"

	"github.com/graph-gophers/dataloader/v7"

	"github.com/zatekoja/workshopbooking/internal/domain/entities"
	"github.com/zatekoja/workshopbooking/internal/domain/providers"
	"github.com/zatekoja/workshopbooking/internal/domain/repositories"
)

type ctxKey string

const loadersKey ctxKey = "dataloaders"

// Loaders batches and de-duplicates the lookups of one request
type Loaders struct {
	// RoleLoader resolves admin flags; users without a user_roles row load
	// as false
	RoleLoader *dataloader.Loader[string, bool]

	// IdentityLoader resolves identities through the identity service
	IdentityLoader *dataloader.Loader[string, *entities.Identity]
}

// NewLoaders creates a new instance of Loaders
func NewLoaders(roleRepo repositories.RoleRepository, identity providers.IdentityProvider) *Loaders {
	return &Loaders{
		RoleLoader: dataloader.NewBatchedLoader(func(ctx context.Context, keys []string) []*dataloader.Result[bool] {
			results := make([]*dataloader.Result[bool], len(keys))
			roles, err := roleRepo.GetByUserIDs(ctx, keys)

			for i, key := range keys {
				if err != nil {
					results[i] = &dataloader.Result[bool]{Error: err}
				} else if r, ok := roles[key]; ok {
					results[i] = &dataloader.Result[bool]{Data: r.IsAdmin}
				} else {
					results[i] = &dataloader.Result[bool]{Data: false}
				}
			}
			return results
		}),
		// The identity service has no batch lookup, so a batch fans out
		// concurrently and the loader only de-duplicates.
		IdentityLoader: dataloader.NewBatchedLoader(func(ctx context.Context, keys []string) []*dataloader.Result[*entities.Identity] {
			results := make([]*dataloader.Result[*entities.Identity], len(keys))

			var wg sync.WaitGroup
			for i, key := range keys {
				wg.Add(1)
				go func(i int, key string) {
					defer wg.Done()
					user, err := identity.GetUserByID(ctx, key)
					results[i] = &dataloader.Result[*entities.Identity]{Data: user, Error: err}
				}(i, key)
			}
			wg.Wait()
			return results
		}),
	}
}

// For returns the loaders for a given context, nil when none are attached
func For(ctx context.Context) *Loaders {
	l, _ := ctx.Value(loadersKey).(*Loaders)
	return l
}

// WithLoaders returns a new context with the loaders attached
func WithLoaders(ctx context.Context, loaders *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey, loaders)
}

package services

import (
	"context"
	"fmt"

	"admin-rbac/cache"
	"admin-rbac/models"
	"admin-rbac/schema"

	"go.uber.org/zap"
)

const menuCacheKey = "dcat-admin-menus-%d-%s"

// MenuCache memoizes the assembled menu tree of a namespace in its configured store.
type MenuCache struct {
	app    *schema.App
	stores *cache.Manager
	logger *zap.SugaredLogger
}

func NewMenuCache(app *schema.App, stores *cache.Manager, logger *zap.SugaredLogger) *MenuCache {
	return &MenuCache{app: app, stores: stores, logger: logger.Named("MenuCache")}
}

func (c *MenuCache) Enabled() bool {
	return c.app.CacheEnabled()
}

// Key depends on every input that changes the shape of a fetched tree: the permission
// binding and the namespace.
func (c *MenuCache) Key() string {
	bit := 0
	if c.app.WithPermission() {
		bit = 1
	}
	return fmt.Sprintf(menuCacheKey, bit, c.app.Name)
}

func (c *MenuCache) store() (cache.Store, error) {
	return c.stores.Store(c.app.CacheStore)
}

// Remember returns the cached tree, building and storing it without expiry on a miss.
// With caching disabled builder is called directly and nothing is written.
func (c *MenuCache) Remember(ctx context.Context, builder func() ([]models.Menu, error)) ([]models.Menu, error) {
	if !c.Enabled() {
		return builder()
	}
	store, err := c.store()
	if err != nil {
		return nil, err
	}
	return cache.Remember(ctx, store, c.Key(), cache.Forever, builder)
}

// FlushCache deletes the tree of the current key. No-op when caching is disabled.
func (c *MenuCache) FlushCache(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	store, err := c.store()
	if err != nil {
		return err
	}
	key := c.Key()
	if err := store.Delete(ctx, key); err != nil {
		return fmt.Errorf("flush menu cache %s: %w", key, err)
	}
	c.logger.Debugw("Flushed menu cache", "key", key, "store", c.app.CacheStore)
	return nil
}

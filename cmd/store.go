package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/scholarpath/internal/config"
	"github.com/sells-group/scholarpath/internal/store"
)

func initStore(ctx context.Context, sc config.StoreConfig) (store.Store, error) {
	switch sc.Driver {
	case "sqlite":
		s, err := store.NewSQLite(sc.DatabaseURL)
		if err != nil {
			return nil, err
		}
		s.SetRetry(sc.Retry.Policy())
		return s, nil
	case "postgres":
		return store.NewPostgres(ctx, sc.DatabaseURL, &store.PoolConfig{
			MaxConns: sc.MaxConns,
			MinConns: sc.MinConns,
		}, sc.Retry.Policy())
	default:
		return nil, eris.Errorf("unsupported store driver: %s", sc.Driver)
	}
}

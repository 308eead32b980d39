package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dshills/botflow/pkg/api"
	"github.com/dshills/botflow/pkg/session"
	"github.com/dshills/botflow/pkg/storage"
	"github.com/prometheus/client_golang/prometheus"
)

// newCredentialStore opens the store holding the encrypted session.
// Tests swap it for an in-memory store.
var newCredentialStore = func(service string) storage.CredentialStore {
	return storage.NewKeyringCredentialStore(service)
}

// runtime carries what the root command sets up for its subcommands.
// Everything past cfg, logger and registry is opened on first use.
type runtime struct {
	cfg      *Config
	logger   *slog.Logger
	registry *prometheus.Registry

	store  storage.CredentialStore
	sess   *session.Session
	client *api.Client
	drafts *storage.SQLiteDraftRepository
}

func (rt *runtime) session() (*session.Session, error) {
	if rt.sess != nil {
		return rt.sess, nil
	}
	codec, err := session.NewCodec([]byte(rt.cfg.EncryptionKey))
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if rt.store == nil {
		rt.store = newCredentialStore(rt.cfg.KeyringService)
	}
	rt.sess = session.New(rt.store, codec, session.WithLogger(rt.logger))
	return rt.sess, nil
}

func (rt *runtime) apiClient() (*api.Client, error) {
	if rt.client != nil {
		return rt.client, nil
	}
	sess, err := rt.session()
	if err != nil {
		return nil, err
	}
	rt.client = api.NewClient(sess,
		api.WithLogger(rt.logger),
		api.WithMetrics(api.NewMetrics(rt.registry)),
	)
	return rt.client, nil
}

// loggedInClient restores the saved session and returns a client using it.
func (rt *runtime) loggedInClient() (*api.Client, error) {
	sess, err := rt.session()
	if err != nil {
		return nil, err
	}
	if !sess.LoggedIn() {
		if err := sess.Restore(); err != nil {
			if errors.Is(err, session.ErrNotLoggedIn) {
				return nil, fmt.Errorf("not logged in; run 'botflow login' first")
			}
			return nil, fmt.Errorf("failed to restore session: %w", err)
		}
	}
	return rt.apiClient()
}

func (rt *runtime) draftRepo(ctx context.Context) (*storage.SQLiteDraftRepository, error) {
	if rt.drafts != nil {
		return rt.drafts, nil
	}
	repo, err := storage.NewSQLiteDraftRepository(ctx, rt.cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open drafts database: %w", err)
	}
	rt.drafts = repo
	return repo, nil
}

// close releases whatever was opened. It is safe to call more than once.
func (rt *runtime) close() error {
	if rt.drafts == nil {
		return nil
	}
	err := rt.drafts.Close()
	rt.drafts = nil
	return err
}

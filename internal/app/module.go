// Package app wires the client's components into an fx application.
package app

import (
	"github.com/chattrix/chattrix/internal/auth"
	"github.com/chattrix/chattrix/internal/aw"
	"github.com/chattrix/chattrix/internal/bus"
	"github.com/chattrix/chattrix/internal/config"
	"github.com/chattrix/chattrix/internal/logging"
	"github.com/chattrix/chattrix/internal/profile"
	"github.com/chattrix/chattrix/internal/session"
	"github.com/chattrix/chattrix/internal/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds the resolved configuration and file paths passed to the fx
// module.
type Params struct {
	Config      *config.Config
	LogPath     string
	SessionPath string
}

// Module returns the fx module composing all client providers.
func Module(p Params) fx.Option {
	return fx.Module("chattrix",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideBus,
			provideClient,
			provideAccount,
			provideDatabases,
			provideStorage,
			provideRealtime,
			provideSessionStore,
			provideChatStore,
			provideUserStore,
			provideChatStream,
			provideAuth,
			provideProfile,
		),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	return logging.New(p.LogPath)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideClient(p Params, logger *zap.Logger) *aw.Client {
	return aw.NewClient(p.Config.Endpoint, p.Config.Project, logger)
}

func provideAccount(c *aw.Client) *aw.Account {
	return aw.NewAccount(c)
}

func provideDatabases(p Params, c *aw.Client) *aw.Databases {
	return aw.NewDatabases(c, p.Config.DatabaseID)
}

func provideStorage(p Params, c *aw.Client) *aw.Storage {
	return aw.NewStorage(c, p.Config.AvatarBucketID)
}

func provideRealtime(c *aw.Client, logger *zap.Logger) *aw.Realtime {
	return aw.NewRealtime(c, logger)
}

func provideSessionStore(p Params) *session.Store {
	return session.NewStore(p.SessionPath)
}

func provideChatStore(p Params, db *aw.Databases, logger *zap.Logger) *store.ChatStore {
	return store.NewChatStore(db, p.Config.ChatCollectionID, logger)
}

func provideUserStore(p Params, db *aw.Databases, logger *zap.Logger) *store.UserStore {
	return store.NewUserStore(db, p.Config.UserCollectionID, logger)
}

func provideChatStream(p Params, rt *aw.Realtime, logger *zap.Logger) *store.ChatStream {
	return store.NewChatStream(rt, p.Config.DatabaseID, p.Config.ChatCollectionID, logger)
}

func provideAuth(account *aw.Account, users *store.UserStore, sessions *session.Store, logger *zap.Logger) *auth.Service {
	return auth.NewService(account, users, sessions, logger)
}

func provideProfile(account *aw.Account, blobs *aw.Storage, users *store.UserStore, logger *zap.Logger) *profile.Service {
	return profile.NewService(account, blobs, users, logger)
}

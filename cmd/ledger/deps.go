package main

import (
	"github.com/pkg/errors"

	"github.com/Tchaas/Bingo-ledger/api"
	"github.com/Tchaas/Bingo-ledger/auth"
	"github.com/Tchaas/Bingo-ledger/credentials"
	"github.com/Tchaas/Bingo-ledger/credentials/filestore"
	"github.com/Tchaas/Bingo-ledger/credentials/memstore"
	"github.com/Tchaas/Bingo-ledger/internal/config"
)

// appDeps wires the SDK together for one command invocation. The
// memstore half exists for API symmetry: a CLI process ends after each
// command, so a session-lifetime login lasts exactly that long.
type appDeps struct {
	client  *api.Client
	store   *credentials.Store
	session *auth.Session
}

func buildDeps() (*appDeps, error) {
	cfg := config.New()

	fileOpts := []filestore.Option{}
	if key := cfg.GetCredentialsKey(); key != "" {
		fileOpts = append(fileOpts, filestore.WithEncryptionKey(key))
	}
	persistent, err := filestore.New(cfg.GetDataFolder(), fileOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "[buildDeps] filestore")
	}

	store, err := credentials.NewStore(persistent, memstore.New())
	if err != nil {
		return nil, errors.Wrap(err, "[buildDeps] credentials store")
	}

	client, err := api.New(cfg.GetBaseURL(), store, api.WithTimeout(cfg.GetHTTPTimeout()))
	if err != nil {
		return nil, errors.Wrap(err, "[buildDeps] api client")
	}

	session, err := auth.New(auth.Deps{Client: client, Credentials: store})
	if err != nil {
		return nil, errors.Wrap(err, "[buildDeps] session")
	}

	return &appDeps{client: client, store: store, session: session}, nil
}

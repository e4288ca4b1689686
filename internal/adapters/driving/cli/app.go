package cli

import (
	"fmt"

	"github.com/custodia-labs/glaximini/internal/adapters/driven/config/file"
	"github.com/custodia-labs/glaximini/internal/adapters/driven/hashid"
	"github.com/custodia-labs/glaximini/internal/adapters/driven/lottie"
	"github.com/custodia-labs/glaximini/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/glaximini/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/glaximini/internal/core/ports/driven"
	"github.com/custodia-labs/glaximini/internal/core/ports/driving"
	"github.com/custodia-labs/glaximini/internal/core/services"
	"github.com/custodia-labs/glaximini/internal/logger"
)

// exportService overrides the export service built from settings. Tests set it.
var exportService driving.ExportService

// app is the wired service graph.
type app struct {
	store    driven.DocumentStore
	registry *services.Registry
	hub      *services.Hub
	exports  *services.ExportService

	close func() error
}

// openApp wires the services over SQLite, or over an in-memory store that
// is discarded on exit when ephemeral is set.
func openApp(s file.Settings, ephemeral bool) (*app, error) {
	codec, err := hashid.New(s.Server.IDSalt)
	if err != nil {
		return nil, err
	}

	a := &app{close: func() error { return nil }}
	if ephemeral {
		a.store = memory.NewDocumentStore()
		logger.Warn("using in-memory storage, documents are lost on exit")
	} else {
		db, err := sqlite.NewStore(s.Storage.DataDir)
		if err != nil {
			return nil, fmt.Errorf("opening store: %w", err)
		}
		logger.Info("database %s", db.Path())
		a.store = db.DocumentStore()
		a.close = db.Close
	}

	encoder := lottie.NewEncoder()
	persistence := services.NewPersistence(a.store, codec, encoder)
	a.registry = services.NewRegistry(persistence, s.Document.Timeline())
	a.hub = services.NewHub(a.registry, services.NewSyncProtocol(a.store), services.NewEditor(), persistence)
	a.exports = services.NewExportService(a.registry, persistence, encoder)

	return a, nil
}

// Close releases the store.
func (a *app) Close() error {
	return a.close()
}

// exportsFor returns the export service for one-shot commands and a func
// releasing what it opened.
func exportsFor(s file.Settings) (driving.ExportService, func(), error) {
	if exportService != nil {
		return exportService, func() {}, nil
	}

	a, err := openApp(s, false)
	if err != nil {
		return nil, nil, err
	}
	return a.exports, func() {
		if err := a.Close(); err != nil {
			logger.Warn("closing store: %v", err)
		}
	}, nil
}

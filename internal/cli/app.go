package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"spamlens/config"
	"spamlens/internal/adapter/memstore"
	"spamlens/internal/adapter/store"
	"spamlens/internal/logger"
	"spamlens/internal/port"
	"spamlens/internal/usecase"
)

// openStore opens the data directory's database and brings its schema up
// to date, dropping cached explanations made under another configuration.
func openStore(ctx context.Context, cfg *config.Config) (*store.BoltStore, error) {
	if err := config.EnsureDataDir(GetRootDir()); err != nil {
		return nil, fmt.Errorf("failed to create .spamlens directory: %w", err)
	}
	st, err := store.NewBoltStore(config.StorePath(GetRootDir()))
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	res, err := st.Migrate(cfg)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	log := logger.FromContext(ctx)
	if res.NeedsMigration {
		log.Info("schema migrated", "from", res.OldVersion, "to", res.NewVersion, "reason", res.Reason)
	}
	if res.NeedsReset {
		log.Info("cleared cached explanations", "reason", res.Reason)
	}
	return st, nil
}

// loadApp builds the application around the configured model. With
// ephemeral set nothing is read from or written to disk besides an explicit
// model file.
func loadApp(ctx context.Context, ephemeral bool) (*usecase.App, func(), error) {
	cfg := GetConfig()

	var (
		st      port.ModelStore
		cleanup = func() {}
	)
	if ephemeral {
		st = memstore.NewMemoryStore()
	} else {
		bolt, err := openStore(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		st = bolt
		cleanup = func() { bolt.Close() }
	}

	artifact, err := usecase.LoadArtifact(cfg, st)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("load model: %w (import one with 'spamlens model import' or pass --model)", err)
	}
	rt, err := usecase.NewRuntime(artifact, cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	app, err := usecase.NewApp(rt, cfg, st)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	logger.FromContext(ctx).Debug("model loaded", "name", rt.Info.Name, "version", rt.Info.Version, "kind", rt.Info.Kind)
	return app, cleanup, nil
}

// readMessage joins the arguments, or reads stdin when there are none or
// the only argument is "-".
func readMessage(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return strings.Join(args, " "), nil
	}
	if stdin == nil {
		stdin = os.Stdin
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

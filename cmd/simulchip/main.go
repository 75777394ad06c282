// Command simulchip compares NetrunnerDB decklists against a locally
// tracked card collection and stages missing cards for proxy printing.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/dfiru/simulchip/internal/cache"
	"github.com/dfiru/simulchip/internal/collection"
	"github.com/dfiru/simulchip/internal/config"
	logger "github.com/dfiru/simulchip/internal/log"
	"github.com/dfiru/simulchip/internal/netrunnerdb"
	"github.com/dfiru/simulchip/internal/web"
	"github.com/google/subcommands"
)

var configPath = flag.String("config", "", "path to the config file, built-in defaults apply when unset")
var collectionPath = flag.String("collection", "", "path to the collection file, overrides the config")
var cacheDir = flag.String("cache", "", "cache directory, overrides the config")

// env bundles the pieces every command needs.
type env struct {
	cfg     *config.Config
	cache   *cache.Cache
	web     web.Client
	catalog *netrunnerdb.Client
}

func newEnv() (*env, error) {
	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if *collectionPath != "" {
		cfg.Collection.Path = *collectionPath
	}
	if *cacheDir != "" {
		cfg.Cache.Location = *cacheDir
	}

	if err := logger.SetLogLevel(cfg.Logging.LevelOrDefault()); err != nil {
		return nil, err
	}

	c, err := cache.New(cfg.Cache.Location)
	if err != nil {
		return nil, err
	}

	webClient := web.NewClient(cfg.HTTP, &http.Client{Timeout: cfg.HTTP.Timeout})

	return &env{
		cfg:     cfg,
		cache:   c,
		web:     webClient,
		catalog: netrunnerdb.NewClient(webClient, c, cfg.Netrunnerdb),
	}, nil
}

// loadDeclaration reads the collection file, migrating legacy shapes
// with the catalog. With allowMissing an absent file yields an empty
// declaration.
func (e *env) loadDeclaration(ctx context.Context, allowMissing bool) (*collection.Declaration, error) {
	cards, err := e.catalog.AllCards(ctx)
	if err != nil {
		return nil, err
	}

	decl, err := collection.Load(e.cfg.Collection.Path, cards)
	if err != nil {
		if allowMissing && errors.Is(err, collection.ErrNotFound) {
			return collection.NewDeclaration(), nil
		}

		return nil, err
	}

	return decl, nil
}

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)

	return subcommands.ExitFailure
}

func main() {
	if err := logger.Setup("info"); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")

	subcommands.Register(&initCmd{}, "collection")
	subcommands.Register(&addPackCmd{}, "collection")
	subcommands.Register(&removePackCmd{}, "collection")
	subcommands.Register(&addCardCmd{}, "collection")
	subcommands.Register(&removeCardCmd{}, "collection")
	subcommands.Register(&statsCmd{}, "collection")

	subcommands.Register(&packsCmd{}, "catalog")
	subcommands.Register(&cacheCmd{}, "catalog")

	subcommands.Register(&compareCmd{}, "decklists")
	subcommands.Register(&proxyCmd{}, "decklists")

	flag.Parse()

	os.Exit(int(subcommands.Execute(context.Background())))
}

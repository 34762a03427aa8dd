package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	servertiming "github.com/mitchellh/go-server-timing"
	"github.com/urfave/cli/v3"

	cmisql "github.com/nlstn/go-cmisql"
	"github.com/nlstn/go-cmisql/internal/dictionary"
	"github.com/nlstn/go-cmisql/internal/observability"
)

// Global flag names.
const (
	flagModel            = "model"
	flagDB               = "db"
	flagDBDriver         = "db-driver"
	flagMode             = "mode"
	flagDefaultNamespace = "default-namespace"
	flagTimings          = "timings"
	flagVerbose          = "verbose"
)

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    flagModel,
			Aliases: []string{"m"},
			Usage:   "YAML dictionary model file",
		},
		&cli.StringFlag{
			Name:  flagDB,
			Usage: "dictionary store DSN",
		},
		&cli.StringFlag{
			Name:  flagDBDriver,
			Usage: "dictionary store driver (sqlite or postgres)",
			Value: dictionary.DriverSQLite,
		},
		&cli.StringFlag{
			Name:  flagMode,
			Usage: "query dialect (strict or alfresco)",
			Value: "strict",
		},
		&cli.StringFlag{
			Name:  flagDefaultNamespace,
			Usage: "namespace URI for unqualified property names",
		},
		&cli.BoolFlag{
			Name:  flagTimings,
			Usage: "print per-phase timings to stderr",
		},
		&cli.BoolFlag{
			Name:    flagVerbose,
			Aliases: []string{"v"},
			Usage:   "enable debug logging",
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "cmisq",
		Usage: "Tokenize, parse and resolve CMIS queries",
		Flags: globalFlags(),
		Commands: []*cli.Command{
			newTokensCommand(),
			newParseCommand(),
			newFTSCommand(),
			newResolveCommand(),
			newCompileCommand(),
			newModelCommand(),
		},
	}
}

func parseMode(s string) (cmisql.Mode, error) {
	switch strings.ToLower(s) {
	case "", "strict":
		return cmisql.ModeStrict, nil
	case "alfresco":
		return cmisql.ModeAlfresco, nil
	default:
		return 0, fmt.Errorf("unknown mode %q", s)
	}
}

func newLogger(cmd *cli.Command) *slog.Logger {
	level := slog.LevelWarn
	if cmd.Bool(flagVerbose) {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.Root().ErrWriter, &slog.HandlerOptions{Level: level}))
}

func openStore(cmd *cli.Command, logger *slog.Logger) (*dictionary.Store, error) {
	dsn := cmd.String(flagDB)
	if dsn == "" {
		return nil, fmt.Errorf("flag --db is required")
	}
	return dictionary.OpenStore(cmd.String(flagDBDriver), dsn,
		dictionary.WithStoreLogger(logger),
		dictionary.WithStorePhaseTimings())
}

// loadRegistry fills a registry from the store, then from the model file.
func loadRegistry(ctx context.Context, cmd *cli.Command, logger *slog.Logger) (*cmisql.Registry, error) {
	reg := cmisql.NewRegistry()
	if cmd.String(flagDB) != "" {
		store, err := openStore(cmd, logger)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		if err := store.Load(ctx, reg); err != nil {
			return nil, err
		}
	}
	if path := cmd.String(flagModel); path != "" {
		model, err := dictionary.LoadModelFile(path)
		if err != nil {
			return nil, err
		}
		if err := model.Apply(reg); err != nil {
			return nil, fmt.Errorf("apply model %s: %w", path, err)
		}
	}
	return reg, nil
}

// setup builds a compiler from the global flags. The returned context
// carries a timing header when --timings is set.
func setup(ctx context.Context, cmd *cli.Command) (context.Context, *cmisql.Compiler, error) {
	mode, err := parseMode(cmd.String(flagMode))
	if err != nil {
		return ctx, nil, err
	}
	logger := newLogger(cmd)

	obsOpts := []observability.Option{observability.WithLogger(logger)}
	if cmd.Bool(flagTimings) {
		ctx, _ = observability.ContextWithPhaseTimings(ctx)
		obsOpts = append(obsOpts, observability.WithPhaseTimings())
	}

	reg, err := loadRegistry(ctx, cmd, logger)
	if err != nil {
		return ctx, nil, err
	}
	c, err := cmisql.NewCompiler(&cmisql.Config{
		Mode:             mode,
		DefaultNamespace: cmd.String(flagDefaultNamespace),
		Registry:         reg,
		Observability:    observability.NewConfig(obsOpts...),
		Logger:           logger,
	})
	if err != nil {
		return ctx, nil, err
	}
	return ctx, c, nil
}

func printTimings(ctx context.Context, cmd *cli.Command) {
	header := observability.PhaseTimings(ctx)
	if header == nil {
		return
	}
	fmt.Fprintf(cmd.Root().ErrWriter, "%s: %s\n", servertiming.HeaderKey, header.String())
}

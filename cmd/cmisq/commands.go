package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/nlstn/go-cmisql/internal/dictionary"
	"github.com/nlstn/go-cmisql/internal/syntax"
)

func singleArg(cmd *cli.Command, what string) (string, error) {
	if cmd.Args().Len() != 1 {
		return "", fmt.Errorf("expected 1 argument: %s", what)
	}
	return cmd.Args().First(), nil
}

// inputArg returns the query or expression argument. Without an argument,
// or with "-", the input is read from the root command's reader. The cli
// parser stops at an empty argument, so `cmisq fts ""` arrives here with no
// arguments and reads an empty stdin.
func inputArg(cmd *cli.Command, what string) (string, error) {
	switch cmd.Args().Len() {
	case 0:
	case 1:
		if arg := cmd.Args().First(); arg != "-" {
			return arg, nil
		}
	default:
		return "", fmt.Errorf("expected 1 argument: %s", what)
	}

	r := cmd.Root().Reader
	if r == nil {
		r = os.Stdin
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", what, err)
	}
	return strings.TrimRight(string(b), "\r\n"), nil
}

func newTokensCommand() *cli.Command {
	return &cli.Command{
		Name:      "tokens",
		Usage:     "Print the visible tokens of a query",
		ArgsUsage: "[<query> | -]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "fts", Usage: "tokenize as a full text expression"},
		},
		Action: tokensAction,
	}
}

func tokensAction(ctx context.Context, cmd *cli.Command) error {
	input, err := inputArg(cmd, "query")
	if err != nil {
		return err
	}
	ctx, c, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer printTimings(ctx, cmd)

	var rows []tokenRow
	if cmd.Bool("fts") {
		tokens, err := c.TokenizeFTS(ctx, input)
		if err != nil {
			return err
		}
		for _, tok := range tokens {
			if tok.Channel == syntax.ChannelDefault {
				rows = append(rows, tokenRow{Pos: tok.Pos, Type: tok.Type.String(), Text: tok.Text})
			}
		}
	} else {
		tokens, err := c.Tokenize(ctx, input)
		if err != nil {
			return err
		}
		for _, tok := range tokens {
			if tok.Channel == syntax.ChannelDefault {
				rows = append(rows, tokenRow{Pos: tok.Pos, Type: tok.Type.String(), Text: tok.Text})
			}
		}
	}
	return printTokens(cmd.Root().Writer, rows)
}

func newParseCommand() *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "Parse and validate a query and print it in normalised form",
		ArgsUsage: "[<query> | -]",
		Action:    parseAction,
	}
}

func parseAction(ctx context.Context, cmd *cli.Command) error {
	input, err := inputArg(cmd, "query")
	if err != nil {
		return err
	}
	ctx, c, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer printTimings(ctx, cmd)

	q, err := c.ParseQuery(ctx, input)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.Root().Writer, q.String())
	return err
}

func newFTSCommand() *cli.Command {
	return &cli.Command{
		Name:      "fts",
		Usage:     "Parse a full text expression",
		ArgsUsage: "[<expression> | -]",
		Action:    ftsAction,
	}
}

func ftsAction(ctx context.Context, cmd *cli.Command) error {
	input, err := inputArg(cmd, "expression")
	if err != nil {
		return err
	}
	ctx, c, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer printTimings(ctx, cmd)

	expr, err := c.ParseFTS(ctx, input)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.Root().Writer, expr.String())
	return err
}

func newResolveCommand() *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Usage:     "Resolve property names to index fields",
		ArgsUsage: "<property>...",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "sort", Usage: "resolve the index sort field instead"},
		},
		Action: resolveAction,
	}
}

func resolveAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() == 0 {
		return fmt.Errorf("expected at least 1 argument: property")
	}
	ctx, c, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer printTimings(ctx, cmd)

	ec := c.NewEvaluationContext()
	adaptor := c.NewIndexAdaptor()
	rows := make([]resolvedRow, 0, cmd.Args().Len())
	for _, name := range cmd.Args().Slice() {
		var field string
		if cmd.Bool("sort") {
			field, err = ec.ResolveSortField(name, adaptor)
		} else {
			field, err = ec.ResolveFieldName(name)
		}
		if err != nil {
			return err
		}
		rows = append(rows, resolvedRow{Property: name, Field: field})
	}
	return printResolved(cmd.Root().Writer, rows)
}

func newCompileCommand() *cli.Command {
	return &cli.Command{
		Name:      "compile",
		Usage:     "Resolve every property of a query and print the plan",
		ArgsUsage: "[<query> | -]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "search", Usage: "print the Elasticsearch search body instead"},
		},
		Action: compileAction,
	}
}

func compileAction(ctx context.Context, cmd *cli.Command) error {
	input, err := inputArg(cmd, "query")
	if err != nil {
		return err
	}
	ctx, c, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer printTimings(ctx, cmd)

	adaptor := c.NewIndexAdaptor()
	plan, err := c.Compile(ctx, input, adaptor)
	if err != nil {
		return err
	}

	var data []byte
	if cmd.Bool("search") {
		src, err := c.SearchSource(ctx, plan, adaptor)
		if err != nil {
			return err
		}
		body, err := src.Source()
		if err != nil {
			return err
		}
		data, err = json.MarshalIndent(body, "", "  ")
		if err != nil {
			return err
		}
	} else {
		data, err = json.MarshalIndent(newPlanSummary(plan), "", "  ")
		if err != nil {
			return err
		}
	}
	_, err = fmt.Fprintln(cmd.Root().Writer, string(data))
	return err
}

func newModelCommand() *cli.Command {
	return &cli.Command{
		Name:  "model",
		Usage: "Work with dictionary models",
		Commands: []*cli.Command{
			{
				Name:   "export",
				Usage:  "Print the loaded dictionary as a YAML model",
				Action: exportModelAction,
			},
			{
				Name:      "import",
				Usage:     "Store a YAML model in the dictionary store",
				ArgsUsage: "<model.yaml>",
				Action:    importModelAction,
			},
		},
	}
}

func exportModelAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 0 {
		return fmt.Errorf("no arguments expected")
	}
	logger := newLogger(cmd)
	reg, err := loadRegistry(ctx, cmd, logger)
	if err != nil {
		return err
	}
	return dictionary.WriteModel(cmd.Root().Writer, dictionary.ModelFromRegistry(reg))
}

func importModelAction(ctx context.Context, cmd *cli.Command) error {
	path, err := singleArg(cmd, "model file")
	if err != nil {
		return err
	}
	logger := newLogger(cmd)
	model, err := dictionary.LoadModelFile(path)
	if err != nil {
		return err
	}
	store, err := openStore(cmd, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	reg := dictionary.NewRegistry()
	if err := store.Load(ctx, reg); err != nil {
		return err
	}
	if err := model.Apply(reg); err != nil {
		return fmt.Errorf("apply model %s: %w", path, err)
	}
	if err := store.Save(ctx, reg); err != nil {
		return err
	}
	logger.Info("model imported", "path", path, "properties", len(model.Properties))
	return nil
}

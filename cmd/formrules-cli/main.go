package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/goliatone/go-formrules/pkg/engine"
	"github.com/goliatone/go-formrules/pkg/openapi"
	"github.com/goliatone/go-formrules/pkg/schema"
)

func main() {
	app := &cli.Command{
		Name:  "formrules",
		Usage: "Validate value snapshots against declarative form schemas",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error)",
				Sources: cli.EnvVars("FORMRULES_LOG_LEVEL"),
				Value:   "warn",
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			level, err := zerolog.ParseLevel(c.String("log-level"))
			if err != nil {
				return ctx, fmt.Errorf("parse log level: %w", err)
			}
			log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				Level(level).
				With().Timestamp().Logger()
			return ctx, nil
		},
		Commands: []*cli.Command{
			validateCmd(),
			lintCmd(),
			openapiCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func validateCmd() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Run a validation pass and print the error store as JSON",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "schema", Usage: "form schema document (JSON or YAML)", Required: true},
			&cli.StringFlag{Name: "values", Usage: "value snapshot document (JSON)", Required: true},
			&cli.IntFlag{Name: "section", Usage: "restrict to one section index", Value: -1},
			&cli.IntFlag{Name: "row", Usage: "restrict to one row of a repeatable section", Value: -1},
			&cli.StringSliceFlag{Name: "field", Usage: "restrict to named fields (repeatable)"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			form, err := loadSchema(c.String("schema"))
			if err != nil {
				return err
			}
			values, err := loadValues(c.String("values"))
			if err != nil {
				return err
			}

			eng, err := engine.New(form)
			if err != nil {
				return err
			}
			session := eng.NewSession(values)

			scope := engine.All()
			switch {
			case len(c.StringSlice("field")) > 0:
				scope = engine.FieldsScope(c.StringSlice("field")...)
			case c.Int("section") >= 0 && c.Int("row") >= 0:
				scope = engine.RowScope(int(c.Int("section")), int(c.Int("row")))
			case c.Int("section") >= 0:
				scope = engine.SectionScope(int(c.Int("section")))
			}

			valid, err := session.Validate(scope)
			if err != nil {
				return err
			}

			if err := printErrors(session.Errors()); err != nil {
				return err
			}
			log.Info().Bool("valid", valid).Str("state", string(session.FormState())).Msg("validation complete")
			if !valid {
				return errors.New("validation failed")
			}
			return nil
		},
	}
}

func lintCmd() *cli.Command {
	return &cli.Command{
		Name:  "lint",
		Usage: "Parse a schema document and report structural defects",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "schema", Usage: "form schema document (JSON or YAML)", Required: true},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			form, err := loadSchema(c.String("schema"))
			if err != nil {
				return err
			}
			log.Info().Int("sections", len(form.Sections)).Msg("schema is well formed")
			return nil
		},
	}
}

func openapiCmd() *cli.Command {
	return &cli.Command{
		Name:  "openapi",
		Usage: "Derive a form schema from an OpenAPI component and print it as JSON",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "document", Usage: "OpenAPI document path", Required: true},
			&cli.StringFlag{Name: "component", Usage: "component schema name", Required: true},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			data, err := os.ReadFile(c.String("document"))
			if err != nil {
				return fmt.Errorf("read document: %w", err)
			}
			form, err := openapi.NewBuilder().BuildForm(ctx, data, c.String("component"))
			if err != nil {
				return err
			}
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(form)
		},
	}
}

func loadSchema(path string) (*schema.Form, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return schema.ParseDocument(data)
}

func loadValues(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read values: %w", err)
	}
	var values map[string]any
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse values: %w", err)
	}
	return values, nil
}

// printErrors emits a JSON object mirroring the error store: flat keys map to
// message lists, array names to per-row field/message maps.
func printErrors(store *engine.ErrorStore) error {
	out := make(map[string]any)
	for _, key := range store.Keys() {
		bucket, _ := store.Bucket(key)
		switch bucket.Kind {
		case engine.BucketFlat:
			out[key] = bucket.Flat
		case engine.BucketRows:
			out[key] = bucket.Rows
		}
	}
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

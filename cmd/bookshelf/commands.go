package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/bookshelf-gql/bookshelf/internal/config"
	"github.com/bookshelf-gql/bookshelf/internal/datasource"
	"github.com/bookshelf-gql/bookshelf/internal/log"
	"github.com/bookshelf-gql/bookshelf/internal/schema"
	"github.com/bookshelf-gql/bookshelf/server"
)

const shutdownTimeout = 10 * time.Second

type rootOptions struct {
	configFile string
	dotEnvFile string
	verbosity  int

	addr             string
	port             string
	ignoreDateFilter bool
}

// loadConfig layers the command line flags on top of config.Load.
func (opts *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(opts.configFile, opts.dotEnvFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Addr = ":" + opts.port
	}
	if flags.Changed("addr") {
		cfg.Addr = opts.addr
	}
	if flags.Changed("ignore-date-filter") {
		cfg.IgnoreDateFilter = opts.ignoreDateFilter
	}
	if flags.Changed("verbosity") {
		cfg.LogVerbosity = opts.verbosity
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "bookshelf",
		Short:         "GraphQL server for a small book catalog with a Date scalar",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	pflags := cmd.PersistentFlags()
	pflags.StringVar(&opts.configFile, "config", "", "YAML config file")
	pflags.StringVar(&opts.dotEnvFile, "env-file", ".env", "dotenv file, ignored when missing")
	pflags.IntVarP(&opts.verbosity, "verbosity", "v", 0, "log verbosity")
	pflags.BoolVar(&opts.ignoreDateFilter, "ignore-date-filter", false, "make bookByDate return every book")

	addServeFlags(cmd, opts)

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newQueryCmd(opts))
	cmd.AddCommand(newSchemaCmd())

	return cmd
}

func addServeFlags(cmd *cobra.Command, opts *rootOptions) {
	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address, overrides --port")
	cmd.Flags().StringVarP(&opts.port, "port", "p", "", "listen port")
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
	addServeFlags(cmd, opts)

	return cmd
}

func runServe(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := opts.loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := log.New(cfg.LogVerbosity)
	ctx := log.WithLogger(cmd.Context(), logger)

	es, err := server.NewExecutableSchema(ctx, &server.ExecutableSchemaConfig{
		IgnoreDateFilter: cfg.IgnoreDateFilter,
	})
	if err != nil {
		logger.Error(err, "failed to execute NewExecutableSchema")
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.NewHandler(ctx, es, cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening server", "addr", cfg.Addr)
		logger.Info(fmt.Sprintf("Go to %s to run queries!", cfg.URL(cfg.PlaygroundPath)))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

type queryOptions struct {
	endpoint      string
	variables     string
	operationName string
	output        string
}

func newQueryCmd(rootOpts *rootOptions) *cobra.Command {
	opts := &queryOptions{}

	cmd := &cobra.Command{
		Use:   "query <graphql>",
		Short: "Execute one query in process and print the response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, rootOpts, opts, args[0])
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.endpoint, "endpoint", "", "send the query to a running server instead, e.g. http://localhost:3000/graphql")
	flags.StringVar(&opts.variables, "variables", "", "variables as a JSON object")
	flags.StringVar(&opts.operationName, "operation-name", "", "operation to run when the document has several")
	flags.StringVarP(&opts.output, "output", "o", "json", "output format, json or yaml")

	return cmd
}

func runQuery(cmd *cobra.Command, rootOpts *rootOptions, opts *queryOptions, query string) error {
	if opts.output != "json" && opts.output != "yaml" {
		return fmt.Errorf("unknown output format %q", opts.output)
	}

	cfg, err := rootOpts.loadConfig(cmd)
	if err != nil {
		return err
	}

	var variables map[string]interface{}
	if opts.variables != "" {
		dec := json.NewDecoder(bytes.NewReader([]byte(opts.variables)))
		dec.UseNumber()
		if err := dec.Decode(&variables); err != nil {
			return fmt.Errorf("parse --variables: %w", err)
		}
	}

	ctx := log.WithLogger(cmd.Context(), log.New(cfg.LogVerbosity))

	var ds datasource.DataSource
	if opts.endpoint != "" {
		ds = &datasource.RemoteDataSource{URL: opts.endpoint}
	} else {
		es, err := server.NewExecutableSchema(ctx, &server.ExecutableSchemaConfig{
			IgnoreDateFilter: cfg.IgnoreDateFilter,
		})
		if err != nil {
			return err
		}
		ds = &datasource.LocalDataSource{ExecutableSchema: es}
	}

	resp := ds.Process(ctx, &datasource.Request{
		Query:         query,
		OperationName: opts.operationName,
		Variables:     variables,
	})

	b, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return err
	}
	if opts.output == "yaml" {
		b, err = yaml.JSONToYAML(b)
		if err != nil {
			return err
		}
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(bytes.TrimRight(b, "\n")))
	return err
}

func newSchemaCmd() *cobra.Command {
	var sorted bool

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the schema as SDL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := schema.Load()
			if err != nil {
				return err
			}
			if sorted {
				s = schema.SortLexicographically(s)
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), schema.Format(s))
			return err
		},
	}
	cmd.Flags().BoolVar(&sorted, "sort", false, "order fields and arguments by name")

	return cmd
}

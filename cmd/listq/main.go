// Command listq lists archived events, parameters and mission database
// objects from JSON lines dumps or the events table.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/theplant/listing"
	"github.com/theplant/listing/archive"
	"github.com/theplant/listing/filter"
)

const envPrefix = "LISTQ"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type pageFlags struct {
	configFile string
	file       string
	query      string
	first      int
	after      string
	pos        int
	strict     bool
}

func (f *pageFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.configFile, "config", "", "config file, overridden by LISTQ_* environment variables")
	flags.StringVar(&f.file, "file", "", "JSON lines dump to list")
	flags.StringVarP(&f.query, "query", "q", "", "filter query, e.g. 'severity:WARNING battery'")
	flags.IntVar(&f.first, "first", -1, "page size, the configured default when negative")
	flags.StringVar(&f.after, "after", "", "cursor of the last item of the previous page")
	flags.IntVar(&f.pos, "pos", 0, "number of items to skip when no cursor is given")
	flags.BoolVar(&f.strict, "strict", false, "apply strict query complexity limits")
}

func (f *pageFlags) page() archive.Page {
	var page archive.Page
	if f.first >= 0 {
		page.First = &f.first
	}
	if f.after != "" {
		page.After = &f.after
	}
	if f.pos > 0 {
		page.Pos = &f.pos
	}
	return page
}

func (f *pageFlags) service(stderr io.Writer, opts ...archive.Option) (*archive.Service, error) {
	cfg, err := listing.LoadConfig(envPrefix, f.configFile)
	if err != nil {
		return nil, err
	}
	logger := listing.NewLogger(stderr, cfg.LogFormat, cfg.LogLevel)
	opts = append(opts, archive.WithLogger(logger))
	if f.strict {
		opts = append(opts, archive.WithLimits(filter.StrictLimits))
	}
	return archive.NewService(cfg, opts...)
}

func readLines[T any](path string) ([]T, error) {
	if path == "" {
		return nil, errors.New("--file is required")
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer file.Close()

	var items []T
	dec := json.NewDecoder(file)
	for dec.More() {
		var item T
		if err := dec.Decode(&item); err != nil {
			return nil, errors.Wrapf(err, "failed to decode item %d of %s", len(items)+1, path)
		}
		items = append(items, item)
	}
	return items, nil
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode result")
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func newEventsCmd() *cobra.Command {
	var (
		flags       pageFlags
		dsn         string
		order       string
		start, stop int64
		severity    string
		sources     []string
		legacyType  bool
	)
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List events in generation time order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var store archive.EventStore
			switch {
			case dsn != "":
				db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
				if err != nil {
					return errors.Wrap(err, "failed to connect to the archive")
				}
				store = archive.NewGormEventStore(db)
			default:
				events, err := readLines[archive.Event](flags.file)
				if err != nil {
					return err
				}
				store = archive.NewMemoryEventStore(events)
			}

			s, err := flags.service(cmd.ErrOrStderr(),
				archive.WithEventStore(store),
				archive.WithLegacyTypeSearch(legacyType),
			)
			if err != nil {
				return err
			}
			req := &archive.ListEventsRequest{
				Page:     flags.page(),
				Query:    flags.query,
				Order:    order,
				Severity: severity,
				Sources:  sources,
			}
			if cmd.Flags().Changed("start") {
				req.Start = &start
			}
			if cmd.Flags().Changed("stop") {
				req.Stop = &stop
			}
			conn, err := s.ListEvents(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), conn)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&dsn, "dsn", "", "postgres DSN of the archive, used instead of --file")
	cmd.Flags().StringVar(&order, "order", "desc", "asc or desc")
	cmd.Flags().Int64Var(&start, "start", 0, "inclusive start, in milliseconds")
	cmd.Flags().Int64Var(&stop, "stop", 0, "exclusive stop, in milliseconds")
	cmd.Flags().StringVar(&severity, "severity", "INFO", "minimum severity")
	cmd.Flags().StringSliceVar(&sources, "source", nil, "only events from these sources")
	cmd.Flags().BoolVar(&legacyType, "legacy-type-search", false, "leave the event type out of free-text search")
	return cmd
}

func newParametersCmd() *cobra.Command {
	var flags pageFlags
	cmd := &cobra.Command{
		Use:   "parameters",
		Short: "List archived parameters by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			parameters, err := readLines[archive.ParameterInfo](flags.file)
			if err != nil {
				return err
			}
			s, err := flags.service(cmd.ErrOrStderr(), archive.WithParameters(parameters))
			if err != nil {
				return err
			}
			conn, err := s.ListParameters(cmd.Context(), &archive.ListRequest{Page: flags.page(), Query: flags.query})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), conn)
		},
	}
	flags.register(cmd)
	return cmd
}

func newObjectsCmd() *cobra.Command {
	var flags pageFlags
	cmd := &cobra.Command{
		Use:   "objects",
		Short: "List mission database objects, containers first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			objects, err := readLines[archive.NamedObject](flags.file)
			if err != nil {
				return err
			}
			s, err := flags.service(cmd.ErrOrStderr(), archive.WithObjects(objects))
			if err != nil {
				return err
			}
			conn, err := s.ListObjects(cmd.Context(), &archive.ListRequest{Page: flags.page(), Query: flags.query})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), conn)
		},
	}
	flags.register(cmd)
	return cmd
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "listq",
		Short:         "Filter and page through archive listings",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newEventsCmd(), newParametersCmd(), newObjectsCmd())
	return root
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		slog.Error("listq failed", "error", err)
		os.Exit(1)
	}
}

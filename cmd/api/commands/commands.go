package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskmaster/board/internal/adapters/repository"
	"github.com/taskmaster/board/internal/application/services"
	"github.com/taskmaster/board/internal/domain/entities"
	"github.com/taskmaster/board/internal/infrastructure/config"
	"github.com/taskmaster/board/internal/infrastructure/database"
	"github.com/taskmaster/board/internal/infrastructure/logger"
	"github.com/taskmaster/board/internal/infrastructure/server"
	"github.com/taskmaster/board/internal/ports"
)

// Version is overridden at build time with -ldflags
var Version = "dev"

// runtime bundles what every command needs once configuration is loaded
type runtime struct {
	cfg     *config.Config
	logger  *logger.Logger
	backend ports.DocumentBackend
	store   *services.RecordStore
}

func bootstrap(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	backend, err := repository.NewDocumentBackend(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Close()
		return nil, fmt.Errorf("failed to open document backend: %w", err)
	}

	return &runtime{
		cfg:     cfg,
		logger:  appLogger,
		backend: backend,
		store:   services.NewRecordStore(backend, appLogger),
	}, nil
}

func (rt *runtime) close() {
	if err := rt.backend.Close(); err != nil {
		rt.logger.Warnw("Closing backend failed", "error", err)
	}
	rt.logger.Close()
}

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the ProjectBoard API server",
		Long:  "Start the HTTP API serving CRUD endpoints for every configured collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rt, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer rt.close()

			srv := server.New(rt.cfg, rt.store, rt.backend, rt.logger)

			errCh := make(chan error, 1)
			go func() {
				rt.logger.Infow("Starting ProjectBoard API server",
					"address", rt.cfg.Server.GetAddr(),
					"environment", rt.cfg.App.Environment,
					"backend", rt.backend.Name(),
					"collections", rt.cfg.Store.Collections,
				)
				errCh <- srv.Start()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				rt.logger.Warnw("Server forced to shutdown", "error", err)
				return err
			}
			rt.logger.Info("Server shutdown completed")
			return nil
		},
	}
}

// NewMigrateCommand creates the migrate command with subcommands
func NewMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
		Long:  "Manage the documents table used by the postgres backend (up, down, version)",
	}

	for _, direction := range []string{"up", "down"} {
		direction := direction
		migrateCmd.AddCommand(&cobra.Command{
			Use:   direction,
			Short: fmt.Sprintf("Run all %s migrations", direction),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDatabase(func(db *database.DB) error {
					applied, err := db.Migrate(direction)
					if err != nil {
						return err
					}
					if !applied {
						fmt.Fprintln(cmd.OutOrStdout(), "No migrations to run")
						return nil
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Migration %s completed successfully\n", direction)
					return nil
				})
			},
		})
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print current migration version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(func(db *database.DB) error {
				version, dirty, err := db.MigrationVersion()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Current migration version: %d\n", version)
				fmt.Fprintf(cmd.OutOrStdout(), "Dirty: %t\n", dirty)
				return nil
			})
		},
	})

	return migrateCmd
}

func withDatabase(fn func(db *database.DB) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	return fn(db)
}

// NewDBCommand creates the document maintenance commands
func NewDBCommand() *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Document maintenance commands",
		Long:  "Initialize, seed or dump the stored board document",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write an empty document",
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			return writeDocument(cmd, entities.NewDocument(), force)
		},
	}
	initCmd.Flags().Bool("force", false, "Overwrite a document that already holds records")

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Write a demo document with users, a project and tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			doc, err := services.DemoDocument(time.Now().UTC())
			if err != nil {
				return err
			}
			return writeDocument(cmd, doc, force)
		},
	}
	seedCmd.Flags().Bool("force", false, "Overwrite a document that already holds records")

	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the stored document as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close()

			raw, err := rt.store.Export(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(raw))
			return nil
		},
	}

	dbCmd.AddCommand(initCmd, seedCmd, dumpCmd)
	return dbCmd
}

func writeDocument(cmd *cobra.Command, doc entities.Document, force bool) error {
	rt, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.close()

	if rt.cfg.Store.ReadOnly {
		return errReadOnly
	}

	current, err := rt.store.Snapshot(cmd.Context())
	if err != nil {
		return err
	}
	if !force && countRecords(current) > 0 {
		return fmt.Errorf("document already holds %d records, use --force to overwrite", countRecords(current))
	}

	if err := rt.store.Reset(cmd.Context(), doc); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Document written to %s backend (%d records)\n", rt.backend.Name(), countRecords(doc))
	return nil
}

var errReadOnly = errors.New("store is read-only: the document would only be written to memory and lost on exit")

func countRecords(doc entities.Document) int {
	n := 0
	for _, records := range doc {
		n += len(records)
	}
	return n
}

// NewRecordsCommand creates commands operating on single collections
func NewRecordsCommand() *cobra.Command {
	recordsCmd := &cobra.Command{
		Use:   "records",
		Short: "Inspect and edit collection records",
	}

	listCmd := &cobra.Command{
		Use:   "list <collection>",
		Short: "List records of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filters, _ := cmd.Flags().GetStringToString("filter")
			return withStore(cmd, func(store ports.RecordStore) error {
				records, err := store.List(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), services.FilterRecords(records, ports.RecordFilter(filters)))
			})
		},
	}
	listCmd.Flags().StringToString("filter", nil, "Field filters, e.g. --filter status=pendiente")

	getCmd := &cobra.Command{
		Use:   "get <collection> <id>",
		Short: "Print one record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(store ports.RecordStore) error {
				record, err := store.GetByID(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), record)
			})
		},
	}

	patchCmd := &cobra.Command{
		Use:   "patch <collection> <id> <json>",
		Short: "Merge JSON fields into a record",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := entities.DecodeRecord([]byte(args[2]))
			if err != nil {
				return err
			}
			return withStore(cmd, func(store ports.RecordStore) error {
				updated, err := store.Patch(cmd.Context(), args[0], args[1], fields)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), updated)
			})
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <collection> <id>",
		Short: "Delete a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(store ports.RecordStore) error {
				existed, err := store.Remove(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				if !existed {
					return fmt.Errorf("%w: %s/%s", entities.ErrRecordNotFound, args[0], args[1])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s/%s\n", args[0], args[1])
				return nil
			})
		},
	}

	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Print record counts and status histograms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(store ports.RecordStore) error {
				summary, err := store.Summary(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), summary)
			})
		},
	}

	collectionsCmd := &cobra.Command{
		Use:   "collections",
		Short: "List collection names with record counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(store ports.RecordStore) error {
				names, err := store.Collections(cmd.Context())
				if err != nil {
					return err
				}
				for _, name := range names {
					records, err := store.List(cmd.Context(), name)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%-16s %d\n", name, len(records))
				}
				return nil
			})
		},
	}

	recordsCmd.AddCommand(listCmd, getCmd, patchCmd, deleteCmd, summaryCmd, collectionsCmd)
	return recordsCmd
}

func withStore(cmd *cobra.Command, fn func(store ports.RecordStore) error) error {
	rt, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.close()

	return fn(rt.store)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print ProjectBoard version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ProjectBoard %s\n", strings.TrimSpace(Version))
		},
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"baselinedev/baseline"
	"baselinedev/config"
	"baselinedev/httpclient"
	"baselinedev/model"
	"baselinedev/prompt"
	"baselinedev/provider"
	"baselinedev/storage"
)

const (
	Version = "v0.01.00"
	License = "Apache-2.0"
)

const usage = `baselinedev - Baseline web-feature data and AI modernization assistant

Usage:
  baselinedev <command> [flags] [args]

Feature data:
  search <query>              Search features by id, name or description
  lookup <feature-id>         Show one feature
  check <text>                Search, then show the best match in detail
  recent [-since D] [-months N] [-threshold high|low]
                              Features that became Baseline recently
  baseline [-threshold high|low]
                              Features at or above the threshold
  groups                      List feature groups
  group <name>                Features in a group
  refresh                     Re-fetch feature data from the network
  status                      Data source, backend and connectivity

AI:
  chat [-new] [-file F] <message>
                              Continue (or start) a conversation
  discover [dir]              Suggest recent features for a project
  refactor <file>             Suggest modernizations for a file
  test                        Test the configured AI backend
  models                      List models installed in Ollama
  conversations               List saved conversations

Settings:
  set <field> <value>         Update a config field
  set-key [-skip-validation] <backend> <api-key>
                              Validate and store an API key

Environment:
  BASELINEDEV_DEBUG=1         Write a debug log to <data dir>/debug.log
`

type app struct {
	cfg           *config.Config
	router        *provider.Router
	resolver      *baseline.Resolver
	prompts       *prompt.Builder
	conversations *storage.ConversationStorage
	snapshots     *storage.SnapshotStorage
	out           io.Writer
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		fmt.Print(usage)
		return 0
	}
	if args[0] == "version" || args[0] == "--version" {
		fmt.Printf("baselinedev %s (%s)\n", Version, License)
		return 0
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	// Initialize debug logging after config is loaded
	config.InitDebugLog(cfg.DataDir())

	a, err := newApp(cfg, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		return 1
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.dispatch(ctx, args[0], args[1:]); err != nil {
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(os.Stderr, "%v\n\n%s", err, usage)
			return 2
		}
		fmt.Fprintf(os.Stderr, "Error: %s\n", describeError(err))
		return 1
	}
	return 0
}

func newApp(cfg *config.Config, out io.Writer) (*app, error) {
	conversations, err := storage.NewConversationStorage(cfg.DataDir())
	if err != nil {
		return nil, err
	}

	// The snapshot cache is optional; the resolver still works without it.
	var store baseline.SnapshotStore
	snapshots, err := storage.NewSnapshotStorage(cfg.DataDir())
	if err != nil {
		config.Debugf("[Main] Snapshot cache disabled: %v", err)
	} else {
		store = snapshots
	}

	resolver := baseline.NewResolverFromConfig(cfg, httpclient.New(), store)

	return &app{
		cfg:           cfg,
		router:        provider.NewRouterFromConfig(cfg),
		resolver:      resolver,
		prompts:       prompt.NewBuilder(resolver),
		conversations: conversations,
		snapshots:     snapshots,
		out:           out,
	}, nil
}

func (a *app) close() {
	if a.snapshots != nil {
		if err := a.snapshots.Close(); err != nil {
			config.Debugf("[Main] Failed to close snapshot cache: %v", err)
		}
	}
}

func (a *app) dispatch(ctx context.Context, name string, args []string) error {
	switch name {
	case "search":
		return a.cmdSearch(ctx, args)
	case "lookup":
		return a.cmdLookup(ctx, args)
	case "check":
		return a.cmdCheck(ctx, args)
	case "recent":
		return a.cmdRecent(ctx, args)
	case "baseline":
		return a.cmdBaseline(ctx, args)
	case "groups":
		return a.cmdGroups(ctx, args)
	case "group":
		return a.cmdGroup(ctx, args)
	case "refresh":
		return a.cmdRefresh(ctx, args)
	case "status":
		return a.cmdStatus(ctx, args)
	case "chat":
		return a.cmdChat(ctx, args)
	case "discover":
		return a.cmdDiscover(ctx, args)
	case "refactor":
		return a.cmdRefactor(ctx, args)
	case "test":
		return a.cmdTest(ctx, args)
	case "models":
		return a.cmdModels(ctx, args)
	case "conversations":
		return a.cmdConversations(ctx, args)
	case "set":
		return a.cmdSet(ctx, args)
	case "set-key":
		return a.cmdSetKey(ctx, args)
	default:
		return usageErrorf("unknown command %q", name)
	}
}

type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usageErrorf(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// newFlagSet returns a flag set that reports parse errors as usage errors.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return usageErrorf("%s: %v", fs.Name(), err)
	}
	return nil
}

// describeError prefers the user-facing message of a normalized error.
func describeError(err error) string {
	var e *model.Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}

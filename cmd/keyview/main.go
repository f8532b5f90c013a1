// ABOUTME: CLI entry point for keyview with terminal crash recovery
// ABOUTME: Parses flags, loads config and profiles, then shows decoded keys interactively or as JSON

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
	"time"

	// termfix must be imported before any package that imports bubbletea.
	// It sets lipgloss.SetHasDarkBackground(true) in its init(), so no
	// OSC 10/11 reply lands in the input the decoder is showing.
	_ "github.com/mauromedda/keyview/internal/termfix"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/mauromedda/keyview/internal/config"
	"github.com/mauromedda/keyview/internal/keybindings"
	"github.com/mauromedda/keyview/internal/log"
	"github.com/mauromedda/keyview/internal/viewer"
	"github.com/mauromedda/keyview/pkg/tui/input"
	"github.com/mauromedda/keyview/pkg/tui/key"
	"github.com/mauromedda/keyview/pkg/tui/terminal"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	args, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	if args.version {
		fmt.Printf("keyview %s (%s) built %s\n", version, commit, date)
		os.Exit(0)
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	term := terminal.NewProcessTerminal(os.Stdin, os.Stdout)
	env := runEnv{
		term: term,
		src:  input.NewFileSource(os.Stdin),
		out:  os.Stdout,
		cwd:  cwd,
		raw:  term.IsTerminal(),
	}

	err = run(ctx, args, env)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// runEnv is what run needs from the process, so tests can substitute a
// VirtualTerminal.
type runEnv struct {
	term terminal.Terminal
	// src defaults to a ReaderSource over term.Input().
	src input.Source
	out io.Writer
	cwd string
	// raw puts term into raw mode for the duration of the run.
	raw bool
}

// app holds the live decoder and what keeps it in sync with the config.
type app struct {
	args     cliArgs
	env      runEnv
	dec      *input.Decoder
	reg      *registry
	bindings *keybindings.Manager
	watcher  *config.Watcher
	onReload func(names []string)
}

func run(ctx context.Context, a cliArgs, env runEnv) error {
	s, err := loadSettings(a, env.cwd)
	if err != nil {
		return err
	}
	paths, err := profilePaths(s)
	if err != nil {
		return err
	}
	if a.listProfiles {
		return listProfiles(env, paths)
	}

	logFile, err := setupLogging(s, !a.json)
	if err != nil {
		return err
	}
	if logFile != nil {
		defer logFile.Close()
	}

	builtins, err := lookupBuiltins(s.Profiles)
	if err != nil {
		return err
	}
	files, err := loadProfileFiles(paths)
	if err != nil {
		return err
	}
	opts, err := decoderOptions(s)
	if err != nil {
		return err
	}
	bindings, err := keybindings.New(s.Keybindings)
	if err != nil {
		return err
	}
	for _, c := range bindings.Conflicts() {
		log.Warn("keybindings: %s is bound to %v; %s wins", c.Key, c.Actions, c.Actions[0])
	}

	src := env.src
	if src == nil {
		src = input.NewReaderSource(env.term.Input())
	}
	ap := &app{args: a, env: env, dec: input.NewDecoder(src, opts...), bindings: bindings}
	ap.reg = newRegistry(ap.dec)
	ap.reg.apply(builtins, files)
	ap.watcher = config.NewWatcher(watchPaths(a, env.cwd, paths), config.DefaultWatchInterval, ap.reload)
	log.Info("keyview %s: profiles %v", version, ap.reg.names())

	if env.raw {
		if err := env.term.EnterRawMode(); err != nil {
			return err
		}
		defer env.term.ExitRawMode()
	}
	defer terminal.RestoreOnPanic(env.term)

	if a.queryCursor {
		if err := terminal.RequestCursorPosition(env.term); err != nil {
			return err
		}
	}

	if a.json {
		return ap.streamJSON(ctx)
	}
	return ap.interactive(ctx)
}

// watchPaths is every file whose change should trigger a reload.
func watchPaths(a cliArgs, cwd string, profiles []string) []string {
	paths := configFiles(a, cwd)
	paths = append(paths, profiles...)
	return append(paths, config.ProfilesDir())
}

func (ap *app) reload() {
	paths, ok := ap.reg.reload(ap.args, ap.env.cwd)
	if !ok {
		return
	}
	ap.watcher.SetPaths(watchPaths(ap.args, ap.env.cwd, paths))
	if ap.onReload != nil {
		ap.onReload(ap.reg.names())
	}
}

// runWatcher runs the config watcher until ctx ends.
func (ap *app) runWatcher(ctx context.Context) error {
	if err := ap.watcher.Run(ctx); !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// streamJSON prints every decoded key until end of input, ctx
// cancellation, or a quit key while the terminal is raw. Outside raw mode
// the tty turns Ctrl+C and Ctrl+D into a signal and end of input itself.
func (ap *app) streamJSON(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	stream := newJSONStream(ap.env.out, ap.env.raw)
	g.Go(func() error {
		defer terminal.RecoverGoroutine(ap.env.term)
		defer cancel()

		err := input.NewDispatcher(ap.dec, func(k key.Key) {
			quit := ap.env.raw && ap.bindings.ActionFor(k) == keybindings.ActionQuit
			if stream.write(k) != nil || quit {
				cancel()
			}
		}).Run(gctx)
		if errors.Is(err, context.Canceled) {
			err = nil
		}
		if err == nil {
			err = stream.err
		}
		return err
	})
	g.Go(func() error { return ap.runWatcher(gctx) })
	return g.Wait()
}

// interactive runs the bubbletea viewer with the dispatcher feeding it.
// bubbletea gets no input of its own; every key reaches it through the decoder.
func (ap *app) interactive(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	var query viewer.QueryFunc
	if ap.env.raw {
		query = func() error { return terminal.RequestCursorPosition(ap.env.term) }
	}
	p := tea.NewProgram(
		viewer.New(ap.reg.names(), ap.bindings, query),
		tea.WithInput(nil),
		tea.WithOutput(ap.env.out),
		tea.WithAltScreen(),
		tea.WithContext(gctx),
		tea.WithoutSignalHandler(),
	)
	ap.onReload = func(names []string) { p.Send(viewer.ProfilesMsg{Names: names}) }

	g.Go(func() error {
		defer cancel()
		final, err := p.Run()
		if err != nil {
			if errors.Is(err, tea.ErrProgramKilled) && gctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("bubble tea: %w", err)
		}
		if m, ok := final.(viewer.Model); ok {
			return m.Err()
		}
		return nil
	})
	g.Go(func() error {
		defer terminal.RecoverGoroutine(ap.env.term)

		err := input.NewDispatcher(ap.dec, func(k key.Key) {
			p.Send(viewer.KeyMsg{Key: k, At: time.Now()})
		}).Run(gctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			p.Send(viewer.ErrMsg{Err: err})
		}
		return nil
	})
	g.Go(func() error { return ap.runWatcher(gctx) })
	return g.Wait()
}

// listProfiles prints the profile listing rendered for the terminal width.
func listProfiles(env runEnv, paths []string) error {
	builtins, files := listing(paths)
	w, _, err := env.term.Size()
	if err != nil {
		w = 0
	}
	out, err := viewer.RenderMarkdown(viewer.ListingMarkdown(builtins, files), w)
	if err != nil {
		log.Warn("list profiles: %v", err)
	}
	if _, err := io.WriteString(env.out, out); err != nil {
		return fmt.Errorf("writing profile list: %w", err)
	}
	return nil
}

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/aaronwald/rawdash/internal/dashboard"
	"github.com/aaronwald/rawdash/internal/render"
	"github.com/spf13/cobra"
)

const clearScreen = "\033[H\033[2J"

const watchHelp = `Commands:
  select <file>   select a file by name
  <n>             select the n-th file in the list
  refresh         reload the summary now
  clear           clear the selection
  quit            exit`

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live dashboard with polling and interactive file selection",
	Long: `Load the dashboard summary, keep it refreshed and re-render on every change.

Commands are read from stdin, one per line:
` + watchHelp,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

// Flags
var (
	watchInterval time.Duration
	watchFile     string
	watchNoClear  bool
)

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "Refresh interval, 0 disables polling (default: refresh_interval from config)")
	watchCmd.Flags().StringVar(&watchFile, "file", "", "File to select on startup")
	watchCmd.Flags().BoolVar(&watchNoClear, "no-clear", false, "Do not clear the screen between renders")
}

// WatchCommand returns the watch command for registration
func WatchCommand() *cobra.Command {
	return watchCmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	interval := cfg.RefreshInterval
	if cmd.Flags().Changed("interval") {
		interval = watchInterval
	}

	c, err := newAPIClient(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d := dashboard.New(c, dashboard.Options{RowLimit: cfg.RowLimit, Logger: newLogger(cmd.ErrOrStderr())})
	defer d.Close()

	out := cmd.OutOrStdout()
	var mu sync.Mutex
	loaded := make(chan struct{})
	var loadedOnce sync.Once
	unsubscribe := d.Subscribe(func(s dashboard.State) {
		mu.Lock()
		defer mu.Unlock()
		if !watchNoClear {
			fmt.Fprint(out, clearScreen)
		}
		render.Dashboard(out, s, time.Now())
		fmt.Fprint(out, "> ")
		if s.Summary != nil || s.Error != "" {
			loadedOnce.Do(func() { close(loaded) })
		}
	})
	defer unsubscribe()

	if watchFile != "" {
		d.Select(watchFile)
	}

	runCtx, cancelRun := context.WithCancel(ctx)
	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		d.Run(runCtx, interval)
	}()
	defer func() {
		cancelRun()
		<-runDone
	}()

	// commands refer to the file list, so wait for the first load to settle
	select {
	case <-ctx.Done():
		return nil
	case <-loaded:
	}

	lines := make(chan string)
	go readLines(cmd.InOrStdin(), lines)

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				// stdin closed; keep polling until interrupted
				lines = nil
				continue
			}
			if quit := handleWatchCommand(ctx, d, line, &mu, out); quit {
				return nil
			}
		}
	}
}

func readLines(r io.Reader, lines chan<- string) {
	defer close(lines)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines <- scanner.Text()
	}
}

// handleWatchCommand applies one input line and reports whether to exit
func handleWatchCommand(ctx context.Context, d *dashboard.Dashboard, line string, mu *sync.Mutex, out io.Writer) bool {
	line = strings.TrimSpace(line)
	verb, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	say := func(format string, a ...any) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(out, format+"\n", a...)
	}

	switch strings.ToLower(verb) {
	case "":
	case "q", "quit", "exit":
		return true
	case "r", "refresh":
		d.Refresh(ctx)
	case "clear":
		d.Select("")
	case "select", "s":
		if arg == "" {
			say("usage: select <file>")
			return false
		}
		if p := d.Snapshot().Summary; p != nil && p.FindFile(arg) == nil {
			say("no file %q (have: %s)", arg, strings.Join(p.FileNames(), ", "))
			return false
		}
		d.Select(arg)
	case "help", "?":
		say("%s", watchHelp)
	default:
		n, err := strconv.Atoi(verb)
		if err != nil {
			say("unknown command %q, type help", verb)
			return false
		}
		files := d.Snapshot().Files()
		if n < 1 || n > len(files) {
			say("no file #%d (have %d)", n, len(files))
			return false
		}
		d.Select(files[n-1].FileName)
	}
	return false
}

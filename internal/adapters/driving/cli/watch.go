package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/speakmath/internal/core/domain"
	"github.com/custodia-labs/speakmath/internal/logger"
)

const (
	// watchExt is the extension of files the watch command converts.
	watchExt = ".tex"

	// spokenExt replaces watchExt for files written with --write.
	spokenExt = ".spoken.txt"

	watchTick = 100 * time.Millisecond
)

var (
	watchLevel  string
	watchDomain string
	watchWrite  bool
	watchSettle time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Convert .tex files as they change",
	Long: `Watches a directory (default: current directory) and converts each .tex
file whenever it is created or saved. Rapid saves are coalesced.

With --write, the spoken text is also written next to the source as
<name>.spoken.txt.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchLevel, "level", "l", "basic", "audience level")
	watchCmd.Flags().StringVarP(&watchDomain, "domain", "d", "", "domain hint for every file")
	watchCmd.Flags().BoolVarP(&watchWrite, "write", "w", false, "write <name>.spoken.txt next to each file")
	watchCmd.Flags().DurationVar(&watchSettle, "settle", 300*time.Millisecond, "quiet period before converting a changed file")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if conversionService == nil {
		return errors.New("conversion service not configured")
	}

	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	opts, err := convertOptions(watchLevel, watchDomain)
	if err != nil {
		return err
	}

	w, err := newTexWatcher(dir, cmd.OutOrStdout(), opts)
	if err != nil {
		return err
	}
	defer w.Close()
	w.settle = watchSettle
	w.write = watchWrite

	cmd.Printf("Watching %s for %s changes (Ctrl+C to stop)\n", dir, watchExt)
	return w.Run(cmd.Context())
}

// texWatcher converts .tex files in one directory as they settle.
type texWatcher struct {
	fs      *fsnotify.Watcher
	out     io.Writer
	opts    domain.ConvertOptions
	write   bool
	settle  time.Duration
	pending map[string]time.Time
	now     func() time.Time
}

func newTexWatcher(dir string, out io.Writer, opts domain.ConvertOptions) (*texWatcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch %s: %w: not a directory", dir, domain.ErrInvalidInput)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	return &texWatcher{
		fs:      fw,
		out:     out,
		opts:    opts,
		settle:  300 * time.Millisecond,
		pending: make(map[string]time.Time),
		now:     time.Now,
	}, nil
}

// Close stops watching.
func (w *texWatcher) Close() error {
	return w.fs.Close()
}

// Run processes events until ctx is done or the watcher is closed.
func (w *texWatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(watchTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)

		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

// handleEvent queues a path for conversion. It reports whether the event
// was accepted.
func (w *texWatcher) handleEvent(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}

	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") || filepath.Ext(base) != watchExt {
		return false
	}
	if info, err := os.Stat(event.Name); err != nil || info.IsDir() {
		return false
	}

	logger.Debug("watch: %s %s", event.Op, event.Name)
	w.pending[event.Name] = w.now()
	return true
}

// flush converts every pending path that has been quiet for the settle period.
func (w *texWatcher) flush(ctx context.Context) {
	now := w.now()
	var ready []string
	for path, at := range w.pending {
		if now.Sub(at) >= w.settle {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	slices.Sort(ready)

	for _, path := range ready {
		if err := w.convertFile(ctx, path); err != nil {
			logger.Warn("watch: %v", err)
		}
	}
}

func (w *texWatcher) convertFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil
	}

	result, err := conversionService.Convert(ctx, text, w.opts)
	if err != nil {
		return fmt.Errorf("converting %s: %w", path, err)
	}

	fmt.Fprintf(w.out, "%s: %s\n", filepath.Base(path), result.Output)
	if result.Status != domain.StatusConverged {
		fmt.Fprintf(w.out, "  %s\n", statusLine(result))
	}

	if w.write {
		dst := strings.TrimSuffix(path, watchExt) + spokenExt
		if err := os.WriteFile(dst, []byte(result.Output+"\n"), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", dst, err)
		}
	}
	return nil
}

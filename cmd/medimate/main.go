// Command medimate is a terminal client for the MediMate inventory service.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/musharraf10/MediMate/internal/client"
	"github.com/musharraf10/MediMate/internal/errs"
	"github.com/musharraf10/MediMate/internal/view"
)

const (
	envAPI = "MEDIMATE_API"

	// defaultUserID is selected until the user picks another one.
	defaultUserID int64 = 1
)

type app struct {
	apiURL  string
	userID  int64
	timeout time.Duration
	verbose bool

	log *zap.Logger
	api *client.Client
	now func() time.Time
}

func newRootCmd() *cobra.Command {
	a := &app{log: zap.NewNop(), now: time.Now}

	root := &cobra.Command{
		Use:   "medimate",
		Short: "Track medicine stock and expiry dates",
		Long: `medimate keeps an eye on a household medicine cabinet.

It lists medicines per user, flags expired, soon-to-expire and low-stock
items, and exports the inventory as a spreadsheet.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) { _ = a.log.Sync() },
	}

	apiDefault := client.DefaultBaseURL
	if v := os.Getenv(envAPI); v != "" {
		apiDefault = v
	}
	pf := root.PersistentFlags()
	pf.StringVar(&a.apiURL, "api", apiDefault, "inventory API base URL (env "+envAPI+")")
	pf.Int64VarP(&a.userID, "user", "u", 0, "user id, overrides the saved selection")
	pf.DurationVar(&a.timeout, "timeout", 30*time.Second, "request timeout")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging to stderr")

	root.AddCommand(
		a.userCmd(),
		a.dashboardCmd(),
		a.medicinesCmd(),
		a.alertsCmd(),
		a.showCmd(),
		a.addCmd(),
		a.editCmd(),
		a.rmCmd(),
		a.exportCmd(),
	)
	return root
}

func (a *app) setup(*cobra.Command, []string) error {
	if a.verbose {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		l, err := cfg.Build()
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		a.log = l
	}
	c, err := client.New(a.apiURL,
		client.WithLogger(a.log),
		client.WithHTTPClient(&http.Client{Timeout: a.timeout}),
	)
	if err != nil {
		return err
	}
	a.api = c
	return nil
}

// user resolves the selected user: --user, then the saved selection, then
// the default user.
func (a *app) user(cmd *cobra.Command) (int64, error) {
	if cmd.Flags().Changed("user") {
		if a.userID <= 0 {
			return 0, fmt.Errorf("%w: user id must be positive", errs.ErrValidation)
		}
		return a.userID, nil
	}
	id, err := loadUserID()
	if errors.Is(err, fs.ErrNotExist) {
		return defaultUserID, nil
	}
	return id, err
}

func (a *app) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), a.timeout)
}

func main() {
	os.Exit(run())
}

func run() (code int) {
	defer func() {
		if r := recover(); r != nil {
			view.Notify(os.Stderr, view.Error, "Something went wrong. Please try again.")
			code = 1
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		view.Notify(os.Stderr, view.Error, err.Error())
		return 1
	}
	return 0
}

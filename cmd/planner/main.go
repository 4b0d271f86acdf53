// Command planner is the terminal front end of the planner service.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cppla/planner/app"
	"github.com/cppla/planner/client"
	"github.com/cppla/planner/localstore"
)

const defaultServer = "http://localhost:8080"

var (
	serverURL string
	dataDir   string
	verbose   bool
	assumeYes bool
)

func main() {
	_ = godotenv.Load()

	home, _ := os.UserHomeDir()
	defaultData := os.Getenv("PLANNER_DATA")
	if defaultData == "" {
		defaultData = filepath.Join(home, ".planner")
	}

	rootCmd := &cobra.Command{
		Use:           "planner",
		Short:         "Daily, weekly and monthly planner with habits and goals",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", os.Getenv("PLANNER_SERVER"), "planner service URL (default: last used, then "+defaultServer+")")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", defaultData, "directory of the local settings store")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "do not ask before deleting")

	rootCmd.AddCommand(registerCmd())
	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(logoutCmd())
	rootCmd.AddCommand(whoamiCmd())
	rootCmd.AddCommand(todayCmd())
	rootCmd.AddCommand(taskCmd())
	rootCmd.AddCommand(eventCmd())
	rootCmd.AddCommand(noteCmd())
	rootCmd.AddCommand(weekCmd())
	rootCmd.AddCommand(monthCmd())
	rootCmd.AddCommand(habitCmd())
	rootCmd.AddCommand(goalCmd())
	rootCmd.AddCommand(settingsCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(quoteCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger() *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.Lock(os.Stderr), level)
	return zap.New(core)
}

// env is what every command needs: the local store, the service client and a logger.
type env struct {
	server string
	store  *localstore.Store
	client *client.Client
	log    *zap.Logger
}

func setup() (*env, error) {
	store, err := localstore.Open(filepath.Join(dataDir, "planner.db"))
	if err != nil {
		return nil, err
	}
	server := serverURL
	if server == "" {
		server = store.ServerURL()
	}
	if server == "" {
		server = defaultServer
	}
	log := newLogger()
	log.Debug("using service", zap.String("server", server), zap.String("data", dataDir))
	return &env{
		server: server,
		store:  store,
		client: client.New(server, client.WithToken(store.SessionToken())),
		log:    log,
	}, nil
}

func (e *env) Close() {
	_ = e.log.Sync()
	_ = e.store.Close()
}

// session opens the signed-in planner.
func (e *env) session(ctx context.Context) (*app.Session, error) {
	s, err := app.Open(ctx, e.client, e.store, e.log)
	if errors.Is(err, app.ErrNotSignedIn) {
		return nil, errors.New("not signed in; run 'planner login' first")
	}
	return s, err
}

// withSession runs fn against an open session.
func withSession(fn func(ctx context.Context, e *env, s *app.Session) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()
		ctx := contextOf(cmd)
		s, err := e.session(ctx)
		if err != nil {
			return err
		}
		return fn(ctx, e, s)
	}
}

var stdin = bufio.NewReader(os.Stdin)

func prompt(label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	line, err := stdin.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// confirm asks before destructive actions unless --yes was given.
func confirm(question string) bool {
	if assumeYes {
		return true
	}
	answer, err := prompt(question + " [y/N] ")
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// matchID resolves an id or unique id prefix.
func matchID(ids []string, prefix string) (string, error) {
	var found []string
	for _, id := range ids {
		if id == prefix {
			return id, nil
		}
		if strings.HasPrefix(id, prefix) {
			found = append(found, id)
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("no match for %q", prefix)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("%q is ambiguous (%d matches)", prefix, len(found))
	}
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

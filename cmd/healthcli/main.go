// healthcli is the composition root for the client core: it wires the
// config collaborator, store, dispatcher and session manager together and
// exposes the session lifecycle plus the user read surface as subcommands.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/health-tracker-project/health-client/config"
	"github.com/health-tracker-project/health-client/dispatch"
	"github.com/health-tracker-project/health-client/logger"
	"github.com/health-tracker-project/health-client/netstatus"
	"github.com/health-tracker-project/health-client/resilience"
	"github.com/health-tracker-project/health-client/session"
	"github.com/health-tracker-project/health-client/store"
	"github.com/health-tracker-project/health-client/types"
	"github.com/health-tracker-project/health-client/users"
)

func usage() {
	fmt.Fprintf(os.Stderr, `usage: healthcli [flags] <command> [command flags]

commands:
  login      sign in, creating an account when needed
  status     check whether the cached session is still valid
  logout     clear the local session
  profile    update profile fields on the signed-in account
  users      look up or list accounts

flags:
`)
	flag.PrintDefaults()
}

func main() {
	configPath := flag.String("config", "", "path to YAML config (default: built-in)")
	storeDir := flag.String("store", defaultStoreDir(), "directory for the local session store")
	sqlitePath := flag.String("sqlite", "", "use a sqlite store at this path instead of files")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	loginCode := flag.String("code", os.Getenv("HEALTH_LOGIN_CODE"), "one-time platform login code")
	flag.Usage = usage
	flag.Parse()

	level, err := logger.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log := logger.New(level)
	defer log.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load configuration", err)
		os.Exit(1)
	}

	st, closeStore, err := openStore(*storeDir, *sqlitePath)
	if err != nil {
		log.Error("failed to open session store", err)
		os.Exit(1)
	}
	defer closeStore()

	dispatcher := dispatch.New(cfg,
		dispatch.WithLogger(log),
		dispatch.WithProber(netstatus.InterfaceProber{}),
		dispatch.WithCircuitBreaker(resilience.NewCircuitBreaker(5, 30*time.Second)),
	)

	codeProvider := session.LoginCodeFunc(func(context.Context) (string, error) {
		if *loginCode == "" {
			return "", fmt.Errorf("no login code: pass -code or set HEALTH_LOGIN_CODE")
		}
		return *loginCode, nil
	})

	manager, err := session.NewManager(dispatcher, st, codeProvider, session.WithLogger(log))
	if err != nil {
		log.Error("failed to create session manager", err)
		os.Exit(1)
	}

	ctx := context.Background()
	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	switch args[0] {
	case "login":
		runLogin(ctx, manager)
	case "status":
		runStatus(ctx, manager)
	case "logout":
		runLogout(manager)
	case "profile":
		runProfile(ctx, manager, args[1:])
	case "users":
		runUsers(ctx, users.NewClient(dispatcher), args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		usage()
		os.Exit(2)
	}
}

func defaultStoreDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".health-tracker"
	}
	return filepath.Join(home, ".health-tracker")
}

func openStore(dir, sqlitePath string) (store.Store, func(), error) {
	if sqlitePath != "" {
		s, err := store.NewSQLiteStore(sqlitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	}
	s, err := store.NewFileStore(dir)
	if err != nil {
		return nil, nil, err
	}
	return s, func() {}, nil
}

func runLogin(ctx context.Context, manager *session.Manager) {
	result := manager.LoginUser(ctx)
	if !result.Success {
		fmt.Fprintf(os.Stderr, "login failed: %s\n", result.Error.Error())
		os.Exit(1)
	}
	if result.IsNewUser {
		fmt.Printf("created account %d (%s)\n", result.Session.ID, result.Session.Username)
	} else {
		fmt.Printf("signed in as %d (%s)\n", result.Session.ID, result.Session.Username)
	}
}

// runStatus races the status check against a local deadline the way page
// flows do: if the backend is slow, report the cached state and move on.
// The superseded check keeps running and may still refresh or clear the
// persisted session after this returns.
func runStatus(ctx context.Context, manager *session.Manager) {
	const statusBudget = 5 * time.Second

	status, _ := resilience.FirstOf(ctx,
		func(ctx context.Context) session.Status {
			return manager.CheckLoginStatus(ctx)
		},
		func(ctx context.Context) session.Status {
			timer := time.NewTimer(statusBudget)
			defer timer.Stop()
			select {
			case <-timer.C:
			case <-ctx.Done():
			}
			return session.Status{Error: fmt.Errorf("status check exceeded %s", statusBudget)}
		},
	)

	if !status.IsLoggedIn {
		if status.Error != nil {
			fmt.Printf("not signed in (%v)\n", status.Error)
		} else {
			fmt.Println("not signed in")
		}
		os.Exit(1)
	}
	fmt.Printf("signed in as %d (%s)\n", status.User.ID, status.User.Username)
}

func runLogout(manager *session.Manager) {
	result := manager.LogoutUser()
	if !result.Success {
		fmt.Fprintf(os.Stderr, "logout failed: %v\n", result.Error)
		os.Exit(1)
	}
	fmt.Println("signed out")
}

func runProfile(ctx context.Context, manager *session.Manager, args []string) {
	fs := flag.NewFlagSet("profile", flag.ExitOnError)
	fullName := fs.String("full-name", "", "new display name")
	email := fs.String("email", "", "new email address")
	avatar := fs.String("avatar", "", "new avatar URL")
	fs.Parse(args)

	status := manager.CheckLoginStatus(ctx)
	if !status.IsLoggedIn {
		fmt.Fprintln(os.Stderr, "not signed in")
		os.Exit(1)
	}

	var fields types.UserUpdate
	if *fullName != "" {
		fields.FullName = fullName
	}
	if *email != "" {
		fields.Email = email
	}
	if *avatar != "" {
		fields.AvatarURL = avatar
	}

	result := manager.UpdateUserProfile(ctx, status.User.ID, fields)
	if !result.Success {
		fmt.Fprintf(os.Stderr, "profile update failed: %v\n", result.Error)
		os.Exit(1)
	}
	fmt.Printf("profile updated for %d (%s)\n", result.Session.ID, result.Session.Username)
}

func runUsers(ctx context.Context, client *users.Client, args []string) {
	fs := flag.NewFlagSet("users", flag.ExitOnError)
	id := fs.Int64("id", 0, "look up by id")
	email := fs.String("email", "", "look up by email")
	username := fs.String("username", "", "look up by username")
	page := fs.Int("page", 1, "listing page")
	size := fs.Int("size", 20, "listing page size")
	search := fs.String("search", "", "listing search term")
	fs.Parse(args)

	switch {
	case *id != 0:
		printUser(client.GetByID(ctx, *id))
	case *email != "":
		printUser(client.GetByEmail(ctx, *email))
	case *username != "":
		printUser(client.GetByUsername(ctx, *username))
	default:
		listing, reqErr := client.List(ctx, users.ListParams{Page: *page, Size: *size, Search: *search})
		if reqErr != nil {
			fmt.Fprintf(os.Stderr, "listing failed: %s\n", reqErr.Error())
			os.Exit(1)
		}
		for _, u := range listing.Items {
			fmt.Printf("%d\t%s\t%s\n", u.ID, u.Username, u.Email)
		}
		fmt.Printf("page %d/%d (%d total)\n", listing.Page, listing.Pages, listing.Total)
	}
}

func printUser(user *types.User, reqErr *types.RequestError) {
	if reqErr != nil {
		fmt.Fprintf(os.Stderr, "lookup failed: %s\n", reqErr.Error())
		os.Exit(1)
	}
	out, _ := json.MarshalIndent(user, "", "  ")
	fmt.Println(string(out))
}

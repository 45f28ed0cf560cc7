package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chattrix/chattrix/internal/app"
	"github.com/chattrix/chattrix/internal/auth"
	"github.com/chattrix/chattrix/internal/bus"
	"github.com/chattrix/chattrix/internal/config"
	"github.com/chattrix/chattrix/internal/profile"
	"github.com/chattrix/chattrix/internal/record"
	"github.com/chattrix/chattrix/internal/session"
	"github.com/chattrix/chattrix/internal/store"
	intsync "github.com/chattrix/chattrix/internal/sync"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// deps is populated from the fx graph; commands pull what they need from it.
type deps struct {
	fx.In

	Config  *config.Config
	Bus     *bus.Bus
	Logger  *zap.Logger
	Auth    *auth.Service
	Profile *profile.Service
	Chats   *store.ChatStore
	Users   *store.UserStore
	Stream  *store.ChatStream
}

func main() {
	configFlag := flag.String("config", "", "config file path (default ~/.chattrix/config.toml)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	if err := session.EnsureDirs(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	configPath := *configFlag
	if configPath == "" {
		configPath = session.ConfigPath()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		cfg = config.Default()
	}

	if args[0] == "init" {
		cmdInit(configPath, cfg)
		return
	}

	var d deps
	fxApp := fx.New(
		app.Module(app.Params{
			Config:      cfg,
			LogPath:     session.LogPath(),
			SessionPath: session.SessionPath(),
		}),
		fx.Populate(&d),
		fx.NopLogger,
	)
	startCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := fxApp.Start(startCtx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()
		_ = fxApp.Stop(stopCtx)
	}()

	ctx := context.Background()

	switch args[0] {
	case "register":
		cmdRegister(ctx, d, args[1:])
	case "login":
		cmdLogin(ctx, d, args[1:])
	case "logout":
		cmdLogout(ctx, d)
	case "whoami":
		cmdWhoami(ctx, d)
	case "chats":
		cmdChats(ctx, d)
	case "search":
		cmdSearch(ctx, d, args[1:])
	case "open":
		cmdOpen(ctx, d, args[1:])
	case "send":
		cmdSend(ctx, d, args[1:])
	case "profile":
		cmdProfile(ctx, d, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: chattrix [--config <path>] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  init                         Write the default config file")
	fmt.Fprintln(os.Stderr, "  register <email> <username>  Create an account (prompts for password)")
	fmt.Fprintln(os.Stderr, "  login <email>                Log in (prompts for password)")
	fmt.Fprintln(os.Stderr, "  logout                       End the current session")
	fmt.Fprintln(os.Stderr, "  whoami                       Show the logged-in user")
	fmt.Fprintln(os.Stderr, "  chats                        List chats, most recent first")
	fmt.Fprintln(os.Stderr, "  search <name>                Find users by name")
	fmt.Fprintln(os.Stderr, "  open <user-id>               Open a live chat with a user")
	fmt.Fprintln(os.Stderr, "  send <user-id> <text>        Send a single message")
	fmt.Fprintln(os.Stderr, "  profile name <name>          Update display name")
	fmt.Fprintln(os.Stderr, "  profile avatar <file>        Upload an avatar image")
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

func cmdInit(path string, cfg *config.Config) {
	if err := config.Save(path, cfg); err != nil {
		fail(err)
	}
	fmt.Printf("wrote %s; fill in project and collection IDs\n", path)
}

func readPassword(prompt string) string {
	fmt.Fprint(os.Stderr, prompt)
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		fail(errors.New("no password given"))
	}
	return strings.TrimSpace(scanner.Text())
}

func cmdRegister(ctx context.Context, d deps, args []string) {
	if len(args) < 2 {
		fail(errors.New("usage: chattrix register <email> <username>"))
	}
	password := readPassword("password: ")
	p, err := d.Auth.Register(ctx, args[0], password, args[1])
	if err != nil {
		fail(err)
	}
	fmt.Printf("registered and logged in as %s (%s)\n", p.Name, p.UserID)
}

func cmdLogin(ctx context.Context, d deps, args []string) {
	if len(args) < 1 {
		fail(errors.New("usage: chattrix login <email>"))
	}
	password := readPassword("password: ")
	sess, err := d.Auth.Login(ctx, args[0], password)
	if err != nil {
		fail(err)
	}
	fmt.Printf("logged in as %s\n", sess.UserID)
}

func cmdLogout(ctx context.Context, d deps) {
	if err := d.Auth.Logout(ctx); err != nil {
		fail(err)
	}
	fmt.Println("logged out")
}

func cmdWhoami(ctx context.Context, d deps) {
	userID, err := d.Auth.CurrentUserID(ctx)
	if err != nil {
		fail(err)
	}
	p, err := d.Users.Get(ctx, userID)
	if err != nil {
		fail(err)
	}
	if p == nil {
		fmt.Println(userID)
		return
	}
	fmt.Printf("%s <%s> (%s)\n", p.Name, p.Email, p.UserID)
}

func cmdChats(ctx context.Context, d deps) {
	userID, err := d.Auth.Restore(ctx)
	if err != nil {
		fail(err)
	}
	overviews, err := d.Chats.BuildOverview(ctx, userID)
	if err != nil {
		fail(err)
	}
	if len(overviews) == 0 {
		fmt.Println("no chats yet")
		return
	}
	for _, ov := range overviews {
		name := ov.OtherUserID
		if p, err := d.Users.Get(ctx, ov.OtherUserID); err == nil && p != nil {
			name = p.Name
		}
		preview := ov.LastMessage
		if rec, err := record.Decode(ov.LastMessage); err == nil {
			preview = rec.Text
		}
		fmt.Printf("%-24s %s\n", name, preview)
	}
}

func cmdSearch(ctx context.Context, d deps, args []string) {
	if len(args) < 1 {
		fail(errors.New("usage: chattrix search <name>"))
	}
	if _, err := d.Auth.Restore(ctx); err != nil {
		fail(err)
	}
	results := d.Users.SearchByName(ctx, strings.Join(args, " "))
	if len(results) == 0 {
		results = d.Users.SearchByEmail(ctx, args[0])
	}
	if len(results) == 0 {
		fmt.Println("no users found")
		return
	}
	for _, p := range results {
		fmt.Printf("%-24s %-32s %s\n", p.Name, p.Email, p.UserID)
	}
}

func cmdSend(ctx context.Context, d deps, args []string) {
	if len(args) < 2 {
		fail(errors.New("usage: chattrix send <user-id> <text>"))
	}
	userID, err := d.Auth.Restore(ctx)
	if err != nil {
		fail(err)
	}
	chatID, err := d.Chats.FindOrCreateChat(ctx, userID, args[0])
	if err != nil {
		fail(err)
	}
	rec := &record.Record{
		Text:       strings.Join(args[1:], " "),
		Timestamp:  record.Stamp(time.Now()),
		SenderID:   userID,
		ReceiverID: args[0],
		Status:     record.StatusPending,
	}
	if err := d.Chats.Append(ctx, chatID, rec); err != nil {
		fail(err)
	}
	fmt.Println("sent")
}

// cmdOpen shows the chat history, keeps it current in the background, and
// reads outgoing messages from stdin until EOF.
func cmdOpen(ctx context.Context, d deps, args []string) {
	if len(args) < 1 {
		fail(errors.New("usage: chattrix open <user-id>"))
	}
	otherID := args[0]

	userID, err := d.Auth.Restore(ctx)
	if err != nil {
		fail(err)
	}
	chatID, err := d.Chats.FindOrCreateChat(ctx, userID, otherID)
	if err != nil {
		fail(err)
	}

	thread := intsync.NewThread()
	thread.Load(record.DecodeAll(d.Chats.FindAllBetween(ctx, userID, otherID)))
	for _, rec := range thread.Records() {
		printRecord(userID, rec)
	}

	syncer := startSyncer(ctx, d, chatID, thread)
	defer syncer.Stop()

	events, cancelSub := d.Bus.Subscribe(intsync.EventThreadAppended, 16)
	defer cancelSub()
	go func() {
		for evt := range events {
			rec, ok := evt.Payload.(record.Record)
			if !ok || rec.SenderID == userID {
				continue
			}
			printRecord(userID, rec)
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		rec := record.Record{
			Text:       text,
			Timestamp:  record.Stamp(time.Now()),
			SenderID:   userID,
			ReceiverID: otherID,
			Status:     record.StatusPending,
		}
		// Optimistic: the message shows locally before the write confirms.
		thread.Merge(rec)
		if err := d.Chats.Append(ctx, chatID, &rec); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
}

// startSyncer picks the configured transport; a realtime subscription that
// cannot open falls back to polling.
func startSyncer(ctx context.Context, d deps, chatID string, thread *intsync.Thread) intsync.Syncer {
	if d.Config.Transport == config.TransportRealtime {
		w := intsync.NewWatcher(chatID, thread, d.Stream, d.Bus, d.Logger)
		if err := w.Start(ctx); err == nil {
			return w
		}
		fmt.Fprintln(os.Stderr, "realtime unavailable, falling back to polling")
	}
	p := intsync.NewPoller(chatID, thread, d.Chats, d.Config.PollInterval(), d.Bus, d.Logger)
	_ = p.Start(ctx)
	return p
}

func printRecord(selfID string, rec record.Record) {
	who := rec.SenderID
	if rec.SenderID == selfID {
		who = "me"
	}
	ts := rec.Timestamp
	if t, err := time.Parse("2006-01-02T15:04:05.000Z07:00", rec.Timestamp); err == nil {
		ts = t.Local().Format("15:04")
	}
	fmt.Printf("[%s] %s: %s\n", ts, who, rec.Text)
}

func cmdProfile(ctx context.Context, d deps, args []string) {
	if len(args) < 2 {
		fail(errors.New("usage: chattrix profile <name|avatar> <value>"))
	}
	userID, err := d.Auth.Restore(ctx)
	if err != nil {
		fail(err)
	}

	switch args[0] {
	case "name":
		if err := d.Profile.Update(ctx, userID, strings.Join(args[1:], " "), nil, "", ""); err != nil {
			fail(err)
		}
		fmt.Println("name updated")
	case "avatar":
		f, err := os.Open(args[1])
		if err != nil {
			fail(err)
		}
		defer f.Close()
		fileID, err := d.Profile.UploadAvatar(ctx, userID, filepath.Base(args[1]), f)
		if err != nil {
			fail(err)
		}
		fmt.Printf("avatar uploaded (%s)\n", fileID)
	default:
		fail(fmt.Errorf("unknown profile subcommand: %s", args[0]))
	}
}

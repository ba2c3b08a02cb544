// roomwatch is a terminal companion for a dablu room: it signs in, then
// polls the room and logs every change (new expenses, confirmations,
// settlements) as they land.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dablu-app/dablu_backend/internal/dto"
	"github.com/dablu-app/dablu_backend/pkg/roomclient"
	"github.com/lmittmann/tint"
)

func main() {
	var (
		serverURL   = flag.String("server", "http://localhost:8080", "backend base URL")
		roomID      = flag.String("room", "", "room code to watch")
		email       = flag.String("email", "", "login email (required unless a session is stored)")
		password    = flag.String("password", "", "login password")
		sessionPath = flag.String("session", defaultSessionPath(), "session file path")
		interval    = flag.Duration("interval", 5*time.Second, "poll interval")
	)
	flag.Parse()

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)

	if *roomID == "" {
		logger.Error("missing -room")
		flag.Usage()
		os.Exit(2)
	}

	store := roomclient.NewSessionStore(*sessionPath)
	sess, err := store.Load()
	if err != nil {
		logger.Error("failed to load session", "error", err)
		os.Exit(1)
	}

	client := roomclient.New(roomclient.Config{
		BaseURL: *serverURL,
		OnSessionExpired: func() {
			logger.Warn("session expired, clearing stored credentials")
			_ = store.Clear()
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if sess == nil {
		if *email == "" || *password == "" {
			logger.Error("no stored session: -email and -password are required")
			os.Exit(2)
		}
		login, err := client.Login(ctx, *email, *password)
		if err != nil {
			logger.Error("login failed", "error", err)
			os.Exit(1)
		}
		sess = &roomclient.Session{
			UserID:    login.UserID,
			Username:  login.Username,
			Token:     login.Token,
			ExpiresAt: login.ExpiresAt,
		}
		if err := store.Save(*sess); err != nil {
			logger.Warn("failed to persist session", "error", err)
		}
		logger.Info("signed in", "user", login.Username)
	} else {
		client.SetToken(sess.Token)
		logger.Info("resumed session", "user", sess.Username)
	}

	view := roomclient.NewRoomView(client, *roomID, sess.UserID)
	poller := roomclient.NewPoller(view, *interval, func(room dto.RoomResponse) {
		logRoom(logger, room)
	})

	logger.Info("watching room", "room", *roomID, "interval", interval.String())
	poller.Run(ctx)
	logger.Info("stopped")
}

func logRoom(logger *slog.Logger, room dto.RoomResponse) {
	pending := 0
	for _, t := range room.PayerList {
		if !t.IsReceived {
			pending++
		}
	}
	logger.Info("room updated",
		"room", room.RoomID,
		"members", len(room.Users),
		"entries", len(room.History),
		"transfers", len(room.PayerList),
		"pending", pending,
	)
	for _, t := range room.PayerList {
		status := "pending"
		if t.IsReceived {
			status = "received"
		}
		logger.Info(fmt.Sprintf("  %s -> %s: %s (%s)", t.Sender, t.Receiver, t.Amount.String(), status))
	}
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".dablu-session.json"
	}
	return filepath.Join(home, ".config", "dablu", "session.json")
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"forum-server/internal/forum"
	"forum-server/internal/tui"
)

func main() {
	os.Exit(run())
}

func run() int {
	apiURL := flag.String("api", "http://localhost:8000/api/v1", "forum API base URL")
	token := flag.String("token", "", "bearer token (optional, defaults to FORUM_TOKEN)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	tok := *token
	if tok == "" {
		tok = os.Getenv("FORUM_TOKEN")
	}

	opts := tui.Options{
		Context: ctx,
		Client:  forum.NewClient(*apiURL),
		Token:   tok,
	}
	if err := tui.Run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "forumtui: %v\n", err)
		return 1
	}
	return 0
}

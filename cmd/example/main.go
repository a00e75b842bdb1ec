package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"

	"github.com/joho/godotenv"

	igapi "github.com/jamesprial/go-instagram-api-wrapper"
	pkgerrs "github.com/jamesprial/go-instagram-api-wrapper/pkg/errors"
)

func main() {
	// A missing .env is fine; the variables may come from the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Failed to load .env: %v", err)
	}

	username := os.Getenv("INSTAGRAM_USERNAME")
	password := os.Getenv("INSTAGRAM_PASSWORD")
	if username == "" || password == "" {
		log.Fatal("INSTAGRAM_USERNAME and INSTAGRAM_PASSWORD environment variables are required")
	}

	limit := 50
	if v := os.Getenv("FOLLOWER_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			log.Fatalf("FOLLOWER_LIMIT: %v", err)
		}
		limit = n
	}

	// Route structured logs to stdout; adjust the level as needed.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	client, err := igapi.NewClient(&igapi.Config{
		Username:         username,
		Password:         password,
		Logger:           logger,
		Wait:             igapi.WaitConfig{Enabled: true},
		WarmUpAfterLogin: true,
	})
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	login, err := client.Login(ctx, false)
	if err != nil {
		var blocked *pkgerrs.SentryBlockError
		if errors.As(err, &blocked) {
			log.Fatalf("Account is blocked, stop and investigate: %v", blocked)
		}
		log.Fatalf("Failed to log in: %v", err)
	}
	defer func() {
		if err := client.Logout(context.Background()); err != nil {
			log.Printf("Logout failed: %v", err)
		}
	}()

	fmt.Printf("Logged in as %s (pk %d)\n", login.LoggedInUser.Username, login.LoggedInUser.PK)

	me, err := igapi.LoggedInUser(client)
	if err != nil {
		log.Fatalf("Failed to read logged in user: %v", err)
	}
	if err := me.EnsureLoaded(ctx); err != nil {
		log.Printf("Failed to load profile: %v", err)
	} else {
		fmt.Printf("%d followers, %d following, %d posts\n", me.FollowerCount, me.FollowingCount, me.MediaCount)
	}

	fmt.Printf("\nFirst %d followers:\n", limit)
	followers := me.Followers(ctx, &igapi.ListOptions{Limit: limit})
	for user, err := range followers.All() {
		if err != nil {
			log.Printf("Stopped after %d followers: %v", followers.Yielded(), err)
			break
		}
		fmt.Printf("  %s (%s)\n", user.Username, user.FullName)
	}
	fmt.Printf("Fetched %d followers in %d pages\n", followers.Yielded(), followers.Pages())

	fmt.Println("\nRecent posts:")
	posts := me.Posts(ctx, &igapi.ListOptions{Limit: 5})
	for posts.HasNext() {
		item, err := posts.Next()
		if err != nil {
			break
		}
		post := igapi.NewPost(client, item)
		fmt.Printf("  [%s] %s %.60q\n", post.Type(), post.Code, post.Caption())
	}
	if err := posts.Err(); err != nil {
		log.Printf("Failed to list posts: %v", err)
	}
}

// Package igapi is a Go client for Instagram's private mobile API.
//
// # Overview
//
// The client presents itself as the Android app: it derives a stable device id
// from the account credentials, signs every write with the app's HMAC key and
// keeps the session cookies, CSRF token and rank token the service expects.
//
// # Features
//
//   - Login/logout state machine with an auth gate in front of every protected call
//   - Signed request bodies for all writes
//   - Uniform retry policy: 5xx and transport failures are retried, 4xx and sentry blocks are not
//   - Lazy cursors over followers, followings and feeds
//   - Rate limiting, optional request jitter and Prometheus metrics
//   - Structured logging via Go's slog package
//
// # Quick Start
//
//	client, err := igapi.NewClient(&igapi.Config{
//		Username: "alice",
//		Password: "secret",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if _, err := client.Login(ctx, false); err != nil {
//		log.Fatal(err)
//	}
//	defer client.Logout(ctx)
//
// # Session Lifecycle
//
// NewClient sends nothing. Login runs the handshake once; calling it again
// without force is a no-op. Any auth-gated call made before Login fails with
// *errors.AuthenticationRequiredError and sends no request. Logout clears the
// local session even when the remote call fails.
//
// # Pagination
//
// List endpoints return a *Cursor. Nothing is fetched until the first item is
// needed, and errors surface where the failing page would have been read:
//
//	for user, err := range client.Friends.Followers(ctx, userID, &igapi.ListOptions{Limit: 100}).All() {
//		if err != nil {
//			return err
//		}
//		fmt.Println(user.Username)
//	}
//
// A limit is checked between pages, so the page that crosses it is still
// returned in full.
//
// # Error Handling
//
// Errors are typed and live in pkg/errors:
//
//	var blocked *errors.SentryBlockError
//	if errors.As(err, &blocked) {
//		// stop using this account for a while
//	}
//
//   - AuthenticationRequiredError: log in first
//   - SentryBlockError: the service flagged the account; never retried
//   - ResponseError: non-2xx or non-"ok" response, after retries for 5xx
//   - RequestError: the request never got a response, after retries
//   - ValidationError: rejected locally, nothing was sent
//
// # Default Client
//
// Scripts may install one client with SetDefault and read it back with
// Default. Everything else in the package takes the client explicitly.
package igapi

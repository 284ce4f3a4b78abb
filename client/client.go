package main

import (
	"context"
	"fmt"
	"inbox-lab/auth"
	pb "inbox-lab/infrastructure/grpc/inboxv1"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerAddress     string        `env:"INBOX_SERVER_ADDR,default=localhost:8080"`
	UserID            string        `env:"INBOX_USER_ID,required=true"`
	AuthSecret        string        `env:"AUTH_SECRET,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=1h"`
	LogLevel          string        `env:"LOG_LEVEL,default=INFO"`
	Colours           bool          `env:"INBOX_COLOURS,default=true"`
}

// session is what every command needs: an authenticated client for one user.
type session struct {
	log     *slog.Logger
	config  Config
	client  pb.InboxServiceClient
	token   string
	printer printer
}

func (s *session) ctx(parent context.Context) context.Context {
	return auth.WithBearer(parent, s.token)
}

func main() {
	// The main function manages the OS exit code based on run()'s return.
	code, err := run(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

// run handles the gRPC client lifecycle, configuration loading and command dispatch.
func run(args []string) (int, error) {
	// 1. Load configuration from .env (optional) and environment variables.
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Mint a token for the configured user. The lab shares the server secret.
	tokens, err := auth.NewTokenManager(config.AuthSecret, config.AuthTokenDuration)
	if err != nil {
		return exitConfig, err
	}
	token, err := tokens.GenerateToken(config.UserID)
	if err != nil {
		return exitRuntime, fmt.Errorf("cannot sign token: %w", err)
	}

	// 3. Setup context to handle termination signals (Ctrl+C).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Establish connection to the inbox server.
	conn, err := grpc.NewClient(config.ServerAddress, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return exitRuntime, fmt.Errorf("could not connect to server at %s: %w", config.ServerAddress, err)
	}
	defer func() {
		log.Debug("Closing connection...")
		_ = conn.Close()
	}()

	s := &session{
		log:     log,
		config:  config,
		client:  pb.NewInboxServiceClient(conn),
		token:   token,
		printer: newPrinter(os.Stdout, config.Colours),
	}

	// 5. Dispatch the command.
	if err := newApp(s).RunContext(ctx, args); err != nil {
		if ctx.Err() != nil {
			return exitOK, nil
		}
		return exitRuntime, err
	}
	return exitOK, nil
}

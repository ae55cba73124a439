package main

import (
	"context"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/oriormedia/drp-admin/internal/config"
	"github.com/oriormedia/drp-admin/internal/domain"
	"github.com/oriormedia/drp-admin/internal/infrastructure/drpapi"
	"github.com/oriormedia/drp-admin/internal/repository"
	"github.com/oriormedia/drp-admin/internal/service"
	"github.com/oriormedia/drp-admin/internal/telemetry"
)

const usage = `drpctl - DRP fleet-management admin client

Usage:
  drpctl login -email <email> [-password <password>] [-remember]
  drpctl logout
  drpctl whoami
  drpctl switch-org <organization-id>
  drpctl orgs
  drpctl drivers [-page N] [-page-size N] [-search TEXT]
`

// app bundles everything a command needs.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   *service.CredentialStore
	session *service.SessionManager
	api     *drpapi.Client
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "drpctl: %v\n", err)
		os.Exit(1)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "drpctl: failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry backends authenticate with instanceId:token basic auth.
	var otelHeaders map[string]string
	if cfg.OTEL.InstanceID != "" {
		auth := base64.StdEncoding.EncodeToString([]byte(cfg.OTEL.InstanceID + ":" + cfg.OTEL.Token))
		otelHeaders = map[string]string{"Authorization": "Basic " + auth}
	}
	otelProvider, err := telemetry.Initialize(ctx, telemetry.Config{
		ServiceName:    cfg.OTEL.ServiceName,
		ServiceVersion: cfg.OTEL.ServiceVersion,
		Environment:    cfg.OTEL.Environment,
		OTLPEndpoint:   cfg.OTEL.Endpoint,
		OTLPHeaders:    otelHeaders,
		Enabled:        cfg.OTEL.Enabled,
	}, logger)
	if err != nil {
		logger.Warn("failed to initialize telemetry", zap.Error(err))
	}
	if otelProvider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			otelProvider.Shutdown(shutdownCtx)
		}()
	}

	a, cleanup, err := buildApp(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "drpctl: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	if err := run(ctx, a, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "drpctl: %v\n", err)
		os.Exit(1)
	}
}

// buildApp wires storage, store, session manager and API clients.
func buildApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, func(), error) {
	var storage domain.CredentialStorage
	cleanup := func() {}

	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			redisClient.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		storage = repository.NewRedisCredentialStorage(redisClient, cfg.Redis.KeyPrefix)
		cleanup = func() { redisClient.Close() }
	} else {
		storage = repository.NewFileCredentialStorage(cfg.API.CredentialsFile)
	}

	store := service.NewCredentialStore(ctx, storage, logger)
	authClient := drpapi.NewAuthClient(cfg.API.BaseURL)
	session := service.NewSessionManager(authClient, store, logger)

	augmenter := drpapi.NewAugmenter(store, cfg.API.DefaultOrganizationID)
	var transport http.RoundTripper = drpapi.NewTransport(augmenter, nil)
	if cfg.OTEL.Enabled {
		transport = otelhttp.NewTransport(transport)
	}
	api := drpapi.NewClient(cfg.API.BaseURL, transport)

	return &app{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		session: session,
		api:     api,
	}, cleanup, nil
}

func run(ctx context.Context, a *app, command string, args []string) error {
	switch command {
	case "login":
		return cmdLogin(ctx, a, args)
	case "logout":
		a.session.Logout(ctx)
		fmt.Println("logged out")
		return nil
	case "whoami":
		return cmdWhoami(ctx, a)
	case "switch-org":
		return cmdSwitchOrg(ctx, a, args)
	case "orgs":
		return cmdOrgs(ctx, a)
	case "drivers":
		return cmdDrivers(ctx, a, args)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func cmdLogin(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password (falls back to DRP_PASSWORD)")
	remember := fs.Bool("remember", false, "persist the session with a refresh token")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *password == "" {
		*password = os.Getenv("DRP_PASSWORD")
	}
	if *email == "" || *password == "" {
		return errors.New("login requires -email and -password (or DRP_PASSWORD)")
	}

	user, err := a.session.Login(ctx, *email, *password, *remember)
	if err != nil {
		return err
	}
	fmt.Printf("logged in as %s (%s)\n", user.Email, user.Role)
	if orgID := a.store.OrganizationID(); orgID != "" {
		fmt.Printf("organization: %s\n", orgID)
	}
	return nil
}

// restore brings a stored session back before authenticated commands run.
func restore(ctx context.Context, a *app) error {
	if err := a.session.Restore(ctx); err != nil {
		if errors.Is(err, domain.ErrSessionExpired) {
			return errors.New("session expired, please login again")
		}
		return err
	}
	if a.session.State() != service.StateAuthenticated {
		return errors.New("not logged in, run: drpctl login")
	}
	return nil
}

func cmdWhoami(ctx context.Context, a *app) error {
	if err := restore(ctx, a); err != nil {
		return err
	}
	user := a.session.CurrentUser()
	fmt.Printf("user:         %s\n", user.Email)
	fmt.Printf("id:           %s\n", user.ID)
	fmt.Printf("role:         %s\n", user.Role)
	fmt.Printf("organization: %s\n", a.store.OrganizationID())
	return nil
}

func cmdSwitchOrg(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: drpctl switch-org <organization-id>")
	}
	if err := restore(ctx, a); err != nil {
		return err
	}
	if err := a.session.SwitchOrganization(ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("organization context switched to %s\n", args[0])
	return nil
}

func cmdOrgs(ctx context.Context, a *app) error {
	if err := restore(ctx, a); err != nil {
		return err
	}
	orgs, err := a.api.ListOrganizations(ctx)
	if err != nil {
		return err
	}
	for _, org := range orgs {
		fmt.Printf("%s\t%s\t%s\n", org.ID, org.Name, org.AccountStatus)
	}
	return nil
}

func cmdDrivers(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("drivers", flag.ExitOnError)
	page := fs.Int("page", 1, "page number")
	pageSize := fs.Int("page-size", 20, "page size")
	search := fs.String("search", "", "filter by name or license")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := restore(ctx, a); err != nil {
		return err
	}

	result, err := a.api.ListDrivers(ctx, drpapi.DriverListParams{
		Page:     *page,
		PageSize: *pageSize,
		Search:   *search,
	})
	if err != nil {
		return err
	}
	for _, d := range result.Data {
		fmt.Printf("%s\t%s\t%s\t%s\n", d.ID, d.Username, d.Status, d.LicenseNumber)
	}
	fmt.Printf("page %d/%d (%d drivers)\n", result.CurrentPage, result.TotalPages, result.TotalCount)
	return nil
}

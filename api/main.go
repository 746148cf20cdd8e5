package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/campusconnect/server/auth"
	"github.com/campusconnect/server/config"
	"github.com/campusconnect/server/items"
)

const (
	connectAttempts = 5
	connectBackoff  = 2 * time.Second
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Development)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	client, err := connectMongo(cfg.MongoURI, logger)
	if err != nil {
		return err
	}

	db := client.Database(cfg.MongoDatabase)
	accounts := db.Collection("users")
	postings := db.Collection("items")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := auth.EnsureAccountIndexes(ctx, accounts); err != nil {
		return fmt.Errorf("creating account indexes: %w", err)
	}
	if err := items.EnsureItemIndexes(ctx, postings); err != nil {
		return fmt.Errorf("creating item indexes: %w", err)
	}

	authSvc := auth.NewService(auth.NewMongoAccountRepository(accounts), logger)
	itemSvc := items.NewService(items.NewMongoItemRepository(postings), logger)
	issuer := auth.NewTokenIssuer([]byte(cfg.SigningKey))

	router := httprouter.New()
	router.Handler(http.MethodPost, "/v1/auth/register", auth.RegisterHandler(authSvc))
	router.Handler(http.MethodPost, "/v1/auth/login", auth.LoginHandler(authSvc, issuer))
	router.Handler(http.MethodPost, "/v1/auth/external", auth.ExternalSignInHandler(authSvc, issuer))
	router.Handler(http.MethodPost, "/v1/auth/complete-profile", auth.CompleteProfileHandler(authSvc))
	router.Handler(http.MethodGet, "/v1/auth/check-username", auth.CheckUsernameHandler(authSvc))
	router.Handler(http.MethodGet, "/v1/auth/check-email", auth.CheckEmailHandler(authSvc))
	router.Handler(http.MethodGet, "/v1/auth/session", issuer.RequireAuth(auth.SessionHandler()))

	router.Handler(http.MethodPost, "/v1/items", issuer.RequireAuth(items.CreateItemHandler(itemSvc)))
	router.Handler(http.MethodGet, "/v1/items", items.ListItemsHandler(itemSvc))
	router.Handler(http.MethodGet, "/v1/items/:id", items.GetItemHandler(itemSvc))
	router.Handler(http.MethodGet, "/v1/me/items", issuer.RequireAuth(items.ListMyItemsHandler(itemSvc)))

	logger.Infow("server started", "addr", cfg.Addr)
	return http.ListenAndServe(cfg.Addr, router)
}

func newLogger(development bool) (*zap.SugaredLogger, error) {
	var l *zap.Logger
	var err error
	if development {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}

// connectMongo dials the store with a bounded retry so a briefly late
// database doesn't take the process down with it.
func connectMongo(uri string, logger *zap.SugaredLogger) (*mongo.Client, error) {
	var lastErr error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)

		client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
		if err == nil {
			err = client.Ping(ctx, nil)
			if err == nil {
				cancel()
				logger.Infow("connected to mongodb")
				return client, nil
			}
			_ = client.Disconnect(ctx)
		}
		cancel()

		lastErr = err
		logger.Warnw("mongodb connection failed", "attempt", attempt, "error", err)
		time.Sleep(time.Duration(attempt) * connectBackoff)
	}
	return nil, fmt.Errorf("connecting to mongodb after %d attempts: %w", connectAttempts, lastErr)
}

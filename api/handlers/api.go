package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/Was1f/UrbanFix-sub001/api"
	"github.com/Was1f/UrbanFix-sub001/api/scheduler"
	"github.com/Was1f/UrbanFix-sub001/boards"
	"github.com/Was1f/UrbanFix-sub001/config"
	"github.com/Was1f/UrbanFix-sub001/databases"
	"github.com/Was1f/UrbanFix-sub001/databases/memstore"
	"github.com/Was1f/UrbanFix-sub001/engagement"
	"github.com/Was1f/UrbanFix-sub001/ledger"
	"github.com/Was1f/UrbanFix-sub001/moderation"
	"github.com/Was1f/UrbanFix-sub001/notifications"
	"github.com/Was1f/UrbanFix-sub001/profiles"
	"github.com/Was1f/UrbanFix-sub001/verification"
)

// Stores are the persistence backends the app is wired to
type Stores struct {
	Discussions   databases.DiscussionDatabase
	Boards        databases.BoardDatabase
	Users         databases.UserDatabase
	Notifications databases.NotificationDatabase
	Reports       databases.ReportDatabase
	Keys          databases.KeyStore
}

// App stores the router and the services behind it, so it can be reused
type App struct {
	Router *mux.Router
	Config config.Config

	Engagement    *engagement.Service
	Moderation    *moderation.Pipeline
	Boards        *boards.Registry
	Ledger        *ledger.Ledger
	Notifications *notifications.Dispatcher
	Profiles      *profiles.Resolver
	Verification  *verification.Service
	Sessions      *api.SessionAuth

	// Sender delivers login codes. Wire falls back to logging them.
	Sender verification.Sender

	scheduler *scheduler.Scheduler
	stores    Stores
	client    databases.ClientHelper
}

// Initialize is invoked by main to connect the configured stores, build the
// services and the router and start background jobs
func (a *App) Initialize() error {
	stores, err := a.openStores()
	if err != nil {
		return err
	}
	if a.Config.SendgridKey != "" {
		a.Sender = verification.NewEmailSender(a.Config.SendgridKey, a.Config.SendgridFrom)
	} else {
		zap.S().Warn("SENDGRID_API_KEY not set, login codes will be logged")
		a.Sender = verification.NewLogSender()
	}
	a.Wire(stores)

	a.scheduler = scheduler.NewScheduler(a.Ledger, a.Boards, a.Notifications, stores.Keys, a.Config.PointsRetention)
	a.scheduler.Start()
	return nil
}

func (a *App) openStores() (Stores, error) {
	if a.Config.DBDriver == config.DriverMemory {
		zap.S().Warn("using the in-memory store, data will not survive a restart")
		return MemoryStores(memstore.New()), nil
	}
	if a.Config.DBDriver != config.DriverMongo {
		return Stores{}, fmt.Errorf("unknown DB_DRIVER %q", a.Config.DBDriver)
	}

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		zap.S().With(err).Error("failed to create new client")
		return Stores{}, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), a.Config.QueryTimeout)
	defer cancel()
	if err := client.Connect(ctx); err != nil {
		zap.S().With(err).Error("failed to connect to database")
		return Stores{}, err
	}
	a.client = client
	db := databases.NewDatabase(&a.Config, client)
	if err := databases.EnsureIndexes(ctx, db); err != nil {
		return Stores{}, err
	}
	zap.S().Info("urbanfix has connected to the database")

	var keys databases.KeyStore
	if a.Config.RedisURL != "" {
		rdb, err := databases.NewRedisClient(a.Config.RedisURL)
		if err != nil {
			return Stores{}, err
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			zap.S().With(err).Error("failed to connect to redis")
			return Stores{}, err
		}
		keys = databases.NewKeyStore(rdb)
	} else {
		zap.S().Warn("REDIS_URL not set, sessions are local to this instance")
		keys = memstore.New().Keys()
	}

	return Stores{
		Discussions:   databases.NewDiscussionDatabase(db),
		Boards:        databases.NewBoardDatabase(db),
		Users:         databases.NewUserDatabase(db),
		Notifications: databases.NewNotificationDatabase(db),
		Reports:       databases.NewReportDatabase(db),
		Keys:          keys,
	}, nil
}

// MemoryStores backs every store with one in-process store
func MemoryStores(s *memstore.Store) Stores {
	return Stores{
		Discussions:   s.Discussions(),
		Boards:        s.Boards(),
		Users:         s.Users(),
		Notifications: s.Notifications(),
		Reports:       s.Reports(),
		Keys:          s.Keys(),
	}
}

// Wire builds the services over stores and the router over the services
func (a *App) Wire(stores Stores) {
	if a.Sender == nil {
		a.Sender = verification.NewLogSender()
	}
	if a.Config.QueryTimeout > 0 {
		api.QueryTimeout = a.Config.QueryTimeout
	}
	a.stores = stores
	a.Boards = boards.NewRegistry(stores.Boards, stores.Discussions)
	a.Ledger = ledger.New(stores.Users)
	a.Notifications = notifications.New(stores.Notifications)
	a.Profiles = profiles.New(stores.Users)
	a.Engagement = engagement.NewService(stores.Discussions, a.Boards, a.Ledger, a.Notifications, a.Profiles, engagement.Options{
		QueryTimeout:  a.Config.QueryTimeout,
		NotifyTimeout: a.Config.NotifyTimeout,
	})
	a.Moderation = moderation.New(stores.Reports, stores.Discussions, a.Boards, a.Notifications, a.Config.QueryTimeout, a.Config.NotifyTimeout)
	a.Verification = verification.New(stores.Keys, stores.Users, a.Sender, a.Config.CodeTTL, a.Config.SessionTTL)
	a.Sessions = api.NewSessionAuth(a.Verification)
	a.Router = a.New()
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	auth := Auth{Verification: a.Verification, Sessions: a.Sessions}
	u := User{Profiles: a.Profiles, Ledger: a.Ledger}
	d := Discussion{Svc: a.Engagement}
	m := Moderation{Pipeline: a.Moderation}
	b := Board{Registry: a.Boards, Ledger: a.Ledger}
	n := Notification{Dispatcher: a.Notifications}

	session := a.Sessions.Middleware
	admin := api.AdminMiddleware(a.Config.JWTSecret)

	r := mux.NewRouter()
	r.Use(api.RequestLogger)

	// healthchex
	r.HandleFunc("/health", api.HealthCheckHandler)

	v1 := r.PathPrefix("/api/v1").Subrouter()

	v1.HandleFunc("/auth/code", auth.RequestCodeHandler).Methods("POST")
	v1.HandleFunc("/auth/token", auth.TokenHandler).Methods("POST")
	v1.Handle("/auth/token", session(http.HandlerFunc(auth.RevokeHandler))).Methods("DELETE")

	v1.HandleFunc("/users", u.RegisterHandler).Methods("POST")
	v1.Handle("/users/me", session(http.HandlerFunc(u.RenameHandler))).Methods("PATCH")
	v1.HandleFunc("/users/{identity}/points", u.PointsHandler).Methods("GET")

	v1.Handle("/discussions", session(http.HandlerFunc(d.CreateHandler))).Methods("POST")
	v1.HandleFunc("/discussions", d.ListHandler).Methods("GET")
	v1.HandleFunc("/discussions/{id}", d.GetHandler).Methods("GET")
	v1.Handle("/discussions/{id}", session(http.HandlerFunc(d.DeleteHandler))).Methods("DELETE")
	v1.Handle("/discussions/{id}/like", session(http.HandlerFunc(d.LikeHandler))).Methods("POST")
	v1.Handle("/discussions/{id}/vote", session(http.HandlerFunc(d.VoteHandler))).Methods("POST")
	v1.Handle("/discussions/{id}/rsvp", session(http.HandlerFunc(d.RSVPHandler))).Methods("POST")
	v1.Handle("/discussions/{id}/cancel-rsvp", session(http.HandlerFunc(d.CancelRSVPHandler))).Methods("POST")
	v1.Handle("/discussions/{id}/donate", session(http.HandlerFunc(d.DonateHandler))).Methods("POST")
	v1.Handle("/discussions/{id}/offer-help", session(http.HandlerFunc(d.OfferHelpHandler))).Methods("POST")
	v1.Handle("/discussions/{id}/withdraw-help", session(http.HandlerFunc(d.WithdrawHelpHandler))).Methods("POST")
	v1.Handle("/discussions/{id}/comments", session(http.HandlerFunc(d.CommentHandler))).Methods("POST")
	v1.Handle("/discussions/{id}/helper/{helperId}/status", session(http.HandlerFunc(d.HelperStatusHandler))).Methods("PATCH")
	v1.Handle("/discussions/{id}/resolve", session(http.HandlerFunc(d.ResolveHandler))).Methods("PATCH")

	v1.Handle("/moderation/report", session(http.HandlerFunc(m.ReportHandler))).Methods("POST")
	v1.Handle("/moderation/report/revoke", session(http.HandlerFunc(m.RevokeHandler))).Methods("POST")
	v1.Handle("/moderation/reports", admin(http.HandlerFunc(m.ListHandler))).Methods("GET")
	v1.Handle("/moderation/reports/{id}", admin(http.HandlerFunc(m.GetHandler))).Methods("GET")
	v1.Handle("/moderation/reports/{id}/action", admin(http.HandlerFunc(m.ActionHandler))).Methods("POST")

	v1.HandleFunc("/boards", b.ListHandler).Methods("GET")
	v1.HandleFunc("/boards/{title}", b.GetHandler).Methods("GET")
	v1.HandleFunc("/leaderboard", b.LeaderboardHandler).Methods("GET")

	v1.Handle("/notifications", session(http.HandlerFunc(n.ListHandler))).Methods("GET")
	v1.Handle("/notifications/{id}/read", session(http.HandlerFunc(n.MarkReadHandler))).Methods("PUT")

	return r
}

// Shutdown stops background jobs, drains pending notifications and
// disconnects from the database
func (a *App) Shutdown(ctx context.Context) {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.Engagement != nil {
		a.Engagement.Wait()
	}
	if a.Moderation != nil {
		a.Moderation.Wait()
	}
	if a.client != nil {
		if err := a.client.Disconnect(ctx); err != nil {
			zap.S().With(err).Error("failed to disconnect from database")
		}
	}
}

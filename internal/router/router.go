package router

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	_ "mediation-cms/docs"

	cachemem "mediation-cms/internal/adapters/cache/memory"
	notifylog "mediation-cms/internal/adapters/notify/logging"
	blobmem "mediation-cms/internal/adapters/objectstore/memory"
	mem "mediation-cms/internal/adapters/storage/memory"
	pg "mediation-cms/internal/adapters/storage/postgres"
	"mediation-cms/internal/domain/cases"
	"mediation-cms/internal/domain/events"
	"mediation-cms/internal/domain/media"
	"mediation-cms/internal/domain/posts"
	"mediation-cms/internal/domain/submissions"
	"mediation-cms/internal/domain/users"
	"mediation-cms/internal/middleware"
	"mediation-cms/internal/platform/logger"
	"mediation-cms/internal/platform/metrics"
	"mediation-cms/internal/ports/auth"
	"mediation-cms/internal/web"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	Log logger.Logger // nil => Nop

	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)
	TokenIssuer  auth.TokenIssuer  // nil => login deshabilitado
	SecureCookie bool

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	Dedupe    submissions.Deduper  // nil => in-memory
	DedupeTTL time.Duration        // 0 => submissions.DefaultDedupeTTL
	Notifier  submissions.Notifier // nil => solo log
	Blobs     media.BlobStore      // nil => in-memory

	Metrics *metrics.Metrics // nil => registry propio

	// Admin inicial; vacío => no se crea.
	AdminEmail    string
	AdminPassword string

	SiteName string
}

func NewRouter(opts Options) (http.Handler, error) {
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}

	var (
		userRepo       users.Repository
		postRepo       posts.Repository
		eventRepo      events.Repository
		caseRepo       cases.Repository
		submissionRepo submissions.Repository
		mediaRepo      media.Repository
	)

	if opts.DB != nil {
		userRepo = pg.NewUsersRepo(opts.DB)
		postRepo = pg.NewPostsRepo(opts.DB)
		eventRepo = pg.NewEventsRepo(opts.DB)
		caseRepo = pg.NewCasesRepo(opts.DB)
		submissionRepo = pg.NewSubmissionsRepo(opts.DB)
		mediaRepo = pg.NewMediaRepo(opts.DB)
	} else {
		userRepo = mem.NewUserRepo()
		postRepo = mem.NewPostRepo()
		eventRepo = mem.NewEventRepo()
		caseRepo = mem.NewCaseRepo()
		submissionRepo = mem.NewSubmissionRepo()
		mediaRepo = mem.NewMediaRepo()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLog(log))
	r.Use(middleware.Recover(log))
	r.Use(m.Middleware)

	// El rol efectivo es el del registro guardado, no el del token.
	verifier := opts.AuthVerifier
	if verifier != nil {
		verifier = users.NewStoredRoleVerifier(verifier, userRepo)
	}
	r.Use(middleware.AuthContext(verifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", m.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	dedupe := opts.Dedupe
	if dedupe == nil {
		dedupe = cachemem.NewDedupe()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notifylog.New(log)
	}
	blobs := opts.Blobs
	if blobs == nil {
		blobs = blobmem.NewStore()
	}

	// Services por módulo
	usersSvc := users.NewService(userRepo)
	postsSvc := posts.NewService(postRepo)
	eventsSvc := events.NewService(eventRepo)
	casesSvc := cases.NewService(caseRepo)
	mediaSvc := media.NewService(mediaRepo, blobs, log)
	submissionsSvc := submissions.NewService(submissionRepo, submissions.Options{
		Dedupe:    dedupe,
		DedupeTTL: opts.DedupeTTL,
		Notifier:  notifier,
		Metrics:   m,
		Log:       log,
	})

	if opts.AdminEmail != "" {
		u, created, err := usersSvc.EnsureAdmin(context.Background(), opts.AdminEmail, opts.AdminPassword)
		if err != nil {
			return nil, fmt.Errorf("seed admin: %w", err)
		}
		if created {
			log.Info("admin user created", map[string]any{"user_id": u.ID, "email": u.Email})
		}
	}

	authDeps := users.HandlerDeps{
		Issuer:       opts.TokenIssuer,
		Log:          log,
		Metrics:      m,
		SecureCookie: opts.SecureCookie,
	}

	// Rutas por módulo
	users.RegisterRoutes(r, usersSvc, authDeps)
	posts.RegisterRoutes(r, postsSvc)
	events.RegisterRoutes(r, eventsSvc)
	cases.RegisterRoutes(r, casesSvc)
	submissions.RegisterRoutes(r, submissionsSvc, log)
	media.RegisterRoutes(r, mediaSvc, log)

	if err := web.RegisterRoutes(r, web.Deps{
		Posts:       postsSvc,
		Events:      eventsSvc,
		Submissions: submissionsSvc,
		Users:       usersSvc,
		Auth:        authDeps,
		Log:         log,
		SiteName:    opts.SiteName,
	}); err != nil {
		return nil, fmt.Errorf("web routes: %w", err)
	}

	return r, nil
}

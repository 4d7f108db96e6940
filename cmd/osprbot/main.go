/*
Copyright 2026 The Open edX Contributors.
SPDX-License-Identifier: Apache-2.0
*/

// Package main runs the pull request triage bot: a webhook server that
// reconciles each pull request event against its desired state, plus HTTP
// endpoints for batch rescans.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/chainguard-dev/clog"
	"github.com/go-chi/chi/v5"
	"github.com/google/go-github/v75/github"
	"github.com/sethvargo/go-envconfig"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/openedx/osprbot/ghproject"
	"github.com/openedx/osprbot/policy"
	"github.com/openedx/osprbot/reconciler"
	"github.com/openedx/osprbot/tracker"
	"github.com/openedx/osprbot/triage"
)

type config struct {
	Port int `env:"PORT,default=8080"`

	// GitHub authentication: either a GitHub App (all three app values)
	// or a plain token.
	GitHubToken       string `env:"GITHUB_TOKEN"`
	AppID             int64  `env:"GITHUB_APP_ID"`
	AppInstallationID int64  `env:"GITHUB_APP_INSTALLATION_ID"`
	AppPrivateKeyPath string `env:"GITHUB_APP_PRIVATE_KEY_PATH"`

	WebhookSecret string `env:"GITHUB_WEBHOOK_SECRET,required"`
	BotLogin      string `env:"BOT_LOGIN,default=openedx-webhooks"`

	JiraURL   string `env:"JIRA_URL,required"`
	JiraUser  string `env:"JIRA_USER,required"`
	JiraToken string `env:"JIRA_TOKEN,required"`

	OSPRProject    string `env:"OSPR_PROJECT,default=OSPR"`
	BlendedProject string `env:"BLENDED_PROJECT,default=BLENDED"`

	BoardOrg           string `env:"BOARD_ORG,default=openedx"`
	OSPRBoardNumber    int    `env:"OSPR_BOARD_NUMBER"`
	BlendedBoardNumber int    `env:"BLENDED_BOARD_NUMBER"`

	RegistryDir string `env:"REGISTRY_DIR,default=./registry"`
	SurveyURL   string `env:"SURVEY_URL"`
	DryRun      bool   `env:"DRY_RUN,default=false"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var cfg config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		clog.FatalContextf(ctx, "processing config: %v", err)
	}

	hc, err := githubHTTPClient(ctx, cfg)
	if err != nil {
		clog.FatalContextf(ctx, "building GitHub client: %v", err)
	}
	gh := reconciler.NewGitHub(
		github.NewClient(hc),
		githubv4.NewClient(hc),
		cfg.BotLogin,
	)

	tr, err := tracker.New(ctx, cfg.JiraURL, cfg.JiraUser, cfg.JiraToken)
	if err != nil {
		clog.FatalContextf(ctx, "building tracker client: %v", err)
	}

	reg, err := policy.LoadDir(cfg.RegistryDir)
	if err != nil {
		clog.FatalContextf(ctx, "loading registries from %s: %v", cfg.RegistryDir, err)
	}

	triageCfg := triage.Config{
		OSPRProject:    cfg.OSPRProject,
		BlendedProject: cfg.BlendedProject,
	}
	if cfg.OSPRBoardNumber > 0 {
		triageCfg.OSPRBoard = ghproject.Project{Org: cfg.BoardOrg, Number: cfg.OSPRBoardNumber}
	}
	if cfg.BlendedBoardNumber > 0 {
		triageCfg.BlendedBoard = ghproject.Project{Org: cfg.BoardOrg, Number: cfg.BlendedBoardNumber}
	}

	engine := reconciler.New(gh, reconciler.WrapTracker(tr), reg, triageCfg,
		reconciler.WithSurveyURL(cfg.SurveyURL),
		reconciler.WithDryRun(cfg.DryRun),
	)

	srv := &server{
		engine:        engine,
		webhookSecret: []byte(cfg.WebhookSecret),
	}

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Post("/webhook", srv.handleWebhook)
	r.Post("/rescan/{owner}/{repo}", srv.handleRescanRepo)
	r.Post("/rescan/{org}", srv.handleRescanOrg)

	httpSrv := &http.Server{
		Addr:        ":" + strconv.Itoa(cfg.Port),
		Handler:     r,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	clog.InfoContextf(ctx, "Starting triage bot on port %d (dry-run: %t)", cfg.Port, cfg.DryRun)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		clog.FatalContextf(ctx, "server failed: %v", err)
	}
}

// githubHTTPClient builds the authenticated HTTP client, preferring GitHub
// App credentials when configured.
func githubHTTPClient(ctx context.Context, cfg config) (*http.Client, error) {
	if cfg.AppID != 0 {
		itr, err := ghinstallation.NewKeyFromFile(
			http.DefaultTransport, cfg.AppID, cfg.AppInstallationID, cfg.AppPrivateKeyPath)
		if err != nil {
			return nil, err
		}
		return &http.Client{Transport: itr}, nil
	}
	if cfg.GitHubToken == "" {
		return nil, errors.New("either GITHUB_APP_ID or GITHUB_TOKEN must be set")
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.GitHubToken})
	return oauth2.NewClient(ctx, ts), nil
}

type server struct {
	engine        *reconciler.Engine
	webhookSecret []byte
}

// handleWebhook validates and dispatches one GitHub event. A failed pass
// returns 500 so GitHub redelivers; reconciliation is idempotent, so the
// redelivery finishes whatever the failed pass started.
func (s *server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	payload, err := github.ValidatePayload(r, s.webhookSecret)
	if err != nil {
		clog.WarnContextf(ctx, "rejecting webhook: %v", err)
		http.Error(w, "invalid signature", http.StatusForbidden)
		return
	}
	event, err := github.ParseWebHook(github.WebHookType(r), payload)
	if err != nil {
		http.Error(w, "unparseable payload", http.StatusBadRequest)
		return
	}

	pre, ok := event.(*github.PullRequestEvent)
	if !ok {
		// Other event types are subscribed but uninteresting.
		w.WriteHeader(http.StatusNoContent)
		return
	}

	snap := triage.NewSnapshot(pre.GetPullRequest())
	out, err := s.engine.ReconcilePR(ctx, snap)
	if err != nil {
		clog.ErrorContextf(ctx, "reconciling %s: %v", snap, err)
		http.Error(w, "reconciliation failed", http.StatusInternalServerError)
		return
	}
	writeJSON(ctx, w, out)
}

func (s *server) handleRescanRepo(w http.ResponseWriter, r *http.Request) {
	opts, err := rescanOptions(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	report, err := s.engine.RescanRepo(r.Context(),
		chi.URLParam(r, "owner"), chi.URLParam(r, "repo"), opts)
	if err != nil {
		clog.ErrorContextf(r.Context(), "rescan failed: %v", err)
		http.Error(w, "rescan failed", http.StatusInternalServerError)
		return
	}
	writeJSON(r.Context(), w, report)
}

func (s *server) handleRescanOrg(w http.ResponseWriter, r *http.Request) {
	opts, err := rescanOptions(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	reports, err := s.engine.RescanOrg(r.Context(), chi.URLParam(r, "org"), opts)
	if err != nil {
		clog.ErrorContextf(r.Context(), "org rescan failed: %v", err)
		http.Error(w, "rescan failed", http.StatusInternalServerError)
		return
	}
	writeJSON(r.Context(), w, reports)
}

// rescanOptions parses the optional since/until date bounds, as
// YYYY-MM-DD.
func rescanOptions(r *http.Request) (reconciler.RescanOptions, error) {
	var opts reconciler.RescanOptions
	if v := r.URL.Query().Get("since"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return opts, errors.New("since must be YYYY-MM-DD")
		}
		opts.Since = t
	}
	if v := r.URL.Query().Get("until"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return opts, errors.New("until must be YYYY-MM-DD")
		}
		opts.Until = t
	}
	return opts, nil
}

func writeJSON(ctx context.Context, w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		clog.ErrorContextf(ctx, "encoding response: %v", err)
	}
}

package testserver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rpggio/jobsite/internal/app"
	"github.com/rpggio/jobsite/internal/config"
	"github.com/rpggio/jobsite/internal/sqlite"
	"github.com/rpggio/jobsite/internal/transport"
	"github.com/stretchr/testify/require"
)

// Tokens seeded for each role when auth is enabled.
var Tokens = map[string]string{
	"executive":         "exec-token",
	"project-executive": "pe-token",
	"project-manager":   "pm-token",
}

type TestServer struct {
	Server *httptest.Server
	App    *app.App
	DB     *sqlite.DB
	Config config.Config
}

// Option adjusts the configuration before the server is built.
type Option func(*config.Config)

// WithAuth enables bearer authentication.
func WithAuth() Option {
	return func(c *config.Config) { c.Auth.Enabled = true }
}

// WithStrictRoles rejects unknown roles.
func WithStrictRoles() Option {
	return func(c *config.Config) { c.Auth.StrictRoles = true }
}

// NewApp builds a seeded application on an in-memory database.
func NewApp(t *testing.T, opts ...Option) (*app.App, config.Config) {
	t.Helper()
	ctx := context.Background()

	cfg := config.Default()
	cfg.DB.Path = fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	cfg.Export.Delay = 0
	cfg.Export.Dir = t.TempDir()
	cfg.Sync.Delay = 0
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := sqlite.New(cfg.DB.Path)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.RunMigrations())
	_, err = app.Seed(ctx, db)
	require.NoError(t, err)

	a, err := app.New(ctx, cfg, db, nil)
	require.NoError(t, err)

	if cfg.Auth.Enabled {
		for role, token := range Tokens {
			require.NoError(t, a.APIKeys.Add(ctx, token, role+"-user", role, "test"))
		}
	}
	return a, cfg
}

// New starts a seeded REST server.
func New(t *testing.T, opts ...Option) *TestServer {
	t.Helper()
	a, cfg := NewApp(t, opts...)

	srvCfg := transport.Config{
		Modules:    a.Modules,
		Activity:   a.Activity,
		Scopes:     a.Scopes,
		RoleHeader: cfg.Auth.RoleHeader,
	}
	if cfg.Auth.Enabled {
		srvCfg.Auth = transport.AuthMiddleware(a.APIKeys)
	}
	server := httptest.NewServer(transport.NewServer(srvCfg))
	t.Cleanup(server.Close)

	return &TestServer{
		Server: server,
		App:    a,
		DB:     a.DB,
		Config: cfg,
	}
}

// Do sends a request as role. With auth enabled the role's token is used,
// otherwise the role header.
func (ts *TestServer) Do(t *testing.T, method, path, role string, body io.Reader) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, ts.Server.URL+path, body)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		if ts.Config.Auth.Enabled {
			req.Header.Set("Authorization", "Bearer "+Tokens[role])
		} else {
			req.Header.Set(ts.Config.Auth.RoleHeader, role)
		}
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

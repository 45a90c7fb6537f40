package e2e_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyfold/keyfold/internal/api"
	"github.com/keyfold/keyfold/internal/factory"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
	tokenFile  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(projectRoot, "bin", "keyfold-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/cli")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	// Create temp token file
	tokenFile := filepath.Join(t.TempDir(), "token")

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		tokenFile:  tokenFile,
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func (r *cliRunner) runWithToken(token string, args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token", token,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	server   *http.Server
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	app, err := factory.New(context.Background(), factory.Config{Logger: logger})
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:   logger,
		Accounts: app.Accounts,
		Sessions: app.Sessions,
		Mailer:   app.Mailer,
	})

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server
	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	// Wait for server to be ready
	serverURL := "http://" + addr
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		server: server,
		addr:   serverURL,
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing

type accountResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type authResponse struct {
	Username     string `json:"username"`
	SessionToken string `json:"session_token"`
}

type profileResponse struct {
	Username  string `json:"username"`
	ExpiresAt string `json:"session_expires_at"`
}

type resetResponse struct {
	Username    string `json:"username"`
	NewPassword string `json:"new_password"`
	Delivery    string `json:"delivery"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_SignupLoginWhoami(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Signup
	output, err := cli.run("signup", "--user", "alice", "--pass", "secret123")
	require.NoError(t, err, "output: %s", output)

	var account accountResponse
	require.NoError(t, json.Unmarshal([]byte(output), &account))
	assert.Equal(t, "alice", account.Username)
	assert.NotZero(t, account.ID)

	// Login (token should be saved in the token file)
	output, err = cli.run("login", "--user", "alice", "--pass", "secret123")
	require.NoError(t, err, "output: %s", output)

	var auth authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &auth))
	assert.Equal(t, "alice", auth.Username)
	assert.NotEmpty(t, auth.SessionToken)

	// Whoami using the saved token
	output, err = cli.run("whoami")
	require.NoError(t, err, "output: %s", output)

	var profile profileResponse
	require.NoError(t, json.Unmarshal([]byte(output), &profile))
	assert.Equal(t, "alice", profile.Username)
}

func TestCLI_UpdateCredentials(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("signup", "--user", "alice", "--pass", "secret123")
	require.NoError(t, err, "output: %s", output)
	output, err = cli.run("login", "--user", "alice", "--pass", "secret123")
	require.NoError(t, err, "output: %s", output)

	// Update saves the reissued token, so whoami keeps working
	output, err = cli.run("update", "--user", "alicia", "--pass", "evenmoresecret")
	require.NoError(t, err, "output: %s", output)

	var auth authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &auth))
	assert.Equal(t, "alicia", auth.Username)

	output, err = cli.run("whoami")
	require.NoError(t, err, "output: %s", output)

	var profile profileResponse
	require.NoError(t, json.Unmarshal([]byte(output), &profile))
	assert.Equal(t, "alicia", profile.Username)

	// Old credentials no longer log in
	output, err = cli.run("login", "--user", "alice", "--pass", "secret123")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "invalid")

	// New ones do
	output, err = cli.run("login", "--user", "alicia", "--pass", "evenmoresecret")
	require.NoError(t, err, "output: %s", output)
}

func TestCLI_Logout(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("signup", "--user", "alice", "--pass", "secret123")
	require.NoError(t, err, "output: %s", output)
	output, err = cli.run("login", "--user", "alice", "--pass", "secret123")
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("logout")
	require.NoError(t, err, "output: %s", output)

	var msgResp messageResponse
	require.NoError(t, json.Unmarshal([]byte(output), &msgResp))
	assert.Equal(t, "Logged out", msgResp.Message)

	// The stored token is gone, so whoami is unauthenticated
	output, err = cli.run("whoami")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "auth")
}

func TestCLI_ResetPassword(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("signup", "--user", "alice", "--pass", "secret123")
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("reset-password", "--user", "alice")
	require.NoError(t, err, "output: %s", output)

	var reset resetResponse
	require.NoError(t, json.Unmarshal([]byte(output), &reset))
	assert.Equal(t, "alice", reset.Username)
	assert.Equal(t, "response", reset.Delivery)
	require.NotEmpty(t, reset.NewPassword)

	// Only the reset password authenticates now
	output, err = cli.run("login", "--user", "alice", "--pass", "secret123")
	assert.Error(t, err)

	output, err = cli.run("login", "--user", "alice", "--pass", reset.NewPassword)
	require.NoError(t, err, "output: %s", output)
}

func TestCLI_SeparateSessions(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli1 := newCLIRunner(t, ts.addr)
	cli2 := &cliRunner{
		binaryPath: cli1.binaryPath,
		serverURL:  cli1.serverURL,
		tokenFile:  filepath.Join(t.TempDir(), "token2"),
	}

	output, err := cli1.run("signup", "--user", "alice", "--pass", "secret123")
	require.NoError(t, err, "output: %s", output)
	output, err = cli2.run("signup", "--user", "bob", "--pass", "bobsecret")
	require.NoError(t, err, "output: %s", output)

	output, err = cli1.run("login", "--user", "alice", "--pass", "secret123")
	require.NoError(t, err, "output: %s", output)
	var auth1 authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &auth1))

	output, err = cli2.run("login", "--user", "bob", "--pass", "bobsecret")
	require.NoError(t, err, "output: %s", output)
	var auth2 authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &auth2))

	assert.NotEqual(t, auth1.SessionToken, auth2.SessionToken)

	// Alice logging out does not touch Bob's session
	_, err = cli1.run("logout")
	require.NoError(t, err)

	output, err = cli2.run("whoami")
	require.NoError(t, err, "output: %s", output)
	var profile profileResponse
	require.NoError(t, json.Unmarshal([]byte(output), &profile))
	assert.Equal(t, "bob", profile.Username)
}

func TestCLI_ErrorHandling(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Whoami without a session
	output, err := cli.run("whoami")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "auth")

	// Duplicate signup
	output, err = cli.run("signup", "--user", "alice", "--pass", "secret123")
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("signup", "--user", "alice", "--pass", "other")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "taken")

	// Explicit token override beats the token file
	output, err = cli.runWithToken("sess_forged", "whoami")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "session")
}

package keyward_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aussiebroadwan/keyward/pkg/keywardsdk"
)

/*
 * Common constants and helper functions for keyward end-to-end tests.
 * This includes container setup, service operations, and assertions.
 */

const (
	testImageName = "keyward-test:latest"

	adminSecret = "test-admin-secret-12345"
	masterKey   = "e2e-master-key-material-0123456789abcdef"
)

// TestMain builds the Docker image once before all tests and removes it
// after all tests complete.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building keyward Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up keyward Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/keyward/Dockerfile",
		"../../../")
	cmd.Dir = "."
	cmd.Stdout = os.Stdout
	cmd.Stderr = nil

	return cmd.Run()
}

func cleanupDockerImage() {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // Ignore errors - image might not exist
}

// defaultEnv keeps the container off the network: the local clock is the
// only time source.
func defaultEnv() map[string]string {
	return map[string]string{
		"KEYWARD_DATABASE_FILE": "/data/keyward.db",
		"KEYWARD_MASTER_KEY":    masterKey,
		"KEYWARD_ADMIN_SECRET":  adminSecret,
		"KEYWARD_TIME_SOURCES":  "system",
		"ENV":                   "test",
		"LOG_LEVEL":             "info",
		"LOG_FORMAT":            "json",
		// Relaxed admin limits; the tests call the admin API in quick succession
		"RATELIMIT_ADMIN_REQUESTS": "1000",
		"RATELIMIT_ADMIN_BURST":    "1000",
	}
}

// setupKeywardContainer starts keyward in a container and returns the base URL.
func setupKeywardContainer(t *testing.T, overrides map[string]string) (string, func()) {
	t.Helper()
	ctx := context.Background()

	env := defaultEnv()
	for k, v := range overrides {
		env[k] = v
	}

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env:          env,
		WaitingFor: wait.ForHTTP("/livez").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	baseURL := fmt.Sprintf("http://%s:%s", host, mappedPort.Port())

	cleanup := func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return baseURL, cleanup
}

// provisionClient creates an api key through the admin API and returns a
// client that signs with it.
func provisionClient(t *testing.T, baseURL string) (*keywardsdk.SDKClient, *keywardsdk.AdminSession) {
	t.Helper()

	admin := keywardsdk.NewSDKClient(baseURL, "", "").NewAdminSession(adminSecret, "")
	created, err := admin.CreateAPIKey(t.Context(), keywardsdk.CreateAPIKeyRequest{Name: "e2e loader", RPM: 1000})
	require.NoError(t, err, "Creating an api key should succeed")
	require.NotEmpty(t, created.Secret)

	return keywardsdk.NewSDKClient(baseURL, created.APIKey.ID, created.Secret), admin
}

// assertHealthy verifies a health check response is OK.
func assertHealthy(t *testing.T, health *keywardsdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
}

// assertAPIError checks the error carries the given status and code.
func assertAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()
	var apiErr *keywardsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, status, apiErr.StatusCode)
	require.Equal(t, code, apiErr.Code)
}

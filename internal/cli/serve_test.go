package cli

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/adyen/storefront-e2e/internal/config"
	"github.com/adyen/storefront-e2e/internal/handlers"
	"github.com/adyen/storefront-e2e/internal/logging"
	"github.com/adyen/storefront-e2e/internal/models"
	"github.com/adyen/storefront-e2e/internal/repository"
	"github.com/adyen/storefront-e2e/internal/services"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// mockHandler creates a simple test handler
func mockHandler(response string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(response))
	})
}

// createTestDeps creates ServerDependencies with a mock handler for testing
func createTestDeps(port string) ServerDependencies {
	return ServerDependencies{
		ServerConfig: config.ServerConfig{Port: port},
		Handler:      mockHandler("storefront"),
	}
}

// startTestServer starts a server with the given dependencies and returns listener, server, and port
func startTestServer(t *testing.T, deps ServerDependencies) (net.Listener, *http.Server, int) {
	t.Helper()
	listener, server, err := StartServer(deps)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	return listener, server, port
}

// httpGet makes an HTTP GET request and returns response body and status
func httpGet(t *testing.T, url string) (string, int) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("Failed to make request to %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return string(body), resp.StatusCode
}

func TestStartServer_SuccessfulStartup(t *testing.T) {
	// GIVEN
	deps := createTestDeps("0")

	// WHEN
	listener, server, port := startTestServer(t, deps)
	defer listener.Close()
	defer server.Close()

	// THEN
	if port == 0 {
		t.Error("Expected non-zero port")
	}

	body, status := httpGet(t, fmt.Sprintf("http://localhost:%d/", port))
	if status != http.StatusOK {
		t.Errorf("Expected status 200, got %d", status)
	}
	if body != "storefront" {
		t.Errorf("Expected 'storefront', got '%s'", body)
	}
}

func TestStartServer_MissingHandler(t *testing.T) {
	// GIVEN
	deps := ServerDependencies{ServerConfig: config.ServerConfig{Port: "0"}}

	// WHEN
	_, _, err := StartServer(deps)

	// THEN
	if err == nil {
		t.Error("Expected error without a handler, got nil")
	}
}

func TestStartServer_InvalidPort(t *testing.T) {
	// GIVEN
	deps := createTestDeps("99999")

	// WHEN
	listener, server, err := StartServer(deps)

	// THEN
	if err == nil {
		listener.Close()
		server.Close()
		t.Error("Expected error for invalid port, got nil")
	}
}

func TestStartServer_PortAlreadyInUse(t *testing.T) {
	// GIVEN
	existingListener, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("Failed to create test listener: %v", err)
	}
	defer existingListener.Close()
	port := existingListener.Addr().(*net.TCPAddr).Port

	deps := createTestDeps(fmt.Sprintf("%d", port))

	// WHEN
	listener, server, err := StartServer(deps)

	// THEN
	if err == nil {
		listener.Close()
		server.Close()
		t.Error("Expected error for port already in use, got nil")
	}
}

func TestStartServer_ServesStorefront(t *testing.T) {
	// GIVEN
	catalog := models.DefaultCatalog()
	store, err := handlers.NewStorefront(handlers.Options{
		Auth:    services.NewAuthService(),
		Orders:  services.NewOrderService(repository.NewMemoryOrderRepository(), catalog),
		Catalog: catalog,
	})
	if err != nil {
		t.Fatalf("Failed to build storefront: %v", err)
	}
	deps := ServerDependencies{
		ServerConfig: config.ServerConfig{Port: "0"},
		Handler:      store.Routes(),
	}

	// WHEN
	listener, server, port := startTestServer(t, deps)
	defer listener.Close()
	defer server.Close()

	// THEN
	testCases := []struct {
		path     string
		status   int
		contains string
	}{
		{"/", http.StatusOK, `data-test="login-button"`},
		{"/healthz", http.StatusOK, `"status":"ok"`},
		{"/nope", http.StatusNotFound, "No page at /nope"},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			body, status := httpGet(t, fmt.Sprintf("http://localhost:%d%s", port, tc.path))
			if status != tc.status {
				t.Errorf("Expected status %d, got %d", tc.status, status)
			}
			if !strings.Contains(body, tc.contains) {
				t.Errorf("Expected body to contain %q, got %q", tc.contains, body)
			}
		})
	}
}

func TestStartServer_ConcurrentServers(t *testing.T) {
	// GIVEN
	deps1 := createTestDeps("0")
	deps1.Handler = mockHandler("server1")

	deps2 := createTestDeps("0")
	deps2.Handler = mockHandler("server2")

	// WHEN
	listener1, server1, port1 := startTestServer(t, deps1)
	defer listener1.Close()
	defer server1.Close()

	listener2, server2, port2 := startTestServer(t, deps2)
	defer listener2.Close()
	defer server2.Close()

	// THEN
	if port1 == port2 {
		t.Error("Both servers got the same port")
	}
	if body, _ := httpGet(t, fmt.Sprintf("http://localhost:%d/", port1)); body != "server1" {
		t.Errorf("Server 1 returned wrong response: %s", body)
	}
	if body, _ := httpGet(t, fmt.Sprintf("http://localhost:%d/", port2)); body != "server2" {
		t.Errorf("Server 2 returned wrong response: %s", body)
	}
}

func TestWaitForShutdown_Signals(t *testing.T) {
	tests := []struct {
		name   string
		signal os.Signal
	}{
		{"SIGTERM", syscall.SIGTERM},
		{"SIGINT", syscall.SIGINT},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// GIVEN
			core, logs := observer.New(zapcore.InfoLevel)
			listener, server, _ := startTestServer(t, createTestDeps("0"))
			defer listener.Close()

			shutdown := make(chan os.Signal, 1)

			// WHEN
			errCh := make(chan error, 1)
			go func() {
				errCh <- WaitForShutdown(server, shutdown, logging.NewWithCore(core, false))
			}()
			shutdown <- tt.signal

			// THEN
			select {
			case err := <-errCh:
				if err != nil {
					t.Errorf("Expected nil error, got: %v", err)
				}
			case <-time.After(5 * time.Second):
				t.Fatal("WaitForShutdown did not complete")
			}
			if logs.FilterMessage("server stopped").Len() != 1 {
				t.Error("Expected a server stopped log entry")
			}
		})
	}
}

func TestWaitForShutdown_WithActiveRequests(t *testing.T) {
	// GIVEN
	deps := createTestDeps("0")
	deps.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.Write([]byte("done"))
	})

	listener, server, port := startTestServer(t, deps)
	defer listener.Close()

	requestComplete := make(chan error, 1)
	go func() {
		resp, err := http.Get(fmt.Sprintf("http://localhost:%d/", port))
		if err == nil {
			resp.Body.Close()
		}
		requestComplete <- err
	}()
	time.Sleep(50 * time.Millisecond)

	shutdown := make(chan os.Signal, 1)

	// WHEN
	errCh := make(chan error, 1)
	go func() {
		errCh <- WaitForShutdown(server, shutdown, nil)
	}()
	shutdown <- syscall.SIGTERM

	// THEN
	select {
	case err := <-requestComplete:
		if err != nil {
			t.Errorf("Active request failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("Request did not complete in time")
	}

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Expected nil error, got: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("WaitForShutdown did not complete")
	}
}

func TestWaitForShutdownWithTimeout_ForcesClose(t *testing.T) {
	// GIVEN a handler that outlives the shutdown timeout
	release := make(chan struct{})
	defer close(release)
	deps := createTestDeps("0")
	deps.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})

	core, logs := observer.New(zapcore.InfoLevel)
	listener, server, port := startTestServer(t, deps)
	defer listener.Close()

	go func() {
		resp, err := http.Get(fmt.Sprintf("http://localhost:%d/", port))
		if err == nil {
			resp.Body.Close()
		}
	}()
	time.Sleep(50 * time.Millisecond)

	shutdown := make(chan os.Signal, 1)
	shutdown <- syscall.SIGTERM

	// WHEN
	err := WaitForShutdownWithTimeout(server, shutdown, 50*time.Millisecond, logging.NewWithCore(core, false))

	// THEN
	if err != nil {
		t.Errorf("Expected nil error after forced close, got: %v", err)
	}
	if logs.FilterMessage("graceful shutdown failed, closing").Len() != 1 {
		t.Error("Expected the forced close to be logged")
	}
}

func TestWaitForShutdown_AlreadyClosedServer(t *testing.T) {
	// GIVEN
	listener, server, _ := startTestServer(t, createTestDeps("0"))
	listener.Close()
	server.Close()

	shutdown := make(chan os.Signal, 1)
	shutdown <- syscall.SIGTERM

	// WHEN
	err := WaitForShutdown(server, shutdown, nil)

	// THEN
	if err != nil {
		t.Logf("Got error (expected for closed server): %v", err)
	}
}

func TestRunServe_StartupFailure(t *testing.T) {
	// GIVEN
	deps := createTestDeps("99999")

	// WHEN
	err := RunServe(deps)

	// THEN
	if err == nil {
		t.Error("Expected error for invalid port, got nil")
	}
}

func TestRunServe_FullIntegration(t *testing.T) {
	// GIVEN
	deps := createTestDeps("0")

	// WHEN
	errCh := make(chan error, 1)
	go func() {
		errCh <- RunServe(deps)
	}()
	time.Sleep(100 * time.Millisecond)

	p, err := os.FindProcess(os.Getpid())
	if err != nil {
		t.Fatalf("Failed to get process: %v", err)
	}
	if err := p.Signal(syscall.SIGTERM); err != nil {
		t.Fatalf("Failed to send signal: %v", err)
	}

	// THEN
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Expected nil error, got: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Server did not shut down within timeout")
	}
}

// BenchmarkStartServer benchmarks server startup
func BenchmarkStartServer(b *testing.B) {
	deps := createTestDeps("0")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		listener, server, err := StartServer(deps)
		if err != nil {
			b.Fatalf("Failed to start server: %v", err)
		}
		server.Close()
		listener.Close()
	}
}

// Package main wires the parley terminal chat client: configuration,
// encrypted credential store, connector tools, the response client and
// the Bubble Tea UI.
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/joho/godotenv"

	"parley/internal/chat"
	"parley/internal/config"
	"parley/internal/keystore"
	"parley/internal/metrics"
	"parley/internal/realtime"
	"parley/internal/responses"
	"parley/internal/tool"
	"parley/internal/tool/github"
	"parley/internal/tool/hackernews"
	"parley/internal/tool/mcp"
	"parley/internal/ui"
	"parley/internal/ui/services"
)

// Dependencies holds the components required to run the application.
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger
	Store  *keystore.Store
	Client *responses.Client
	UI     *ui.UI
}

// storeCredentials resolves the API key from the keystore with an
// environment fallback.
type storeCredentials struct {
	store *keystore.Store
}

func (c storeCredentials) APIKey() string {
	if key := c.store.APIKey(); key != "" {
		return key
	}
	return os.Getenv("OPENAI_API_KEY")
}

func (c storeCredentials) SetAPIKey(key string) error {
	return c.store.Set(keystore.KeyOpenAIAPIKey, key)
}

func createLogger(dir string) *slog.Logger {
	// The TUI owns the terminal, so logs go to a file next to the config.
	level := slog.LevelInfo
	if os.Getenv("PARLEY_LOG") == "debug" {
		level = slog.LevelDebug
	}

	f, err := os.OpenFile(filepath.Join(dir, "parley.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
}

func createKeystore(dir string) (*keystore.Store, error) {
	var key []byte
	if encoded := os.Getenv("PARLEY_KEYSTORE_KEY"); encoded != "" {
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("PARLEY_KEYSTORE_KEY is not valid base64: %w", err)
		}
		key = decoded
	} else {
		generated, err := keystore.MachineKey(filepath.Join(dir, "keystore.key"))
		if err != nil {
			return nil, err
		}
		key = generated
	}

	return keystore.Open(filepath.Join(dir, "keystore.json"), key)
}

func createTools(ctx context.Context, cfg *config.Config, store *keystore.Store, logger *slog.Logger) []tool.Tool {
	httpClient := &http.Client{Timeout: 30 * time.Second}

	tools := []tool.Tool{
		hackernews.NewSearchTool(httpClient, cfg.Connectors.HackerNewsBaseURL),
		hackernews.NewTopStoriesTool(httpClient, cfg.Connectors.HackerNewsBaseURL),
	}

	if cfg.Connectors.GitHubEnabled {
		token, _ := store.Get(keystore.KeyGitHubToken)
		if token == "" {
			token = os.Getenv("GITHUB_TOKEN")
		}
		tools = append(tools,
			github.NewListFilesTool(token),
			github.NewReadFileTool(token),
		)
	}

	for _, server := range cfg.Connectors.MCPServers {
		client := mcp.NewClient(server.URL, httpClient, logger)
		if err := client.Initialize(ctx); err != nil {
			logger.Warn("mcp server unreachable, skipping", "server", server.Name, "error", err)
			continue
		}
		remote, err := client.Tools(ctx, server.Name)
		if err != nil {
			logger.Warn("mcp tool listing failed, skipping", "server", server.Name, "error", err)
			continue
		}
		tools = append(tools, remote...)
	}

	return tools
}

func main() {
	_ = godotenv.Load()

	voiceMode := flag.Bool("voice", false, "provision a realtime voice session and print its connection details")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		fmt.Fprintf(os.Stderr, "Using default configuration.\n")
		cfg = config.DefaultConfig()
	}

	dir, err := config.Dir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot resolve config directory: %v\n", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot create config directory: %v\n", err)
		os.Exit(1)
	}

	logger := createLogger(dir)

	store, err := createKeystore(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot open keystore: %v\n", err)
		os.Exit(1)
	}

	if *voiceMode {
		runVoice(cfg, store, logger)
		return
	}

	recorder := metrics.NewRecorder()
	client := responses.NewClient(
		responses.WithBaseURL(cfg.Chat.BaseURL),
		responses.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Chat.RequestTimeoutSeconds) * time.Second}),
		responses.WithLogger(logger),
		responses.WithRecorder(recorder),
	)

	channels := ui.NewUIChannels()
	renderer := services.NewGlamourRenderer()
	userInterface := ui.NewUI(channels, renderer, func() spinner.Model {
		return spinner.New(spinner.WithSpinner(spinner.Dot))
	}, cfg.Chat.Model)

	deps := Dependencies{
		Config: cfg,
		Logger: logger,
		Store:  store,
		Client: client,
		UI:     userInterface,
	}

	runInteractive(context.Background(), deps)
}

func runInteractive(ctx context.Context, deps Dependencies) {
	ctrlCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		<-deps.UI.Ready()

		deps.UI.WriteStatus("thinking", "Initializing connectors...")
		tools := createTools(ctrlCtx, deps.Config, deps.Store, deps.Logger)
		registry := tool.NewRegistry(tools, deps.Logger)
		deps.Logger.Info("connectors ready", "tools", len(registry.Definitions()))

		controller := chat.New(
			deps.Client,
			registry,
			deps.UI,
			storeCredentials{store: deps.Store},
			deps.Config.Chat,
			deps.Logger,
		)

		deps.UI.WriteStatus("ready", "Ready")
		if err := controller.Run(ctrlCtx); err != nil && ctrlCtx.Err() == nil {
			deps.Logger.Error("controller stopped", "error", err)
		}
	}()

	// Run UI in main goroutine (blocks until exit)
	if err := deps.UI.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running UI: %v\n", err)
		os.Exit(1)
	}

	cancel()
	wg.Wait()
}

// runVoice provisions a realtime session (503s retried with fixed
// backoff), verifies the websocket handshake with the ephemeral
// secret, and prints the connection details. Audio capture is handled
// by a companion client, not this binary.
func runVoice(cfg *config.Config, store *keystore.Store, logger *slog.Logger) {
	creds := storeCredentials{store: store}
	apiKey := creds.APIKey()
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "Error: no API key configured (set OPENAI_API_KEY or the keystore entry)")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := realtime.NewSessionClient(realtime.WithLogger(logger))
	session, err := client.Create(ctx, apiKey, realtime.SessionConfig{
		Model: cfg.Realtime.Model,
		Voice: cfg.Realtime.Voice,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create realtime session: %v\n", err)
		os.Exit(1)
	}

	conn, err := realtime.Connect(ctx, realtime.DefaultWebsocketURL, session, cfg.Realtime.Model, cfg.Realtime.Voice)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: realtime websocket handshake failed: %v\n", err)
		os.Exit(1)
	}
	conn.Close()

	out, _ := json.MarshalIndent(map[string]any{
		"session_id":    session.ID,
		"model":         session.Model,
		"voice":         cfg.Realtime.Voice,
		"client_secret": session.ClientSecret.Value,
		"expires_at":    session.ClientSecret.ExpiresAt,
		"websocket_url": realtime.DefaultWebsocketURL,
		"websocket_ok":  true,
	}, "", "  ")
	fmt.Println(string(out))
}

/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/josephgoksu/taskmate/internal/agent"
	"github.com/josephgoksu/taskmate/internal/config"
	"github.com/josephgoksu/taskmate/internal/events"
	"github.com/josephgoksu/taskmate/internal/llm"
	"github.com/josephgoksu/taskmate/internal/logger"
	"github.com/josephgoksu/taskmate/internal/policy"
	"github.com/josephgoksu/taskmate/internal/search"
	"github.com/josephgoksu/taskmate/internal/server"
	"github.com/josephgoksu/taskmate/internal/task"
	"github.com/josephgoksu/taskmate/internal/taskclient"
	"github.com/josephgoksu/taskmate/internal/telemetry"
	"github.com/josephgoksu/taskmate/internal/tools"
)

// auditCapacity bounds the in-memory policy decision log.
const auditCapacity = 500

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the task API and chat server",
	Long: `Start the HTTP server that hosts the task API, the chat endpoint and the
task event stream.

Chat needs a model provider key (OPENAI_API_KEY, ANTHROPIC_API_KEY or
GEMINI_API_KEY, or llm.provider=ollama). Without one the server still runs
and /chat answers 503.

Examples:
  taskmate serve
  taskmate serve --port 8080`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", config.DefaultPort, "port to listen on")
	serveCmd.Flags().String("host", "", "host to bind (default all interfaces)")
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
}

// app is the wired server and everything that must be released with it.
type app struct {
	server    *server.Server
	tasks     *task.Service
	telemetry telemetry.Client
	chatReady bool
	stop      context.CancelFunc
}

func (a *app) Close() {
	a.stop()
	_ = a.telemetry.Close()
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fsys := afero.NewOsFs()
	stateDir := config.GetStateDir()
	crash := logger.NewCrashReporter(fsys, stateDir)
	crash.SetVersion(version)
	defer crash.HandlePanic("serve")

	a, err := buildApp(cmd.Context(), cfg, fsys, crash)
	if err != nil {
		return err
	}
	defer a.Close()

	var wg sync.WaitGroup
	errChan := make(chan error, 1)
	a.server.Start(&wg, errChan)

	cmd.Printf("Taskmate listening on %s\n", a.server.Addr())
	if !a.chatReady {
		cmd.Println("Chat is disabled: no model provider configured.")
	}
	a.telemetry.Track(telemetry.EventServerStart, telemetry.Properties{
		"transport":  cfg.Tools.Transport,
		"chat_ready": a.chatReady,
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var runErr error
	select {
	case sig := <-sigChan:
		slog.Info("shutting down", "signal", sig.String())
	case runErr = <-errChan:
		slog.Error("server stopped", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		slog.Warn("server shutdown", "error", err)
	}
	wg.Wait()
	return runErr
}

// buildApp is the composition root: it wires the store, event bus, tools,
// agent, policy, telemetry and HTTP server from cfg.
func buildApp(ctx context.Context, cfg config.AppConfig, fsys afero.Fs, crash *logger.CrashReporter) (*app, error) {
	bgCtx, stop := context.WithCancel(context.Background())

	bus := events.NewBus()
	svc := task.NewService(task.NewMemoryStore(), events.NewTaskPublisher(bus))

	seed, err := seedTasks(fsys, cfg.Tasks)
	if err != nil {
		stop()
		return nil, err
	}
	if err := svc.Seed(seed); err != nil {
		stop()
		return nil, fmt.Errorf("seed tasks: %w", err)
	}

	var audit *policy.AuditLog
	var guard agent.Guard
	if cfg.Policy.Dir != "" {
		audit = policy.NewAuditLog(auditCapacity)
		engine, err := policy.NewEngine(ctx, policy.EngineConfig{Dir: cfg.Policy.Dir, Fs: fsys, Audit: audit})
		if err != nil {
			stop()
			return nil, fmt.Errorf("policy engine: %w", err)
		}
		slog.Info("policies loaded", "dir", cfg.Policy.Dir, "count", engine.PolicyCount())
		guard = agent.NewPolicyGuard(engine)
	}

	tc := newTelemetry(fsys, cfg)
	telemetry.Forward(bgCtx, bus, tc)

	opts := server.Options{
		Host:               cfg.Server.Host,
		Port:               cfg.Server.Port,
		AllowedOrigins:     cfg.Server.AllowedOrigins,
		AlwaysSignalUpdate: cfg.Chat.AlwaysSignalUpdate,
		Bus:                bus,
		Audit:              audit,
		Telemetry:          tc,
		Crash:              crash,
	}

	chat, err := newAgent(ctx, cfg, taskAPI(cfg, svc), guard)
	if err != nil {
		slog.Warn("chat disabled", "error", err)
	} else {
		opts.Chat = chat
	}

	return &app{
		server:    server.New(svc, opts),
		tasks:     svc,
		telemetry: tc,
		chatReady: opts.Chat != nil,
		stop:      stop,
	}, nil
}

// seedTasks returns the initial task list: the seed file when configured,
// otherwise the onboarding tasks unless they are disabled.
func seedTasks(fsys afero.Fs, cfg config.TasksConfig) ([]task.Task, error) {
	if cfg.SeedFile != "" {
		tasks, err := task.LoadSeedFile(fsys, cfg.SeedFile)
		if err != nil {
			return nil, fmt.Errorf("load seed file: %w", err)
		}
		return tasks, nil
	}
	if cfg.Onboarding {
		return task.OnboardingTasks(), nil
	}
	return nil, nil
}

// taskAPI picks the transport the agent's tools use to reach the tasks.
func taskAPI(cfg config.AppConfig, svc *task.Service) tools.TaskAPI {
	if cfg.Tools.Transport == config.TransportHTTP {
		base := config.ResolveBaseURL(cfg)
		slog.Debug("tools use the HTTP task API", "baseURL", base)
		return taskclient.New(base)
	}
	return tools.NewLocal(svc)
}

func newAgent(ctx context.Context, cfg config.AppConfig, api tools.TaskAPI, guard agent.Guard) (*agent.Agent, error) {
	llmCfg, err := config.LoadLLMConfig()
	if err != nil {
		return nil, err
	}
	chatModel, err := llm.NewChatModel(ctx, llmCfg)
	if err != nil {
		return nil, err
	}

	var searcher tools.Searcher
	if key := config.ResolveSearchAPIKey(cfg); key != "" {
		searcher = search.NewSearcher(search.NewTavilyProvider(key, cfg.Search.BaseURL, cfg.Search.MaxResults))
	}

	slog.Info("chat model ready", "provider", llmCfg.Provider, "model", llmCfg.Model, "webSearch", searcher != nil)
	return agent.New(ctx, agent.Config{
		Model:         chatModel,
		Tools:         tools.All(api, searcher),
		Memory:        agent.NewInMemoryHistory(cfg.Agent.HistoryLimit),
		Guard:         guard,
		MaxIterations: cfg.Agent.MaxIterations,
	})
}

// newTelemetry never fails the server: any error falls back to a no-op client.
func newTelemetry(fsys afero.Fs, cfg config.AppConfig) telemetry.Client {
	if cfg.Telemetry.APIKey == "" {
		return telemetry.NewNoopClient()
	}
	id, err := telemetry.LoadInstallID(fsys, config.GetStateDir())
	if err != nil {
		slog.Debug("telemetry disabled", "error", err)
		return telemetry.NewNoopClient()
	}
	c, err := telemetry.New(telemetry.ClientConfig{
		APIKey:     cfg.Telemetry.APIKey,
		Endpoint:   cfg.Telemetry.Endpoint,
		Version:    version,
		DistinctID: id,
	})
	if err != nil {
		slog.Debug("telemetry disabled", "error", err)
		return telemetry.NewNoopClient()
	}
	return c
}

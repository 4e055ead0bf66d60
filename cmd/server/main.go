package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/vibin/llm-agent/config"
	httpHandler "github.com/vibin/llm-agent/internal/adapters/primary/http"
	"github.com/vibin/llm-agent/internal/adapters/secondary/llm"
	"github.com/vibin/llm-agent/internal/adapters/secondary/repository"
	"github.com/vibin/llm-agent/internal/adapters/secondary/websearch"
	"github.com/vibin/llm-agent/internal/core/ports"
	"github.com/vibin/llm-agent/internal/core/services"
	"github.com/vibin/llm-agent/internal/logger"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to config file")
	debugMode := flag.Bool("debug", false, "Enable debug logging")
	noREPL := flag.Bool("no-repl", false, "Disable the interactive console")
	flag.Parse()

	// Setup logger
	logLevel := slog.LevelInfo
	if *debugMode {
		logLevel = slog.LevelDebug
	}
	log := logger.New(logLevel, os.Stderr)
	log.Info("Starting LLM agent")

	// Load configuration
	var cfg *config.Config
	var err error

	if *configPath != "" {
		log.Info("Loading configuration", "path", *configPath)
		cfg, err = config.LoadConfig(*configPath)
		if err != nil {
			log.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
	} else {
		log.Info("Using default configuration")
		cfg = config.DefaultConfig()
	}

	// Create LLM adapter
	llmAdapter, err := llm.NewOpenAIAdapter(&cfg.LLM, log)
	if err != nil {
		log.Error("Failed to initialize LLM adapter", "error", err)
		os.Exit(1)
	}

	// Create repository adapter
	var repoAdapter ports.ChatRepositoryPort
	switch cfg.History.Backend {
	case "sqlite":
		sqliteRepo, err := repository.NewSQLiteRepository(cfg.History.DBPath, log)
		if err != nil {
			log.Error("Failed to open chat database", "error", err)
			os.Exit(1)
		}
		defer sqliteRepo.Close()
		repoAdapter = sqliteRepo
	case "memory", "":
		repoAdapter = repository.NewInMemoryRepository(log)
	default:
		log.Warn("Unknown history backend, using in-memory storage", "backend", cfg.History.Backend)
		repoAdapter = repository.NewInMemoryRepository(log)
	}

	// Create the web search provider based on config
	log.Info("Initializing web search provider", "provider", cfg.WebSearch.Provider)
	var searchProvider ports.SearchProvider
	switch cfg.WebSearch.Provider {
	case "tavily":
		searchProvider = websearch.NewTavilyAdapter(&cfg.WebSearch, log)
	case "google":
		searchProvider = websearch.NewGoogleAdapter(&cfg.WebSearch, log)
	case "bing":
		searchProvider = websearch.NewBingAdapter(&cfg.WebSearch, log)
	case "duckduckgo":
		searchProvider = websearch.NewDuckDuckGoAdapter(log)
	case "serpapi", "":
		searchProvider = websearch.NewSerpAPIAdapter(&cfg.WebSearch, log)
	default:
		log.Warn("Unknown web search provider, falling back to SerpAPI", "provider", cfg.WebSearch.Provider)
		searchProvider = websearch.NewSerpAPIAdapter(&cfg.WebSearch, log)
	}

	// Register tools
	registry := services.NewToolRegistry(log)
	registry.Register(services.NewSearchService(searchProvider, log))

	// Create agent service and the shared console/web session
	agentService := services.NewAgentService(llmAdapter, repoAdapter, registry, cfg, log)

	startCtx, startCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defaultChat, err := agentService.CreateChat(startCtx, "Console session")
	startCancel()
	if err != nil {
		log.Error("Failed to create default chat", "error", err)
		os.Exit(1)
	}

	// Create HTTP handler and server
	handler := httpHandler.NewHandler(agentService, cfg, defaultChat.ID, log)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 600 * time.Second, // tool-calling turns can take a while
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Interactive console on stdin, sharing the web session
	if !*noREPL {
		go runConsole(agentService, defaultChat.ID, stop)
	}

	// Block until a signal is received or the console exits
	<-stop
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Server exited")
}

// runConsole reads prompts from stdin until EOF or an exit command,
// then nudges the main goroutine to shut down
func runConsole(agent *services.AgentService, chatID string, stop chan<- os.Signal) {
	fmt.Println("Assistant ready — type 'exit' to quit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		switch strings.ToLower(input) {
		case "exit", "quit", "bye":
			fmt.Println("Goodbye!")
			stop <- syscall.SIGTERM
			return
		}

		chat, err := agent.SendMessage(context.Background(), chatID, input)
		if err != nil {
			fmt.Printf("[Error: %v]\n", err)
			continue
		}
		fmt.Printf("Assistant: %s\n", chat.LastAssistantMessage())
	}

	stop <- syscall.SIGTERM
}

// Package mcp provides an MCP (Model Context Protocol) server exposing the
// ezdiff predictor and recovery simulator as tools.
package mcp

import (
	"context"
	"io"
	"log/slog"
	"os"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvandessel/ezdiff/internal/constants"
	"github.com/nvandessel/ezdiff/internal/ratelimit"
	"github.com/nvandessel/ezdiff/internal/store"
)

// Server wraps the MCP SDK server and provides ezdiff tools.
type Server struct {
	server       *sdk.Server
	store        store.RunStore
	sampleSizes  []int
	dataDir      string
	toolLimiters ratelimit.ToolLimiters
	audit        *AuditLogger
	logger       *slog.Logger
}

// Config holds server configuration.
type Config struct {
	Name        string         // Server name (e.g., "ezdiff")
	Version     string         // Server version
	Store       store.RunStore // Run history; nil disables saving and ezdiff_history
	DataDir     string         // Holds audit.jsonl and exports/; empty disables both
	SampleSizes []int          // Default sweep sizes; nil uses constants.DefaultSampleSizes
	Logger      *slog.Logger
}

// NewServer creates a new MCP server with ezdiff tools. The server does
// not take ownership of cfg.Store.
func NewServer(cfg *Config) (*Server, error) {
	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, nil)

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	sizes := cfg.SampleSizes
	if len(sizes) == 0 {
		sizes = constants.DefaultSampleSizes()
	}

	var audit *AuditLogger
	if cfg.DataDir != "" {
		audit = NewAuditLogger(cfg.DataDir)
	}

	s := &Server{
		server:       mcpServer,
		store:        cfg.Store,
		sampleSizes:  sizes,
		dataDir:      cfg.DataDir,
		toolLimiters: ratelimit.NewToolLimiters(),
		audit:        audit,
		logger:       logger,
	}

	s.registerTools()

	return s, nil
}

// Run starts the MCP server over stdio transport.
// This blocks until the client disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	notifySignals(sigChan)

	go func() {
		select {
		case <-sigChan:
			s.logger.Info("received signal, shutting down")
			cancel()
		case <-ctx.Done():
		}
	}()

	return s.server.Run(ctx, &sdk.StdioTransport{})
}

// Close releases the audit log.
func (s *Server) Close() error {
	return s.audit.Close()
}

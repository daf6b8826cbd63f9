package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/tgquest"
	"github.com/aretw0/tgquest/internal/logging"
	"github.com/aretw0/tgquest/pkg/domain"
	"github.com/aretw0/tgquest/pkg/ports"
	"github.com/aretw0/tgquest/pkg/runner"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"
)

const screensURI = "tgquest://screens"

// ReplyResponse is the structured result of the start and send tools.
type ReplyResponse struct {
	UserID   string     `json:"user_id" jsonschema_description:"The player the reply is addressed to"`
	ScreenID string     `json:"screen_id,omitempty" jsonschema_description:"The screen the player is on"`
	Text     string     `json:"text,omitempty" jsonschema_description:"Rendered screen text (HTML)"`
	Keyboard [][]string `json:"keyboard,omitempty" jsonschema_description:"Button labels, one slice per row"`
	Silent   bool       `json:"silent" jsonschema_description:"True when the message produced no reply"`
}

// Engine is what the MCP server drives.
type Engine interface {
	ports.QuestEngine
	Inspect() []string
	Document() *domain.QuestDocument
}

// Server exposes a quest as MCP tools so an agent can play or test it.
type Server struct {
	engine    Engine
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		engine:    engine,
		logger:    logger,
		mcpServer: server.NewMCPServer("tgquest-mcp", strings.TrimSpace(tgquest.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio serves on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over SSE on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	startTool := mcp.NewTool("start",
		mcp.WithDescription("Reset a player to the initial screen, as if they sent /start."),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("Player identifier")),
		mcp.WithOutputSchema[ReplyResponse](),
	)
	s.mcpServer.AddTool(startTool, mcp.NewStructuredToolHandler(s.handleStart))

	sendTool := mcp.NewTool("send",
		mcp.WithDescription("Send a message as a player. Pressing a button means sending its label."),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("Player identifier")),
		mcp.WithString("text", mcp.Required(), mcp.Description("Message text or button label")),
		mcp.WithOutputSchema[ReplyResponse](),
	)
	s.mcpServer.AddTool(sendTool, mcp.NewStructuredToolHandler(s.handleSend))

	s.mcpServer.AddTool(mcp.NewTool("list_screens",
		mcp.WithDescription("List the screen ids of the loaded quest in document order."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText(strings.Join(s.engine.Inspect(), "\n")), nil
	})
}

func (s *Server) handleStart(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ReplyResponse, error) {
	userID, _ := args["user_id"].(string)
	if userID == "" {
		return ReplyResponse{}, errors.New("user_id is required")
	}
	reply, err := s.engine.Start(ctx, userID)
	if err != nil {
		return ReplyResponse{}, fmt.Errorf("start failed: %w", err)
	}
	return toResponse(userID, reply), nil
}

func (s *Server) handleSend(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ReplyResponse, error) {
	userID, _ := args["user_id"].(string)
	text, _ := args["text"].(string)
	if userID == "" {
		return ReplyResponse{}, errors.New("user_id is required")
	}

	clean, err := runner.SanitizeInput(text)
	if err != nil {
		s.logger.Warn("MCP send: input rejected", "err", err, "size", len(text))
		return ReplyResponse{}, fmt.Errorf("input rejected: %w", err)
	}

	reply, err := s.engine.Handle(ctx, userID, clean)
	if err != nil {
		return ReplyResponse{}, fmt.Errorf("send failed: %w", err)
	}
	return toResponse(userID, reply), nil
}

func toResponse(userID string, reply *domain.Reply) ReplyResponse {
	if reply == nil {
		return ReplyResponse{UserID: userID, Silent: true}
	}
	return ReplyResponse{
		UserID:   reply.UserID,
		ScreenID: reply.ScreenID,
		Text:     reply.Text,
		Keyboard: reply.Keyboard,
	}
}

// screenSummary is one entry of the screens resource.
type screenSummary struct {
	ID        string   `json:"id"`
	Quest     bool     `json:"quest,omitempty"`
	HasScript bool     `json:"has_script,omitempty"`
	Targets   []string `json:"targets,omitempty"`
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(screensURI, "Quest screens",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(summarize(s.engine.Document()))
		if err != nil {
			return nil, fmt.Errorf("failed to encode screens: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      screensURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}

func summarize(doc *domain.QuestDocument) []screenSummary {
	out := make([]screenSummary, 0, len(doc.Order))
	for _, id := range doc.Order {
		screen := doc.Screen(id)
		if screen == nil {
			continue
		}
		sum := screenSummary{ID: id, Quest: screen.Quest, HasScript: screen.HasScript}
		screen.Buttons.Each(func(b domain.Button) bool {
			if len(b.Exits) > 0 {
				sum.Targets = append(sum.Targets, b.Exits...)
			} else {
				sum.Targets = append(sum.Targets, b.Target)
			}
			return true
		})
		out = append(out, sum)
	}
	return out
}

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/dashgrid/internal/logging"
	"github.com/aretw0/dashgrid/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// LayoutURI is the resource exposing the current layout snapshot.
const LayoutURI = "dashgrid://layout"

// LayoutResponse is the structured result of every layout tool.
type LayoutResponse struct {
	Layout domain.LayoutSnapshot `json:"layout" jsonschema_description:"The layout after the call"`
	ZoneID string                `json:"zone_id,omitempty" jsonschema_description:"The zone the call created or touched"`
}

// Engine defines the layout operations exposed to MCP clients.
type Engine interface {
	Layout() domain.LayoutSnapshot
	MoveComponent(componentID, fromZoneID, toZoneID string) error
	AddZone(width domain.Width, initial ...string) (string, error)
	RemoveZone(zoneID string) error
	ChangeZoneWidth(zoneID string, width domain.Width) error
}

// Server wraps the dashgrid Engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("dashgrid-mcp", version),
		logger:    logger,
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server, e.g. for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{Addr: addr, Handler: mux}
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("get_layout",
		mcp.WithDescription("Get the current layout: zone order, widths and components."),
	), s.handleGetLayout)

	s.mcpServer.AddTool(mcp.NewTool("move_component",
		mcp.WithDescription("Move a component to the end of another zone."),
		mcp.WithString("component_id", mcp.Required(), mcp.Description("Component to move")),
		mcp.WithString("from", mcp.Required(), mcp.Description("Zone currently holding the component")),
		mcp.WithString("to", mcp.Required(), mcp.Description("Destination zone")),
		mcp.WithOutputSchema[LayoutResponse](),
	), mcp.NewStructuredToolHandler(s.handleMove))

	s.mcpServer.AddTool(mcp.NewTool("add_zone",
		mcp.WithDescription("Append a new zone and return its generated id."),
		mcp.WithString("width", mcp.Required(), mcp.Description("small, medium, large, full or a positive number")),
		mcp.WithString("components", mcp.Description("JSON array of component ids to place in the zone (optional)")),
		mcp.WithOutputSchema[LayoutResponse](),
	), mcp.NewStructuredToolHandler(s.handleAddZone))

	s.mcpServer.AddTool(mcp.NewTool("remove_zone",
		mcp.WithDescription("Remove a zone. Its components move to the first remaining zone."),
		mcp.WithString("zone_id", mcp.Required(), mcp.Description("Zone to remove")),
		mcp.WithOutputSchema[LayoutResponse](),
	), mcp.NewStructuredToolHandler(s.handleRemoveZone))

	s.mcpServer.AddTool(mcp.NewTool("change_zone_width",
		mcp.WithDescription("Change the declared width of a zone."),
		mcp.WithString("zone_id", mcp.Required(), mcp.Description("Zone to resize")),
		mcp.WithString("width", mcp.Required(), mcp.Description("small, medium, large, full or a positive number")),
		mcp.WithOutputSchema[LayoutResponse](),
	), mcp.NewStructuredToolHandler(s.handleChangeWidth))
}

func (s *Server) handleGetLayout(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(s.engine.Layout())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode layout: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleMove(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (LayoutResponse, error) {
	componentID, _ := args["component_id"].(string)
	from, _ := args["from"].(string)
	to, _ := args["to"].(string)
	if componentID == "" {
		return LayoutResponse{}, fmt.Errorf("component_id is required")
	}

	if err := s.engine.MoveComponent(componentID, from, to); err != nil {
		s.logger.Warn("MCP move rejected", "component_id", componentID, "zone_id", to, "err", err)
		return LayoutResponse{}, fmt.Errorf("move failed: %w", err)
	}
	return LayoutResponse{Layout: s.engine.Layout(), ZoneID: to}, nil
}

func (s *Server) handleAddZone(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (LayoutResponse, error) {
	width, err := widthArg(args)
	if err != nil {
		return LayoutResponse{}, err
	}

	var components []string
	if raw, ok := args["components"].(string); ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &components); err != nil {
			return LayoutResponse{}, fmt.Errorf("components must be a JSON array of strings: %w", err)
		}
	}

	id, err := s.engine.AddZone(width, components...)
	if err != nil {
		return LayoutResponse{}, fmt.Errorf("add zone failed: %w", err)
	}
	return LayoutResponse{Layout: s.engine.Layout(), ZoneID: id}, nil
}

func (s *Server) handleRemoveZone(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (LayoutResponse, error) {
	zoneID, _ := args["zone_id"].(string)
	if err := s.engine.RemoveZone(zoneID); err != nil {
		return LayoutResponse{}, fmt.Errorf("remove zone failed: %w", err)
	}
	return LayoutResponse{Layout: s.engine.Layout(), ZoneID: zoneID}, nil
}

func (s *Server) handleChangeWidth(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (LayoutResponse, error) {
	zoneID, _ := args["zone_id"].(string)
	width, err := widthArg(args)
	if err != nil {
		return LayoutResponse{}, err
	}
	if err := s.engine.ChangeZoneWidth(zoneID, width); err != nil {
		return LayoutResponse{}, fmt.Errorf("change width failed: %w", err)
	}
	return LayoutResponse{Layout: s.engine.Layout(), ZoneID: zoneID}, nil
}

// widthArg accepts the width as a string token, a numeric string or a JSON number.
func widthArg(args map[string]interface{}) (domain.Width, error) {
	switch v := args["width"].(type) {
	case string:
		return domain.ParseWidth(v)
	case float64:
		w := domain.CustomWidth(v)
		return w, w.Validate()
	default:
		return domain.Width{}, fmt.Errorf("%w: width is required", domain.ErrInvalidWidth)
	}
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(LayoutURI, "Current Layout",
		mcp.WithMIMEType("application/json"),
	), s.readLayout)
}

func (s *Server) readLayout(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	jsonBytes, err := json.Marshal(s.engine.Layout())
	if err != nil {
		return nil, fmt.Errorf("failed to encode layout: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      LayoutURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}

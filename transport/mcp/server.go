package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/snakelights/snakelights/game/service"
	"github.com/snakelights/snakelights/game/sim"
)

// Server exposes the run service as MCP tools.
type Server struct {
	service   service.RunService
	mcpServer *server.MCPServer
}

// NewServer creates the MCP server and registers all tools.
func NewServer(runService service.RunService) *Server {
	s := &Server{service: runService}
	s.initMCPServer()
	return s
}

// MCPServer returns the underlying MCP server for serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) initMCPServer() {
	s.mcpServer = server.NewMCPServer(
		"Snakelights Frame Generator",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Snakelights - MCP Interface

Generates deterministic autoplay snake runs on arbitrary light-display
boards and returns the frame sequences (which lights are on each tick).

AVAILABLE TOOLS:
- list_configs: List available board/run configurations
- create_run: Create a run (optional config_id and seed)
- list_runs: List active runs
- run_state: Get a run's summary and result
- advance_run: Advance a run by N ticks and return the frames
- reset_run: Rewind a run to its initial state (same seed, same frames)
- delete_run: Remove a run
- preview_run: Render the run's current board as text (S=snake, F=food)

Runs are deterministic: the same config, start cell and seed always
produce the identical frame sequence.`),
	)

	s.registerTools()
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available board/run configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleListConfigs)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "create_run",
		Description: "Create a new autoplay run from a configuration",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Configuration id (optional, defaults to the built-in board)",
				},
				"seed": map[string]interface{}{
					"type":        "number",
					"description": "Seed override for food placement (optional)",
				},
			},
		},
	}, s.handleCreateRun)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "list_runs",
		Description: "List all active runs",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleListRuns)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "run_state",
		Description: "Get a run's summary and current result",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"run_id": map[string]interface{}{
					"type":        "string",
					"description": "Run id",
				},
			},
			Required: []string{"run_id"},
		},
	}, s.handleRunState)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "advance_run",
		Description: "Advance a run by N ticks and return the generated frames",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"run_id": map[string]interface{}{
					"type":        "string",
					"description": "Run id",
				},
				"ticks": map[string]interface{}{
					"type":        "number",
					"description": "Number of ticks to advance (default 1)",
				},
			},
			Required: []string{"run_id"},
		},
	}, s.handleAdvanceRun)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_run",
		Description: "Rewind a run to its initial state; the same seed regenerates the identical sequence",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"run_id": map[string]interface{}{
					"type":        "string",
					"description": "Run id",
				},
			},
			Required: []string{"run_id"},
		},
	}, s.handleResetRun)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "delete_run",
		Description: "Delete a run",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"run_id": map[string]interface{}{
					"type":        "string",
					"description": "Run id",
				},
			},
			Required: []string{"run_id"},
		},
	}, s.handleDeleteRun)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "preview_run",
		Description: "Render the run's current board state as text (S=snake, F=food, .=free)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"run_id": map[string]interface{}{
					"type":        "string",
					"description": "Run id",
				},
			},
			Required: []string{"run_id"},
		},
	}, s.handlePreviewRun)
}

// arguments unwraps the request's argument map; tools with no required
// fields may receive nil.
func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	return args
}

// Tool handlers

func (s *Server) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	infos, err := s.service.ListConfigs(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Available configurations (%d):\n", len(infos))
	for _, info := range infos {
		result += fmt.Sprintf("- %s: %s (%s, %d cells)\n", info.ID, info.Name, info.Kind, info.CellCount)
	}
	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleCreateRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	configID, _ := args["config_id"].(string)

	var opts *sim.Options
	if seed, ok := args["seed"].(float64); ok {
		cfg, err := s.service.LoadConfig(ctx, configID)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		o := cfg.Run
		o.Seed = int64(seed)
		opts = &o
	}

	info, err := s.service.CreateRun(ctx, configID, opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created run: %s\nConfig: %s\nSeed: %d\nStrategy: %s\n",
		info.ID, info.ConfigName, info.Options.Seed, info.Result.Strategy)
	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleListRuns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	infos, err := s.service.ListRuns(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active runs (%d):\n", len(infos))
	for _, info := range infos {
		result += fmt.Sprintf("- %s: config=%s tick=%d score=%d filled=%d/%d reason=%s\n",
			info.ID, info.ConfigID, info.Result.Ticks, info.Result.Score,
			info.Result.CellsFilled, info.Result.CellCount, info.Result.Reason)
	}
	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleRunState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	runID, _ := args["run_id"].(string)

	info, err := s.service.GetRun(ctx, runID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleAdvanceRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	runID, _ := args["run_id"].(string)
	ticks := 1
	if v, ok := args["ticks"].(float64); ok && v > 0 {
		ticks = int(v)
	}

	result, err := s.service.Advance(ctx, runID, ticks)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleResetRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	runID, _ := args["run_id"].(string)

	info, err := s.service.Reset(ctx, runID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Reset run %s to its initial state (seed %d)\n", info.ID, info.Options.Seed)
	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleDeleteRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	runID, _ := args["run_id"].(string)

	if err := s.service.DeleteRun(ctx, runID); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Deleted run %s\n", runID)), nil
}

func (s *Server) handlePreviewRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	runID, _ := args["run_id"].(string)

	rendered, err := s.service.Render(ctx, runID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(rendered), nil
}

package pran

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const Version = "1.0.0"

// NewServer exposes the engine over MCP: query preparation, raw
// strategy-driven retrieval, intent classification, and the full
// orchestrated chat.
func NewServer(client *Client) *server.MCPServer {
	s := server.NewMCPServer(
		"pran",
		Version,
		server.WithInstructions("Healthcare question answering: retrieval strategy engine with multi-intent orchestration over domain knowledge bases"),
	)

	s.AddTool(
		mcp.NewToolWithRawSchema("prepare-query", "Expand medical terminology and rewrite a question into a knowledge-base search query", prepareQuerySchema()),
		handlePrepareQuery(client),
	)
	s.AddTool(
		mcp.NewToolWithRawSchema("retrieve", "Retrieve knowledge passages using automatic strategy selection with validation and fallback", retrieveSchema()),
		handleRetrieve(client),
	)
	s.AddTool(
		mcp.NewToolWithRawSchema("classify-intent", "Screen a question for safety and score its health-domain intents", classifySchema()),
		handleClassify(client),
	)
	s.AddTool(
		mcp.NewToolWithRawSchema("chat", "Answer a health question end to end: safety screening, per-domain retrieval and generation, fused into one reply", chatSchema()),
		handleChat(client),
	)
	return s
}

// ServeStdio runs the MCP server over stdin/stdout until the context is
// cancelled.
func ServeStdio(client *Client) error {
	return server.ServeStdio(NewServer(client))
}

func prepareQuerySchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {"type": "string", "description": "The raw user question"}
		},
		"required": ["query"]
	}`)
}

func retrieveSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {"type": "string", "description": "The search question"},
			"collection": {"type": "string", "description": "Knowledge collection to search"},
			"top_k": {"type": "integer", "description": "Maximum results to return"},
			"threshold": {"type": "number", "description": "Minimum similarity score"},
			"strategy": {"type": "string", "description": "Force a strategy: basic, mmr, hybrid, context_aware"}
		},
		"required": ["query"]
	}`)
}

func classifySchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {"type": "string", "description": "The user question"}
		},
		"required": ["query"]
	}`)
}

func chatSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {"type": "string", "description": "The user question"}
		},
		"required": ["query"]
	}`)
}

func handlePrepareQuery(client *Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		q := client.PrepareQuery(ctx, query)
		decision := client.SelectStrategy(q.Text())
		out, _ := json.Marshal(map[string]any{
			"query":    q,
			"strategy": decision,
		})
		return mcp.NewToolResultText(string(out)), nil
	}
}

func handleRetrieve(client *Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		outcome, err := client.Retrieve(ctx, query, RetrieveOptions{
			Collection: req.GetString("collection", ""),
			TopK:       req.GetInt("top_k", 0),
			Threshold:  req.GetFloat("threshold", 0),
			Strategy:   req.GetString("strategy", ""),
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("retrieve failed: %v", err)), nil
		}
		out, _ := json.Marshal(outcome)
		return mcp.NewToolResultText(string(out)), nil
	}
}

func handleClassify(client *Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		out, _ := json.Marshal(client.Classify(ctx, query))
		return mcp.NewToolResultText(string(out)), nil
	}
}

func handleChat(client *Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		out, _ := json.Marshal(client.Answer(ctx, query))
		return mcp.NewToolResultText(string(out)), nil
	}
}

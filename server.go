package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ShamanBV/shaman-assistant/retrieval"
	"github.com/ShamanBV/shaman-assistant/schema"
)

const Version = "1.0.0"

// NewServer exposes a Client as an MCP server so agent front ends (Slack
// bots, editors, CLIs) can ask questions and manage the knowledge base over
// one protocol.
func NewServer(client *Client) *server.MCPServer {
	srv := server.NewMCPServer(
		"shaman-assistant",
		Version,
		server.WithInstructions("MagicAnswer answers Shaman and Veeva support questions from the team knowledge base"),
	)

	srv.AddTool(
		mcp.NewToolWithRawSchema("ask-question", "Answer a support question using the knowledge base, with intent routing, customer scoping and caching", GetAskQuestionSchema()),
		HandleAskQuestion(client),
	)
	srv.AddTool(
		mcp.NewToolWithRawSchema("search-knowledge", "Run a semantic search across the knowledge collections without generating an answer", GetSearchKnowledgeSchema()),
		HandleSearchKnowledge(client),
	)
	srv.AddTool(
		mcp.NewToolWithRawSchema("ingest-documents", "Chunk, embed and index documents into a knowledge source", GetIngestDocumentsSchema()),
		HandleIngestDocuments(client),
	)
	srv.AddTool(
		mcp.NewToolWithRawSchema("get-stats", "Report knowledge base, cache and intent statistics", GetStatsSchema()),
		HandleGetStats(client),
	)

	return srv
}

// ServeStdio runs the MCP server on stdin/stdout until the stream closes.
func ServeStdio(client *Client) error {
	return server.ServeStdio(NewServer(client))
}

func GetAskQuestionSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"question": {
				"type": "string",
				"description": "The support question to answer"
			},
			"skip_cache": {
				"type": "boolean",
				"description": "Bypass the response cache for this question"
			},
			"thread_id": {
				"type": "string",
				"description": "Conversation thread id; enables follow-up context"
			},
			"channel": {
				"type": "string",
				"description": "Chat channel id the question arrived on; customer channels scope the search"
			},
			"customer": {
				"type": "string",
				"description": "Customer key to scope the search to (overrides channel)"
			}
		},
		"required": ["question"]
	}`)
}

// HandleAskQuestion answers a question through the full pipeline and
// renders the answer with its source list.
func HandleAskQuestion(client *Client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		question, _ := args["question"].(string)
		if question == "" {
			return mcp.NewToolResultError("question is required"), nil
		}

		opts := ProcessOptions{}
		if v, ok := args["skip_cache"].(bool); ok {
			opts.SkipCache = v
		}
		if v, ok := args["thread_id"].(string); ok {
			opts.ThreadID = v
		}
		if v, ok := args["channel"].(string); ok {
			opts.Channel = v
		}
		if v, ok := args["customer"].(string); ok {
			opts.ScopeKey = v
		}

		ans, err := client.ProcessWithOptions(ctx, question, opts)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("ask question failed: %v", err)), nil
		}

		text := ans.Text
		if sources := ans.FormatSources(client.cfg.Answer.MaxSources); sources != "" {
			text += "\n\n" + sources
		}
		return mcp.NewToolResultText(text), nil
	}
}

func GetSearchKnowledgeSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {
				"type": "string",
				"description": "Natural language search query"
			},
			"n_results": {
				"type": "integer",
				"description": "Maximum number of results to return"
			},
			"sources": {
				"type": "array",
				"items": {"type": "string"},
				"description": "Restrict the search to these sources (slack, helpcenter, intercom, confluence, video)"
			},
			"customer": {
				"type": "string",
				"description": "Customer key whose private collection joins the search"
			},
			"optimize": {
				"type": "boolean",
				"description": "Expand the query into variants before searching"
			}
		},
		"required": ["query"]
	}`)
}

type searchHit struct {
	Rank      int     `json:"rank"`
	Source    string  `json:"source"`
	Title     string  `json:"title,omitempty"`
	URL       string  `json:"url,omitempty"`
	Relevance float64 `json:"relevance"`
	Content   string  `json:"content"`
}

// HandleSearchKnowledge runs retrieval only and returns the ranked hits as
// JSON.
func HandleSearchKnowledge(client *Client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		query, _ := args["query"].(string)
		if query == "" {
			return mcp.NewToolResultError("query is required"), nil
		}

		opts := searchOptionsFromArgs(args)
		results, err := client.Search(ctx, query, opts)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("search knowledge failed: %v", err)), nil
		}

		hits := make([]searchHit, 0, len(results))
		for i, r := range results {
			hits = append(hits, searchHit{
				Rank:      i + 1,
				Source:    r.Source,
				Title:     r.Title(),
				URL:       r.URL(),
				Relevance: r.Relevance,
				Content:   r.Document.Content,
			})
		}
		payload, err := json.MarshalIndent(hits, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode results failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(payload)), nil
	}
}

func GetIngestDocumentsSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"source": {
				"type": "string",
				"description": "Target knowledge source (slack, helpcenter, intercom, confluence, video)"
			},
			"documents": {
				"type": "array",
				"items": {
					"type": "object",
					"properties": {
						"id": {"type": "string", "description": "Stable document id; derived from content when omitted"},
						"content": {"type": "string", "description": "Document text"},
						"title": {"type": "string"},
						"url": {"type": "string"},
						"metadata": {"type": "object", "description": "Additional metadata fields"}
					},
					"required": ["content"]
				},
				"description": "Documents to chunk, embed and index"
			}
		},
		"required": ["source", "documents"]
	}`)
}

// HandleIngestDocuments indexes the given documents and reports how many
// chunks were newly added.
func HandleIngestDocuments(client *Client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		source, _ := args["source"].(string)
		if source == "" {
			return mcp.NewToolResultError("source is required"), nil
		}
		rawDocs, ok := args["documents"].([]any)
		if !ok || len(rawDocs) == 0 {
			return mcp.NewToolResultError("documents is required and must be a non-empty array"), nil
		}

		docs := make([]schema.Document, 0, len(rawDocs))
		for i, raw := range rawDocs {
			fields, ok := raw.(map[string]any)
			if !ok {
				return mcp.NewToolResultError(fmt.Sprintf("document %d must be an object", i)), nil
			}
			content, _ := fields["content"].(string)
			if content == "" {
				return mcp.NewToolResultError(fmt.Sprintf("document %d is missing content", i)), nil
			}
			doc := schema.Document{
				Content:   content,
				Metadata:  map[string]any{},
				CreatedAt: time.Now(),
			}
			if id, ok := fields["id"].(string); ok {
				doc.ID = id
			}
			if meta, ok := fields["metadata"].(map[string]any); ok {
				for k, v := range meta {
					doc.Metadata[k] = v
				}
			}
			if title, ok := fields["title"].(string); ok && title != "" {
				doc.Metadata["title"] = title
			}
			if url, ok := fields["url"].(string); ok && url != "" {
				doc.Metadata["url"] = url
			}
			docs = append(docs, doc)
		}

		added, err := client.Ingest(ctx, source, docs)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("ingest documents failed: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Indexed %d new chunks into %s (%d documents submitted)", added, source, len(docs))), nil
	}
}

func GetStatsSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {}
	}`)
}

// HandleGetStats reports the operational snapshot as JSON.
func HandleGetStats(client *Client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		stats, err := client.GetStats(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("get stats failed: %v", err)), nil
		}
		payload, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode stats failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(payload)), nil
	}
}

func searchOptionsFromArgs(args map[string]any) retrieval.SearchOptions {
	opts := retrieval.SearchOptions{}
	if v, ok := args["n_results"].(float64); ok {
		opts.NResults = int(v)
	}
	if v, ok := args["sources"].([]any); ok {
		for _, item := range v {
			if s, ok := item.(string); ok {
				opts.Sources = append(opts.Sources, s)
			}
		}
	}
	if v, ok := args["customer"].(string); ok {
		opts.ScopeKey = v
	}
	if v, ok := args["optimize"].(bool); ok {
		opts.Optimize = v
	}
	return opts
}

package tools

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/josephgoksu/taskmate/internal/search"
)

// Searcher is the subset of *search.Searcher the web_search tool needs.
type Searcher interface {
	Search(ctx context.Context, query string) (search.Output, error)
}

// WebSearchTool searches the web for information related to a task.
type WebSearchTool struct{ searcher Searcher }

func NewWebSearchTool(s Searcher) *WebSearchTool { return &WebSearchTool{searcher: s} }

func (t *WebSearchTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: NameWebSearch,
		Desc: "Search the web for current information that helps the user complete a task. Returns results with titles, URLs and content snippets.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"query": {Type: "string", Desc: "Search query", Required: true},
		}),
	}, nil
}

func (t *WebSearchTool) InvokableRun(ctx context.Context, argsJSON string, opts ...tool.Option) (string, error) {
	var args struct {
		Query string `json:"query"`
	}
	if err := parseArgs(argsJSON, &args); err != nil {
		return "", err
	}
	out, err := t.searcher.Search(ctx, args.Query)
	if err != nil {
		return "", fmt.Errorf("web search: %w", err)
	}
	return encode(out)
}

var _ tool.InvokableTool = (*WebSearchTool)(nil)

// All returns the task tools plus web_search when a searcher is given.
func All(api TaskAPI, s Searcher) []tool.InvokableTool {
	ts := TaskTools(api)
	if s != nil {
		ts = append(ts, NewWebSearchTool(s))
	}
	return ts
}

// Infos collects the ToolInfo of every tool, for binding to a chat model.
func Infos(ctx context.Context, ts []tool.InvokableTool) ([]*schema.ToolInfo, error) {
	infos := make([]*schema.ToolInfo, 0, len(ts))
	for _, t := range ts {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("tool info: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

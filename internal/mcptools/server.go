package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewGroceryMCPServer creates an MCP server with the planning tools
// registered.
func NewGroceryMCPServer(svc *PlanService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "hosting-planner",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name: "plan_shopping_list",
		Description: "Plan groceries for a hosted event: turns a confirmed menu and guest counts " +
			"into a deduplicated shopping list and pauses for review. Pass priorRunId to reuse a " +
			"completed run's list and go straight to delivery for additional output formats.",
	}, svc.PlanShoppingList)

	mcp.AddTool(server, &mcp.Tool{
		Name: "submit_review",
		Description: "Answer a run's review checkpoint. Free-text corrections revise the list and " +
			"re-present it; approval (optionally excluding named items) proceeds to delivery.",
	}, svc.SubmitReview)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_run",
		Description: "Inspect a planning run: stage, shopping list, deliverables, and any error.",
	}, svc.GetRun)

	return server
}

// RunMCPServer serves the planning tools over streamable HTTP until ctx is
// cancelled.
func RunMCPServer(ctx context.Context, svc *PlanService, addr string) error {
	server := NewGroceryMCPServer(svc)

	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

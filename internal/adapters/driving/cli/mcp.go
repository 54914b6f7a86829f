package cli

import (
	"context"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kyc-onboard/internal/adapters/driving/mcp"
)

var (
	mcpPort int
	mcpHost string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol integration",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve scoring, planning and case review to MCP clients",
	Long: `Serve kyc to assistants that speak the Model Context Protocol.

Tools:
  score_client         risk score for an intake record, no research calls
  plan_investigation   research tasks a run would perform for the record
  review_case          review intelligence of a paused case

Resources:
  kyc://cases          stored case ids
  kyc://cases/{id}     final output of one case

Without --port the server speaks JSON-RPC on stdio, which is what desktop
assistants launch:

  {"mcpServers": {"kyc": {"command": "kyc", "args": ["mcp", "serve"]}}}

With --port it serves the streamable HTTP transport on --host, which
defaults to loopback because case files hold personal data:

  kyc mcp serve --port 8080`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "serve HTTP on this port instead of stdio")
	mcpServeCmd.Flags().StringVar(&mcpHost, "host", "127.0.0.1", "interface for the HTTP transport")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	server, err := mcp.NewServer(&mcp.Ports{
		Scorer:  riskScorer,
		Planner: planner,
		Review:  reviewService,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if mcpPort <= 0 {
		return server.Run(ctx)
	}
	addr := net.JoinHostPort(mcpHost, strconv.Itoa(mcpPort))
	cmd.Printf("MCP server listening on http://%s\n", addr)
	return server.RunHTTP(ctx, addr)
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

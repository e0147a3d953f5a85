// Command visionmcpctl is a thin operator CLI for a running visionmcp HTTP
// server: it issues JSON-RPC tool calls and prints the response, for manual
// testing and scripting against a deployed instance.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var Version = "dev"

type globalFlags struct {
	serverURL   string
	bearerToken string
	timeout     time.Duration
}

func main() {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:     "visionmcpctl",
		Short:   "Operator CLI for the TaskVision MCP server",
		Version: Version,
	}
	root.PersistentFlags().StringVar(&flags.serverURL, "server", "http://localhost:8831", "visionmcp HTTP server base URL")
	root.PersistentFlags().StringVar(&flags.bearerToken, "token", os.Getenv("VISIONMCP_BEARER_TOKEN"), "bearer token, if the server requires one")
	root.PersistentFlags().DurationVar(&flags.timeout, "timeout", 10*time.Second, "request timeout")

	root.AddCommand(newHealthCmd(flags))
	root.AddCommand(newCallCmd(flags))
	root.AddCommand(newToolsCmd(flags))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newHealthCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check whether the server answers MCP initialize",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := rpcCall(flags, "initialize", map[string]any{
				"protocolVersion": "2025-03-26",
				"capabilities":    map[string]any{},
				"clientInfo":      map[string]any{"name": "visionmcpctl", "version": Version},
			})
			if err != nil {
				return err
			}
			return printJSON(resp)
		},
	}
}

func newToolsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the tools the server exposes",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := rpcCall(flags, "tools/list", map[string]any{})
			if err != nil {
				return err
			}
			return printJSON(resp)
		},
	}
}

func newCallCmd(flags *globalFlags) *cobra.Command {
	var paramsJSON string
	cmd := &cobra.Command{
		Use:   "call <tool-name>",
		Short: "Call a single MCP tool with JSON arguments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var toolArgs map[string]any
			if paramsJSON != "" {
				if err := json.Unmarshal([]byte(paramsJSON), &toolArgs); err != nil {
					return fmt.Errorf("invalid --params JSON: %w", err)
				}
			}
			resp, err := rpcCall(flags, "tools/call", map[string]any{
				"name":      args[0],
				"arguments": toolArgs,
			})
			if err != nil {
				return err
			}
			return printJSON(resp)
		},
	}
	cmd.Flags().StringVar(&paramsJSON, "params", "", "tool arguments as a JSON object")
	return cmd
}

// rpcCall sends a single JSON-RPC 2.0 request to the server's MCP endpoint
// and returns the decoded response body.
func rpcCall(flags *globalFlags, method string, params any) (map[string]any, error) {
	envelope := map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, flags.serverURL+"/mcp", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if flags.bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+flags.bearerToken)
	}

	client := &http.Client{Timeout: flags.timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", flags.serverURL, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned %s: %s", resp.Status, string(raw))
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return decoded, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Package main provides gwctl, a small command-line client for a running
// gateway's admin endpoints: list/load/unload backends and check
// health, without needing curl one-liners for the JSON bodies.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/dispatchlabs/inference-gateway/internal/version"
	"github.com/spf13/cobra"
)

var (
	serverAddr string
	apiKey     string
	httpClient = &http.Client{Timeout: 10 * time.Second}
)

func main() {
	root := &cobra.Command{
		Use:   "gwctl",
		Short: "Command-line client for the inference gateway's admin API",
	}
	root.PersistentFlags().StringVar(&serverAddr, "server", "http://localhost:8080", "gateway base URL")
	root.PersistentFlags().StringVar(&apiKey, "api-key", os.Getenv("GWCTL_API_KEY"), "bearer token for API_KEYS-protected admin routes")

	root.AddCommand(modelsCmd(), healthCmd(), versionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func modelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List, load, or unload capability backends",
	}
	cmd.AddCommand(modelsListCmd(), modelsLoadCmd(), modelsUnloadCmd())
	return cmd
}

func modelsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the names installed in each capability registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := doRequest(http.MethodGet, "/admin/models", nil)
			if err != nil {
				return err
			}
			fmt.Println(string(body))
			return nil
		},
	}
}

func modelsLoadCmd() *cobra.Command {
	var kind, name, path string
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load a backend into the kind registry under name",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]interface{}{
				"kind": kind,
				"name": name,
			}
			if path != "" {
				payload["options"] = map[string]interface{}{"path": path}
			}
			data, err := json.Marshal(payload)
			if err != nil {
				return err
			}
			body, err := doRequest(http.MethodPost, "/admin/models/load", data)
			if err != nil {
				return err
			}
			fmt.Println(string(body))
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "llm | embedding | multimodal (required)")
	cmd.Flags().StringVar(&name, "name", "", "registry name to install under (required)")
	cmd.Flags().StringVar(&path, "path", "", "local model file path, if any")
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func modelsUnloadCmd() *cobra.Command {
	var kind, name string
	cmd := &cobra.Command{
		Use:   "unload",
		Short: "Remove a backend from the kind registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := json.Marshal(map[string]string{"kind": kind, "name": name})
			if err != nil {
				return err
			}
			body, err := doRequest(http.MethodPost, "/admin/models/unload", data)
			if err != nil {
				return err
			}
			fmt.Println(string(body))
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "llm | embedding | multimodal (required)")
	cmd.Flags().StringVar(&name, "name", "", "registry name to remove (required)")
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the gateway's /health endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := doRequest(http.MethodGet, "/health", nil)
			if err != nil {
				return err
			}
			fmt.Println(string(body))
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print gwctl's version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(version.String())
			return nil
		},
	}
}

func doRequest(method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, serverAddr+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, string(data))
	}
	return data, nil
}

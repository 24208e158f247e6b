package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/meetpilot/internal/instrumentation"
	"github.com/teemow/meetpilot/internal/logging"
	"github.com/teemow/meetpilot/internal/tools/meeting_tools"
)

func newGenerateDocsCmd() *cobra.Command {
	var (
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate MCP tool documentation",
		Long: `Generate markdown documentation for all available MCP tools.
This command introspects the registered tools and outputs their documentation
in markdown format, ensuring the documentation is always accurate and in sync
with the actual tool implementations.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerateDocs(cmd.OutOrStdout(), outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runGenerateDocs(out io.Writer, outputFile string) error {
	markdown := generateToolsMarkdown(registeredTools())

	// Write to output
	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(markdown), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Documentation written to: %s\n", outputFile)
		return nil
	}
	_, err := fmt.Fprint(out, markdown)
	return err
}

// registeredTools lists the tools as serve registers them. No backend is
// wired; the handlers are never invoked.
func registeredTools() []mcp.Tool {
	mcpSrv := mcpserver.NewMCPServer("meetpilot", version,
		mcpserver.WithToolCapabilities(true),
	)
	meeting_tools.RegisterTools(mcpSrv, nil, &instrumentation.Metrics{}, logging.NewLogger(io.Discard, false))

	serverTools := mcpSrv.ListTools()
	tools := make([]mcp.Tool, 0, len(serverTools))
	for _, serverTool := range serverTools {
		tools = append(tools, serverTool.Tool)
	}
	return tools
}

func generateToolsMarkdown(tools []mcp.Tool) string {
	var sb strings.Builder

	sb.WriteString("# MCP Tools Reference\n\n")
	sb.WriteString("This document provides a complete reference of all tools available when running meetpilot as an MCP server.\n\n")
	sb.WriteString("**Note:** This documentation is automatically generated from the tool definitions.\n\n")

	byCategory := make(map[string][]mcp.Tool)
	for _, tool := range tools {
		category := getCategoryFromToolName(tool.Name)
		byCategory[category] = append(byCategory[category], tool)
	}
	categories := make([]string, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	sb.WriteString("## Table of Contents\n\n")
	for _, category := range categories {
		fmt.Fprintf(&sb, "- [%s](#%s)\n", category, strings.ToLower(strings.ReplaceAll(category, " ", "-")))
	}
	sb.WriteString("\n")

	sb.WriteString("## Attendees\n\n")
	sb.WriteString("Attendees are strings in one of these forms:\n\n")
	sb.WriteString("- `ana@example.com`\n")
	sb.WriteString("- `Ana Lopez <ana@example.com>`\n")
	sb.WriteString("- `Ana Lopez <ana@example.com>;Product owner` (the role is shown in the invitation)\n\n")
	sb.WriteString("All times are UTC. Slots are 30 minutes long.\n\n")

	for _, category := range categories {
		categoryTools := byCategory[category]
		sort.Slice(categoryTools, func(i, j int) bool {
			return categoryTools[i].Name < categoryTools[j].Name
		})

		fmt.Fprintf(&sb, "## %s\n\n", category)
		for _, tool := range categoryTools {
			writeToolMarkdown(&sb, tool)
		}
	}

	return sb.String()
}

func getCategoryFromToolName(name string) string {
	prefix, _, _ := strings.Cut(name, "_")
	switch prefix {
	case "meeting":
		return "Meeting Tools"
	default:
		return "Other"
	}
}

// writeToolMarkdown renders one tool with its arguments as a table.
func writeToolMarkdown(sb *strings.Builder, tool mcp.Tool) {
	fmt.Fprintf(sb, "### %s\n\n", tool.Name)
	if tool.Description != "" {
		fmt.Fprintf(sb, "%s\n\n", tool.Description)
	}
	if len(tool.InputSchema.Properties) == 0 {
		return
	}

	required := make(map[string]bool, len(tool.InputSchema.Required))
	for _, name := range tool.InputSchema.Required {
		required[name] = true
	}

	names := make([]string, 0, len(tool.InputSchema.Properties))
	for name := range tool.InputSchema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	sb.WriteString("| Argument | Type | Required | Description |\n")
	sb.WriteString("|---|---|---|---|\n")
	for _, name := range names {
		prop, ok := tool.InputSchema.Properties[name].(map[string]interface{})
		if !ok {
			continue
		}
		desc, _ := prop["description"].(string)
		req := "no"
		if required[name] {
			req = "yes"
		}
		fmt.Fprintf(sb, "| `%s` | %s | %s | %s |\n", name, propertyType(prop), req, strings.ReplaceAll(desc, "|", "\\|"))
	}
	sb.WriteString("\n")
}

// propertyType renders the JSON schema type, with the item type for arrays.
func propertyType(prop map[string]interface{}) string {
	t, ok := prop["type"].(string)
	if !ok {
		return "any"
	}
	if t != "array" {
		return t
	}
	if items, ok := prop["items"].(map[string]interface{}); ok {
		if it, ok := items["type"].(string); ok {
			return it + "[]"
		}
	}
	return t
}

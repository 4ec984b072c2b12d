package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"codemod/internal/mcp"

	"github.com/spf13/cobra"
)

var toolsJSONFlag bool

var toolsCmd = &cobra.Command{
	Use:   "tools [name]",
	Short: "List available MCP tools",
	Long: `List the tools the MCP server exposes.

Without arguments, prints the catalog. With a tool name, shows that tool's
parameters.

Examples:
  codemod tools
  codemod tools stageModify
  codemod tools --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTools,
}

func init() {
	toolsCmd.Flags().BoolVar(&toolsJSONFlag, "json", false, "Output as JSON")
	rootCmd.AddCommand(toolsCmd)
}

func runTools(cmd *cobra.Command, args []string) error {
	allTools := mcp.GetToolDefinitions()

	if len(args) > 0 {
		name := args[0]
		for _, tool := range allTools {
			if tool.Name == name {
				return showToolDetails(tool)
			}
		}
		return fmt.Errorf("unknown tool: %s\n\nUse 'codemod tools' to see available tools", name)
	}

	if toolsJSONFlag {
		data, err := json.MarshalIndent(allTools, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("MCP Tools (%d)\n", len(allTools))
	fmt.Println(strings.Repeat("─", 52))
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TOOL\tDESCRIPTION")
	for _, tool := range allTools {
		desc := tool.Description
		if len(desc) > 72 {
			desc = desc[:69] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\n", tool.Name, desc)
	}
	w.Flush()

	fmt.Println()
	fmt.Println("Run 'codemod tools <name>' for parameters.")
	return nil
}

func showToolDetails(tool mcp.Tool) error {
	if toolsJSONFlag {
		data, err := json.MarshalIndent(tool, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Tool: %s\n", tool.Name)
	fmt.Println(strings.Repeat("─", 52))
	fmt.Println()
	fmt.Printf("Description:\n  %s\n", tool.Description)
	fmt.Println()

	if tool.InputSchema == nil {
		return nil
	}

	fmt.Println("Parameters:")
	props, ok := tool.InputSchema["properties"].(map[string]interface{})
	if !ok || len(props) == 0 {
		fmt.Println("  (no parameters)")
		return nil
	}

	required := make(map[string]bool)
	if reqList, ok := tool.InputSchema["required"].([]string); ok {
		for _, r := range reqList {
			required[r] = true
		}
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		prop, ok := props[name].(map[string]interface{})
		if !ok {
			continue
		}

		reqMarker := ""
		if required[name] {
			reqMarker = " (required)"
		}
		typ := "any"
		if t, ok := prop["type"].(string); ok {
			typ = t
		}

		fmt.Printf("  %s%s (%s)\n", name, reqMarker, typ)
		if desc, ok := prop["description"].(string); ok && desc != "" {
			fmt.Printf("    %s\n", desc)
		}
		if enum, ok := prop["enum"].([]string); ok {
			fmt.Printf("    Values: %s\n", strings.Join(enum, ", "))
		}
		if def, ok := prop["default"]; ok {
			fmt.Printf("    Default: %v\n", def)
		}
	}
	return nil
}

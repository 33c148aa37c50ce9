// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/lfqrun/lfqrun/internal/config"
	"github.com/lfqrun/lfqrun/pkg/params"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// newParamsCommand creates the `lfqrun params` command tree.
func newParamsCommand(app *App) *cobra.Command {
	paramsCmd := &cobra.Command{
		Use:   "params",
		Short: "Inspect the pipeline parameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	paramsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every parameter by section",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			listParams(app.stdout, app.Registry)
			return nil
		},
	})

	paramsCmd.AddCommand(&cobra.Command{
		Use:               "show <name>",
		Short:             "Describe one parameter",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeParamNames(app.Registry),
		RunE: func(cmd *cobra.Command, args []string) error {
			// The parameter text renders without a config file too.
			if _, _, err := app.loadConfig(cmd.Context()); err != nil {
				app.logger.Debug("using the automatic color scheme", "error", err)
			}
			return showParam(app.stdout, app.Registry, args[0], app.colorScheme)
		},
	})

	paramsCmd.AddCommand(&cobra.Command{
		Use:   "schema",
		Short: "Print the parameter schema as OpenAPI 3 JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeSchema(app.stdout, app.Registry)
		},
	})

	return paramsCmd
}

func completeParamNames(reg *params.Registry) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		var names []string
		for _, name := range reg.Names() {
			if strings.HasPrefix(name, toComplete) {
				names = append(names, name)
			}
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	}
}

// listParams prints one aligned table per section.
func listParams(w io.Writer, reg *params.Registry) {
	nameWidth, typeWidth := len("NAME"), len("TYPE")
	for _, spec := range reg.Specs() {
		nameWidth = max(nameWidth, len(spec.Name))
		typeWidth = max(typeWidth, len(spec.Type()))
	}
	nameCol := tableCellStyle.Width(nameWidth + 2)
	typeCol := tableCellStyle.Width(typeWidth + 2)

	for i, section := range reg.Sections() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		title := section.Title
		if title == "" {
			title = "General"
		}
		fmt.Fprintln(w, TitleStyle.Render(title))
		fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top,
			tableHeaderStyle.Width(nameWidth+2).Render("NAME"),
			tableHeaderStyle.Width(typeWidth+2).Render("TYPE"),
			tableHeaderStyle.Render("DEFAULT"),
		))
		for _, spec := range section.Specs {
			fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top,
				nameCol.Render(spec.Name),
				typeCol.Render(spec.Type()),
				tableCellStyle.Render(defaultCell(spec)),
			))
		}
	}
}

func defaultCell(spec params.Spec) string {
	switch {
	case spec.Required:
		return requiredStyle.Render("required")
	case spec.Default.IsSet():
		return spec.Default.Token()
	default:
		return SubtitleStyle.Render("-")
	}
}

// showParam renders the description of one parameter as Markdown styled for
// scheme.
func showParam(w io.Writer, reg *params.Registry, name string, scheme config.ColorScheme) error {
	spec, ok := reg.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown parameter %q (run 'lfqrun params list')", name)
	}

	var md strings.Builder
	fmt.Fprintf(&md, "# %s\n\n", spec.Name)
	fmt.Fprintf(&md, "- **Type:** `%s`\n", spec.Type())
	if section := reg.SectionOf(spec.Name); section != "" {
		fmt.Fprintf(&md, "- **Section:** %s\n", section)
	}
	if spec.Default.IsSet() {
		fmt.Fprintf(&md, "- **Default:** `%s`\n", spec.Default.Token())
	}
	fmt.Fprintf(&md, "- **Flag:** `--%s`\n\n", spec.Name)
	md.WriteString(strings.TrimSpace(spec.Description))
	md.WriteString("\n")

	rendered, err := renderMarkdown(md.String(), scheme)
	if err != nil {
		// Plain Markdown is still readable.
		rendered = md.String()
	}
	fmt.Fprint(w, rendered)
	return nil
}

func renderMarkdown(content string, scheme config.ColorScheme) (string, error) {
	renderer, err := glamour.NewTermRenderer(glamour.WithStylePath(glamourStyle(scheme)), glamour.WithWordWrap(80))
	if err != nil {
		return "", err
	}
	return renderer.Render(content)
}

// writeSchema prints the registry as an indented OpenAPI 3 schema.
func writeSchema(w io.Writer, reg *params.Registry) error {
	data, err := json.MarshalIndent(reg.OpenAPISchema(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding parameter schema: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

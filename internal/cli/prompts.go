package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alanyang/twig/internal/wire"
)

func newListCmd(opts *options) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available prompts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := wire.BuildCore(cmd.Context(), opts.cfg)
			if err != nil {
				return err
			}
			prompts := core.PromptSvc.ListPrompts()

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(prompts)
			}

			if len(prompts) == 0 {
				fmt.Fprintf(out, "No prompts found in %s\n", opts.cfg.DataDir)
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tARGUMENTS\tDESCRIPTION")
			for _, p := range prompts {
				args := make([]string, 0, len(p.Arguments))
				for _, a := range p.Arguments {
					if a.Required {
						args = append(args, a.Name+"*")
					} else {
						args = append(args, a.Name)
					}
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Name, strings.Join(args, ","), p.Description)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newGetCmd(opts *options) *cobra.Command {
	var rawArgs []string
	cmd := &cobra.Command{
		Use:   "get <library:prompt>",
		Short: "Render a prompt",
		Long: `Render a prompt and print the result.

Arguments are passed as --arg name=value and may be repeated.`,
		Example: "  twig get code_review:review --arg language=go --arg focus=errors",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseArgs(rawArgs)
			if err != nil {
				return err
			}
			core, err := wire.BuildCore(cmd.Context(), opts.cfg)
			if err != nil {
				return err
			}
			res, err := core.PromptSvc.GetPromptStrings(cmd.Context(), args[0], values)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, res.Text)
			if !strings.HasSuffix(res.Text, "\n") {
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&rawArgs, "arg", nil, "prompt argument as name=value (repeatable)")
	return cmd
}

func newReloadCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Scan the data directory and print the prompts that load",
		Long: `Scan the data directory once and print every prompt that loaded.
Files that fail to load are reported on stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			core := wire.NewCore(opts.cfg)
			names, err := core.PromptSvc.Reload(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, n := range names {
				fmt.Fprintln(out, n)
			}
			fmt.Fprintf(out, "%d prompt(s) loaded from %s\n", len(names), opts.cfg.DataDir)
			return nil
		},
	}
}

func parseArgs(raw []string) (map[string]string, error) {
	out := make(map[string]string, len(raw))
	for _, kv := range raw {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --arg %q (want name=value)", kv)
		}
		out[k] = v
	}
	return out, nil
}

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/HandSonic/LLM-Security-Gateway/client"
	"github.com/HandSonic/LLM-Security-Gateway/internal/output"
)

type chatResult struct {
	Model   string          `json:"model" yaml:"model"`
	Content string          `json:"content" yaml:"content"`
	Blocked bool            `json:"blocked" yaml:"blocked"`
	Verdict *client.Verdict `json:"verdict,omitempty" yaml:"verdict,omitempty"`
}

func newChatCmd(a *app) *cobra.Command {
	var (
		model  string
		system string
		stream bool
	)

	cmd := &cobra.Command{
		Use:   "chat <message>",
		Short: "Send one chat turn through the gateway",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			req := client.ChatCompletionRequest{Model: model}
			if system != "" {
				req.Messages = append(req.Messages, client.ChatMessage{Role: "system", Content: system})
			}
			req.Messages = append(req.Messages, client.ChatMessage{Role: "user", Content: strings.Join(args, " ")})

			var content string
			// live output only makes sense for the table format
			live := stream && a.printer.Format() == output.FormatTable
			if stream {
				out := cmd.OutOrStdout()
				content, err = c.StreamChatCompletion(cmd.Context(), req, func(chunk client.ChatCompletionChunk) error {
					if live {
						if _, blocked := client.ParseVerdict(chunk.Content()); !blocked {
							_, werr := fmt.Fprint(out, chunk.Content())
							return werr
						}
					}
					return nil
				})
			} else {
				var resp *client.ChatCompletionResponse
				resp, err = c.ChatCompletion(cmd.Context(), req)
				if resp != nil {
					content = resp.Content()
				}
			}
			if err != nil {
				return err
			}

			res := chatResult{Model: model, Content: content}
			if res.Model == "" {
				res.Model = client.DefaultChatModel
			}
			if v, blocked := client.ParseVerdict(content); blocked {
				res.Blocked, res.Verdict = true, &v
			}
			if a.printer.Format() != output.FormatTable {
				return a.printer.Emit(res, nil)
			}
			switch {
			case res.Blocked:
				a.printer.Error("blocked: %s (%s) score %.4f", res.Verdict.Name, res.Verdict.Category, res.Verdict.Score)
			case live:
				fmt.Fprintln(cmd.OutOrStdout())
			default:
				fmt.Fprintln(cmd.OutOrStdout(), content)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&model, "model", "m", "", "Model name (default "+client.DefaultChatModel+")")
	cmd.Flags().StringVar(&system, "system", "", "Optional system prompt")
	cmd.Flags().BoolVar(&stream, "stream", false, "Stream the answer as it is generated")
	return cmd
}

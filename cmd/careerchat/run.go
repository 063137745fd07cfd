package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bububa/careerchat/advisor"
	"github.com/bububa/careerchat/agents"
	"github.com/bububa/careerchat/components"
)

func newRunCmd() *cobra.Command {
	var (
		cv          string
		message     string
		transcript  string
		maxRounds   int
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Analyse a CV and recommend courses",
		Example: `  careerchat run --cv ./cv.pdf
  careerchat run --cv s3://cvs/jane.docx --message "I want to move into data engineering" --transcript chat.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if maxRounds > 0 {
				cfg.MaxRounds = maxRounds
			}
			clt, err := cfg.NewClient()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			opts := []advisor.Option{
				advisor.WithMessageHook(func(_ *agents.Agent, msg *components.Message) {
					printMessage(out, msg)
				}),
			}
			if interactive {
				opts = append(opts, advisor.WithHumanInput(promptInput(cmd.InOrStdin(), out)))
			}
			adv, err := advisor.New(cfg, clt, log, opts...)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ret, runErr := adv.Run(ctx, cv, message)
			if ret != nil {
				printSummary(out, ret)
				if transcript != "" {
					if err := writeTranscript(transcript, ret); err != nil {
						return err
					}
					fmt.Fprintf(out, "transcript written to %s\n", transcript)
				}
			}
			return runErr
		},
	}

	cmd.Flags().StringVar(&cv, "cv", "", "CV location: a file path, file://, s3:// or http(s):// uri")
	cmd.Flags().StringVarP(&message, "message", "m", "", "opening request (default asks for a CV review and course plan)")
	cmd.Flags().StringVarP(&transcript, "transcript", "o", "", "write the transcript to a .yaml or .json file")
	cmd.Flags().IntVar(&maxRounds, "max-rounds", 0, "maximum number of replies (default MAX_ROUNDS)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "reply as the user instead of the auto reply")
	_ = cmd.MarkFlagRequired("cv")
	return cmd
}

// promptInput reads one line from r for each prompt written to w
func promptInput(r io.Reader, w io.Writer) agents.HumanInputFunc {
	reader := bufio.NewReader(r)
	return func(ctx context.Context, prompt string) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		fmt.Fprint(w, promptStyle.Sprint(prompt))
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return "", err
		}
		return strings.TrimSpace(line), nil
	}
}

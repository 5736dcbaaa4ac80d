package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/wolfman30/survey-assistant/cmd/mainconfig"
	"github.com/wolfman30/survey-assistant/internal/app/bootstrap"
	"github.com/wolfman30/survey-assistant/internal/conversation"
	"github.com/wolfman30/survey-assistant/internal/session"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Take the survey and book an appointment interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger := loadConfig(cmd)
		askName, _ := cmd.Flags().GetBool("ask-name")
		backend, _ := cmd.Flags().GetString("session-backend")
		sessionID, _ := cmd.Flags().GetString("session")
		if sessionID == "" {
			sessionID = "cli-" + uuid.NewString()
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		awsCfg, err := mainconfig.OptionalAWSConfig(ctx, cfg, logger)
		if err != nil {
			return fmt.Errorf("load aws config: %w", err)
		}
		rt, err := bootstrap.BuildRuntime(ctx, cfg, awsCfg, logger, bootstrap.Overrides{
			AskPatientName: &askName,
			SessionBackend: backend,
		})
		if err != nil {
			return err
		}
		defer rt.Close()

		return runChat(ctx, rt.Engine, sessionID, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	chatCmd.Flags().Bool("ask-name", true, "Ask for the patient's name before booking")
	chatCmd.Flags().String("session-backend", "memory", "Session backend (memory, redis)")
	chatCmd.Flags().String("session", "", "Session id to use or resume (default: random)")
}

// runChat drives one conversation until booking completes, the input ends,
// or the user types exit.
func runChat(ctx context.Context, svc conversation.Service, sessionID string, in io.Reader, out io.Writer) error {
	if _, err := svc.Snapshot(ctx, sessionID); err != nil {
		fmt.Fprintln(out, svc.Greeting())
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		reply, err := svc.ProcessTurn(ctx, sessionID, line)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		fmt.Fprintln(out, reply.Message)
		if reply.Stage == session.StageBookingCompleted {
			return nil
		}
	}
}

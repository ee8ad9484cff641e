package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/solris/commhub/internal/config"
	"github.com/solris/commhub/internal/dispatch"
)

var outboxListLimit int

var outboxCmd = &cobra.Command{
	Use:   "outbox",
	Short: "Inspect messages captured in simulation mode",
}

var outboxListCmd = &cobra.Command{
	Use:   "list",
	Short: "List captured messages",
	RunE:  runOutboxList,
}

var outboxShowCmd = &cobra.Command{
	Use:   "show <message_id>",
	Short: "Show a captured message",
	Args:  cobra.ExactArgs(1),
	RunE:  runOutboxShow,
}

func init() {
	outboxCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "/etc/commhub/config.yaml", "Path to configuration file")
	outboxListCmd.Flags().IntVar(&outboxListLimit, "limit", 50, "Maximum number of messages")

	outboxCmd.AddCommand(outboxListCmd, outboxShowCmd)
}

func openOutbox() (*dispatch.Outbox, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	outbox, err := dispatch.OpenOutbox(cfg.Outbox.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open outbox: %w", err)
	}
	return outbox, nil
}

func runOutboxList(cmd *cobra.Command, args []string) error {
	outbox, err := openOutbox()
	if err != nil {
		return err
	}
	defer outbox.Close()

	messages, err := outbox.List(context.Background(), outboxListLimit)
	if err != nil {
		return fmt.Errorf("failed to list messages: %w", err)
	}

	if len(messages) == 0 {
		fmt.Println("No messages in outbox")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFROM\tTO\tSUBJECT\tCAPTURED")
	fmt.Fprintln(w, "--\t----\t--\t-------\t--------")

	for _, msg := range messages {
		to := strings.Join(msg.To, ", ")
		if len(to) > 30 {
			to = to[:27] + "..."
		}

		subject := msg.Subject
		if len(subject) > 30 {
			subject = subject[:27] + "..."
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			msg.ID,
			msg.From,
			to,
			subject,
			msg.CapturedAt.Format("2006-01-02 15:04"),
		)
	}

	w.Flush()
	fmt.Printf("\nTotal: %d messages\n", len(messages))

	return nil
}

func runOutboxShow(cmd *cobra.Command, args []string) error {
	outbox, err := openOutbox()
	if err != nil {
		return err
	}
	defer outbox.Close()

	id := args[0]

	msg, err := outbox.Get(context.Background(), id)
	if err != nil {
		return fmt.Errorf("failed to get message: %w", err)
	}
	if msg == nil {
		return fmt.Errorf("message not found: %s", id)
	}

	fmt.Printf("Message: %s\n\n", msg.ID)
	fmt.Printf("From:     %s\n", msg.From)
	fmt.Printf("To:       %s\n", strings.Join(msg.To, ", "))
	fmt.Printf("Subject:  %s\n", msg.Subject)
	fmt.Printf("Captured: %s\n", msg.CapturedAt.Format(time.RFC3339))

	if len(msg.Data) > 0 {
		fmt.Println("\nMessage Data:")
		fmt.Println("---")
		fmt.Println(string(msg.Data))
		fmt.Println("---")
	}

	return nil
}

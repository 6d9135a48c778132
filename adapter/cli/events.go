package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/gestaches/internal/shared/infrastructure/eventbus"
)

var eventPatterns []string

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Print task events published to RabbitMQ",
	Long: `Follow the task event exchange and print each event as it arrives.
Patterns use topic syntax: * matches one word, # matches any number.

Examples:
  gestaches events
  gestaches events --pattern 'tasks.timer.*'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()
		if a == nil || a.RabbitMQURL == "" {
			return errors.New("RABBITMQ_URL is not set")
		}
		l := logger
		if l == nil {
			l = slog.Default()
		}

		consumer, err := eventbus.NewRabbitMQConsumer(a.RabbitMQURL, eventbus.NewConsumerRegistry(l), l)
		if err != nil {
			return err
		}
		defer consumer.Close()

		out := newSyncWriter(cmd.OutOrStdout())
		err = consumer.RegisterConsumer(eventbus.ConsumerFunc{
			Types: eventPatterns,
			Fn: func(ctx context.Context, event *eventbus.ConsumedEvent) error {
				printEvent(out, event)
				return nil
			},
		})
		if err != nil {
			return err
		}

		err = consumer.Start(cmd.Context())
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func printEvent(w io.Writer, event *eventbus.ConsumedEvent) {
	id := event.AggregateID
	if len(id) > 8 {
		id = id[:8]
	}
	fmt.Fprintf(w, "%s  %-22s %s  %s\n",
		event.OccurredAt.Local().Format(time.TimeOnly),
		event.RoutingKey,
		id,
		event.Payload,
	)
}

func init() {
	eventsCmd.Flags().StringSliceVarP(&eventPatterns, "pattern", "p", []string{"#"}, "routing key patterns to follow")
	rootCmd.AddCommand(eventsCmd)
}

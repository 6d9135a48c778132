package eventbus

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// ConsumerRegistry manages event consumers and dispatches events to them.
// Patterns follow AMQP topic rules: '*' matches one word, '#' zero or more.
type ConsumerRegistry struct {
	entries []registration
	nextID  uint64
	mu      sync.RWMutex
	logger  *slog.Logger
}

type registration struct {
	id       uint64
	patterns []string
	consumer EventConsumer
}

// NewConsumerRegistry creates a new consumer registry.
func NewConsumerRegistry(logger *slog.Logger) *ConsumerRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsumerRegistry{logger: logger}
}

// Register adds a consumer for its declared event types. The returned
// func removes it again and is safe to call more than once.
func (r *ConsumerRegistry) Register(consumer EventConsumer) (unregister func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := r.nextID
	patterns := consumer.EventTypes()
	r.entries = append(r.entries, registration{id: id, patterns: patterns, consumer: consumer})
	r.logger.Debug("registered consumer", "patterns", patterns)

	return func() { r.unregister(id) }
}

func (r *ConsumerRegistry) unregister(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, e := range r.entries {
		if e.id == id {
			r.entries = append(r.entries[:i:i], r.entries[i+1:]...)
			r.logger.Debug("unregistered consumer", "patterns", e.patterns)
			return
		}
	}
}

// GetConsumers returns the consumers with a pattern matching the routing
// key, in registration order. Each consumer appears at most once.
func (r *ConsumerRegistry) GetConsumers(routingKey string) []EventConsumer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []EventConsumer
	for _, e := range r.entries {
		for _, p := range e.patterns {
			if MatchTopic(p, routingKey) {
				matched = append(matched, e.consumer)
				break
			}
		}
	}
	return matched
}

// Patterns returns every registered pattern, in registration order.
func (r *ConsumerRegistry) Patterns() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var patterns []string
	for _, e := range r.entries {
		patterns = append(patterns, e.patterns...)
	}
	return patterns
}

// ConsumerCount returns the number of registered consumers.
func (r *ConsumerRegistry) ConsumerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Dispatch sends an event to all matching consumers. Every consumer runs
// even if an earlier one fails; the last error is returned.
func (r *ConsumerRegistry) Dispatch(ctx context.Context, event *ConsumedEvent) error {
	consumers := r.GetConsumers(event.RoutingKey)
	if len(consumers) == 0 {
		return nil
	}

	var lastErr error
	for _, consumer := range consumers {
		if err := consumer.Handle(ctx, event); err != nil {
			r.logger.Error("consumer failed to handle event",
				"routing_key", event.RoutingKey,
				"event_id", event.EventID,
				"error", err,
			)
			lastErr = err
		}
	}
	return lastErr
}

// MatchTopic reports whether a routing key matches a topic pattern.
func MatchTopic(pattern, key string) bool {
	return matchWords(strings.Split(pattern, "."), strings.Split(key, "."))
}

func matchWords(pattern, key []string) bool {
	for len(pattern) > 0 {
		switch pattern[0] {
		case "#":
			rest := pattern[1:]
			for i := 0; i <= len(key); i++ {
				if matchWords(rest, key[i:]) {
					return true
				}
			}
			return false
		case "*":
			if len(key) == 0 {
				return false
			}
		default:
			if len(key) == 0 || key[0] != pattern[0] {
				return false
			}
		}
		pattern, key = pattern[1:], key[1:]
	}
	return len(key) == 0
}

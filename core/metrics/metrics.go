// Package metrics keeps the bot counters in Prometheus collectors. The stats
// command reads them back, so there is a single source for both.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

const namespace = "lecturebot"

var (
	startedAt = time.Now()

	messagesProcessed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_processed_total",
		Help:      "Updates received from Telegram.",
	})
	commandsExecuted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "commands_executed_total",
		Help:      "Commands dispatched, by canonical name.",
	}, []string{"command"})
	errorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "errors_total",
		Help:      "Handler failures, by category.",
	}, []string{"kind"})
	flowSteps = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "flow_steps_total",
		Help:      "Conversation steps handled, by step.",
	}, []string{"step"})
	activeConversations = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "conversations_active",
		Help:      "Conversations currently held by the state store.",
	})
	groupsSeen = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "groups_seen",
		Help:      "Distinct group chats that sent an update since start.",
	})

	groupsMu sync.Mutex
	groups   = make(map[int64]struct{})
)

func init() {
	prometheus.MustRegister(
		messagesProcessed,
		commandsExecuted,
		errorsTotal,
		flowSteps,
		activeConversations,
		groupsSeen,
	)
}

// MessageProcessed counts one received update.
func MessageProcessed() { messagesProcessed.Inc() }

// CommandExecuted counts one dispatched command.
func CommandExecuted(name string) { commandsExecuted.WithLabelValues(name).Inc() }

// Error counts one handler failure of the given category.
func Error(kind string) { errorsTotal.WithLabelValues(kind).Inc() }

// FlowStep counts one handled conversation step.
func FlowStep(step string) { flowSteps.WithLabelValues(step).Inc() }

// SetActiveConversations publishes the state store size.
func SetActiveConversations(n int) { activeConversations.Set(float64(n)) }

// SeeGroup remembers a group chat id.
func SeeGroup(chatID int64) {
	groupsMu.Lock()
	defer groupsMu.Unlock()
	if _, ok := groups[chatID]; ok {
		return
	}
	groups[chatID] = struct{}{}
	groupsSeen.Set(float64(len(groups)))
}

// Snapshot is a point-in-time copy of the counters shown by the stats command.
type Snapshot struct {
	Uptime              time.Duration
	Messages            uint64
	Commands            uint64
	Errors              uint64
	Groups              int
	ActiveConversations int
}

// Read collects the current counter values.
func Read() Snapshot {
	groupsMu.Lock()
	g := len(groups)
	groupsMu.Unlock()
	return Snapshot{
		Uptime:              time.Since(startedAt),
		Messages:            uint64(sum(messagesProcessed)),
		Commands:            uint64(sum(commandsExecuted)),
		Errors:              uint64(sum(errorsTotal)),
		Groups:              g,
		ActiveConversations: int(sum(activeConversations)),
	}
}

// sum adds up every counter or gauge sample exposed by c.
func sum(c prometheus.Collector) float64 {
	ch := make(chan prometheus.Metric, 16)
	go func() {
		c.Collect(ch)
		close(ch)
	}()
	var total float64
	for m := range ch {
		var pb dto.Metric
		if err := m.Write(&pb); err != nil {
			continue
		}
		switch {
		case pb.Counter != nil:
			total += pb.Counter.GetValue()
		case pb.Gauge != nil:
			total += pb.Gauge.GetValue()
		}
	}
	return total
}

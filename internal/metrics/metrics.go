// Package metrics exposes Prometheus counters for the bot.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what handlers use to count events.
type Recorder interface {
	RecordUpdate(kind string)
	RecordRequestSubmitted(requestType string)
	RecordDecision(decision string)
	RecordDeliveryFailure(target string)
	RecordVolunteerRegistration(result string)
}

type Collector struct {
	updates     *prometheus.CounterVec
	submitted   *prometheus.CounterVec
	decisions   *prometheus.CounterVec
	deliveryErr *prometheus.CounterVec
	volunteers  *prometheus.CounterVec
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		updates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hrbot_updates_total",
			Help: "Inbound Telegram updates by kind.",
		}, []string{"kind"}),
		submitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hrbot_requests_submitted_total",
			Help: "Requests dispatched to the administrator by type.",
		}, []string{"type"}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hrbot_decisions_total",
			Help: "Administrator decisions by outcome.",
		}, []string{"decision"}),
		deliveryErr: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hrbot_delivery_failures_total",
			Help: "Outbound messages that could not be delivered, by target.",
		}, []string{"target"}),
		volunteers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hrbot_volunteer_registrations_total",
			Help: "Volunteer registration attempts by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		c.updates,
		c.submitted,
		c.decisions,
		c.deliveryErr,
		c.volunteers,
	)

	return c
}

func (c *Collector) RecordUpdate(kind string) {
	c.updates.WithLabelValues(kind).Inc()
}

func (c *Collector) RecordRequestSubmitted(requestType string) {
	c.submitted.WithLabelValues(requestType).Inc()
}

func (c *Collector) RecordDecision(decision string) {
	c.decisions.WithLabelValues(decision).Inc()
}

func (c *Collector) RecordDeliveryFailure(target string) {
	c.deliveryErr.WithLabelValues(target).Inc()
}

func (c *Collector) RecordVolunteerRegistration(result string) {
	c.volunteers.WithLabelValues(result).Inc()
}

// Handler serves the metrics registered in g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

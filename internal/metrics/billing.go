// Package metrics содержит prometheus-метрики биллинга групп.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BillingMetrics метрики создания групп и жизненного цикла подписок.
type BillingMetrics interface {
	IncGroupCreated()
	IncCompensation(result string)
	IncGatewayFailure(operation string)
	IncCancellation()
	IncWebhook(event string)
}

type billingMetrics struct {
	groupsCreated   prometheus.Counter
	compensations   *prometheus.CounterVec
	gatewayFailures *prometheus.CounterVec
	cancellations   prometheus.Counter
	webhooks        *prometheus.CounterVec
}

// NewBillingMetrics регистрирует метрики в registry.
func NewBillingMetrics(registry prometheus.Registerer) BillingMetrics {
	factory := promauto.With(registry)
	return &billingMetrics{
		groupsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "nexus_groups_created_total",
			Help: "The total number of groups created with a billing subscription",
		}),
		compensations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nexus_group_compensations_total",
			Help: "The total number of group deletions after a failed subscription",
		}, []string{"result"}),
		gatewayFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nexus_gateway_failures_total",
			Help: "The total number of failed billing gateway calls",
		}, []string{"operation"}),
		cancellations: factory.NewCounter(prometheus.CounterOpts{
			Name: "nexus_subscriptions_cancelled_total",
			Help: "The total number of cancelled group subscriptions",
		}),
		webhooks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nexus_gateway_webhooks_total",
			Help: "The total number of applied gateway webhook events",
		}, []string{"event"}),
	}
}

// IncGroupCreated увеличивает счётчик созданных групп.
func (m *billingMetrics) IncGroupCreated() {
	m.groupsCreated.Inc()
}

// IncCompensation учитывает компенсацию: ok или failed.
func (m *billingMetrics) IncCompensation(result string) {
	m.compensations.WithLabelValues(result).Inc()
}

// IncGatewayFailure учитывает отказ шлюза по операции.
func (m *billingMetrics) IncGatewayFailure(operation string) {
	m.gatewayFailures.WithLabelValues(operation).Inc()
}

// IncCancellation увеличивает счётчик отмен.
func (m *billingMetrics) IncCancellation() {
	m.cancellations.Inc()
}

// IncWebhook учитывает обработанное событие шлюза.
func (m *billingMetrics) IncWebhook(event string) {
	m.webhooks.WithLabelValues(event).Inc()
}

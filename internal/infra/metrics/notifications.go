package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(notificationsTotal, linkLookupsTotal) }

var (
	notificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forum_notifier_notifications_total",
			Help: "Outbound notifications by outcome.",
		},
		[]string{"type", "outcome"}, // outcome: sent | disabled | filtered | unbound | no_post | failed
	)

	linkLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forum_notifier_link_lookups_total",
			Help: "Chat and message link lookups by kind and result.",
		},
		[]string{"kind", "result"}, // kind: chat | binding | message; result: hit | miss | error
	)
)

func IncNotification(notificationType, outcome string) {
	notificationsTotal.WithLabelValues(norm(notificationType), norm(outcome)).Inc()
}

func IncLinkLookup(kind, result string) {
	linkLookupsTotal.WithLabelValues(norm(kind), norm(result)).Inc()
}

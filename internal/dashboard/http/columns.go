package dashboardhttp

import (
	"github.com/webhooks-analytics/console/internal/dashboard"
	"github.com/webhooks-analytics/console/internal/widget"
)

var (
	partnerColumns = widget.NewTable(
		widget.Col("partner", "Partner", func(p dashboard.PartnerPerformance) any { return p.Partner }),
		widget.Col("success", "Success %", func(p dashboard.PartnerPerformance) any { return p.Success }),
		widget.Col("failure", "Failure %", func(p dashboard.PartnerPerformance) any { return p.Failure }),
	)

	registryColumns = widget.NewTable(
		widget.Col("domain", "Domain", func(e dashboard.SchemaEntry) any { return e.Domain }),
		widget.Col("event", "Event", func(e dashboard.SchemaEntry) any { return e.Event }),
		widget.Col("version", "Version", func(e dashboard.SchemaEntry) any { return e.Version }),
		widget.Col("status", "Status", func(e dashboard.SchemaEntry) any { return e.Status }),
		widget.Col("eventsPerDay", "Events/Day", func(e dashboard.SchemaEntry) any { return e.EventsPerDay }),
	)

	subscriptionColumns = widget.NewTable(
		widget.Col("partner", "Partner", func(s dashboard.Subscription) any { return s.Partner }),
		widget.Col("event", "Event", func(s dashboard.Subscription) any { return s.Event }),
		widget.Col("status", "Status", func(s dashboard.Subscription) any { return s.Status }),
		widget.Col("deliveryUrl", "Delivery URL", func(s dashboard.Subscription) any { return s.DeliveryURL }),
	)

	auditColumns = widget.NewTable(
		widget.Col("actor", "Actor", func(e dashboard.AuditEntry) any { return e.Actor }),
		widget.Col("action", "Action", func(e dashboard.AuditEntry) any { return e.Action }),
		widget.Col("timestamp", "Timestamp", func(e dashboard.AuditEntry) any { return e.Timestamp }),
	)
)

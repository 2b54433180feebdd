// Package notifications announces changes to verzoeken on the notification channel.
package notifications

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/verzoeken/pkg/kafka"
	"github.com/Ramsey-B/verzoeken/pkg/metrics"
	"github.com/Ramsey-B/verzoeken/pkg/tracing"
)

const (
	ActionCreate        = "create"
	ActionUpdate        = "update"
	ActionPartialUpdate = "partial_update"
	ActionDestroy       = "destroy"
)

// Notification is the message published for every change. HoofdObject is the url of the verzoek
// the changed resource belongs to.
type Notification struct {
	Kanaal       string            `json:"kanaal"`
	HoofdObject  string            `json:"hoofdObject"`
	Resource     string            `json:"resource"`
	ResourceURL  string            `json:"resourceUrl"`
	Actie        string            `json:"actie"`
	Aanmaakdatum time.Time         `json:"aanmaakdatum"`
	Kenmerken    map[string]string `json:"kenmerken"`
}

type Publisher interface {
	Publish(ctx context.Context, n Notification) error
}

// KafkaPublisher keys messages on the main object so changes of one verzoek stay ordered.
type KafkaPublisher struct {
	producer *kafka.Producer
}

func NewKafkaPublisher(producer *kafka.Producer) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, n Notification) error {
	return p.producer.PublishJSON(ctx, n.HoofdObject, n, map[string]string{
		"kanaal":   n.Kanaal,
		"resource": n.Resource,
		"actie":    n.Actie,
	})
}

type Noop struct{}

func (Noop) Publish(context.Context, Notification) error {
	return nil
}

// Notifier fills in the channel and publishes. Failures are logged and never returned, a change
// that was stored stays stored.
type Notifier struct {
	kanaal    string
	publisher Publisher
	logger    ectologger.Logger
	now       func() time.Time
}

func NewNotifier(kanaal string, publisher Publisher, logger ectologger.Logger) *Notifier {
	return &Notifier{
		kanaal:    kanaal,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Notify publishes one change. bronorganisatie is the kenmerk subscribers filter on.
func (n *Notifier) Notify(ctx context.Context, actie, resource, resourceURL, hoofdObject, bronorganisatie string) {
	ctx, span := tracing.StartSpan(ctx, "Notifier.Notify")
	defer span.End()

	msg := Notification{
		Kanaal:       n.kanaal,
		HoofdObject:  hoofdObject,
		Resource:     resource,
		ResourceURL:  resourceURL,
		Actie:        actie,
		Aanmaakdatum: n.now().UTC(),
		Kenmerken:    map[string]string{"bronorganisatie": bronorganisatie},
	}

	if err := n.publisher.Publish(ctx, msg); err != nil {
		tracing.Fail(span, err)
		metrics.RecordNotification(resource, "failure")
		n.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"resource":     resource,
			"resource_url": resourceURL,
			"actie":        actie,
		}).Error("failed to publish notification")
		return
	}
	metrics.RecordNotification(resource, "success")
}

// internal/subscription/intake.go
//
// Subscriber intake pipeline: raw form → value objects → one INSERT.
//
// Workflow
// --------
//  1. subscriber.New parses name and email.  Any failure ends here with
//     Rejected, and nothing is written.
//  2. The Inserter stores the NewSubscriber.  Failure is Failed; success is
//     Accepted.
//
// Intake itself holds no mutable state and is safe for concurrent use.  Two
// submissions for the same email are independent and both succeed.
package subscription

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/yanizio/newsletter/internal/metrics"
	"github.com/yanizio/newsletter/internal/requestinfo"
	"github.com/yanizio/newsletter/internal/subscriber"
)

// RawSubmission is the untrusted form payload.
type RawSubmission struct {
	Email string
	Name  string
}

// Status is the coarse result of one intake.
type Status int

const (
	Accepted Status = iota + 1
	Rejected        // validation failed, nothing written
	Failed          // validation passed, storage failed
)

func (s Status) String() string {
	switch s {
	case Accepted:
		return metrics.OutcomeAccepted
	case Rejected:
		return metrics.OutcomeRejected
	case Failed:
		return metrics.OutcomeFailed
	default:
		return "unknown"
	}
}

// Outcome is what Handle returns.  Err is nil only when Status is Accepted.
type Outcome struct {
	Status Status
	Err    error
}

// Inserter is the storage contract the pipeline needs.  *Repository
// satisfies it.
type Inserter interface {
	Insert(ctx context.Context, s subscriber.NewSubscriber) error
}

// Intake runs the pipeline.
type Intake struct {
	store  Inserter
	log    *zap.Logger
	tracer trace.Tracer
}

// NewIntake wires the pipeline.  A nil logger means no logging.
func NewIntake(store Inserter, log *zap.Logger) *Intake {
	if log == nil {
		log = zap.NewNop()
	}
	return &Intake{store: store, log: log, tracer: otel.Tracer(tracerName)}
}

// Handle validates raw and, when valid, persists it.
func (in *Intake) Handle(ctx context.Context, raw RawSubmission) Outcome {
	ctx, span := in.tracer.Start(ctx, "Adding a new subscriber",
		trace.WithAttributes(
			attribute.String("subscriber_email", raw.Email),
			attribute.String("subscriber_name", raw.Name),
		))
	defer span.End()

	log := in.log.With(
		zap.String("subscriber_email", raw.Email),
		zap.String("subscriber_name", raw.Name),
	)
	if info := requestinfo.FromContext(ctx); info != nil {
		log = log.With(zap.String("request_id", info.RequestID))
	}

	out := in.handle(ctx, raw, log)
	span.SetAttributes(attribute.String("outcome", out.Status.String()))
	metrics.IntakeTotal.WithLabelValues(out.Status.String()).Inc()
	return out
}

func (in *Intake) handle(ctx context.Context, raw RawSubmission, log *zap.Logger) Outcome {
	s, err := subscriber.New(raw.Name, raw.Email)
	if err != nil {
		log.Info("subscription rejected", zap.Error(err))
		return Outcome{Status: Rejected, Err: err}
	}

	if err := in.store.Insert(ctx, s); err != nil {
		log.Error("subscription not saved", zap.Error(err))
		return Outcome{Status: Failed, Err: err}
	}

	log.Info("new subscriber saved")
	return Outcome{Status: Accepted}
}

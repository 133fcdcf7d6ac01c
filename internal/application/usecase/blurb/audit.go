package blurb

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/khoahotran/fusion-resume/internal/domain/blurb"
	"github.com/khoahotran/fusion-resume/pkg/logger"
)

type AuditOutcome string

const (
	// AuditConsistent: the store agrees with the event.
	AuditConsistent AuditOutcome = "consistent"
	// AuditMissing: a created/updated blurb is no longer stored, usually deleted since.
	AuditMissing AuditOutcome = "missing"
	// AuditLingering: a deleted blurb is still stored.
	AuditLingering AuditOutcome = "lingering"
	AuditUnknown   AuditOutcome = "unknown_event"
)

// AuditBlurbEventUseCase checks each blurb change event against the store and
// writes one audit log line per event.
type AuditBlurbEventUseCase struct {
	repo   blurb.Repository
	logger logger.Logger
}

func NewAuditBlurbEventUseCase(r blurb.Repository, log logger.Logger) *AuditBlurbEventUseCase {
	return &AuditBlurbEventUseCase{repo: r, logger: log}
}

func (uc *AuditBlurbEventUseCase) Execute(ctx context.Context, e blurb.Event) (AuditOutcome, error) {
	ctx, span := tracer.Start(ctx, "AuditBlurbEvent", trace.WithAttributes(
		attribute.Int64("blurb_id", e.BlurbID),
		attribute.String("event_type", string(e.Type)),
	))
	defer span.End()

	exists, err := uc.repo.ExistsByID(ctx, e.BlurbID)
	if err != nil {
		return "", recordErr(span, fmt.Errorf("check blurb %d failed: %w", e.BlurbID, err))
	}

	var outcome AuditOutcome
	switch e.Type {
	case blurb.EventCreated, blurb.EventUpdated:
		outcome = AuditConsistent
		if !exists {
			outcome = AuditMissing
		}
	case blurb.EventDeleted:
		outcome = AuditConsistent
		if exists {
			outcome = AuditLingering
		}
	default:
		outcome = AuditUnknown
	}
	span.SetAttributes(attribute.String("outcome", string(outcome)))

	fields := []zap.Field{
		zap.String("event_type", string(e.Type)),
		zap.Int64("blurb_id", e.BlurbID),
		zap.Int64("user_id", e.UserID),
		zap.Time("occurred_at", e.OccurredAt),
		zap.String("outcome", string(outcome)),
	}
	if outcome == AuditConsistent {
		uc.logger.Info("Blurb event audited", fields...)
	} else {
		uc.logger.Warn("Blurb event audited", fields...)
	}
	return outcome, nil
}

package blurb

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/khoahotran/fusion-resume/internal/domain/blurb"
	"github.com/khoahotran/fusion-resume/pkg/logger"
)

var tracer = otel.Tracer("blurb_usecase")

// BlurbUseCase exposes the blurb store under domain names. It adds no
// validation; callers validate before saving.
type BlurbUseCase struct {
	repo      blurb.Repository
	publisher blurb.EventPublisher
	logger    logger.Logger
	inflight  sync.WaitGroup
}

// NewBlurbUseCase wires the use case. publisher may be nil, which disables events.
func NewBlurbUseCase(r blurb.Repository, p blurb.EventPublisher, log logger.Logger) *BlurbUseCase {
	return &BlurbUseCase{repo: r, publisher: p, logger: log}
}

// Save inserts b when it has no id yet and overwrites the stored record otherwise.
func (uc *BlurbUseCase) Save(ctx context.Context, b *blurb.SkillBlurb) (*blurb.SkillBlurb, error) {
	ctx, span := tracer.Start(ctx, "Save")
	defer span.End()

	var (
		saved     *blurb.SkillBlurb
		err       error
		eventType blurb.EventType
	)
	if b.IsNew() {
		saved, err = uc.repo.Insert(ctx, b)
		eventType = blurb.EventCreated
	} else {
		saved, err = uc.repo.Update(ctx, b)
		eventType = blurb.EventUpdated
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int64("blurb_id", saved.ID), attribute.String("operation", string(eventType)))
	uc.publish(blurb.Event{Type: eventType, BlurbID: saved.ID, UserID: saved.UserID, OccurredAt: saved.UpdatedAt})
	return saved, nil
}

func (uc *BlurbUseCase) FindAll(ctx context.Context) ([]*blurb.SkillBlurb, error) {
	ctx, span := tracer.Start(ctx, "FindAll")
	defer span.End()

	blurbs, err := uc.repo.FindAll(ctx)
	return blurbs, recordErr(span, err)
}

// FindByID reports found=false when no blurb has the id.
func (uc *BlurbUseCase) FindByID(ctx context.Context, id int64) (*blurb.SkillBlurb, bool, error) {
	ctx, span := tracer.Start(ctx, "FindByID", trace.WithAttributes(attribute.Int64("blurb_id", id)))
	defer span.End()

	b, found, err := uc.repo.FindByID(ctx, id)
	return b, found, recordErr(span, err)
}

func (uc *BlurbUseCase) FindByUserID(ctx context.Context, userID int64) ([]*blurb.SkillBlurb, error) {
	ctx, span := tracer.Start(ctx, "FindByUserID", trace.WithAttributes(attribute.Int64("user_id", userID)))
	defer span.End()

	blurbs, err := uc.repo.FindByUserID(ctx, userID)
	return blurbs, recordErr(span, err)
}

func (uc *BlurbUseCase) FindByUserIDAndTitle(ctx context.Context, userID int64, title string) ([]*blurb.SkillBlurb, error) {
	ctx, span := tracer.Start(ctx, "FindByUserIDAndTitle", trace.WithAttributes(attribute.Int64("user_id", userID)))
	defer span.End()

	blurbs, err := uc.repo.FindByUserIDAndTitleContains(ctx, userID, title)
	return blurbs, recordErr(span, err)
}

func (uc *BlurbUseCase) FindByUserIDAndKeyword(ctx context.Context, userID int64, keyword string) ([]*blurb.SkillBlurb, error) {
	ctx, span := tracer.Start(ctx, "FindByUserIDAndKeyword", trace.WithAttributes(attribute.Int64("user_id", userID)))
	defer span.End()

	blurbs, err := uc.repo.FindByUserIDAndKeywordsContains(ctx, userID, keyword)
	return blurbs, recordErr(span, err)
}

func (uc *BlurbUseCase) ExistsByID(ctx context.Context, id int64) (bool, error) {
	ctx, span := tracer.Start(ctx, "ExistsByID", trace.WithAttributes(attribute.Int64("blurb_id", id)))
	defer span.End()

	exists, err := uc.repo.ExistsByID(ctx, id)
	return exists, recordErr(span, err)
}

func (uc *BlurbUseCase) DeleteByID(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "DeleteByID", trace.WithAttributes(attribute.Int64("blurb_id", id)))
	defer span.End()

	if err := uc.repo.DeleteByID(ctx, id); err != nil {
		return recordErr(span, err)
	}
	uc.publish(blurb.Event{Type: blurb.EventDeleted, BlurbID: id, OccurredAt: time.Now().UTC()})
	return nil
}

// Wait blocks until every pending event publish has finished.
func (uc *BlurbUseCase) Wait() {
	uc.inflight.Wait()
}

func (uc *BlurbUseCase) publish(e blurb.Event) {
	if uc.publisher == nil {
		return
	}
	uc.inflight.Add(1)
	go func() {
		defer uc.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := uc.publisher.PublishBlurbEvent(ctx, e); err != nil {
			uc.logger.Error("Failed to publish blurb event", err,
				zap.String("event_type", string(e.Type)), zap.Int64("blurb_id", e.BlurbID))
		}
	}()
}

func recordErr(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
	}
	return err
}

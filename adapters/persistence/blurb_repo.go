package persistence

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khoahotran/fusion-resume/internal/domain/blurb"
	"github.com/khoahotran/fusion-resume/pkg/apperror"
	"github.com/khoahotran/fusion-resume/pkg/logger"
)

const blurbColumns = "id, user_id, title, content, keywords, created_at, updated_at"

type postgresBlurbRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
	now    func() time.Time
}

func NewPostgresBlurbRepo(db *pgxpool.Pool, logger logger.Logger) blurb.Repository {
	return &postgresBlurbRepo{db: db, logger: logger, now: time.Now}
}

var psqlBlurb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func blurbNotFound(id int64) error {
	e := apperror.NewNotFound("skill blurb", strconv.FormatInt(id, 10))
	e.Err = blurb.ErrBlurbNotFound
	return e
}

// containsPattern builds an ILIKE pattern matching s literally anywhere.
func containsPattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func scanBlurb(row pgx.Row) (*blurb.SkillBlurb, error) {
	b := &blurb.SkillBlurb{}
	err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.Title,
		&b.Content,
		&b.Keywords,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func scanBlurbs(rows pgx.Rows) ([]*blurb.SkillBlurb, error) {
	defer rows.Close()
	blurbs := make([]*blurb.SkillBlurb, 0)
	for rows.Next() {
		b, err := scanBlurb(rows)
		if err != nil {
			return nil, apperror.NewInternal("failed to scan skill blurb row", err)
		}
		blurbs = append(blurbs, b)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating skill blurb rows", err)
	}
	return blurbs, nil
}

func (r *postgresBlurbRepo) Insert(ctx context.Context, b *blurb.SkillBlurb) (*blurb.SkillBlurb, error) {
	now := r.now().UTC().Truncate(time.Microsecond)
	query := `
		INSERT INTO skill_blurbs (user_id, title, content, keywords, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING ` + blurbColumns

	saved, err := scanBlurb(r.db.QueryRow(ctx, query, b.UserID, b.Title, b.Content, b.Keywords, now))
	if err != nil {
		return nil, apperror.NewInternal("failed to insert skill blurb", err)
	}
	return saved, nil
}

func (r *postgresBlurbRepo) Update(ctx context.Context, b *blurb.SkillBlurb) (*blurb.SkillBlurb, error) {
	now := r.now().UTC().Truncate(time.Microsecond)
	query := `
		UPDATE skill_blurbs SET
			user_id = $2, title = $3, content = $4, keywords = $5,
			updated_at = GREATEST($6, updated_at)
		WHERE id = $1
		RETURNING ` + blurbColumns

	saved, err := scanBlurb(r.db.QueryRow(ctx, query, b.ID, b.UserID, b.Title, b.Content, b.Keywords, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Warn("Skill blurb vanished before update", zap.Int64("blurb_id", b.ID))
			return nil, blurbNotFound(b.ID)
		}
		return nil, apperror.NewInternal("failed to update skill blurb", err)
	}
	return saved, nil
}

func (r *postgresBlurbRepo) FindByID(ctx context.Context, id int64) (*blurb.SkillBlurb, bool, error) {
	query := `SELECT ` + blurbColumns + ` FROM skill_blurbs WHERE id = $1`
	b, err := scanBlurb(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, apperror.NewInternal("failed to find skill blurb", err)
	}
	return b, true, nil
}

func (r *postgresBlurbRepo) FindAll(ctx context.Context) ([]*blurb.SkillBlurb, error) {
	return r.list(ctx, psqlBlurb.Select(blurbColumns).From("skill_blurbs"))
}

func (r *postgresBlurbRepo) FindByUserID(ctx context.Context, userID int64) ([]*blurb.SkillBlurb, error) {
	return r.list(ctx, psqlBlurb.Select(blurbColumns).
		From("skill_blurbs").
		Where(sq.Eq{"user_id": userID}))
}

func (r *postgresBlurbRepo) FindByUserIDAndTitleContains(ctx context.Context, userID int64, title string) ([]*blurb.SkillBlurb, error) {
	return r.list(ctx, psqlBlurb.Select(blurbColumns).
		From("skill_blurbs").
		Where(sq.Eq{"user_id": userID}).
		Where(sq.ILike{"title": containsPattern(title)}))
}

func (r *postgresBlurbRepo) FindByUserIDAndKeywordsContains(ctx context.Context, userID int64, keyword string) ([]*blurb.SkillBlurb, error) {
	return r.list(ctx, psqlBlurb.Select(blurbColumns).
		From("skill_blurbs").
		Where(sq.Eq{"user_id": userID}).
		Where(sq.ILike{"keywords": containsPattern(keyword)}))
}

func (r *postgresBlurbRepo) list(ctx context.Context, builder sq.SelectBuilder) ([]*blurb.SkillBlurb, error) {
	sql, args, err := builder.OrderBy("id ASC").ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build skill blurb query", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to query skill blurbs", err)
	}
	return scanBlurbs(rows)
}

func (r *postgresBlurbRepo) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM skill_blurbs WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, apperror.NewInternal("failed to check skill blurb existence", err)
	}
	return exists, nil
}

func (r *postgresBlurbRepo) DeleteByID(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM skill_blurbs WHERE id = $1`, id)
	if err != nil {
		return apperror.NewInternal("failed to delete skill blurb", err)
	}
	if cmdTag.RowsAffected() == 0 {
		r.logger.Debug("Delete of absent skill blurb ignored", zap.Int64("blurb_id", id))
	}
	return nil
}

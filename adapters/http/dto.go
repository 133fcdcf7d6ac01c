package http

import (
	"time"

	"github.com/khoahotran/fusion-resume/internal/domain/blurb"
)

// LocalDateTimeLayout is ISO-8601 without an offset, in server local time.
const LocalDateTimeLayout = "2006-01-02T15:04:05.999999"

// LocalDateTime marshals as an ISO-8601 local date-time string.
type LocalDateTime time.Time

func (t LocalDateTime) MarshalJSON() ([]byte, error) {
	tt := time.Time(t)
	if tt.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + tt.Local().Format(LocalDateTimeLayout) + `"`), nil
}

func (t *LocalDateTime) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		*t = LocalDateTime{}
		return nil
	}
	parsed, err := time.ParseInLocation(`"`+LocalDateTimeLayout+`"`, s, time.Local)
	if err != nil {
		return err
	}
	*t = LocalDateTime(parsed)
	return nil
}

// Skill blurb DTOs

type SkillBlurbDTO struct {
	ID        int64         `json:"id"`
	UserID    int64         `json:"userId"`
	Title     string        `json:"title"`
	Content   string        `json:"content"`
	Keywords  *string       `json:"keywords"`
	CreatedAt LocalDateTime `json:"createdAt"`
	UpdatedAt LocalDateTime `json:"updatedAt"`
}

// SaveSkillBlurbRequest is the body of POST and PUT. Any id or timestamps a
// client sends are ignored.
type SaveSkillBlurbRequest struct {
	UserID   *int64  `json:"userId" binding:"required"`
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	Keywords *string `json:"keywords"`
}

func (r *SaveSkillBlurbRequest) ToDomain(id int64) *blurb.SkillBlurb {
	return &blurb.SkillBlurb{
		ID:       id,
		UserID:   *r.UserID,
		Title:    r.Title,
		Content:  r.Content,
		Keywords: r.Keywords,
	}
}

func ToSkillBlurbDTO(b *blurb.SkillBlurb) SkillBlurbDTO {
	return SkillBlurbDTO{
		ID:        b.ID,
		UserID:    b.UserID,
		Title:     b.Title,
		Content:   b.Content,
		Keywords:  b.Keywords,
		CreatedAt: LocalDateTime(b.CreatedAt),
		UpdatedAt: LocalDateTime(b.UpdatedAt),
	}
}

func ToSkillBlurbDTOs(bs []*blurb.SkillBlurb) []SkillBlurbDTO {
	dtos := make([]SkillBlurbDTO, len(bs))
	for i, b := range bs {
		dtos[i] = ToSkillBlurbDTO(b)
	}
	return dtos
}

package blurb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxTitleLength    = 100
	MaxContentLength  = 2000
	MaxKeywordsLength = 500
)

// SkillBlurb is a titled block of text describing one skill of a user.
// ID is zero until the store assigns one.
type SkillBlurb struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Keywords  *string   `json:"keywords"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var (
	ErrBlurbNotFound    = errors.New("skill blurb not found")
	ErrTitleRequired    = errors.New("title is required")
	ErrTitleTooLong     = fmt.Errorf("title must be less than %d characters", MaxTitleLength)
	ErrContentRequired  = errors.New("content is required")
	ErrContentTooLong   = fmt.Errorf("content must be less than %d characters", MaxContentLength)
	ErrKeywordsTooLong  = fmt.Errorf("keywords must be less than %d characters", MaxKeywordsLength)
	nonKeywordCharRegex = regexp.MustCompile(`[^a-zA-Z0-9\s]`)
	whitespaceRunRegex  = regexp.MustCompile(`\s+`)
)

func (b *SkillBlurb) IsNew() bool {
	return b.ID == 0
}

// Validate checks the blank and length constraints. All violations are joined.
func (b *SkillBlurb) Validate() error {
	var errs []error
	if strings.TrimSpace(b.Title) == "" {
		errs = append(errs, ErrTitleRequired)
	} else if utf8.RuneCountInString(b.Title) > MaxTitleLength {
		errs = append(errs, ErrTitleTooLong)
	}
	if strings.TrimSpace(b.Content) == "" {
		errs = append(errs, ErrContentRequired)
	} else if utf8.RuneCountInString(b.Content) > MaxContentLength {
		errs = append(errs, ErrContentTooLong)
	}
	if b.Keywords != nil && utf8.RuneCountInString(*b.Keywords) > MaxKeywordsLength {
		errs = append(errs, ErrKeywordsTooLong)
	}
	return errors.Join(errs...)
}

// GenerateKeywords lowercases title and content, drops everything but ASCII
// letters, digits and whitespace, and turns whitespace runs into commas.
func GenerateKeywords(title, content string) string {
	combined := strings.ToLower(title + " " + content)
	combined = nonKeywordCharRegex.ReplaceAllString(combined, "")
	return whitespaceRunRegex.ReplaceAllString(combined, ",")
}

type Repository interface {
	Insert(ctx context.Context, b *SkillBlurb) (*SkillBlurb, error)
	Update(ctx context.Context, b *SkillBlurb) (*SkillBlurb, error)
	FindByID(ctx context.Context, id int64) (*SkillBlurb, bool, error)
	FindAll(ctx context.Context) ([]*SkillBlurb, error)
	FindByUserID(ctx context.Context, userID int64) ([]*SkillBlurb, error)
	FindByUserIDAndTitleContains(ctx context.Context, userID int64, title string) ([]*SkillBlurb, error)
	FindByUserIDAndKeywordsContains(ctx context.Context, userID int64, keyword string) ([]*SkillBlurb, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	DeleteByID(ctx context.Context, id int64) error
}

type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventDeleted EventType = "deleted"
)

type Event struct {
	Type       EventType `json:"event_type"`
	BlurbID    int64     `json:"blurb_id"`
	UserID     int64     `json:"user_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher announces blurb changes to other services.
type EventPublisher interface {
	PublishBlurbEvent(ctx context.Context, e Event) error
}

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/khoahotran/fusion-resume/adapters/persistence"
	"github.com/khoahotran/fusion-resume/internal/domain/blurb"
	"github.com/khoahotran/fusion-resume/pkg/logger"
)

var samples = []struct{ title, content string }{
	{"AWS", "3+ years designing scalable cloud architectures using EC2, S3, Lambda and RDS."},
	{"Go", "Built high-throughput HTTP and gRPC services in Go with Postgres and Kafka."},
	{"Kubernetes", "Operated production clusters: Helm charts, autoscaling, rolling deploys."},
	{"PostgreSQL", "Schema design, query tuning and zero-downtime migrations."},
}

func main() {
	fmt.Println("adding sample skill blurbs into database...")

	if err := godotenv.Load(); err != nil {
		log.Println("warning: .env file not found, use system environment variables.")
	}

	dsn := os.Getenv("DB_DSN")
	userID := int64(1)
	if raw := os.Getenv("SEED_USER_ID"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			log.Fatalf("SEED_USER_ID must be an integer: %v", err)
		}
		userID = v
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("cannot connect DB: %v", err)
	}
	defer pool.Close()

	repo := persistence.NewPostgresBlurbRepo(pool, logger.NewNopLogger())
	for _, s := range samples {
		keywords := blurb.GenerateKeywords(s.title, s.content)
		if len(keywords) > blurb.MaxKeywordsLength {
			keywords = keywords[:blurb.MaxKeywordsLength]
		}
		b := &blurb.SkillBlurb{UserID: userID, Title: s.title, Content: s.content, Keywords: &keywords}
		if err := b.Validate(); err != nil {
			log.Fatalf("invalid sample %q: %v", s.title, err)
		}
		saved, err := repo.Insert(ctx, b)
		if err != nil {
			log.Fatalf("cannot add blurb %q: %v", s.title, err)
		}
		fmt.Printf("added blurb #%d '%s' for user %d\n", saved.ID, saved.Title, userID)
	}
}

package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/angelmondragon/soundstall-backend/pkg/db/dbtest"
	"github.com/angelmondragon/soundstall-backend/pkg/db/models"
)

type ctxKey struct{}

func TestBaseDB_BindsContext(t *testing.T) {
	db := dbtest.OpenSQLite(t)
	base := NewBase(db)

	ctx := context.WithValue(context.Background(), ctxKey{}, "value")
	withCtx := base.DB(ctx)
	if withCtx == nil || withCtx.Statement == nil {
		t.Fatalf("expected statement created after WithContext")
	}
	if withCtx.Statement.Context != ctx {
		t.Fatalf("expected context to flow through, got %v", withCtx.Statement.Context)
	}
	if base.DB(nil) != db {
		t.Fatalf("expected nil context to return raw connection")
	}
}

func TestBaseDialect(t *testing.T) {
	if got := NewBase(dbtest.OpenSQLite(t)).Dialect(); got != "sqlite" {
		t.Fatalf("expected sqlite dialect, got %q", got)
	}
	if NewBase(nil).Dialect() != "" {
		t.Fatalf("expected empty dialect without a connection")
	}
}

func TestBaseFirst(t *testing.T) {
	base := NewBase(dbtest.OpenSQLite(t, &models.Question{}))
	ctx := context.Background()

	q := models.Question{ProductID: uuid.New(), AskedBy: uuid.New(), Question: "Restock?"}
	if err := base.DB(ctx).Create(&q).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	var got models.Question
	found, err := base.First(ctx, &got, "id = ?", q.ID)
	if err != nil || !found {
		t.Fatalf("expected row, found=%v err=%v", found, err)
	}
	if got.Question != "Restock?" {
		t.Fatalf("unexpected row %+v", got)
	}

	found, err = base.First(ctx, &got, "id = ?", uuid.New())
	if err != nil || found {
		t.Fatalf("expected miss without error, found=%v err=%v", found, err)
	}
}

func TestBaseIsUniqueViolation(t *testing.T) {
	sqliteBase := NewBase(dbtest.OpenSQLite(t))
	sqliteErr := errors.New("UNIQUE constraint failed: reviews.product_id, reviews.user_id")
	if !sqliteBase.IsUniqueViolation(sqliteErr, "idx_reviews_product_user") {
		t.Fatalf("sqlite unique failures should match regardless of index name")
	}
	if sqliteBase.IsUniqueViolation(errors.New("disk I/O error"), "idx_reviews_product_user") {
		t.Fatalf("unrelated error matched")
	}

	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "idx_cart_items_user_product"}
	if !sqliteBase.IsUniqueViolation(pgErr, "idx_reviews_product_user") {
		t.Fatalf("non-postgres dialect ignores the index name")
	}
}

package knowledge

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestStoreSearch(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	store := NewStore(db)
	metadataBytes, err := json.Marshal(map[string]any{"page": float64(3)})
	if err != nil {
		t.Fatalf("marshal metadata: %v", err)
	}

	rows := sqlmock.NewRows([]string{
		"id",
		"source_label",
		"category",
		"chunk_text",
		"chunk_index",
		"metadata",
		"similarity",
	}).AddRow(
		"1",
		"Porto",
		"Fees",
		"The administration fee is charged over the full term.",
		0,
		metadataBytes,
		0.91,
	)

	mock.ExpectQuery("SELECT id").WithArgs(sqlmock.AnyArg(), 3).WillReturnRows(rows)

	passages, err := store.Search(context.Background(), []float32{0.1, 0.2}, 3)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(passages) != 1 {
		t.Fatalf("expected 1 passage, got %d", len(passages))
	}
	if passages[0].SourceLabel != "Porto" || passages[0].Category != "Fees" {
		t.Fatalf("unexpected passage %+v", passages[0])
	}
	if passages[0].Metadata["page"] != float64(3) {
		t.Fatalf("unexpected metadata %v", passages[0].Metadata)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestStoreSearchRequiresEmbedding(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	if _, err := NewStore(db).Search(context.Background(), nil, 3); err == nil {
		t.Fatal("expected error without embedding")
	}
}

func TestStoreReplaceSource(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	store := NewStore(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM voicegw.knowledge").WithArgs("Porto").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectPrepare("INSERT INTO voicegw.knowledge")
	mock.ExpectExec("INSERT INTO voicegw.knowledge").
		WithArgs("Porto", "Fees", "chunk one", 0, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO voicegw.knowledge").
		WithArgs("Porto", "Bidding", "chunk two", 1, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	passages := []Passage{
		{Category: "Fees", Text: "chunk one", Index: 0, Embedding: []float32{0.1}},
		{Category: "Bidding", Text: "chunk two", Index: 1, Embedding: []float32{0.2}},
	}
	if err := store.ReplaceSource(context.Background(), "Porto", passages); err != nil {
		t.Fatalf("replace source: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestStoreReplaceSourceRequiresLabel(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	if err := NewStore(db).ReplaceSource(context.Background(), "", nil); err == nil {
		t.Fatal("expected error without source label")
	}
}

package store

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/jobpath-app/go-discovery/internal/domain"
)

var upsertPattern = regexp.QuoteMeta("ON CONFLICT (source, external_id) DO UPDATE")

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &PostgresStore{db: db, tableName: "listings"}, mock
}

func storedListing(id string) domain.Listing {
	return domain.Listing{
		Source:      domain.SourceJSearch,
		ExternalID:  id,
		Title:       "Barista",
		Company:     "Blue Bottle Coffee",
		Description: "Craft espresso drinks.",
		Location:    "Oakland, CA",
	}
}

func internalIDRow(id int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"internal_id"}).AddRow(id)
}

func TestUpsert_ReturnsInternalIDs(t *testing.T) {
	st, mock := newMockStore(t)

	prep := mock.ExpectPrepare(upsertPattern)
	prep.ExpectQuery().WillReturnRows(internalIDRow(11))
	prep.ExpectQuery().WillReturnRows(internalIDRow(12))

	ids, err := st.Upsert(context.Background(), []domain.Listing{storedListing("a1"), storedListing("a2")})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if ids["a1"] != 11 || ids["a2"] != 12 {
		t.Errorf("ids = %v, want a1->11 a2->12", ids)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUpsert_SameKeyKeepsInternalID(t *testing.T) {
	st, mock := newMockStore(t)

	// Re-ingesting the same (source, external_id) conflicts into an
	// update and returns the identity assigned on first persistence.
	prep := mock.ExpectPrepare(upsertPattern)
	prep.ExpectQuery().WillReturnRows(internalIDRow(7))
	prep2 := mock.ExpectPrepare(upsertPattern)
	prep2.ExpectQuery().WillReturnRows(internalIDRow(7))

	first, err := st.Upsert(context.Background(), []domain.Listing{storedListing("a1")})
	if err != nil {
		t.Fatalf("first Upsert() error = %v", err)
	}
	second, err := st.Upsert(context.Background(), []domain.Listing{storedListing("a1")})
	if err != nil {
		t.Fatalf("second Upsert() error = %v", err)
	}

	if first["a1"] != 7 || second["a1"] != first["a1"] {
		t.Errorf("ids = %v then %v, want the same internal id both times", first, second)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUpsert_PoisonRecordKeptOutOfMapping(t *testing.T) {
	st, mock := newMockStore(t)

	prep := mock.ExpectPrepare(upsertPattern)
	prep.ExpectQuery().WillReturnRows(internalIDRow(21))
	prep.ExpectQuery().WillReturnError(fmt.Errorf(`null value in column "title" violates not-null constraint`))
	prep.ExpectQuery().WillReturnRows(internalIDRow(23))

	ids, err := st.Upsert(context.Background(), []domain.Listing{
		storedListing("ok1"),
		storedListing("bad"),
		storedListing("ok2"),
	})
	if err != nil {
		t.Fatalf("Upsert() error = %v, want nil: one poison record never voids the batch", err)
	}
	if len(ids) != 2 {
		t.Fatalf("len(ids) = %d, want 2", len(ids))
	}
	if ids["ok1"] != 21 || ids["ok2"] != 23 {
		t.Errorf("ids = %v, want ok1->21 ok2->23", ids)
	}
	if _, present := ids["bad"]; present {
		t.Error("the failed record must be absent from the mapping")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUpsert_EmptyBatch(t *testing.T) {
	st, mock := newMockStore(t)

	ids, err := st.Upsert(context.Background(), nil)
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("ids = %v, want empty", ids)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestQuery_ScansListings(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM listings")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	posted := time.Date(2026, 8, 21, 14, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT internal_id, source, external_id").
		WillReturnRows(sqlmock.NewRows([]string{
			"internal_id", "source", "external_id", "title", "company", "description",
			"requirements", "location", "latitude", "longitude",
			"salary_min", "salary_max", "salary_period", "employment_type",
			"url", "posted_at",
		}).AddRow(
			int64(5), "jsearch", "x1", "Barista", "Blue Bottle Coffee", "Craft espresso drinks.",
			"", "Oakland, CA", nil, nil,
			18.5, 22.0, "hour", "part-time",
			"https://example.com/x1", posted,
		))

	listings, total, err := st.Query(context.Background(), Filters{}, 1, 20)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if total != 1 || len(listings) != 1 {
		t.Fatalf("total = %d, len = %d, want 1/1", total, len(listings))
	}

	l := listings[0]
	if l.InternalID != 5 || l.Source != domain.SourceJSearch || l.ExternalID != "x1" {
		t.Errorf("identity = %d/%s/%s", l.InternalID, l.Source, l.ExternalID)
	}
	if l.SalaryPeriod != domain.PeriodHour || l.SalaryMax != 22.0 {
		t.Errorf("salary = %v/%q", l.SalaryMax, l.SalaryPeriod)
	}
	if l.Latitude != nil {
		t.Errorf("Latitude = %v, want nil for NULL", l.Latitude)
	}
	if !l.PostedAt.Equal(posted) {
		t.Errorf("PostedAt = %v, want %v", l.PostedAt, posted)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestBuildWhere(t *testing.T) {
	s := &PostgresStore{tableName: "listings"}

	tests := []struct {
		name     string
		filters  Filters
		want     string
		wantArgs int
	}{
		{
			name: "no filters",
			want: "",
		},
		{
			name:     "text searches title and description with one arg",
			filters:  Filters{Text: "cook"},
			want:     "WHERE (title ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%')",
			wantArgs: 1,
		},
		{
			name:     "job types expand to IN placeholders",
			filters:  Filters{JobTypes: []string{"full-time", "part-time"}},
			want:     "WHERE employment_type IN ($1, $2)",
			wantArgs: 2,
		},
		{
			name:     "combined filters number sequentially",
			filters:  Filters{Location: "Reno", SalaryMin: 30000},
			want:     "WHERE location ILIKE '%' || $1 || '%' AND salary_max >= $2",
			wantArgs: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := s.buildWhere(tt.filters)
			if where != tt.want {
				t.Errorf("where = %q, want %q", where, tt.want)
			}
			if len(args) != tt.wantArgs {
				t.Errorf("len(args) = %d, want %d", len(args), tt.wantArgs)
			}
		})
	}
}

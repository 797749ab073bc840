package gormlisting

import (
	"context"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/theplant/listing"
	"github.com/theplant/listing/cursor"
	"github.com/theplant/listing/interval"
)

type Event struct {
	Gentime  int64
	SeqNum   int64
	Source   string
	Severity string
}

func (Event) TableName() string { return "events" }

func eventKey(e Event) cursor.TimeCursor {
	return cursor.TimeCursor{Time: e.Gentime, Seq: lo.ToPtr(e.SeqNum)}
}

func openDryRun(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=listing dbname=listing sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

// captureSQL records the explained SQL of every query run on db.
func captureSQL(t *testing.T, db *gorm.DB) *[]string {
	t.Helper()
	var sqls []string
	err := db.Callback().Query().After("gorm:query").Register("test:capture_sql", func(tx *gorm.DB) {
		sqls = append(sqls, tx.Dialector.Explain(tx.Statement.SQL.String(), tx.Statement.Vars...))
	})
	require.NoError(t, err)
	return &sqls
}

func TestScopeTime(t *testing.T) {
	db := openDryRun(t)
	iv := interval.Between(100, 200)

	tests := []struct {
		name       string
		seqField   string
		iv         *interval.Interval
		after      *cursor.TimeCursor
		descending bool
		limit      int
		wantSQL    string
		wantErrMsg string
	}{
		{
			name:    "first page",
			limit:   10,
			wantSQL: `SELECT * FROM "events" ORDER BY "events"."gentime" LIMIT 10`,
		},
		{
			name:    "after instant",
			after:   &cursor.TimeCursor{Time: 150},
			limit:   10,
			wantSQL: `SELECT * FROM "events" WHERE "events"."gentime" > 150 ORDER BY "events"."gentime" LIMIT 10`,
		},
		{
			name:       "descending within interval",
			iv:         &iv,
			after:      &cursor.TimeCursor{Time: 150},
			descending: true,
			limit:      5,
			wantSQL:    `SELECT * FROM "events" WHERE "events"."gentime" >= 100 AND "events"."gentime" < 200 AND "events"."gentime" < 150 ORDER BY "events"."gentime" DESC LIMIT 5`,
		},
		{
			name:     "sequence tie-break",
			seqField: "SeqNum",
			iv:       &iv,
			after:    &cursor.TimeCursor{Time: 150, Seq: lo.ToPtr[int64](7)},
			limit:    10,
			wantSQL:  `SELECT * FROM "events" WHERE "events"."gentime" >= 100 AND "events"."gentime" < 200 AND ("events"."gentime" > 150 OR ("events"."gentime" = 150 AND "events"."seq_num" > 7)) ORDER BY "events"."gentime","events"."seq_num" LIMIT 10`,
		},
		{
			name:       "sequence tie-break descending",
			seqField:   "SeqNum",
			after:      &cursor.TimeCursor{Time: 150, Seq: lo.ToPtr[int64](7)},
			descending: true,
			limit:      10,
			wantSQL:    `SELECT * FROM "events" WHERE ("events"."gentime" < 150 OR ("events"."gentime" = 150 AND "events"."seq_num" < 7)) ORDER BY "events"."gentime" DESC,"events"."seq_num" DESC LIMIT 10`,
		},
		{
			name:     "cursor without sequence",
			seqField: "SeqNum",
			after:    &cursor.TimeCursor{Time: 150},
			limit:    10,
			wantSQL:  `SELECT * FROM "events" WHERE "events"."gentime" > 150 ORDER BY "events"."gentime","events"."seq_num" LIMIT 10`,
		},
		{
			name:       "unknown field",
			seqField:   "Missing",
			limit:      10,
			wantErrMsg: `missing field "Missing" in schema`,
		},
		{
			name:       "zero limit",
			limit:      0,
			wantErrMsg: "limit must be greater than 0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
				tx = tx.Model(&Event{}).Scopes(ScopeTime("Gentime", tt.seqField, tt.iv, tt.after, tt.descending, tt.limit)).Find(&[]Event{})
				if tt.wantErrMsg != "" {
					require.ErrorContains(t, tx.Error, tt.wantErrMsg)
				} else {
					require.NoError(t, tx.Error)
				}
				return tx
			})
			if tt.wantErrMsg == "" {
				require.Equal(t, tt.wantSQL, sql)
			}
		})
	}
}

func TestTimeFinder(t *testing.T) {
	db := openDryRun(t)
	sqls := captureSQL(t, db)

	finder := NewTimeFinder[Event](
		db.Where("severity = ?", "WARNING"),
		"Gentime",
		WithSeqField[Event]("SeqNum"),
		WithInterval[Event](interval.New().SetStart(100, true)),
	)
	nodes, err := finder.Find(context.Background(), &cursor.TimeCursor{Time: 150, Seq: lo.ToPtr[int64](3)}, true, 4)
	require.NoError(t, err)
	require.Empty(t, nodes)
	require.Equal(t, []string{
		`SELECT * FROM "events" WHERE severity = 'WARNING' AND ("events"."gentime" >= 100 AND ("events"."gentime" < 150 OR ("events"."gentime" = 150 AND "events"."seq_num" < 3))) ORDER BY "events"."gentime" DESC,"events"."seq_num" DESC LIMIT 4`,
	}, *sqls)

	nodes, err = finder.Find(context.Background(), nil, false, 0)
	require.NoError(t, err)
	require.Empty(t, nodes)
	require.Len(t, *sqls, 1, "an empty batch does not query")
}

func TestTimeAdapter(t *testing.T) {
	db := openDryRun(t)
	sqls := captureSQL(t, db)

	p := listing.New(NewTimeAdapter(db, "Gentime", eventKey,
		WithSeqField[Event]("SeqNum"),
		WithAdapterOptions(cursor.WithDescending[Event](true)),
	))
	conn, err := p.Paginate(context.Background(), &listing.PaginateRequest[Event]{First: lo.ToPtr(2)})
	require.NoError(t, err)
	require.Empty(t, conn.Nodes)
	require.False(t, conn.PageInfo.HasNextPage)
	require.Equal(t, []string{
		`SELECT * FROM "events" ORDER BY "events"."gentime" DESC,"events"."seq_num" DESC LIMIT 3`,
	}, *sqls)
}

// feedRows answers each query run on db with the next batch of rows.
func feedRows(t *testing.T, db *gorm.DB, batches ...[]Event) {
	t.Helper()
	err := db.Callback().Query().After("test:capture_sql").Register("test:feed_rows", func(tx *gorm.DB) {
		dest, ok := tx.Statement.Dest.(*[]Event)
		if !ok || len(batches) == 0 {
			return
		}
		*dest = batches[0]
		batches = batches[1:]
	})
	require.NoError(t, err)
}

func TestTimeFinderReuse(t *testing.T) {
	db := openDryRun(t)
	sqls := captureSQL(t, db)

	finder := NewTimeFinder[Event](db.Model(&Event{}).Where("severity = ?", "WARNING"), "Gentime", WithSeqField[Event]("SeqNum"))
	ctx := context.Background()
	for _, after := range []*cursor.TimeCursor{
		{Time: 500, Seq: lo.ToPtr[int64](3)},
		{Time: 100, Seq: lo.ToPtr[int64](1)},
		nil,
	} {
		_, err := finder.Find(ctx, after, false, 3)
		require.NoError(t, err)
	}
	require.Equal(t, []string{
		`SELECT * FROM "events" WHERE severity = 'WARNING' AND ("events"."gentime" > 500 OR ("events"."gentime" = 500 AND "events"."seq_num" > 3)) ORDER BY "events"."gentime","events"."seq_num" LIMIT 3`,
		`SELECT * FROM "events" WHERE severity = 'WARNING' AND ("events"."gentime" > 100 OR ("events"."gentime" = 100 AND "events"."seq_num" > 1)) ORDER BY "events"."gentime","events"."seq_num" LIMIT 3`,
		`SELECT * FROM "events" WHERE severity = 'WARNING' ORDER BY "events"."gentime","events"."seq_num" LIMIT 3`,
	}, *sqls)
}

func TestTimeAdapterBatches(t *testing.T) {
	db := openDryRun(t)
	sqls := captureSQL(t, db)
	feedRows(t, db,
		[]Event{
			{Gentime: 100, SeqNum: 1, Source: "noise"},
			{Gentime: 100, SeqNum: 2, Source: "noise"},
		},
		[]Event{
			{Gentime: 200, SeqNum: 3, Source: "Simulator"},
			{Gentime: 300, SeqNum: 4, Source: "noise"},
		},
		[]Event{},
	)

	p := listing.New(NewTimeAdapter(db, "Gentime", eventKey,
		WithSeqField[Event]("SeqNum"),
		WithAdapterOptions(
			cursor.WithBatchSize[Event](2),
			cursor.WithMatch(func(e Event) bool { return e.Source != "noise" }),
		),
	))
	conn, err := p.Paginate(context.Background(), &listing.PaginateRequest[Event]{First: lo.ToPtr(1)})
	require.NoError(t, err)
	require.Equal(t, []Event{{Gentime: 200, SeqNum: 3, Source: "Simulator"}}, conn.Nodes)
	require.False(t, conn.PageInfo.HasNextPage)
	require.Equal(t, []string{
		`SELECT * FROM "events" ORDER BY "events"."gentime","events"."seq_num" LIMIT 2`,
		`SELECT * FROM "events" WHERE ("events"."gentime" > 100 OR ("events"."gentime" = 100 AND "events"."seq_num" > 2)) ORDER BY "events"."gentime","events"."seq_num" LIMIT 2`,
		`SELECT * FROM "events" WHERE ("events"."gentime" > 300 OR ("events"."gentime" = 300 AND "events"."seq_num" > 4)) ORDER BY "events"."gentime","events"."seq_num" LIMIT 2`,
	}, *sqls)
}

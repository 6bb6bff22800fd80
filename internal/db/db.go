package db

import (
	"context"
	"database/sql"

	"github.com/decletyarnaud-cyber/immo-agent-paris/internal/util"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
)

func GetConnection(config *util.Config) (*bun.DB, error) {
	sqlDb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(config.DbConnectionString.Value)))
	db := bun.NewDB(sqlDb, pgdialect.New())

	db.AddQueryHook(bundebug.NewQueryHook(
		bundebug.WithEnabled(false),

		// BUNDEBUG=1 logs failed queries
		// BUNDEBUG=2 logs all queries
		bundebug.FromEnv("BUNDEBUG")))

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}

// GetListingsBySource returns every raw listing scraped from one source,
// in scrape order. Scrape order is load-bearing: the matcher's greedy
// assignment is only deterministic for a stable input order.
func GetListingsBySource(ctx context.Context, connection bun.IDB, source string) ([]*ListingModel, error) {
	var listings []*ListingModel
	err := connection.NewSelect().
		Model(&listings).
		Where("source = ?", source).
		Order("id").
		Scan(ctx)

	return listings, err
}

// SaveMergedRecords persists reconciled records, skipping duplicates.
func SaveMergedRecords(ctx context.Context, connection bun.IDB, records []*MergedRecordModel) (affectedCount int, err error) {
	if len(records) == 0 {
		return 0, nil
	}

	res, err := connection.NewInsert().Model(&records).On("CONFLICT DO NOTHING").Exec(ctx)
	if err != nil {
		return 0, err
	}

	c, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	return int(c), err
}

// SaveAnalyses persists price analyses for reconciled records.
func SaveAnalyses(ctx context.Context, connection bun.IDB, analyses []*PriceAnalysisModel) (affectedCount int, err error) {
	if len(analyses) == 0 {
		return 0, nil
	}

	res, err := connection.NewInsert().Model(&analyses).On("CONFLICT DO NOTHING").Exec(ctx)
	if err != nil {
		return 0, err
	}

	c, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	return int(c), err
}

// Package entries provides the client-side cache of vault entries.
//
// The server stays the source of truth: the cache is refreshed from every
// successful listing and read back only when the server cannot be reached.
// SQLiteRepository works on a dbx.DBTX, so callers can group writes in a
// transaction with dbx.WithTx.
//
//	repo := entries.NewSQLiteRepository(db)
//	_ = repo.ReplaceAll(ctx, userID, items)
//	cached, _ := repo.GetAll(ctx, userID)
package entries

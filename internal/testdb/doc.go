// Package testdb provides utilities for database integration tests.
//
// Each test runs in its own transaction which is rolled back when the test
// completes, so tests can share one migrated database and run in parallel:
//
//	func TestSomething(t *testing.T) {
//	    db := testdb.GetTestDBWithT(t) // skips when no database is configured
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        users := postgres.NewPostgresUserStore(tx, bcrypt.MinCost, nil)
//	        ...
//	    })
//	}
//
// The connection string is read from DATABASE_URL, then TASKSPLIT_TEST_DB_URL.
package testdb

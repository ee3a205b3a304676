package dbmetrics

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorderStub struct {
	mu         sync.Mutex
	operations []string
}

func (r *recorderStub) ObserveDBQuery(operation string, _ error, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.operations = append(r.operations, operation)
}

func (r *recorderStub) SetPoolStats(sql.DBStats) {}

func TestOperationOf(t *testing.T) {
	assert.Equal(t, "select", operationOf("SELECT id FROM slots"))
	assert.Equal(t, "update", operationOf("  UPDATE slots\nSET x = 1"))
	assert.Equal(t, "unknown", operationOf(""))
}

func TestGetExecutor_PrefersTransactionFromContext(t *testing.T) {
	rawDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer rawDB.Close()

	db := Wrap(rawDB, nil)

	ctx := context.Background()
	assert.Same(t, db, GetExecutor(ctx, db))
	assert.False(t, IsInTransaction(ctx))

	mock.ExpectBegin()
	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)

	txCtx := WithTx(ctx, tx)
	assert.True(t, IsInTransaction(txCtx))
	assert.Same(t, tx, GetExecutor(txCtx, db))

	mock.ExpectRollback()
	require.NoError(t, tx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_RecordsOperations(t *testing.T) {
	rawDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer rawDB.Close()

	rec := &recorderStub{}
	db := Wrap(rawDB, rec)

	mock.ExpectExec("UPDATE slots").WillReturnResult(sqlmock.NewResult(0, 1))
	_, err = db.ExecContext(context.Background(), "UPDATE slots SET booked_count = 1")
	require.NoError(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, []string{"update"}, rec.operations)
}

package integrity

import (
	"context"
	"testing"

	"inventory-ledger/core/storage/mocks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// setupMockDB creates a mock GORM DB for testing.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func emptyObjects() <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo)
	close(ch)
	return ch
}

func TestService_Storage(t *testing.T) {
	mockClient := new(mocks.Client)
	svc := NewService(mockClient, "test-bucket", "", zap.NewNop(), nil)

	t.Run("CheckStorage", func(t *testing.T) {
		mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(true, nil)
		mockClient.On("ListObjects", mock.Anything, "test-bucket", mock.Anything).Return(emptyObjects())

		report, err := svc.CheckStorage(context.Background(), 10)
		require.NoError(t, err)
		assert.True(t, report.Exists)
		assert.Zero(t, report.Scanned)
	})

	t.Run("FixStorage", func(t *testing.T) {
		err := svc.FixStorage(context.Background())
		assert.NoError(t, err)
		mockClient.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_Schema(t *testing.T) {
	t.Run("NoDatabase", func(t *testing.T) {
		svc := NewService(new(mocks.Client), "test-bucket", "", zap.NewNop(), nil)
		_, err := svc.CheckSchema()
		assert.ErrorIs(t, err, ErrNoDatabase)
	})

	t.Run("InspectsLedgerTables", func(t *testing.T) {
		db, sqlMock := setupMockDB(t)
		sqlMock.ExpectQuery("SHOW COLUMNS FROM `inventory`").
			WillReturnRows(sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
				AddRow("id", "varchar(36)", "NO", "PRI", nil, ""))
		sqlMock.ExpectQuery("SHOW COLUMNS FROM `batch_alerts`").
			WillReturnRows(sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
				AddRow("id", "varchar(36)", "NO", "PRI", nil, ""))

		svc := NewService(new(mocks.Client), "test-bucket", "", zap.NewNop(), db)
		report, err := svc.CheckSchema()
		require.NoError(t, err)
		assert.False(t, report.Matched)
		assert.Contains(t, report.Tables, "inventory")
		assert.Contains(t, report.Tables, "batch_alerts")
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})
}

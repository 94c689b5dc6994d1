package checks

import (
	"testing"

	"inventory-ledger/core/database"
	"inventory-ledger/feature/inventory/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

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

func columnRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"})
}

func TestCheckSchema_NilDB(t *testing.T) {
	report, err := CheckSchema(nil, models.All()...)
	assert.Error(t, err)
	assert.Nil(t, report)
}

func TestCheckSchema_NoModels(t *testing.T) {
	db, _ := setupMockDB(t)
	_, err := CheckSchema(db)
	assert.Error(t, err)
}

func TestCheckSchema_MissingColumn(t *testing.T) {
	db, mock := setupMockDB(t)

	rows := columnRows().
		AddRow("id", "varchar(36)", "NO", "PRI", nil, "").
		AddRow("name", "varchar(255)", "NO", "", nil, "")
	mock.ExpectQuery("SHOW COLUMNS FROM `inventory`").WillReturnRows(rows)

	report, err := CheckSchema(db, &models.InventoryItem{})
	require.NoError(t, err)
	assert.Equal(t, "mysql", report.Driver)
	assert.False(t, report.Matched)

	tbl, ok := report.Tables["inventory"]
	require.True(t, ok)
	assert.Equal(t, "error", tbl.Status)
	assert.Contains(t, tbl.MissingColumns, "quantity")
	assert.Contains(t, tbl.MissingColumns, "source_device_id")
	assert.NotContains(t, tbl.MissingColumns, "name")
}

func TestCheckSchema_TypeMismatch(t *testing.T) {
	db, mock := setupMockDB(t)

	rows := columnRows().
		AddRow("id", "int(11)", "NO", "PRI", nil, "").
		AddRow("owner_id", "varchar(128)", "YES", "", nil, "").
		AddRow("device_id", "varchar(128)", "YES", "", nil, "").
		AddRow("timestamp", "datetime(3)", "YES", "", nil, "").
		AddRow("changes", "longtext", "YES", "", nil, "").
		AddRow("status", "varchar(16)", "NO", "", "pending", "")
	mock.ExpectQuery("SHOW COLUMNS FROM `batch_alerts`").WillReturnRows(rows)

	report, err := CheckSchema(db, models.BatchAlert{})
	require.NoError(t, err)

	tbl := report.Tables["batch_alerts"]
	assert.Empty(t, tbl.MissingColumns)
	assert.Equal(t, []string{"id: expected varchar(36), got int(11)"}, tbl.TypeMismatches)
	assert.False(t, report.Matched)
}

func TestCheckSchema_MissingTable(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery("SHOW COLUMNS FROM `inventory`").WillReturnRows(columnRows())

	report, err := CheckSchema(db, &models.InventoryItem{})
	require.NoError(t, err)
	assert.False(t, report.Matched)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "inventory")
}

func TestCheckSchema_MigratedSQLiteMatches(t *testing.T) {
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, models.All()...))

	report, err := CheckSchema(db, models.All()...)
	require.NoError(t, err)
	assert.True(t, report.Matched, "report: %+v", report)
	assert.Len(t, report.Tables, 2)
}

func TestParseGormTags(t *testing.T) {
	assert.Equal(t, "id", parseGormColumn("column:id;primaryKey"))
	assert.Equal(t, "name", parseGormColumn("primaryKey;column:name;type:varchar(255)"))
	assert.Equal(t, "varchar(36)", parseGormType("column:id;type:varchar(36)"))
	assert.Equal(t, "", parseGormType("column:id"))
}

func TestTypeCompatible(t *testing.T) {
	assert.True(t, typeCompatible("varchar(36)", "varchar(36)"))
	assert.True(t, typeCompatible("text", "longtext"))
	assert.False(t, typeCompatible("varchar(36)", "int(11)"))
}

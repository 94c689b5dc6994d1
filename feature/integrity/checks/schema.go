package checks

import (
	"fmt"
	"reflect"
	"strings"

	"inventory-ledger/core/database"

	"gorm.io/gorm"
)

// SchemaReport strictly types the result of a schema integrity check.
type SchemaReport struct {
	Driver  string                 `json:"driver"`
	Matched bool                   `json:"matched"`
	Tables  map[string]TableReport `json:"tables"`
	Errors  []string               `json:"errors"`
}

type TableReport struct {
	MissingColumns []string `json:"missing_columns"`
	TypeMismatches []string `json:"type_mismatches"`
	Status         string   `json:"status"` // "ok", "error"
}

type tabler interface {
	TableName() string
}

// CheckSchema verifies the database schema using the given GORM models as the
// source of truth. Every model must implement TableName.
func CheckSchema(db *gorm.DB, models ...any) (*SchemaReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	if len(models) == 0 {
		return nil, fmt.Errorf("no models to check")
	}

	report := &SchemaReport{
		Driver: db.Dialector.Name(),
		Tables: make(map[string]TableReport),
		Errors: []string{},
	}

	for _, model := range models {
		val := reflect.TypeOf(model)
		if val.Kind() == reflect.Ptr {
			val = val.Elem()
		}
		if val.Kind() != reflect.Struct {
			return nil, fmt.Errorf("model %T is not a struct", model)
		}
		t, ok := reflect.New(val).Interface().(tabler)
		if !ok {
			return nil, fmt.Errorf("model %s does not implement TableName", val.Name())
		}
		tableName := t.TableName()

		actualCols, err := database.GetTableColumns(db, tableName)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("Failed to inspect table %s: %v", tableName, err))
			report.Tables[tableName] = TableReport{MissingColumns: []string{}, TypeMismatches: []string{}, Status: "error"}
			continue
		}

		report.Tables[tableName] = compareTable(val, actualCols)
	}

	report.Matched = len(report.Errors) == 0
	for _, tbl := range report.Tables {
		if tbl.Status != "ok" {
			report.Matched = false
		}
	}
	return report, nil
}

func compareTable(model reflect.Type, actualCols []database.ColumnInfo) TableReport {
	tbl := TableReport{
		MissingColumns: []string{},
		TypeMismatches: []string{},
		Status:         "ok",
	}

	actualMap := make(map[string]database.ColumnInfo)
	for _, col := range actualCols {
		actualMap[col.Field] = col
	}

	for i := 0; i < model.NumField(); i++ {
		gormTag := model.Field(i).Tag.Get("gorm")

		colName := parseGormColumn(gormTag)
		if colName == "" {
			continue
		}

		actCol, exists := actualMap[colName]
		if !exists {
			tbl.MissingColumns = append(tbl.MissingColumns, colName)
			tbl.Status = "error"
			continue
		}

		// Only columns declaring type: are type checked.
		expType := strings.ToLower(parseGormType(gormTag))
		if expType == "" {
			continue
		}
		if !typeCompatible(expType, actCol.Type) {
			tbl.TypeMismatches = append(tbl.TypeMismatches, fmt.Sprintf("%s: expected %s, got %s", colName, expType, actCol.Type))
			tbl.Status = "error"
		}
	}
	return tbl
}

// typeCompatible is a soft check: the declared type must appear in the actual
// one, and MySQL widening text to longtext/mediumtext is accepted.
func typeCompatible(expected, actual string) bool {
	if strings.Contains(actual, expected) {
		return true
	}
	return expected == "text" && strings.HasSuffix(actual, "text")
}

// Helpers to parse simple GORM tags
func parseGormColumn(tag string) string {
	for _, p := range strings.Split(tag, ";") {
		if strings.HasPrefix(p, "column:") {
			return strings.TrimPrefix(p, "column:")
		}
	}
	return ""
}

func parseGormType(tag string) string {
	for _, p := range strings.Split(tag, ";") {
		if strings.HasPrefix(p, "type:") {
			return strings.TrimPrefix(p, "type:")
		}
	}
	return ""
}

package dbquery

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	// Registers the sqlite3 driver used for local report databases.
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const (
	sqliteDriverNameConstant             = "sqlite3"
	readOnlyDataSourceTemplateConstant   = "file:%s?mode=ro"
	readOnlyQueryRequiredMessageConstant = "only read-only queries (SELECT, WITH, PRAGMA, EXPLAIN) are permitted"
	databasePathRequiredMessageConstant  = "database path must be provided"
	openFailureTemplateConstant          = "failed to open database: %w"
	queryFailureTemplateConstant         = "query execution failed: %w"
	scanFailureTemplateConstant          = "failed to read result row: %w"
	logMessageQueryExecutedConstant      = "database query executed"
	logFieldDatabaseConstant             = "database"
	logFieldRowCountConstant             = "rows"
)

// ErrReadOnlyQueryRequired indicates a statement outside the read-only keyword set was submitted.
var ErrReadOnlyQueryRequired = errors.New(readOnlyQueryRequiredMessageConstant)

// ErrDatabasePathRequired indicates the database path option was empty.
var ErrDatabasePathRequired = errors.New(databasePathRequiredMessageConstant)

// readOnlyStatementPrefixes lists the statement keywords sqlite treats as reads.
var readOnlyStatementPrefixes = []string{"select", "with", "pragma", "explain"}

// Row maps column names to values for one result row.
type Row map[string]any

// Service runs read-only queries against local SQLite databases.
type Service struct {
	logger *zap.Logger
}

// NewService constructs a Service with the provided logger.
func NewService(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger}
}

// ExecuteQuery runs sqlQuery against the database at databasePath.
//
// The database is opened in read-only mode and any statement that does not
// start with a read keyword (SELECT, WITH, PRAGMA, EXPLAIN) is rejected
// before a connection is made.
func (service *Service) ExecuteQuery(executionContext context.Context, databasePath string, sqlQuery string) ([]Row, error) {
	trimmedDatabasePath := strings.TrimSpace(databasePath)
	if len(trimmedDatabasePath) == 0 {
		return nil, ErrDatabasePathRequired
	}
	if !isReadOnlyStatement(sqlQuery) {
		return nil, ErrReadOnlyQueryRequired
	}

	databaseHandle, openError := sql.Open(sqliteDriverNameConstant, fmt.Sprintf(readOnlyDataSourceTemplateConstant, trimmedDatabasePath))
	if openError != nil {
		return nil, fmt.Errorf(openFailureTemplateConstant, openError)
	}
	defer databaseHandle.Close()

	resultRows, queryError := databaseHandle.QueryContext(executionContext, sqlQuery)
	if queryError != nil {
		return nil, fmt.Errorf(queryFailureTemplateConstant, queryError)
	}
	defer resultRows.Close()

	collectedRows, collectError := collectRows(resultRows)
	if collectError != nil {
		return nil, collectError
	}

	service.logger.Debug(
		logMessageQueryExecutedConstant,
		zap.String(logFieldDatabaseConstant, trimmedDatabasePath),
		zap.Int(logFieldRowCountConstant, len(collectedRows)),
	)
	return collectedRows, nil
}

func isReadOnlyStatement(sqlQuery string) bool {
	loweredQuery := strings.ToLower(strings.TrimSpace(sqlQuery))
	for _, statementPrefix := range readOnlyStatementPrefixes {
		if strings.HasPrefix(loweredQuery, statementPrefix) {
			return true
		}
	}
	return false
}

func collectRows(resultRows *sql.Rows) ([]Row, error) {
	columnNames, columnError := resultRows.Columns()
	if columnError != nil {
		return nil, fmt.Errorf(scanFailureTemplateConstant, columnError)
	}

	collectedRows := []Row{}
	for resultRows.Next() {
		scannedValues := make([]any, len(columnNames))
		scanTargets := make([]any, len(columnNames))
		for valueIndex := range scannedValues {
			scanTargets[valueIndex] = &scannedValues[valueIndex]
		}
		if scanError := resultRows.Scan(scanTargets...); scanError != nil {
			return nil, fmt.Errorf(scanFailureTemplateConstant, scanError)
		}

		row := Row{}
		for columnIndex, columnName := range columnNames {
			row[columnName] = normalizeValue(scannedValues[columnIndex])
		}
		collectedRows = append(collectedRows, row)
	}
	if iterationError := resultRows.Err(); iterationError != nil {
		return nil, fmt.Errorf(scanFailureTemplateConstant, iterationError)
	}
	return collectedRows, nil
}

// normalizeValue converts driver byte slices into strings for JSON rendering.
func normalizeValue(rawValue any) any {
	if byteValue, isBytes := rawValue.([]byte); isBytes {
		return string(byteValue)
	}
	return rawValue
}

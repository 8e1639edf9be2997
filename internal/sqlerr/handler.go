package sqlerr

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/deppfellow/shopping-list/internal/errs"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrCode returns the Code of the first *Error in err's chain, or Other.
func ErrCode(err error) Code {
	var sqlErr *Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Code
	}
	return Other
}

// ConvertPgError classifies a raw pgconn error.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

// errorCode builds a machine readable code such as SHOPPING_LIST_ALREADY_EXISTS.
func errorCode(tableName string, code Code) string {
	if tableName == "" {
		tableName = "record"
	}
	domain := strings.ToUpper(singular(tableName))

	action := "ERROR"
	switch code {
	case ForeignKeyViolation:
		action = "NOT_FOUND"
	case UniqueViolation:
		action = "ALREADY_EXISTS"
	case NotNullViolation:
		action = "REQUIRED"
	case CheckViolation, InvalidText:
		action = "INVALID"
	case UndefinedTable:
		action = "NOT_MIGRATED"
	}

	return domain + "_" + action
}

func friendlyMessage(sqlErr *Error) string {
	entity := entityName(sqlErr.TableName, sqlErr.ColumnName)

	switch sqlErr.Code {
	case ForeignKeyViolation:
		return fmt.Sprintf("The referenced %s does not exist", entity)

	case UniqueViolation:
		subject := "identifier"
		if column := uniqueColumn(sqlErr.ConstraintName); column != "" {
			subject = humanize(column)
		}
		return fmt.Sprintf("A %s with this %s already exists", entity, subject)

	case NotNullViolation:
		field := humanize(sqlErr.ColumnName)
		if field == "" {
			field = "field"
		}
		return fmt.Sprintf("The %s is required", field)

	case CheckViolation:
		if sqlErr.ConstraintName != "" {
			return fmt.Sprintf("The %s does not satisfy %s", entity, sqlErr.ConstraintName)
		}
		return "One or more values do not meet required conditions"

	case UndefinedTable:
		return "The database schema is missing, run the migrate command"

	default:
		return "An error occurred while processing your request"
	}
}

// entityName prefers a foreign key column ("list_id" -> "List") and falls
// back to the singular table name ("shopping_lists" -> "Shopping List").
func entityName(tableName, columnName string) string {
	column := strings.ToLower(columnName)
	if strings.HasSuffix(column, "_id") {
		return humanize(strings.TrimSuffix(column, "_id"))
	}
	if tableName != "" {
		return humanize(singular(tableName))
	}
	return "record"
}

func singular(name string) string {
	if len(name) > 1 && strings.HasSuffix(strings.ToLower(name), "s") {
		return name[:len(name)-1]
	}
	return name
}

func humanize(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

var uniqueKeySuffix = regexp.MustCompile(`_([^_]+)_(?:key|ukey)$`)

// uniqueColumn guesses the column behind a unique constraint named either
// unique_<table>_<column> or <table>_<column>_key.
func uniqueColumn(constraintName string) string {
	if strings.HasPrefix(constraintName, "unique_") {
		parts := strings.Split(constraintName, "_")
		if len(parts) >= 3 {
			return parts[len(parts)-1]
		}
	}
	if m := uniqueKeySuffix.FindStringSubmatch(constraintName); len(m) > 1 {
		return m[1]
	}
	return ""
}

// HandleError converts an error returned by pgx into an *errs.Error of
// KindStore. Postgres errors get a readable message built from the table
// and column involved; the driver error stays attached for the logs.
//
// Missing rows are not handled here: repositories check pgx.ErrNoRows
// themselves because only they know which document was asked for.
func HandleError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *errs.Error
	if errors.As(err, &appErr) {
		return err
	}

	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		sqlErr := ConvertPgError(pgerr)
		return errs.Store(
			fmt.Sprintf("%s [%s]", friendlyMessage(sqlErr), errorCode(sqlErr.TableName, sqlErr.Code)),
			sqlErr,
		)
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return errs.Store("Database operation did not complete in time", err)
	case pgconn.Timeout(err):
		return errs.Store("Database operation timed out", err)
	}

	return errs.Store("Database operation failed", err)
}

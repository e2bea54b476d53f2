package dbquery

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	commandUseConstant              = "db-query <sql>"
	commandShortDescriptionConstant = "Run a read-only query against a local SQLite database"
	commandLongDescriptionConstant  = "db-query executes a read-only query (SELECT, WITH, PRAGMA, EXPLAIN) against a SQLite database file and prints the result rows as JSON."
	singleArgumentMessageConstant   = "db-query requires exactly one SQL statement argument"
	flagDatabaseNameConstant        = "database"
	flagDatabaseDescriptionConstant = "Path to the SQLite database file"
	noRowsMessageConstant           = "query returned no rows"
	jsonIndentConstant              = "  "
)

var errSingleArgumentRequired = errors.New(singleArgumentMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the configuration backing the command flags.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the Cobra command for database queries.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
}

// Build constructs the db-query command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	configuration := builder.resolveConfiguration()
	command.Flags().String(flagDatabaseNameConstant, configuration.DatabasePath, flagDatabaseDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) != 1 {
		return errSingleArgumentRequired
	}

	databaseValue, _ := command.Flags().GetString(flagDatabaseNameConstant)
	trimmedDatabasePath := strings.TrimSpace(databaseValue)

	service := NewService(builder.resolveLogger())
	resultRows, queryError := service.ExecuteQuery(command.Context(), trimmedDatabasePath, arguments[0])
	if queryError != nil {
		return queryError
	}

	if len(resultRows) == 0 {
		fmt.Fprintln(command.OutOrStdout(), noRowsMessageConstant)
		return nil
	}

	encodedRows, encodeError := json.MarshalIndent(resultRows, "", jsonIndentConstant)
	if encodeError != nil {
		return encodeError
	}
	fmt.Fprintln(command.OutOrStdout(), string(encodedRows))
	return nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration().sanitize()
	}
	return builder.ConfigurationProvider().sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}

package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/crudkit/internal/constants"
)

// printRecord writes one record in the configured output format.
func printRecord(w io.Writer, record Record) error {
	switch viper.GetString("output") {
	case constants.FormatJSON:
		return encodeJSON(w, record)
	case constants.FormatYAML:
		return encodeYAML(w, record)
	default:
		table := tablewriter.NewWriter(w)
		table.Header("Property", "Value")

		for _, key := range sortedKeys(record) {
			err := table.Append([]string{key, formatCell(record[key])})
			if err != nil {
				return fmt.Errorf("failed to append row to table: %w", err)
			}
		}

		return renderTable(table)
	}
}

// printRecords writes a listing. Table output has one column per key found
// in any record.
func printRecords(w io.Writer, records []Record, summary string) error {
	switch viper.GetString("output") {
	case constants.FormatJSON:
		return encodeJSON(w, records)
	case constants.FormatYAML:
		return encodeYAML(w, records)
	default:
		if len(records) == 0 {
			fmt.Fprintln(w, "No records found")

			return nil
		}

		columns := make(map[string]struct{})
		for _, record := range records {
			for key := range record {
				columns[key] = struct{}{}
			}
		}

		header := make([]string, 0, len(columns))
		for key := range columns {
			header = append(header, key)
		}

		sort.Strings(header)

		table := tablewriter.NewWriter(w)

		headerArgs := make([]any, len(header))
		for i, column := range header {
			headerArgs[i] = column
		}

		table.Header(headerArgs...)

		for _, record := range records {
			row := make([]string, len(header))
			for i, column := range header {
				row[i] = formatCell(record[column])
			}

			err := table.Append(row)
			if err != nil {
				return fmt.Errorf("failed to append row to table: %w", err)
			}
		}

		err := renderTable(table)
		if err != nil {
			return err
		}

		if summary != "" {
			fmt.Fprintln(w, summary)
		}

		return nil
	}
}

func encodeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	err := encoder.Encode(v)
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

func encodeYAML(w io.Writer, v interface{}) error {
	encoder := yaml.NewEncoder(w)
	defer func() { _ = encoder.Close() }()

	err := encoder.Encode(v)
	if err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}

func renderTable(table *tablewriter.Table) error {
	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func sortedKeys(record Record) []string {
	keys := make([]string, 0, len(record))
	for key := range record {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

// formatCell renders scalars as text and nested values as compact JSON.
func formatCell(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return constants.NotAvailable
	case string:
		return v
	case bool, float64, int, int64, json.Number:
		return fmt.Sprint(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}

		return string(data)
	}
}

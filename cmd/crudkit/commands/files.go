package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/crudkit/internal/constants"
	"github.com/fivetwenty-io/crudkit/pkg/crudkit"
)

// validateFilePath rejects paths that escape the working directory and files
// that cannot be read.
func validateFilePath(filePath string) (string, error) {
	cleanPath := filepath.Clean(filePath)

	if filepath.IsAbs(filePath) {
		if cleanPath != filePath {
			return "", fmt.Errorf("%w: %s", constants.ErrDirectoryTraversalDetected, filePath)
		}
	} else if cleanPath == ".." || strings.HasPrefix(cleanPath, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", constants.ErrDirectoryTraversalDetected, filePath)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return "", fmt.Errorf("file not accessible: %w", err)
	}

	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s", constants.ErrNotRegularFile, filePath)
	}

	return cleanPath, nil
}

// parseKeyValues turns key=value pairs into a record. Values are decoded as
// JSON when possible so numbers, booleans and objects keep their type.
func parseKeyValues(pairs []string) (Record, error) {
	record := Record{}

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)

		if !ok || key == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidKeyValue, pair)
		}

		var decoded interface{}

		err := json.Unmarshal([]byte(value), &decoded)
		if err != nil {
			decoded = value
		}

		record[key] = decoded
	}

	return record, nil
}

// parseIdentifier builds an identifier from key=value pairs.
func parseIdentifier(pairs []string) (*crudkit.Identifier[Record], error) {
	if len(pairs) == 0 {
		return nil, constants.ErrIdentifierRequired
	}

	model, err := parseKeyValues(pairs)
	if err != nil {
		return nil, err
	}

	id := crudkit.NewIdentifier(model)

	return &id, nil
}

// readDataFile reads a JSON or YAML object. "-" reads standard input.
func readDataFile(path string) (Record, error) {
	var (
		data []byte
		err  error
	)

	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		var cleanPath string

		cleanPath, err = validateFilePath(path)
		if err != nil {
			return nil, err
		}

		// #nosec G304 -- path validated above
		data, err = os.ReadFile(cleanPath)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}

	record := Record{}

	// YAML is a superset of JSON.
	err = yaml.Unmarshal(data, &record)
	if err != nil {
		return nil, fmt.Errorf("failed to parse data file: %w", err)
	}

	return normalizeRecord(record), nil
}

// normalizeRecord converts the map[interface{}]interface{} values a YAML
// document may hold into JSON friendly maps.
func normalizeRecord(record Record) Record {
	for key, value := range record {
		record[key] = normalizeValue(value)
	}

	return record
}

func normalizeValue(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		return normalizeRecord(v)
	case map[interface{}]interface{}:
		converted := make(Record, len(v))
		for key, item := range v {
			converted[fmt.Sprint(key)] = normalizeValue(item)
		}

		return converted
	case []interface{}:
		for i, item := range v {
			v[i] = normalizeValue(item)
		}

		return v
	default:
		return v
	}
}

// buildRecord merges the data file with key=value overrides.
func buildRecord(dataFile string, pairs []string) (Record, error) {
	record := Record{}

	if dataFile != "" {
		var err error

		record, err = readDataFile(dataFile)
		if err != nil {
			return nil, err
		}
	}

	overrides, err := parseKeyValues(pairs)
	if err != nil {
		return nil, err
	}

	for key, value := range overrides {
		record[key] = value
	}

	return record, nil
}

// openAttachments opens [INPUT=]PATH attachments. The returned function
// closes every opened file.
func openAttachments(attachments []string) ([]crudkit.BlobData, func(), error) {
	var files []*os.File

	closeAll := func() {
		for _, file := range files {
			_ = file.Close()
		}
	}

	blobs := make([]crudkit.BlobData, 0, len(attachments))

	for _, attachment := range attachments {
		inputName, path, ok := strings.Cut(attachment, "=")
		if !ok {
			inputName, path = "", attachment
		}

		if path == "" {
			closeAll()

			return nil, nil, fmt.Errorf("%w: %q", constants.ErrInvalidAttachment, attachment)
		}

		cleanPath, err := validateFilePath(path)
		if err != nil {
			closeAll()

			return nil, nil, err
		}

		// #nosec G304 -- path validated above
		file, err := os.Open(cleanPath)
		if err != nil {
			closeAll()

			return nil, nil, fmt.Errorf("failed to open attachment: %w", err)
		}

		files = append(files, file)

		info, err := file.Stat()
		if err != nil {
			closeAll()

			return nil, nil, fmt.Errorf("failed to stat attachment: %w", err)
		}

		blobs = append(blobs, crudkit.BlobData{
			LastModified: info.ModTime(),
			Name:         filepath.Base(cleanPath),
			InputName:    inputName,
			Size:         info.Size(),
			Type:         mime.TypeByExtension(filepath.Ext(cleanPath)),
			Data:         file,
		})
	}

	return blobs, closeAll, nil
}

// requireFields returns a validator that rejects records missing any of
// fields.
func requireFields(fields []string) crudkit.Validator {
	if len(fields) == 0 {
		return crudkit.EmptyValidator{}
	}

	return crudkit.ValidatorFunc(func(_ context.Context, value interface{}) crudkit.ValidationResult {
		record, ok := value.(Record)
		if !ok {
			return crudkit.Invalid(fmt.Sprintf("expected a record, got %T", value))
		}

		var result crudkit.ValidationResult

		for _, field := range fields {
			if v, present := record[field]; !present || v == nil || v == "" {
				result.Errors = append(result.Errors, crudkit.ValidationError{
					Field:   field,
					Message: fmt.Sprintf("%s: %s", constants.ErrRequiredField, field),
				})
			}
		}

		return result
	})
}

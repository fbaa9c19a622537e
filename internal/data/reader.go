package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
)

// Reader loads feature/label pairs from a CSV file. The last column (or
// the column at labelCol) holds the class label as a string; every other
// column must be numeric.
type Reader struct {
	file     *os.File
	reader   *csv.Reader
	headers  []string
	labelCol int
}

func NewReader(filename string, labelCol int) (*Reader, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	reader := csv.NewReader(file)

	headers, err := reader.Read()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to read headers: %w", err)
	}

	if labelCol < 0 || labelCol >= len(headers) {
		labelCol = len(headers) - 1
	}

	return &Reader{
		file:     file,
		reader:   reader,
		headers:  headers,
		labelCol: labelCol,
	}, nil
}

func (r *Reader) Headers() []string {
	return r.headers
}

// ReadBatch reads up to batchSize rows. It returns io.EOF only when no
// rows at all were read.
func (r *Reader) ReadBatch(batchSize int) ([][]decimal.Decimal, []string, error) {
	X := make([][]decimal.Decimal, 0, batchSize)
	labels := make([]string, 0, batchSize)

	for i := 0; i < batchSize; i++ {
		record, err := r.reader.Read()
		if err == io.EOF {
			if len(X) == 0 {
				return nil, nil, io.EOF
			}
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("error reading record: %w", err)
		}

		features, label, err := r.parseRecord(record)
		if err != nil {
			return nil, nil, err
		}

		X = append(X, features)
		labels = append(labels, label)
	}

	return X, labels, nil
}

// ReadAll reads every remaining row.
func (r *Reader) ReadAll() ([][]decimal.Decimal, []string, error) {
	var X [][]decimal.Decimal
	var labels []string

	for {
		batchX, batchLabels, err := r.ReadBatch(1024)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		X = append(X, batchX...)
		labels = append(labels, batchLabels...)
	}

	if len(X) == 0 {
		return nil, nil, fmt.Errorf("no data rows in file")
	}
	return X, labels, nil
}

func (r *Reader) parseRecord(record []string) ([]decimal.Decimal, string, error) {
	if len(record) != len(r.headers) {
		return nil, "", fmt.Errorf("record has %d columns, expected %d", len(record), len(r.headers))
	}

	features := make([]decimal.Decimal, 0, len(record)-1)
	var label string

	for j, raw := range record {
		raw = strings.TrimSpace(raw)
		if j == r.labelCol {
			if raw == "" {
				return nil, "", fmt.Errorf("empty label in column %d", j)
			}
			label = raw
			continue
		}
		val, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, "", fmt.Errorf("invalid numeric value at column %d: %q", j, raw)
		}
		features = append(features, val)
	}

	return features, label, nil
}

func (r *Reader) Close() error {
	return r.file.Close()
}

// LoadCSV is the one-shot convenience wrapper around Reader for the
// common "label in the last column" layout.
func LoadCSV(filename string) ([][]decimal.Decimal, []string, []string, error) {
	reader, err := NewReader(filename, -1)
	if err != nil {
		return nil, nil, nil, err
	}
	defer reader.Close()

	X, labels, err := reader.ReadAll()
	if err != nil {
		return nil, nil, nil, err
	}
	return X, labels, reader.Headers(), nil
}

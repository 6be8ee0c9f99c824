package signatures

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"

	oerrors "github.com/dvmodel/dvctl/internal/errors"
)

const (
	// ObjectFile holds object,signature rows.
	ObjectFile = "object_signatures.csv"
	// AttributeFile holds object,attribute,signature rows.
	AttributeFile = "attribute_signatures.csv"
)

// ObjectRow assigns a signature object to a business vault object.
type ObjectRow struct {
	Line      int    `json:"line" yaml:"line"`
	Object    string `json:"object" yaml:"object" validate:"required"`
	Signature string `json:"signature" yaml:"signature" validate:"required"`
}

// AttributeRow assigns a signature attribute to an attribute of a business vault object.
type AttributeRow struct {
	Line      int    `json:"line" yaml:"line"`
	Object    string `json:"object" yaml:"object" validate:"required"`
	Attribute string `json:"attribute" yaml:"attribute" validate:"required"`
	Signature string `json:"signature" yaml:"signature" validate:"required"`
}

var validate = validator.New()

// ReadObjectRows parses an object signature CSV. A first row whose first
// column is "object" or "object_name" is treated as a header.
func ReadObjectRows(r io.Reader, name string) ([]ObjectRow, error) {
	records, err := readRecords(r, name, 2)
	if err != nil {
		return nil, err
	}
	rows := make([]ObjectRow, 0, len(records))
	for _, rec := range records {
		row := ObjectRow{Line: rec.line, Object: rec.fields[0], Signature: rec.fields[1]}
		if err := checkRow(row, name, rec.line); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadAttributeRows parses an attribute signature CSV.
func ReadAttributeRows(r io.Reader, name string) ([]AttributeRow, error) {
	records, err := readRecords(r, name, 3)
	if err != nil {
		return nil, err
	}
	rows := make([]AttributeRow, 0, len(records))
	for _, rec := range records {
		row := AttributeRow{Line: rec.line, Object: rec.fields[0], Attribute: rec.fields[1], Signature: rec.fields[2]}
		if err := checkRow(row, name, rec.line); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// readFile opens path and parses it with read. A missing file returns
// ok=false and no error.
func readFile[T any](path string, read func(io.Reader, string) ([]T, error)) (rows []T, ok bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	rows, err = read(f, path)
	return rows, true, err
}

type record struct {
	line   int
	fields []string
}

func readRecords(r io.Reader, name string, columns int) ([]record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var out []record
	first := true
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, oerrors.NewValidationError(err.Error(), name, "", "")
		}
		line, _ := cr.FieldPos(0)
		if first {
			first = false
			if isHeader(fields[0]) {
				continue
			}
		}
		if len(fields) < columns {
			return nil, oerrors.NewValidationError(
				fmt.Sprintf("expected %d columns, got %d", columns, len(fields)),
				fmt.Sprintf("%s:%d", name, line), "", "")
		}
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		out = append(out, record{line: line, fields: fields})
	}
	return out, nil
}

func isHeader(first string) bool {
	switch strings.ToLower(strings.TrimSpace(first)) {
	case "object", "object_name":
		return true
	}
	return false
}

func checkRow(row any, name string, line int) error {
	err := validate.Struct(row)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		field := strings.ToLower(verrs[0].Field())
		return oerrors.NewValidationError(
			fmt.Sprintf("%s must not be empty", field),
			fmt.Sprintf("%s:%d", name, line), field, "")
	}
	return oerrors.NewValidationError(err.Error(), fmt.Sprintf("%s:%d", name, line), "", "")
}

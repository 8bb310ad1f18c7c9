package enroll

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// ReadXLSX converts the first sheet of a workbook into the delimited text
// format the resolver accepts. Cells containing commas or quotes are quoted.
func ReadXLSX(r io.Reader) (string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return "", errors.Wrap(err, "opening workbook")
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return "", errors.Wrap(err, "reading sheet "+sheets[0])
	}

	var b strings.Builder
	for _, cells := range rows {
		for i, c := range cells {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(quoteField(c))
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

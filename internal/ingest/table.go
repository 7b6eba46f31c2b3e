package ingest

import "strings"

// Column names recognised in the header row, compared case-insensitively.
const (
	ColumnFirstName = "firstname"
	ColumnPhone     = "phone"
	ColumnNotes     = "notes"
)

// ExpectedColumns is the header spelling shown to users in error messages.
var ExpectedColumns = []string{"FirstName", "Phone", "Notes"}

var requiredColumns = []string{ColumnFirstName, ColumnPhone}

// Row maps a header label, as written in the file, to the cell text.
type Row map[string]string

// Table is the decoded content of an upload: the header labels in column
// order and the data rows in file order.
type Table struct {
	Header []string
	Rows   []Row

	// lines holds the 1-based source row number of each entry in Rows.
	lines   []int
	columns map[string]string
}

// Contact is a normalised data row ready for distribution.
type Contact struct {
	FirstName string
	Phone     string
	Notes     string
}

func newTable(header []string) *Table {
	t := &Table{
		Header:  header,
		columns: make(map[string]string, len(header)),
	}
	for _, label := range header {
		key := normalizeColumn(label)
		if key == "" {
			continue
		}
		if _, seen := t.columns[key]; !seen {
			t.columns[key] = label
		}
	}
	return t
}

// addRow appends a row built from positional cells. Cells beyond the header
// width are dropped; missing trailing cells become empty strings.
func (t *Table) addRow(line int, cells []string) {
	row := make(Row, len(t.Header))
	for i, label := range t.Header {
		if strings.TrimSpace(label) == "" {
			continue
		}
		value := ""
		if i < len(cells) {
			value = cells[i]
		}
		row[label] = value
	}
	t.Rows = append(t.Rows, row)
	t.lines = append(t.lines, line)
}

// missingColumns returns the required columns absent from the header.
func (t *Table) missingColumns() []string {
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := t.columns[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

// Lookup returns the value of the named column in row i, matching the
// column name case-insensitively.
func (t *Table) Lookup(i int, column string) string {
	label, ok := t.columns[normalizeColumn(column)]
	if !ok {
		return ""
	}
	return t.Rows[i][label]
}

// Line returns the 1-based source row number of data row i.
func (t *Table) Line(i int) int {
	if i < 0 || i >= len(t.lines) {
		return 0
	}
	return t.lines[i]
}

// Contacts normalises every row. Surrounding whitespace is trimmed; phone
// text is otherwise kept verbatim. A row without a first name or phone fails
// with a RowError.
func (t *Table) Contacts() ([]Contact, error) {
	contacts := make([]Contact, 0, len(t.Rows))
	for i := range t.Rows {
		c := Contact{
			FirstName: strings.TrimSpace(t.Lookup(i, ColumnFirstName)),
			Phone:     strings.TrimSpace(t.Lookup(i, ColumnPhone)),
			Notes:     strings.TrimSpace(t.Lookup(i, ColumnNotes)),
		}
		if c.FirstName == "" {
			return nil, &RowError{Row: t.Line(i), Field: ExpectedColumns[0]}
		}
		if c.Phone == "" {
			return nil, &RowError{Row: t.Line(i), Field: ExpectedColumns[1]}
		}
		contacts = append(contacts, c)
	}
	return contacts, nil
}

func normalizeColumn(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

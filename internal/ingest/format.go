package ingest

import (
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Format identifies the encoding of an uploaded file.
type Format int

// Supported formats.
const (
	FormatUnknown Format = iota
	FormatCSV
	FormatXLSX
	FormatXLS
)

// MIME types accepted by the upload endpoint.
const (
	MIMETypeCSV  = "text/csv"
	MIMETypeXLS  = "application/vnd.ms-excel"
	MIMETypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// String implements fmt.Stringer.
func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatXLSX:
		return "xlsx"
	case FormatXLS:
		return "xls"
	default:
		return "unknown"
	}
}

// FormatFromMIME maps a declared Content-Type to a Format. Parameters such as
// charset are ignored. Anything outside the allow-list yields
// ErrUnsupportedFileType.
func FormatFromMIME(contentType string) (Format, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.TrimSpace(contentType)
	}

	switch strings.ToLower(mediaType) {
	case MIMETypeCSV:
		return FormatCSV, nil
	case MIMETypeXLS:
		return FormatXLS, nil
	case MIMETypeXLSX:
		return FormatXLSX, nil
	default:
		return FormatUnknown, ErrUnsupportedFileType
	}
}

// ResolveFormat refines a declared format by sniffing the content. Only
// application/vnd.ms-excel is ambiguous: browsers on Windows send it for
// .csv files, and some exporters send it for .xlsx workbooks. Every other
// declared format is returned unchanged, so mislabelled bytes fail to parse.
func ResolveFormat(declared Format, data []byte) Format {
	if declared != FormatXLS {
		return declared
	}

	detected := mimetype.Detect(data)
	if detected.Is(MIMETypeXLSX) {
		return FormatXLSX
	}
	for m := detected; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return FormatCSV
		}
	}
	return FormatXLS
}

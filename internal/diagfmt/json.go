package diagfmt

import (
	"encoding/json"
	"io"

	"coil/internal/diag"
	"coil/internal/source"
)

// LocationJSON представляет местоположение для JSON
type LocationJSON struct {
	File      string `json:"file,omitempty"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
}

// NoteJSON представляет дополнительную заметку для JSON
type NoteJSON struct {
	Message string `json:"message"`
}

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Severity string        `json:"severity"`
	Code     string        `json:"code"`
	Func     string        `json:"func,omitempty"`
	Message  string        `json:"message"`
	Location *LocationJSON `json:"location,omitempty"`
	Notes    []NoteJSON    `json:"notes,omitempty"`
}

// DiagnosticsOutput — корневая структура JSON вывода
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Errors      int              `json:"errors"`
	Warnings    int              `json:"warnings"`
}

// JSON пишет отсортированный bag одним JSON-документом.
func JSON(w io.Writer, bag *diag.Bag, files *source.FileTable) error {
	out := DiagnosticsOutput{Diagnostics: make([]DiagnosticJSON, 0, bag.Len())}
	for _, d := range bag.Items() {
		dj := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.String(),
			Func:     d.Func,
			Message:  d.Message,
		}
		if d.Primary.Valid() {
			loc := LocationJSON{StartByte: d.Primary.Start, EndByte: d.Primary.End}
			if files != nil {
				loc.File = files.Path(d.Primary.File)
			}
			dj.Location = &loc
		}
		for _, n := range d.Notes {
			dj.Notes = append(dj.Notes, NoteJSON{Message: n.Msg})
		}
		switch d.Severity {
		case diag.SevError:
			out.Errors++
		case diag.SevWarning:
			out.Warnings++
		}
		out.Diagnostics = append(out.Diagnostics, dj)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

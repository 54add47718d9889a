package emit

import (
	"bufio"
	"io"
	"strings"
)

// Header is the column header line of the output table.
const Header = "master_token\tmaster_lemma\tslave_token\tslave_lemma"

// Writer writes rows as tab-separated lines.
type Writer struct {
	w           *bufio.Writer
	header      bool
	wroteHeader bool
}

// NewWriter returns a writer; with header set the first write is preceded by Header.
func NewWriter(w io.Writer, header bool) *Writer {
	return &Writer{w: bufio.NewWriter(w), header: header}
}

// WriteRows appends rows to the output.
func (w *Writer) WriteRows(rows []Row) error {
	if err := w.writeHeader(); err != nil {
		return err
	}
	for _, r := range rows {
		line := r.MasterToken + "\t" + r.MasterLemma + "\t" + r.SlaveToken + "\t" + r.SlaveLemma + "\n"
		if _, err := w.w.WriteString(line); err != nil {
			return err
		}
	}
	return nil
}

// Flush writes the header if nothing was written yet and flushes buffered data.
func (w *Writer) Flush() error {
	if err := w.writeHeader(); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *Writer) writeHeader() error {
	if !w.header || w.wroteHeader {
		return nil
	}
	w.wroteHeader = true
	_, err := w.w.WriteString(Header + "\n")
	return err
}

// ReadRows parses an output table. A leading Header line is skipped and short
// lines are padded with empty fields.
func ReadRows(r io.Reader) ([]Row, error) {
	var rows []Row
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)

	first := true
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if first {
			first = false
			if line == Header {
				continue
			}
		}
		if line == "" {
			continue
		}
		f := strings.SplitN(line, "\t", 4)
		for len(f) < 4 {
			f = append(f, "")
		}
		rows = append(rows, Row{MasterToken: f[0], MasterLemma: f[1], SlaveToken: f[2], SlaveLemma: f[3]})
	}
	return rows, scanner.Err()
}

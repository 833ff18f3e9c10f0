package gf2

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ErrBadEncoding is returned when a textual matrix cannot be decoded.
var ErrBadEncoding = errors.New("gf2: malformed matrix encoding")

// MarshalText encodes the matrix as a "rows cols" header line followed by one
// hex line per row. Each row is packed most significant bit first and padded
// with zero bits to a whole number of bytes.
func (m Matrix) MarshalText() ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d %d\n", m.rows, m.cols)
	for _, row := range m.data {
		buf.WriteString(hex.EncodeToString(row.paddedBytes()))
		buf.WriteByte('\n')
	}

	return buf.Bytes(), nil
}

// UnmarshalText decodes the format written by MarshalText. Blank lines and
// lines starting with '#' are ignored.
func (m *Matrix) UnmarshalText(text []byte) error {
	scanner := bufio.NewScanner(bytes.NewReader(text))

	var (
		rows, cols int
		header     bool
		data       []Vector
	)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !header {
			_, err := fmt.Sscanf(line, "%d %d", &rows, &cols)
			if err != nil || rows <= 0 || cols <= 0 {
				return fmt.Errorf("%w: bad header %q",
					ErrBadEncoding, line)
			}
			header = true

			continue
		}

		raw, err := hex.DecodeString(line)
		if err != nil {
			return fmt.Errorf("%w: row %d: %v", ErrBadEncoding,
				len(data), err)
		}
		if len(raw) != (cols+7)/8 {
			return fmt.Errorf("%w: row %d has %d bytes, want %d",
				ErrBadEncoding, len(data), len(raw),
				(cols+7)/8)
		}

		full := VectorFromBytes(raw)
		row := newVector(cols)
		for j := 0; j < full.n; j++ {
			if full.Bit(j) == 0 {
				continue
			}
			if j >= cols {
				return fmt.Errorf("%w: row %d has bits set in "+
					"padding", ErrBadEncoding, len(data))
			}
			row.set(j)
		}
		data = append(data, row)
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	if !header {
		return fmt.Errorf("%w: missing header", ErrBadEncoding)
	}
	if len(data) != rows {
		return fmt.Errorf("%w: got %d rows, header says %d",
			ErrBadEncoding, len(data), rows)
	}

	*m = Matrix{rows: rows, cols: cols, data: data}

	return nil
}

package bitvec

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Матрица конфликтов едет в снапшоты модулей внутри раскладки состояния,
// а её поля скрыты, поэтому msgpack-кодек явный: ширина, затем слова
// каждой строки.

var (
	_ msgpack.CustomEncoder = (*Matrix)(nil)
	_ msgpack.CustomDecoder = (*Matrix)(nil)
)

// EncodeMsgpack writes the matrix as [n, row0, ..., rowN-1] where each
// row is the packed words of one Set.
func (m *Matrix) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeArrayLen(len(m.rows) + 1); err != nil {
		return err
	}
	if err := enc.EncodeInt(int64(len(m.rows))); err != nil {
		return err
	}
	for _, row := range m.rows {
		if err := enc.EncodeArrayLen(len(row.words)); err != nil {
			return err
		}
		for _, w := range row.words {
			if err := enc.EncodeUint(w); err != nil {
				return err
			}
		}
	}
	return nil
}

// DecodeMsgpack restores a matrix written by EncodeMsgpack.
func (m *Matrix) DecodeMsgpack(dec *msgpack.Decoder) error {
	l, err := dec.DecodeArrayLen()
	if err != nil {
		return err
	}
	if l < 1 {
		return fmt.Errorf("bitvec: matrix payload has no width")
	}
	n64, err := dec.DecodeInt64()
	if err != nil {
		return err
	}
	n := int(n64)
	if n < 0 || l != n+1 {
		return fmt.Errorf("bitvec: matrix payload claims %d rows, carries %d", n, l-1)
	}
	rebuilt := NewMatrix(n)
	for i := range rebuilt.rows {
		wl, err := dec.DecodeArrayLen()
		if err != nil {
			return err
		}
		row := rebuilt.rows[i]
		if wl != len(row.words) {
			return fmt.Errorf("bitvec: row %d carries %d words, want %d", i, wl, len(row.words))
		}
		for j := 0; j < wl; j++ {
			w, err := dec.DecodeUint64()
			if err != nil {
				return err
			}
			row.words[j] = w
		}
	}
	m.rows = rebuilt.rows
	return nil
}

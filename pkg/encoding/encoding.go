// Copyright (C) 2026  The gomlem authors

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package encoding

import (
	"encoding/binary"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/gomlem/gomlem/pkg/machine"
)

// Decodes a hexadecimal string in the formats: 0xFFFF, xFFFF, 0xFF, xFF
func DecodeHex(s string) (uint64, error) {
	if i := strings.IndexAny(s, "xX"); i == 0 {
		s = "0" + s
	} else if i == -1 || i != 1 {
		return 0, errors.New("Invalid hex string")
	}

	result, err := strconv.ParseUint(s, 0, 64)

	if err != nil {
		return 0, err
	}

	return result, nil
}

// Decodes a base-10 string in the formats: #123, 123, #-123, -123
func DecodeInt(s string) (int64, error) {
	if i := strings.Index(s, "#"); i == 0 {
		s = s[1:]
	}

	result, err := strconv.ParseInt(s, 10, 64)

	if err != nil {
		return 0, err
	}

	return result, nil
}

// Decodes a numeric literal as an unsigned word: hex forms per DecodeHex,
// base-10 forms per DecodeInt with negatives folded two's complement.
func DecodeWord(s string) (machine.Word, error) {
	if strings.ContainsAny(s, "xX") {
		return DecodeHex(s)
	}

	result, err := DecodeInt(s)

	if err != nil {
		return 0, err
	}

	return machine.Word(result), nil
}

// ReadWords reads big-endian 64-bit words from r until EOF. A trailing
// partial word is an error.
func ReadWords(r io.Reader) ([]machine.Word, error) {
	var words []machine.Word
	var buf [8]byte

	for {
		_, err := io.ReadFull(r, buf[:])

		if err == io.EOF {
			return words, nil
		}

		if err != nil {
			return nil, err
		}

		words = append(words, binary.BigEndian.Uint64(buf[:]))
	}
}

// WriteWords writes words to w as big-endian 64-bit values.
func WriteWords(w io.Writer, words []machine.Word) error {
	var buf [8]byte

	for _, word := range words {
		binary.BigEndian.PutUint64(buf[:], word)

		if _, err := w.Write(buf[:]); err != nil {
			return err
		}
	}

	return nil
}

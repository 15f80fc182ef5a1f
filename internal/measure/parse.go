package measure

import (
	"bytes"
	"errors"
)

const (
	valueSep = ';'
	endLine  = '\n'
)

var (
	ErrSeparatorNotFound = errors.New("separator not found")
	ErrValueNotFound     = errors.New("value not found")
)

// ParseFloat parses a fixed-point value with exactly one fractional digit,
// like "-12.3". strconv.ParseFloat is far too slow for the hot path.
//
// The last byte is the fractional digit and the byte before it is taken to be
// the decimal point without looking at it. Digits are not validated, so
// malformed input yields an arbitrary number rather than an error.
func ParseFloat(value []byte) float64 {
	n := len(value)
	if n == 0 {
		return 0
	}
	fractional := float64(value[n-1] - '0')

	whole := value[:max(n-2, 0)]
	sign := 1.0
	if len(whole) > 0 && whole[0] == '-' {
		sign = -1.0
		whole = whole[1:]
	}

	f := 0.0
	pow := 1.0
	for i := len(whole) - 1; i >= 0; i-- {
		f += float64(whole[i]-'0') * pow
		pow *= 10
	}
	return sign * (f + fractional/10)
}

type Item struct {
	Name  []byte
	Value float64
}

// ParseLine parses a single record without its trailing newline.
func ParseLine(line []byte) (out Item, err error) {
	sep := bytes.IndexByte(line, valueSep)
	if sep == -1 {
		return out, ErrSeparatorNotFound
	}
	if sep == len(line)-1 {
		return out, ErrValueNotFound
	}

	out.Name = line[:sep]
	out.Value = ParseFloat(line[sep+1:])
	return out, nil
}

// ParseRecords folds every complete "key;value\n" record of buf into t. It
// returns the number of bytes consumed, which ends right after the last
// newline that closed a record, and how many records were parsed. Bytes past
// consumed are an incomplete record.
func ParseRecords(buf []byte, t *Table) (consumed, records int) {
	for {
		rest := buf[consumed:]
		sep := bytes.IndexByte(rest, valueSep)
		if sep == -1 {
			return consumed, records
		}
		end := bytes.IndexByte(rest[sep+1:], endLine)
		if end == -1 {
			return consumed, records
		}
		end += sep + 1

		t.Update(rest[:sep], ParseFloat(rest[sep+1:end]))
		consumed += end + 1
		records++
	}
}

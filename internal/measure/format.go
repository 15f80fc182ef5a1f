package measure

import (
	"bufio"
	"io"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Format writes t as {name=min/mean/max, ...} with names sorted by byte
// value and every number rendered with one fractional digit.
func Format(w io.Writer, t *Table) error {
	snapshot := t.Snapshot()
	names := maps.Keys(snapshot)
	slices.Sort(names)

	bw := bufio.NewWriter(w)
	bw.WriteByte('{')
	for i, name := range names {
		if i != 0 {
			bw.WriteString(", ")
		}
		bw.WriteString(name)
		bw.WriteByte('=')
		bw.WriteString(snapshot[name].String())
	}
	bw.WriteByte('}')
	return bw.Flush()
}

func String(t *Table) string {
	var sb strings.Builder
	// strings.Builder never fails to write
	_ = Format(&sb, t)
	return sb.String()
}

package solver

import (
	"bytes"

	"github.com/weirdgiraffe/1brc-chunked/internal/measure"
)

// Merge combines two outcomes into one and consumes both. Fragments keep
// their ranges and are only joined, in file order, by Leftover, so outcomes
// may be merged in any grouping and any order.
func Merge(a, b *Outcome) *Outcome {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}

	a.Table.MergeTable(b.Table)
	a.Fragments = append(a.Fragments, b.Fragments...)
	a.Records += b.Records
	return a
}

// Reduce folds outcomes pairwise into a single outcome.
func Reduce(outcomes []*Outcome) *Outcome {
	var acc *Outcome
	for _, o := range outcomes {
		acc = Merge(acc, o)
	}
	return acc
}

// Reconcile parses the joined leftover of o into its table and returns the
// table. Joined in file order the leftover consists of whole records, except
// that the last one may lack its newline when the input does. Anything else
// is reported as a *CorruptInputError.
func Reconcile(o *Outcome) (*measure.Table, error) {
	leftover := o.Leftover()
	consumed, records := measure.ParseRecords(leftover, o.Table)
	o.Records += int64(records)

	rest := leftover[consumed:]
	if len(rest) == 0 {
		return o.Table, nil
	}

	// only the end of the input can be a record without a newline
	if bytes.IndexByte(rest, '\n') == -1 {
		if item, err := measure.ParseLine(rest); err == nil {
			o.Table.Update(item.Name, item.Value)
			o.Records++
			return o.Table, nil
		}
	}
	return nil, &CorruptInputError{
		Offset:    consumed,
		Remainder: bytes.Clone(rest),
	}
}

// Package lexgendebug implements the table-dump half of the debug/dump
// facility §6 allows as an external collaborator: a flat, row-major
// serialization of a compiled machine.StateMachine: the start_state_count
// once, then an (alphabet_width, row_count) header pair ahead of each
// start-state's rows. It is deliberately not a pretty-printer
// and does not emit a graph-description (dot) form — both are out of
// scope per §1.
package lexgendebug

import (
	"encoding/binary"
	"io"

	"lexgen/dfa"
	"lexgen/machine"
)

// Dump writes m's compiled tables to w as big-endian int32s: first the
// number of start-states, then, for each start-state in declaration order,
// a (alphabet_width, row_count) pair followed by row_count *
// alphabet_width transition cells (each row's fixed end-state/rule/user/
// push/next columns are folded into five leading int32 cells per row
// ahead of its transition columns, matching the column layout §3
// describes: [0] end+greedy+pop bits, [1] rule id, [2] user id, [3]
// push-state, [4] next-state, [5..] transitions).
func Dump(w io.Writer, m *machine.StateMachine) error {
	n := m.NumStates()
	if err := writeInt32(w, int32(n)); err != nil {
		return err
	}
	for id := 0; id < n; id++ {
		table := m.Table(id)
		width := int32(5 + table.TotalColumns)
		rows := int32(len(table.Rows))
		if err := writeInt32(w, width); err != nil {
			return err
		}
		if err := writeInt32(w, rows); err != nil {
			return err
		}
		for _, row := range table.Rows {
			if err := writeRow(w, row); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeRow(w io.Writer, row dfa.Row) error {
	cells := []int32{
		endStateBits(row),
		row.RuleID,
		row.UserID,
		row.PushState,
		row.NextState,
	}
	cells = append(cells, row.Transitions...)
	for _, c := range cells {
		if err := writeInt32(w, c); err != nil {
			return err
		}
	}
	return nil
}

// endStateBits packs EndState/Greedy/PopFlag into one cell, matching §3's
// "the end-state cell encodes {end, greedy, pop} bits".
func endStateBits(row dfa.Row) int32 {
	var v int32
	if row.EndState {
		v |= 1
	}
	v |= int32(row.Greedy) << 1
	if row.PopFlag {
		v |= 1 << 4
	}
	return v
}

func writeInt32(w io.Writer, v int32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(v))
	_, err := w.Write(buf[:])
	return err
}

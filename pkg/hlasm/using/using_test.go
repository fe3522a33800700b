package using

import (
	"testing"

	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/context"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/ids"
	"github.com/stretchr/testify/require"
)

func TestImplicitZeroMapping(t *testing.T) {
	store := ids.New()
	arena := context.NewSpaceArena()
	col := NewCollection(store, arena)

	res := col.Evaluate(col.Current(), ids.Index{}, context.NewAbsoluteAddress(100), false)
	require.True(t, res.Mapped)
	require.True(t, res.InRange)
	require.Equal(t, 0, res.Reg)
	require.Equal(t, 100, res.Disp)
}

func TestUsingMapsSectionAddress(t *testing.T) {
	store := ids.New()
	arena := context.NewSpaceArena()
	sec := &context.Section{}
	base := context.Base{Section: sec}
	col := NewCollection(store, arena)

	begin := context.NewAddress(base, 0)
	mark := col.AddUsing(ids.Index{}, ids.Index{}, begin, nil, []int{12})

	target := context.NewAddress(base, 10)
	res := col.Evaluate(mark, ids.Index{}, target, false)
	require.True(t, res.Mapped)
	require.True(t, res.InRange)
	require.Equal(t, 12, res.Reg)
	require.Equal(t, 10, res.Disp)
}

func TestDropRemovesMapping(t *testing.T) {
	store := ids.New()
	arena := context.NewSpaceArena()
	sec := &context.Section{}
	base := context.Base{Section: sec}
	col := NewCollection(store, arena)

	begin := context.NewAddress(base, 0)
	col.AddUsing(ids.Index{}, ids.Index{}, begin, nil, []int{12})
	mark := col.AddDrop([]int{12})

	target := context.NewAddress(base, 10)
	res := col.Evaluate(mark, ids.Index{}, target, false)
	// Nothing but the implicit zero-entry maps a section-relative address,
	// so it stays unmapped.
	require.False(t, res.Mapped)
}

func TestBestCandidateTieBreakPrefersHigherRegister(t *testing.T) {
	store := ids.New()
	arena := context.NewSpaceArena()
	sec := &context.Section{}
	base := context.Base{Section: sec}
	col := NewCollection(store, arena)

	begin := context.NewAddress(base, 0)
	col.AddUsing(ids.Index{}, ids.Index{}, begin, nil, []int{10})
	mark := col.AddUsing(ids.Index{}, ids.Index{}, begin, nil, []int{11})

	target := context.NewAddress(base, 5)
	res := col.Evaluate(mark, ids.Index{}, target, false)
	require.Equal(t, 11, res.Reg)
	require.Equal(t, 5, res.Disp)
}

func TestOutOfRangeStillReportsBestMapping(t *testing.T) {
	store := ids.New()
	arena := context.NewSpaceArena()
	sec := &context.Section{}
	base := context.Base{Section: sec}
	col := NewCollection(store, arena)

	begin := context.NewAddress(base, 0)
	mark := col.AddUsing(ids.Index{}, ids.Index{}, begin, nil, []int{12})

	target := context.NewAddress(base, 5000)
	res := col.Evaluate(mark, ids.Index{}, target, false)
	require.True(t, res.Mapped)
	require.False(t, res.InRange)
	require.Equal(t, 12, res.Reg)
}

package cursor

import (
	"context"
	"slices"
	"strings"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"github.com/theplant/listing"
)

type namedItem struct {
	Name   string
	System bool
}

func namedKey(it namedItem) NameCursor {
	return NameCursor{Name: it.Name, Container: it.System}
}

func TestCompareNames(t *testing.T) {
	items := []NameCursor{
		{Name: "b"},
		{Name: "Z", Container: true},
		{Name: "B"},
		{Name: "a"},
		{Name: "c", Container: true},
		{Name: "A"},
	}
	slices.SortFunc(items, CompareNames)
	require.Equal(t, []NameCursor{
		{Name: "c", Container: true},
		{Name: "Z", Container: true},
		{Name: "A"},
		{Name: "a"},
		{Name: "B"},
		{Name: "b"},
	}, items)

	require.Equal(t, 0, CompareNames(NameCursor{Name: "x"}, NameCursor{Name: "x"}))
}

var namedItems = []namedItem{
	{Name: "/YSS/SIMULATOR/Voltage"},
	{Name: "/YSS/SIMULATOR/power", System: true},
	{Name: "/YSS/SIMULATOR/Altitude"},
	{Name: "/YSS/SIMULATOR/battery"},
	{Name: "/YSS/SIMULATOR/Attitude", System: true},
	{Name: "/YSS/SIMULATOR/Current"},
}

func names(nodes []namedItem) []string {
	return lo.Map(nodes, func(it namedItem, _ int) string {
		return strings.TrimPrefix(it.Name, "/YSS/SIMULATOR/")
	})
}

func TestNameAdapter(t *testing.T) {
	p := listing.New(NewNameAdapter(namedItems, namedKey, nil))
	ctx := context.Background()

	conn, err := p.Paginate(ctx, &listing.PaginateRequest[namedItem]{First: lo.ToPtr(3)})
	require.NoError(t, err)
	require.Equal(t, []string{"Attitude", "power", "Altitude"}, names(conn.Nodes))
	require.True(t, conn.PageInfo.HasNextPage)
	require.Equal(t, 6, *conn.TotalCount)

	conn, err = p.Paginate(ctx, &listing.PaginateRequest[namedItem]{First: lo.ToPtr(3), After: conn.PageInfo.EndCursor})
	require.NoError(t, err)
	require.Equal(t, []string{"battery", "Current", "Voltage"}, names(conn.Nodes))
	require.False(t, conn.PageInfo.HasNextPage)

	conn, err = p.Paginate(ctx, &listing.PaginateRequest[namedItem]{First: lo.ToPtr(2), Pos: lo.ToPtr(4)})
	require.NoError(t, err)
	require.Equal(t, []string{"Current", "Voltage"}, names(conn.Nodes))
}

func TestNameAdapterResumesAfterRemovedItem(t *testing.T) {
	p := listing.New(NewNameAdapter(namedItems, namedKey, nil))
	after, err := EncodeName(NameCursor{Name: "/YSS/SIMULATOR/B"})
	require.NoError(t, err)

	conn, err := p.Paginate(context.Background(), &listing.PaginateRequest[namedItem]{First: lo.ToPtr(10), After: &after})
	require.NoError(t, err)
	require.Equal(t, []string{"battery", "Current", "Voltage"}, names(conn.Nodes))

	// A container cursor resumes before all leaf items
	after, err = EncodeName(NameCursor{Name: "/YSS/SIMULATOR/Attitude", Container: true})
	require.NoError(t, err)
	conn, err = p.Paginate(context.Background(), &listing.PaginateRequest[namedItem]{First: lo.ToPtr(2), After: &after})
	require.NoError(t, err)
	require.Equal(t, []string{"power", "Altitude"}, names(conn.Nodes))
}

func TestNameAdapterMatch(t *testing.T) {
	match := func(it namedItem) bool {
		return strings.Contains(strings.ToLower(strings.TrimPrefix(it.Name, "/YSS/SIMULATOR/")), "t")
	}
	p := listing.New(NewNameAdapter(namedItems, namedKey, match))
	ctx := context.Background()

	var got []string
	var after *string
	for {
		conn, err := p.Paginate(ctx, &listing.PaginateRequest[namedItem]{First: lo.ToPtr(2), After: after})
		require.NoError(t, err)
		require.Equal(t, 5, *conn.TotalCount)
		got = append(got, names(conn.Nodes)...)
		if !conn.PageInfo.HasNextPage {
			break
		}
		after = conn.PageInfo.EndCursor
	}
	require.Equal(t, []string{"Attitude", "Altitude", "battery", "Current", "Voltage"}, got)
}

func TestNameAdapterSkipTotalCount(t *testing.T) {
	p := listing.New(NewNameAdapter(namedItems, namedKey, nil))
	ctx := listing.WithSkip(context.Background(), listing.Skip{TotalCount: true})
	conn, err := p.Paginate(ctx, &listing.PaginateRequest[namedItem]{First: lo.ToPtr(1)})
	require.NoError(t, err)
	require.Nil(t, conn.TotalCount)
}

func TestNameAdapterInvalidCursor(t *testing.T) {
	p := listing.New(NewNameAdapter(namedItems, namedKey, nil))
	_, err := p.Paginate(context.Background(), &listing.PaginateRequest[namedItem]{First: lo.ToPtr(1), After: lo.ToPtr("!!")})
	var target *InvalidCursorError
	require.ErrorAs(t, err, &target)
}

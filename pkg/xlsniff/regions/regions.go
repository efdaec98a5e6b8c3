// Package regions finds data islands: maximal 4-connected blocks of
// non-empty cells not claimed by anything else.
package regions

import (
	"sort"

	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/models"
	"github.com/ukaji3/xlsniff-go/pkg/xlsniff/refs"
)

// Island is one contiguous block of occupied cells.
type Island struct {
	// Cells holds the member coordinates in row-major order.
	Cells []refs.Coord
	// Box is the island's bounding range.
	Box refs.Range
}

// Find returns the islands of a sheet, excluding the given
// coordinates (typically cells claimed by formal tables). Candidate
// iteration is row-major, so the island list and the order of cells
// inside each island are deterministic.
func Find(sheet *models.Sheet, excluded map[refs.Coord]bool) []Island {
	candidates := make(map[refs.Coord]bool)
	var order []refs.Coord
	for _, c := range sheet.NonEmpty() {
		coord := refs.Coord{Row: c.Row, Col: c.Col}
		if excluded[coord] {
			continue
		}
		candidates[coord] = true
		order = append(order, coord)
	}

	visited := make(map[refs.Coord]bool)
	var islands []Island
	for _, start := range order {
		if visited[start] {
			continue
		}
		members := flood(start, candidates, visited)
		sort.Slice(members, func(i, j int) bool {
			if members[i].Row != members[j].Row {
				return members[i].Row < members[j].Row
			}
			return members[i].Col < members[j].Col
		})
		box, _ := refs.BoundingBox(members)
		islands = append(islands, Island{Cells: members, Box: box})
	}
	return islands
}

// flood runs breadth-first search over 4-neighbors restricted to the
// candidate set.
func flood(start refs.Coord, candidates, visited map[refs.Coord]bool) []refs.Coord {
	queue := []refs.Coord{start}
	visited[start] = true
	var members []refs.Coord
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		members = append(members, cur)
		for _, n := range []refs.Coord{
			{Row: cur.Row - 1, Col: cur.Col},
			{Row: cur.Row + 1, Col: cur.Col},
			{Row: cur.Row, Col: cur.Col - 1},
			{Row: cur.Row, Col: cur.Col + 1},
		} {
			if candidates[n] && !visited[n] {
				visited[n] = true
				queue = append(queue, n)
			}
		}
	}
	return members
}

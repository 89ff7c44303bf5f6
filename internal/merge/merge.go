// Package merge computes the topological union of buffered footprints and
// splits the result into disjoint regions.
package merge

import (
	"errors"
	"fmt"

	"github.com/akosarev/kmlmerge/internal/geo"

	"github.com/rs/zerolog/log"
	"github.com/twpayne/go-geos"
)

// ErrGeometry is returned when the union cannot process degenerate input,
// such as self-intersecting or zero-area rings. It is recoverable:
// callers may keep the unmerged input set.
var ErrGeometry = errors.New("merge: union failed on degenerate geometry")

// UnionKind tags the outcome of a merge.
type UnionKind int

const (
	UnionEmpty UnionKind = iota
	UnionSingle
	UnionMultiple
)

// Union is the merge outcome: no polygons, exactly one region, or several
// disjoint regions.
type Union struct {
	Kind     UnionKind
	Polygons []geo.Polygon
}

// Merge fuses all polygons that touch or overlap, directly or through a
// chain of pairwise intersections, into one region per connected
// component. Polygons that intersect nothing pass through with their
// original rings. Every covered area appears in exactly one output
// polygon.
func Merge(polys []geo.Polygon) (Union, error) {
	switch len(polys) {
	case 0:
		return Union{Kind: UnionEmpty}, nil
	case 1:
		return Union{Kind: UnionSingle, Polygons: []geo.Polygon{asMerged(polys[0])}}, nil
	}

	merged, err := mergeAll(polys)
	if err != nil {
		return Union{}, err
	}

	if len(merged) == 1 {
		return Union{Kind: UnionSingle, Polygons: merged}, nil
	}
	return Union{Kind: UnionMultiple, Polygons: merged}, nil
}

func mergeAll(polys []geo.Polygon) (result []geo.Polygon, err error) {
	// go-geos reports GEOS errors by panicking
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrGeometry, r)
		}
	}()

	ctx := geos.NewContext()

	geoms := make([]*geos.Geom, len(polys))
	for i, p := range polys {
		g, gerr := ctx.NewGeomFromWKT(ringWKT(p.Ring))
		if gerr != nil {
			return nil, fmt.Errorf("%w: %v", ErrGeometry, gerr)
		}
		if !g.IsValid() {
			return nil, fmt.Errorf("%w: invalid ring at index %d", ErrGeometry, i)
		}
		geoms[i] = g
	}

	for _, comp := range components(geoms) {
		if len(comp) == 1 {
			// untouched footprints keep their original ring
			result = append(result, asMerged(polys[comp[0]]))
			continue
		}

		members := make([]*geos.Geom, len(comp))
		for i, idx := range comp {
			members[i] = geoms[idx]
		}

		rings, rerr := exteriorRings(cascadedUnion(members))
		if rerr != nil {
			return nil, rerr
		}
		if len(rings) != 1 {
			log.Warn().
				Int("parts", len(rings)).
				Int("members", len(comp)).
				Msg("Union of one component produced unexpected part count")
		}
		for _, ring := range rings {
			result = append(result, geo.Polygon{Ring: ring, Kind: geo.KindMerged})
		}
	}

	return result, nil
}

// components groups geometries into connected components of the pairwise
// intersection graph, via union-find with path halving.
func components(geoms []*geos.Geom) [][]int {
	parent := make([]int, len(geoms))
	for i := range parent {
		parent[i] = i
	}

	find := func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}

	for i := 0; i < len(geoms); i++ {
		for j := i + 1; j < len(geoms); j++ {
			if geoms[i].Intersects(geoms[j]) {
				ri, rj := find(i), find(j)
				if ri != rj {
					parent[rj] = ri
				}
			}
		}
	}

	groups := make(map[int][]int)
	var order []int
	for i := range geoms {
		r := find(i)
		if _, ok := groups[r]; !ok {
			order = append(order, r)
		}
		groups[r] = append(groups[r], i)
	}

	out := make([][]int, 0, len(order))
	for _, r := range order {
		out = append(out, groups[r])
	}
	return out
}

// cascadedUnion unions geometries divide-and-conquer style, which keeps
// the intermediate results small compared to a linear fold. The input
// geometries are consumed.
func cascadedUnion(geoms []*geos.Geom) *geos.Geom {
	if len(geoms) == 1 {
		return geoms[0]
	}

	mid := len(geoms) / 2
	left := cascadedUnion(geoms[:mid])
	right := cascadedUnion(geoms[mid:])

	result := left.Union(right)
	left.Destroy()
	right.Destroy()

	return result
}

func asMerged(p geo.Polygon) geo.Polygon {
	p.Kind = geo.KindMerged
	return p
}

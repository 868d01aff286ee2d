package game

import "slices"

// Spatial is anything the octree can partition.
type Spatial interface {
	PositionVector() Vec3
	Size() float64
}

// Box is an axis-aligned bounding box.
type Box struct {
	MinX, MaxX float64
	MinY, MaxY float64
	MinZ, MaxZ float64
}

func (b Box) intersects(o Box) bool {
	return b.MinX <= o.MaxX && b.MaxX >= o.MinX &&
		b.MinY <= o.MaxY && b.MaxY >= o.MinY &&
		b.MinZ <= o.MaxZ && b.MaxZ >= o.MinZ
}

// Octree is a throwaway spatial partition rebuilt every tick for hit-testing.
// Objects straddling a split plane are stored in every child they overlap, so
// range queries may return the same object more than once.
type Octree[T Spatial] struct {
	objects  []T
	center   Vec3
	root     bool
	bounds   Box
	children []*Octree[T]
}

// NewOctree partitions objects around their centroid until maxDepth is used up
// or a node holds at most maxObjects members. Only a root node stores a
// bounding box (expanded by each member's size).
func NewOctree[T Spatial](objects []T, maxDepth, maxObjects int, root bool) *Octree[T] {
	o := &Octree[T]{objects: objects, root: root}
	if len(objects) == 0 {
		return o
	}
	if root {
		o.bounds = boundsOf(objects)
	}
	if len(objects) <= maxObjects || maxDepth <= 0 {
		return o
	}
	var sum Vec3
	for _, obj := range objects {
		sum = sum.Add(obj.PositionVector())
	}
	o.center = sum.Scale(1.0 / float64(len(objects)))

	var parts [8][]T
	for _, obj := range objects {
		pos := obj.PositionVector()
		size := obj.Size()
		for i := 0; i < 8; i++ {
			if overlapsOctant(i, o.center,
				pos.X-size, pos.X+size,
				pos.Y-size, pos.Y+size,
				pos.Z-size, pos.Z+size) {
				parts[i] = append(parts[i], obj)
			}
		}
	}
	o.children = make([]*Octree[T], 8)
	for i := range parts {
		o.children[i] = NewOctree(parts[i], maxDepth-1, maxObjects, false)
	}
	return o
}

// overlapsOctant reports whether the range overlaps octant i of center. Bit 0
// of i selects the high X half, bit 1 high Y, bit 2 high Z.
func overlapsOctant(i int, c Vec3, minX, maxX, minY, maxY, minZ, maxZ float64) bool {
	if i&1 == 0 {
		if minX >= c.X {
			return false
		}
	} else if maxX < c.X {
		return false
	}
	if i&2 == 0 {
		if minY >= c.Y {
			return false
		}
	} else if maxY < c.Y {
		return false
	}
	if i&4 == 0 {
		if minZ >= c.Z {
			return false
		}
	} else if maxZ < c.Z {
		return false
	}
	return true
}

func boundsOf[T Spatial](objects []T) Box {
	first := objects[0].PositionVector()
	s := objects[0].Size()
	b := Box{
		MinX: first.X - s, MaxX: first.X + s,
		MinY: first.Y - s, MaxY: first.Y + s,
		MinZ: first.Z - s, MaxZ: first.Z + s,
	}
	for _, obj := range objects[1:] {
		p := obj.PositionVector()
		s := obj.Size()
		b.MinX = min(b.MinX, p.X-s)
		b.MaxX = max(b.MaxX, p.X+s)
		b.MinY = min(b.MinY, p.Y-s)
		b.MaxY = max(b.MaxY, p.Y+s)
		b.MinZ = min(b.MinZ, p.Z-s)
		b.MaxZ = max(b.MaxZ, p.Z+s)
	}
	return b
}

// GetObjects returns candidate objects for the query box. Leaves return all of
// their members without filtering; callers post-filter and tolerate duplicates.
// Appending to the result never writes into the tree's own lists.
func (o *Octree[T]) GetObjects(minX, maxX, minY, maxY, minZ, maxZ float64) []T {
	if len(o.children) == 0 {
		return slices.Clip(o.objects)
	}
	if o.root && !o.bounds.intersects(Box{minX, maxX, minY, maxY, minZ, maxZ}) {
		return nil
	}
	var result []T
	for i, child := range o.children {
		if overlapsOctant(i, o.center, minX, maxX, minY, maxY, minZ, maxZ) {
			result = append(result, child.GetObjects(minX, maxX, minY, maxY, minZ, maxZ)...)
		}
	}
	return result
}

func (o *Octree[T]) IsLeaf() bool { return len(o.children) == 0 }

func (o *Octree[T]) Len() int { return len(o.objects) }

func (o *Octree[T]) Center() Vec3 { return o.center }

// Bounds is only meaningful on a root node.
func (o *Octree[T]) Bounds() Box { return o.bounds }

func (o *Octree[T]) Children() []*Octree[T] { return o.children }

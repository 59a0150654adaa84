package graph

// blockSlack is how far a primitive may poke outside the unit block before
// a warning is raised.
const blockSlack = 1e-6

// geometry checks primitive extents and paint values.
func (c *checker) geometry() {
	c.each(func(n *Node) {
		switch d := n.Data.(type) {
		case BoxData:
			c.boxExtents(n.ID, d)
			c.paint(n.ID, d.Paint)
		case CylinderData:
			if d.Slices < 0 {
				c.errorf(n.ID, "cylinder slices %d is negative", d.Slices)
			}
			c.paint(n.ID, d.Paint)
		}
	})
}

// boxExtents requires Min < Max on every axis and warns when the box
// leaves the unit block.
func (c *checker) boxExtents(id NodeID, bd BoxData) {
	min, max := bd.Min.Array(), bd.Max.Array()
	for axis, name := range [3]string{"x", "y", "z"} {
		if max[axis] <= min[axis] {
			c.errorf(id, "box is empty along %s: min %g, max %g", name, min[axis], max[axis])
		}
		if min[axis] < -blockSlack || max[axis] > 1+blockSlack {
			c.warnf(id, "box extends outside the block along %s", name)
		}
	}
}

func (c *checker) paint(id NodeID, p PaintSpec) {
	switch p.Rotation {
	case 0, 90, 180, 270:
	default:
		c.errorf(id, "rotation %d is not one of 0, 90, 180, 270", p.Rotation)
	}
	if p.Color>>24 == 0 {
		c.warnf(id, "color %#08x is fully transparent", p.Color)
	}
}

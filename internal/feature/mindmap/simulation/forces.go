package simulation

import "math"

// applyLinks pulls linked nodes toward their rest distance. The correction
// splits across the endpoints by bias so hubs move less than leaves.
func (s *Simulation) applyLinks() {
	for _, l := range s.links {
		src, tgt := s.nodes[l.source], s.nodes[l.target]

		dx := tgt.x + tgt.vx - src.x - src.vx
		dy := tgt.y + tgt.vy - src.y - src.vy
		if dx == 0 && dy == 0 {
			dx, dy = jiggle, jiggle
		}

		dist := math.Sqrt(dx*dx + dy*dy)
		k := (dist - l.distance) / dist * s.alpha * l.strength
		dx, dy = dx*k, dy*k

		tgt.vx -= dx * l.bias
		tgt.vy -= dy * l.bias
		src.vx += dx * (1 - l.bias)
		src.vy += dy * (1 - l.bias)
	}
}

// applyCharge repels every node pair. Node counts stay small (a portfolio
// tree, not a particle field), so the exact pairwise sum replaces the usual
// Barnes-Hut approximation.
func (s *Simulation) applyCharge() {
	for i, a := range s.nodes {
		for j, b := range s.nodes {
			if i == j {
				continue
			}

			dx := b.x - a.x
			dy := b.y - a.y
			l2 := dx*dx + dy*dy
			if l2 == 0 {
				dx, dy = jiggle, jiggle
				l2 = dx*dx + dy*dy
			}
			// Clamp very close pairs to limit the force spike.
			if l2 < 1 {
				l2 = math.Sqrt(l2)
			}

			w := chargeStrength * s.alpha / l2
			a.vx += dx * w
			a.vy += dy * w
		}
	}
}

// applyCenter shifts all nodes so their centroid sits on the viewport
// center. It moves positions directly, not velocities.
func (s *Simulation) applyCenter() {
	var sx, sy float64
	for _, n := range s.nodes {
		sx += n.x
		sy += n.y
	}
	count := float64(len(s.nodes))
	sx = sx/count - s.cx
	sy = sy/count - s.cy
	for _, n := range s.nodes {
		n.x -= sx
		n.y -= sy
	}
}

// applyCollide separates overlapping circles, each padded by a fixed margin.
// The heavier (larger) node of a pair absorbs less of the correction.
func (s *Simulation) applyCollide() {
	for i := 0; i < len(s.nodes); i++ {
		a := s.nodes[i]
		ri := a.radius + collidePadding
		xi := a.x + a.vx
		yi := a.y + a.vy

		for j := i + 1; j < len(s.nodes); j++ {
			b := s.nodes[j]
			rj := b.radius + collidePadding
			r := ri + rj

			dx := xi - (b.x + b.vx)
			dy := yi - (b.y + b.vy)
			l2 := dx*dx + dy*dy
			if l2 >= r*r {
				continue
			}

			if dx == 0 && dy == 0 {
				dx, dy = jiggle, jiggle
				l2 = dx*dx + dy*dy
			}
			l := math.Sqrt(l2)
			k := (r - l) / l
			dx, dy = dx*k, dy*k

			share := rj * rj / (ri*ri + rj*rj)
			a.vx += dx * share
			a.vy += dy * share
			b.vx -= dx * (1 - share)
			b.vy -= dy * (1 - share)
		}
	}
}

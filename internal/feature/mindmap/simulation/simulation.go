// Package simulation runs the force-directed layout for the mind map: spring
// links between parent and child, many-body repulsion, viewport centering,
// and circle collision, integrated under an annealing alpha schedule. The
// numbers mirror the d3-force defaults so the layout matches what the web
// client produced.
package simulation

import (
	"math"
	"sync"

	"github.com/k1300k/smart-stocks/internal/feature/mindmap/domain"
)

const (
	alphaMin      = 0.001
	velocityDecay = 0.6 // retained velocity fraction per step

	chargeStrength = -300
	collidePadding = 10

	// Links touching the root are longer so categories ring the center.
	linkDistanceRoot  = 150
	linkDistanceChild = 100

	// ReheatTarget is the alpha target applied while a drag is active.
	ReheatTarget = 0.3

	// Phyllotaxis constants for the initial node placement.
	initialRadius = 10

	// Displacements of coincident nodes use this instead of random jitter
	// so runs are reproducible.
	jiggle = 1e-6
)

// alphaDecay anneals alpha to alphaMin over ~300 steps.
var alphaDecay = 1 - math.Pow(alphaMin, 1.0/300)

var initialAngle = math.Pi * (3 - math.Sqrt(5))

// Options configures a Simulation.
type Options struct {
	Width  float64
	Height float64
	// ReleaseOnDragEnd unpins a node when its drag finishes. Off by
	// default: a dragged node stays where the user left it.
	ReleaseOnDragEnd bool
}

// Position is one node's layout coordinate.
type Position struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

type simNode struct {
	id     string
	radius float64
	x, y   float64
	vx, vy float64
	fx, fy *float64
}

type simLink struct {
	source, target int
	distance       float64
	strength       float64
	bias           float64
}

// Simulation is a force-directed layout over a flattened mind-map tree. The
// root node is permanently pinned at the viewport center. All methods are
// safe for concurrent use.
type Simulation struct {
	mu      sync.Mutex
	nodes   []*simNode
	index   map[string]int
	links   []simLink
	cx, cy  float64
	opts    Options
	alpha   float64
	target  float64
	stopped bool
}

// New builds a Simulation from an annotated mind-map tree. Nodes start on a
// phyllotaxis spiral around the viewport center, which keeps layouts
// deterministic for a given tree.
func New(tree *domain.Node, opts Options) *Simulation {
	if opts.Width <= 0 {
		opts.Width = 1200
	}
	if opts.Height <= 0 {
		opts.Height = 800
	}

	s := &Simulation{
		index: make(map[string]int),
		cx:    opts.Width / 2,
		cy:    opts.Height / 2,
		opts:  opts,
		alpha: 1,
	}

	tree.Walk(func(node, parent *domain.Node) {
		i := len(s.nodes)
		s.index[node.ID] = i

		r := initialRadius * math.Sqrt(0.5+float64(i))
		a := float64(i) * initialAngle
		s.nodes = append(s.nodes, &simNode{
			id:     node.ID,
			radius: node.Radius,
			x:      s.cx + r*math.Cos(a),
			y:      s.cy + r*math.Sin(a),
		})

		if parent != nil {
			dist := float64(linkDistanceChild)
			if parent.ID == "root" || node.ID == "root" {
				dist = linkDistanceRoot
			}
			s.links = append(s.links, simLink{
				source:   s.index[parent.ID],
				target:   i,
				distance: dist,
			})
		}
	})

	// Link strength scales inversely with the denser endpoint's degree,
	// and the lighter endpoint absorbs more of the correction.
	degree := make([]int, len(s.nodes))
	for _, l := range s.links {
		degree[l.source]++
		degree[l.target]++
	}
	for i := range s.links {
		l := &s.links[i]
		ds, dt := float64(degree[l.source]), float64(degree[l.target])
		l.strength = 1 / math.Min(ds, dt)
		l.bias = ds / (ds + dt)
	}

	if i, ok := s.index["root"]; ok {
		s.nodes[i].fx = &s.cx
		s.nodes[i].fy = &s.cy
	}
	return s
}

// Step advances the simulation by one tick. It is a no-op once the
// simulation is stopped or has settled with no heat target.
func (s *Simulation) Step() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped || (s.alpha < alphaMin && s.target == 0) {
		return
	}

	s.alpha += (s.target - s.alpha) * alphaDecay

	s.applyLinks()
	s.applyCharge()
	s.applyCenter()
	s.applyCollide()

	for _, n := range s.nodes {
		if n.fx != nil {
			n.x, n.vx = *n.fx, 0
		} else {
			n.vx *= velocityDecay
			n.x += n.vx
		}
		if n.fy != nil {
			n.y, n.vy = *n.fy, 0
		} else {
			n.vy *= velocityDecay
			n.y += n.vy
		}
	}
}

// Settle runs the simulation until it cools below alphaMin, capped at
// maxSteps. It returns the number of steps taken.
func (s *Simulation) Settle(maxSteps int) int {
	for i := 0; i < maxSteps; i++ {
		if s.Settled() {
			return i
		}
		s.Step()
	}
	return maxSteps
}

// Positions snapshots the current layout in node insertion order.
func (s *Simulation) Positions() []Position {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Position, len(s.nodes))
	for i, n := range s.nodes {
		out[i] = Position{ID: n.id, X: n.x, Y: n.y}
	}
	return out
}

// Settled reports whether the simulation has cooled below alphaMin with no
// remaining heat target.
func (s *Simulation) Settled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped || (s.alpha < alphaMin && s.target == 0)
}

// Reheat raises the alpha target so the layout starts moving again.
func (s *Simulation) Reheat(target float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.target = target
}

// Cool drops the alpha target back to zero; the layout decays to rest.
func (s *Simulation) Cool() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.target = 0
}

// Pin fixes a node at the given position until Unpin.
func (s *Simulation) Pin(id string, x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.index[id]; ok {
		s.nodes[i].fx, s.nodes[i].fy = &x, &y
	}
}

// Unpin releases a pinned node. The root stays pinned regardless.
func (s *Simulation) Unpin(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "root" {
		return
	}
	if i, ok := s.index[id]; ok {
		s.nodes[i].fx, s.nodes[i].fy = nil, nil
	}
}

// DragStart pins the node at its current position and reheats the layout.
// Unknown ids are ignored; the layout stays cool.
func (s *Simulation) DragStart(id string) {
	s.mu.Lock()
	if i, ok := s.index[id]; ok {
		n := s.nodes[i]
		x, y := n.x, n.y
		n.fx, n.fy = &x, &y
		s.target = ReheatTarget
	}
	s.mu.Unlock()
}

// Drag moves the pinned node to follow the pointer.
func (s *Simulation) Drag(id string, x, y float64) {
	s.Pin(id, x, y)
}

// DragEnd lets the layout cool. The dragged node stays pinned where it was
// dropped unless ReleaseOnDragEnd is set.
func (s *Simulation) DragEnd(id string) {
	s.mu.Lock()
	s.target = 0
	if s.opts.ReleaseOnDragEnd && id != "root" {
		if i, ok := s.index[id]; ok {
			s.nodes[i].fx, s.nodes[i].fy = nil, nil
		}
	}
	s.mu.Unlock()
}

// Stop permanently halts the simulation.
func (s *Simulation) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
}

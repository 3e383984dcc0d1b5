// Package domain builds the mind-map tree from a portfolio and computes the
// visual attributes (radius, color) of each node.
package domain

// ViewMode selects the grouping axis for the mind map.
type ViewMode string

const (
	// ViewSector groups holdings by sector.
	ViewSector ViewMode = "sector"
	// ViewProfitLoss groups holdings into return-rate buckets.
	ViewProfitLoss ViewMode = "profitLoss"
	// ViewTheme groups holdings by tag; a holding appears under every tag
	// it carries.
	ViewTheme ViewMode = "theme"
)

// ParseViewMode maps a query value to a ViewMode, defaulting to sector.
func ParseViewMode(s string) ViewMode {
	switch ViewMode(s) {
	case ViewProfitLoss:
		return ViewProfitLoss
	case ViewTheme:
		return ViewTheme
	default:
		return ViewSector
	}
}

// NodeType classifies a mind-map node.
type NodeType string

const (
	NodeRoot     NodeType = "root"
	NodeCategory NodeType = "category"
	NodeStock    NodeType = "stock"
)

// Node is one vertex of the mind-map tree. Value and ProfitLoss are in KRW.
// Radius and Color are filled by Annotate.
type Node struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Value          float64  `json:"value"`
	ProfitLoss     float64  `json:"profitLoss"`
	ProfitLossRate float64  `json:"profitLossRate"`
	Type           NodeType `json:"type"`
	Symbol         string   `json:"symbol,omitempty"`
	Sector         string   `json:"sector,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	Radius         float64  `json:"radius"`
	Color          string   `json:"color"`
	Children       []*Node  `json:"children,omitempty"`
}

// Walk visits the node and all descendants depth-first.
func (n *Node) Walk(fn func(node *Node, parent *Node)) {
	var walk func(node, parent *Node)
	walk = func(node, parent *Node) {
		fn(node, parent)
		for _, child := range node.Children {
			walk(child, node)
		}
	}
	walk(n, nil)
}

// Find returns the descendant (or the node itself) with the given id.
func (n *Node) Find(id string) *Node {
	var found *Node
	n.Walk(func(node, _ *Node) {
		if found == nil && node.ID == id {
			found = node
		}
	})
	return found
}

// Annotate fills Radius and Color on the whole tree. The root's value is the
// denominator for sizing.
func (n *Node) Annotate() {
	total := n.Value
	n.Walk(func(node, _ *Node) {
		node.Radius = Radius(node.Value, total)
		node.Color = ColorByProfitLossRate(node.ProfitLossRate)
	})
}

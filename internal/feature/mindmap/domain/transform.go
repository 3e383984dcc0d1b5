package domain

import (
	"math"

	"github.com/k1300k/smart-stocks/internal/feature/portfolio/domain/entity"
)

// DefaultGroup collects holdings without a sector or tag.
const DefaultGroup = "기타"

// profitBucket is one half-open return-rate interval [Min, Max).
type profitBucket struct {
	Name string
	Min  float64
	Max  float64
}

// profitBuckets are ordered best to worst; empty buckets are omitted from
// the tree.
var profitBuckets = []profitBucket{
	{Name: "+20% 이상", Min: 20, Max: math.Inf(1)},
	{Name: "+10% ~ +20%", Min: 10, Max: 20},
	{Name: "0% ~ +10%", Min: 0, Max: 10},
	{Name: "-10% ~ 0%", Min: -10, Max: 0},
	{Name: "-10% 미만", Min: math.Inf(-1), Max: -10},
}

// BuildTree turns a portfolio into the two-level mind-map tree for the given
// view mode: root → category nodes → stock leaves. Sector and profit-loss
// views partition the holdings; the theme view fans a holding out under
// every tag it carries. Node ids are stable across rebuilds ("root",
// "sector-<name>", "category-<bucket>", "theme-<tag>", "stock-<symbol>").
func BuildTree(p *entity.Portfolio, view ViewMode) *Node {
	root := &Node{
		ID:             "root",
		Name:           entity.DefaultPortfolioName,
		Value:          p.TotalValue,
		ProfitLoss:     p.TotalProfitLoss,
		ProfitLossRate: entity.RateFromAggregate(p.TotalValue, p.TotalProfitLoss),
		Type:           NodeRoot,
	}

	switch view {
	case ViewProfitLoss:
		root.Children = profitLossGroups(p.Holdings)
	case ViewTheme:
		root.Children = themeGroups(p.Holdings)
	default:
		root.Children = sectorGroups(p.Holdings)
	}
	return root
}

// sectorGroups partitions holdings by sector, in first-seen order.
func sectorGroups(holdings []entity.Holding) []*Node {
	var order []string
	groups := make(map[string][]entity.Holding)
	for _, h := range holdings {
		sector := h.Sector
		if sector == "" {
			sector = DefaultGroup
		}
		if _, ok := groups[sector]; !ok {
			order = append(order, sector)
		}
		groups[sector] = append(groups[sector], h)
	}

	nodes := make([]*Node, 0, len(order))
	for _, sector := range order {
		node := groupNode("sector-"+sector, sector, groups[sector])
		node.Sector = sector
		nodes = append(nodes, node)
	}
	return nodes
}

// profitLossGroups buckets holdings by per-holding return rate. Buckets keep
// their fixed best-to-worst order and are dropped when empty.
func profitLossGroups(holdings []entity.Holding) []*Node {
	var nodes []*Node
	for _, bucket := range profitBuckets {
		var members []entity.Holding
		for _, h := range holdings {
			rate := entity.Valuate(h).ProfitLossRate
			if rate >= bucket.Min && rate < bucket.Max {
				members = append(members, h)
			}
		}
		if len(members) == 0 {
			continue
		}
		nodes = append(nodes, groupNode("category-"+bucket.Name, bucket.Name, members))
	}
	return nodes
}

// themeGroups fans holdings out under each of their tags; untagged holdings
// fall into the default group. Tag order is first-seen across holdings.
func themeGroups(holdings []entity.Holding) []*Node {
	var order []string
	groups := make(map[string][]entity.Holding)
	add := func(tag string, h entity.Holding) {
		if _, ok := groups[tag]; !ok {
			order = append(order, tag)
		}
		groups[tag] = append(groups[tag], h)
	}

	for _, h := range holdings {
		if len(h.Tags) == 0 {
			add(DefaultGroup, h)
			continue
		}
		for _, tag := range h.Tags {
			add(tag, h)
		}
	}

	nodes := make([]*Node, 0, len(order))
	for _, tag := range order {
		node := groupNode("theme-"+tag, tag, groups[tag])
		node.Tags = []string{tag}
		nodes = append(nodes, node)
	}
	return nodes
}

// groupNode builds a category node plus its stock leaves. The group's rate
// comes from the reconstructed cost basis, not from averaging member rates.
func groupNode(id, name string, members []entity.Holding) *Node {
	agg := entity.AggregateHoldings(members)
	node := &Node{
		ID:             id,
		Name:           name,
		Value:          agg.ValueKrw,
		ProfitLoss:     agg.ProfitLossKrw,
		ProfitLossRate: agg.ProfitLossRate,
		Type:           NodeCategory,
		Children:       make([]*Node, 0, len(members)),
	}
	for _, h := range members {
		node.Children = append(node.Children, stockNode(h))
	}
	return node
}

func stockNode(h entity.Holding) *Node {
	v := entity.Valuate(h)
	return &Node{
		ID:             "stock-" + h.Symbol,
		Name:           h.Name,
		Value:          v.ValueKrw,
		ProfitLoss:     v.ProfitLossKrw,
		ProfitLossRate: v.ProfitLossRate,
		Type:           NodeStock,
		Symbol:         h.Symbol,
		Sector:         h.Sector,
		Tags:           h.Tags,
	}
}

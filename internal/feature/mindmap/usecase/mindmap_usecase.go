// Package usecase assembles the annotated mind-map tree and its settled
// layout for a user's portfolio.
package usecase

import (
	"context"

	"github.com/k1300k/smart-stocks/internal/feature/mindmap/domain"
	"github.com/k1300k/smart-stocks/internal/feature/mindmap/simulation"
	"github.com/k1300k/smart-stocks/internal/feature/portfolio/domain/entity"
)

// Snapshot layouts stop after this many steps even if not fully settled.
const maxSettleSteps = 500

// PortfolioProvider is the slice of the portfolio feature this usecase needs.
type PortfolioProvider interface {
	Get(ctx context.Context, userID uint) (*entity.Portfolio, error)
}

// MindmapUsecase builds mind-map trees and layouts.
type MindmapUsecase interface {
	BuildTree(ctx context.Context, userID uint, view domain.ViewMode) (*domain.Node, error)
	BuildLayout(ctx context.Context, userID uint, view domain.ViewMode, width, height float64) (*domain.Node, []simulation.Position, error)
	NewSimulation(ctx context.Context, userID uint, view domain.ViewMode, opts simulation.Options) (*domain.Node, *simulation.Simulation, error)
}

type mindmapUsecase struct {
	portfolios PortfolioProvider
}

// NewMindmapUsecase creates a MindmapUsecase.
func NewMindmapUsecase(portfolios PortfolioProvider) MindmapUsecase {
	return &mindmapUsecase{portfolios: portfolios}
}

var _ MindmapUsecase = (*mindmapUsecase)(nil)

// BuildTree returns the annotated tree (radius and color filled) for the
// requested view.
func (u *mindmapUsecase) BuildTree(ctx context.Context, userID uint, view domain.ViewMode) (*domain.Node, error) {
	p, err := u.portfolios.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	tree := domain.BuildTree(p, view)
	tree.Annotate()
	return tree, nil
}

// BuildLayout returns the annotated tree together with a settled layout for
// the given viewport.
func (u *mindmapUsecase) BuildLayout(ctx context.Context, userID uint, view domain.ViewMode, width, height float64) (*domain.Node, []simulation.Position, error) {
	tree, sim, err := u.NewSimulation(ctx, userID, view, simulation.Options{Width: width, Height: height})
	if err != nil {
		return nil, nil, err
	}
	sim.Settle(maxSettleSteps)
	return tree, sim.Positions(), nil
}

// NewSimulation builds the tree and a live simulation over it, for callers
// that drive the tick loop themselves.
func (u *mindmapUsecase) NewSimulation(ctx context.Context, userID uint, view domain.ViewMode, opts simulation.Options) (*domain.Node, *simulation.Simulation, error) {
	tree, err := u.BuildTree(ctx, userID, view)
	if err != nil {
		return nil, nil, err
	}
	return tree, simulation.New(tree, opts), nil
}

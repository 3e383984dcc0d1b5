package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/k1300k/smart-stocks/internal/feature/portfolio/domain/entity"
)

// mockPortfolioRepository simulates the persistence layer.
type mockPortfolioRepository struct {
	FindByUserIDFunc func(ctx context.Context, userID uint) (*entity.Portfolio, error)
	SaveFunc         func(ctx context.Context, p *entity.Portfolio) error
	saved            *entity.Portfolio
}

func (m *mockPortfolioRepository) FindByUserID(ctx context.Context, userID uint) (*entity.Portfolio, error) {
	if m.FindByUserIDFunc != nil {
		return m.FindByUserIDFunc(ctx, userID)
	}
	return nil, ErrPortfolioNotFound
}

func (m *mockPortfolioRepository) Save(ctx context.Context, p *entity.Portfolio) error {
	m.saved = p
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, p)
	}
	return nil
}

// fixedRate is a RateProvider pinned to one value.
type fixedRate float64

func (r fixedRate) Rate() float64 { return float64(r) }

// mockPriceProvider simulates the stock quote service.
type mockPriceProvider struct {
	GetPriceFunc func(ctx context.Context, symbol string) (*Quote, error)
}

func (m *mockPriceProvider) GetPrice(ctx context.Context, symbol string) (*Quote, error) {
	if m.GetPriceFunc != nil {
		return m.GetPriceFunc(ctx, symbol)
	}
	return nil, errors.New("no quote")
}

func repoWith(p *entity.Portfolio) *mockPortfolioRepository {
	return &mockPortfolioRepository{
		FindByUserIDFunc: func(ctx context.Context, userID uint) (*entity.Portfolio, error) {
			if p == nil {
				return nil, ErrPortfolioNotFound
			}
			return p, nil
		},
	}
}

func TestGetCreatesPortfolioOnFirstAccess(t *testing.T) {
	repo := repoWith(nil)
	uc := NewPortfolioUsecase(repo, fixedRate(1300), &mockPriceProvider{})

	p, err := uc.Get(context.Background(), 42)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.UserID != 42 {
		t.Errorf("UserID = %d, want 42", p.UserID)
	}
	if p.Name != entity.DefaultPortfolioName {
		t.Errorf("Name = %s, want %s", p.Name, entity.DefaultPortfolioName)
	}
	if repo.saved == nil {
		t.Error("new portfolio should be persisted")
	}
}

func TestAddHoldingFillsMissingCurrency(t *testing.T) {
	p := entity.NewPortfolio(1)
	repo := repoWith(p)
	uc := NewPortfolioUsecase(repo, fixedRate(1300), &mockPriceProvider{})

	got, err := uc.AddHolding(context.Background(), 1, entity.Holding{
		Symbol: "AAPL", Name: "Apple Inc.", Quantity: 2,
		AvgPriceUsd: 180, CurrentPriceUsd: 190,
	})
	if err != nil {
		t.Fatalf("AddHolding: %v", err)
	}

	h := got.Holdings[0]
	if h.AvgPriceKrw != 234000 || h.CurrentPriceKrw != 247000 {
		t.Errorf("KRW side should derive at 1300: %+v", h)
	}
}

func TestAddHoldingDuplicate(t *testing.T) {
	p := entity.NewPortfolio(1)
	h := entity.Holding{Symbol: "005930", Name: "삼성전자", Quantity: 1, AvgPriceKrw: 1, CurrentPriceKrw: 1}
	if err := p.AddHolding(h); err != nil {
		t.Fatalf("seed: %v", err)
	}

	uc := NewPortfolioUsecase(repoWith(p), fixedRate(1300), &mockPriceProvider{})
	if _, err := uc.AddHolding(context.Background(), 1, h); !errors.Is(err, entity.ErrDuplicateSymbol) {
		t.Errorf("expected ErrDuplicateSymbol, got %v", err)
	}
}

func TestRefreshPrices(t *testing.T) {
	seed := func() *entity.Portfolio {
		p := entity.NewPortfolio(1)
		p.AddHolding(entity.Holding{Symbol: "005930", Name: "삼성전자", Quantity: 10, AvgPriceKrw: 65000, CurrentPriceKrw: 65000})
		p.AddHolding(entity.Holding{Symbol: "AAPL", Name: "Apple Inc.", Quantity: 2, AvgPriceUsd: 180, AvgPriceKrw: 234000, CurrentPriceUsd: 180, CurrentPriceKrw: 234000})
		return p
	}

	t.Run("updates both currencies from quotes", func(t *testing.T) {
		prices := &mockPriceProvider{
			GetPriceFunc: func(ctx context.Context, symbol string) (*Quote, error) {
				switch symbol {
				case "005930":
					return &Quote{Price: 70000, Currency: "KRW", ChangeRate: 1.5}, nil
				case "AAPL":
					return &Quote{Price: 190, Currency: "USD", ChangeRate: -0.5}, nil
				}
				return nil, errors.New("unknown")
			},
		}
		uc := NewPortfolioUsecase(repoWith(seed()), fixedRate(1300), prices)

		p, updated, err := uc.RefreshPrices(context.Background(), 1)
		if err != nil {
			t.Fatalf("RefreshPrices: %v", err)
		}
		if updated != 2 {
			t.Errorf("updated = %d, want 2", updated)
		}

		samsung, _ := p.FindHolding("005930")
		if samsung.CurrentPriceKrw != 70000 {
			t.Errorf("samsung CurrentPriceKrw = %v, want 70000", samsung.CurrentPriceKrw)
		}
		if samsung.DayChangeRate == nil || *samsung.DayChangeRate != 1.5 {
			t.Errorf("samsung DayChangeRate = %v, want 1.5", samsung.DayChangeRate)
		}

		apple, _ := p.FindHolding("AAPL")
		if apple.CurrentPriceUsd != 190 || apple.CurrentPriceKrw != 247000 {
			t.Errorf("apple prices = %v KRW / %v USD, want 247000 / 190", apple.CurrentPriceKrw, apple.CurrentPriceUsd)
		}

		if p.TotalValue != 10*70000+2*247000 {
			t.Errorf("TotalValue = %v, want recomputed %v", p.TotalValue, 10*70000+2*247000.0)
		}
	})

	t.Run("provider failure keeps last known price", func(t *testing.T) {
		prices := &mockPriceProvider{
			GetPriceFunc: func(ctx context.Context, symbol string) (*Quote, error) {
				if symbol == "005930" {
					return &Quote{Price: 70000, Currency: "KRW"}, nil
				}
				return nil, errors.New("quota exceeded")
			},
		}
		uc := NewPortfolioUsecase(repoWith(seed()), fixedRate(1300), prices)

		p, updated, err := uc.RefreshPrices(context.Background(), 1)
		if err != nil {
			t.Fatalf("RefreshPrices: %v", err)
		}
		if updated != 1 {
			t.Errorf("updated = %d, want 1", updated)
		}

		apple, _ := p.FindHolding("AAPL")
		if apple.CurrentPriceUsd != 180 {
			t.Errorf("failed quote should keep last price, got %v", apple.CurrentPriceUsd)
		}
	})
}

func TestImportModes(t *testing.T) {
	csvContent := "종목코드,종목명,보유수량,평균매수가(원),평균매수가(달러),현재가(원),현재가(달러),섹터,태그\n" +
		"035420,NAVER,5,200000,153.85,220000,169.23,IT,\n" +
		"005930,삼성전자,99,60000,46.15,70000,53.85,IT,\n"

	seed := func() *entity.Portfolio {
		p := entity.NewPortfolio(1)
		p.AddHolding(entity.Holding{Symbol: "005930", Name: "삼성전자", Quantity: 10, AvgPriceKrw: 65000, CurrentPriceKrw: 70000})
		return p
	}

	t.Run("replace discards existing holdings", func(t *testing.T) {
		uc := NewPortfolioUsecase(repoWith(seed()), fixedRate(1300), &mockPriceProvider{})

		count, err := uc.ImportCSV(context.Background(), 1, csvContent, ImportReplace)
		if err != nil {
			t.Fatalf("ImportCSV: %v", err)
		}
		if count != 2 {
			t.Errorf("count = %d, want 2", count)
		}

		p, _ := uc.Get(context.Background(), 1)
		h, err := p.FindHolding("005930")
		if err != nil || h.Quantity != 99 {
			t.Errorf("replace should take the imported row, got %+v (%v)", h, err)
		}
	})

	t.Run("merge keeps existing rows on symbol conflict", func(t *testing.T) {
		uc := NewPortfolioUsecase(repoWith(seed()), fixedRate(1300), &mockPriceProvider{})

		count, err := uc.ImportCSV(context.Background(), 1, csvContent, ImportMerge)
		if err != nil {
			t.Fatalf("ImportCSV: %v", err)
		}
		if count != 2 {
			t.Errorf("count = %d, want 2 (existing + one new)", count)
		}

		p, _ := uc.Get(context.Background(), 1)
		if h, _ := p.FindHolding("005930"); h.Quantity != 10 {
			t.Errorf("merge should keep the existing row, got quantity %v", h.Quantity)
		}
		if _, err := p.FindHolding("035420"); err != nil {
			t.Error("merge should add the new symbol")
		}
	})
}

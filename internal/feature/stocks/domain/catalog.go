package domain

import "strings"

// Listing is one entry of the builtin stock catalog. The catalog serves as a
// fallback when no market data provider is configured or reachable: search
// runs against it locally, and BasePrice is a stable reference price so
// offline quotes stay reproducible across refreshes.
type Listing struct {
	Symbol    string
	Name      string
	NameKo    string
	Market    string
	Sector    string
	BasePrice float64
}

// Currency returns the quote currency for the listing's market.
func (l Listing) Currency() string {
	if l.Market == "KRX" {
		return "KRW"
	}
	return "USD"
}

// KoreanListings covers the major KRX names.
var KoreanListings = []Listing{
	{Symbol: "005930", Name: "삼성전자", Market: "KRX", Sector: "IT", BasePrice: 70000},
	{Symbol: "000660", Name: "SK하이닉스", Market: "KRX", Sector: "IT", BasePrice: 135000},
	{Symbol: "035420", Name: "NAVER", Market: "KRX", Sector: "IT", BasePrice: 220000},
	{Symbol: "005380", Name: "현대차", Market: "KRX", Sector: "자동차", BasePrice: 170000},
	{Symbol: "051910", Name: "LG화학", Market: "KRX", Sector: "화학", BasePrice: 480000},
	{Symbol: "006400", Name: "삼성SDI", Market: "KRX", Sector: "화학", BasePrice: 550000},
	{Symbol: "035720", Name: "카카오", Market: "KRX", Sector: "IT", BasePrice: 50000},
	{Symbol: "028260", Name: "삼성물산", Market: "KRX", Sector: "기타", BasePrice: 150000},
	{Symbol: "105560", Name: "KB금융", Market: "KRX", Sector: "금융", BasePrice: 60000},
	{Symbol: "055550", Name: "신한지주", Market: "KRX", Sector: "금융", BasePrice: 40000},
	{Symbol: "032830", Name: "삼성생명", Market: "KRX", Sector: "금융", BasePrice: 80000},
	{Symbol: "003670", Name: "포스코홀딩스", Market: "KRX", Sector: "산업재", BasePrice: 400000},
	{Symbol: "034730", Name: "SK", Market: "KRX", Sector: "에너지", BasePrice: 200000},
	{Symbol: "096770", Name: "SK이노베이션", Market: "KRX", Sector: "에너지", BasePrice: 120000},
	{Symbol: "207940", Name: "삼성바이오로직스", Market: "KRX", Sector: "바이오", BasePrice: 800000},
	{Symbol: "068270", Name: "셀트리온", Market: "KRX", Sector: "바이오", BasePrice: 200000},
	{Symbol: "028300", Name: "HLB", Market: "KRX", Sector: "바이오", BasePrice: 50000},
	{Symbol: "017670", Name: "SK텔레콤", Market: "KRX", Sector: "IT", BasePrice: 50000},
	{Symbol: "030200", Name: "KT", Market: "KRX", Sector: "IT", BasePrice: 30000},
	{Symbol: "018260", Name: "삼성에스디에스", Market: "KRX", Sector: "IT", BasePrice: 150000},
}

// ForeignListings covers the major US names, with Korean aliases so Korean
// queries match them too.
var ForeignListings = []Listing{
	{Symbol: "AAPL", Name: "Apple Inc.", NameKo: "애플", Market: "NASDAQ", Sector: "IT", BasePrice: 180},
	{Symbol: "MSFT", Name: "Microsoft Corporation", NameKo: "마이크로소프트", Market: "NASDAQ", Sector: "IT", BasePrice: 380},
	{Symbol: "GOOGL", Name: "Alphabet Inc.", NameKo: "구글", Market: "NASDAQ", Sector: "IT", BasePrice: 140},
	{Symbol: "AMZN", Name: "Amazon.com Inc.", NameKo: "아마존", Market: "NASDAQ", Sector: "소비재", BasePrice: 150},
	{Symbol: "TSLA", Name: "Tesla, Inc.", NameKo: "테슬라", Market: "NASDAQ", Sector: "자동차", BasePrice: 250},
	{Symbol: "META", Name: "Meta Platforms Inc.", NameKo: "메타", Market: "NASDAQ", Sector: "IT", BasePrice: 350},
	{Symbol: "NVDA", Name: "NVIDIA Corporation", NameKo: "엔비디아", Market: "NASDAQ", Sector: "IT", BasePrice: 500},
	{Symbol: "JPM", Name: "JPMorgan Chase & Co.", NameKo: "JP모건", Market: "NYSE", Sector: "금융", BasePrice: 150},
	{Symbol: "V", Name: "Visa Inc.", NameKo: "비자", Market: "NYSE", Sector: "금융", BasePrice: 250},
	{Symbol: "JNJ", Name: "Johnson & Johnson", NameKo: "존슨앤존슨", Market: "NYSE", Sector: "바이오", BasePrice: 160},
	{Symbol: "WMT", Name: "Walmart Inc.", NameKo: "월마트", Market: "NYSE", Sector: "유통", BasePrice: 160},
	{Symbol: "PG", Name: "Procter & Gamble Co.", NameKo: "P&G", Market: "NYSE", Sector: "소비재", BasePrice: 150},
	{Symbol: "MA", Name: "Mastercard Inc.", NameKo: "마스터카드", Market: "NYSE", Sector: "금융", BasePrice: 400},
	{Symbol: "UNH", Name: "UnitedHealth Group Inc.", NameKo: "유나이티드헬스", Market: "NYSE", Sector: "의료", BasePrice: 500},
	{Symbol: "HD", Name: "The Home Depot, Inc.", NameKo: "홈디포", Market: "NYSE", Sector: "소비재", BasePrice: 350},
	{Symbol: "DIS", Name: "The Walt Disney Company", NameKo: "월트디즈니", Market: "NYSE", Sector: "엔터테인먼트", BasePrice: 100},
	{Symbol: "BAC", Name: "Bank of America Corp.", NameKo: "뱅크오브아메리카", Market: "NYSE", Sector: "금융", BasePrice: 35},
	{Symbol: "XOM", Name: "Exxon Mobil Corporation", NameKo: "엑슨모빌", Market: "NYSE", Sector: "에너지", BasePrice: 110},
	{Symbol: "CVX", Name: "Chevron Corporation", NameKo: "셰브론", Market: "NYSE", Sector: "에너지", BasePrice: 150},
	{Symbol: "NFLX", Name: "Netflix, Inc.", NameKo: "넷플릭스", Market: "NASDAQ", Sector: "엔터테인먼트", BasePrice: 450},
}

// FindListing looks a symbol up in both catalogs.
func FindListing(symbol string) (Listing, bool) {
	for _, l := range KoreanListings {
		if l.Symbol == symbol {
			return l, true
		}
	}
	for _, l := range ForeignListings {
		if l.Symbol == symbol {
			return l, true
		}
	}
	return Listing{}, false
}

// SearchCatalog filters the builtin catalogs by query. The match is
// case-insensitive on symbol and English name, exact-substring on the Korean
// alias. market narrows the scope ("KRX", "NYSE", "NASDAQ"); empty searches
// everything.
func SearchCatalog(query, market string) []SearchResult {
	var pool []Listing
	if market == "" || market == "KRX" {
		pool = append(pool, KoreanListings...)
	}
	if market == "" || market == "NYSE" || market == "NASDAQ" {
		pool = append(pool, ForeignListings...)
	}

	queryLower := strings.ToLower(query)
	var results []SearchResult
	for _, l := range pool {
		if strings.Contains(strings.ToLower(l.Name), queryLower) ||
			strings.Contains(strings.ToLower(l.Symbol), queryLower) ||
			(l.NameKo != "" && strings.Contains(l.NameKo, query)) {
			results = append(results, SearchResult{
				Symbol: l.Symbol,
				Name:   l.Name,
				NameKo: l.NameKo,
				Market: l.Market,
				Sector: l.Sector,
			})
		}
	}
	return results
}

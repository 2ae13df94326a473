package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockboard/domain/dataset"
)

func listingFrame() *dataset.Frame {
	return &dataset.Frame{
		Headers: []string{"Symbol", "Listing Exchange", "Market Category", "ETF", "Round Lot Size", "Financial Status", "Test Issue"},
		Records: [][]string{
			{"AAPL", "Q", "Q", "N", "100", "N", "N"},
			{"SPY", "P", "", "Y", "100", "", "N"},
			{"BRK.A", "N", "", "N", "1", "", "N"},
			{"ZZT", "Q", "G", "N", "5000", "D", "Y"},
		},
	}
}

func TestMetaKPIs(t *testing.T) {
	k, err := MetaKPIs(listingFrame())
	require.NoError(t, err)

	assert.Equal(t, 4.0, k.UniqueStocks)
	assert.Equal(t, []string{"Q", "P", "N"}, k.ExchangeDistribution.Keys())
	assert.Equal(t, 1.0, k.ETFCount)
	assert.Equal(t, &dataset.ETFSplit{ETF: 25, NonETF: 75}, k.ETFSplit)
}

func TestMetaKPIsPartial(t *testing.T) {
	k, err := MetaKPIs(&dataset.Frame{Headers: []string{"Symbol"}, Records: [][]string{{"A"}, {"A"}}})
	require.NoError(t, err)
	assert.Equal(t, 1.0, k.UniqueStocks)
	assert.Nil(t, k.ETFCount)
	assert.Nil(t, k.ETFSplit)

	_, err = MetaKPIs(&dataset.Frame{Headers: []string{"Close"}})
	assert.Error(t, err)
}

func TestMetaCharts(t *testing.T) {
	c, err := MetaCharts(listingFrame())
	require.NoError(t, err)

	require.Len(t, c.ExchangeBar, 3)
	assert.Equal(t, "Q", c.ExchangeBar[0].Text("Listing Exchange"))
	n, _ := c.ExchangeBar[0].Float("Count")
	assert.Equal(t, 2.0, n)
	assert.Len(t, c.MarketCategoryPie, 2)
	assert.Len(t, c.Scatter, 4)
}

func TestMetaAdvanced(t *testing.T) {
	adv, err := MetaAdvanced(listingFrame())
	require.NoError(t, err)

	assert.Equal(t, []string{"ETF Percentage", "Non-ETF Percentage"}, adv.ETFPercentages.Keys())
	require.NotEmpty(t, adv.TopRoundLot)
	assert.Equal(t, "ZZT", adv.TopRoundLot[0].Text("Symbol"))
	assert.Equal(t, []string{"Count", "Financial Status"}, adv.FinancialStatus[0].Keys())
	require.Len(t, adv.TestIssue, 2)
	assert.Equal(t, "N", adv.TestIssue[0].Text("Test Issue"))

	ranges := map[string]float64{}
	for _, r := range adv.RoundLotDistribution {
		ranges[r.Text(ColRoundLotRange)], _ = r.Float(ColCount)
	}
	assert.Equal(t, map[string]float64{"1-99": 1, "100": 2, "1001+": 1}, ranges)
	assert.Nil(t, adv.MarketCapStats)
	assert.Nil(t, adv.SectorDistribution)
}

func TestValueCountsOrder(t *testing.T) {
	counts := ValueCounts([]string{"b", "a", "a", "c", "b", ""})
	assert.Equal(t, []Count{{"b", 2}, {"a", 2}, {"c", 1}}, counts)
}

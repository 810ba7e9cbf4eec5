package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestClassifyStock(t *testing.T) {
	cases := []struct {
		name     string
		stock    int
		minStock *int
		want     StockStatus
	}{
		{"zero stock without minimum", 0, nil, StockOutOfStock},
		{"zero stock with minimum", 0, intPtr(5), StockOutOfStock},
		{"zero stock with zero minimum", 0, intPtr(0), StockOutOfStock},
		{"at minimum", 5, intPtr(5), StockCritical},
		{"below minimum", 3, intPtr(5), StockCritical},
		{"within twice minimum", 9, intPtr(5), StockWarning},
		{"at twice minimum", 10, intPtr(5), StockWarning},
		{"above twice minimum", 11, intPtr(5), StockLow},
		{"no minimum", 1, nil, StockLow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyStock(tc.stock, tc.minStock))
		})
	}
}

func TestClassifyStockIsTotal(t *testing.T) {
	valid := map[StockStatus]bool{StockOutOfStock: true, StockCritical: true, StockWarning: true, StockLow: true}
	for stock := 0; stock <= 40; stock++ {
		assert.True(t, valid[ClassifyStock(stock, nil)])
		for min := 0; min <= 15; min++ {
			got := ClassifyStock(stock, intPtr(min))
			assert.True(t, valid[got], "stock=%d min=%d", stock, min)
			if stock == 0 {
				assert.Equal(t, StockOutOfStock, got)
			}
		}
	}
}

func TestNeedsAttention(t *testing.T) {
	assert.True(t, StockOutOfStock.NeedsAttention())
	assert.True(t, StockWarning.NeedsAttention())
	assert.False(t, StockLow.NeedsAttention())
}

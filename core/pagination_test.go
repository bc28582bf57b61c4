package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination_clamps(t *testing.T) {
	tests := []struct {
		name          string
		page, perPage int
		wantPage      int
		wantPerPage   int
	}{
		{name: "defaults", page: 0, perPage: 0, wantPage: 1, wantPerPage: DefaultPerPage},
		{name: "negative", page: -3, perPage: -10, wantPage: 1, wantPerPage: DefaultPerPage},
		{name: "above max", page: 2, perPage: 1000, wantPage: 2, wantPerPage: MaxPerPage},
		{name: "at max", page: 7, perPage: 50, wantPage: 7, wantPerPage: 50},
		{name: "in range", page: 3, perPage: 25, wantPage: 3, wantPerPage: 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(tt.page, tt.perPage)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantPerPage, p.PerPage)
		})
	}
}

func TestNewPagination_customMax(t *testing.T) {
	p := NewPagination(1, 30, 10)
	assert.Equal(t, 10, p.PerPage)
}

func TestPagination_window(t *testing.T) {
	p := NewPagination(3, 20)
	p.Total = 45

	assert.Equal(t, 40, p.Offset())
	assert.Equal(t, 20, p.Limit())
	assert.Equal(t, 3, p.TotalPages())
	assert.True(t, p.HasPrev())
	assert.False(t, p.HasNext())

	p.Page = 1
	assert.False(t, p.HasPrev())
	assert.True(t, p.HasNext())
	assert.Equal(t, 2, p.NextPage())
}

func TestPagination_totalPagesNeverZero(t *testing.T) {
	assert.Equal(t, 1, Pagination{}.TotalPages())
	assert.Equal(t, 1, Pagination{PerPage: 20}.TotalPages())
}

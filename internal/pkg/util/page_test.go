package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePage_Defaults(t *testing.T) {
	p := ParsePage("", "", "", 20, 100, "updatedAt:desc")
	assert.Equal(t, Page{Page: 1, PageSize: 20, SortField: SortUpdatedAt, Desc: true}, p)
	assert.Equal(t, 0, p.Offset())
}

func TestParsePage_ClampsAndParsesSort(t *testing.T) {
	p := ParsePage("3", "500", "createdAt:asc", 20, 100, "updatedAt:desc")
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 100, p.PageSize)
	assert.Equal(t, SortCreatedAt, p.SortField)
	assert.False(t, p.Desc)
	assert.Equal(t, 200, p.Offset())
}

func TestParsePage_PrefixAndUnknownField(t *testing.T) {
	p := ParsePage("0", "-1", "-createdAt", 10, 100, "updatedAt:asc")
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 10, p.PageSize)
	assert.Equal(t, SortCreatedAt, p.SortField)
	assert.True(t, p.Desc)

	p = ParsePage("1", "10", "password:asc", 10, 100, "updatedAt:desc")
	assert.Equal(t, SortUpdatedAt, p.SortField)
	assert.True(t, p.Desc)
}

func TestPage_TotalPages(t *testing.T) {
	p := Page{PageSize: 10}
	assert.Equal(t, 0, p.TotalPages(0))
	assert.Equal(t, 1, p.TotalPages(10))
	assert.Equal(t, 2, p.TotalPages(11))
}

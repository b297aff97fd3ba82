package util

import (
	"strconv"
	"strings"
)

const (
	SortCreatedAt = "createdAt"
	SortUpdatedAt = "updatedAt"
)

// Page 分页与排序参数，Page 从 1 开始
type Page struct {
	Page      int
	PageSize  int
	SortField string
	Desc      bool
}

// Offset 计算跳过的条数
func (p Page) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// TotalPages 根据总数计算页数
func (p Page) TotalPages(total int64) int {
	if p.PageSize <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(p.PageSize) - 1) / int64(p.PageSize))
}

// ParsePage 解析 page / pageSize / sort 查询参数
// sort 形如 "createdAt:desc"，字段不在白名单内时使用默认字段
func ParsePage(pageStr, pageSizeStr, sort string, defaultSize, maxSize int, defaultSort string) Page {
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(pageSizeStr)
	if err != nil || size < 1 {
		size = defaultSize
	}
	if maxSize > 0 && size > maxSize {
		size = maxSize
	}

	field, desc := parseSort(defaultSort, SortCreatedAt, true)
	if sort != "" {
		field, desc = parseSort(sort, field, desc)
	}
	return Page{Page: page, PageSize: size, SortField: field, Desc: desc}
}

func parseSort(sort string, fallbackField string, fallbackDesc bool) (string, bool) {
	name, dir, _ := strings.Cut(strings.TrimSpace(sort), ":")
	if strings.HasPrefix(name, "-") {
		name, dir = strings.TrimPrefix(name, "-"), "desc"
	}
	switch name {
	case SortCreatedAt, SortUpdatedAt:
	default:
		return fallbackField, fallbackDesc
	}
	switch strings.ToLower(dir) {
	case "asc":
		return name, false
	case "desc":
		return name, true
	default:
		return name, fallbackDesc
	}
}

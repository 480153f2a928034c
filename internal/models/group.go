package models

import (
	"math"
	"time"
)

// Privacy определяет видимость группы.
type Privacy string

const (
	// PrivacyPublic группа видна в каталоге.
	PrivacyPublic Privacy = "PUBLIC"
	// PrivacyPrivate группа доступна только участникам.
	PrivacyPrivate Privacy = "PRIVATE"
)

// Group представляет сообщество, которым владеет ровно один пользователь.
type Group struct {
	ID          int64     `json:"id"`
	OwnerUID    string    `json:"owner_uid"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	Privacy     Privacy   `json:"privacy"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// GroupWithMembers дополняет Group количеством участников для каталога.
type GroupWithMembers struct {
	Group
	MemberCount int `json:"member_count"`
}

// DummyGroup используется для приёма данных группы из JSON-запроса.
type DummyGroup struct {
	Name        string `json:"name" validate:"required,max=100"`
	Category    string `json:"category" validate:"required,max=50"`
	Description string `json:"description,omitempty" validate:"omitempty,max=1000"`
	Privacy     string `json:"privacy,omitempty" validate:"omitempty,oneof=PUBLIC PRIVATE"`
}

// ToGroup конвертирует запрос в доменную модель с дефолтами.
func (d DummyGroup) ToGroup(ownerUID string) Group {
	privacy := Privacy(d.Privacy)
	if privacy == "" {
		privacy = PrivacyPublic
	}
	return Group{
		OwnerUID:    ownerUID,
		Name:        d.Name,
		Category:    d.Category,
		Description: d.Description,
		Privacy:     privacy,
		IsActive:    true,
	}
}

// ExploreFilter параметры поиска по каталогу групп.
type ExploreFilter struct {
	Page     int
	Limit    int
	Search   string
	Category string
}

// Offset возвращает смещение для SQL-запроса. При переполнении смещение
// ограничивается math.MaxInt, такая страница заведомо пуста.
func (f ExploreFilter) Offset() int {
	if f.Page <= 1 || f.Limit <= 0 {
		return 0
	}
	if f.Page-1 > math.MaxInt/f.Limit {
		return math.MaxInt
	}
	return (f.Page - 1) * f.Limit
}

// Pagination описывает страницу выдачи.
type Pagination struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	Total   int  `json:"total"`
	HasMore bool `json:"hasMore"`
}

// NewPagination считает признак следующей страницы: page*limit < total.
// Произведение не вычисляется, чтобы большой page не переполнял int.
func NewPagination(page, limit, total int) Pagination {
	return Pagination{
		Page:    page,
		Limit:   limit,
		Total:   total,
		HasMore: page > 0 && limit > 0 && total > 0 && page <= (total-1)/limit,
	}
}

// ExplorePage результат поиска по каталогу.
type ExplorePage struct {
	Groups     []*GroupWithMembers `json:"groups"`
	Pagination Pagination          `json:"pagination"`
}

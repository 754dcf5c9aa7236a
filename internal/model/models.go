package model

import "time"

// Comparison задаёт оператор сравнения остатка с порогом правила
type Comparison string

const (
	Less           Comparison = "<"
	LessOrEqual    Comparison = "<="
	Equal          Comparison = "="
	GreaterOrEqual Comparison = ">="
	Greater        Comparison = ">"
)

// Valid сообщает, является ли оператор одним из пяти поддерживаемых
func (c Comparison) Valid() bool {
	switch c {
	case Less, LessOrEqual, Equal, GreaterOrEqual, Greater:
		return true
	}
	return false
}

// Reference описывает запись справочника: всегда пара {id, name}, а не голая строка
type Reference struct {
	ID   int    `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Category представляет категорию товара (таблица categories)
type Category = Reference

// Unit представляет единицу измерения (таблица units)
type Unit = Reference

// Product представляет товар на складе (таблица products)
type Product struct {
	ID         int       `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Quantity   Amount    `db:"quantity" json:"quantity"`
	UnitID     *int      `db:"unit_id" json:"unitId,omitempty"`
	CategoryID *int      `db:"category_id" json:"categoryId,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}

// Rule представляет правило подсветки (таблица rules).
// ProductID == nil означает глобальное правило.
type Rule struct {
	ID         int        `db:"id" json:"id"`
	ProductID  *int       `db:"product_id" json:"productId"`
	Comparison Comparison `db:"comparison" json:"comparison"`
	Threshold  Amount     `db:"threshold" json:"threshold"`
	Color      string     `db:"color" json:"color"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
}

// InventoryRow описывает строку таблицы остатков с цветом подсветки (пустой, если правило не сработало)
type InventoryRow struct {
	Product Product `json:"product"`
	Color   string  `json:"color,omitempty"`
}

// Alert содержит товар и все сработавшие для него правила
type Alert struct {
	Product Product `json:"product"`
	Rules   []Rule  `json:"rules"`
}

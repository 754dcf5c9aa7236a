// Пакет rules вычисляет, какие правила подсветки срабатывают для товара.
// Функции пакета чистые: не обращаются к хранилищам, не пишут логи и не меняют аргументы.
package rules

import (
	"github.com/shopspring/decimal"

	"github.com/DIMSGN/inventory-app-sub000/internal/model"
)

// ColorFor возвращает цвет первого сработавшего правила товара.
// Правила других товаров и глобальные правила игнорируются, правила проверяются в порядке входного среза.
// ok=false, если остаток не число, ни одно правило не сработало или у сработавшего правила пустой цвет.
func ColorFor(product model.Product, rules []model.Rule) (string, bool) {
	qty, ok := product.Quantity.Decimal()
	if !ok {
		return "", false
	}
	for _, r := range rules {
		if !appliesTo(r, product) {
			continue
		}
		if matches(r, qty) {
			// первое совпадение окончательное, даже если цвет не задан
			return r.Color, r.Color != ""
		}
	}
	return "", false
}

// AllMatches возвращает все правила товара, которым удовлетворяет текущий остаток, в исходном порядке.
// В отличие от ColorFor, правило с пустым цветом тоже считается совпадением.
func AllMatches(product model.Product, rules []model.Rule) []model.Rule {
	qty, ok := product.Quantity.Decimal()
	if !ok {
		return nil
	}
	var out []model.Rule
	for _, r := range rules {
		if appliesTo(r, product) && matches(r, qty) {
			out = append(out, r)
		}
	}
	return out
}

// appliesTo проверяет, что правило привязано именно к этому товару
func appliesTo(r model.Rule, p model.Product) bool {
	return r.ProductID != nil && *r.ProductID == p.ID
}

// matches сравнивает остаток с порогом; при некорректном пороге или неизвестном операторе совпадения нет
func matches(r model.Rule, qty decimal.Decimal) bool {
	threshold, ok := r.Threshold.Decimal()
	if !ok {
		return false
	}
	switch r.Comparison {
	case model.Less:
		return qty.LessThan(threshold)
	case model.LessOrEqual:
		return qty.LessThanOrEqual(threshold)
	case model.Equal:
		return qty.Equal(threshold)
	case model.GreaterOrEqual:
		return qty.GreaterThanOrEqual(threshold)
	case model.Greater:
		return qty.GreaterThan(threshold)
	}
	return false
}

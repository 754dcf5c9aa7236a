package model

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Границы допустимого числа, совпадают с колонками NUMERIC(25, 10)
const (
	MaxIntegerDigits  = 15
	MaxFractionDigits = 10

	maxAmountLen = 64
)

// Amount хранит числовое значение (остаток товара, порог правила) в том виде,
// в каком оно пришло из источника: JSON-число, JSON-строка или NUMERIC из БД.
// Пустое значение означает отсутствие числа.
type Amount string

// AmountOf создаёт Amount из десятичного значения
func AmountOf(d decimal.Decimal) Amount {
	return Amount(d.String())
}

// Decimal разбирает значение как конечное десятичное число.
// ok=false для пустого, нечислового или бесконечного значения (NaN, Inf не разбираются),
// а также для числа вне диапазона: больше MaxIntegerDigits цифр в целой части
// или больше MaxFractionDigits значащих цифр в дробной.
func (a Amount) Decimal() (decimal.Decimal, bool) {
	s := strings.TrimSpace(string(a))
	if s == "" || len(s) > maxAmountLen {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	if !inRange(d) {
		return decimal.Decimal{}, false
	}
	return d, true
}

// inRange проверяет число без раскрытия экспоненты.
// Коэффициент не длиннее maxAmountLen цифр, поэтому экспонента вне окна заведомо вне диапазона.
func inRange(d decimal.Decimal) bool {
	exp := int(d.Exponent())
	if exp > MaxIntegerDigits || exp < -(MaxFractionDigits+maxAmountLen) {
		return false
	}
	c := d.Coefficient()
	digits := c.Abs(c).String()
	if digits == "0" {
		return true
	}
	trimmed := strings.TrimRight(digits, "0")
	exp += len(digits) - len(trimmed)
	if exp < -MaxFractionDigits {
		return false
	}
	return len(trimmed)+exp <= MaxIntegerDigits
}

// IsSet сообщает, задано ли значение вообще
func (a Amount) IsSet() bool {
	return strings.TrimSpace(string(a)) != ""
}

// MarshalJSON пишет разбираемое значение числом, неразбираемое строкой, пустое как null
func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.IsSet() {
		return []byte("null"), nil
	}
	if d, ok := a.Decimal(); ok {
		return []byte(d.String()), nil
	}
	return json.Marshal(string(a))
}

// UnmarshalJSON принимает число, строку или null
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("amount must be a number or a string: %w", err)
	}
	*a = Amount(n.String())
	return nil
}

// Scan читает NUMERIC/NULL из базы данных
func (a *Amount) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*a = ""
	case []byte:
		*a = Amount(string(v))
	case string:
		*a = Amount(v)
	case int64:
		*a = Amount(strconv.FormatInt(v, 10))
	case float64:
		*a = Amount(strconv.FormatFloat(v, 'f', -1, 64))
	default:
		return fmt.Errorf("cannot scan %T into Amount", src)
	}
	return nil
}

// Value передаёт значение в базу: пустое как NULL, иначе строкой
func (a Amount) Value() (driver.Value, error) {
	if !a.IsSet() {
		return nil, nil
	}
	return strings.TrimSpace(string(a)), nil
}

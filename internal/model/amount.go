package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Amount : сумма в минимальных единицах (сотых долях), 2 знака после точки
type Amount int64

const amountScale = 100

// ParseAmount : разбирает неотрицательную десятичную строку вида "5", "5.5", "5.00"
func ParseAmount(value string) (Amount, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("сумма не указана")
	}
	if strings.HasPrefix(value, "-") || strings.HasPrefix(value, "+") {
		return 0, fmt.Errorf("сумма должна быть неотрицательным числом: %q", value)
	}

	whole, fraction, hasFraction := strings.Cut(value, ".")
	if whole == "" || (hasFraction && fraction == "") {
		return 0, fmt.Errorf("неверный формат суммы: %q", value)
	}
	if len(fraction) > 2 {
		return 0, fmt.Errorf("не более двух знаков после точки: %q", value)
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("неверный формат суммы: %q", value)
	}
	if units > math.MaxInt64/amountScale-1 {
		return 0, fmt.Errorf("слишком большая сумма: %q", value)
	}

	var cents int64
	if fraction != "" {
		for len(fraction) < 2 {
			fraction += "0"
		}
		cents, err = strconv.ParseInt(fraction, 10, 64)
		if err != nil || cents < 0 {
			return 0, fmt.Errorf("неверный формат суммы: %q", value)
		}
	}

	return Amount(units*amountScale + cents), nil
}

func (a Amount) String() string {
	sign := ""
	v := int64(a)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/amountScale, v%amountScale)
}

func (a Amount) IsZero() bool {
	return a == 0
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("сумма должна быть строкой: %w", err)
	}
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

package session

import (
	"fmt"
	"strings"
)

// Key — клавиша виртуальной клавиатуры для числовых вопросов
type Key rune

// Служебные клавиши
const (
	KeyDecimal   Key = '.'
	KeyBackspace Key = '\b'
)

// IsDigit проверяет, что клавиша — цифра
func (k Key) IsDigit() bool {
	return k >= '0' && k <= '9'
}

// ApplyKey применяет нажатие клавиши к текущему вводу.
// Ввод длиннее maxLen и второй десятичный разделитель отклоняются, current при этом не меняется.
func ApplyKey(current string, key Key, maxLen int) (string, error) {
	switch {
	case key == KeyBackspace:
		if current == "" {
			return "", nil
		}
		return current[:len(current)-1], nil
	case key == KeyDecimal:
		if strings.ContainsRune(current, '.') {
			return current, ErrDuplicateDecimal
		}
	case key.IsDigit():
	default:
		return current, fmt.Errorf("%w: %q", ErrInvalidKey, rune(key))
	}

	if len(current) >= maxLen {
		return current, ErrInputTooLong
	}
	return current + string(rune(key)), nil
}

// ValidateNumeric проверяет строку, которую можно было бы набрать на клавиатуре
func ValidateNumeric(value string, maxLen int) error {
	if value == "" {
		return fmt.Errorf("%w: empty", ErrInvalidNumeric)
	}
	if len(value) > maxLen {
		return ErrInputTooLong
	}
	decimals := 0
	for _, r := range value {
		switch {
		case r == '.':
			decimals++
			if decimals > 1 {
				return ErrDuplicateDecimal
			}
		case r >= '0' && r <= '9':
		default:
			return fmt.Errorf("%w: unexpected character %q", ErrInvalidNumeric, r)
		}
	}
	return nil
}

// redact предоставляет заглушки для чувствительных данных в логах.
// Пароли в профилях хранятся открытым текстом, поэтому в логи они не попадают никогда.
package redact

// Username маскирует имя пользователя: первые два символа (по рунам) + "***".
// Имена из двух и менее символов заменяются целиком.
//
// Примеры:
//
//	"harold_anguiano" -> "ha***"
//	"al"              -> "***"
func Username(s string) string {
	r := []rune(s)
	if len(r) <= 2 {
		return "***"
	}

	return string(r[:2]) + "***"
}

// Password возвращает литерал-заглушку для пароля в логах.
func Password() string { return "[REDACTED_PASSWORD]" }

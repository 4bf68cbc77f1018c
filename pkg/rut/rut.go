// Package rut valida y normaliza el Rol Único Tributario chileno (RUT/RUN).
package rut

import (
	"fmt"
	"strings"
	"unicode"
)

// Normalize deja el RUT en la forma canónica "12345678-K": sin puntos, con guion
// antes del dígito verificador y la K en mayúscula. No valida el dígito.
func Normalize(s string) (string, error) {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case unicode.IsDigit(r):
			b.WriteRune(r)
		case r == 'k' || r == 'K':
			b.WriteRune('K')
		case r == '.' || r == '-' || r == ' ':
		default:
			return "", fmt.Errorf("rut: carácter inválido %q", r)
		}
	}
	clean := b.String()
	if len(clean) < 2 {
		return "", fmt.Errorf("rut: demasiado corto")
	}
	body, dv := clean[:len(clean)-1], clean[len(clean)-1]
	if strings.ContainsRune(body, 'K') {
		return "", fmt.Errorf("rut: la K solo puede ser dígito verificador")
	}
	if len(body) > 8 {
		return "", fmt.Errorf("rut: cuerpo de %d dígitos, máximo 8", len(body))
	}
	return body + "-" + string(dv), nil
}

// ComputeDV calcula el dígito verificador (módulo 11) para el cuerpo numérico del RUT.
func ComputeDV(body string) (byte, error) {
	if body == "" {
		return 0, fmt.Errorf("rut: cuerpo vacío")
	}
	sum, factor := 0, 2
	for i := len(body) - 1; i >= 0; i-- {
		c := body[i]
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("rut: cuerpo no numérico")
		}
		sum += int(c-'0') * factor
		factor++
		if factor > 7 {
			factor = 2
		}
	}
	switch r := 11 - sum%11; r {
	case 11:
		return '0', nil
	case 10:
		return 'K', nil
	default:
		return byte('0' + r), nil
	}
}

// Validate comprueba formato y dígito verificador. Acepta "12.345.678-5", "12345678-5" o "123456785".
func Validate(s string) error {
	n, err := Normalize(s)
	if err != nil {
		return err
	}
	body, dv := n[:len(n)-2], n[len(n)-1]
	expected, err := ComputeDV(body)
	if err != nil {
		return err
	}
	if dv != expected {
		return fmt.Errorf("rut: dígito verificador inválido: esperado %c, recibido %c", expected, dv)
	}
	return nil
}

// IsValid atajo booleano de Validate.
func IsValid(s string) bool {
	return Validate(s) == nil
}

// Format devuelve el RUT con separador de miles, p. ej. "12.345.678-5".
// Si s no se puede normalizar lo devuelve sin cambios.
func Format(s string) string {
	n, err := Normalize(s)
	if err != nil {
		return s
	}
	body, dv := n[:len(n)-2], n[len(n)-1:]
	var b strings.Builder
	for i, r := range body {
		if i > 0 && (len(body)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return b.String() + "-" + dv
}

// Package normalize normaliza títulos de obra para búsqueda e indexación:
// sin tildes, sin espacios redundantes, en mayúsculas.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripAccents = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Title devuelve la forma canónica de un título: descompone, elimina marcas
// diacríticas (Mn), colapsa espacios y pasa a mayúsculas. "Canción de  otoño"
// -> "CANCION DE OTONO".
func Title(s string) string {
	out, _, err := transform.String(stripAccents, s)
	if err != nil {
		out = s
	}
	return strings.ToUpper(strings.Join(strings.Fields(out), " "))
}

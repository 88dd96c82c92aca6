package template

import (
	"regexp"

	"github.com/google/uuid"
)

// idNamespace is the fixed namespace for template identifiers. Every id in
// the document is a UUIDv5 over this namespace and a seed string, so the
// same MIB always produces byte-identical output.
var idNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

func idFor(seed string) string {
	return uuid.NewSHA1(idNamespace, []byte(seed)).String()
}

// sanitizeRe matches every character not allowed in a Zabbix item key.
// Braces, hash and brackets stay so index macros survive sanitizing.
var sanitizeRe = regexp.MustCompile(`[^a-zA-Z0-9_\-.{}#\[\]]`)

func sanitizeName(name string) string {
	return sanitizeRe.ReplaceAllString(name, "_")
}

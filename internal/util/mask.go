// Package util reúne helpers chicos compartidos entre capas.
package util

import "strings"

// MaskEmail acorta un email para logs: queda la primera letra del usuario y
// del dominio, suficiente para correlacionar sin exponer la dirección.
func MaskEmail(addr string) string {
	addr = strings.ToLower(strings.TrimSpace(addr))
	at := strings.IndexByte(addr, '@')
	if at <= 0 {
		// sin @ lo tratamos como texto plano
		switch {
		case addr == "":
			return ""
		case len(addr) <= 3:
			return "***"
		default:
			return addr[:1] + "…" + addr[len(addr)-1:]
		}
	}

	user := maskPart(addr[:at])
	labels := strings.Split(addr[at+1:], ".")
	labels[0] = maskPart(labels[0])
	return user + "@" + strings.Join(labels, ".")
}

func maskPart(s string) string {
	if len(s) <= 1 {
		return s
	}
	return s[:1] + "…"
}

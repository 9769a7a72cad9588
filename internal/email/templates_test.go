package email

import (
	"strings"
	"testing"

	"github.com/dropDatabas3/turnero/internal/domain/repository"
)

func TestAssignmentMessage_HostSubject(t *testing.T) {
	a := repository.Assignment{MemberName: "Ana", Role: "Host"}
	subject, _, _ := AssignmentMessage(a, "ALL", 3)
	if !strings.HasPrefix(subject, "[HOST DUTY]") {
		t.Fatalf("subject = %q, quiero prefijo [HOST DUTY]", subject)
	}
	if !strings.Contains(subject, "ronda 3") {
		t.Fatalf("subject = %q, falta la ronda", subject)
	}
}

func TestAssignmentMessage_RegularSubject(t *testing.T) {
	a := repository.Assignment{MemberName: "Bruno", Role: "News"}
	subject, html, text := AssignmentMessage(a, "g1", 2)
	if strings.Contains(subject, "HOST DUTY") {
		t.Fatalf("subject = %q, no corresponde la marca host", subject)
	}
	for _, body := range []string{html, text} {
		if !strings.Contains(body, "Bruno") || !strings.Contains(body, "News") {
			t.Fatalf("cuerpo sin nombre o rol: %q", body)
		}
		if !strings.Contains(body, "grupo g1") {
			t.Fatalf("cuerpo sin scope: %q", body)
		}
	}
}

func TestSummaryMessage(t *testing.T) {
	entry := repository.RoundEntry{
		Round: 5,
		Scope: "ALL",
		Assignments: []repository.Assignment{
			{MemberName: "Ana", Role: "host"},
			{MemberName: "Bruno", Role: "news"},
		},
	}
	subject, html, text := SummaryMessage(entry)
	if !strings.Contains(subject, "Ronda 5") {
		t.Fatalf("subject = %q", subject)
	}
	if !strings.Contains(subject, "todos los grupos") {
		t.Fatalf("subject = %q, falta la etiqueta de scope", subject)
	}
	if !strings.Contains(html, "Ronda 5: todos los grupos") {
		t.Fatalf("html sin encabezado de ronda: %q", html)
	}
	for _, name := range []string{"Ana", "Bruno"} {
		if !strings.Contains(html, name) || !strings.Contains(text, name) {
			t.Fatalf("resumen sin %s", name)
		}
	}
}

func TestOTPMessage(t *testing.T) {
	subject, html, text := OTPMessage("123456", 5)
	if subject == "" {
		t.Fatal("subject vacío")
	}
	if !strings.Contains(html, "123456") || !strings.Contains(text, "123456") {
		t.Fatal("el código no aparece en el cuerpo")
	}
	if !strings.Contains(text, "5 minutos") {
		t.Fatalf("text = %q, falta el vencimiento", text)
	}
}

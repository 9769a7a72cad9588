package tokens

import "testing"

func TestGenerateOTP(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		otp, err := GenerateOTP(6)
		if err != nil {
			t.Fatal(err)
		}
		if len(otp) != 6 {
			t.Fatalf("otp length: %q", otp)
		}
		for _, c := range otp {
			if c < '0' || c > '9' {
				t.Fatalf("non-digit in otp: %q", otp)
			}
		}
		seen[otp] = true
	}
	if len(seen) < 2 {
		t.Fatal("otp generator looks constant")
	}
}

func TestSHA256RoundTrip(t *testing.T) {
	h := SHA256Base64URL("123456")
	if !VerifySHA256("123456", h) {
		t.Fatal("matching value rejected")
	}
	if VerifySHA256("654321", h) {
		t.Fatal("non-matching value accepted")
	}
}

func TestGenerateOpaqueToken(t *testing.T) {
	a, err := GenerateOpaqueToken(32)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := GenerateOpaqueToken(32)
	if a == b || a == "" {
		t.Fatal("opaque tokens should be random")
	}
}

package extract_test

import (
	"testing"

	"github.com/fintechfusion/loan-officer/internal/model/loan"
	"github.com/fintechfusion/loan-officer/internal/service/extract"
)

func TestGreetingIsNotAName(t *testing.T) {
	for _, word := range []string{"hi", "Hello", "HEY"} {
		in := extract.Parse(word, loan.StateAskName)
		if in.Kind != extract.KindCommand || in.Command != extract.CommandGreeting {
			t.Fatalf("%q should parse as a greeting, got kind %d", word, in.Kind)
		}
	}
}

func TestControlWordIsNotAName(t *testing.T) {
	in := extract.Parse("ok", loan.StateAskName)
	if in.Kind == extract.KindName {
		t.Fatal("control word accepted as a name")
	}
}

func TestNameAcceptedVerbatim(t *testing.T) {
	in := extract.Parse("  Asha Rao ", loan.StateAskName)
	if in.Kind != extract.KindName || in.Text != "Asha Rao" {
		t.Fatalf("unexpected name parse: %+v", in)
	}
}

func TestDigitsRejectedAsName(t *testing.T) {
	in := extract.Parse("12345", loan.StateAskName)
	if in.Kind != extract.KindUnrecognized {
		t.Fatalf("digit-only text should not be a name, got kind %d", in.Kind)
	}
}

func TestPhoneRequiresTenDigits(t *testing.T) {
	in := extract.Parse("98765 43210", loan.StateAskPhone)
	if in.Kind != extract.KindPhone || in.Text != "9876543210" {
		t.Fatalf("unexpected phone parse: %+v", in)
	}

	in = extract.Parse("12345", loan.StateAskPhone)
	if in.Kind != extract.KindUnrecognized {
		t.Fatalf("short number should fail phone extraction, got kind %d", in.Kind)
	}

	in = extract.Parse("call me maybe", loan.StateAskPhone)
	if in.Kind != extract.KindUnrecognized {
		t.Fatalf("non-numeric text should fail phone extraction, got kind %d", in.Kind)
	}
}

func TestAmountShorthand(t *testing.T) {
	cases := map[string]int64{
		"300000":    300000,
		"3,00,000":  300000,
		"Rs 250000": 250000,
		"300k":      300000,
		"3 lakh":    300000,
		"2.5 lakh":  250000,
	}
	for text, want := range cases {
		in := extract.Parse(text, loan.StateAskLoanAmount)
		if in.Kind != extract.KindAmount || in.Amount != want {
			t.Fatalf("Parse(%q): got %+v want amount %d", text, in, want)
		}
	}
}

func TestAmountRejectsNoise(t *testing.T) {
	for _, text := range []string{"a lot", "-5000", "0", ""} {
		in := extract.Parse(text, loan.StateAskLoanAmount)
		if in.Kind != extract.KindUnrecognized {
			t.Fatalf("Parse(%q): expected unrecognized, got kind %d", text, in.Kind)
		}
	}
}

func TestAmountRejectsOversizedFigures(t *testing.T) {
	// Figures beyond the trillion-rupee cap must re-prompt, not wrap int64.
	for _, text := range []string{
		"99999999999999999999",
		"9223372036854775808",
		"99999999999999999 lakh",
	} {
		in := extract.Parse(text, loan.StateAskLoanAmount)
		if in.Kind != extract.KindUnrecognized {
			t.Fatalf("Parse(%q): expected unrecognized, got %+v", text, in)
		}
		in = extract.Parse(text, loan.StateAskSalary)
		if in.Kind != extract.KindUnrecognized {
			t.Fatalf("Parse(%q) as salary: expected unrecognized, got %+v", text, in)
		}
	}

	if amount, ok := extract.ParseAmount("1000000000000"); !ok || amount != 1000000000000 {
		t.Fatalf("cap boundary should still parse, got %d ok=%v", amount, ok)
	}
}

func TestTenurePatterns(t *testing.T) {
	for _, text := range []string{"36 months", "make it 36 months", "36 Month"} {
		in := extract.Parse(text, loan.StateSales)
		if in.Kind != extract.KindTenure || in.Tenure != 36 {
			t.Fatalf("Parse(%q): got %+v want tenure 36", text, in)
		}
	}
}

func TestCommandsCaseInsensitive(t *testing.T) {
	cases := map[string]extract.Command{
		"MENU":         extract.CommandMenu,
		"Main Menu":    extract.CommandMenu,
		"start over":   extract.CommandMenu,
		"OK":           extract.CommandAccept,
		"EMI too high": extract.CommandEMITooHigh,
	}
	for text, want := range cases {
		in := extract.Parse(text, loan.StateSales)
		if in.Kind != extract.KindCommand || in.Command != want {
			t.Fatalf("Parse(%q): got %+v want command %d", text, in, want)
		}
	}
}

func TestSalaryParsesAsIncome(t *testing.T) {
	in := extract.Parse("45000", loan.StateAskSalary)
	if in.Kind != extract.KindIncome || in.Amount != 45000 {
		t.Fatalf("unexpected income parse: %+v", in)
	}
}

func TestPANTokenStripsSpaces(t *testing.T) {
	in := extract.Parse("ABCDE 1234 F", loan.StateAskPAN)
	if in.Kind != extract.KindPAN || in.Text != "ABCDE1234F" {
		t.Fatalf("unexpected PAN parse: %+v", in)
	}
}

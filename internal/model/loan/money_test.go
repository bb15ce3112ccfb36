package loan_test

import (
	"testing"

	"github.com/fintechfusion/loan-officer/internal/model/loan"
)

func TestFormatINR(t *testing.T) {
	cases := map[int64]string{
		0:       "0",
		999:     "999",
		1000:    "1,000",
		45000:   "45,000",
		300000:  "300,000",
		2160000: "2,160,000",
		-14404:  "-14,404",
	}
	for in, want := range cases {
		if got := loan.FormatINR(in); got != want {
			t.Fatalf("FormatINR(%d): got %q want %q", in, got, want)
		}
	}
}

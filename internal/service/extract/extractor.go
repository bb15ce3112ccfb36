package extract

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fintechfusion/loan-officer/internal/model/loan"
)

// Kind tags the variant carried by an Input.
type Kind int

const (
	KindUnrecognized Kind = iota
	KindCommand
	KindName
	KindPhone
	KindAmount
	KindTenure
	KindIncome
	KindPAN
)

// Command enumerates the fixed control vocabulary.
type Command int

const (
	CommandNone Command = iota
	CommandMenu
	CommandAccept
	CommandEMITooHigh
	CommandGreeting
)

// Input is the tagged result of parsing one user message. Exactly one of the
// value fields is meaningful, selected by Kind.
type Input struct {
	Kind    Kind
	Command Command
	Text    string // name, phone digits or PAN token
	Amount  int64  // loan amount or income, whole rupees
	Tenure  int    // months
}

var commandWords = map[string]Command{
	"menu":         CommandMenu,
	"main menu":    CommandMenu,
	"restart":      CommandMenu,
	"start over":   CommandMenu,
	"ok":           CommandAccept,
	"okay":         CommandAccept,
	"yes":          CommandAccept,
	"proceed":      CommandAccept,
	"emi too high": CommandEMITooHigh,
	"too high":     CommandEMITooHigh,
	"hi":           CommandGreeting,
	"hello":        CommandGreeting,
	"hey":          CommandGreeting,
}

var (
	tenurePattern = regexp.MustCompile(`(?i)^(?:make it\s+)?(\d{1,3})\s*months?$`)
	digitsOnly    = regexp.MustCompile(`^\d+$`)
	amountPattern = regexp.MustCompile(`(?i)^(?:rs\.?\s*|inr\s*|₹\s*)?(\d+(?:,\d+)*(?:\.\d+)?)\s*(k|lakh|lakhs|lac|lacs)?$`)
)

// maxParsedAmount caps any rupee figure at one trillion. Larger input is
// treated as noise; letting it through would wrap int64 further down.
var maxParsedAmount = decimal.New(1, 12)

// Parse interprets raw text in light of the current conversation state and
// returns a tagged variant: a command, a typed field, or unrecognized. It
// never fails; unparseable input comes back as KindUnrecognized so the state
// machine can re-prompt.
func Parse(text string, state loan.State) Input {
	trimmed := strings.TrimSpace(text)
	normalized := strings.ToLower(trimmed)

	if cmd, ok := commandWords[normalized]; ok {
		return Input{Kind: KindCommand, Command: cmd}
	}

	if tenure, ok := parseTenure(normalized); ok {
		return Input{Kind: KindTenure, Tenure: tenure}
	}

	switch state {
	case loan.StateAskName:
		return parseName(trimmed)
	case loan.StateAskPhone:
		return parsePhone(trimmed)
	case loan.StateAskLoanAmount:
		if amount, ok := ParseAmount(trimmed); ok {
			return Input{Kind: KindAmount, Amount: amount}
		}
	case loan.StateAskSalary:
		if amount, ok := ParseAmount(trimmed); ok {
			return Input{Kind: KindIncome, Amount: amount}
		}
	case loan.StateAskPAN:
		if token := strings.ReplaceAll(trimmed, " ", ""); token != "" {
			return Input{Kind: KindPAN, Text: token}
		}
	}

	return Input{Kind: KindUnrecognized}
}

func parseTenure(normalized string) (int, bool) {
	m := tenurePattern.FindStringSubmatch(normalized)
	if m == nil {
		return 0, false
	}
	val, err := decimal.NewFromString(m[1])
	if err != nil || !val.IsPositive() {
		return 0, false
	}
	return int(val.IntPart()), true
}

func parseName(trimmed string) Input {
	if trimmed == "" || digitsOnly.MatchString(trimmed) {
		return Input{Kind: KindUnrecognized}
	}
	return Input{Kind: KindName, Text: trimmed}
}

func parsePhone(trimmed string) Input {
	cleaned := strings.NewReplacer(" ", "", "-", "", "+", "", "(", "", ")", "").Replace(trimmed)
	if len(cleaned) < 10 || !digitsOnly.MatchString(cleaned) {
		return Input{Kind: KindUnrecognized}
	}
	return Input{Kind: KindPhone, Text: cleaned}
}

// ParseAmount turns a currency-like token into whole rupees. It accepts
// thousand separators and the informal "k"/"lakh" suffixes ("300k",
// "3 lakh"). Non-numeric noise is rejected, never a crash.
func ParseAmount(text string) (int64, bool) {
	trimmed := strings.TrimSpace(text)
	m := amountPattern.FindStringSubmatch(trimmed)
	if m == nil {
		return 0, false
	}

	num, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return 0, false
	}

	switch strings.ToLower(m[2]) {
	case "k":
		num = num.Mul(decimal.NewFromInt(1000))
	case "lakh", "lakhs", "lac", "lacs":
		num = num.Mul(decimal.NewFromInt(100000))
	}

	if num.Cmp(maxParsedAmount) > 0 {
		return 0, false
	}

	value := num.Round(0).IntPart()
	if value <= 0 {
		return 0, false
	}
	return value, true
}

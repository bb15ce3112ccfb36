package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config aggregates every tunable for the service.
type Config struct {
	Server       ServerConfig
	Loan         LoanConfig
	Underwriting UnderwritingConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	loanCfg, err := loadLoanConfig()
	if err != nil {
		return nil, err
	}

	uw, err := loadUnderwritingConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Loan: loanCfg, Underwriting: uw}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr           string
	MaxUploadBytes int64
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	addr := port
	if !strings.Contains(port, ":") {
		// Allow passing ":8080" or "127.0.0.1:8080" directly.
		if strings.Contains(port, " ") {
			return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
		}
		addr = ":" + port
	}

	maxUpload, err := parseOptionalInt64Env("UPLOAD_MAX_BYTES")
	if err != nil {
		return ServerConfig{}, err
	}
	limit := int64(2 << 20) // 2 MB, enough for any salary slip
	if maxUpload != nil && *maxUpload > 0 {
		limit = *maxUpload
	}

	return ServerConfig{Addr: addr, MaxUploadBytes: limit}, nil
}

// LoanConfig describes the offer defaults and negotiation bounds.
type LoanConfig struct {
	AnnualRate          float64
	DefaultTenureMonths int
	TenureLadder        []int
	ResetClearsProfile  bool
}

// MaxTenureMonths is the negotiation cap, the last rung of the ladder.
func (c LoanConfig) MaxTenureMonths() int {
	if len(c.TenureLadder) == 0 {
		return 0
	}
	return c.TenureLadder[len(c.TenureLadder)-1]
}

func loadLoanConfig() (LoanConfig, error) {
	rate, err := parseOptionalFloatEnv("LOAN_ANNUAL_RATE")
	if err != nil {
		return LoanConfig{}, err
	}
	annualRate := 14.0
	if rate != nil {
		if *rate < 0 {
			return LoanConfig{}, fmt.Errorf("LOAN_ANNUAL_RATE must not be negative, got %v", *rate)
		}
		annualRate = *rate
	}

	tenure, err := parseOptionalIntEnv("LOAN_DEFAULT_TENURE")
	if err != nil {
		return LoanConfig{}, err
	}
	defaultTenure := 24
	if tenure != nil {
		if *tenure <= 0 {
			return LoanConfig{}, fmt.Errorf("LOAN_DEFAULT_TENURE must be positive, got %d", *tenure)
		}
		defaultTenure = *tenure
	}

	ladder, err := parseLadderEnv("LOAN_TENURE_LADDER")
	if err != nil {
		return LoanConfig{}, err
	}
	if len(ladder) == 0 {
		ladder = []int{12, 24, 36, 48, 60}
	}

	clearProfile, err := parseBoolEnv("LOAN_RESET_CLEARS_PROFILE", false)
	if err != nil {
		return LoanConfig{}, err
	}

	return LoanConfig{
		AnnualRate:          annualRate,
		DefaultTenureMonths: defaultTenure,
		TenureLadder:        ladder,
		ResetClearsProfile:  clearProfile,
	}, nil
}

// UnderwritingConfig holds the rule thresholds.
type UnderwritingConfig struct {
	MinMonthlyIncome int64
	MinCreditScore   int
	MaxEMIRatio      float64
	MaxLoanMultiple  int
}

func loadUnderwritingConfig() (UnderwritingConfig, error) {
	minIncome, err := parseOptionalInt64Env("UW_MIN_MONTHLY_INCOME")
	if err != nil {
		return UnderwritingConfig{}, err
	}
	income := int64(25000)
	if minIncome != nil {
		if *minIncome <= 0 {
			return UnderwritingConfig{}, fmt.Errorf("UW_MIN_MONTHLY_INCOME must be positive, got %d", *minIncome)
		}
		income = *minIncome
	}

	minScore, err := parseOptionalIntEnv("UW_MIN_CREDIT_SCORE")
	if err != nil {
		return UnderwritingConfig{}, err
	}
	score := 680
	if minScore != nil {
		score = *minScore
	}

	ratio, err := parseOptionalFloatEnv("UW_MAX_EMI_RATIO")
	if err != nil {
		return UnderwritingConfig{}, err
	}
	maxRatio := 0.45
	if ratio != nil {
		if *ratio <= 0 || *ratio > 1 {
			return UnderwritingConfig{}, fmt.Errorf("UW_MAX_EMI_RATIO must be in (0,1], got %v", *ratio)
		}
		maxRatio = *ratio
	}

	multiple, err := parseOptionalIntEnv("UW_MAX_LOAN_MULTIPLE")
	if err != nil {
		return UnderwritingConfig{}, err
	}
	maxMultiple := 4
	if multiple != nil {
		if *multiple <= 0 {
			return UnderwritingConfig{}, fmt.Errorf("UW_MAX_LOAN_MULTIPLE must be positive, got %d", *multiple)
		}
		maxMultiple = *multiple
	}

	return UnderwritingConfig{
		MinMonthlyIncome: income,
		MinCreditScore:   score,
		MaxEMIRatio:      maxRatio,
		MaxLoanMultiple:  maxMultiple,
	}, nil
}

func parseLadderEnv(key string) ([]int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	ladder := make([]int, 0, len(parts))
	prev := 0
	for _, part := range parts {
		val, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid %s entry %q: %w", key, part, err)
		}
		if val <= prev {
			return nil, fmt.Errorf("%s must be strictly increasing, got %q", key, raw)
		}
		ladder = append(ladder, val)
		prev = val
	}
	return ladder, nil
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalInt64Env(key string) (*int64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

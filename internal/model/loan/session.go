package loan

import "time"

// State identifies where a conversation sits in the application flow.
// The tokens are a stable contract with presentation clients, which switch
// behavior on them (upload button, tenure quick-replies, download action).
type State string

const (
	StateInit          State = "INIT"
	StateAskName       State = "ASK_NAME"
	StateAskPhone      State = "ASK_PHONE"
	StateAskLoanAmount State = "ASK_LOAN_AMOUNT"
	StateSales         State = "SALES"
	StateAskSalary     State = "ASK_SALARY"
	StateAskPAN        State = "ASK_PAN"
	StateWaitUpload    State = "WAIT_UPLOAD"
	StateUnderwrite    State = "UNDERWRITE"
	StateApproved      State = "APPROVED"
	StateRejected      State = "REJECTED"
)

// Outcome is the underwriting verdict.
type Outcome string

const (
	OutcomeApproved Outcome = "approved"
	OutcomeRejected Outcome = "rejected"
)

// Profile holds the applicant details collected over the conversation.
// MonthlyIncome is in whole rupees.
type Profile struct {
	Name          string `json:"name,omitempty"`
	Phone         string `json:"phone,omitempty"`
	MonthlyIncome int64  `json:"monthlyIncome,omitempty"`
	PAN           string `json:"pan,omitempty"`
}

// Application is the loan offer under negotiation. EMI is set exactly when
// both Amount and TenureMonths are set.
type Application struct {
	Amount       int64   `json:"amount,omitempty"`
	TenureMonths int     `json:"tenureMonths,omitempty"`
	AnnualRate   float64 `json:"annualRate,omitempty"`
	EMI          int64   `json:"emi,omitempty"`
}

// Empty reports whether no offer has been drafted yet.
func (a Application) Empty() bool {
	return a.Amount == 0 && a.TenureMonths == 0
}

// Decision is the underwriting result. Reasons keeps the failing rules in
// evaluation order; Alternative carries a counter-offer hint when one exists.
type Decision struct {
	Outcome     Outcome  `json:"outcome"`
	Reasons     []string `json:"reasons,omitempty"`
	Alternative string   `json:"alternative,omitempty"`
	CreditScore int      `json:"creditScore,omitempty"`
	DTI         float64  `json:"dti,omitempty"`
}

// Session is one applicant's in-progress conversation. The id is supplied by
// the caller and treated as opaque.
type Session struct {
	ID             string      `json:"id"`
	State          State       `json:"state"`
	Profile        Profile     `json:"profile"`
	Application    Application `json:"application"`
	Decision       *Decision   `json:"decision,omitempty"`
	UploadedIncome int64       `json:"uploadedIncome,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

// Clone returns a deep copy safe to hand outside the store's lock.
func (s Session) Clone() Session {
	out := s
	if s.Decision != nil {
		d := *s.Decision
		d.Reasons = append([]string(nil), s.Decision.Reasons...)
		out.Decision = &d
	}
	return out
}

// SanctionRecord is the finalized snapshot handed to the letter renderer.
// Only an approved session produces one.
type SanctionRecord struct {
	Reference    string    `json:"reference"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	PAN          string    `json:"pan,omitempty"`
	Amount       int64     `json:"amount"`
	TenureMonths int       `json:"tenureMonths"`
	AnnualRate   float64   `json:"annualRate"`
	EMI          int64     `json:"emi"`
	CreditScore  int       `json:"creditScore,omitempty"`
	IssuedAt     time.Time `json:"issuedAt"`
}

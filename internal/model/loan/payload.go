package loan

// Offer mirrors the application figures for machine consumption.
type Offer struct {
	Amount       int64   `json:"amount"`
	TenureMonths int     `json:"tenureMonths"`
	AnnualRate   float64 `json:"annualRate"`
	EMI          int64   `json:"emi"`
}

// DecisionPayload is the structured verdict for presentation clients.
type DecisionPayload struct {
	Outcome     Outcome  `json:"outcome"`
	Reasons     []string `json:"reasons,omitempty"`
	Alternative string   `json:"alternative,omitempty"`
}

// Payload is emitted alongside every reply so clients never pattern-match
// figures out of prose.
type Payload struct {
	State    State            `json:"state"`
	Offer    *Offer           `json:"offer,omitempty"`
	Decision *DecisionPayload `json:"decision,omitempty"`
}

// Reply is the outcome of one inbound message or upload.
type Reply struct {
	Text    string  `json:"text"`
	State   State   `json:"state"`
	Payload Payload `json:"payload"`
}

// PayloadFor derives the structured payload from a session snapshot.
func PayloadFor(s *Session) Payload {
	p := Payload{State: s.State}
	if !s.Application.Empty() {
		p.Offer = &Offer{
			Amount:       s.Application.Amount,
			TenureMonths: s.Application.TenureMonths,
			AnnualRate:   s.Application.AnnualRate,
			EMI:          s.Application.EMI,
		}
	}
	if s.Decision != nil {
		p.Decision = &DecisionPayload{
			Outcome:     s.Decision.Outcome,
			Reasons:     append([]string(nil), s.Decision.Reasons...),
			Alternative: s.Decision.Alternative,
		}
	}
	return p
}

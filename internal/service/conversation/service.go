// Package conversation drives the loan-application dialogue: it parses each
// inbound message with the extractor, walks the finite-state flow, and asks
// the EMI module or the underwriting engine for numbers when the state calls
// for them.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fintechfusion/loan-officer/internal/config"
	"github.com/fintechfusion/loan-officer/internal/model/loan"
	"github.com/fintechfusion/loan-officer/internal/service/emi"
	"github.com/fintechfusion/loan-officer/internal/service/extract"
	"github.com/fintechfusion/loan-officer/internal/service/session"
	"github.com/fintechfusion/loan-officer/internal/service/underwrite"
)

var (
	ErrSessionIDRequired = errors.New("session id is required")
	ErrSessionNotFound   = errors.New("session not found")
	ErrNotApproved       = errors.New("sanction letter requires an approved application")
)

// IncomeExtractor reads a monthly income figure out of an uploaded document.
type IncomeExtractor interface {
	ExtractIncome(ctx context.Context, data []byte, filename string) (int64, error)
}

// Service encapsulates conversation state management for loan applications.
type Service struct {
	store   *session.Store
	engine  *underwrite.Engine
	income  IncomeExtractor
	loanCfg config.LoanConfig

	mu          sync.RWMutex
	transcripts map[string][]loan.Message
}

// NewService wires the orchestrator to its collaborators.
func NewService(store *session.Store, engine *underwrite.Engine, income IncomeExtractor, loanCfg config.LoanConfig) *Service {
	return &Service{
		store:       store,
		engine:      engine,
		income:      income,
		loanCfg:     loanCfg,
		transcripts: make(map[string][]loan.Message),
	}
}

// Send processes one chat message for the session, creating the session on
// first contact. The whole receive-extract-mutate-reply cycle runs under the
// session's lock, so near-simultaneous messages cannot lose updates.
func (s *Service) Send(_ context.Context, sessionID, message string) (loan.Reply, error) {
	if strings.TrimSpace(sessionID) == "" {
		return loan.Reply{}, ErrSessionIDRequired
	}

	var (
		reply   loan.Reply
		evalErr error
	)
	s.store.Do(sessionID, func(sess *loan.Session) {
		reply, evalErr = s.advance(sess, message)
		if evalErr == nil {
			// Recorded under the session lock so concurrent sends cannot
			// interleave their user/bot pairs in the transcript.
			s.record(sessionID, "user", message, "")
			s.record(sessionID, "bot", reply.Text, reply.State)
		}
	})
	if evalErr != nil {
		return loan.Reply{}, evalErr
	}
	return reply, nil
}

// Upload feeds an uploaded salary slip through income extraction and, on
// success, straight into underwriting. Extraction failure keeps the state
// where it was and asks the user to re-upload; the core never retries.
func (s *Service) Upload(ctx context.Context, sessionID, filename string, data []byte) (loan.Reply, error) {
	if strings.TrimSpace(sessionID) == "" {
		return loan.Reply{}, ErrSessionIDRequired
	}
	if _, ok := s.store.Snapshot(sessionID); !ok {
		return loan.Reply{}, ErrSessionNotFound
	}

	var (
		reply   loan.Reply
		evalErr error
	)
	s.store.Do(sessionID, func(sess *loan.Session) {
		reply, evalErr = s.processUpload(ctx, sess, filename, data)
		if evalErr == nil {
			s.record(sessionID, "user", fmt.Sprintf("[uploaded %s]", filename), "")
			s.record(sessionID, "bot", reply.Text, reply.State)
		}
	})
	if evalErr != nil {
		return loan.Reply{}, evalErr
	}
	return reply, nil
}

// SanctionRecord returns the finalized decision snapshot for letter
// rendering. Read-only; only an approved session yields one.
func (s *Service) SanctionRecord(_ context.Context, sessionID string) (loan.SanctionRecord, error) {
	snap, ok := s.store.Snapshot(sessionID)
	if !ok {
		return loan.SanctionRecord{}, ErrSessionNotFound
	}
	if snap.State != loan.StateApproved || snap.Decision == nil {
		return loan.SanctionRecord{}, ErrNotApproved
	}

	return loan.SanctionRecord{
		Reference:    uuid.NewString(),
		Name:         snap.Profile.Name,
		Phone:        snap.Profile.Phone,
		PAN:          snap.Profile.PAN,
		Amount:       snap.Application.Amount,
		TenureMonths: snap.Application.TenureMonths,
		AnnualRate:   snap.Application.AnnualRate,
		EMI:          snap.Application.EMI,
		CreditScore:  snap.Decision.CreditScore,
		IssuedAt:     time.Now().UTC(),
	}, nil
}

// Transcript returns stored messages for the session.
func (s *Service) Transcript(_ context.Context, sessionID string) ([]loan.Message, error) {
	if _, ok := s.store.Snapshot(sessionID); !ok {
		return nil, ErrSessionNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	messages := s.transcripts[sessionID]
	copied := make([]loan.Message, len(messages))
	copy(copied, messages)
	return copied, nil
}

// advance applies one message to the transition table. Unrecognized input
// re-issues the current prompt and never moves the state, so a bad parse can
// never corrupt a half-built application.
func (s *Service) advance(sess *loan.Session, message string) (loan.Reply, error) {
	in := extract.Parse(message, sess.State)

	// Return-to-menu is honored from any state.
	if in.Kind == extract.KindCommand && in.Command == extract.CommandMenu {
		return s.resetToMenu(sess), nil
	}

	switch sess.State {
	case loan.StateInit:
		sess.State = loan.StateAskName
		return s.reply(sess, "Hi, I'm your Digital Loan Officer.\nTo begin, may I know your full name?"), nil

	case loan.StateAskName:
		if in.Kind != extract.KindName {
			return s.reply(sess, "Please share your full name to proceed."), nil
		}
		sess.Profile.Name = in.Text
		sess.State = loan.StateAskPhone
		return s.reply(sess, fmt.Sprintf("Thanks, %s.\nPlease share your 10-digit mobile number.", sess.Profile.Name)), nil

	case loan.StateAskPhone:
		if in.Kind != extract.KindPhone {
			return s.reply(sess, "Please enter a valid 10-digit mobile number (digits only)."), nil
		}
		sess.Profile.Phone = in.Text
		sess.State = loan.StateAskLoanAmount
		return s.reply(sess, "Noted.\nHow much personal loan do you need? (e.g. 300000)"), nil

	case loan.StateAskLoanAmount:
		if in.Kind != extract.KindAmount {
			return s.reply(sess, "Please enter the loan amount you need, for example: 300000."), nil
		}
		return s.draftOffer(sess, in.Amount)

	case loan.StateSales:
		return s.negotiate(sess, in)

	case loan.StateAskSalary:
		if in.Kind != extract.KindIncome {
			return s.reply(sess, "Please enter your approximate monthly net salary in ₹, for example: 45000."), nil
		}
		sess.Profile.MonthlyIncome = in.Amount
		sess.State = loan.StateAskPAN
		return s.reply(sess, fmt.Sprintf(
			"Thanks. I have noted your monthly income as ₹%s.\nNow, please enter your PAN.",
			loan.FormatINR(in.Amount))), nil

	case loan.StateAskPAN:
		if in.Kind != extract.KindPAN {
			return s.reply(sess, "Please enter your PAN to continue."), nil
		}
		sess.Profile.PAN = in.Text
		sess.State = loan.StateWaitUpload
		return s.reply(sess, "PAN captured.\nNow please upload your latest salary slip (PDF) to run the eligibility check.\nYou can type 'menu' anytime to restart."), nil

	case loan.StateWaitUpload:
		return s.reply(sess, "Please upload your salary slip to run the eligibility check."), nil

	case loan.StateApproved:
		return s.reply(sess, "Your loan is approved.\nYou can download your sanction letter, or type 'menu' to start a new application."), nil

	case loan.StateRejected:
		return s.reply(sess, "Your profile was not approved for the requested loan.\nYou may try a lower amount or a longer tenure - type 'menu' to start over."), nil
	}

	return s.reply(sess, "Let's continue your loan journey. You can type 'menu' to restart anytime."), nil
}

// draftOffer stores the requested amount, applies the default tenure and
// fixed rate, and computes the first EMI. The amount is frozen from here on;
// negotiation only ever changes tenure.
func (s *Service) draftOffer(sess *loan.Session, amount int64) (loan.Reply, error) {
	installment, err := emi.Calculate(amount, s.loanCfg.AnnualRate, s.loanCfg.DefaultTenureMonths)
	if err != nil {
		return loan.Reply{}, err
	}

	sess.Application = loan.Application{
		Amount:       amount,
		TenureMonths: s.loanCfg.DefaultTenureMonths,
		AnnualRate:   s.loanCfg.AnnualRate,
		EMI:          installment,
	}
	sess.State = loan.StateSales

	text := s.offerText(sess, "Here is a draft offer based on your requested amount:") +
		"\n\nYou can change the tenure ('make it 36 months'), say 'emi too high' for a longer tenure,\nor reply 'ok' to proceed to your salary details."
	return s.reply(sess, text), nil
}

// negotiate handles the SALES loop: tenure changes, the EMI-too-high ladder,
// and acceptance.
func (s *Service) negotiate(sess *loan.Session, in extract.Input) (loan.Reply, error) {
	switch {
	case in.Kind == extract.KindTenure:
		if in.Tenure > s.loanCfg.MaxTenureMonths() {
			return s.reply(sess, fmt.Sprintf(
				"The longest tenure I can offer is %d months.\nPick a tenure up to that, or reply 'ok' to keep the current offer.",
				s.loanCfg.MaxTenureMonths())), nil
		}
		return s.retenure(sess, in.Tenure, "Updated offer with your requested tenure:")

	case in.Kind == extract.KindCommand && in.Command == extract.CommandEMITooHigh:
		next, ok := emi.NextStep(s.loanCfg.TenureLadder, sess.Application.TenureMonths)
		if !ok {
			return s.reply(sess, fmt.Sprintf(
				"The tenure is already at the maximum I can offer (%d months).\nTo reduce the EMI further you would need a lower loan amount - type 'menu' to start over.",
				s.loanCfg.MaxTenureMonths())), nil
		}
		return s.retenure(sess, next, "Understood. I've increased the tenure to help reduce the EMI:")

	case in.Kind == extract.KindCommand && in.Command == extract.CommandAccept:
		sess.State = loan.StateAskSalary
		text := s.offerText(sess, "Great, we will proceed with this offer:") +
			"\n\nNow, please tell me your approximate monthly net salary in ₹."
		return s.reply(sess, text), nil
	}

	return s.reply(sess, "To refine the loan offer, you can:\n- Change tenure: 'make it 36 months'\n- Say 'emi too high' to stretch the tenure\n- Or reply 'ok' to proceed to salary details."), nil
}

func (s *Service) retenure(sess *loan.Session, months int, heading string) (loan.Reply, error) {
	installment, err := emi.Calculate(sess.Application.Amount, sess.Application.AnnualRate, months)
	if err != nil {
		return loan.Reply{}, err
	}

	sess.Application.TenureMonths = months
	sess.Application.EMI = installment

	text := s.offerText(sess, heading) + "\n\nReply 'ok' to proceed to salary details, or adjust the tenure again."
	return s.reply(sess, text), nil
}

// processUpload mirrors the upload endpoint's contract: only the document
// stages accept a slip, and a decision, once made, stays made until a reset.
func (s *Service) processUpload(ctx context.Context, sess *loan.Session, filename string, data []byte) (loan.Reply, error) {
	switch sess.State {
	case loan.StateApproved, loan.StateRejected:
		return s.reply(sess, "A decision has already been made for this application. Type 'menu' to start a new one."), nil
	case loan.StateAskSalary, loan.StateAskPAN, loan.StateWaitUpload:
		// Document stages; proceed.
	default:
		return s.reply(sess, "Please complete the basic details (loan amount, salary & PAN) before uploading your salary slip."), nil
	}

	verified, err := s.income.ExtractIncome(ctx, data, filename)
	if err != nil {
		return s.reply(sess, "I could not read an income figure from that document.\nPlease upload a clearer salary slip (PDF with selectable text works best)."), nil
	}

	sess.UploadedIncome = verified
	declared := sess.Profile.MonthlyIncome
	if declared == 0 {
		sess.Profile.MonthlyIncome = verified
	}
	sess.State = loan.StateUnderwrite

	lines := []string{
		"Salary slip received.",
		fmt.Sprintf("Verified monthly income from salary slip: ₹%s.", loan.FormatINR(verified)),
	}
	if declared != 0 && declared != verified {
		lines = append(lines, fmt.Sprintf("(Declared earlier in chat: ₹%s - using the declared figure.)", loan.FormatINR(declared)))
	}
	preamble := strings.Join(lines, "\n")

	decisionReply, err := s.decide(sess)
	if err != nil {
		return loan.Reply{}, err
	}
	decisionReply.Text = preamble + "\n\n" + decisionReply.Text
	return decisionReply, nil
}

// decide runs the rule engine and lands the session in a terminal state. The
// orchestrator guarantees the engine's completeness precondition; a violation
// here is a programming error surfaced to the transport as such.
func (s *Service) decide(sess *loan.Session) (loan.Reply, error) {
	decision, err := s.engine.Evaluate(sess.Profile, sess.Application)
	if err != nil {
		return loan.Reply{}, err
	}
	sess.Decision = &decision

	if decision.Outcome == loan.OutcomeApproved {
		sess.State = loan.StateApproved
		text := s.offerText(sess, "Good news! Your profile is eligible for this loan.") + fmt.Sprintf(
			"\n- Derived Credit Score: %d\n- EMI-to-Income Ratio: %.1f%%\n\nYou can now download your sanction letter.",
			decision.CreditScore, decision.DTI*100)
		return s.reply(sess, text), nil
	}

	sess.State = loan.StateRejected
	lines := []string{"Unfortunately, your current profile doesn't meet our policy criteria."}
	for _, reason := range decision.Reasons {
		lines = append(lines, "- "+reason)
	}
	if decision.Alternative != "" {
		lines = append(lines, "", decision.Alternative)
	}
	lines = append(lines, "", "You can type 'menu' to try again with different figures.")
	return s.reply(sess, strings.Join(lines, "\n")), nil
}

// resetToMenu applies the configured reset policy: the application, decision,
// PAN and upload-derived income always clear; the profile survives unless
// the policy clears it too.
func (s *Service) resetToMenu(sess *loan.Session) loan.Reply {
	sess.Application = loan.Application{}
	sess.Decision = nil
	sess.Profile.PAN = ""
	sess.UploadedIncome = 0
	if s.loanCfg.ResetClearsProfile {
		sess.Profile = loan.Profile{}
	}

	switch {
	case sess.Profile.Name != "" && sess.Profile.Phone != "":
		sess.State = loan.StateAskLoanAmount
		return s.reply(sess, fmt.Sprintf(
			"You have returned to the main menu.\nWelcome back, %s - let's set up a new application.\n\nHow much personal loan do you need? (e.g. 300000)",
			sess.Profile.Name))
	case sess.Profile.Name != "":
		sess.State = loan.StateAskPhone
		return s.reply(sess, fmt.Sprintf(
			"You have returned to the main menu.\nWelcome back, %s.\n\nPlease share your 10-digit mobile number to continue.",
			sess.Profile.Name))
	}

	sess.State = loan.StateAskName
	return s.reply(sess, "You have returned to the main menu.\nHi again, I'm your Digital Loan Officer.\nLet's start fresh.\n\nWhat is your full name?")
}

func (s *Service) offerText(sess *loan.Session, heading string) string {
	app := sess.Application
	return fmt.Sprintf(
		"%s\n- Loan Amount: ₹%s\n- Tenure: %d months\n- Interest Rate: %.1f%% p.a.\n- Estimated EMI: ₹%s per month",
		heading, loan.FormatINR(app.Amount), app.TenureMonths, app.AnnualRate, loan.FormatINR(app.EMI))
}

func (s *Service) reply(sess *loan.Session, text string) loan.Reply {
	return loan.Reply{
		Text:    text,
		State:   sess.State,
		Payload: loan.PayloadFor(sess),
	}
}

func (s *Service) record(sessionID, sender, content string, state loan.State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transcripts[sessionID] = append(s.transcripts[sessionID], loan.Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Sender:    sender,
		Content:   content,
		State:     state,
		CreatedAt: time.Now().UTC(),
	})
}

package loan_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/fintechfusion/loan-officer/internal/config"
	loanHandler "github.com/fintechfusion/loan-officer/internal/handler/loan"
	loanModel "github.com/fintechfusion/loan-officer/internal/model/loan"
	"github.com/fintechfusion/loan-officer/internal/service/conversation"
	"github.com/fintechfusion/loan-officer/internal/service/sanction"
	"github.com/fintechfusion/loan-officer/internal/service/session"
	"github.com/fintechfusion/loan-officer/internal/service/underwrite"
	"github.com/fintechfusion/loan-officer/internal/service/verification"
)

func setupRouter() *chi.Mux {
	store := session.NewStore()
	engine := underwrite.NewEngine(config.UnderwritingConfig{
		MinMonthlyIncome: 25000,
		MinCreditScore:   680,
		MaxEMIRatio:      0.45,
		MaxLoanMultiple:  4,
	}, nil)
	convSvc := conversation.NewService(store, engine, verification.NewExtractor(), config.LoanConfig{
		AnnualRate:          14.0,
		DefaultTenureMonths: 24,
		TenureLadder:        []int{12, 24, 36, 48, 60},
	})
	handler := loanHandler.New(convSvc, sanction.NewRenderer(), 2<<20)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

type chatResponse struct {
	Reply     string            `json:"reply"`
	SessionID string            `json:"session_id"`
	State     loanModel.State   `json:"state"`
	Payload   loanModel.Payload `json:"payload"`
}

func postChat(t *testing.T, r *chi.Mux, sessionID, message string) chatResponse {
	t.Helper()

	payload, _ := json.Marshal(map[string]string{"session_id": sessionID, "message": message})
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("chat %q: expected 200, got %d (%s)", message, resp.Code, resp.Body.String())
	}

	var out chatResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid chat response: %v", err)
	}
	return out
}

func postUpload(t *testing.T, r *chi.Mux, sessionID, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	_ = writer.WriteField("session_id", sessionID)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile err: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write multipart err: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)
	return resp
}

func TestChatFirstContact(t *testing.T) {
	r := setupRouter()

	out := postChat(t, r, "web-1", "hi")
	if out.State != loanModel.StateAskName {
		t.Fatalf("expected ASK_NAME, got %s", out.State)
	}
	if out.Reply == "" {
		t.Fatal("expected a prompt in the reply")
	}
}

func TestChatMissingSessionID(t *testing.T) {
	r := setupRouter()

	payload := []byte(`{"message":"hi"}`)
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestChatInvalidBody(t *testing.T) {
	r := setupRouter()

	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestUploadUnknownSession(t *testing.T) {
	r := setupRouter()

	resp := postUpload(t, r, "ghost", "slip.txt", []byte("Net Salary 45,000"))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestFullFlowOverHTTP(t *testing.T) {
	r := setupRouter()
	id := "web-2"

	postChat(t, r, id, "hi")
	postChat(t, r, id, "Asha Rao")
	postChat(t, r, id, "9876543210")

	out := postChat(t, r, id, "300000")
	if out.State != loanModel.StateSales || out.Payload.Offer == nil {
		t.Fatalf("expected a SALES offer, got %+v", out)
	}

	postChat(t, r, id, "ok")
	postChat(t, r, id, "45000")
	postChat(t, r, id, "ABCDE1234F")

	resp := postUpload(t, r, id, "slip.txt", []byte("Acme Corp\nNet Salary: 45,000"))
	if resp.Code != http.StatusOK {
		t.Fatalf("upload: expected 200, got %d (%s)", resp.Code, resp.Body.String())
	}

	var uploadOut chatResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &uploadOut); err != nil {
		t.Fatalf("invalid upload response: %v", err)
	}
	if uploadOut.State != loanModel.StateApproved {
		t.Fatalf("expected APPROVED, got %s (%s)", uploadOut.State, uploadOut.Reply)
	}

	letter := httptest.NewRecorder()
	r.ServeHTTP(letter, httptest.NewRequest(http.MethodGet, "/sanction_letter/"+id, nil))
	if letter.Code != http.StatusOK {
		t.Fatalf("sanction letter: expected 200, got %d", letter.Code)
	}
	if ct := letter.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("unexpected content type: %s", ct)
	}
	if !bytes.HasPrefix(letter.Body.Bytes(), []byte("%PDF")) {
		t.Fatal("sanction letter is not a PDF")
	}
}

func TestSanctionLetterRequiresApproval(t *testing.T) {
	r := setupRouter()
	id := "web-3"

	postChat(t, r, id, "hi")

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/sanction_letter/"+id, nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestSanctionLetterUnknownSession(t *testing.T) {
	r := setupRouter()

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/sanction_letter/ghost", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestTranscriptEndpoint(t *testing.T) {
	r := setupRouter()
	id := "web-4"

	postChat(t, r, id, "hi")

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/transcript/"+id, nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var out struct {
		Messages []loanModel.Message `json:"messages"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid transcript response: %v", err)
	}
	if len(out.Messages) != 2 {
		t.Fatalf("expected 2 transcript messages, got %d", len(out.Messages))
	}
}

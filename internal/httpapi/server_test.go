package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/unglihq/ungli/internal/completion"
	"github.com/unglihq/ungli/internal/config"
	"github.com/unglihq/ungli/internal/interview"
	"github.com/unglihq/ungli/internal/policy"
	"github.com/unglihq/ungli/internal/research"
	"github.com/unglihq/ungli/internal/transcript"
)

func newTestServer(t *testing.T, client completion.Client) (*Server, *research.Runner) {
	t.Helper()
	store := transcript.NewInMemoryStore()
	rec := transcript.NewRecorder(store)
	engine := interview.NewEngine(client, policy.NewFilters(nil, 0), nil)

	researchStore := research.NewInMemoryStore()
	pipeline := research.NewPipeline(
		research.NewExtractor(client), stubTools{}, stubGeocoder{}, researchStore, client, 0)
	runner := research.NewRunner(pipeline, nil, 0)

	cfg := config.Config{AllowAnyOrigin: true}
	return New(cfg, store, rec, engine, runner, researchStore, nil), runner
}

type stubTools struct{}

func (stubTools) Search(ctx context.Context, query string, near *research.LatLng) ([]research.Place, error) {
	return []research.Place{{ID: "p1", Name: "Acme Compounds"}}, nil
}
func (stubTools) ScrapeWebsite(ctx context.Context, url string) (*research.WebsiteContent, error) {
	return &research.WebsiteContent{URL: url}, nil
}
func (stubTools) ScrapeForum(ctx context.Context, company string) ([]research.ForumPost, error) {
	return nil, nil
}
func (stubTools) SummarizeVideo(ctx context.Context, url string) (string, error) {
	return "", nil
}

type stubGeocoder struct{}

func (stubGeocoder) Geocode(ctx context.Context, location string) (*research.LatLng, error) {
	return nil, nil
}

func createConversation(t *testing.T, ts *httptest.Server) conversationResponse {
	t.Helper()
	res, err := http.Post(ts.URL+"/v1/conversations", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("POST /v1/conversations error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", res.StatusCode)
	}
	var created conversationResponse
	if err := json.NewDecoder(res.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	return created
}

func TestCreateConversationSeedsOpeningTurn(t *testing.T) {
	srv, _ := newTestServer(t, completion.NewMockClient())
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	created := createConversation(t, ts)
	if len(created.Turns) != 1 || created.Turns[0].Text != interview.OpeningQuestion {
		t.Fatalf("created turns = %+v, want opening question", created.Turns)
	}
}

func TestPostMessageReturnsNextQuestion(t *testing.T) {
	srv, _ := newTestServer(t, completion.NewMockClient("What does this product do, and what problem does it solve?"))
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	created := createConversation(t, ts)
	body := bytes.NewReader([]byte(`{"text":"Acme Widget 3000"}`))
	res, err := http.Post(ts.URL+"/v1/conversations/"+created.Conversation.ID+"/messages", "application/json", body)
	if err != nil {
		t.Fatalf("POST messages error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("post message status = %d, want 200", res.StatusCode)
	}

	var reply postMessageResponse
	if err := json.NewDecoder(res.Body).Decode(&reply); err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	if reply.AssistantTurn.Text != "What does this product do, and what problem does it solve?" {
		t.Fatalf("assistant turn = %q", reply.AssistantTurn.Text)
	}
	if !reply.AssistantTurn.CreatedAt.After(reply.UserTurn.CreatedAt) {
		t.Fatalf("assistant turn not after user turn")
	}

	listRes, err := http.Get(ts.URL + "/v1/conversations/" + created.Conversation.ID + "/messages")
	if err != nil {
		t.Fatalf("GET messages error = %v", err)
	}
	defer listRes.Body.Close()
	var listed struct {
		Turns []transcript.Turn `json:"turns"`
	}
	if err := json.NewDecoder(listRes.Body).Decode(&listed); err != nil {
		t.Fatalf("decode turns: %v", err)
	}
	if len(listed.Turns) != 3 {
		t.Fatalf("len(turns) = %d, want opening + user + assistant", len(listed.Turns))
	}
}

func TestPostMessageRejectsBlankText(t *testing.T) {
	srv, _ := newTestServer(t, completion.NewMockClient())
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	created := createConversation(t, ts)
	res, err := http.Post(ts.URL+"/v1/conversations/"+created.Conversation.ID+"/messages",
		"application/json", strings.NewReader(`{"text":"   "}`))
	if err != nil {
		t.Fatalf("POST messages error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", res.StatusCode)
	}
}

type gatewayFailClient struct{}

func (gatewayFailClient) Complete(ctx context.Context, messages []completion.Message) (string, error) {
	return "", &completion.GatewayError{Err: errors.New("connection refused")}
}

func TestPostMessageSubstitutesApologyOnGatewayFailure(t *testing.T) {
	srv, _ := newTestServer(t, gatewayFailClient{})
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	created := createConversation(t, ts)
	res, err := http.Post(ts.URL+"/v1/conversations/"+created.Conversation.ID+"/messages",
		"application/json", strings.NewReader(`{"text":"Acme Widget"}`))
	if err != nil {
		t.Fatalf("POST messages error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 with apology", res.StatusCode)
	}
	var reply postMessageResponse
	if err := json.NewDecoder(res.Body).Decode(&reply); err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	if reply.AssistantTurn.Text != interview.ApologyMessage {
		t.Fatalf("assistant turn = %q, want apology", reply.AssistantTurn.Text)
	}
}

func TestPostMessageUnknownConversation(t *testing.T) {
	srv, _ := newTestServer(t, completion.NewMockClient())
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	res, err := http.Post(ts.URL+"/v1/conversations/nope/messages",
		"application/json", strings.NewReader(`{"text":"hi"}`))
	if err != nil {
		t.Fatalf("POST messages error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", res.StatusCode)
	}
}

func TestChatInitIsIdempotent(t *testing.T) {
	srv, _ := newTestServer(t, completion.NewMockClient())
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	var first conversationResponse
	for i := 0; i < 2; i++ {
		res, err := http.Get(ts.URL + "/v1/chat/init?session_key=sess-1")
		if err != nil {
			t.Fatalf("GET chat/init error = %v", err)
		}
		var got conversationResponse
		if err := json.NewDecoder(res.Body).Decode(&got); err != nil {
			t.Fatalf("decode init response: %v", err)
		}
		res.Body.Close()
		if len(got.Turns) != 1 {
			t.Fatalf("init %d turns = %d, want 1", i, len(got.Turns))
		}
		if i == 0 {
			first = got
		} else if got.Conversation.ID != first.Conversation.ID {
			t.Fatalf("init not idempotent: %q then %q", first.Conversation.ID, got.Conversation.ID)
		}
	}
}

func TestChatWSRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t, completion.NewMockClient("Are you open to distributors?"))
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	created := createConversation(t, ts)
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/chat/ws?conversation_id=" + created.Conversation.ID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial ws: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]any{
		"type":            "user_message",
		"conversation_id": created.Conversation.ID,
		"text":            "Acme Widget 3000",
	}); err != nil {
		t.Fatalf("write ws: %v", err)
	}

	var reply map[string]any
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read ws: %v", err)
	}
	if reply["type"] != "assistant_message" {
		t.Fatalf("reply type = %v, want assistant_message", reply["type"])
	}
	if reply["text"] != "Are you open to distributors?" {
		t.Fatalf("reply text = %v", reply["text"])
	}
}

func TestResearchRunAndStatus(t *testing.T) {
	srv, runner := newTestServer(t, completion.NewMockClient(
		"coupling agent in decking tiles",
		`["decking tile compounder"]`,
	))
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	created := createConversation(t, ts)
	res, err := http.Post(ts.URL+"/v1/research/"+created.Conversation.ID+"/run", "application/json", nil)
	if err != nil {
		t.Fatalf("POST research run error = %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusAccepted {
		t.Fatalf("run status = %d, want 202", res.StatusCode)
	}
	runner.Wait()

	statusRes, err := http.Get(ts.URL + "/v1/research/" + created.Conversation.ID)
	if err != nil {
		t.Fatalf("GET research status error = %v", err)
	}
	defer statusRes.Body.Close()
	var status struct {
		Run     research.RunState `json:"run"`
		Results []research.Result `json:"results"`
	}
	if err := json.NewDecoder(statusRes.Body).Decode(&status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.Run.Status != research.RunStatusDone {
		t.Fatalf("run status = %q (%s), want done", status.Run.Status, status.Run.Error)
	}
	if len(status.Results) != 1 || len(status.Results[0].Companies) != 1 {
		t.Fatalf("results = %+v, want one application with one company", status.Results)
	}
}

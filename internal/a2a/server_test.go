package a2a

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoHandler struct {
	err error
}

func (h *echoHandler) HandleSendMessage(_ context.Context, req SendMessageRequest) (*Task, error) {
	if h.err != nil {
		return nil, h.err
	}
	part, err := DataPart(map[string]string{"echo": req.Message.Text()})
	if err != nil {
		return nil, err
	}
	return &Task{
		ID:        NewID(),
		ContextID: req.Message.ContextID,
		Status:    TaskStatus{State: TaskStateCompleted, Timestamp: time.Now()},
		Artifacts: []Artifact{{ArtifactID: NewID(), Name: "result", Parts: []Part{part}}},
	}, nil
}

func testCard() AgentCard {
	return AgentCard{
		Name:               "planner",
		Description:        "plans projects",
		Version:            "1.0.0",
		DefaultInputModes:  []string{"text/plain"},
		DefaultOutputModes: []string{"application/json"},
		Skills:             []AgentSkill{{ID: "plan", Name: "Plan", Tags: []string{"planning"}}},
	}
}

func TestServer_SendMessageRoundTrip(t *testing.T) {
	srv := httptest.NewServer(NewServer(testCard(), &echoHandler{}).Handler())
	defer srv.Close()

	client := NewHTTPClient(WithHTTPClient(srv.Client()))
	task, err := client.SendMessage(context.Background(), srv.URL, SendMessageRequest{
		Message: Message{MessageID: NewID(), ContextID: "ctx-1", Role: RoleUser, Parts: []Part{TextPart("hello")}},
	})
	require.NoError(t, err)
	assert.Equal(t, TaskStateCompleted, task.Status.State)
	assert.True(t, task.Status.State.IsTerminal())
	assert.Equal(t, "ctx-1", task.ContextID)

	data, err := task.FirstData()
	require.NoError(t, err)
	assert.JSONEq(t, `{"echo":"hello"}`, string(data))
}

func TestServer_HandlerErrorBecomesRPCError(t *testing.T) {
	srv := httptest.NewServer(NewServer(testCard(), &echoHandler{err: errors.New("model offline")}).Handler())
	defer srv.Close()

	client := NewHTTPClient(WithHTTPClient(srv.Client()))
	_, err := client.SendMessage(context.Background(), srv.URL, SendMessageRequest{
		Message: Message{MessageID: NewID(), Role: RoleUser, Parts: []Part{TextPart("x")}},
	})
	require.Error(t, err)

	var rpcErr *RPCError
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, ErrCodeInternal, rpcErr.Code)
	assert.Contains(t, rpcErr.Message, "model offline")
	assert.Equal(t, MethodSendMessage, rpcErr.Method)
}

func TestServer_UnknownMethod(t *testing.T) {
	srv := httptest.NewServer(NewServer(testCard(), &echoHandler{}).Handler())
	defer srv.Close()

	body, err := json.Marshal(JSONRPCRequest{JSONRPC: JSONRPCVersion, ID: 1, Method: "tasks/get"})
	require.NoError(t, err)

	resp, err := http.Post(srv.URL, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var rpcResp JSONRPCResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rpcResp))
	require.NotNil(t, rpcResp.Error)
	assert.Equal(t, ErrCodeMethodNotFound, rpcResp.Error.Code)
}

func TestServer_ParseError(t *testing.T) {
	srv := httptest.NewServer(NewServer(testCard(), &echoHandler{}).Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL, "application/json", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	defer resp.Body.Close()

	var rpcResp JSONRPCResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rpcResp))
	require.NotNil(t, rpcResp.Error)
	assert.Equal(t, ErrCodeParse, rpcResp.Error.Code)
}

func TestClient_DiscoverAgent(t *testing.T) {
	srv := httptest.NewServer(NewServer(testCard(), &echoHandler{}).Handler())
	defer srv.Close()

	client := NewHTTPClient(WithTimeout(5 * time.Second))
	card, err := client.DiscoverAgent(context.Background(), srv.URL+"/")
	require.NoError(t, err)
	assert.Equal(t, "planner", card.Name)
	require.Len(t, card.Skills, 1)
	assert.Equal(t, "plan", card.Skills[0].ID)
}

func TestClient_HTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewHTTPClient()
	_, err := client.SendMessage(context.Background(), srv.URL, SendMessageRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 502")

	_, err = client.DiscoverAgent(context.Background(), srv.URL)
	require.Error(t, err)
}

func TestServer_StartStop(t *testing.T) {
	s := NewServer(testCard(), &echoHandler{})
	require.NoError(t, s.Start(context.Background(), "127.0.0.1:0"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))

	var never Server
	assert.NoError(t, never.Stop(ctx))
}

func TestMessage_Helpers(t *testing.T) {
	data, err := DataPart(map[string]int{"n": 1})
	require.NoError(t, err)

	m := Message{Parts: []Part{TextPart("a"), TextPart("b"), data}}
	assert.Equal(t, "ab", m.Text())

	got, err := m.FirstData()
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":1}`, string(got))

	_, err = Message{Parts: []Part{TextPart("only")}}.FirstData()
	assert.ErrorIs(t, err, ErrNoData)

	_, err = (&Task{}).FirstData()
	assert.ErrorIs(t, err, ErrNoData)

	assert.NotEqual(t, NewID(), NewID())
	assert.False(t, TaskStateWorking.IsTerminal())
}

package session

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-deposit/pkg/logging"
	"github.com/goliatone/go-deposit/pkg/record"
	"github.com/goliatone/go-deposit/pkg/testsupport"
	"github.com/goliatone/go-deposit/pkg/transport"
)

var (
	schemaDoc = map[string]any{"type": "object", "properties": map[string]any{"title": map[string]any{"type": "string"}}}
	formDoc   = []any{"title"}
	endpoints = transport.Endpoints{Schema: "/s", Form: "/f"}
	baseArgs  = transport.RequestArgs{URL: "/api/1", Method: http.MethodGet}
)

func newController(t *testing.T, client transport.Client, options ...Option) *Controller {
	t.Helper()
	options = append([]Option{WithLogger(logging.Testing(t))}, options...)
	c := New(client, options...)
	t.Cleanup(c.Close)
	return c
}

func readyController(t *testing.T, client *testsupport.ScriptedClient, rec record.Record, options ...Option) *Controller {
	t.Helper()
	client.ReplyOK(http.MethodGet, "/s", schemaDoc).ReplyOK(http.MethodGet, "/f", formDoc)
	c := newController(t, client, options...)
	c.Initialize(baseArgs, endpoints, rec)
	c.Wait()
	if phase := c.State().Phase; phase != PhaseReady {
		t.Fatalf("phase = %s, want ready (fetch err: %v)", phase, c.State().FetchErr)
	}
	return c
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestInitialize_SeedsModelAndBecomesReady(t *testing.T) {
	client := testsupport.NewScriptedClient()
	c := readyController(t, client, record.Record{"title": "x"})

	state := c.State()
	if diff := cmp.Diff(record.Record{"title": "x"}, state.Model); diff != "" {
		t.Fatalf("model mismatch (-want +got):\n%s", diff)
	}
	if state.UI.Loading {
		t.Fatal("loading should be false once ready")
	}
	if diff := cmp.Diff(schemaDoc, state.Schema); diff != "" {
		t.Fatalf("schema mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(formDoc, state.Form); diff != "" {
		t.Fatalf("form mismatch (-want +got):\n%s", diff)
	}
	if state.Endpoints != endpoints {
		t.Fatalf("endpoints = %+v", state.Endpoints)
	}
}

func TestInitialize_CopiesRecordAndMergesArgs(t *testing.T) {
	client := testsupport.NewScriptedClient()
	client.ReplyOK(http.MethodGet, "/s", schemaDoc).ReplyOK(http.MethodGet, "/f", formDoc)
	c := newController(t, client)

	rec := record.Record{"title": "x", "nested": map[string]any{"k": "v"}}
	c.Initialize(transport.RequestArgs{URL: "/api/1", Params: map[string]any{"a": "1"}}, endpoints, rec)
	rec["title"] = "mutated"
	rec["nested"].(map[string]any)["k"] = "mutated"
	c.Wait()

	state := c.State()
	if diff := cmp.Diff(record.Record{"title": "x", "nested": map[string]any{"k": "v"}}, state.Model); diff != "" {
		t.Fatalf("model aliased caller record (-want +got):\n%s", diff)
	}
	wantArgs := transport.RequestArgs{URL: "/api/1", Method: http.MethodGet, Params: map[string]any{"a": "1"}}
	if diff := cmp.Diff(wantArgs, state.Args); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestInitialize_JoinWaitsForBothFetches(t *testing.T) {
	orders := map[string][2]string{
		"schema first": {"/s", "/f"},
		"form first":   {"/f", "/s"},
	}
	for name, order := range orders {
		t.Run(name, func(t *testing.T) {
			client := testsupport.NewScriptedClient()
			gates := map[string]chan<- transport.Result{
				"/s": client.Hold(http.MethodGet, "/s"),
				"/f": client.Hold(http.MethodGet, "/f"),
			}
			c := newController(t, client)
			c.Initialize(baseArgs, endpoints, record.Record{"title": "x"})

			if state := c.State(); state.Phase != PhaseLoading || !state.UI.Loading {
				t.Fatalf("expected loading before fetches resolve, got %s loading=%v", state.Phase, state.UI.Loading)
			}

			gates[order[0]] <- transport.Ok(transport.Response{Status: http.StatusOK, Data: "first"})
			time.Sleep(20 * time.Millisecond)
			if state := c.State(); state.Phase != PhaseLoading || !state.UI.Loading {
				t.Fatalf("ready after only %s resolved", order[0])
			}

			gates[order[1]] <- transport.Ok(transport.Response{Status: http.StatusOK, Data: "second"})
			c.Wait()
			if state := c.State(); state.Phase != PhaseReady || state.UI.Loading {
				t.Fatalf("expected ready after both fetches, got %s loading=%v", state.Phase, state.UI.Loading)
			}
		})
	}
}

func TestInitialize_FetchFailureStaysLoading(t *testing.T) {
	client := testsupport.NewScriptedClient()
	client.ReplyStatus(http.MethodGet, "/s", http.StatusInternalServerError, "boom").ReplyOK(http.MethodGet, "/f", formDoc)
	c := newController(t, client)
	c.Initialize(baseArgs, endpoints, record.Record{"title": "x"})
	c.Wait()

	state := c.State()
	if state.Phase != PhaseLoading || !state.UI.Loading {
		t.Fatalf("expected stuck loading, got %s loading=%v", state.Phase, state.UI.Loading)
	}
	var fetchErr *FetchError
	if !errors.As(state.FetchErr, &fetchErr) || fetchErr.Endpoint != "schema" {
		t.Fatalf("expected schema fetch error, got %v", state.FetchErr)
	}
	if failure := fetchErr.Failure(); failure == nil || failure.Response.Status != http.StatusInternalServerError {
		t.Fatalf("expected failure with 500 response, got %v", failure)
	}
	if err := c.Save(); !errors.Is(err, ErrNotReady) {
		t.Fatalf("save before ready: got %v, want ErrNotReady", err)
	}
}

func TestInitialize_MissingEndpoint(t *testing.T) {
	client := testsupport.NewScriptedClient()
	c := newController(t, client)
	c.Initialize(baseArgs, transport.Endpoints{Schema: "/s"}, nil)
	c.Wait()

	if err := c.State().FetchErr; !errors.Is(err, ErrEndpointMissing) {
		t.Fatalf("expected ErrEndpointMissing, got %v", err)
	}
}

func TestSave_SuccessThenFailure(t *testing.T) {
	client := testsupport.NewScriptedClient()
	c := readyController(t, client, record.Record{"title": "x"})

	client.ReplyOK(http.MethodPut, "/api/1", "Saved!")
	if err := c.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	c.Wait()
	state := c.State()
	if state.UI.Notify != "Saved!" || state.UI.Loading || state.UI.Error != nil {
		t.Fatalf("unexpected ui state after success: %+v", state.UI)
	}

	client.ReplyStatus(http.MethodPut, "/api/1", http.StatusBadRequest, map[string]any{"message": "invalid"})
	if err := c.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	c.Wait()
	state = c.State()
	if state.UI.Loading {
		t.Fatal("loading not cleared after failure")
	}
	if state.UI.Error == nil || state.UI.Error.Response == nil || state.UI.Error.Response.Status != http.StatusBadRequest {
		t.Fatalf("expected raw failure in ui error, got %+v", state.UI.Error)
	}
	if diff := cmp.Diff(map[string]any{"message": "invalid"}, state.UI.Error.Response.Data); diff != "" {
		t.Fatalf("failure body mismatch (-want +got):\n%s", diff)
	}
	if state.UI.Notify != "" {
		t.Fatalf("notify should stay cleared from action start, got %q", state.UI.Notify)
	}
	if state.Phase != PhaseReady {
		t.Fatalf("phase = %s, want ready", state.Phase)
	}

	requests := client.Requests()
	last := requests[len(requests)-1]
	if last.Method != http.MethodPut || last.URL != "/api/1" {
		t.Fatalf("unexpected request %+v", last)
	}
}

func TestAction_FailureDoesNotResetNotify(t *testing.T) {
	client := testsupport.NewScriptedClient()
	c := readyController(t, client, record.Record{"title": "x"})

	first := client.Hold(http.MethodPut, "/a")
	second := client.Hold(http.MethodPut, "/b")
	c.Broadcast(Action{Args: transport.RequestArgs{URL: "/a", Method: http.MethodPut}, OnSuccess: c.saved, OnError: c.failed})
	c.Broadcast(Action{Args: transport.RequestArgs{URL: "/b", Method: http.MethodPut}, OnSuccess: c.saved, OnError: c.failed})

	first <- transport.Ok(transport.Response{Status: http.StatusOK, Data: "Saved!"})
	eventually(t, func() bool { return c.State().UI.Notify == "Saved!" })
	if phase := c.State().Phase; phase != PhaseActing {
		t.Fatalf("phase = %s while an action is still in flight", phase)
	}

	second <- transport.FailErr(errors.New("boom"))
	c.Wait()

	state := c.State()
	if state.UI.Notify != "Saved!" {
		t.Fatalf("failure reset notify: %q", state.UI.Notify)
	}
	if state.UI.Error == nil || state.UI.Error.Err == nil || state.UI.Error.Err.Error() != "boom" {
		t.Fatalf("unexpected error %+v", state.UI.Error)
	}
	if state.UI.Loading || state.Phase != PhaseReady {
		t.Fatalf("expected settled session, got %s loading=%v", state.Phase, state.UI.Loading)
	}
}

func TestSave_RequestIsSnapshot(t *testing.T) {
	client := testsupport.NewScriptedClient()
	c := readyController(t, client, record.Record{"a": 1})

	gate := client.Hold(http.MethodPut, "/api/1")
	if err := c.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	if state := c.State(); !state.UI.Loading || state.Phase != PhaseActing {
		t.Fatalf("expected acting state, got %s loading=%v", state.Phase, state.UI.Loading)
	}
	c.UpdateModel(record.Record{"a": 2})
	gate <- transport.Ok(transport.Response{Status: http.StatusNoContent})
	c.Wait()

	var put *transport.RequestArgs
	for _, req := range client.Requests() {
		if req.Method == http.MethodPut {
			req := req
			put = &req
		}
	}
	if put == nil {
		t.Fatal("no PUT request issued")
	}
	if diff := cmp.Diff(record.Record{"a": 1}, put.Data); diff != "" {
		t.Fatalf("dispatched body changed (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(record.Record{"a": 2}, c.State().Model); diff != "" {
		t.Fatalf("model mismatch (-want +got):\n%s", diff)
	}
	if c.State().UI.Notify != "Success" {
		t.Fatalf("notify = %q, want default", c.State().UI.Notify)
	}
}

func TestSave_CanonicalObjectResponseReplacesModel(t *testing.T) {
	client := testsupport.NewScriptedClient()
	c := readyController(t, client, record.Record{"title": "x"})

	client.ReplyOK(http.MethodPut, "/api/1", map[string]any{"title": "x", "id": "42"})
	if err := c.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	c.Wait()

	state := c.State()
	if diff := cmp.Diff(record.Record{"title": "x", "id": "42"}, state.Model); diff != "" {
		t.Fatalf("model mismatch (-want +got):\n%s", diff)
	}
	if state.UI.Notify != "Success" {
		t.Fatalf("notify = %q", state.UI.Notify)
	}
}

func TestDelete_UsesDeleteWithoutBody(t *testing.T) {
	client := testsupport.NewScriptedClient()
	c := readyController(t, client, record.Record{"title": "x"}, WithMessages(Messages{DeleteSuccess: "Gone"}))

	client.ReplyOK(http.MethodDelete, "/api/1", nil)
	if err := c.Delete(); err != nil {
		t.Fatalf("delete: %v", err)
	}
	c.Wait()

	requests := client.Requests()
	last := requests[len(requests)-1]
	if last.Method != http.MethodDelete || last.Data != nil {
		t.Fatalf("unexpected delete request %+v", last)
	}
	state := c.State()
	if state.UI.Notify != "Gone" || state.UI.Loading {
		t.Fatalf("unexpected ui state %+v", state.UI)
	}
}

func TestAction_TransportErrorClearsLoading(t *testing.T) {
	client := testsupport.NewScriptedClient()
	c := readyController(t, client, record.Record{"title": "x"})

	client.Reply(http.MethodDelete, "/api/1", transport.FailErr(errors.New("connection refused")))
	if err := c.Delete(); err != nil {
		t.Fatalf("delete: %v", err)
	}
	c.Wait()

	state := c.State()
	if state.UI.Loading {
		t.Fatal("loading not cleared after transport error")
	}
	if state.UI.Error == nil || state.UI.Error.Response != nil {
		t.Fatalf("expected failure without response, got %+v", state.UI.Error)
	}
}

func TestAction_ContinuationsRunOnceWhileLoading(t *testing.T) {
	client := testsupport.NewScriptedClient()
	c := readyController(t, client, record.Record{"title": "x"})
	client.ReplyOK(http.MethodPost, "/api/1/actions/publish", "ok")

	var (
		successes, failures int
		loadingInCallback   bool
	)
	c.Broadcast(Action{
		Args: transport.RequestArgs{URL: "/api/1/actions/publish", Method: http.MethodPost},
		OnSuccess: func(resp transport.Response) {
			successes++
			loadingInCallback = c.State().UI.Loading
		},
		OnError: func(*transport.Failure) { failures++ },
	})
	c.Wait()

	if successes != 1 || failures != 0 {
		t.Fatalf("successes=%d failures=%d", successes, failures)
	}
	if !loadingInCallback {
		t.Fatal("loading should still be set while the continuation runs")
	}
	if c.State().UI.Loading {
		t.Fatal("loading not cleared after continuation")
	}
}

func TestAction_RejectedBeforeReady(t *testing.T) {
	client := testsupport.NewScriptedClient()
	c := newController(t, client)

	var got *transport.Failure
	c.Broadcast(Action{
		Args:    transport.RequestArgs{URL: "/api/1", Method: http.MethodPut},
		OnError: func(f *transport.Failure) { got = f },
	})
	if got == nil || !errors.Is(got, ErrNotReady) {
		t.Fatalf("expected ErrNotReady failure, got %v", got)
	}
	if len(client.Requests()) != 0 {
		t.Fatal("request issued before ready")
	}
	if err := c.Delete(); !errors.Is(err, ErrNotReady) {
		t.Fatalf("delete before ready: %v", err)
	}
}

func TestBus_IsScopedPerSession(t *testing.T) {
	client := testsupport.NewScriptedClient()
	first := newController(t, client)
	second := newController(t, client)
	if first.ID() == second.ID() {
		t.Fatal("session ids collide")
	}

	first.Initialize(baseArgs, endpoints, record.Record{"title": "x"})
	first.Wait()

	if second.State().Phase != PhaseUninitialized {
		t.Fatal("signal leaked across sessions")
	}
	if first.State().Phase != PhaseReady {
		t.Fatalf("first phase = %s", first.State().Phase)
	}
}

func TestClose_DropsRecordAndRejectsActions(t *testing.T) {
	client := testsupport.NewScriptedClient()
	c := readyController(t, client, record.Record{"title": "x"})
	c.Close()

	if err := c.Save(); !errors.Is(err, ErrClosed) {
		t.Fatalf("save after close: %v", err)
	}
	if !c.State().Model.IsEmpty() {
		t.Fatal("record kept after close")
	}
}

func TestNew_StartsLoadingUntilJoined(t *testing.T) {
	client := testsupport.NewScriptedClient()
	c := newController(t, client)

	state := c.State()
	if state.Phase != PhaseUninitialized || !state.UI.Loading {
		t.Fatalf("fresh session: %s loading=%v", state.Phase, state.UI.Loading)
	}
}

func TestNew_NilClientUsesHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/s":
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(schemaDoc)
		case r.Method == http.MethodGet && r.URL.Path == "/f":
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(formDoc)
		case r.Method == http.MethodPut && r.URL.Path == "/api/1":
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte("stored"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := newController(t, nil)
	c.Initialize(
		transport.RequestArgs{URL: server.URL + "/api/1"},
		transport.Endpoints{Schema: server.URL + "/s", Form: server.URL + "/f"},
		record.Record{"title": "x"},
	)
	c.Wait()
	if phase := c.State().Phase; phase != PhaseReady {
		t.Fatalf("phase = %s (fetch err: %v)", phase, c.State().FetchErr)
	}

	if err := c.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	c.Wait()
	state := c.State()
	if state.UI.Notify != "stored" || state.UI.Error != nil || state.UI.Loading {
		t.Fatalf("unexpected ui %+v", state.UI)
	}
}

func TestClose_WaitsForConcurrentActions(t *testing.T) {
	for i := 0; i < 100; i++ {
		client := testsupport.NewScriptedClient()
		c := readyController(t, client, record.Record{"title": "x"})

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := c.Save(); err != nil && !errors.Is(err, ErrClosed) {
				t.Errorf("save: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			c.Close()
		}()
		wg.Wait()
		c.Close()

		closed := c.State()
		time.Sleep(time.Millisecond)
		later := c.State()
		if later.UI != closed.UI || later.Phase != closed.Phase {
			t.Fatalf("iteration %d: session mutated after close: %+v -> %+v", i, closed.UI, later.UI)
		}
		if closed.Phase != PhaseUninitialized || closed.UI != (UIState{Loading: true}) || !closed.Model.IsEmpty() {
			t.Fatalf("iteration %d: unexpected closed state %+v", i, closed)
		}
	}
}

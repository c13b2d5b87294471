package deposit

import (
	"context"
	"net/http"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-deposit/pkg/blob"
	"github.com/goliatone/go-deposit/pkg/schema"
	"github.com/goliatone/go-deposit/pkg/session"
	"github.com/goliatone/go-deposit/pkg/testsupport"
)

func TestNewLoaderAndBinder(t *testing.T) {
	files := fstest.MapFS{"deposit.json": {Data: []byte(testsupport.TitleSchema)}}
	loader := NewLoader(schema.WithFileSystem(files))
	factory := &testsupport.StubFactory{AutoReady: true}
	b := NewBinder(loader, factory)

	region := testsupport.NewMemoryRegion("deposit", "fs://deposit.json", blob.MustEncode(map[string]any{"title": "x"}))
	binding, err := b.Attach(context.Background(), region)
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	if !binding.Ready() {
		t.Fatal("binding not ready")
	}
	factory.Last().Edit(map[string]any{"title": "y"})

	value, err := Decode(region.BlobText())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"title": "y"}, value); diff != "" {
		t.Fatalf("blob mismatch (-want +got):\n%s", diff)
	}
}

func TestNewSession(t *testing.T) {
	client := testsupport.NewScriptedClient()
	client.ReplyOK(http.MethodPut, "/api/1", "Saved!")
	s := NewSession(client)
	defer s.Close()

	s.Initialize(RequestArgs{URL: "/api/1"}, Endpoints{Schema: "/s", Form: "/f"}, Record{"title": "x"})
	s.Wait()
	if err := s.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	s.Wait()

	state := s.State()
	if state.Phase != session.PhaseReady || state.UI.Notify != "Saved!" {
		t.Fatalf("unexpected state %s %+v", state.Phase, state.UI)
	}
}

func TestEncodeEmpty(t *testing.T) {
	out, err := Encode(Record{})
	if err != nil || out != "" {
		t.Fatalf("Encode({}) = %q, %v", out, err)
	}
}

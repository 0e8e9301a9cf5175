package indexer

import (
	"encoding/json"
	"testing"

	"github.com/StaffPilotAI/staffpilot/engine/domain"
	"github.com/StaffPilotAI/staffpilot/pkg/natsutil"
	"github.com/nats-io/nats.go"
)

// deliver runs a raw NATS message through the same decode-and-handle path
// Subscribe wires up, without a live server.
func deliver(ix *Indexer, msg *nats.Msg) {
	natsutil.MsgHandler(ReindexHandler(ix, nil))(msg)
}

func TestReindexHandler_IndexesPublishedEmployee(t *testing.T) {
	store := &mockStore{}
	ix := newTestIndexer(&mockSource{}, store, 10)

	e := employees(1)[0]
	data, _ := json.Marshal(e)
	deliver(ix, &nats.Msg{Subject: ReindexSubject, Data: data})

	if len(store.batches) != 1 || len(store.batches[0]) != 1 {
		t.Fatalf("batches = %+v", store.batches)
	}
	if store.batches[0][0].ID != PointID(e.ID) {
		t.Errorf("point id = %q, want %q", store.batches[0][0].ID, PointID(e.ID))
	}
}

func TestReindexHandler_InvalidRecordIsDropped(t *testing.T) {
	store := &mockStore{}
	ix := newTestIndexer(&mockSource{}, store, 10)

	data, _ := json.Marshal(domain.Employee{ID: "x"})
	deliver(ix, &nats.Msg{Subject: ReindexSubject, Data: data})

	if len(store.batches) != 0 {
		t.Fatal("invalid record must not reach the store")
	}
}

func TestReindexHandler_MalformedMessageIsDropped(t *testing.T) {
	store := &mockStore{}
	ix := newTestIndexer(&mockSource{}, store, 10)

	deliver(ix, &nats.Msg{Subject: ReindexSubject, Data: []byte("{not json")})

	if len(store.batches) != 0 {
		t.Fatal("malformed message must not reach the store")
	}
}

func TestReindexHandler_StoreErrorDoesNotPanic(t *testing.T) {
	store := &mockStore{failNext: 100}
	ix := newTestIndexer(&mockSource{}, store, 10)

	data, _ := json.Marshal(employees(1)[0])
	deliver(ix, &nats.Msg{Subject: ReindexSubject, Data: data})

	if len(store.batches) != 0 {
		t.Fatal("failed upsert must not record a batch")
	}
}

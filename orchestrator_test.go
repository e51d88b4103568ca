package main

import (
	"errors"
	"testing"
)

// fakeBackend completes requests synchronously from canned data
type fakeBackend struct {
	calls    []string
	hosted   map[string]bool
	results  []SessionDescriptor
	createOK bool
	findOK   bool
	join     JoinResult
	connect  string

	createdWith SessionSettings
	searched    *SessionSearch
	joined      []string

	onCreate func(name string, ok bool)
	onFind   func(ok bool)
	onJoin   func(name string, result JoinResult)
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{hosted: make(map[string]bool), createOK: true, findOK: true, connect: "ws://host/play?ticket=t"}
}

func (b *fakeBackend) HasSession(name string) bool { return b.hosted[name] }

func (b *fakeBackend) DestroySession(name string) error {
	b.calls = append(b.calls, "destroy:"+name)
	delete(b.hosted, name)
	return nil
}

func (b *fakeBackend) CreateSession(name string, settings SessionSettings) error {
	b.calls = append(b.calls, "create:"+name)
	b.createdWith = settings
	if b.createOK {
		b.hosted[name] = true
	}
	if b.onCreate != nil {
		b.onCreate(name, b.createOK)
	}
	return nil
}

func (b *fakeBackend) FindSessions(search *SessionSearch) error {
	b.calls = append(b.calls, "find")
	b.searched = search
	if b.findOK {
		search.Results = b.results
	}
	if b.onFind != nil {
		b.onFind(b.findOK)
	}
	return nil
}

func (b *fakeBackend) JoinSession(name string, result SessionDescriptor) error {
	b.calls = append(b.calls, "join:"+result.ID)
	b.joined = append(b.joined, result.ID)
	if b.onJoin != nil {
		b.onJoin(name, b.join)
	}
	return nil
}

func (b *fakeBackend) GetResolvedConnectString(name string) (string, bool) {
	return b.connect, b.connect != ""
}

func (b *fakeBackend) OnCreateComplete(fn func(name string, ok bool))         { b.onCreate = fn }
func (b *fakeBackend) OnFindComplete(fn func(ok bool))                        { b.onFind = fn }
func (b *fakeBackend) OnJoinComplete(fn func(name string, result JoinResult)) { b.onJoin = fn }

type fakeTravel struct {
	server []string
	client []string
	modes  []TravelMode
}

func (t *fakeTravel) ServerTravel(route string) error {
	t.server = append(t.server, route)
	return nil
}

func (t *fakeTravel) ClientTravel(addr string, mode TravelMode) error {
	t.client = append(t.client, addr)
	t.modes = append(t.modes, mode)
	return nil
}

func newTestOrchestrator(cfg OrchestratorConfig) (*SessionOrchestrator, *fakeBackend, *fakeTravel, *recordingDiagnostics) {
	backend := newFakeBackend()
	travel := &fakeTravel{}
	diag := &recordingDiagnostics{}
	return NewSessionOrchestrator(cfg, backend, travel, diag), backend, travel, diag
}

func TestCreateGameSession(t *testing.T) {
	o, backend, travel, diag := newTestOrchestrator(OrchestratorConfig{})

	if err := o.CreateGameSession(); err != nil {
		t.Fatal(err)
	}
	if len(backend.calls) != 1 || backend.calls[0] != "create:"+DefaultSessionName {
		t.Errorf("unexpected calls %v", backend.calls)
	}
	s := backend.createdWith
	if s.LAN || !s.Advertise || !s.UsesPresence || s.MaxPublicConnections != 4 {
		t.Errorf("unexpected settings %+v", s)
	}
	if s.Attributes[AttrMatchType] != DefaultMatchType {
		t.Errorf("expected match type %s, got %s", DefaultMatchType, s.Attributes[AttrMatchType])
	}
	if len(travel.server) != 1 || travel.server[0] != DefaultMapRoute+"?listen" {
		t.Errorf("expected server travel to the map with ?listen, got %v", travel.server)
	}
	if diag.count("Created session: "+DefaultSessionName) != 1 {
		t.Errorf("expected created message, got %v", diag.notes)
	}
}

func TestCreateGameSessionReplacesExisting(t *testing.T) {
	o, backend, _, _ := newTestOrchestrator(OrchestratorConfig{})
	backend.hosted[DefaultSessionName] = true

	o.CreateGameSession()
	want := []string{"destroy:" + DefaultSessionName, "create:" + DefaultSessionName}
	if len(backend.calls) != 2 || backend.calls[0] != want[0] || backend.calls[1] != want[1] {
		t.Errorf("expected %v, got %v", want, backend.calls)
	}
}

func TestCreateGameSessionFailure(t *testing.T) {
	o, backend, travel, diag := newTestOrchestrator(OrchestratorConfig{})
	backend.createOK = false

	o.CreateGameSession()
	if len(travel.server) != 0 {
		t.Error("failed create must not travel")
	}
	if diag.count("Failed to create session!") != 1 {
		t.Errorf("expected failure message, got %v", diag.notes)
	}
}

func TestJoinGameSessionJoinsEveryMatch(t *testing.T) {
	o, backend, travel, diag := newTestOrchestrator(OrchestratorConfig{})
	backend.results = []SessionDescriptor{
		{ID: "s1", OwnerName: "a", Attributes: map[string]string{AttrMatchType: "TeamMach"}},
		{ID: "s2", OwnerName: "b", Attributes: map[string]string{AttrMatchType: "Other"}},
		{ID: "s3", OwnerName: "c", Attributes: map[string]string{AttrMatchType: "TeamMach"}},
	}

	if err := o.JoinGameSession(); err != nil {
		t.Fatal(err)
	}
	if backend.searched.MaxResults != 10000 || backend.searched.LAN || !backend.searched.Presence {
		t.Errorf("unexpected search %+v", backend.searched)
	}
	if len(backend.joined) != 2 || backend.joined[0] != "s1" || backend.joined[1] != "s3" {
		t.Errorf("expected joins s1 then s3, got %v", backend.joined)
	}
	if len(travel.client) != 2 {
		t.Errorf("expected a client travel per join, got %d", len(travel.client))
	}
	for _, m := range travel.modes {
		if m != TravelAbsolute {
			t.Errorf("expected absolute travel, got %s", m)
		}
	}
	if diag.count("Id: s2, User: b") != 1 {
		t.Errorf("every result should be logged, got %v", diag.notes)
	}
	if len(o.Results()) != 3 {
		t.Errorf("expected 3 results kept, got %d", len(o.Results()))
	}
}

func TestJoinFirstMatchOnly(t *testing.T) {
	o, backend, _, _ := newTestOrchestrator(OrchestratorConfig{JoinFirstMatchOnly: true})
	backend.results = []SessionDescriptor{
		{ID: "s1", Attributes: map[string]string{AttrMatchType: "TeamMach"}},
		{ID: "s2", Attributes: map[string]string{AttrMatchType: "TeamMach"}},
	}

	o.JoinGameSession()
	if len(backend.joined) != 1 || backend.joined[0] != "s1" {
		t.Errorf("expected only s1 joined, got %v", backend.joined)
	}
}

func TestJoinGameSessionNoMatches(t *testing.T) {
	o, backend, travel, _ := newTestOrchestrator(OrchestratorConfig{})
	backend.results = []SessionDescriptor{
		{ID: "s1", Attributes: map[string]string{AttrMatchType: "Other"}},
		{ID: "s2"},
	}

	o.JoinGameSession()
	if len(backend.joined) != 0 || len(travel.client) != 0 {
		t.Errorf("expected no joins, got %v", backend.joined)
	}
}

func TestFindFailure(t *testing.T) {
	o, backend, _, diag := newTestOrchestrator(OrchestratorConfig{})
	backend.findOK = false
	backend.results = []SessionDescriptor{{ID: "s1", Attributes: map[string]string{AttrMatchType: "TeamMach"}}}

	o.JoinGameSession()
	if len(backend.joined) != 0 {
		t.Error("failed find must not join")
	}
	if diag.count("Failed to find sessions!") != 1 {
		t.Errorf("expected failure message, got %v", diag.notes)
	}
}

func TestJoinFailureAndUnresolvedAddress(t *testing.T) {
	tests := []struct {
		name    string
		join    JoinResult
		connect string
	}{
		{"session full", JoinSessionFull, "ws://x"},
		{"unresolved address", JoinSuccess, ""},
	}
	for _, tt := range tests {
		o, backend, travel, _ := newTestOrchestrator(OrchestratorConfig{})
		backend.join = tt.join
		backend.connect = tt.connect
		backend.results = []SessionDescriptor{{ID: "s1", Attributes: map[string]string{AttrMatchType: "TeamMach"}}}

		o.JoinGameSession()
		if len(travel.client) != 0 {
			t.Errorf("%s: expected no travel, got %v", tt.name, travel.client)
		}
	}
}

// erroringBackend fails every request synchronously
type erroringBackend struct{ fakeBackend }

func (b *erroringBackend) FindSessions(search *SessionSearch) error {
	return errors.New("lobby down")
}

func TestJoinGameSessionSendError(t *testing.T) {
	backend := &erroringBackend{fakeBackend: *newFakeBackend()}
	diag := &recordingDiagnostics{}
	o := NewSessionOrchestrator(OrchestratorConfig{}, backend, &fakeTravel{}, diag)

	if err := o.JoinGameSession(); err == nil {
		t.Error("expected error")
	}
	if diag.count("Failed to find sessions") != 1 {
		t.Errorf("expected diagnostic, got %v", diag.notes)
	}
}

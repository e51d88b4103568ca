package main

import "fmt"

// listenOption is appended to the map route when a host starts its world
const listenOption = "?listen"

// OrchestratorConfig holds the constants of the session workflow
type OrchestratorConfig struct {
	SessionName          string
	MatchType            string
	MapRoute             string
	MaxPublicConnections int
	MaxSearchResults     int
	// JoinFirstMatchOnly stops after the first matching search result.
	// Off by default: every match is joined, in result order.
	JoinFirstMatchOnly bool
}

// SessionOrchestrator drives create, find, filter, join and travel against
// a SessionBackend. Completions arrive through callbacks registered right
// before each request.
type SessionOrchestrator struct {
	cfg     OrchestratorConfig
	backend SessionBackend
	travel  WorldTravel
	diag    Diagnostics
	search  *SessionSearch
}

// NewSessionOrchestrator creates an orchestrator
func NewSessionOrchestrator(cfg OrchestratorConfig, backend SessionBackend, travel WorldTravel, diag Diagnostics) *SessionOrchestrator {
	if cfg.SessionName == "" {
		cfg.SessionName = DefaultSessionName
	}
	if cfg.MatchType == "" {
		cfg.MatchType = DefaultMatchType
	}
	if cfg.MapRoute == "" {
		cfg.MapRoute = DefaultMapRoute
	}
	if cfg.MaxPublicConnections <= 0 {
		cfg.MaxPublicConnections = 4
	}
	if cfg.MaxSearchResults <= 0 {
		cfg.MaxSearchResults = DefaultSearchResults
	}
	if diag == nil {
		diag = nopDiagnostics{}
	}
	return &SessionOrchestrator{cfg: cfg, backend: backend, travel: travel, diag: diag}
}

// CreateGameSession hosts a new advertised session under the well-known
// name, replacing any previous one. On success the host travels to the map.
func (o *SessionOrchestrator) CreateGameSession() error {
	name := o.cfg.SessionName
	if o.backend.HasSession(name) {
		if err := o.backend.DestroySession(name); err != nil {
			notifyf(o.diag, SeverityAlert, "Failed to destroy session %s: %v", name, err)
			return err
		}
	}

	o.backend.OnCreateComplete(o.onCreateComplete)
	settings := SessionSettings{
		MaxPublicConnections: o.cfg.MaxPublicConnections,
		LAN:                  false,
		Advertise:            true,
		UsesPresence:         true,
		Attributes:           map[string]string{AttrMatchType: o.cfg.MatchType},
	}
	if err := o.backend.CreateSession(name, settings); err != nil {
		notifyf(o.diag, SeverityAlert, "Failed to create session %s: %v", name, err)
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (o *SessionOrchestrator) onCreateComplete(name string, ok bool) {
	if !ok {
		notifyf(o.diag, SeverityAlert, "Failed to create session!")
		return
	}
	notifyf(o.diag, SeverityInfo, "Created session: %s", name)
	if err := o.travel.ServerTravel(o.cfg.MapRoute + listenOption); err != nil {
		notifyf(o.diag, SeverityAlert, "Server travel failed: %v", err)
	}
}

// JoinGameSession searches for sessions and joins the ones advertising
// the configured match type
func (o *SessionOrchestrator) JoinGameSession() error {
	o.backend.OnFindComplete(o.onFindComplete)
	o.search = &SessionSearch{
		MaxResults: o.cfg.MaxSearchResults,
		LAN:        false,
		Presence:   true,
	}
	if err := o.backend.FindSessions(o.search); err != nil {
		notifyf(o.diag, SeverityAlert, "Failed to find sessions: %v", err)
		return fmt.Errorf("find sessions: %w", err)
	}
	return nil
}

func (o *SessionOrchestrator) onFindComplete(ok bool) {
	if !ok {
		notifyf(o.diag, SeverityAlert, "Failed to find sessions!")
		return
	}
	if o.search == nil {
		return
	}
	for _, result := range o.search.Results {
		matchType := result.Attributes[AttrMatchType]
		notifyf(o.diag, SeverityInfo, "Id: %s, User: %s", result.ID, result.OwnerName)
		if matchType != o.cfg.MatchType {
			continue
		}
		notifyf(o.diag, SeverityInfo, "Joining match type: %s", matchType)
		o.joinSession(result)
		if o.cfg.JoinFirstMatchOnly {
			return
		}
	}
}

func (o *SessionOrchestrator) joinSession(result SessionDescriptor) {
	o.backend.OnJoinComplete(o.onJoinComplete)
	if err := o.backend.JoinSession(o.cfg.SessionName, result); err != nil {
		notifyf(o.diag, SeverityAlert, "Failed to join session %s: %v", result.ID, err)
	}
}

func (o *SessionOrchestrator) onJoinComplete(name string, result JoinResult) {
	if result != JoinSuccess {
		notifyf(o.diag, SeverityAlert, "Failed to join session: %s", result)
		return
	}
	addr, ok := o.backend.GetResolvedConnectString(o.cfg.SessionName)
	if !ok {
		notifyf(o.diag, SeverityAlert, "Could not resolve address for %s", o.cfg.SessionName)
		return
	}
	notifyf(o.diag, SeverityInfo, "Connect string: %s", addr)
	if err := o.travel.ClientTravel(addr, TravelAbsolute); err != nil {
		notifyf(o.diag, SeverityAlert, "Client travel failed: %v", err)
	}
}

// Results returns the results of the latest search
func (o *SessionOrchestrator) Results() []SessionDescriptor {
	if o.search == nil {
		return nil
	}
	return o.search.Results
}

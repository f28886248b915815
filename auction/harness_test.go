package auction

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tycoonhq/tycoon-backend/config"
	"github.com/tycoonhq/tycoon-backend/models"
)

// In-memory fakes for the engine's collaborators.

type memStore struct {
	mu        sync.Mutex
	rows      map[string]*Auction
	log       []logEntry
	failSaves int
}

type logEntry struct {
	auctionID string
	eventType string
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[string]*Auction)}
}

func (s *memStore) Save(a *Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSaves > 0 {
		s.failSaves--
		return errors.New("store unavailable")
	}
	s.rows[a.ID] = a.Clone()
	return nil
}

func (s *memStore) Get(id string) (*Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.rows[id]
	if !ok {
		return nil, nil
	}
	return a.Clone(), nil
}

func (s *memStore) Active(gameID uint) ([]*Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Auction
	for _, a := range s.rows {
		if a.GameID == gameID && a.Status == models.AuctionActive {
			out = append(out, a.Clone())
		}
	}
	return out, nil
}

func (s *memStore) AllActive() ([]*Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Auction
	for _, a := range s.rows {
		if a.Status == models.AuctionActive {
			out = append(out, a.Clone())
		}
	}
	return out, nil
}

func (s *memStore) UnsettledCompleted() ([]*Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Auction
	for _, a := range s.rows {
		if a.Status == models.AuctionCompleted && !a.Settled {
			out = append(out, a.Clone())
		}
	}
	return out, nil
}

func (s *memStore) MarkSettled(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.rows[id]; ok {
		a.Settled = true
	}
	return nil
}

func (s *memStore) AppendEvent(auctionID, eventType string, playerID *uint, amount *float64, detail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = append(s.log, logEntry{auctionID: auctionID, eventType: eventType})
	return nil
}

func (s *memStore) logCount(auctionID, eventType string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.log {
		if e.auctionID == auctionID && e.eventType == eventType {
			n++
		}
	}
	return n
}

type fakePlayers struct {
	mu      sync.Mutex
	players map[uint]PlayerSnapshot
	rosters map[uint][]uint
}

func (f *fakePlayers) Player(id uint) (PlayerSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.players[id]
	if !ok {
		return PlayerSnapshot{}, errors.New("player not found")
	}
	return p, nil
}

func (f *fakePlayers) ActivePlayers(gameID uint) ([]uint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	roster, ok := f.rosters[gameID]
	if !ok {
		return nil, errors.New("game not found")
	}
	return append([]uint(nil), roster...), nil
}

func (f *fakePlayers) setBalance(id uint, balance float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.players[id] = PlayerSnapshot{ID: id, Balance: balance}
}

type fakeProps struct {
	mu         sync.Mutex
	props      map[uint]PropertySnapshot
	portfolios map[uint]PortfolioSnapshot // keyed by player id
}

func (f *fakeProps) Property(id uint) (PropertySnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.props[id]
	if !ok {
		return PropertySnapshot{}, errors.New("property not found")
	}
	return p, nil
}

func (f *fakeProps) AssignOwner(propertyID, playerID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.props[propertyID]
	if !ok {
		return errors.New("property not found")
	}
	p.OwnerID = &playerID
	f.props[propertyID] = p
	return nil
}

func (f *fakeProps) SetInAuction(propertyID uint, inAuction bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.props[propertyID]
	if !ok {
		return errors.New("property not found")
	}
	p.InAuction = inAuction
	f.props[propertyID] = p
	return nil
}

func (f *fakeProps) Portfolio(playerID, propertyID uint) (PortfolioSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.portfolios[playerID], nil
}

func (f *fakeProps) owner(propertyID uint) *uint {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.props[propertyID].OwnerID
}

type transferRec struct {
	payer, payee uint
	amount       float64
	memo         string
}

type fakeLedger struct {
	mu        sync.Mutex
	transfers []transferRec
	memos     map[string]bool
	failures  int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{memos: make(map[string]bool)}
}

func (l *fakeLedger) Transfer(payerID, payeeID uint, amount float64, memo string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failures > 0 {
		l.failures--
		return errors.New("ledger unavailable")
	}
	if l.memos[memo] {
		return nil // idempotent replay
	}
	l.memos[memo] = true
	l.transfers = append(l.transfers, transferRec{payer: payerID, payee: payeeID, amount: amount, memo: memo})
	return nil
}

func (l *fakeLedger) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.transfers)
}

func (l *fakeLedger) last() transferRec {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.transfers[len(l.transfers)-1]
}

type fakeSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *fakeSink) Publish(gameID uint, event Event) {
	s.mu.Lock()
	s.events = append(s.events, event)
	s.mu.Unlock()
}

func (s *fakeSink) byType(eventType string) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Event
	for _, ev := range s.events {
		if ev.Type == eventType {
			out = append(out, ev)
		}
	}
	return out
}

type testEnv struct {
	eng     *Engine
	store   *memStore
	players *fakePlayers
	props   *fakeProps
	ledger  *fakeLedger
	sink    *fakeSink
}

const (
	testGame     uint = 1
	testProperty uint = 10
	playerA      uint = 101
	playerB      uint = 102
	playerC      uint = 103
)

func testConfig() config.AuctionConfig {
	return config.AuctionConfig{
		DefaultDuration:    120 * time.Second,
		EmergencyDuration:  60 * time.Second,
		AntiSnipeThreshold: 30 * time.Second,
		AntiSnipeExtension: 10 * time.Second,
		SweepInterval:      time.Minute,
		BotIncrement:       10,
	}
}

// newTestEnv wires an engine to fakes: game 1 with players A, B, C
// (balance 1000 each) and an unowned $400 street property.
func newTestEnv() *testEnv {
	env := &testEnv{
		store: newMemStore(),
		players: &fakePlayers{
			players: map[uint]PlayerSnapshot{
				playerA: {ID: playerA, Balance: 1000},
				playerB: {ID: playerB, Balance: 1000},
				playerC: {ID: playerC, Balance: 1000},
			},
			rosters: map[uint][]uint{
				testGame: {playerA, playerB, playerC},
			},
		},
		props: &fakeProps{
			props: map[uint]PropertySnapshot{
				testProperty: {
					ID:         testProperty,
					GameID:     testGame,
					Name:       "Boardwalk",
					Kind:       models.PropertyStreet,
					ColorGroup: "dark_blue",
					ListPrice:  400,
				},
			},
			portfolios: map[uint]PortfolioSnapshot{},
		},
		ledger: newFakeLedger(),
		sink:   &fakeSink{},
	}
	env.eng = NewEngine(testConfig(), env.store, env.players, env.props, env.ledger, env.sink, zap.NewNop().Sugar())
	return env
}

func durationPtr(d time.Duration) *time.Duration { return &d }
func float64Ptr(f float64) *float64              { return &f }
func uintPtr(v uint) *uint                       { return &v }

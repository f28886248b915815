package auction

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/tycoonhq/tycoon-backend/models"
)

func addProperty(env *testEnv, id uint, name string, price float64) {
	env.props.props[id] = PropertySnapshot{
		ID: id, GameID: testGame, Name: name,
		Kind: models.PropertyStreet, ListPrice: price,
	}
}

func currentSequenceAuction(t *testing.T, env *testEnv) *Auction {
	t.Helper()
	active, err := env.eng.ActiveAuctions(testGame)
	if err != nil {
		t.Fatalf("ActiveAuctions: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("active auctions = %d, want 1", len(active))
	}
	return active[0]
}

func TestSequentialAuctionsAdvanceOnEnded(t *testing.T) {
	env := newTestEnv()
	addProperty(env, 11, "Park Place", 350)
	addProperty(env, 12, "Marvin Gardens", 280)

	seq, err := StartSequentialAuctions(env.eng, testGame, []QueueItem{
		{PropertyID: testProperty},
		{PropertyID: 11, StartingBid: float64Ptr(100)},
		{PropertyID: 12},
	}, env.eng.log)
	if err != nil {
		t.Fatalf("StartSequentialAuctions: %v", err)
	}

	// First property is live immediately.
	first := currentSequenceAuction(t, env)
	if first.PropertyID != testProperty {
		t.Fatalf("first auction property = %d, want %d", first.PropertyID, testProperty)
	}
	if got := len(env.sink.byType(EventSequentialNext)); got != 1 {
		t.Fatalf("sequential_next events = %d, want 1", got)
	}

	// Ending the first starts the second, with the override applied.
	_ = env.eng.PlaceBid(first.ID, playerA, 250)
	if err := env.eng.EndAuction(first.ID, "expired"); err != nil {
		t.Fatalf("EndAuction: %v", err)
	}

	second := currentSequenceAuction(t, env)
	if second.PropertyID != 11 {
		t.Fatalf("second auction property = %d, want 11", second.PropertyID)
	}
	if second.StartingBid != 100 {
		t.Errorf("starting bid override = %.2f, want 100", second.StartingBid)
	}

	completed, pending := seq.Progress()
	if len(completed) != 1 || completed[0] != testProperty {
		t.Errorf("completed = %v, want [%d]", completed, testProperty)
	}
	if len(pending) != 1 || pending[0] != 12 {
		t.Errorf("pending = %v, want [12]", pending)
	}

	// Drain the rest of the queue.
	_ = env.eng.EndAuction(second.ID, "expired")
	third := currentSequenceAuction(t, env)
	if third.PropertyID != 12 {
		t.Fatalf("third auction property = %d, want 12", third.PropertyID)
	}
	_ = env.eng.EndAuction(third.ID, "expired")

	if !seq.Done() {
		t.Error("sequence not marked completed")
	}
	if got := len(env.sink.byType(EventSequentialCompleted)); got != 1 {
		t.Errorf("sequential_completed events = %d, want 1", got)
	}
	if got := len(env.sink.byType(EventSequentialNext)); got != 3 {
		t.Errorf("sequential_next events = %d, want 3", got)
	}
}

func TestSequentialAuctionsAdvanceOnCancelled(t *testing.T) {
	env := newTestEnv()
	addProperty(env, 11, "Park Place", 350)

	seq, err := StartSequentialAuctions(env.eng, testGame, []QueueItem{
		{PropertyID: testProperty},
		{PropertyID: 11},
	}, env.eng.log)
	if err != nil {
		t.Fatalf("StartSequentialAuctions: %v", err)
	}

	first := currentSequenceAuction(t, env)
	if err := env.eng.CancelAuction(first.ID, "owner reconsidered"); err != nil {
		t.Fatalf("CancelAuction: %v", err)
	}

	second := currentSequenceAuction(t, env)
	if second.PropertyID != 11 {
		t.Fatalf("queue did not advance past a cancelled auction")
	}
	if seq.Done() {
		t.Error("sequence completed early")
	}
}

func TestSequentialAuctionsSkipUnauctionableProperties(t *testing.T) {
	env := newTestEnv()
	addProperty(env, 11, "Park Place", 350)
	// Property 12 is already owned; a standard auction refuses it.
	env.props.props[12] = PropertySnapshot{
		ID: 12, GameID: testGame, Name: "Marvin Gardens", ListPrice: 280, OwnerID: uintPtr(playerA),
	}

	seq, err := StartSequentialAuctions(env.eng, testGame, []QueueItem{
		{PropertyID: testProperty},
		{PropertyID: 12},
		{PropertyID: 11},
	}, env.eng.log)
	if err != nil {
		t.Fatalf("StartSequentialAuctions: %v", err)
	}

	first := currentSequenceAuction(t, env)
	_ = env.eng.EndAuction(first.ID, "expired")

	// The owned property was skipped; 11 is live.
	second := currentSequenceAuction(t, env)
	if second.PropertyID != 11 {
		t.Fatalf("auction property = %d, want 11 (12 skipped)", second.PropertyID)
	}

	_ = env.eng.EndAuction(second.ID, "expired")
	if !seq.Done() {
		t.Error("sequence not completed after skipping")
	}
}

func TestSequentialAuctionsEmptyQueueRejected(t *testing.T) {
	env := newTestEnv()
	_, err := StartSequentialAuctions(env.eng, testGame, nil, env.eng.log)
	if got := KindOf(err); got != KindInvalid {
		t.Fatalf("expected invalid, got %q", got)
	}
}

func TestSequentialCoordinatorUnsubscribesWhenDone(t *testing.T) {
	env := newTestEnv()
	base := hookCount(env.eng)

	// A long-running server starts many sequences; a drained sequence
	// must not keep receiving every engine event.
	for i := 0; i < 5; i++ {
		seq, err := StartSequentialAuctions(env.eng, testGame, []QueueItem{{PropertyID: testProperty}}, env.eng.log)
		if err != nil {
			t.Fatalf("StartSequentialAuctions: %v", err)
		}
		a := currentSequenceAuction(t, env)
		if err := env.eng.EndAuction(a.ID, "expired"); err != nil {
			t.Fatalf("EndAuction: %v", err)
		}
		if !seq.Done() {
			t.Fatalf("sequence %d not completed", i)
		}
		// Property ownership resets so the next sequence can re-auction it.
		env.props.props[testProperty] = PropertySnapshot{
			ID: testProperty, GameID: testGame, Name: "Boardwalk",
			Kind: models.PropertyStreet, ListPrice: 400,
		}
	}

	if got := hookCount(env.eng); got != base {
		t.Errorf("hooks = %d after 5 completed sequences, want %d", got, base)
	}
}

func TestSequentialAuctionsSurviveInstantExpiry(t *testing.T) {
	env := newTestEnv()
	cfg := testConfig()
	cfg.DefaultDuration = time.Millisecond // expiry can beat the coordinator's bookkeeping
	cfg.AntiSnipeThreshold = 0
	env.eng = NewEngine(cfg, env.store, env.players, env.props, env.ledger, env.sink, zap.NewNop().Sugar())

	addProperty(env, 11, "Park Place", 350)
	addProperty(env, 12, "Marvin Gardens", 280)

	seq, err := StartSequentialAuctions(env.eng, testGame, []QueueItem{
		{PropertyID: testProperty},
		{PropertyID: 11},
		{PropertyID: 12},
	}, env.eng.log)
	if err != nil {
		t.Fatalf("StartSequentialAuctions: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for !seq.Done() {
		if time.Now().After(deadline) {
			completed, pending := seq.Progress()
			t.Fatalf("sequence stalled: completed=%v pending=%v", completed, pending)
		}
		time.Sleep(2 * time.Millisecond)
	}

	completed, _ := seq.Progress()
	if len(completed) != 3 {
		t.Errorf("completed = %v, want all 3 properties", completed)
	}
	if got := len(env.sink.byType(EventSequentialCompleted)); got != 1 {
		t.Errorf("sequential_completed events = %d, want 1", got)
	}
}

func TestSequentialCoordinatorIgnoresForeignAuctions(t *testing.T) {
	env := newTestEnv()
	addProperty(env, 11, "Park Place", 350)
	addProperty(env, 12, "Marvin Gardens", 280)

	seq, err := StartSequentialAuctions(env.eng, testGame, []QueueItem{
		{PropertyID: testProperty},
		{PropertyID: 11},
	}, env.eng.log)
	if err != nil {
		t.Fatalf("StartSequentialAuctions: %v", err)
	}

	// An unrelated auction ending must not advance the queue.
	foreign, err := env.eng.StartAuction(testGame, 12, models.AuctionStandard, StartOptions{})
	if err != nil {
		t.Fatalf("StartAuction: %v", err)
	}
	_ = env.eng.EndAuction(foreign.ID, "expired")

	completed, pending := seq.Progress()
	if len(completed) != 0 {
		t.Errorf("completed = %v, want none", completed)
	}
	if len(pending) != 1 {
		t.Errorf("pending = %v, want [11]", pending)
	}
}

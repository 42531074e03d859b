// ABOUTME: Tests for the session record store
// ABOUTME: Covers seeding, id assignment, ordering, and the error taxonomy
package store

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/atstrading/dealrecap/internal/models"
	"github.com/atstrading/dealrecap/internal/session"
)

func newSeededStore(t *testing.T) (*Store, *session.Memory) {
	t.Helper()
	backend := session.NewMemory()
	st := New(backend)
	if err := st.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	return st, backend
}

func TestInitialize_SeedsAllCollections(t *testing.T) {
	st, _ := newSeededStore(t)

	deals, err := st.Deals()
	if err != nil {
		t.Fatalf("Deals() error = %v", err)
	}
	if len(deals) != 2 {
		t.Errorf("got %d seeded deals, want 2", len(deals))
	}

	users, err := st.Users()
	if err != nil {
		t.Fatalf("Users() error = %v", err)
	}
	if len(users) != 4 {
		t.Errorf("got %d seeded users, want 4", len(users))
	}

	done, err := st.Initialized()
	if err != nil {
		t.Fatalf("Initialized() error = %v", err)
	}
	if !done {
		t.Error("Initialized() = false after seeding")
	}
}

func TestInitialize_Idempotent(t *testing.T) {
	st, _ := newSeededStore(t)

	// Mutate, then initialize again: data must survive.
	if _, err := st.SaveDeal(models.Deal{CounterPartyCompany: "Vitol", Office: "ATL", Desk: "gasoline", Product: "gasoline"}); err != nil {
		t.Fatalf("SaveDeal() error = %v", err)
	}
	if err := st.Initialize(); err != nil {
		t.Fatalf("second Initialize() error = %v", err)
	}

	deals, err := st.Deals()
	if err != nil {
		t.Fatalf("Deals() error = %v", err)
	}
	if len(deals) != 3 {
		t.Errorf("got %d deals after re-initialize, want 3", len(deals))
	}
}

func TestReset_ClearsAndAllowsReseed(t *testing.T) {
	st, _ := newSeededStore(t)

	if _, err := st.SaveConversation(models.Conversation{Conversation: "scratch"}); err != nil {
		t.Fatalf("SaveConversation() error = %v", err)
	}
	if err := st.Reset(); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	done, err := st.Initialized()
	if err != nil {
		t.Fatalf("Initialized() error = %v", err)
	}
	if done {
		t.Error("Initialized() = true after reset")
	}

	if err := st.Initialize(); err != nil {
		t.Fatalf("reseed Initialize() error = %v", err)
	}
	conversations, err := st.Conversations()
	if err != nil {
		t.Fatalf("Conversations() error = %v", err)
	}
	if len(conversations) != 1 {
		t.Errorf("got %d conversations after reseed, want the 1 fixture row", len(conversations))
	}
}

func TestSaveDeal_IDMonotonicity(t *testing.T) {
	st, _ := newSeededStore(t)

	first, err := st.SaveDeal(models.Deal{CounterPartyCompany: "Vitol", Office: "ATS", Desk: "crude", Product: "crude"})
	if err != nil {
		t.Fatalf("SaveDeal() error = %v", err)
	}
	second, err := st.SaveDeal(models.Deal{CounterPartyCompany: "Glencore", Office: "ATS", Desk: "crude", Product: "crude"})
	if err != nil {
		t.Fatalf("SaveDeal() error = %v", err)
	}
	if second.ID != first.ID+1 {
		t.Errorf("ids not monotonic: %d then %d", first.ID, second.ID)
	}
	// Seeded deals occupy 1 and 2.
	if first.ID != 3 {
		t.Errorf("first new deal id = %d, want 3", first.ID)
	}
}

func TestSaveDeal_ConcurrentNoDuplicateIDs(t *testing.T) {
	st, _ := newSeededStore(t)

	const n = 20
	var wg sync.WaitGroup
	ids := make(chan int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			deal, err := st.SaveDeal(models.Deal{CounterPartyCompany: "X", Office: "ATS", Desk: "crude", Product: "crude"})
			if err != nil {
				t.Errorf("SaveDeal() error = %v", err)
				return
			}
			ids <- deal.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int]bool)
	for id := range ids {
		if seen[id] {
			t.Errorf("duplicate id %d", id)
		}
		seen[id] = true
	}
}

func TestMessagesByChat_ChronologicalOrder(t *testing.T) {
	st, _ := newSeededStore(t)

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	// Save out of order.
	for _, offset := range []int{30, 10, 20} {
		if _, err := st.SaveMessage(models.Message{
			ChatID:  2,
			UserID:  1,
			Date:    base.Add(time.Duration(offset) * time.Minute),
			Content: "m",
		}); err != nil {
			t.Fatalf("SaveMessage() error = %v", err)
		}
	}

	messages, err := st.MessagesByChat(2)
	if err != nil {
		t.Fatalf("MessagesByChat() error = %v", err)
	}
	for i := 1; i < len(messages); i++ {
		if messages[i].Date.Before(messages[i-1].Date) {
			t.Errorf("messages out of order at %d: %v before %v", i, messages[i].Date, messages[i-1].Date)
		}
	}
}

func TestUserByEmail(t *testing.T) {
	st, _ := newSeededStore(t)

	u, err := st.UserByEmail("alice.chen@atstrading.com")
	if err != nil {
		t.Fatalf("UserByEmail() error = %v", err)
	}
	if u.Name != "Alice Chen" {
		t.Errorf("Name = %q, want Alice Chen", u.Name)
	}

	if _, err := st.UserByEmail("nobody@nowhere.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing user error = %v, want ErrNotFound", err)
	}
}

func TestGetCollection_ErrorTaxonomy(t *testing.T) {
	backend := session.NewMemory()
	st := New(backend)

	// Absent key: empty collection, no error.
	deals, err := st.Deals()
	if err != nil {
		t.Fatalf("Deals() on empty backend error = %v", err)
	}
	if len(deals) != 0 {
		t.Errorf("got %d deals from empty backend, want 0", len(deals))
	}

	// Malformed payload: ErrMalformed.
	if err := backend.Set("deal_recap_deals", []byte("{not json")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, err := st.Deals(); !errors.Is(err, ErrMalformed) {
		t.Errorf("malformed error = %v, want ErrMalformed", err)
	}

	// Unreachable backend: ErrUnavailable.
	backend.FailReads = errors.New("connection refused")
	if _, err := st.Deals(); !errors.Is(err, ErrUnavailable) {
		t.Errorf("unavailable error = %v, want ErrUnavailable", err)
	}
}

func TestUpdateExtraction(t *testing.T) {
	st, _ := newSeededStore(t)

	ext, err := st.ExtractionByChat(1)
	if err != nil {
		t.Fatalf("ExtractionByChat() error = %v", err)
	}

	ext.Status = models.StatusFailed
	if err := st.UpdateExtraction(*ext); err != nil {
		t.Fatalf("UpdateExtraction() error = %v", err)
	}

	updated, err := st.ExtractionByChat(1)
	if err != nil {
		t.Fatalf("ExtractionByChat() error = %v", err)
	}
	if updated.Status != models.StatusFailed {
		t.Errorf("Status = %q, want FAILED", updated.Status)
	}
}

func TestEmailsAndAudios_ReadOnlyFixtures(t *testing.T) {
	st, _ := newSeededStore(t)

	emails, err := st.Emails()
	if err != nil {
		t.Fatalf("Emails() error = %v", err)
	}
	if len(emails) != 1 {
		t.Errorf("got %d emails, want 1", len(emails))
	}

	audio, err := st.AudioByID(1)
	if err != nil {
		t.Fatalf("AudioByID() error = %v", err)
	}
	if audio.AudioPayload == "" {
		t.Error("audio fixture has no payload")
	}

	if _, err := st.EmailByID(99); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing email error = %v, want ErrNotFound", err)
	}
}

func TestNextID(t *testing.T) {
	if got := nextID(nil); got != 1 {
		t.Errorf("nextID(nil) = %d, want 1", got)
	}
	if got := nextID([]int{1, 5, 3}); got != 6 {
		t.Errorf("nextID([1 5 3]) = %d, want 6", got)
	}
}

package theme

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveOrder(t *testing.T) {
	cases := []struct {
		name       string
		persisted  string
		systemDark bool
		want       Preference
	}{
		{"persisted light beats dark system", "light", true, Light},
		{"persisted dark", "dark", false, Dark},
		{"system dark", "", true, Dark},
		{"nothing", "", false, Light},
		{"garbage persisted ignored", "sepia", true, Dark},
		{"garbage persisted light default", "sepia", false, Light},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Resolve(tc.persisted, tc.systemDark))
		})
	}
}

func TestToggleTwiceRestores(t *testing.T) {
	for _, start := range []Preference{Light, Dark} {
		store := NewStore(start)
		store.Toggle()
		assert.NotEqual(t, start, store.Get())
		store.Toggle()
		assert.Equal(t, start, store.Get())
	}
}

func TestStoreSubscribe(t *testing.T) {
	store := NewStore(Light)
	var seen []Preference
	unsubscribe := store.Subscribe(func(p Preference) { seen = append(seen, p) })

	assert.Equal(t, Dark, store.Toggle())
	assert.False(t, store.Set(Dark))
	assert.False(t, store.Set("sepia"))
	assert.True(t, store.Set(Light))
	unsubscribe()
	unsubscribe()
	store.Toggle()

	assert.Equal(t, []Preference{Dark, Light}, seen)
}

func TestNewStoreRejectsInvalid(t *testing.T) {
	assert.Equal(t, Light, NewStore("").Get())
	assert.Equal(t, "dark", Dark.Class())
	assert.Empty(t, Light.Class())
}

func TestStoreConcurrentToggles(t *testing.T) {
	store := NewStore(Light)
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Toggle()
		}()
	}
	wg.Wait()
	assert.Equal(t, Light, store.Get())
}

package presence

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Register_First_Connection_Creates_User(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	// When a user registers their first connection
	u, first := registry.Register("alice", "c1")

	// Then the transition is reported and the record exists
	req.True(first)
	req.Equal("alice", u.Name)
	req.Equal(1, registry.OnlineCount())
	req.True(u.Conns().Contains("c1"))
}

func TestRegistry_Register_Second_Connection_Is_Not_A_Transition(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	// Given a user with one connection
	registry.Register("alice", "c1")

	// When a second connection registers under the same name
	u, first := registry.Register("alice", "c2")

	// Then no transition is reported and both ids share one record
	req.False(first)
	req.Equal(2, u.Conns().Len())
	req.Equal(1, registry.OnlineCount())
}

func TestRegistry_Register_Is_Case_Insensitive_And_Keeps_First_Casing(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	// Given a user registered with a mixed-case name
	registry.Register("Alice", "c1")

	// When another connection registers with different casing
	u, first := registry.Register("ALICE", "c2")

	// Then both connections land on one record with the original casing
	req.False(first)
	req.Equal("Alice", u.Name)
	req.Equal(1, registry.OnlineCount())

	looked, ok := registry.Lookup("alice")
	req.True(ok)
	req.Same(u, looked)
}

func TestRegistry_Unregister_Last_Connection_Removes_User(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	registry.Register("alice", "c1")

	// When the only connection unregisters
	u, last := registry.Unregister("alice", "c1")

	// Then the transition is reported and the record is gone
	req.True(last)
	req.Equal("alice", u.Name)
	req.Equal(0, registry.OnlineCount())

	_, ok := registry.Lookup("alice")
	req.False(ok)
}

func TestRegistry_Unregister_One_Of_Several_Keeps_User_Online(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	registry.Register("alice", "c1")
	registry.Register("alice", "c2")

	// When one of two connections unregisters
	u, last := registry.Unregister("alice", "c1")

	// Then the user stays online with the remaining connection
	req.False(last)
	req.Equal(1, u.Conns().Len())
	req.True(u.Conns().Contains("c2"))
	req.Equal(1, registry.OnlineCount())
}

func TestRegistry_Unregister_Unknown_User_Is_Silent(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	// When a never-registered user unregisters
	u, last := registry.Unregister("ghost", "c1")

	// Then nothing happens
	req.Nil(u)
	req.False(last)
	req.Equal(0, registry.OnlineCount())
}

func TestRegistry_Unregister_Stale_Connection_Is_Not_A_Transition(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	registry.Register("alice", "c1")

	// When a connection id that was never added unregisters
	u, last := registry.Unregister("alice", "stale")

	// Then the user stays online untouched
	req.NotNil(u)
	req.False(last)
	req.Equal(1, registry.OnlineCount())
	req.True(u.Conns().Contains("c1"))
}

func TestRegistry_Concurrent_First_Connections_Report_One_Transition(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	const connections = 100

	// When many connections register the same username concurrently
	var transitions atomic.Int32
	var wg sync.WaitGroup
	for range connections {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, first := registry.Register("alice", uuid.NewString()); first {
				transitions.Add(1)
			}
		}()
	}
	wg.Wait()

	// Then exactly one of them observed the offline→online transition
	req.Equal(int32(1), transitions.Load())

	u, ok := registry.Lookup("alice")
	req.True(ok)
	req.Equal(connections, u.Conns().Len())
	req.Equal(1, registry.OnlineCount())
}

func TestRegistry_Concurrent_Disconnects_Report_One_Transition(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	const connections = 100

	ids := make([]string, connections)
	for i := range ids {
		ids[i] = uuid.NewString()
		registry.Register("alice", ids[i])
	}

	// When every connection unregisters concurrently
	var transitions atomic.Int32
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(connID string) {
			defer wg.Done()
			if _, last := registry.Unregister("alice", connID); last {
				transitions.Add(1)
			}
		}(id)
	}
	wg.Wait()

	// Then exactly one of them emptied the set and the record is gone
	req.Equal(int32(1), transitions.Load())
	req.Equal(0, registry.OnlineCount())
}

func TestRegistry_OnlineUsernames_Excludes_By_Connection_Id(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	// Given alice on two connections and bob on one
	registry.Register("alice", "c1")
	registry.Register("alice", "c2")
	registry.Register("bob", "c3")

	// When the list is taken from one of alice's connections
	fromAlice := registry.OnlineUsernames("c1")

	// Then alice is hidden because her set contains the excluded id
	req.ElementsMatch([]string{"bob"}, fromAlice)

	// When the list is taken from bob's connection
	fromBob := registry.OnlineUsernames("c3")

	// Then alice is visible and bob is hidden
	req.ElementsMatch([]string{"alice"}, fromBob)
}

func TestRegistry_JointSnapshot_Unions_Both_Connection_Sets(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	alice, _ := registry.Register("alice", "c1")
	registry.Register("alice", "c2")
	bob, _ := registry.Register("bob", "c3")

	// When a joint snapshot is taken in either argument order
	forward := registry.JointSnapshot(alice, bob)
	reverse := registry.JointSnapshot(bob, alice)

	// Then both orders yield the full union
	req.ElementsMatch([]string{"c1", "c2", "c3"}, forward)
	req.ElementsMatch([]string{"c1", "c2", "c3"}, reverse)
}

func TestRegistry_JointSnapshot_Same_User_Collapses(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	alice, _ := registry.Register("alice", "c1")
	registry.Register("alice", "c2")

	// When both arguments resolve to the same user
	ids := registry.JointSnapshot(alice, alice)

	// Then the set appears once, not doubled
	req.ElementsMatch([]string{"c1", "c2"}, ids)
}

package presence

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestConnSet_Add_Returns_Resulting_Size(t *testing.T) {
	req := require.New(t)
	set := newConnSet()

	// When two distinct connection ids are added
	first := set.Add("c1")
	second := set.Add("c2")

	// Then each add reports the size after the insert
	req.Equal(1, first)
	req.Equal(2, second)
	req.True(set.Contains("c1"))
	req.True(set.Contains("c2"))
}

func TestConnSet_Add_Duplicate_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	set := newConnSet()

	// Given a registered connection id
	set.Add("c1")

	// When the same id is added again
	size := set.Add("c1")

	// Then the set does not grow
	req.Equal(1, size)
	req.Equal(1, set.Len())
}

func TestConnSet_Remove_Missing_Is_NoOp(t *testing.T) {
	req := require.New(t)
	set := newConnSet()

	// Given one member
	set.Add("c1")

	// When an id that was never added is removed
	size := set.Remove("ghost")

	// Then the set is untouched
	req.Equal(1, size)
	req.True(set.Contains("c1"))
}

func TestConnSet_Remove_Last_Member_Empties_Set(t *testing.T) {
	req := require.New(t)
	set := newConnSet()

	set.Add("c1")

	// When the only member is removed
	size := set.Remove("c1")

	// Then the set reports empty
	req.Equal(0, size)
	req.True(set.Empty())
}

func TestConnSet_Snapshot_Is_A_Copy(t *testing.T) {
	req := require.New(t)
	set := newConnSet()

	set.Add("c1")
	set.Add("c2")

	// When a snapshot is taken and the set mutates afterwards
	snapshot := set.Snapshot()
	set.Remove("c1")

	// Then the snapshot still holds both members
	req.ElementsMatch([]string{"c1", "c2"}, snapshot)
	req.Equal(1, set.Len())
}

func TestConnSet_Concurrent_Adds_And_Removes(t *testing.T) {
	req := require.New(t)
	set := newConnSet()

	const workers = 64

	ids := make([]string, workers)
	for i := range ids {
		ids[i] = uuid.NewString()
	}

	// When many goroutines add and remove distinct ids concurrently
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func(id string, keep bool) {
			defer wg.Done()
			set.Add(id)
			if !keep {
				set.Remove(id)
			}
		}(ids[i], i%2 == 0)
	}
	wg.Wait()

	// Then exactly the kept ids remain
	req.Equal(workers/2, set.Len())
	for i, id := range ids {
		req.Equal(i%2 == 0, set.Contains(id))
	}
}

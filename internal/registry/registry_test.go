package registry

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ls4096/sailnavsim-core/internal/boat"
)

func TestAddGetRemoveBasic(t *testing.T) {
	r := New()

	b := boat.New(0, 0, 0, 0)
	require.NoError(t, r.Add(b, "TestBoat0", "", ""))
	assert.Equal(t, 1, r.Count())

	got := r.Get("TestBoat0")
	require.NotNil(t, got)
	assert.Equal(t, 0.0, got.Pos.Lat)
	assert.Equal(t, 0.0, got.Pos.Lon)

	removed := r.Remove("TestBoat0")
	assert.Same(t, b, removed)
	assert.Equal(t, 0, r.Count())
	assert.Nil(t, r.Get("TestBoat0"))
}

func TestDuplicateAddLeavesStateUntouched(t *testing.T) {
	r := New()

	v1 := boat.New(1, 1, 0, 0)
	v2 := boat.New(2, 2, 0, 0)

	require.NoError(t, r.Add(v1, "A", "G", "alpha"))
	err := r.Add(v2, "A", "H", "beta")
	assert.ErrorIs(t, err, ErrExists)

	assert.Equal(t, 1, r.Count())
	assert.Same(t, v1, r.Get("A"))

	e := r.GetEntry("A")
	require.NotNil(t, e)
	assert.Equal(t, "G", e.Group)
	assert.Equal(t, "alpha", e.AltName)

	// The failed add must not have touched the group index either.
	assert.Equal(t, "A,alpha\n", r.GroupMembershipResponse("G"))
	assert.Equal(t, "", r.GroupMembershipResponse("H"))
}

func TestRemoveNonMember(t *testing.T) {
	r := New()
	require.NoError(t, r.Add(boat.New(0, 0, 0, 0), "A", "", ""))

	assert.Nil(t, r.Remove("B"))
	assert.Equal(t, 1, r.Count())
}

func TestIterationInsertionOrder(t *testing.T) {
	r := New()
	for i := 0; i < 5; i++ {
		require.NoError(t, r.Add(boat.New(0, 0, 0, 0), fmt.Sprintf("b%d", i), "", ""))
	}

	e, n := r.All()
	assert.Equal(t, 5, n)

	var names []string
	for ; e != nil; e = e.Next() {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"b0", "b1", "b2", "b3", "b4"}, names)
}

func TestIterationSurvivesRemovalOfEarlierEntries(t *testing.T) {
	r := New()
	for i := 0; i < 4; i++ {
		require.NoError(t, r.Add(boat.New(0, 0, 0, 0), fmt.Sprintf("b%d", i), "", ""))
	}

	r.Remove("b0")
	r.Remove("b2")

	e, n := r.All()
	assert.Equal(t, 2, n)

	var names []string
	for ; e != nil; e = e.Next() {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"b1", "b3"}, names)

	// Re-adding a removed name lands at the tail.
	require.NoError(t, r.Add(boat.New(0, 0, 0, 0), "b0", "", ""))
	e, _ = r.All()
	names = names[:0]
	for ; e != nil; e = e.Next() {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"b1", "b3", "b0"}, names)
}

func TestGroupMembershipResponse(t *testing.T) {
	r := New()
	require.NoError(t, r.Add(boat.New(0, 0, 0, 0), "one", "fleet", "Alpha"))
	require.NoError(t, r.Add(boat.New(0, 0, 0, 0), "two", "fleet", ""))
	require.NoError(t, r.Add(boat.New(0, 0, 0, 0), "three", "fleet", "Gamma"))
	require.NoError(t, r.Add(boat.New(0, 0, 0, 0), "other", "elsewhere", ""))

	want := "one,Alpha\ntwo,!\nthree,Gamma\n"
	assert.Equal(t, want, r.GroupMembershipResponse("fleet"))
}

func TestGroupIndexShrinksOnRemove(t *testing.T) {
	r := New()
	require.NoError(t, r.Add(boat.New(0, 0, 0, 0), "one", "fleet", ""))
	require.NoError(t, r.Add(boat.New(0, 0, 0, 0), "two", "fleet", ""))

	r.Remove("one")
	assert.Equal(t, "two,!\n", r.GroupMembershipResponse("fleet"))

	r.Remove("two")
	assert.Equal(t, "", r.GroupMembershipResponse("fleet"))
}

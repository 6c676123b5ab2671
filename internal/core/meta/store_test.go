package meta

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore_DefineAndGet(t *testing.T) {
	s := NewStore()
	age := PropertySubject("Person", "age")

	assert.False(t, s.Has(age, KeyNullable))
	assert.Equal(t, Absent, s.Get(age, KeyNullable))

	s.Define(age, KeyNullable, true)

	assert.True(t, s.Has(age, KeyNullable))
	assert.Equal(t, true, s.Get(age, KeyNullable))
	assert.True(t, s.Flag(age, KeyNullable))
}

func TestStore_LaterWriteOverwrites(t *testing.T) {
	s := NewStore()
	age := PropertySubject("Person", "age")

	s.Define(age, KeyNullable, true)
	s.Define(age, KeyNullable, false)

	assert.Equal(t, false, s.Get(age, KeyNullable))
	assert.Equal(t, 1, s.Len())
}

func TestStore_SubjectsAreIndependent(t *testing.T) {
	s := NewStore()

	s.Define(PropertySubject("Person", "age"), KeyNullable, true)
	s.Define(PropertySubject("Pet", "age"), KeyNullable, false)
	s.Define(TypeSubject("Person"), KeyNullable, false)

	assert.True(t, s.Flag(PropertySubject("Person", "age"), KeyNullable))
	assert.False(t, s.Flag(PropertySubject("Pet", "age"), KeyNullable))
	assert.False(t, s.Flag(TypeSubject("Person"), KeyNullable))
	assert.False(t, s.Has(PropertySubject("Person", "name"), KeyNullable))
}

func TestStore_FlagIgnoresNonBool(t *testing.T) {
	s := NewStore()
	subject := PropertySubject("Person", "age")
	s.Define(subject, KeyNullable, "yes")

	assert.False(t, s.Flag(subject, KeyNullable))
}

func TestStore_SubjectsSorted(t *testing.T) {
	s := NewStore()
	s.Define(PropertySubject("Pet", "name"), KeyNullable, true)
	s.Define(PropertySubject("Person", "name"), KeyNullable, true)
	s.Define(PropertySubject("Person", "age"), KeyNullable, true)
	s.Define(TypeSubject("Person"), KeyNullable, true)

	assert.Equal(t, []Subject{
		{Type: "Person"},
		{Type: "Person", Property: "age"},
		{Type: "Person", Property: "name"},
		{Type: "Pet", Property: "name"},
	}, s.Subjects())
}

func TestStore_Keys(t *testing.T) {
	s := NewStore()
	subject := PropertySubject("Person", "age")
	s.Define(subject, KeyTypeContract, "integer")
	s.Define(subject, KeyNullable, false)

	assert.Equal(t, []Key{KeyNullable, KeyTypeContract}, s.Keys(subject))
	assert.Empty(t, s.Keys(PropertySubject("Person", "missing")))
}

func TestStore_Forget(t *testing.T) {
	s := NewStore()
	s.Define(PropertySubject("Person", "age"), KeyNullable, true)
	s.Define(TypeSubject("Person"), KeyNullable, true)
	s.Define(PropertySubject("Pet", "age"), KeyNullable, true)

	s.Forget("Person")

	assert.Equal(t, []Subject{{Type: "Pet", Property: "age"}}, s.Subjects())
}

func TestStore_Reset(t *testing.T) {
	s := NewStore()
	s.Define(TypeSubject("Person"), KeyNullable, true)
	s.Reset()
	assert.Equal(t, 0, s.Len())
}

func TestSubject_String(t *testing.T) {
	assert.Equal(t, "Person", TypeSubject("Person").String())
	assert.Equal(t, "Person.age", PropertySubject("Person", "age").String())
}

func TestStore_ConcurrentReads(t *testing.T) {
	s := NewStore()
	subject := PropertySubject("Person", "age")
	s.Define(subject, KeyNullable, true)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.True(t, s.Flag(subject, KeyNullable))
		}()
	}
	wg.Wait()
}

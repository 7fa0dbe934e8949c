package models

import (
	"testing"

	"excelEvidence/internal/channel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryAddAndHas(t *testing.T) {
	r := NewRegistry()
	r.Add(IVRNoAudio, "Ana_1", "Ana", "1", "")
	r.Add(IVRNoAudio, "Ana_1", "Ana", "1", "duplicate")
	r.Add(SMSNoMatch, "Luis_2", "Luis", "2", "")

	assert.True(t, r.Has(IVRNoAudio, "Ana_1"))
	assert.False(t, r.Has(IVRNoMatch, "Ana_1"))
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []string{"Ana"}, r.Names(IVRNoAudio))

	counts := r.Counts()
	assert.Len(t, counts, len(Buckets))
	assert.Equal(t, 1, counts[SMSNoMatch])
	assert.Equal(t, 0, counts[EmptyFolders])
}

func TestRegistryForget(t *testing.T) {
	r := NewRegistry()
	r.Add(CallNoAudio, "Ana_1", "Ana", "1", "")
	r.Add(CallPhoneNoMatch, "Ana_1", "Ana", "1", "")
	r.Add(CallNoAudio, "Luis_2", "Luis", "2", "")

	r.Forget("Ana_1", BucketsFor(channel.CallAudio)...)

	assert.False(t, r.Has(CallNoAudio, "Ana_1"))
	assert.False(t, r.Has(CallPhoneNoMatch, "Ana_1"))
	assert.True(t, r.Has(CallNoAudio, "Luis_2"))
	assert.Equal(t, []string{"Luis_2"}, r.Folders())
}

func TestRegistryFromEntries(t *testing.T) {
	src := NewRegistry()
	src.Add(IVRNoMatch, "Ana_1", "Ana", "1", "no rows")
	rebuilt := RegistryFromEntries(src.Entries())
	require.Equal(t, 1, rebuilt.Len())
	assert.True(t, rebuilt.Has(IVRNoMatch, "Ana_1"))
}

func TestNilRegistryHas(t *testing.T) {
	var r *Registry
	assert.False(t, r.Has(IVRNoMatch, "x"))
}

func TestFindByAccount(t *testing.T) {
	customers := []CustomerRecord{{Name: "Ana", Account: "1"}, {Name: "Otra", Account: "1"}, {Name: "Luis", Account: "2"}}
	c, ok := FindByAccount(customers, " 1 ")
	require.True(t, ok)
	assert.Equal(t, "Ana", c.Name)
	_, ok = FindByAccount(customers, "3")
	assert.False(t, ok)
}

package channel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Set
	}{
		{"single", "IVR", Set{IVR}},
		{"trim and upper", " ivr , sms ", Set{IVR, SMS}},
		{"raw order kept", "CALL,IVR", Set{CALL, IVR}},
		{"empty tokens dropped", ",, ,IVR,", Set{IVR}},
		{"all empty", " , ,", nil},
		{"blank", "", nil},
		{"synonym", "GRABACION CALL", Set{CALL}},
		{"accented synonym", "grabación call", Set{CALL}},
		{"synonym with standalone call", "IVR,GRABACION CALL,CALL", Set{IVR, CALL}},
		{"accent variant on another vowel", "GRÁBACION CALL", Set{CALL}},
		{"free form tags", "whatsapp,otros", Set{WhatsApp, Others}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.raw))
		})
	}
}

func TestNormalizeYieldsCallOnce(t *testing.T) {
	inputs := []string{
		"grabacion call",
		"Grabación Call, CALL",
		"CALL, GRABACIÓN CALL, grabacion call",
		"SMS,GRABACION CALL",
	}
	for _, raw := range inputs {
		got := Normalize(raw)
		count := 0
		for _, c := range got {
			if c == CALL {
				count++
			}
		}
		assert.Equal(t, 1, count, raw)
	}
}

func TestOrdered(t *testing.T) {
	assert.Equal(t, Set{IVR, CALL, Others}, Set{Others, CALL, IVR}.Ordered())
	assert.Equal(t, Set{SMS, Email, "FAX", "PORTAL"}, Set{"PORTAL", Email, "FAX", SMS}.Ordered())
}

func TestUnionDedupesCaseInsensitively(t *testing.T) {
	got := Set{IVR, SMS}.Union(Set{"sms", "whatsapp", IVR})
	assert.Equal(t, Set{IVR, SMS, WhatsApp}, got)
}

func TestSetEqual(t *testing.T) {
	assert.True(t, Set{IVR, CALL}.Equal(Set{CALL, IVR}))
	assert.False(t, Set{IVR}.Equal(Set{IVR, SMS}))
}

func TestArtifactFileNames(t *testing.T) {
	assert.Equal(t, "Juan Perez_ivr.xlsx", IVRExcel.FileName("Juan Perez", "123"))
	assert.Equal(t, "ivr_Juan Perez.mp3", IVRAudio.FileName("Juan Perez", "123"))
	assert.Equal(t, "SMS_Juan Perez.xlsx", SMSExcel.FileName("Juan Perez", "123"))
	assert.Equal(t, "Juan Perez_gestiones.xlsx", CallExcel.FileName("Juan Perez", "123"))
	assert.Equal(t, "Juan Perez_123.mp3", CallAudio.FileName("Juan Perez", "123"))
}

func TestArtifactMatches(t *testing.T) {
	tests := []struct {
		kind ArtifactKind
		file string
		want bool
	}{
		{IVRExcel, "Ana_ivr.xlsx", true},
		{IVRExcel, "ivr_Ana.mp3", false},
		{IVRAudio, "IVR_Ana.MP3", true},
		{SMSExcel, "SMS_Ana.xlsx", true},
		{CallExcel, "Ana_gestiones.xlsx", true},
		{CallAudio, "Ana_99.mp3", true},
		{CallAudio, "ivr_Ana.mp3", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.Matches(tt.file), "%s %s", tt.kind, tt.file)
	}
}

func TestPlannedFiles(t *testing.T) {
	got := PlannedFiles("Ana", "7", Set{CALL, WhatsApp, IVR})
	assert.Equal(t, []string{"Ana_gestiones.xlsx", "Ana_7.mp3", "Ana_ivr.xlsx", "ivr_Ana.mp3"}, got)
}

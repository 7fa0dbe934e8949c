package channel

import (
	"fmt"
	"strings"
)

// ArtifactKind identifies one evidence file a channel can produce.
type ArtifactKind string

const (
	IVRExcel  ArtifactKind = "ivr_excel"
	IVRAudio  ArtifactKind = "ivr_audio"
	SMSExcel  ArtifactKind = "sms_excel"
	CallExcel ArtifactKind = "call_excel"
	CallAudio ArtifactKind = "call_audio"
)

// Artifacts lists what a channel implies, in file order.
func Artifacts(c Channel) []ArtifactKind {
	switch c {
	case IVR:
		return []ArtifactKind{IVRExcel, IVRAudio}
	case SMS:
		return []ArtifactKind{SMSExcel}
	case CALL:
		return []ArtifactKind{CallExcel, CallAudio}
	}
	return nil
}

// Channel returns the channel an artifact belongs to.
func (k ArtifactKind) Channel() Channel {
	switch k {
	case IVRExcel, IVRAudio:
		return IVR
	case SMSExcel:
		return SMS
	case CallExcel, CallAudio:
		return CALL
	}
	return ""
}

func (k ArtifactKind) Description() string {
	switch k {
	case IVRExcel:
		return "IVR excel extract"
	case IVRAudio:
		return "IVR audio (mp3)"
	case SMSExcel:
		return "SMS excel extract"
	case CallExcel:
		return "CALL gestiones excel"
	case CallAudio:
		return "CALL audio (mp3)"
	}
	return string(k)
}

// FileName renders the file name template. name and account must already be sanitized.
func (k ArtifactKind) FileName(name, account string) string {
	switch k {
	case IVRExcel:
		return fmt.Sprintf("%s_ivr.xlsx", name)
	case IVRAudio:
		return fmt.Sprintf("ivr_%s.mp3", name)
	case SMSExcel:
		return fmt.Sprintf("SMS_%s.xlsx", name)
	case CallExcel:
		return fmt.Sprintf("%s_gestiones.xlsx", name)
	case CallAudio:
		return fmt.Sprintf("%s_%s.mp3", name, account)
	}
	return ""
}

// Matches applies the audit presence rule for the artifact to a file name.
func (k ArtifactKind) Matches(filename string) bool {
	f := strings.ToLower(filename)
	switch k {
	case IVRExcel:
		return strings.Contains(f, "ivr") && strings.HasSuffix(f, ".xlsx")
	case IVRAudio:
		return strings.Contains(f, "ivr") && strings.HasSuffix(f, ".mp3")
	case SMSExcel:
		return strings.Contains(f, "sms") && strings.HasSuffix(f, ".xlsx")
	case CallExcel:
		return strings.Contains(f, "gestiones") && strings.HasSuffix(f, ".xlsx")
	case CallAudio:
		return strings.HasSuffix(f, ".mp3") && !strings.Contains(f, "ivr")
	}
	return false
}

// PlannedFiles lists the file names a full generation would produce for the set, in set order.
func PlannedFiles(name, account string, set Set) []string {
	var files []string
	for _, c := range set {
		for _, kind := range Artifacts(c) {
			files = append(files, kind.FileName(name, account))
		}
	}
	return files
}

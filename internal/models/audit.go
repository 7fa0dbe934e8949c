package models

import (
	"time"

	"excelEvidence/internal/channel"
)

// Finding is one customer folder whose contents do not meet expectations.
type Finding struct {
	Folder              string                 `json:"folder" bson:"folder"`
	Errors              []string               `json:"errors" bson:"errors"`
	ExpectedChannels    channel.Set            `json:"expected_channels" bson:"expected_channels"`
	Missing             []channel.ArtifactKind `json:"missing" bson:"missing"`
	MissingDescriptions []string               `json:"missing_descriptions" bson:"missing_descriptions"`
	FoundFiles          int                    `json:"found_files" bson:"found_files"`
	ExpectedFiles       int                    `json:"expected_files" bson:"expected_files"`
	Empty               bool                   `json:"empty,omitempty" bson:"empty,omitempty"`
}

// AuditReport summarizes one audit pass over a run folder.
type AuditReport struct {
	RunDir       string    `json:"run_dir" bson:"run_dir"`
	AuditedAt    time.Time `json:"audited_at" bson:"audited_at"`
	TotalFolders int       `json:"total_folders" bson:"total_folders"`
	OKFolders    int       `json:"ok_folders" bson:"ok_folders"`
	Findings     []Finding `json:"findings" bson:"findings"`
}

// Failure is a resource error caught while producing one artifact.
type Failure struct {
	Folder   string               `json:"folder" bson:"folder"`
	Customer string               `json:"customer" bson:"customer"`
	Artifact channel.ArtifactKind `json:"artifact" bson:"artifact"`
	Error    string               `json:"error" bson:"error"`
}

// RunRecord is the persisted summary of one generation run.
type RunRecord struct {
	RunID      string          `json:"run_id" bson:"run_id"`
	RunDir     string          `json:"run_dir" bson:"run_dir"`
	StartedAt  time.Time       `json:"started_at" bson:"started_at"`
	FinishedAt time.Time       `json:"finished_at" bson:"finished_at"`
	Customers  int             `json:"customers" bson:"customers"`
	Folders    int             `json:"folders" bson:"folders"`
	Counts     map[Bucket]int  `json:"counts" bson:"counts"`
	Failures   []Failure       `json:"failures,omitempty" bson:"failures,omitempty"`
	Entries    []RegistryEntry `json:"-" bson:"entries"`
}

package jobs

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	// MaxCodeLength bounds Job.Code.
	MaxCodeLength = 100
	// MaxDataLength bounds Step.Data.
	MaxDataLength = 100
)

// Job is one run of a batch process (source term "Bap").
// State is only mutated through the batch job aggregate.
type Job struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID uuid.UUID `gorm:"type:uuid;column:session_id;not null;index" json:"session_id"`
	Code      string    `gorm:"column:code;size:100;not null;index" json:"code"`
	State     State     `gorm:"column:state;not null;default:0;index" json:"state"`

	StartedAt   *datatypes.Date `gorm:"column:started_at" json:"started_at,omitempty"`
	CancelledAt *datatypes.Date `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`
	FinishedAt  *datatypes.Date `gorm:"column:finished_at" json:"finished_at,omitempty"`
	FailedAt    *datatypes.Date `gorm:"column:failed_at" json:"failed_at,omitempty"`

	Steps []Step `gorm:"foreignKey:JobID;references:ID;constraint:OnDelete:CASCADE" json:"steps,omitempty"`

	CreatedBy string    `gorm:"column:created_by" json:"created_by,omitempty"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;index" json:"updated_at"`
}

func (Job) TableName() string { return "bap" }

func (j *Job) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}

// Step is one immutable audit entry of a Job (source term "BapN").
// Sequence is 1-based and unique per job.
type Step struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	JobID      uuid.UUID       `gorm:"type:uuid;column:job_id;not null;index:idx_bap_n_job_seq,unique,priority:1;index" json:"job_id"`
	Sequence   int             `gorm:"column:sequence;not null;index:idx_bap_n_job_seq,unique,priority:2" json:"sequence"`
	OccurredAt *datatypes.Date `gorm:"column:occurred_at" json:"occurred_at,omitempty"`
	Kind       int             `gorm:"column:kind;not null;default:0" json:"kind"`
	Data       string          `gorm:"column:data;size:100" json:"data,omitempty"`

	CreatedBy string    `gorm:"column:created_by" json:"created_by,omitempty"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Step) TableName() string { return "bap_n" }

func (s *Step) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// DateOf returns the calendar date of t as a column value.
func DateOf(t time.Time) *datatypes.Date {
	y, m, d := t.Date()
	date := datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, t.Location()))
	return &date
}

// TruncateData clips step text to MaxDataLength runes.
func TruncateData(s string) string {
	r := []rune(s)
	if len(r) <= MaxDataLength {
		return s
	}
	return string(r[:MaxDataLength])
}
